package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// Trade a single trade from the history feed. The raw date string and the
// timestamp derived from it live together and can only change together, via
// ParseTrade or WithDate.
type Trade struct {
	TID    string
	Type   string
	Price  decimal.Decimal
	Amount decimal.Decimal

	date      string
	dateTyped time.Time
}

// Date returns the raw date string, Unix seconds.
func (t Trade) Date() string {
	return t.date
}

// DateTyped returns Date shifted by ExchangeOffset.
func (t Trade) DateTyped() time.Time {
	return t.dateTyped
}

// WithDate returns a copy of the trade carrying a new raw date and its derived timestamp.
func (t Trade) WithDate(raw string) (Trade, error) {
	typed, err := parseDate("date", raw)
	if err != nil {
		return Trade{}, err
	}
	t.date = raw
	t.dateTyped = typed
	return t, nil
}

// String returns a human-readable string representation.
func (t Trade) String() string {
	return fmt.Sprintf("trade %s %s %s@%s at %s", t.TID, t.Type, t.Amount, t.Price, t.dateTyped.Format(time.RFC3339))
}

// MarshalJSON exposes both date representations.
func (t Trade) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		TID       string          `json:"tid"`
		Type      string          `json:"type,omitempty"`
		Price     decimal.Decimal `json:"price"`
		Amount    decimal.Decimal `json:"amount"`
		Date      string          `json:"date"`
		DateTyped time.Time       `json:"date_typed"`
	}{t.TID, t.Type, t.Price, t.Amount, t.date, t.dateTyped})
}

// ParseTrade parses a single trade object. date must hold decimal Unix seconds.
func ParseTrade(data []byte) (Trade, error) {
	obj, err := decodeObject("", data)
	if err != nil {
		return Trade{}, err
	}
	return parseTrade(obj)
}

// ParseTrades parses the trade history array.
func ParseTrades(data []byte) ([]Trade, error) {
	items, err := decodeArray("", data)
	if err != nil {
		return nil, err
	}

	trades := make([]Trade, 0, len(items))
	for i, item := range items {
		obj, err := decodeObject(indexPath("", i), item)
		if err != nil {
			return nil, err
		}
		trade, err := parseTrade(obj)
		if err != nil {
			return nil, err
		}
		trades = append(trades, trade)
	}
	return trades, nil
}

func parseTrade(obj object) (Trade, error) {
	date, err := obj.text("date")
	if err != nil {
		return Trade{}, err
	}
	typed, err := parseDate(obj.fieldPath("date"), date)
	if err != nil {
		return Trade{}, err
	}

	price, err := obj.decimal("price")
	if err != nil {
		return Trade{}, err
	}
	amount, err := obj.decimal("amount")
	if err != nil {
		return Trade{}, err
	}
	tid, err := obj.text("tid")
	if err != nil {
		return Trade{}, err
	}
	kind, err := obj.optionalString("type")
	if err != nil {
		return Trade{}, err
	}

	return Trade{
		TID:       tid,
		Type:      kind,
		Price:     price,
		Amount:    amount,
		date:      date,
		dateTyped: typed,
	}, nil
}
