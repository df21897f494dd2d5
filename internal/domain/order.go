package domain

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// OrderType buy or sell.
type OrderType string

const (
	OrderTypeBuy  OrderType = "buy"
	OrderTypeSell OrderType = "sell"
)

// ParseOrderType accepts both the buy/sell and the bid/ask spellings.
func ParseOrderType(raw string) (OrderType, error) {
	switch raw {
	case "buy", "bid":
		return OrderTypeBuy, nil
	case "sell", "ask":
		return OrderTypeSell, nil
	default:
		return "", errors.Errorf("unknown order type %q", raw)
	}
}

// Order result of getOrder.
type Order struct {
	ID             int64
	Type           OrderType
	Price          decimal.Decimal
	Currency       string
	Amount         decimal.Decimal
	AmountOriginal decimal.Decimal
	// Date raw Unix seconds as sent by the exchange.
	Date int64
	// Placed is Date shifted by ExchangeOffset.
	Placed time.Time
	Status OrderStatus
}

// String returns a human-readable string representation.
func (o Order) String() string {
	return fmt.Sprintf("order %d %s %s@%s %s", o.ID, o.Type, o.Amount, o.Price, o.Status)
}

// ParseOrderResult unwraps {"order": {...}} and parses the order.
func ParseOrderResult(data []byte) (Order, error) {
	obj, err := decodeObject("", data)
	if err != nil {
		return Order{}, err
	}
	inner, err := obj.object("order")
	if err != nil {
		return Order{}, err
	}
	return parseOrder(inner)
}

// ParseOrder parses a bare order object. Price and amount_original may be absent
// (market orders); everything else is required.
func ParseOrder(data []byte) (Order, error) {
	obj, err := decodeObject("", data)
	if err != nil {
		return Order{}, err
	}
	return parseOrder(obj)
}

func parseOrder(obj object) (Order, error) {
	var (
		o   Order
		err error
	)

	if o.ID, err = obj.int64("id"); err != nil {
		return Order{}, err
	}
	rawType, err := obj.string("type")
	if err != nil {
		return Order{}, err
	}
	if o.Type, err = ParseOrderType(rawType); err != nil {
		return Order{}, typeMismatch(obj.fieldPath("type"), err)
	}
	if o.Price, err = obj.optionalDecimal("price"); err != nil {
		return Order{}, err
	}
	if o.Currency, err = obj.optionalString("currency"); err != nil {
		return Order{}, err
	}
	if o.Amount, err = obj.decimal("amount"); err != nil {
		return Order{}, err
	}
	if o.AmountOriginal, err = obj.optionalDecimal("amount_original"); err != nil {
		return Order{}, err
	}
	if o.Date, err = obj.int64("date"); err != nil {
		return Order{}, err
	}
	placed := decimal.NewFromInt(o.Date)
	if err := checkSeconds(obj.fieldPath("date"), placed); err != nil {
		return Order{}, err
	}
	o.Placed = timestampFromDecimal(placed)

	status, err := obj.string("status")
	if err != nil {
		return Order{}, err
	}
	o.Status = ParseOrderStatus(status)

	return o, nil
}
