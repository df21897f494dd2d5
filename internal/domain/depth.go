package domain

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// PriceLevel a single bid or ask.
type PriceLevel struct {
	Price  decimal.Decimal `json:"price"`
	Amount decimal.Decimal `json:"amount"`
}

// MarketDepth order book snapshot. Bids and Asks keep the order the exchange sent
// them in; nothing here sorts them.
type MarketDepth struct {
	Bids []PriceLevel
	Asks []PriceLevel
	// Date raw Unix seconds as sent by the exchange.
	Date int64
	// ServerTime is Date shifted by ExchangeOffset.
	ServerTime time.Time
}

// BestBid returns the first bid as sent.
func (d MarketDepth) BestBid() (PriceLevel, bool) {
	if len(d.Bids) == 0 {
		return PriceLevel{}, false
	}
	return d.Bids[0], true
}

// BestAsk returns the first ask as sent.
func (d MarketDepth) BestAsk() (PriceLevel, bool) {
	if len(d.Asks) == 0 {
		return PriceLevel{}, false
	}
	return d.Asks[0], true
}

// ParseMarketDepthResult unwraps {"market_depth": {...}} and parses the book.
func ParseMarketDepthResult(data []byte) (MarketDepth, error) {
	obj, err := decodeObject("", data)
	if err != nil {
		return MarketDepth{}, err
	}
	inner, err := obj.object("market_depth")
	if err != nil {
		return MarketDepth{}, err
	}
	return parseMarketDepth(inner)
}

// ParseMarketDepth parses a bare market depth object.
func ParseMarketDepth(data []byte) (MarketDepth, error) {
	obj, err := decodeObject("", data)
	if err != nil {
		return MarketDepth{}, err
	}
	return parseMarketDepth(obj)
}

func parseMarketDepth(obj object) (MarketDepth, error) {
	bids, err := parseLevels(obj, "bid")
	if err != nil {
		return MarketDepth{}, err
	}
	asks, err := parseLevels(obj, "ask")
	if err != nil {
		return MarketDepth{}, err
	}
	date, err := obj.int64("date")
	if err != nil {
		return MarketDepth{}, err
	}

	return MarketDepth{
		Bids:       bids,
		Asks:       asks,
		Date:       date,
		ServerTime: timestampFromDecimal(decimal.NewFromInt(date)),
	}, nil
}

func parseLevels(obj object, name string) ([]PriceLevel, error) {
	items, err := obj.array(name)
	if err != nil {
		return nil, err
	}

	levels := make([]PriceLevel, 0, len(items))
	for i, item := range items {
		level, err := parseLevel(indexPath(obj.fieldPath(name), i), item)
		if err != nil {
			return nil, err
		}
		levels = append(levels, level)
	}
	return levels, nil
}

func parseLevel(path string, raw json.RawMessage) (PriceLevel, error) {
	obj, err := decodeObject(path, raw)
	if err != nil {
		return PriceLevel{}, err
	}
	price, err := obj.decimal("price")
	if err != nil {
		return PriceLevel{}, err
	}
	amount, err := obj.decimal("amount")
	if err != nil {
		return PriceLevel{}, err
	}
	return PriceLevel{Price: price, Amount: amount}, nil
}
