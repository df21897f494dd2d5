package domain

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

var currencyPrecision = map[string]int32{
	"BTC": 8,
	"LTC": 8,
	"CNY": 2,
}

const defaultPrecision = 8

// Precision returns the number of decimal places the exchange uses for a currency.
func Precision(currency string) int32 {
	if p, ok := currencyPrecision[strings.ToUpper(currency)]; ok {
		return p
	}
	return defaultPrecision
}

// Amount is a currency amount as reported by the exchange. Amount is the canonical
// decimal value; AmountInteger and AmountDecimal are the server's own split of it,
// kept verbatim as a display hint and never recomputed here.
type Amount struct {
	Currency      string `json:"currency"`
	Symbol        string `json:"symbol,omitempty"`
	Amount        string `json:"amount"`
	AmountInteger string `json:"amount_integer"`
	AmountDecimal int64  `json:"amount_decimal"`
}

// ParseAmount parses a single amount object.
func ParseAmount(data []byte) (Amount, error) {
	obj, err := decodeObject("", data)
	if err != nil {
		return Amount{}, err
	}
	return parseAmount(obj)
}

func parseAmount(obj object) (Amount, error) {
	currency, err := obj.string("currency")
	if err != nil {
		return Amount{}, err
	}
	symbol, err := obj.optionalString("symbol")
	if err != nil {
		return Amount{}, err
	}
	amount, err := obj.numberText("amount")
	if err != nil {
		return Amount{}, err
	}
	integer, err := obj.text("amount_integer")
	if err != nil {
		return Amount{}, err
	}
	fraction, err := obj.int64("amount_decimal")
	if err != nil {
		return Amount{}, err
	}

	return Amount{
		Currency:      currency,
		Symbol:        symbol,
		Amount:        amount,
		AmountInteger: integer,
		AmountDecimal: fraction,
	}, nil
}

// Decimal returns the canonical value.
func (a Amount) Decimal() decimal.Decimal {
	d, err := decimal.NewFromString(a.Amount)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// Display joins the server split as integer "." decimal, with the decimal part
// zero-padded on the left to the currency precision.
func (a Amount) Display() string {
	fraction := strconv.FormatInt(a.AmountDecimal, 10)
	if pad := int(Precision(a.Currency)) - len(fraction); pad > 0 {
		fraction = strings.Repeat("0", pad) + fraction
	}
	return a.AmountInteger + "." + fraction
}

// Consistent reports whether the server split denotes the same value as Amount.
func (a Amount) Consistent() bool {
	split, err := decimal.NewFromString(a.Display())
	if err != nil {
		return false
	}
	return split.Equal(a.Decimal())
}

// String returns a human-readable string representation.
func (a Amount) String() string {
	return a.Amount + " " + strings.ToUpper(a.Currency)
}
