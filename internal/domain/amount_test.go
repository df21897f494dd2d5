package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount_Verbatim(t *testing.T) {
	payload := []byte(`{"currency":"BTC","symbol":"฿","amount":"1.23456","amount_integer":"1","amount_decimal":23456}`)

	amount, err := ParseAmount(payload)
	require.NoError(t, err)

	assert.Equal(t, Amount{
		Currency:      "BTC",
		Symbol:        "฿",
		Amount:        "1.23456",
		AmountInteger: "1",
		AmountDecimal: 23456,
	}, amount)
	assert.True(t, decimal.RequireFromString("1.23456").Equal(amount.Decimal()))
}

func TestAmount_Display(t *testing.T) {
	tests := []struct {
		name       string
		amount     Amount
		display    string
		consistent bool
	}{
		{
			name:       "btc padded to eight places",
			amount:     Amount{Currency: "BTC", Amount: "1.00023456", AmountInteger: "1", AmountDecimal: 23456},
			display:    "1.00023456",
			consistent: true,
		},
		{
			name:       "cny two places",
			amount:     Amount{Currency: "cny", Amount: "2208.28", AmountInteger: "2208", AmountDecimal: 28},
			display:    "2208.28",
			consistent: true,
		},
		{
			name:       "split disagrees with amount",
			amount:     Amount{Currency: "BTC", Amount: "1.23456", AmountInteger: "1", AmountDecimal: 23456},
			display:    "1.00023456",
			consistent: false,
		},
		{
			name:       "unknown currency uses default precision",
			amount:     Amount{Currency: "XYZ", Amount: "0.00000001", AmountInteger: "0", AmountDecimal: 1},
			display:    "0.00000001",
			consistent: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.display, tt.amount.Display())
			assert.Equal(t, tt.consistent, tt.amount.Consistent())
		})
	}
}

func TestParseAmount_Errors(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		field    string
		sentinel error
	}{
		{
			name:     "non-numeric amount",
			payload:  `{"currency":"BTC","amount":"lots","amount_integer":"1","amount_decimal":0}`,
			field:    "amount",
			sentinel: ErrTypeMismatch,
		},
		{
			name:     "missing currency",
			payload:  `{"amount":"1","amount_integer":"1","amount_decimal":0}`,
			field:    "currency",
			sentinel: ErrMissingField,
		},
		{
			name:     "fractional amount_decimal",
			payload:  `{"currency":"BTC","amount":"1","amount_integer":"1","amount_decimal":1.5}`,
			field:    "amount_decimal",
			sentinel: ErrTypeMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAmount([]byte(tt.payload))
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)
			assert.Contains(t, err.Error(), tt.field)
		})
	}
}

func TestPrecision(t *testing.T) {
	assert.Equal(t, int32(8), Precision("btc"))
	assert.Equal(t, int32(8), Precision("LTC"))
	assert.Equal(t, int32(2), Precision("CNY"))
	assert.Equal(t, int32(8), Precision(""))
}
