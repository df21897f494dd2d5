package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOrderStatus(t *testing.T) {
	tests := []struct {
		raw   string
		kind  StatusKind
		known bool
	}{
		{raw: "open", kind: StatusOpen, known: true},
		{raw: "closed", kind: StatusClosed, known: true},
		{raw: "cancelled", kind: StatusCancelled, known: true},
		{raw: "pending", kind: StatusPending, known: true},
		{raw: "error", kind: StatusError, known: true},
		{raw: "insufficient_balance", kind: StatusInsufficientBalance, known: true},
		{raw: "frozen_unknown_value", known: false},
		{raw: "OPEN", known: false},
		{raw: "", known: false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			status := ParseOrderStatus(tt.raw)
			kind, known := status.Known()
			assert.Equal(t, tt.known, known)
			assert.Equal(t, tt.known, status.IsKnown())
			assert.Equal(t, tt.raw, status.Raw())
			if tt.known {
				assert.Equal(t, tt.kind, kind)
				assert.Equal(t, tt.raw, kind.String())
			}
		})
	}
}

func TestParseOrderResult(t *testing.T) {
	payload := []byte(`{"order":{"id":13942927,"type":"bid","price":"2000.00","currency":"CNY",
		"amount":"0.00100000","amount_original":"0.00100000","date":1396255376,"status":"cancelled"}}`)

	order, err := ParseOrderResult(payload)
	require.NoError(t, err)

	assert.Equal(t, int64(13942927), order.ID)
	assert.Equal(t, OrderTypeBuy, order.Type)
	assert.Equal(t, "CNY", order.Currency)
	assert.True(t, decimal.RequireFromString("2000").Equal(order.Price))
	assert.True(t, decimal.RequireFromString("0.001").Equal(order.AmountOriginal))
	assert.Equal(t, int64(1396255376), order.Date)
	assert.True(t, time.Unix(1396255376, 0).Add(2*time.Hour).Equal(order.Placed))

	kind, known := order.Status.Known()
	assert.True(t, known)
	assert.Equal(t, StatusCancelled, kind)
}

func TestParseOrder_UnknownStatusPassesThrough(t *testing.T) {
	payload := []byte(`{"id":1,"type":"sell","amount":"1","date":0,"status":"frozen_unknown_value"}`)

	order, err := ParseOrder(payload)
	require.NoError(t, err)
	assert.False(t, order.Status.IsKnown())
	assert.Equal(t, "frozen_unknown_value", order.Status.Raw())
	assert.Equal(t, OrderTypeSell, order.Type)
	assert.True(t, order.Price.IsZero())
}

func TestParseOrder_Errors(t *testing.T) {
	tests := []struct {
		name     string
		payload  string
		sentinel error
		field    string
	}{
		{
			name:     "unknown type",
			payload:  `{"id":1,"type":"swap","amount":"1","date":0,"status":"open"}`,
			sentinel: ErrTypeMismatch,
			field:    "type",
		},
		{
			name:     "missing status",
			payload:  `{"id":1,"type":"buy","amount":"1","date":0}`,
			sentinel: ErrMissingField,
			field:    "status",
		},
		{
			name:     "string date",
			payload:  `{"id":1,"type":"buy","amount":"1","date":"today","status":"open"}`,
			sentinel: ErrTypeMismatch,
			field:    "date",
		},
		{
			name:     "date out of range",
			payload:  `{"id":1,"type":"buy","amount":"1","date":9223372036854775807,"status":"open"}`,
			sentinel: ErrTypeMismatch,
			field:    "date",
		},
		{
			name:     "missing wrapper",
			payload:  `{"id":1}`,
			sentinel: ErrMissingField,
			field:    "order",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var err error
			if tt.field == "order" {
				_, err = ParseOrderResult([]byte(tt.payload))
			} else {
				_, err = ParseOrder([]byte(tt.payload))
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.sentinel)

			parseErr, ok := err.(*ParseError)
			require.True(t, ok)
			assert.Equal(t, tt.field, parseErr.Field)
		})
	}
}
