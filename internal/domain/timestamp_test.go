package domain

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestParseTimestamp(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected time.Time
	}{
		{
			name:     "zero is epoch plus offset",
			input:    0,
			expected: time.Date(1970, 1, 1, 2, 0, 0, 0, time.UTC),
		},
		{
			name:     "one day",
			input:    86400,
			expected: time.Date(1970, 1, 2, 2, 0, 0, 0, time.UTC),
		},
		{
			name:     "new year 2021",
			input:    1609459200,
			expected: time.Date(2021, 1, 1, 2, 0, 0, 0, time.UTC),
		},
		{
			name:     "fractional seconds kept",
			input:    1.5,
			expected: time.Date(1970, 1, 1, 2, 0, 1, 500000000, time.UTC),
		},
		{
			name:     "negative seconds",
			input:    -3600,
			expected: time.Date(1970, 1, 1, 1, 0, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParseTimestamp(tt.input)
			assert.True(t, tt.expected.Equal(result), "expected %s, got %s", tt.expected, result)
			assert.Equal(t, time.UTC, result.Location())
		})
	}
}

func TestParseTimestamp_NoDST(t *testing.T) {
	// mid-summer and mid-winter get the same flat offset
	summer := ParseTimestamp(float64(time.Date(2020, 7, 1, 0, 0, 0, 0, time.UTC).Unix()))
	winter := ParseTimestamp(float64(time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC).Unix()))

	assert.Equal(t, 2, summer.Hour())
	assert.Equal(t, 2, winter.Hour())
}

func TestParseTimestamp_ClampsOutOfRange(t *testing.T) {
	latest := timestampFromDecimal(maxSeconds)
	earliest := timestampFromDecimal(minSeconds)

	assert.True(t, latest.Equal(ParseTimestamp(1e19)), "got %s", ParseTimestamp(1e19))
	assert.True(t, earliest.Equal(ParseTimestamp(-1e19)), "got %s", ParseTimestamp(-1e19))
	assert.Equal(t, 2262, latest.Year())
	assert.Equal(t, 1677, earliest.Year())
	assert.True(t, latest.After(ParseTimestamp(1609459200)))
}

func TestParseDate_Bounds(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{name: "upper bound", raw: maxSeconds.String()},
		{name: "past upper bound", raw: maxSeconds.Add(decimal.NewFromInt(1)).String(), wantErr: true},
		{name: "lower bound", raw: minSeconds.String()},
		{name: "past lower bound", raw: minSeconds.Sub(decimal.NewFromInt(1)).String(), wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseDate("date", tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrTypeMismatch)
				return
			}
			assert.NoError(t, err)
		})
	}
}
