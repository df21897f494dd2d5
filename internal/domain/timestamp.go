// Package domain holds the typed model of exchange API payloads: account info,
// orders, market depth and trade history, together with the rules that turn raw
// wire values into derived fields.
package domain

import (
	"math"
	"time"

	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

// ExchangeOffset is the fixed offset of the exchange clock. It is added flat to
// every server timestamp, with no daylight saving adjustment.
const ExchangeOffset = 2 * time.Hour

// Raw seconds accepted from the exchange. The bounds keep the shifted time
// representable as Unix nanoseconds (years 1677 to 2262).
var (
	minSeconds = decimal.NewFromInt(math.MinInt64/int64(time.Second) + 1)
	maxSeconds = decimal.NewFromInt(math.MaxInt64/int64(time.Second) - int64(ExchangeOffset/time.Second))
)

// ParseTimestamp converts raw Unix seconds reported by the exchange into a time:
// epoch + rawSeconds + ExchangeOffset, in UTC. Fractional seconds are kept to
// nanosecond precision. Non-finite input yields epoch + ExchangeOffset; finite
// input outside the supported range is clamped to its nearest bound.
func ParseTimestamp(rawSeconds float64) time.Time {
	if math.IsNaN(rawSeconds) || math.IsInf(rawSeconds, 0) {
		return timestampFromDecimal(decimal.Zero)
	}
	seconds := decimal.NewFromFloat(rawSeconds)
	switch {
	case seconds.LessThan(minSeconds):
		seconds = minSeconds
	case seconds.GreaterThan(maxSeconds):
		seconds = maxSeconds
	}
	return timestampFromDecimal(seconds)
}

func timestampFromDecimal(seconds decimal.Decimal) time.Time {
	whole := seconds.IntPart()
	nanos := seconds.Sub(decimal.NewFromInt(whole)).Shift(9).IntPart()
	return time.Unix(whole, nanos).UTC().Add(ExchangeOffset)
}

// parseDate parses a numeric date string and derives its timestamp.
func parseDate(field, raw string) (time.Time, error) {
	seconds, err := decimal.NewFromString(raw)
	if err != nil {
		return time.Time{}, typeMismatch(field, err)
	}
	if err := checkSeconds(field, seconds); err != nil {
		return time.Time{}, err
	}
	return timestampFromDecimal(seconds), nil
}

func checkSeconds(field string, seconds decimal.Decimal) error {
	if seconds.LessThan(minSeconds) || seconds.GreaterThan(maxSeconds) {
		return typeMismatch(field, errors.Errorf("%s seconds out of range [%s, %s]", seconds, minSeconds, maxSeconds))
	}
	return nil
}
