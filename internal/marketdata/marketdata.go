// Package marketdata loads historical bars from files, archives and databases, and streams live bars.
package marketdata

import (
	"context"
	"errors"
	"time"

	"emaswitch-go/internal/signal"
)

var (
	// ErrMalformedRow is returned when a CSV row cannot be parsed into a bar.
	ErrMalformedRow = errors.New("malformed kline row")
	// ErrNotFound is returned when an archive for the requested period does not exist.
	ErrNotFound = errors.New("archive not found")
)

// Source produces a finite bar history ordered by time.
type Source interface {
	Bars(ctx context.Context) ([]signal.Bar, error)
}

// openTime converts a Binance open-time value to UTC, detecting its unit by magnitude.
// Spot archives switched from milliseconds to microseconds in 2025; seconds and nanoseconds are accepted too.
func openTime(v int64) time.Time {
	switch {
	case v >= 1e17:
		return time.Unix(0, v).UTC()
	case v >= 1e14:
		return time.UnixMicro(v).UTC()
	case v >= 1e11:
		return time.UnixMilli(v).UTC()
	default:
		return time.Unix(v, 0).UTC()
	}
}
