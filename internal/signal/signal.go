// Package signal standardizes payloads shared between data loading, strategy and accounting layers.
package signal

import "time"

// Bar models one OHLCV interval of price history. Bars are values and never mutated after loading.
type Bar struct {
	Symbol string
	Ts     time.Time
	Open   float64
	High   float64
	Low    float64
	Close  float64
	Volume float64
}

// Side enumerates trade directions.
type Side string

const (
	// Buy indicates a long order or a short cover.
	Buy Side = "BUY"
	// Sell indicates a short order or a long exit.
	Sell Side = "SELL"
)

// Opposite returns the side that closes a lot opened with s.
func (s Side) Opposite() Side {
	if s == Buy {
		return Sell
	}
	return Buy
}

// Sign returns +1 for Buy and -1 for Sell.
func (s Side) Sign() float64 {
	if s == Buy {
		return 1
	}
	return -1
}

// Reason tags what an intent asks the account to do.
type Reason string

const (
	// Open establishes a lot in the intent side, closing any opposing lot first.
	Open Reason = "open"
	// Close flattens an opposing lot and never opens a new one.
	Close Reason = "close"
)

// Intent expresses a directional instruction produced by a strategy, not yet priced or filled.
type Intent struct {
	Side     Side
	Reason   Reason
	Price    float64 // close of the bar that triggered it
	Quantity float64 // requested units; 0 on Close means the whole lot
	Ts       time.Time
}
