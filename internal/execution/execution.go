// Package execution prices intents into fills: slippage, commission and position sizing.
package execution

import (
	"time"

	"emaswitch-go/internal/signal"
)

// Kind classifies what a fill did to the position.
type Kind string

const (
	// KindOpen opens a new lot.
	KindOpen Kind = "open"
	// KindClose closes the open lot because of an opposing intent.
	KindClose Kind = "close"
	// KindSquareOff closes the open lot at the end of the bar stream.
	KindSquareOff Kind = "squareoff"
)

// Fill is the economic result of executing an intent.
type Fill struct {
	Seq         int         `json:"seq"`
	Symbol      string      `json:"symbol"`
	Side        signal.Side `json:"side"`
	Kind        Kind        `json:"kind"`
	Price       float64     `json:"price"`
	Qty         float64     `json:"qty"`
	Fee         float64     `json:"fee"`
	RealizedPnL float64     `json:"realized_pnl"`
	CashAfter   float64     `json:"cash_after"`
	Ts          time.Time   `json:"ts"`
}

// Notional returns price times quantity.
func (f Fill) Notional() float64 { return f.Price * f.Qty }

// Closing reports whether the fill realized P&L on an existing lot.
func (f Fill) Closing() bool { return f.Kind == KindClose || f.Kind == KindSquareOff }
