package execution

import (
	"errors"
	"fmt"
	"math"

	"emaswitch-go/internal/signal"
)

// ErrInvalidCosts is returned for rates outside [0, 1).
var ErrInvalidCosts = errors.New("invalid transaction costs")

// Costs holds the per-fill transaction cost model as fractions (0.001 = 0.1%).
type Costs struct {
	Commission float64
	Slippage   float64
}

// Validate rejects NaN and rates outside [0, 1). A slippage of 1 would fill sells at zero.
func (c Costs) Validate() error {
	if !validRate(c.Commission) {
		return fmt.Errorf("%w: commission %.6f", ErrInvalidCosts, c.Commission)
	}
	if !validRate(c.Slippage) {
		return fmt.Errorf("%w: slippage %.6f", ErrInvalidCosts, c.Slippage)
	}
	return nil
}

func validRate(r float64) bool {
	return !math.IsNaN(r) && r >= 0 && r < 1
}

// FillPrice moves the reference price against the trader: buys fill higher, sells lower.
func (c Costs) FillPrice(side signal.Side, ref float64) float64 {
	if side == signal.Buy {
		return ref * (1 + c.Slippage)
	}
	return ref * (1 - c.Slippage)
}

// Fee returns the commission charged on notional.
func (c Costs) Fee(notional float64) float64 {
	return notional * c.Commission
}
