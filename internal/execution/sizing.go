package execution

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"emaswitch-go/internal/signal"
)

// ErrInvalidSizing is returned for unusable sizing policies.
var ErrInvalidSizing = errors.New("invalid sizing policy")

// Sizer decides how many units a new lot opens with.
type Sizer interface {
	// Size returns the quantity to open at fillPrice given available cash; 0 means skip.
	Size(intent signal.Intent, fillPrice, cash, commission float64) float64
	Name() string
}

// FixedQuantity opens N units on every lot. N == 0 defers to the intent's requested quantity.
type FixedQuantity struct {
	N float64
}

// Size implements Sizer.
func (f FixedQuantity) Size(intent signal.Intent, _, _, _ float64) float64 {
	if f.N > 0 {
		return f.N
	}
	return intent.Quantity
}

// Name implements Sizer.
func (f FixedQuantity) Name() string { return fmt.Sprintf("fixed(%g)", f.N) }

// FullCashDeploy invests all cash minus a buffer fraction, in whole units.
type FullCashDeploy struct {
	Buffer float64
}

// Size implements Sizer.
func (f FullCashDeploy) Size(_ signal.Intent, fillPrice, cash, commission float64) float64 {
	if cash <= 0 || fillPrice <= 0 {
		return 0
	}
	budget := cash * (1 - f.Buffer)
	return math.Floor(budget / (fillPrice * (1 + commission)))
}

// Name implements Sizer.
func (f FullCashDeploy) Name() string { return fmt.Sprintf("full_cash(%g)", f.Buffer) }

// Sizing policy names accepted by NewSizer.
const (
	SizingFixed    = "fixed"
	SizingFullCash = "full_cash"
)

// NewSizer builds a validated sizing policy by name.
func NewSizer(policy string, quantity, buffer float64) (Sizer, error) {
	switch strings.ToLower(strings.TrimSpace(policy)) {
	case "", SizingFixed:
		if quantity < 0 || math.IsNaN(quantity) {
			return nil, fmt.Errorf("%w: fixed quantity %g", ErrInvalidSizing, quantity)
		}
		return FixedQuantity{N: quantity}, nil
	case SizingFullCash:
		if buffer < 0 || buffer >= 1 || math.IsNaN(buffer) {
			return nil, fmt.Errorf("%w: cash buffer %g must be in [0,1)", ErrInvalidSizing, buffer)
		}
		return FullCashDeploy{Buffer: buffer}, nil
	default:
		return nil, fmt.Errorf("%w: unknown policy %q", ErrInvalidSizing, policy)
	}
}
