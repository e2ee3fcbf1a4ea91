package strategy

import (
	"errors"
	"fmt"
	"strings"

	sig "emaswitch-go/internal/signal"
)

// ErrUnknownMode is returned for unrecognised strategy or EMA modes.
var ErrUnknownMode = errors.New("unknown strategy mode")

// Strategy turns bars into trade intents. Implementations are not safe for concurrent use.
type Strategy interface {
	Observe(bar sig.Bar) []sig.Intent
	Name() string
}

// Params expresses tunable knobs required by strategy constructors.
type Params struct {
	Mode        string
	ShortPeriod int
	LongPeriod  int
	EMAMode     EMAMode
	MinVolume   float64
}

// Build returns a fresh strategy implementation matching the configured mode. A comma separated
// mode list, e.g. "always_buy,always_sell", builds a Composite of each member.
func Build(params Params) (Strategy, error) {
	modes := strings.Split(params.Mode, ",")
	if len(modes) == 1 {
		return build(params)
	}
	members := make([]Strategy, 0, len(modes))
	for _, mode := range modes {
		if strings.TrimSpace(mode) == "" {
			return nil, fmt.Errorf("%w: empty entry in %q", ErrUnknownMode, params.Mode)
		}
		p := params
		p.Mode = mode
		strat, err := build(p)
		if err != nil {
			return nil, err
		}
		members = append(members, strat)
	}
	return NewComposite(members...), nil
}

func build(params Params) (Strategy, error) {
	switch strings.ToLower(strings.TrimSpace(params.Mode)) {
	case "", "ema", "ema_crossover", "ema_switch":
		return NewEMACrossover(params.ShortPeriod, params.LongPeriod, params.EMAMode)
	case "bullish_bar", "always_buy":
		return NewBullishBar(params.MinVolume), nil
	case "bearish_bar", "always_sell":
		return NewBearishBar(params.MinVolume), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownMode, params.Mode)
	}
}
