package strategy

import (
	"errors"
	"testing"
)

func TestBuildModes(t *testing.T) {
	cases := map[string]string{
		"":              "EMACrossover(3,5,running)",
		"ema_crossover": "EMACrossover(3,5,running)",
		"always_buy":    "BullishBar",
		"bearish_bar":   "BearishBar",
	}
	for mode, name := range cases {
		strat, err := Build(Params{Mode: mode, ShortPeriod: 3, LongPeriod: 5})
		if err != nil {
			t.Fatalf("Build(%q) returned error: %v", mode, err)
		}
		if strat.Name() != name {
			t.Fatalf("Build(%q) name = %s, want %s", mode, strat.Name(), name)
		}
	}
}

func TestBuildUnknownMode(t *testing.T) {
	if _, err := Build(Params{Mode: "obi"}); !errors.Is(err, ErrUnknownMode) {
		t.Fatalf("expected ErrUnknownMode, got %v", err)
	}
}

func TestBuildPropagatesPeriodError(t *testing.T) {
	if _, err := Build(Params{Mode: "ema", ShortPeriod: 0, LongPeriod: 5}); !errors.Is(err, ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestBuildModeListCombinesMembers(t *testing.T) {
	strat, err := Build(Params{Mode: "always_buy, always_sell", MinVolume: 0})
	if err != nil {
		t.Fatalf("Build returned error: %v", err)
	}
	if strat.Name() != "BullishBar+BearishBar" {
		t.Fatalf("name = %s", strat.Name())
	}
}

func TestBuildModeListRejectsBadMember(t *testing.T) {
	for _, mode := range []string{"always_buy,obi", "always_buy,"} {
		if _, err := Build(Params{Mode: mode}); !errors.Is(err, ErrUnknownMode) {
			t.Fatalf("Build(%q): expected ErrUnknownMode, got %v", mode, err)
		}
	}
}
