package strategy

import (
	"testing"

	"emaswitch-go/internal/signal"
)

func TestBullishBarBuysOnGreenBar(t *testing.T) {
	strat := NewBullishBar(1000)
	out := strat.Observe(signal.Bar{Open: 100, High: 105, Low: 99, Close: 104, Volume: 23000})
	if len(out) != 1 {
		t.Fatalf("expected one intent, got %d", len(out))
	}
	if out[0].Side != signal.Buy || out[0].Reason != signal.Open || out[0].Price != 104 {
		t.Fatalf("unexpected intent %+v", out[0])
	}
}

func TestBullishBarIgnoresRedBar(t *testing.T) {
	strat := NewBullishBar(1000)
	if out := strat.Observe(signal.Bar{Open: 100, High: 102, Low: 98, Close: 99, Volume: 9000}); out != nil {
		t.Fatalf("expected no intent, got %+v", out)
	}
}

func TestCandleBiasRespectsVolume(t *testing.T) {
	strat := NewBearishBar(10000)
	if out := strat.Observe(signal.Bar{Open: 100, High: 101, Low: 95, Close: 96, Volume: 8700}); out != nil {
		t.Fatalf("expected nil intent due to insufficient volume")
	}
	out := strat.Observe(signal.Bar{Open: 100, High: 101, Low: 95, Close: 96, Volume: 12000})
	if len(out) != 1 || out[0].Side != signal.Sell {
		t.Fatalf("expected sell intent, got %+v", out)
	}
}
