package signal

import "testing"

func TestSideOpposite(t *testing.T) {
	if Buy.Opposite() != Sell {
		t.Fatalf("expected SELL opposite of BUY")
	}
	if Sell.Opposite() != Buy {
		t.Fatalf("expected BUY opposite of SELL")
	}
}

func TestSideSign(t *testing.T) {
	if Buy.Sign() != 1 || Sell.Sign() != -1 {
		t.Fatalf("unexpected signs %.0f %.0f", Buy.Sign(), Sell.Sign())
	}
}
