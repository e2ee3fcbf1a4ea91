package risk

import "testing"

func TestAllowLong(t *testing.T) {
	floor := 50.0
	limits := Limits{MinCash: &floor}
	if !limits.AllowLong(50) {
		t.Fatalf("expected cash at the floor to pass")
	}
	if limits.AllowLong(49.9) {
		t.Fatalf("expected cash below the floor to fail")
	}
}

func TestAllowLongWithoutFloor(t *testing.T) {
	if !(Limits{}).AllowLong(-1000) {
		t.Fatalf("expected no floor to allow any cash level")
	}
}
