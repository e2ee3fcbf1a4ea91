package paper

import (
	"testing"

	"emaswitch-go/internal/execution"
)

func TestLedgerAppendNumbersFills(t *testing.T) {
	ledger := NewLedger(2)
	first := ledger.Append(execution.Fill{Symbol: "BTCUSDT", Qty: 1})
	ledger.Record(execution.Fill{Symbol: "BTCUSDT", Qty: 2})

	if first.Seq != 1 {
		t.Fatalf("expected first seq 1, got %d", first.Seq)
	}
	snapshot := ledger.Snapshot()
	if len(snapshot) != 2 || ledger.Len() != 2 {
		t.Fatalf("expected 2 fills, got %d", len(snapshot))
	}
	if snapshot[1].Seq != 2 || snapshot[1].Qty != 2 {
		t.Fatalf("unexpected second fill %+v", snapshot[1])
	}

	snapshot[0].Qty = 99
	if ledger.Snapshot()[0].Qty != 1 {
		t.Fatalf("snapshot must be a copy")
	}
}

func TestMultiRecorderFansOut(t *testing.T) {
	a, b := NewLedger(0), NewLedger(0)
	MultiRecorder{a, nil, b}.Record(execution.Fill{Symbol: "ETHUSDT"})
	if a.Len() != 1 || b.Len() != 1 {
		t.Fatalf("expected both ledgers to record")
	}
}
