package memory

import (
	"context"
	"testing"

	"billtracker/internal/core"
)

func TestMirrorReplaceAll(t *testing.T) {
	m := New()
	if len(m.Rows()) != 0 || m.Syncs() != 0 {
		t.Fatal("new mirror should be empty")
	}

	bills := []core.Bill{
		{ID: 1, BillNumber: "SF 2", Chamber: core.ChamberSenate, Position: core.PositionSupport},
		{ID: 2, BillNumber: "HF 9", Chamber: core.ChamberHouse, Position: core.PositionMonitor},
	}
	if err := m.ReplaceAll(context.Background(), bills); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	if got := len(m.Rows()); got != 3 {
		t.Fatalf("expected 3 rows, got %d", got)
	}

	if err := m.ReplaceAll(context.Background(), bills[:1]); err != nil {
		t.Fatalf("ReplaceAll() error = %v", err)
	}
	rows := m.Rows()
	if len(rows) != 2 || rows[1][1] != "SF 2" {
		t.Fatalf("unexpected rows after replace: %v", rows)
	}
	if m.Syncs() != 2 {
		t.Errorf("Syncs() = %d, want 2", m.Syncs())
	}
}

func TestMirrorRowsIsCopy(t *testing.T) {
	m := New()
	_ = m.ReplaceAll(context.Background(), []core.Bill{{ID: 1, BillNumber: "SF 2"}})

	rows := m.Rows()
	rows[1][1] = "changed"
	if m.Rows()[1][1] != "SF 2" {
		t.Fatal("Rows() should return a copy")
	}
}
