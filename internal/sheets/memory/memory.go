package memory

import (
	"context"
	"sync"

	"billtracker/internal/core"
	"billtracker/internal/sheets"
)

// Mirror keeps the last written sheet in memory. The worker uses it when no
// spreadsheet is configured.
type Mirror struct {
	mu    sync.Mutex
	rows  [][]any
	syncs int
}

func New() *Mirror {
	return &Mirror{}
}

// ReplaceAll swaps the stored rows for the header plus bills.
func (m *Mirror) ReplaceAll(_ context.Context, bills []core.Bill) error {
	rows := sheets.BillRows(bills)
	m.mu.Lock()
	defer m.mu.Unlock()
	m.rows = rows
	m.syncs++
	return nil
}

// Rows returns a copy of the rows from the last ReplaceAll.
func (m *Mirror) Rows() [][]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([][]any, len(m.rows))
	for i, r := range m.rows {
		out[i] = append([]any(nil), r...)
	}
	return out
}

// Syncs counts ReplaceAll calls.
func (m *Mirror) Syncs() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.syncs
}
