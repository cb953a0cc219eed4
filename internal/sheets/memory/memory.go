// Package memory holds an in-memory ledger used in tests and when no
// spreadsheet is configured.
package memory

import (
	"context"
	"fmt"
	"sync"

	"domus/internal/sheets"
)

type Ledger struct {
	mu      sync.Mutex
	entries []sheets.LedgerEntry
}

var _ sheets.LedgerWriter = (*Ledger)(nil)

func New() *Ledger {
	return &Ledger{}
}

// AppendPayment stores the entry and returns a synthetic row reference.
func (l *Ledger) AppendPayment(_ context.Context, entry sheets.LedgerEntry) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, entry)
	return fmt.Sprintf("mem:%d", len(l.entries)), nil
}

// Entries returns a copy of everything appended so far.
func (l *Ledger) Entries() []sheets.LedgerEntry {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]sheets.LedgerEntry, len(l.entries))
	copy(out, l.entries)
	return out
}
