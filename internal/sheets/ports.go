// Package sheets defines the outbound ports for the external payment
// ledger. The worker mirrors recorded payments to it; the app never
// reads ledger data back.
package sheets

import (
	"context"
	"time"

	"domus/internal/core"
)

// LedgerEntry is one mirrored payment row, denormalized so the ledger
// stays readable without the database at hand.
type LedgerEntry struct {
	PaymentID  int64
	TenantName string
	HouseName  string
	Month      core.Month
	Amount     core.Money
	PaidAt     time.Time
	Notes      string
}

// LedgerWriter appends payment rows to the external ledger.
type LedgerWriter interface {
	AppendPayment(ctx context.Context, entry LedgerEntry) (rowRef string, err error)
}
