// Package worker mirrors recorded payments into the external ledger. The
// primary path is AMQP messages published on payment creation; a polling
// loop over unsynced rows backs it up when messages are lost.
package worker

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"domus/internal/amqp"
	"domus/internal/core"
	"domus/internal/sheets"
	"domus/internal/storage"
)

// Store is the slice of the repository the worker reads and updates.
type Store interface {
	GetPayment(ctx context.Context, id int64) (core.Payment, error)
	GetTenant(ctx context.Context, id int64) (core.Tenant, error)
	GetHouse(ctx context.Context, id int64) (core.House, error)
	PendingSyncPayments(ctx context.Context, limit int) ([]storage.PendingSyncPayment, error)
	MarkSynced(ctx context.Context, id int64) error
	MarkSyncError(ctx context.Context, id int64) error
}

type SyncWorker struct {
	store     Store
	ledger    sheets.LedgerWriter
	batchSize int
}

func NewSyncWorker(store Store, ledger sheets.LedgerWriter, batchSize int) *SyncWorker {
	return &SyncWorker{
		store:     store,
		ledger:    ledger,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single payment sync message from AMQP.
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.PaymentSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"payment_id", msg.ID,
		"tenant_id", msg.TenantID)

	if err := w.syncPayment(ctx, msg.ID); err != nil {
		return fmt.Errorf("sync payment %d: %w", msg.ID, err)
	}
	return nil
}

// ProcessPendingPayments mirrors payments that have not reached the ledger
// yet. This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingPayments(ctx context.Context) error {
	pending, err := w.store.PendingSyncPayments(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending payments: %w", err)
	}
	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending payments", "count", len(pending))

	for _, p := range pending {
		if err := w.syncPayment(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync payment", "payment_id", p.ID, "error", err)
			continue
		}
	}
	return nil
}

// StartupSyncCheck drains the pending backlog once at worker startup to
// recover from missed messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.store.PendingSyncPayments(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending payments for startup check: %w", err)
	}
	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending payments found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending payments on startup, processing...",
		"count", len(pending))

	synced := 0
	failed := 0
	for _, p := range pending {
		if err := w.syncPayment(ctx, p.ID); err != nil {
			slog.ErrorContext(ctx, "Failed to sync payment during startup",
				"payment_id", p.ID, "error", err)
			failed++
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", synced,
		"errors", failed)
	return nil
}

// RunPolling runs the backup loop until ctx is cancelled.
func (w *SyncWorker) RunPolling(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.ProcessPendingPayments(ctx); err != nil {
				slog.ErrorContext(ctx, "Pending payment pass failed", "error", err)
			}
		}
	}
}

func (w *SyncWorker) syncPayment(ctx context.Context, id int64) error {
	payment, err := w.store.GetPayment(ctx, id)
	if err != nil {
		w.markError(ctx, id)
		return fmt.Errorf("get payment: %w", err)
	}

	tenant, err := w.store.GetTenant(ctx, payment.TenantID)
	if err != nil {
		w.markError(ctx, id)
		return fmt.Errorf("get tenant: %w", err)
	}

	house, err := w.store.GetHouse(ctx, tenant.HouseID)
	if err != nil {
		w.markError(ctx, id)
		return fmt.Errorf("get house: %w", err)
	}

	entry := sheets.LedgerEntry{
		PaymentID:  payment.ID,
		TenantName: tenant.FullName(),
		HouseName:  house.Name,
		Month:      payment.Month,
		Amount:     payment.Amount,
		PaidAt:     payment.PaidAt,
		Notes:      payment.Notes,
	}

	ref, err := w.ledger.AppendPayment(ctx, entry)
	if err != nil {
		w.markError(ctx, id)
		return fmt.Errorf("append to ledger: %w", err)
	}

	if err := w.store.MarkSynced(ctx, id); err != nil {
		// The row reached the ledger; the flag will be retried by the
		// polling loop, which may produce a duplicate row.
		slog.ErrorContext(ctx, "Failed to mark as synced", "payment_id", id, "error", err)
	}

	slog.InfoContext(ctx, "Successfully synced payment",
		"payment_id", id,
		"sheets_ref", ref,
		"tenant", tenant.FullName(),
		"amount_cents", payment.Amount.Cents)
	return nil
}

func (w *SyncWorker) markError(ctx context.Context, id int64) {
	if err := w.store.MarkSyncError(ctx, id); err != nil {
		slog.ErrorContext(ctx, "Failed to mark sync error", "payment_id", id, "error", err)
	}
}
