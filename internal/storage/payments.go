package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"domus/internal/core"
)

// PaymentUpdate carries the fields of a partial payment update. paid_at is
// immutable after recording, as in the original ledger.
type PaymentUpdate struct {
	TenantID    *int64
	Month       *core.Month
	AmountCents *int64
	Notes       *string
}

// PendingSyncPayment is the minimal row the sheets worker needs to queue
// an export.
type PendingSyncPayment struct {
	ID       int64
	TenantID int64
	PaidAt   time.Time
}

const paymentColumns = `id, tenant_id, month, amount_cents, paid_at, notes`

func (r *SQLiteRepository) CreatePayment(ctx context.Context, p core.Payment) (int64, error) {
	paidAt := p.PaidAt
	if paidAt.IsZero() {
		paidAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO payments (tenant_id, month, amount_cents, paid_at, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		p.TenantID, p.Month.String(), p.Amount.Cents,
		paidAt.UTC().Format(timeLayout), nullString(p.Notes))
	if err != nil {
		return 0, fmt.Errorf("create payment: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("payment insert id: %w", err)
	}

	slog.InfoContext(ctx, "Payment recorded",
		"id", id, "tenant_id", p.TenantID, "month", p.Month.String(),
		"amount_cents", p.Amount.Cents)
	return id, nil
}

func (r *SQLiteRepository) GetPayment(ctx context.Context, id int64) (core.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE id = ?`, id)
	p, err := scanPayment(row)
	if err != nil {
		return core.Payment{}, fmt.Errorf("get payment %d: %w", id, mapRowErr(err))
	}
	return p, nil
}

// ListPayments returns every payment, newest first.
func (r *SQLiteRepository) ListPayments(ctx context.Context) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments ORDER BY paid_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list payments: %w", err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

// PaymentsByTenant returns a tenant's payment history, newest first.
func (r *SQLiteRepository) PaymentsByTenant(ctx context.Context, tenantID int64) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments WHERE tenant_id = ? ORDER BY paid_at DESC, id DESC`,
		tenantID)
	if err != nil {
		return nil, fmt.Errorf("payments by tenant %d: %w", tenantID, err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

func (r *SQLiteRepository) PaymentsByTenantMonth(ctx context.Context, tenantID int64, month core.Month) ([]core.Payment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE tenant_id = ? AND month = ? ORDER BY paid_at DESC, id DESC`,
		tenantID, month.String())
	if err != nil {
		return nil, fmt.Errorf("payments for tenant %d month %s: %w", tenantID, month, err)
	}
	defer rows.Close()
	return collectPayments(rows)
}

// HasPayment reports whether at least one payment exists for the tenant in
// the given month. Amount sufficiency is deliberately not checked.
func (r *SQLiteRepository) HasPayment(ctx context.Context, tenantID int64, month core.Month) (bool, error) {
	var n int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM payments WHERE tenant_id = ? AND month = ?`,
		tenantID, month.String()).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("has payment tenant %d month %s: %w", tenantID, month, err)
	}
	return n > 0, nil
}

// LastPayment returns the tenant's most recently recorded payment, or
// ErrNotFound when the tenant has never paid.
func (r *SQLiteRepository) LastPayment(ctx context.Context, tenantID int64) (core.Payment, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+paymentColumns+` FROM payments
		 WHERE tenant_id = ? ORDER BY paid_at DESC, id DESC LIMIT 1`, tenantID)
	p, err := scanPayment(row)
	if err != nil {
		return core.Payment{}, fmt.Errorf("last payment for tenant %d: %w", tenantID, mapRowErr(err))
	}
	return p, nil
}

func (r *SQLiteRepository) UpdatePayment(ctx context.Context, id int64, u PaymentUpdate) error {
	var cols []string
	var args []any
	if u.TenantID != nil {
		cols = append(cols, "tenant_id = ?")
		args = append(args, *u.TenantID)
	}
	if u.Month != nil {
		cols = append(cols, "month = ?")
		args = append(args, u.Month.String())
	}
	if u.AmountCents != nil {
		cols = append(cols, "amount_cents = ?")
		args = append(args, *u.AmountCents)
	}
	if u.Notes != nil {
		cols = append(cols, "notes = ?")
		args = append(args, nullString(*u.Notes))
	}

	set, args := buildUpdate(cols, args)
	if set == "" {
		return nil
	}
	args = append(args, id)

	res, err := r.db.ExecContext(ctx, `UPDATE payments SET `+set+` WHERE id = ?`, args...)
	if err != nil {
		return fmt.Errorf("update payment %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update payment %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM payments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete payment %d: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("delete payment %d: %w", id, ErrNotFound)
	}
	return nil
}

func (r *SQLiteRepository) CountPayments(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM payments`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count payments: %w", err)
	}
	return n, nil
}

// SumPayments totals every recorded payment amount, in cents.
func (r *SQLiteRepository) SumPayments(ctx context.Context) (int64, error) {
	var total sql.NullInt64
	if err := r.db.QueryRowContext(ctx, `SELECT SUM(amount_cents) FROM payments`).Scan(&total); err != nil {
		return 0, fmt.Errorf("sum payments: %w", err)
	}
	return total.Int64, nil
}

// PendingSyncPayments returns payments not yet mirrored to the ledger
// sheet, oldest first, limited to a batch.
func (r *SQLiteRepository) PendingSyncPayments(ctx context.Context, limit int) ([]PendingSyncPayment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, tenant_id, paid_at FROM payments
		 WHERE synced = 0 AND sync_error = 0 ORDER BY paid_at ASC, id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("pending sync payments: %w", err)
	}
	defer rows.Close()

	var pending []PendingSyncPayment
	for rows.Next() {
		var p PendingSyncPayment
		var paidAt string
		if err := rows.Scan(&p.ID, &p.TenantID, &paidAt); err != nil {
			return nil, fmt.Errorf("scan pending payment: %w", err)
		}
		p.PaidAt = parseTime(paidAt)
		pending = append(pending, p)
	}
	return pending, rows.Err()
}

// MarkSynced flags a payment as exported to the ledger sheet.
func (r *SQLiteRepository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE payments SET synced = 1, sync_error = 0 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark payment synced: %w", err)
	}
	slog.InfoContext(ctx, "Payment marked as synced", "id", id)
	return nil
}

// MarkSyncError flags a payment whose export failed so the backup scan
// stops retrying it.
func (r *SQLiteRepository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE payments SET sync_error = 1 WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark payment sync error: %w", err)
	}
	slog.WarnContext(ctx, "Payment marked with sync error", "id", id)
	return nil
}

func collectPayments(rows *sql.Rows) ([]core.Payment, error) {
	var payments []core.Payment
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, fmt.Errorf("scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

func scanPayment(row rowScanner) (core.Payment, error) {
	var p core.Payment
	var month, paidAt string
	var amountCents int64
	var notes sql.NullString
	if err := row.Scan(&p.ID, &p.TenantID, &month, &amountCents, &paidAt, &notes); err != nil {
		return core.Payment{}, err
	}
	m, err := core.ParseMonth(month)
	if err != nil {
		return core.Payment{}, fmt.Errorf("payment %d month %q: %w", p.ID, month, err)
	}
	p.Month = m
	p.Amount = core.Money{Cents: amountCents}
	p.PaidAt = parseTime(paidAt)
	p.Notes = notes.String
	return p, nil
}
