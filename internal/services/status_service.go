package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"domus/internal/core"
	"domus/internal/storage"
)

// statusWorkers bounds concurrent per-tenant status lookups.
const statusWorkers = 8

// TenantStatus pairs a tenant with the recency badge shown on the tenant
// list, plus their most recent payment when one exists.
type TenantStatus struct {
	Tenant      core.Tenant
	Status      core.PaymentStatus
	LastPayment *core.Payment
}

// OverdueEntry is one line of the overdue report: who owes what for which
// month, under the current-month rule.
type OverdueEntry struct {
	Tenant core.Tenant
	Month  core.Month
	Amount core.Money
}

// StatusService derives payment status over the store's snapshots.
type StatusService struct {
	store Store
}

func NewStatusService(store Store) *StatusService {
	return &StatusService{store: store}
}

// IsMonthPaid reports whether the tenant has at least one payment recorded
// for the month. Duplicate or partial payments count the same as full ones.
func (s *StatusService) IsMonthPaid(ctx context.Context, tenantID int64, month core.Month) (bool, error) {
	return s.store.HasPayment(ctx, tenantID, month)
}

// CurrentStatus derives the tenant's status for the month containing now,
// under the current-month rule.
func (s *StatusService) CurrentStatus(ctx context.Context, tenant core.Tenant, now time.Time) (core.StatusResult, error) {
	reference := core.MonthOf(now)
	rule := s.ruleFor(ctx, tenant.Frequency)

	// Entry-month exemption needs no payment lookup.
	if !tenant.EntryMonth().Before(reference) {
		return core.StatusResult{
			Status:         rule.Evaluate(tenant.EntryMonth(), reference, false),
			ReferenceMonth: reference,
		}, nil
	}

	paid, err := s.store.HasPayment(ctx, tenant.ID, reference)
	if err != nil {
		return core.StatusResult{}, fmt.Errorf("current status for tenant %d: %w", tenant.ID, err)
	}
	return core.StatusResult{
		Status:         rule.Evaluate(tenant.EntryMonth(), reference, paid),
		ReferenceMonth: reference,
	}, nil
}

// ListWithStatus returns all tenants with the recency badge, in the
// store's stable tenant order. Per-tenant lookups run concurrently; a
// tenant whose payments cannot be read is skipped rather than failing the
// whole list.
func (s *StatusService) ListWithStatus(ctx context.Context, now time.Time) ([]TenantStatus, error) {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	results := make([]*TenantStatus, len(tenants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statusWorkers)
	for i, tenant := range tenants {
		g.Go(func() error {
			last, err := s.store.LastPayment(gctx, tenant.ID)
			switch {
			case errors.Is(err, storage.ErrNotFound):
				results[i] = &TenantStatus{
					Tenant: tenant,
					Status: RecencyStatus(time.Time{}, now),
				}
				return nil
			case err != nil:
				slog.WarnContext(gctx, "Skipping tenant with unreadable payments",
					"tenant_id", tenant.ID, "error", err)
				return nil
			default:
				results[i] = &TenantStatus{
					Tenant:      tenant,
					Status:      RecencyStatus(last.PaidAt, now),
					LastPayment: &last,
				}
				return nil
			}
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Reassemble in stable order, dropping skipped tenants.
	out := make([]TenantStatus, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

// OverdueTenants returns the tenants overdue for the current month under
// the current-month rule, with the rent they owe.
func (s *StatusService) OverdueTenants(ctx context.Context, now time.Time) ([]OverdueEntry, error) {
	tenants, err := s.store.ListTenants(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tenants: %w", err)
	}

	reference := core.MonthOf(now)
	var overdue []OverdueEntry
	for _, tenant := range tenants {
		res, err := s.CurrentStatus(ctx, tenant, now)
		if err != nil {
			slog.WarnContext(ctx, "Skipping tenant in overdue report",
				"tenant_id", tenant.ID, "error", err)
			continue
		}
		if res.Status == core.StatusOverdue {
			overdue = append(overdue, OverdueEntry{
				Tenant: tenant,
				Month:  reference,
				Amount: tenant.Rent,
			})
		}
	}
	return overdue, nil
}

// ruleFor resolves the status rule for a frequency. Frequencies without a
// decided rule fall back to the monthly rule, preserving the historical
// behavior of applying monthly logic to every tenant.
func (s *StatusService) ruleFor(ctx context.Context, frequency core.PaymentFrequency) StatusRule {
	rule, err := GetStatusRule(frequency)
	if err != nil {
		slog.WarnContext(ctx, "Falling back to monthly status rule",
			"frequency", string(frequency))
		return MonthlyRule{}
	}
	return rule
}
