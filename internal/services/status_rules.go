// Package services holds the payment-status engine and the orchestration
// around the store: status derivation, house and portfolio rollups, and
// the mutation services that feed the refresh bus and the export queue.
//
// Two overdue definitions coexist on purpose. The current-month rule
// drives the dashboard and house counters; the recency rule drives the
// tenant-list badge. They disagree for some histories and different
// screens rely on each, so they stay separate until product reconciles
// them.
package services

import (
	"fmt"
	"time"

	"domus/internal/core"
)

// StatusRule is the strategy interface for deriving a tenant's rent
// status for a reference month. Each payment frequency gets its own rule.
type StatusRule interface {
	// Evaluate derives the status for the reference month. currentPaid is
	// whether at least one payment exists for that month.
	Evaluate(entryMonth, reference core.Month, currentPaid bool) core.PaymentStatus
}

// MonthlyRule implements StatusRule for monthly rent.
//
// A tenant whose entry month is the reference month or later is always up
// to date: newly added tenants are never flagged overdue in the month
// they join. Otherwise only the reference month's payment presence
// counts. Unpaid months between entry and now do not matter, and a fully
// paid past does not excuse a missing current month.
type MonthlyRule struct{}

func (MonthlyRule) Evaluate(entryMonth, reference core.Month, currentPaid bool) core.PaymentStatus {
	if !entryMonth.Before(reference) {
		return core.StatusUpToDate
	}
	if currentPaid {
		return core.StatusUpToDate
	}
	return core.StatusOverdue
}

// RecencyStatus is the second, independent overdue definition: a tenant is
// overdue when they have never paid, or when more than one whole calendar
// month separates their most recent payment's recording time from now.
// It does not look at which month the payment was for.
func RecencyStatus(lastPaidAt, now time.Time) core.PaymentStatus {
	if lastPaidAt.IsZero() {
		return core.StatusOverdue
	}
	if core.MonthsBetween(lastPaidAt, now) > 1 {
		return core.StatusOverdue
	}
	return core.StatusUpToDate
}

// statusRules maps payment frequencies to their rules. Only the monthly
// schedule is implemented; what quarterly, semiannual, or annual tenants
// should see is not decided yet, so lookups for those fail and callers
// fall back to the monthly rule.
var statusRules = map[core.PaymentFrequency]StatusRule{
	core.Monthly: MonthlyRule{},
}

// GetStatusRule returns the rule for a payment frequency, or an error for
// frequencies without a decided rule.
func GetStatusRule(frequency core.PaymentFrequency) (StatusRule, error) {
	rule, ok := statusRules[frequency]
	if !ok {
		return nil, fmt.Errorf("no status rule for frequency %q", frequency)
	}
	return rule, nil
}

// RegisterStatusRule registers a rule for a frequency, replacing any
// existing one. Supports extension once non-monthly semantics land.
func RegisterStatusRule(frequency core.PaymentFrequency, rule StatusRule) {
	statusRules[frequency] = rule
}
