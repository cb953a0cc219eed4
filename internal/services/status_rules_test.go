package services

import (
	"testing"
	"time"

	"domus/internal/core"
)

func month(y int, m time.Month) core.Month { return core.NewMonth(y, m) }

func TestMonthlyRuleEvaluate(t *testing.T) {
	reference := month(2025, time.June)

	tests := []struct {
		name        string
		entryMonth  core.Month
		currentPaid bool
		want        core.PaymentStatus
	}{
		{
			name:        "current month paid",
			entryMonth:  month(2025, time.January),
			currentPaid: true,
			want:        core.StatusUpToDate,
		},
		{
			name:        "current month unpaid",
			entryMonth:  month(2025, time.January),
			currentPaid: false,
			want:        core.StatusOverdue,
		},
		{
			name:        "past gaps ignored when current month paid",
			entryMonth:  month(2024, time.March),
			currentPaid: true,
			want:        core.StatusUpToDate,
		},
		{
			name:        "paid history does not excuse missing current month",
			entryMonth:  month(2024, time.March),
			currentPaid: false,
			want:        core.StatusOverdue,
		},
		{
			name:        "entry month is reference month",
			entryMonth:  reference,
			currentPaid: false,
			want:        core.StatusUpToDate,
		},
		{
			name:        "entry month after reference month",
			entryMonth:  month(2025, time.September),
			currentPaid: false,
			want:        core.StatusUpToDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := MonthlyRule{}.Evaluate(tt.entryMonth, reference, tt.currentPaid)
			if got != tt.want {
				t.Errorf("Evaluate(%v, %v, %v) = %v, want %v",
					tt.entryMonth, reference, tt.currentPaid, got, tt.want)
			}
		})
	}
}

func TestRecencyStatus(t *testing.T) {
	now := time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		lastPaidAt time.Time
		want       core.PaymentStatus
	}{
		{
			name:       "never paid",
			lastPaidAt: time.Time{},
			want:       core.StatusOverdue,
		},
		{
			name:       "paid this month",
			lastPaidAt: time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
			want:       core.StatusUpToDate,
		},
		{
			name:       "paid last month",
			lastPaidAt: time.Date(2025, time.May, 31, 23, 59, 0, 0, time.UTC),
			want:       core.StatusUpToDate,
		},
		{
			name:       "paid two months ago",
			lastPaidAt: time.Date(2025, time.April, 30, 0, 0, 0, 0, time.UTC),
			want:       core.StatusOverdue,
		},
		{
			name:       "paid long ago",
			lastPaidAt: time.Date(2024, time.June, 1, 0, 0, 0, 0, time.UTC),
			want:       core.StatusOverdue,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RecencyStatus(tt.lastPaidAt, now)
			if got != tt.want {
				t.Errorf("RecencyStatus(%v, %v) = %v, want %v",
					tt.lastPaidAt, now, got, tt.want)
			}
		})
	}
}

func TestStatusDefinitionsDiverge(t *testing.T) {
	// A payment recorded last month for last month's rent: up to date by
	// recency, overdue under the current-month rule.
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	lastPaidAt := time.Date(2025, time.May, 10, 0, 0, 0, 0, time.UTC)

	if got := RecencyStatus(lastPaidAt, now); got != core.StatusUpToDate {
		t.Errorf("RecencyStatus = %v, want %v", got, core.StatusUpToDate)
	}
	got := MonthlyRule{}.Evaluate(month(2025, time.January), core.MonthOf(now), false)
	if got != core.StatusOverdue {
		t.Errorf("MonthlyRule.Evaluate = %v, want %v", got, core.StatusOverdue)
	}
}

func TestGetStatusRule(t *testing.T) {
	if _, err := GetStatusRule(core.Monthly); err != nil {
		t.Fatalf("GetStatusRule(monthly) error: %v", err)
	}
	if _, err := GetStatusRule(core.Quarterly); err == nil {
		t.Error("GetStatusRule(quarterly) expected error, got nil")
	}
	if _, err := GetStatusRule("weekly"); err == nil {
		t.Error("GetStatusRule(weekly) expected error, got nil")
	}
}

type fixedRule struct{ status core.PaymentStatus }

func (r fixedRule) Evaluate(_, _ core.Month, _ bool) core.PaymentStatus { return r.status }

func TestRegisterStatusRule(t *testing.T) {
	RegisterStatusRule(core.Annual, fixedRule{status: core.StatusUpToDate})
	defer delete(statusRules, core.Annual)

	rule, err := GetStatusRule(core.Annual)
	if err != nil {
		t.Fatalf("GetStatusRule(annual) error: %v", err)
	}
	if got := rule.Evaluate(month(2025, time.January), month(2025, time.June), false); got != core.StatusUpToDate {
		t.Errorf("registered rule returned %v, want %v", got, core.StatusUpToDate)
	}
}
