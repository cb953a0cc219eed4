package services

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"domus/internal/core"
	"domus/internal/storage"
)

// fakeStore backs engine tests with in-memory fixtures. Payments per
// tenant are kept newest first, matching the repository ordering.
type fakeStore struct {
	houses   []core.House
	rooms    map[int64][]core.Room
	tenants  []core.Tenant
	payments map[int64][]core.Payment

	paymentErrs map[int64]error

	mu              sync.Mutex
	hasPaymentCalls int
}

func (f *fakeStore) ListHouses(ctx context.Context) ([]core.House, error) { return f.houses, nil }

func (f *fakeStore) GetHouse(ctx context.Context, id int64) (core.House, error) {
	for _, h := range f.houses {
		if h.ID == id {
			return h, nil
		}
	}
	return core.House{}, storage.ErrNotFound
}

func (f *fakeStore) CountHouses(ctx context.Context) (int, error) { return len(f.houses), nil }

func (f *fakeStore) RoomsByHouse(ctx context.Context, houseID int64) ([]core.Room, error) {
	return f.rooms[houseID], nil
}

func (f *fakeStore) CountRooms(ctx context.Context) (int, error) {
	n := 0
	for _, rs := range f.rooms {
		n += len(rs)
	}
	return n, nil
}

func (f *fakeStore) ListTenants(ctx context.Context) ([]core.Tenant, error) { return f.tenants, nil }

func (f *fakeStore) TenantsByHouse(ctx context.Context, houseID int64) ([]core.Tenant, error) {
	var out []core.Tenant
	for _, t := range f.tenants {
		if t.HouseID == houseID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *fakeStore) GetTenant(ctx context.Context, id int64) (core.Tenant, error) {
	for _, t := range f.tenants {
		if t.ID == id {
			return t, nil
		}
	}
	return core.Tenant{}, storage.ErrNotFound
}

func (f *fakeStore) CountTenants(ctx context.Context) (int, error) { return len(f.tenants), nil }

func (f *fakeStore) SumRent(ctx context.Context, houseID int64) (int64, error) {
	var total int64
	for _, t := range f.tenants {
		if t.HouseID == houseID {
			total += t.Rent.Cents
		}
	}
	return total, nil
}

func (f *fakeStore) PaymentsByTenant(ctx context.Context, tenantID int64) ([]core.Payment, error) {
	if err := f.paymentErrs[tenantID]; err != nil {
		return nil, err
	}
	return f.payments[tenantID], nil
}

func (f *fakeStore) HasPayment(ctx context.Context, tenantID int64, month core.Month) (bool, error) {
	f.mu.Lock()
	f.hasPaymentCalls++
	f.mu.Unlock()
	if err := f.paymentErrs[tenantID]; err != nil {
		return false, err
	}
	for _, p := range f.payments[tenantID] {
		if p.Month == month {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeStore) LastPayment(ctx context.Context, tenantID int64) (core.Payment, error) {
	if err := f.paymentErrs[tenantID]; err != nil {
		return core.Payment{}, err
	}
	ps := f.payments[tenantID]
	if len(ps) == 0 {
		return core.Payment{}, storage.ErrNotFound
	}
	return ps[0], nil
}

func (f *fakeStore) CountPayments(ctx context.Context) (int, error) {
	n := 0
	for _, ps := range f.payments {
		n += len(ps)
	}
	return n, nil
}

func (f *fakeStore) SumPayments(ctx context.Context) (int64, error) {
	var total int64
	for _, ps := range f.payments {
		for _, p := range ps {
			total += p.Amount.Cents
		}
	}
	return total, nil
}

func newTenant(id, houseID int64, entry core.Date) core.Tenant {
	return core.Tenant{
		ID:        id,
		HouseID:   houseID,
		RoomID:    id,
		FirstName: "Ada",
		LastName:  "Rossi",
		Phone:     "3331112233",
		EntryDate: entry,
		Frequency: core.Monthly,
		Rent:      core.Money{Cents: 45000},
	}
}

var testNow = time.Date(2025, time.June, 15, 10, 0, 0, 0, time.UTC)

func TestCurrentStatus(t *testing.T) {
	june := core.MonthOf(testNow)

	tests := []struct {
		name     string
		entry    core.Date
		payments []core.Payment
		want     core.PaymentStatus
	}{
		{
			name:  "paid current month",
			entry: core.NewDate(2025, time.January, 1),
			payments: []core.Payment{
				{ID: 1, TenantID: 1, Month: june, Amount: core.Money{Cents: 45000}},
			},
			want: core.StatusUpToDate,
		},
		{
			name:     "unpaid current month",
			entry:    core.NewDate(2025, time.January, 1),
			payments: nil,
			want:     core.StatusOverdue,
		},
		{
			name:  "only past months paid",
			entry: core.NewDate(2025, time.January, 1),
			payments: []core.Payment{
				{ID: 1, TenantID: 1, Month: core.NewMonth(2025, time.May), Amount: core.Money{Cents: 45000}},
			},
			want: core.StatusOverdue,
		},
		{
			name:     "entered this month without paying",
			entry:    core.NewDate(2025, time.June, 3),
			payments: nil,
			want:     core.StatusUpToDate,
		},
		{
			name:     "entry date in the future",
			entry:    core.NewDate(2025, time.August, 1),
			payments: nil,
			want:     core.StatusUpToDate,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := &fakeStore{payments: map[int64][]core.Payment{1: tt.payments}}
			svc := NewStatusService(store)

			res, err := svc.CurrentStatus(context.Background(), newTenant(1, 1, tt.entry), testNow)
			if err != nil {
				t.Fatalf("CurrentStatus error: %v", err)
			}
			if res.Status != tt.want {
				t.Errorf("Status = %v, want %v", res.Status, tt.want)
			}
			if res.ReferenceMonth != june {
				t.Errorf("ReferenceMonth = %v, want %v", res.ReferenceMonth, june)
			}
		})
	}
}

func TestCurrentStatusEntryMonthSkipsLookup(t *testing.T) {
	store := &fakeStore{payments: map[int64][]core.Payment{}}
	svc := NewStatusService(store)

	tenant := newTenant(1, 1, core.NewDate(2025, time.June, 20))
	if _, err := svc.CurrentStatus(context.Background(), tenant, testNow); err != nil {
		t.Fatalf("CurrentStatus error: %v", err)
	}
	if store.hasPaymentCalls != 0 {
		t.Errorf("hasPaymentCalls = %d, want 0", store.hasPaymentCalls)
	}
}

func TestListWithStatus(t *testing.T) {
	tenants := []core.Tenant{
		newTenant(1, 1, core.NewDate(2025, time.January, 1)),
		newTenant(2, 1, core.NewDate(2024, time.September, 1)),
		newTenant(3, 1, core.NewDate(2024, time.March, 1)),
	}
	recent := core.Payment{
		ID: 10, TenantID: 1, Month: core.NewMonth(2025, time.June),
		Amount: core.Money{Cents: 45000},
		PaidAt: time.Date(2025, time.June, 2, 9, 0, 0, 0, time.UTC),
	}
	stale := core.Payment{
		ID: 11, TenantID: 2, Month: core.NewMonth(2025, time.March),
		Amount: core.Money{Cents: 45000},
		PaidAt: time.Date(2025, time.March, 2, 9, 0, 0, 0, time.UTC),
	}
	store := &fakeStore{
		tenants: tenants,
		payments: map[int64][]core.Payment{
			1: {recent},
			2: {stale},
		},
	}
	svc := NewStatusService(store)

	got, err := svc.ListWithStatus(context.Background(), testNow)
	if err != nil {
		t.Fatalf("ListWithStatus error: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("len = %d, want 3", len(got))
	}

	// Store order preserved despite concurrent lookups.
	for i, wantID := range []int64{1, 2, 3} {
		if got[i].Tenant.ID != wantID {
			t.Errorf("got[%d].Tenant.ID = %d, want %d", i, got[i].Tenant.ID, wantID)
		}
	}

	if got[0].Status != core.StatusUpToDate {
		t.Errorf("recent payer status = %v, want %v", got[0].Status, core.StatusUpToDate)
	}
	if got[0].LastPayment == nil || got[0].LastPayment.ID != recent.ID {
		t.Errorf("recent payer LastPayment = %+v, want payment %d", got[0].LastPayment, recent.ID)
	}
	if got[1].Status != core.StatusOverdue {
		t.Errorf("stale payer status = %v, want %v", got[1].Status, core.StatusOverdue)
	}
	if got[2].Status != core.StatusOverdue {
		t.Errorf("never-paid status = %v, want %v", got[2].Status, core.StatusOverdue)
	}
	if got[2].LastPayment != nil {
		t.Errorf("never-paid LastPayment = %+v, want nil", got[2].LastPayment)
	}
}

func TestListWithStatusSkipsUnreadableTenant(t *testing.T) {
	store := &fakeStore{
		tenants: []core.Tenant{
			newTenant(1, 1, core.NewDate(2025, time.January, 1)),
			newTenant(2, 1, core.NewDate(2025, time.January, 1)),
		},
		payments:    map[int64][]core.Payment{},
		paymentErrs: map[int64]error{1: errors.New("disk gone")},
	}
	svc := NewStatusService(store)

	got, err := svc.ListWithStatus(context.Background(), testNow)
	if err != nil {
		t.Fatalf("ListWithStatus error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Tenant.ID != 2 {
		t.Errorf("Tenant.ID = %d, want 2", got[0].Tenant.ID)
	}
}

func TestOverdueTenants(t *testing.T) {
	june := core.NewMonth(2025, time.June)
	paidTenant := newTenant(1, 1, core.NewDate(2025, time.January, 1))
	unpaidTenant := newTenant(2, 1, core.NewDate(2025, time.January, 1))
	unpaidTenant.Rent = core.Money{Cents: 52000}
	freshTenant := newTenant(3, 1, core.NewDate(2025, time.June, 10))

	store := &fakeStore{
		tenants: []core.Tenant{paidTenant, unpaidTenant, freshTenant},
		payments: map[int64][]core.Payment{
			1: {{ID: 1, TenantID: 1, Month: june, Amount: core.Money{Cents: 45000}}},
		},
	}
	svc := NewStatusService(store)

	got, err := svc.OverdueTenants(context.Background(), testNow)
	if err != nil {
		t.Fatalf("OverdueTenants error: %v", err)
	}
	if len(got) != 1 {
		t.Fatalf("len = %d, want 1", len(got))
	}
	if got[0].Tenant.ID != 2 {
		t.Errorf("Tenant.ID = %d, want 2", got[0].Tenant.ID)
	}
	if got[0].Month != june {
		t.Errorf("Month = %v, want %v", got[0].Month, june)
	}
	if got[0].Amount.Cents != 52000 {
		t.Errorf("Amount.Cents = %d, want 52000", got[0].Amount.Cents)
	}
}

func TestIsMonthPaid(t *testing.T) {
	june := core.NewMonth(2025, time.June)
	store := &fakeStore{
		payments: map[int64][]core.Payment{
			1: {{ID: 1, TenantID: 1, Month: june, Amount: core.Money{Cents: 45000}}},
		},
	}
	svc := NewStatusService(store)

	paid, err := svc.IsMonthPaid(context.Background(), 1, june)
	if err != nil {
		t.Fatalf("IsMonthPaid error: %v", err)
	}
	if !paid {
		t.Error("IsMonthPaid = false, want true")
	}

	paid, err = svc.IsMonthPaid(context.Background(), 1, core.NewMonth(2025, time.May))
	if err != nil {
		t.Fatalf("IsMonthPaid error: %v", err)
	}
	if paid {
		t.Error("IsMonthPaid = true, want false")
	}
}
