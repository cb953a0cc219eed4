package http

import (
	"context"
	"sort"
	"sync"
	"time"

	"domus/internal/core"
	"domus/internal/events"
	"domus/internal/storage"
)

// memStore is a map-backed Store for handler tests.
type memStore struct {
	mu       sync.Mutex
	nextID   int64
	houses   map[int64]core.House
	rooms    map[int64]core.Room
	tenants  map[int64]core.Tenant
	payments map[int64]core.Payment
}

func newMemStore() *memStore {
	return &memStore{
		houses:   make(map[int64]core.House),
		rooms:    make(map[int64]core.Room),
		tenants:  make(map[int64]core.Tenant),
		payments: make(map[int64]core.Payment),
	}
}

func (m *memStore) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memStore) ListHouses(ctx context.Context) ([]core.House, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.House, 0, len(m.houses))
	for _, h := range m.houses {
		out = append(out, h)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) GetHouse(ctx context.Context, id int64) (core.House, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.houses[id]
	if !ok {
		return core.House{}, storage.ErrNotFound
	}
	return h, nil
}

func (m *memStore) CountHouses(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.houses), nil
}

func (m *memStore) RoomsByHouse(ctx context.Context, houseID int64) ([]core.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Room
	for _, r := range m.rooms {
		if r.HouseID == houseID {
			out = append(out, r)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CountRooms(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.rooms), nil
}

func (m *memStore) GetRoom(ctx context.Context, id int64) (core.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.rooms[id]
	if !ok {
		return core.Room{}, storage.ErrNotFound
	}
	return r, nil
}

func (m *memStore) ListRooms(ctx context.Context) ([]core.Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Room, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) ListTenants(ctx context.Context) ([]core.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Tenant, 0, len(m.tenants))
	for _, t := range m.tenants {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) TenantsByHouse(ctx context.Context, houseID int64) ([]core.Tenant, error) {
	all, _ := m.ListTenants(ctx)
	var out []core.Tenant
	for _, t := range all {
		if t.HouseID == houseID {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m *memStore) GetTenant(ctx context.Context, id int64) (core.Tenant, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tenants[id]
	if !ok {
		return core.Tenant{}, storage.ErrNotFound
	}
	return t, nil
}

func (m *memStore) CountTenants(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.tenants), nil
}

func (m *memStore) SumRent(ctx context.Context, houseID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, t := range m.tenants {
		if t.HouseID == houseID {
			total += t.Rent.Cents
		}
	}
	return total, nil
}

func (m *memStore) PaymentsByTenant(ctx context.Context, tenantID int64) ([]core.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Payment
	for _, p := range m.payments {
		if p.TenantID == tenantID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return out, nil
}

func (m *memStore) PaymentsByTenantMonth(ctx context.Context, tenantID int64, month core.Month) ([]core.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []core.Payment
	for _, p := range m.payments {
		if p.TenantID == tenantID && p.Month == month {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].PaidAt.After(out[j].PaidAt) })
	return out, nil
}

func (m *memStore) HasPayment(ctx context.Context, tenantID int64, month core.Month) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, p := range m.payments {
		if p.TenantID == tenantID && p.Month == month {
			return true, nil
		}
	}
	return false, nil
}

func (m *memStore) LastPayment(ctx context.Context, tenantID int64) (core.Payment, error) {
	payments, _ := m.PaymentsByTenant(ctx, tenantID)
	if len(payments) == 0 {
		return core.Payment{}, storage.ErrNotFound
	}
	return payments[0], nil
}

func (m *memStore) GetPayment(ctx context.Context, id int64) (core.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	p, ok := m.payments[id]
	if !ok {
		return core.Payment{}, storage.ErrNotFound
	}
	return p, nil
}

func (m *memStore) ListPayments(ctx context.Context) ([]core.Payment, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Payment, 0, len(m.payments))
	for _, p := range m.payments {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memStore) CountPayments(ctx context.Context) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.payments), nil
}

func (m *memStore) SumPayments(ctx context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, p := range m.payments {
		total += p.Amount.Cents
	}
	return total, nil
}

// memWriter mutates the memStore the way the real services mutate the
// repository, bus publishes included.
type memWriter struct {
	store *memStore
	bus   *events.Bus
}

func (w *memWriter) publish(entity events.Entity, op events.Op, id int64) {
	if w.bus != nil {
		w.bus.Publish(entity, op, id)
	}
}

func (w *memWriter) CreateHouse(ctx context.Context, h core.House) (int64, error) {
	if err := h.Validate(); err != nil {
		return 0, err
	}
	w.store.mu.Lock()
	h.ID = w.store.id()
	h.CreatedAt = time.Now().UTC()
	w.store.houses[h.ID] = h
	w.store.mu.Unlock()
	w.publish(events.EntityHouse, events.OpCreate, h.ID)
	return h.ID, nil
}

func (w *memWriter) UpdateHouse(ctx context.Context, id int64, u storage.HouseUpdate) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	h, ok := w.store.houses[id]
	if !ok {
		return storage.ErrNotFound
	}
	if u.Name != nil {
		h.Name = *u.Name
	}
	if u.Address != nil {
		h.Address = *u.Address
	}
	w.store.houses[id] = h
	return nil
}

func (w *memWriter) DeleteHouse(ctx context.Context, id int64) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	if _, ok := w.store.houses[id]; !ok {
		return storage.ErrNotFound
	}
	delete(w.store.houses, id)
	for rid, r := range w.store.rooms {
		if r.HouseID == id {
			delete(w.store.rooms, rid)
		}
	}
	for tid, t := range w.store.tenants {
		if t.HouseID == id {
			delete(w.store.tenants, tid)
			for pid, p := range w.store.payments {
				if p.TenantID == tid {
					delete(w.store.payments, pid)
				}
			}
		}
	}
	return nil
}

func (w *memWriter) CreateRoom(ctx context.Context, r core.Room) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	if _, err := w.store.GetHouse(ctx, r.HouseID); err != nil {
		return 0, err
	}
	w.store.mu.Lock()
	r.ID = w.store.id()
	w.store.rooms[r.ID] = r
	w.store.mu.Unlock()
	w.publish(events.EntityRoom, events.OpCreate, r.ID)
	return r.ID, nil
}

func (w *memWriter) UpdateRoom(ctx context.Context, id int64, u storage.RoomUpdate) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	r, ok := w.store.rooms[id]
	if !ok {
		return storage.ErrNotFound
	}
	if u.Name != nil {
		r.Name = *u.Name
	}
	if u.Type != nil {
		r.Type = *u.Type
	}
	w.store.rooms[id] = r
	return nil
}

func (w *memWriter) DeleteRoom(ctx context.Context, id int64) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	if _, ok := w.store.rooms[id]; !ok {
		return storage.ErrNotFound
	}
	delete(w.store.rooms, id)
	return nil
}

func (w *memWriter) CreateTenant(ctx context.Context, t core.Tenant) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}
	room, err := w.store.GetRoom(ctx, t.RoomID)
	if err != nil {
		return 0, err
	}
	if room.HouseID != t.HouseID {
		return 0, core.ErrInvalidRoom
	}
	w.store.mu.Lock()
	t.ID = w.store.id()
	w.store.tenants[t.ID] = t
	w.store.mu.Unlock()
	w.publish(events.EntityTenant, events.OpCreate, t.ID)
	return t.ID, nil
}

func (w *memWriter) CreateTenantWithRoom(ctx context.Context, room core.Room, t core.Tenant) (int64, int64, error) {
	room.HouseID = t.HouseID
	roomID, err := w.CreateRoom(ctx, room)
	if err != nil {
		return 0, 0, err
	}
	t.RoomID = roomID
	tenantID, err := w.CreateTenant(ctx, t)
	if err != nil {
		return 0, 0, err
	}
	return roomID, tenantID, nil
}

func (w *memWriter) UpdateTenant(ctx context.Context, id int64, u storage.TenantUpdate) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	t, ok := w.store.tenants[id]
	if !ok {
		return storage.ErrNotFound
	}
	if u.FirstName != nil {
		t.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		t.LastName = *u.LastName
	}
	if u.Phone != nil {
		t.Phone = *u.Phone
	}
	if u.Email != nil {
		t.Email = *u.Email
	}
	if u.EntryDate != nil {
		t.EntryDate = *u.EntryDate
	}
	if u.Frequency != nil {
		t.Frequency = *u.Frequency
	}
	if u.RentCents != nil {
		t.Rent = core.Money{Cents: *u.RentCents}
	}
	if u.HouseID != nil {
		t.HouseID = *u.HouseID
	}
	if u.RoomID != nil {
		t.RoomID = *u.RoomID
	}
	w.store.tenants[id] = t
	return nil
}

func (w *memWriter) DeleteTenant(ctx context.Context, id int64) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	if _, ok := w.store.tenants[id]; !ok {
		return storage.ErrNotFound
	}
	delete(w.store.tenants, id)
	for pid, p := range w.store.payments {
		if p.TenantID == id {
			delete(w.store.payments, pid)
		}
	}
	return nil
}

func (w *memWriter) RecordPayment(ctx context.Context, p core.Payment) (int64, error) {
	if err := p.Validate(); err != nil {
		return 0, err
	}
	if _, err := w.store.GetTenant(ctx, p.TenantID); err != nil {
		return 0, err
	}
	w.store.mu.Lock()
	p.ID = w.store.id()
	if p.PaidAt.IsZero() {
		p.PaidAt = time.Now().UTC()
	}
	w.store.payments[p.ID] = p
	w.store.mu.Unlock()
	w.publish(events.EntityPayment, events.OpCreate, p.ID)
	return p.ID, nil
}

func (w *memWriter) UpdatePayment(ctx context.Context, id int64, u storage.PaymentUpdate) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	p, ok := w.store.payments[id]
	if !ok {
		return storage.ErrNotFound
	}
	if u.TenantID != nil {
		p.TenantID = *u.TenantID
	}
	if u.Month != nil {
		p.Month = *u.Month
	}
	if u.AmountCents != nil {
		p.Amount = core.Money{Cents: *u.AmountCents}
	}
	if u.Notes != nil {
		p.Notes = *u.Notes
	}
	w.store.payments[id] = p
	return nil
}

func (w *memWriter) DeletePayment(ctx context.Context, id int64) error {
	w.store.mu.Lock()
	defer w.store.mu.Unlock()
	if _, ok := w.store.payments[id]; !ok {
		return storage.ErrNotFound
	}
	delete(w.store.payments, id)
	return nil
}
