package services

import (
	"context"
	"fmt"

	"domus/internal/core"
	"domus/internal/events"
	"domus/internal/storage"
)

// TenancyService orchestrates house, room and tenant writes and keeps
// the change bus informed.
type TenancyService struct {
	storage *storage.SQLiteRepository
	bus     *events.Bus
}

func NewTenancyService(storage *storage.SQLiteRepository, bus *events.Bus) *TenancyService {
	return &TenancyService{storage: storage, bus: bus}
}

func (s *TenancyService) CreateHouse(ctx context.Context, h core.House) (int64, error) {
	if err := h.Validate(); err != nil {
		return 0, err
	}

	id, err := s.storage.CreateHouse(ctx, h)
	if err != nil {
		return 0, fmt.Errorf("save house: %w", err)
	}

	s.publish(events.EntityHouse, events.OpCreate, id)
	return id, nil
}

func (s *TenancyService) UpdateHouse(ctx context.Context, id int64, u storage.HouseUpdate) error {
	if u.Name != nil && *u.Name == "" {
		return core.ErrEmptyName
	}
	if u.Address != nil && *u.Address == "" {
		return core.ErrEmptyAddress
	}

	if err := s.storage.UpdateHouse(ctx, id, u); err != nil {
		return fmt.Errorf("update house: %w", err)
	}

	s.publish(events.EntityHouse, events.OpUpdate, id)
	return nil
}

// DeleteHouse removes a house. Rooms, tenants and payments under it go
// with it through the schema's cascading deletes.
func (s *TenancyService) DeleteHouse(ctx context.Context, id int64) error {
	if err := s.storage.DeleteHouse(ctx, id); err != nil {
		return fmt.Errorf("delete house: %w", err)
	}

	s.publish(events.EntityHouse, events.OpDelete, id)
	return nil
}

func (s *TenancyService) CreateRoom(ctx context.Context, r core.Room) (int64, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}

	if _, err := s.storage.GetHouse(ctx, r.HouseID); err != nil {
		return 0, fmt.Errorf("look up house %d: %w", r.HouseID, err)
	}

	id, err := s.storage.CreateRoom(ctx, r)
	if err != nil {
		return 0, fmt.Errorf("save room: %w", err)
	}

	s.publish(events.EntityRoom, events.OpCreate, id)
	return id, nil
}

func (s *TenancyService) UpdateRoom(ctx context.Context, id int64, u storage.RoomUpdate) error {
	if u.Name != nil && *u.Name == "" {
		return core.ErrEmptyName
	}

	if err := s.storage.UpdateRoom(ctx, id, u); err != nil {
		return fmt.Errorf("update room: %w", err)
	}

	s.publish(events.EntityRoom, events.OpUpdate, id)
	return nil
}

func (s *TenancyService) DeleteRoom(ctx context.Context, id int64) error {
	if err := s.storage.DeleteRoom(ctx, id); err != nil {
		return fmt.Errorf("delete room: %w", err)
	}

	s.publish(events.EntityRoom, events.OpDelete, id)
	return nil
}

// CreateTenant places a tenant in an existing room. The room must belong
// to the tenant's house.
func (s *TenancyService) CreateTenant(ctx context.Context, t core.Tenant) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, err
	}

	room, err := s.storage.GetRoom(ctx, t.RoomID)
	if err != nil {
		return 0, fmt.Errorf("look up room %d: %w", t.RoomID, err)
	}
	if room.HouseID != t.HouseID {
		return 0, fmt.Errorf("room %d belongs to house %d, not %d: %w",
			t.RoomID, room.HouseID, t.HouseID, core.ErrInvalidRoom)
	}

	id, err := s.storage.CreateTenant(ctx, t)
	if err != nil {
		return 0, fmt.Errorf("save tenant: %w", err)
	}

	s.publish(events.EntityTenant, events.OpCreate, id)
	return id, nil
}

// CreateTenantWithRoom creates a fresh room and its tenant in one
// transaction, so a failed tenant insert never leaves an orphan room.
func (s *TenancyService) CreateTenantWithRoom(ctx context.Context, room core.Room, t core.Tenant) (roomID, tenantID int64, err error) {
	room.HouseID = t.HouseID
	if err := room.Validate(); err != nil {
		return 0, 0, err
	}
	probe := t
	probe.RoomID = -1 // the real room id is assigned inside the transaction
	if err := probe.Validate(); err != nil {
		return 0, 0, err
	}

	if _, err := s.storage.GetHouse(ctx, t.HouseID); err != nil {
		return 0, 0, fmt.Errorf("look up house %d: %w", t.HouseID, err)
	}

	roomID, tenantID, err = s.storage.CreateTenantWithRoom(ctx, room, t)
	if err != nil {
		return 0, 0, fmt.Errorf("save tenant with room: %w", err)
	}

	s.publish(events.EntityRoom, events.OpCreate, roomID)
	s.publish(events.EntityTenant, events.OpCreate, tenantID)
	return roomID, tenantID, nil
}

func (s *TenancyService) UpdateTenant(ctx context.Context, id int64, u storage.TenantUpdate) error {
	if u.FirstName != nil && *u.FirstName == "" {
		return core.ErrEmptyName
	}
	if u.LastName != nil && *u.LastName == "" {
		return core.ErrEmptyName
	}
	if u.EntryDate != nil {
		if err := u.EntryDate.Validate(); err != nil {
			return err
		}
	}
	if u.RentCents != nil && *u.RentCents < 0 {
		return core.ErrInvalidAmount
	}
	if u.Frequency != nil {
		if err := u.Frequency.Validate(); err != nil {
			return err
		}
	}
	if u.RoomID != nil {
		tenant, err := s.storage.GetTenant(ctx, id)
		if err != nil {
			return fmt.Errorf("look up tenant %d: %w", id, err)
		}
		houseID := tenant.HouseID
		if u.HouseID != nil {
			houseID = *u.HouseID
		}
		room, err := s.storage.GetRoom(ctx, *u.RoomID)
		if err != nil {
			return fmt.Errorf("look up room %d: %w", *u.RoomID, err)
		}
		if room.HouseID != houseID {
			return fmt.Errorf("room %d belongs to house %d, not %d: %w",
				*u.RoomID, room.HouseID, houseID, core.ErrInvalidRoom)
		}
	}

	if err := s.storage.UpdateTenant(ctx, id, u); err != nil {
		return fmt.Errorf("update tenant: %w", err)
	}

	s.publish(events.EntityTenant, events.OpUpdate, id)
	return nil
}

func (s *TenancyService) DeleteTenant(ctx context.Context, id int64) error {
	if err := s.storage.DeleteTenant(ctx, id); err != nil {
		return fmt.Errorf("delete tenant: %w", err)
	}

	s.publish(events.EntityTenant, events.OpDelete, id)
	return nil
}

func (s *TenancyService) publish(entity events.Entity, op events.Op, id int64) {
	if s.bus != nil {
		s.bus.Publish(entity, op, id)
	}
}
