package services

import (
	"context"

	"domus/internal/core"
)

// Store is the read contract the engine and aggregator need from the
// entity store. All reads are point-in-time snapshots; the engine never
// mutates through it. *storage.SQLiteRepository satisfies it.
type Store interface {
	ListHouses(ctx context.Context) ([]core.House, error)
	GetHouse(ctx context.Context, id int64) (core.House, error)
	CountHouses(ctx context.Context) (int, error)

	RoomsByHouse(ctx context.Context, houseID int64) ([]core.Room, error)
	CountRooms(ctx context.Context) (int, error)

	ListTenants(ctx context.Context) ([]core.Tenant, error)
	TenantsByHouse(ctx context.Context, houseID int64) ([]core.Tenant, error)
	GetTenant(ctx context.Context, id int64) (core.Tenant, error)
	CountTenants(ctx context.Context) (int, error)
	SumRent(ctx context.Context, houseID int64) (int64, error)

	PaymentsByTenant(ctx context.Context, tenantID int64) ([]core.Payment, error)
	HasPayment(ctx context.Context, tenantID int64, month core.Month) (bool, error)
	LastPayment(ctx context.Context, tenantID int64) (core.Payment, error)
	CountPayments(ctx context.Context) (int, error)
	SumPayments(ctx context.Context) (int64, error)
}
