package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"domus/internal/core"
	"domus/internal/storage"
)

// nominalRoomsPerHouse is the capacity assumption behind the historical
// occupancy figure. It predates room tracking and is kept for continuity
// alongside the real room count.
const nominalRoomsPerHouse = 4

// PortfolioService rolls per-tenant status up to house and portfolio
// counters for the dashboard and stats views.
type PortfolioService struct {
	store  Store
	status *StatusService
}

func NewPortfolioService(store Store, status *StatusService) *PortfolioService {
	return &PortfolioService{store: store, status: status}
}

// HouseStats computes one house's rollup as of now. A house whose tenants
// cannot be read yields zeroed counters rather than an error.
func (s *PortfolioService) HouseStats(ctx context.Context, house core.House, now time.Time) core.HouseStats {
	stats := core.HouseStats{House: house}

	tenants, err := s.store.TenantsByHouse(ctx, house.ID)
	if err != nil {
		slog.WarnContext(ctx, "House rollup degraded to zero",
			"house_id", house.ID, "error", err)
		return stats
	}
	stats.TenantCount = len(tenants)

	totalRent, err := s.store.SumRent(ctx, house.ID)
	if err != nil {
		slog.WarnContext(ctx, "Rent total unavailable for house",
			"house_id", house.ID, "error", err)
	}
	stats.TotalRent = core.Money{Cents: totalRent}

	// Independent read-only derivations; gather in any order, count after.
	overdue := make([]bool, len(tenants))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statusWorkers)
	for i, tenant := range tenants {
		g.Go(func() error {
			res, err := s.status.CurrentStatus(gctx, tenant, now)
			if err != nil {
				slog.WarnContext(gctx, "Skipping tenant in house rollup",
					"tenant_id", tenant.ID, "error", err)
				return nil
			}
			overdue[i] = res.Status == core.StatusOverdue
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return stats
	}
	for _, o := range overdue {
		if o {
			stats.OverdueCount++
		}
	}
	return stats
}

// AllHouseStats computes rollups for every house, preserving house order.
func (s *PortfolioService) AllHouseStats(ctx context.Context, now time.Time) ([]core.HouseStats, error) {
	houses, err := s.store.ListHouses(ctx)
	if err != nil {
		return nil, fmt.Errorf("list houses: %w", err)
	}

	stats := make([]core.HouseStats, len(houses))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(statusWorkers)
	for i, house := range houses {
		g.Go(func() error {
			stats[i] = s.HouseStats(gctx, house, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return stats, nil
}

// PortfolioStats sums house rollups across the portfolio and derives the
// occupancy figures.
func (s *PortfolioService) PortfolioStats(ctx context.Context, now time.Time) (core.PortfolioStats, error) {
	houseStats, err := s.AllHouseStats(ctx, now)
	if err != nil {
		return core.PortfolioStats{}, err
	}

	var stats core.PortfolioStats
	stats.Houses = len(houseStats)
	for _, hs := range houseStats {
		stats.Tenants += hs.TenantCount
		stats.OverduePayments += hs.OverdueCount
		stats.MonthlyRevenue = stats.MonthlyRevenue.Add(hs.TotalRent)
	}

	if n, err := s.store.CountPayments(ctx); err == nil {
		stats.Payments = n
	} else if !errors.Is(err, storage.ErrNotFound) {
		slog.WarnContext(ctx, "Payment count unavailable", "error", err)
	}
	if total, err := s.store.SumPayments(ctx); err == nil {
		stats.TotalRevenue = core.Money{Cents: total}
	} else {
		slog.WarnContext(ctx, "Revenue total unavailable", "error", err)
	}

	stats.NominalOccupancyRate = nominalOccupancy(stats.Tenants, stats.Houses)

	rooms, err := s.store.CountRooms(ctx)
	if err != nil {
		slog.WarnContext(ctx, "Room count unavailable", "error", err)
	}
	stats.OccupancyRate = occupancy(stats.Tenants, rooms)

	return stats, nil
}

// nominalOccupancy is the historical formula: tenants over four rooms per
// house, as a rounded percent capped at 100.
func nominalOccupancy(tenants, houses int) int {
	if tenants == 0 || houses == 0 {
		return 0
	}
	rate := int(math.Round(float64(tenants) / float64(houses*nominalRoomsPerHouse) * 100))
	if rate > 100 {
		return 100
	}
	return rate
}

// occupancy is tenants over the actual room count, capped at 100.
func occupancy(tenants, rooms int) int {
	if tenants == 0 || rooms == 0 {
		return 0
	}
	rate := int(math.Round(float64(tenants) / float64(rooms) * 100))
	if rate > 100 {
		return 100
	}
	return rate
}
