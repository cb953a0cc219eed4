package core

// StatusResult is the outcome of a current-month status derivation.
type StatusResult struct {
	Status         PaymentStatus
	ReferenceMonth Month // the month the status was evaluated against
}

// HouseStats is the per-house rollup shown on the dashboard.
type HouseStats struct {
	House        House
	TenantCount  int
	TotalRent    Money // sum of rent over the house's tenants, status-independent
	OverdueCount int   // tenants overdue under the current-month rule
}

// PortfolioStats aggregates house rollups across the whole portfolio.
type PortfolioStats struct {
	Houses          int
	Tenants         int
	Payments        int
	OverduePayments int
	MonthlyRevenue  Money // sum of rent across all tenants
	TotalRevenue    Money // sum of all recorded payment amounts

	// NominalOccupancyRate keeps the historical summary figure: tenants
	// against a nominal four rooms per house, as a percent capped at 100.
	NominalOccupancyRate int
	// OccupancyRate is tenants against the actual room count.
	OccupancyRate int
}
