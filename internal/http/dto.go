package http

import (
	"time"

	"domus/internal/core"
	"domus/internal/services"
)

// Wire representations. Amounts travel both as integer cents and as a
// preformatted decimal string; months as "YYYY-MM", dates as "YYYY-MM-DD".

type houseJSON struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	CreatedAt time.Time `json:"created_at"`
}

type roomJSON struct {
	ID      int64  `json:"id"`
	HouseID int64  `json:"house_id"`
	Name    string `json:"name"`
	Type    string `json:"type,omitempty"`
}

type tenantJSON struct {
	ID        int64  `json:"id"`
	HouseID   int64  `json:"house_id"`
	RoomID    int64  `json:"room_id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email,omitempty"`
	EntryDate string `json:"entry_date"`
	Frequency string `json:"payment_frequency"`
	RentCents int64  `json:"rent_cents"`
	Rent      string `json:"rent"`
}

type paymentJSON struct {
	ID          int64      `json:"id"`
	TenantID    int64      `json:"tenant_id"`
	Month       core.Month `json:"month"`
	AmountCents int64      `json:"amount_cents"`
	Amount      string     `json:"amount"`
	PaidAt      time.Time  `json:"paid_at"`
	Notes       string     `json:"notes,omitempty"`
}

type tenantStatusJSON struct {
	tenantJSON
	Status      string       `json:"status"`
	LastPayment *paymentJSON `json:"last_payment,omitempty"`
}

type statusJSON struct {
	TenantID       int64      `json:"tenant_id"`
	Status         string     `json:"status"`
	ReferenceMonth core.Month `json:"reference_month"`
}

type houseStatsJSON struct {
	House          houseJSON `json:"house"`
	TenantCount    int       `json:"tenant_count"`
	TotalRentCents int64     `json:"total_rent_cents"`
	TotalRent      string    `json:"total_rent"`
	OverdueCount   int       `json:"overdue_count"`
}

type portfolioStatsJSON struct {
	Houses               int    `json:"houses"`
	Tenants              int    `json:"tenants"`
	Payments             int    `json:"payments"`
	OverduePayments      int    `json:"overdue_payments"`
	MonthlyRevenueCents  int64  `json:"monthly_revenue_cents"`
	MonthlyRevenue       string `json:"monthly_revenue"`
	TotalRevenueCents    int64  `json:"total_revenue_cents"`
	TotalRevenue         string `json:"total_revenue"`
	NominalOccupancyRate int    `json:"nominal_occupancy_rate"`
	OccupancyRate        int    `json:"occupancy_rate"`
}

type overdueJSON struct {
	Tenant      tenantJSON `json:"tenant"`
	Month       core.Month `json:"month"`
	AmountCents int64      `json:"amount_cents"`
	Amount      string     `json:"amount"`
}

type changesJSON struct {
	Version uint64 `json:"version"`
}

type dashboardJSON struct {
	Stats  portfolioStatsJSON `json:"stats"`
	Houses []houseStatsJSON   `json:"houses"`
}

func toHouseJSON(h core.House) houseJSON {
	return houseJSON{ID: h.ID, Name: h.Name, Address: h.Address, CreatedAt: h.CreatedAt}
}

func toRoomJSON(r core.Room) roomJSON {
	return roomJSON{ID: r.ID, HouseID: r.HouseID, Name: r.Name, Type: r.Type}
}

func toTenantJSON(t core.Tenant) tenantJSON {
	return tenantJSON{
		ID:        t.ID,
		HouseID:   t.HouseID,
		RoomID:    t.RoomID,
		FirstName: t.FirstName,
		LastName:  t.LastName,
		Phone:     t.Phone,
		Email:     t.Email,
		EntryDate: t.EntryDate.String(),
		Frequency: string(t.Frequency),
		RentCents: t.Rent.Cents,
		Rent:      t.Rent.String(),
	}
}

func toPaymentJSON(p core.Payment) paymentJSON {
	return paymentJSON{
		ID:          p.ID,
		TenantID:    p.TenantID,
		Month:       p.Month,
		AmountCents: p.Amount.Cents,
		Amount:      p.Amount.String(),
		PaidAt:      p.PaidAt,
		Notes:       p.Notes,
	}
}

func toTenantStatusJSON(ts services.TenantStatus) tenantStatusJSON {
	out := tenantStatusJSON{
		tenantJSON: toTenantJSON(ts.Tenant),
		Status:     string(ts.Status),
	}
	if ts.LastPayment != nil {
		p := toPaymentJSON(*ts.LastPayment)
		out.LastPayment = &p
	}
	return out
}

func toHouseStatsJSON(hs core.HouseStats) houseStatsJSON {
	return houseStatsJSON{
		House:          toHouseJSON(hs.House),
		TenantCount:    hs.TenantCount,
		TotalRentCents: hs.TotalRent.Cents,
		TotalRent:      hs.TotalRent.String(),
		OverdueCount:   hs.OverdueCount,
	}
}

func toPortfolioStatsJSON(ps core.PortfolioStats) portfolioStatsJSON {
	return portfolioStatsJSON{
		Houses:               ps.Houses,
		Tenants:              ps.Tenants,
		Payments:             ps.Payments,
		OverduePayments:      ps.OverduePayments,
		MonthlyRevenueCents:  ps.MonthlyRevenue.Cents,
		MonthlyRevenue:       ps.MonthlyRevenue.String(),
		TotalRevenueCents:    ps.TotalRevenue.Cents,
		TotalRevenue:         ps.TotalRevenue.String(),
		NominalOccupancyRate: ps.NominalOccupancyRate,
		OccupancyRate:        ps.OccupancyRate,
	}
}

func toOverdueJSON(e services.OverdueEntry) overdueJSON {
	return overdueJSON{
		Tenant:      toTenantJSON(e.Tenant),
		Month:       e.Month,
		AmountCents: e.Amount.Cents,
		Amount:      e.Amount.String(),
	}
}
