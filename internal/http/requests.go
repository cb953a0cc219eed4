package http

import (
	"net/http"

	"domus/internal/core"
	"domus/internal/storage"
)

// Converters from wire requests to domain values. Full validation stays
// with the services; these only reject values that cannot be represented
// at all, like unparseable dates or amounts.

func houseFromRequest(req createHouseRequest) core.House {
	return core.House{
		Name:    sanitizeInput(req.Name),
		Address: sanitizeInput(req.Address),
	}
}

func houseUpdateFromRequest(req updateHouseRequest) storage.HouseUpdate {
	var u storage.HouseUpdate
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		u.Name = &name
	}
	if req.Address != nil {
		addr := sanitizeInput(*req.Address)
		u.Address = &addr
	}
	return u
}

func roomFromRequest(req createRoomRequest) core.Room {
	return core.Room{
		HouseID: req.HouseID,
		Name:    sanitizeInput(req.Name),
		Type:    sanitizeInput(req.Type),
	}
}

func roomUpdateFromRequest(req updateRoomRequest) storage.RoomUpdate {
	var u storage.RoomUpdate
	if req.Name != nil {
		name := sanitizeInput(*req.Name)
		u.Name = &name
	}
	if req.Type != nil {
		typ := sanitizeInput(*req.Type)
		u.Type = &typ
	}
	return u
}

func tenantFromRequest(req createTenantRequest) (core.Tenant, error) {
	entry, err := core.ParseDate(req.EntryDate)
	if err != nil {
		return core.Tenant{}, err
	}

	cents, err := core.ParseDecimalToCents(req.Rent)
	if err != nil {
		return core.Tenant{}, err
	}

	frequency := core.PaymentFrequency(req.Frequency)
	if req.Frequency == "" {
		frequency = core.Monthly
	}

	return core.Tenant{
		HouseID:   req.HouseID,
		RoomID:    req.RoomID,
		FirstName: sanitizeInput(req.FirstName),
		LastName:  sanitizeInput(req.LastName),
		Phone:     sanitizeInput(req.Phone),
		Email:     sanitizeInput(req.Email),
		EntryDate: entry,
		Frequency: frequency,
		Rent:      core.Money{Cents: cents},
	}, nil
}

func tenantUpdateFromRequest(req updateTenantRequest) (storage.TenantUpdate, error) {
	var u storage.TenantUpdate
	u.HouseID = req.HouseID
	u.RoomID = req.RoomID
	if req.FirstName != nil {
		name := sanitizeInput(*req.FirstName)
		u.FirstName = &name
	}
	if req.LastName != nil {
		name := sanitizeInput(*req.LastName)
		u.LastName = &name
	}
	if req.Phone != nil {
		phone := sanitizeInput(*req.Phone)
		u.Phone = &phone
	}
	if req.Email != nil {
		email := sanitizeInput(*req.Email)
		u.Email = &email
	}
	if req.EntryDate != nil {
		entry, err := core.ParseDate(*req.EntryDate)
		if err != nil {
			return storage.TenantUpdate{}, err
		}
		u.EntryDate = &entry
	}
	if req.Frequency != nil {
		frequency := core.PaymentFrequency(*req.Frequency)
		u.Frequency = &frequency
	}
	if req.Rent != nil {
		cents, err := core.ParseDecimalToCents(*req.Rent)
		if err != nil {
			return storage.TenantUpdate{}, err
		}
		u.RentCents = &cents
	}
	return u, nil
}

func paymentFromRequest(req createPaymentRequest) (core.Payment, error) {
	month, err := core.ParseMonth(req.Month)
	if err != nil {
		return core.Payment{}, err
	}

	cents, err := core.ParseDecimalToCents(req.Amount)
	if err != nil {
		return core.Payment{}, err
	}

	return core.Payment{
		TenantID: req.TenantID,
		Month:    month,
		Amount:   core.Money{Cents: cents},
		Notes:    sanitizeInput(req.Notes),
	}, nil
}

func paymentUpdateFromRequest(req updatePaymentRequest) (storage.PaymentUpdate, error) {
	var u storage.PaymentUpdate
	u.TenantID = req.TenantID
	if req.Month != nil {
		month, err := core.ParseMonth(*req.Month)
		if err != nil {
			return storage.PaymentUpdate{}, err
		}
		u.Month = &month
	}
	if req.Amount != nil {
		cents, err := core.ParseDecimalToCents(*req.Amount)
		if err != nil {
			return storage.PaymentUpdate{}, err
		}
		u.AmountCents = &cents
	}
	if req.Notes != nil {
		notes := sanitizeInput(*req.Notes)
		u.Notes = &notes
	}
	return u, nil
}

func respondHouseStats(w http.ResponseWriter, stats []core.HouseStats) {
	out := make([]houseStatsJSON, 0, len(stats))
	for _, hs := range stats {
		out = append(out, toHouseStatsJSON(hs))
	}
	respondJSON(w, http.StatusOK, out)
}
