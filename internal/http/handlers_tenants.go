package http

import (
	"net/http"
	"strings"

	"domus/internal/core"
)

// createTenantRequest places a tenant either into an existing room
// (room_id) or into a new room created atomically with the tenant
// (room_name, optionally room_type).
type createTenantRequest struct {
	HouseID   int64  `json:"house_id"`
	RoomID    int64  `json:"room_id"`
	RoomName  string `json:"room_name"`
	RoomType  string `json:"room_type"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`
	Email     string `json:"email"`
	EntryDate string `json:"entry_date"`
	Frequency string `json:"payment_frequency"`
	Rent      string `json:"rent"`
}

type updateTenantRequest struct {
	HouseID   *int64  `json:"house_id"`
	RoomID    *int64  `json:"room_id"`
	FirstName *string `json:"first_name"`
	LastName  *string `json:"last_name"`
	Phone     *string `json:"phone"`
	Email     *string `json:"email"`
	EntryDate *string `json:"entry_date"`
	Frequency *string `json:"payment_frequency"`
	Rent      *string `json:"rent"`
}

// handleListTenants returns all tenants with the recency status badge.
func (s *Server) handleListTenants(w http.ResponseWriter, r *http.Request) {
	now, err := referenceTime(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month parameter")
		return
	}

	statuses, err := s.status.ListWithStatus(r.Context(), now)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	out := make([]tenantStatusJSON, 0, len(statuses))
	for _, ts := range statuses {
		out = append(out, toTenantStatusJSON(ts))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateTenant(w http.ResponseWriter, r *http.Request) {
	var req createTenantRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	tenant, err := tenantFromRequest(req)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	var tenantID int64
	if req.RoomName != "" {
		room := roomFromRequest(createRoomRequest{
			HouseID: req.HouseID,
			Name:    req.RoomName,
			Type:    req.RoomType,
		})
		_, tenantID, err = s.tenancy.CreateTenantWithRoom(r.Context(), room, tenant)
	} else {
		tenantID, err = s.tenancy.CreateTenant(r.Context(), tenant)
	}
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	created, err := s.store.GetTenant(r.Context(), tenantID)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toTenantJSON(created))
}

func (s *Server) handleGetTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant, err := s.store.GetTenant(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTenantJSON(tenant))
}

func (s *Server) handleUpdateTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateTenantRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update, err := tenantUpdateFromRequest(req)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.tenancy.UpdateTenant(r.Context(), id, update); err != nil {
		respondStorageError(w, r, err)
		return
	}

	tenant, err := s.store.GetTenant(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toTenantJSON(tenant))
}

func (s *Server) handleDeleteTenant(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.tenancy.DeleteTenant(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleTenantPayments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetTenant(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}

	var payments []core.Payment
	if v := strings.TrimSpace(r.URL.Query().Get("month")); v != "" {
		month, perr := core.ParseMonth(v)
		if perr != nil {
			respondError(w, http.StatusBadRequest, "invalid month parameter")
			return
		}
		payments, err = s.store.PaymentsByTenantMonth(r.Context(), id, month)
	} else {
		payments, err = s.store.PaymentsByTenant(r.Context(), id)
	}
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	out := make([]paymentJSON, 0, len(payments))
	for _, p := range payments {
		out = append(out, toPaymentJSON(p))
	}
	respondJSON(w, http.StatusOK, out)
}

// handleTenantStatus derives the tenant's status for the requested month
// (default: the current one) under the current-month rule.
func (s *Server) handleTenantStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	tenant, err := s.store.GetTenant(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	now, err := referenceTime(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month parameter")
		return
	}

	res, err := s.status.CurrentStatus(r.Context(), tenant, now)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, statusJSON{
		TenantID:       tenant.ID,
		Status:         string(res.Status),
		ReferenceMonth: res.ReferenceMonth,
	})
}
