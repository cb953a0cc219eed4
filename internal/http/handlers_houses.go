package http

import (
	"net/http"
)

type createHouseRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type updateHouseRequest struct {
	Name    *string `json:"name"`
	Address *string `json:"address"`
}

func (s *Server) handleListHouses(w http.ResponseWriter, r *http.Request) {
	houses, err := s.store.ListHouses(r.Context())
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	out := make([]houseJSON, 0, len(houses))
	for _, h := range houses {
		out = append(out, toHouseJSON(h))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateHouse(w http.ResponseWriter, r *http.Request) {
	var req createHouseRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	id, err := s.tenancy.CreateHouse(r.Context(), houseFromRequest(req))
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	house, err := s.store.GetHouse(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toHouseJSON(house))
}

func (s *Server) handleGetHouse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	house, err := s.store.GetHouse(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toHouseJSON(house))
}

func (s *Server) handleUpdateHouse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updateHouseRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update := houseUpdateFromRequest(req)
	if err := s.tenancy.UpdateHouse(r.Context(), id, update); err != nil {
		respondStorageError(w, r, err)
		return
	}

	house, err := s.store.GetHouse(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toHouseJSON(house))
}

func (s *Server) handleDeleteHouse(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.tenancy.DeleteHouse(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}

func (s *Server) handleHouseRooms(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetHouse(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}

	rooms, err := s.store.RoomsByHouse(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	out := make([]roomJSON, 0, len(rooms))
	for _, room := range rooms {
		out = append(out, toRoomJSON(room))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleHouseTenants(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := s.store.GetHouse(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}

	tenants, err := s.store.TenantsByHouse(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	out := make([]tenantJSON, 0, len(tenants))
	for _, t := range tenants {
		out = append(out, toTenantJSON(t))
	}
	respondJSON(w, http.StatusOK, out)
}

func (s *Server) handleHouseStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	house, err := s.store.GetHouse(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	now, err := referenceTime(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid month parameter")
		return
	}

	stats := s.portfolio.HouseStats(r.Context(), house, now)
	respondJSON(w, http.StatusOK, toHouseStatsJSON(stats))
}
