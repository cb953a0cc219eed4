package http

import (
	"net/http"
)

type createPaymentRequest struct {
	TenantID int64  `json:"tenant_id"`
	Month    string `json:"month"`
	Amount   string `json:"amount"`
	Notes    string `json:"notes"`
}

type updatePaymentRequest struct {
	TenantID *int64  `json:"tenant_id"`
	Month    *string `json:"month"`
	Amount   *string `json:"amount"`
	Notes    *string `json:"notes"`
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := s.store.ListPayments(r.Context())
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

func (s *Server) handleCreatePayment(w http.ResponseWriter, r *http.Request) {
	var req createPaymentRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	payment, err := paymentFromRequest(req)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	id, err := s.payments.RecordPayment(r.Context(), payment)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}

	created, err := s.store.GetPayment(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, toPaymentJSON(created))
}

func (s *Server) handleGetPayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	payment, err := s.store.GetPayment(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPaymentJSON(payment))
}

func (s *Server) handleUpdatePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req updatePaymentRequest
	if err := decodeBody(w, r, &req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	update, err := paymentUpdateFromRequest(req)
	if err != nil {
		respondError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	if err := s.payments.UpdatePayment(r.Context(), id, update); err != nil {
		respondStorageError(w, r, err)
		return
	}

	payment, err := s.store.GetPayment(r.Context(), id)
	if err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, toPaymentJSON(payment))
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.payments.DeletePayment(r.Context(), id); err != nil {
		respondStorageError(w, r, err)
		return
	}
	respondJSON(w, http.StatusNoContent, nil)
}
