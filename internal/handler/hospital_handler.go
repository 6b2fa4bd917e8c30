package handler

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"medportal/internal/model"
	"medportal/pkg/apierror"
)

type hospitalService interface {
	List(ctx context.Context) ([]model.Hospital, error)
	Create(ctx context.Context, req model.CreateHospitalRequest) (model.Hospital, error)
	Update(ctx context.Context, id int64, req model.UpdateHospitalRequest) (model.Hospital, error)
	Delete(ctx context.Context, id int64) error
}

type HospitalHandler struct {
	service hospitalService
}

func NewHospitalHandler(service hospitalService) *HospitalHandler {
	return &HospitalHandler{service: service}
}

func (h *HospitalHandler) List(w http.ResponseWriter, r *http.Request) {
	hospitals, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hospitals)
}

func (h *HospitalHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateHospitalRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	hospital, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hospital)
}

func (h *HospitalHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := hospitalIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	var payload model.UpdateHospitalRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	hospital, err := h.service.Update(r.Context(), id, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, hospital)
}

func (h *HospitalHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := hospitalIDParam(r)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.DetailResponse{Detail: "Hospital deleted"})
}

func hospitalIDParam(r *http.Request) (int64, error) {
	raw := chi.URLParam(r, "hospitalID")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, apierror.BadRequest("hospital id must be a positive integer", raw)
	}
	return id, nil
}
