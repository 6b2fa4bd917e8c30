package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"medportal/internal/model"
)

type doctorService interface {
	List(ctx context.Context) ([]model.Doctor, error)
	Create(ctx context.Context, req model.CreateDoctorRequest) (model.Doctor, error)
	Update(ctx context.Context, doctorID string, req model.UpdateDoctorRequest) (model.Doctor, error)
	Delete(ctx context.Context, doctorID string) error
}

type DoctorHandler struct {
	service doctorService
}

func NewDoctorHandler(service doctorService) *DoctorHandler {
	return &DoctorHandler{service: service}
}

func (h *DoctorHandler) List(w http.ResponseWriter, r *http.Request) {
	doctors, err := h.service.List(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doctors)
}

func (h *DoctorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var payload model.CreateDoctorRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	doctor, err := h.service.Create(r.Context(), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doctor)
}

func (h *DoctorHandler) Update(w http.ResponseWriter, r *http.Request) {
	var payload model.UpdateDoctorRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	doctor, err := h.service.Update(r.Context(), chi.URLParam(r, "doctorID"), payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, doctor)
}

func (h *DoctorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), chi.URLParam(r, "doctorID")); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.DetailResponse{Detail: "Doctor deleted"})
}
