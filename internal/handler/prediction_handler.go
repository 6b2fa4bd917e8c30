package handler

import (
	"context"
	"net/http"

	"medportal/internal/middleware"
	"medportal/internal/model"
	"medportal/pkg/apierror"
)

type predictor interface {
	Predict(ctx context.Context, doctorID string, req model.PredictionRequest) (model.PredictionResult, error)
}

type PredictionHandler struct {
	service predictor
}

func NewPredictionHandler(service predictor) *PredictionHandler {
	return &PredictionHandler{service: service}
}

func (h *PredictionHandler) Predict(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFromContext(r.Context())
	if !ok {
		writeError(w, apierror.Unauthorized("authentication required"))
		return
	}

	var payload model.PredictionRequest
	if err := decodeJSON(w, r, &payload); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.service.Predict(r.Context(), claims.Subject, payload)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, result)
}
