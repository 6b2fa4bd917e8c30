package service

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"medportal/internal/model"
	"medportal/internal/repository"
	"medportal/internal/scoring"
	"medportal/pkg/apierror"
)

type scorer interface {
	Predict(ctx context.Context, req model.PredictionRequest) (model.PredictionResult, error)
}

type PredictionService struct {
	scorer scorer
	logs   *repository.PredictionRepository
}

func NewPredictionService(scorer scorer, logs *repository.PredictionRepository) *PredictionService {
	return &PredictionService{scorer: scorer, logs: logs}
}

// Predict scores req and records the request with its result. A failed log
// write does not fail the prediction.
func (s *PredictionService) Predict(ctx context.Context, doctorID string, req model.PredictionRequest) (model.PredictionResult, error) {
	if err := validatePrediction(&req); err != nil {
		return model.PredictionResult{}, err
	}

	result, err := s.scorer.Predict(ctx, req)
	if errors.Is(err, scoring.ErrNotConfigured) {
		return model.PredictionResult{}, apierror.New(apierror.CodeServiceUnavailable, "Prediction model is not available", "", http.StatusServiceUnavailable)
	}
	if err != nil {
		slog.Error("prediction failed", "doctor_id", doctorID, "error", err)
		return model.PredictionResult{}, apierror.New(apierror.CodeBadGateway, "Prediction model failed", "", http.StatusBadGateway)
	}

	if err := s.logs.Append(ctx, model.PredictionLog{DoctorID: doctorID, Request: req, Result: result}); err != nil {
		slog.Warn("prediction log write failed", "doctor_id", doctorID, "error", err)
	}

	return result, nil
}

func validatePrediction(req *model.PredictionRequest) error {
	req.Gender = strings.TrimSpace(req.Gender)
	req.CancerType = strings.TrimSpace(req.CancerType)
	req.Region = strings.TrimSpace(req.Region)
	req.AdmissionDate = strings.TrimSpace(req.AdmissionDate)

	switch {
	case req.Age < 0 || req.Age > 120:
		return invalidField("age must be between 0 and 120", "age")
	case req.WeightKg <= 0:
		return invalidField("weight_kg must be positive", "weight_kg")
	case req.Gender == "":
		return invalidField("gender is required", "gender")
	case req.CancerType == "":
		return invalidField("cancer_type is required", "cancer_type")
	case req.PathogenID <= 0:
		return invalidField("pathogen_id must be positive", "pathogen_id")
	case req.AntibioticID <= 0:
		return invalidField("antibiotic_id must be positive", "antibiotic_id")
	case req.DurationDays <= 0:
		return invalidField("duration_days must be positive", "duration_days")
	case req.Region == "":
		return invalidField("region is required", "region")
	}

	if req.AdmissionDate != "" {
		if _, err := time.Parse(time.DateOnly, req.AdmissionDate); err != nil {
			return invalidField("admission_date must be YYYY-MM-DD", "admission_date")
		}
	}
	return nil
}

func invalidField(message string, field string) error {
	return apierror.BadRequest(message, field)
}
