package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"medportal/internal/model"
)

type PredictionRepository struct {
	db DBTX
}

func NewPredictionRepository(db DBTX) *PredictionRepository {
	return &PredictionRepository{db: db}
}

func (r *PredictionRepository) Append(ctx context.Context, entry model.PredictionLog) error {
	resultJSON, err := json.Marshal(entry.Result)
	if err != nil {
		return fmt.Errorf("marshal prediction result: %w", err)
	}

	var admissionDate *time.Time
	if entry.Request.AdmissionDate != "" {
		parsed, err := time.Parse(time.DateOnly, entry.Request.AdmissionDate)
		if err != nil {
			return fmt.Errorf("parse admission date: %w", err)
		}
		admissionDate = &parsed
	}

	req := entry.Request
	_, err = r.db.Exec(ctx,
		`INSERT INTO public.prediction_logs
		 (doctor_id, age, weight_kg, gender, admission_date, cancer_type,
		  pathogen_id, antibiotic_id, duration_days, region, result)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		entry.DoctorID, req.Age, req.WeightKg, req.Gender, admissionDate, req.CancerType,
		req.PathogenID, req.AntibioticID, req.DurationDays, req.Region, resultJSON)
	if err != nil {
		return fmt.Errorf("append prediction log: %w", err)
	}
	return nil
}
