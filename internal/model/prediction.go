package model

import "time"

type PredictionRequest struct {
	Age           int     `json:"age"`
	WeightKg      float64 `json:"weight_kg"`
	Gender        string  `json:"gender"`
	AdmissionDate string  `json:"admission_date,omitempty"`
	CancerType    string  `json:"cancer_type"`
	PathogenID    int     `json:"pathogen_id"`
	AntibioticID  int     `json:"antibiotic_id"`
	DurationDays  int     `json:"duration_days"`
	Region        string  `json:"region"`
}

type PredictionResult struct {
	Resistant   int     `json:"resistant"`
	Probability float64 `json:"probability"`
}

type PredictionLog struct {
	DoctorID  string
	Request   PredictionRequest
	Result    PredictionResult
	CreatedAt time.Time
}
