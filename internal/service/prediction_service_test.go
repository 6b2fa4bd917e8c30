package service

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medportal/internal/model"
	"medportal/internal/repository"
	"medportal/internal/scoring"
)

type fakeScorer struct {
	result model.PredictionResult
	err    error
	calls  int
}

func (f *fakeScorer) Predict(_ context.Context, _ model.PredictionRequest) (model.PredictionResult, error) {
	f.calls++
	return f.result, f.err
}

func newPredictionService(t *testing.T, s scorer) (*PredictionService, pgxmock.PgxPoolIface) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)

	return NewPredictionService(s, repository.NewPredictionRepository(mock)), mock
}

func validPrediction() model.PredictionRequest {
	return model.PredictionRequest{
		Age:           64,
		WeightKg:      71.5,
		Gender:        "F",
		AdmissionDate: "2026-03-14",
		CancerType:    "Leukemia",
		PathogenID:    3,
		AntibioticID:  11,
		DurationDays:  10,
		Region:        "South",
	}
}

func TestPredictionService_PredictLogsResult(t *testing.T) {
	scorer := &fakeScorer{result: model.PredictionResult{Resistant: 1, Probability: 0.91}}
	svc, mock := newPredictionService(t, scorer)
	mock.ExpectExec(`INSERT INTO public\.prediction_logs`).
		WithArgs("123456", 64, 71.5, "F", pgxmock.AnyArg(), "Leukemia", 3, 11, 10, "South", []byte(`{"resistant":1,"probability":0.91}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	result, err := svc.Predict(context.Background(), "123456", validPrediction())

	require.NoError(t, err)
	assert.Equal(t, scorer.result, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionService_LogFailureDoesNotFailPrediction(t *testing.T) {
	scorer := &fakeScorer{result: model.PredictionResult{Resistant: 0, Probability: 0.2}}
	svc, mock := newPredictionService(t, scorer)
	mock.ExpectExec(`INSERT INTO public\.prediction_logs`).WillReturnError(errors.New("relation does not exist"))

	result, err := svc.Predict(context.Background(), "123456", validPrediction())

	require.NoError(t, err)
	assert.Equal(t, 0, result.Resistant)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionService_ScorerFailures(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "not configured", err: scoring.ErrNotConfigured, status: http.StatusServiceUnavailable},
		{name: "upstream error", err: errors.New("model server returned 500"), status: http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, mock := newPredictionService(t, &fakeScorer{err: tt.err})

			_, err := svc.Predict(context.Background(), "123456", validPrediction())

			requireAPIError(t, err, tt.status)
			assert.NoError(t, mock.ExpectationsWereMet(), "failed predictions are not logged")
		})
	}
}

func TestPredictionService_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(r *model.PredictionRequest)
		field  string
	}{
		{name: "negative age", mutate: func(r *model.PredictionRequest) { r.Age = -1 }, field: "age"},
		{name: "zero weight", mutate: func(r *model.PredictionRequest) { r.WeightKg = 0 }, field: "weight_kg"},
		{name: "blank gender", mutate: func(r *model.PredictionRequest) { r.Gender = " " }, field: "gender"},
		{name: "blank cancer type", mutate: func(r *model.PredictionRequest) { r.CancerType = "" }, field: "cancer_type"},
		{name: "missing pathogen", mutate: func(r *model.PredictionRequest) { r.PathogenID = 0 }, field: "pathogen_id"},
		{name: "missing antibiotic", mutate: func(r *model.PredictionRequest) { r.AntibioticID = 0 }, field: "antibiotic_id"},
		{name: "zero duration", mutate: func(r *model.PredictionRequest) { r.DurationDays = 0 }, field: "duration_days"},
		{name: "blank region", mutate: func(r *model.PredictionRequest) { r.Region = "" }, field: "region"},
		{name: "bad date", mutate: func(r *model.PredictionRequest) { r.AdmissionDate = "14/03/2026" }, field: "admission_date"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			scorer := &fakeScorer{}
			svc, _ := newPredictionService(t, scorer)
			req := validPrediction()
			tt.mutate(&req)

			_, err := svc.Predict(context.Background(), "123456", req)

			apiErr := requireAPIError(t, err, http.StatusBadRequest)
			assert.Equal(t, tt.field, apiErr.Details)
			assert.Zero(t, scorer.calls)
		})
	}
}
