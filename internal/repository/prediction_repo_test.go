package repository

import (
	"context"
	"testing"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medportal/internal/model"
)

func sampleRequest() model.PredictionRequest {
	return model.PredictionRequest{
		Age:           64,
		WeightKg:      71.5,
		Gender:        "F",
		AdmissionDate: "2026-01-20",
		CancerType:    "Leukemia",
		PathogenID:    3,
		AntibioticID:  11,
		DurationDays:  10,
		Region:        "North",
	}
}

func TestPredictionRepository_Append(t *testing.T) {
	mock := newMock(t)
	req := sampleRequest()

	mock.ExpectExec(`INSERT INTO public\.prediction_logs`).
		WithArgs("123456", 64, 71.5, "F", pgxmock.AnyArg(), "Leukemia", 3, 11, 10, "North",
			[]byte(`{"resistant":1,"probability":0.82}`)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err := NewPredictionRepository(mock).Append(context.Background(), model.PredictionLog{
		DoctorID: "123456",
		Request:  req,
		Result:   model.PredictionResult{Resistant: 1, Probability: 0.82},
	})

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPredictionRepository_AppendRejectsBadDate(t *testing.T) {
	mock := newMock(t)
	req := sampleRequest()
	req.AdmissionDate = "20/01/2026"

	err := NewPredictionRepository(mock).Append(context.Background(), model.PredictionLog{DoctorID: "123456", Request: req})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "admission date")
	assert.NoError(t, mock.ExpectationsWereMet())
}
