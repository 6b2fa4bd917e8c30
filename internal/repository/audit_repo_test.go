package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medportal/internal/model"
)

func strPtr(s string) *string { return &s }

func TestAuditRepository_Append(t *testing.T) {
	t.Run("writes every field", func(t *testing.T) {
		mock := newMock(t)
		rec := model.AuditRecord{
			DoctorID:  strPtr("123456"),
			IPAddress: "10.0.0.1",
			UserAgent: "curl/8.0",
			Action:    model.AuditActionLoginAttempt,
			Success:   false,
			Reason:    strPtr(model.AuditReasonWrongPassword),
		}

		mock.ExpectExec(`INSERT INTO medportal\.auth_audit`).
			WithArgs(rec.DoctorID, "10.0.0.1", "curl/8.0", model.AuditActionLoginAttempt, false, rec.Reason).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))

		require.NoError(t, NewAuditRepository(mock).Append(context.Background(), rec))
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("propagates failures", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectExec(`INSERT INTO medportal\.auth_audit`).
			WillReturnError(errors.New("disk full"))

		err := NewAuditRepository(mock).Append(context.Background(), model.AuditRecord{Action: model.AuditActionLoginSuccess, Success: true})

		require.Error(t, err)
		assert.Contains(t, err.Error(), "disk full")
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestAuditRepository_Query(t *testing.T) {
	mock := newMock(t)
	success := false
	createdAt := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM medportal\.auth_audit WHERE doctor_id = \$1 AND lower\(action\) = lower\(\$2\) AND success = \$3`).
		WithArgs("123456", "login_attempt", false).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(`LIMIT \$4 OFFSET \$5`).
		WithArgs("123456", "login_attempt", false, 2, 2).
		WillReturnRows(pgxmock.NewRows([]string{"id", "doctor_id", "ip_address", "user_agent", "action", "success", "reason", "created_at"}).
			AddRow(int64(1), strPtr("123456"), "10.0.0.1", "curl/8.0", "login_attempt", false, strPtr("wrong_password"), createdAt))

	records, meta, err := NewAuditRepository(mock).Query(context.Background(), model.AuditQuery{
		DoctorID: "123456",
		Action:   "login_attempt",
		Success:  &success,
		Page:     2,
		Limit:    2,
	})

	require.NoError(t, err)
	assert.Equal(t, model.Meta{Page: 2, Limit: 2, Total: 3, TotalPages: 2}, meta)
	require.Len(t, records, 1)
	assert.Equal(t, "123456", *records[0].DoctorID)
	assert.Equal(t, "wrong_password", *records[0].Reason)
	assert.Equal(t, createdAt, records[0].CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditRepository_QueryClampsPaging(t *testing.T) {
	mock := newMock(t)

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM medportal\.auth_audit\s*$`).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(0))
	mock.ExpectQuery(`LIMIT \$1 OFFSET \$2`).
		WithArgs(200, 0).
		WillReturnRows(pgxmock.NewRows([]string{"id", "doctor_id", "ip_address", "user_agent", "action", "success", "reason", "created_at"}))

	records, meta, err := NewAuditRepository(mock).Query(context.Background(), model.AuditQuery{Page: -3, Limit: 5000})

	require.NoError(t, err)
	assert.Empty(t, records)
	assert.Equal(t, model.Meta{Page: 1, Limit: 200, Total: 0, TotalPages: 0}, meta)
	assert.NoError(t, mock.ExpectationsWereMet())
}
