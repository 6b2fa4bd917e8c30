package repository

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medportal/internal/model"
)

func TestHospitalRepository_ListAndCreate(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(`FROM public\.hospitals ORDER BY hospital_id`).
		WillReturnRows(pgxmock.NewRows([]string{"id", "name", "region", "status"}).
			AddRow(int64(1), "General", "North", "Active").
			AddRow(int64(2), "Mercy", "South", "Inactive"))
	mock.ExpectQuery(`INSERT INTO public\.hospitals`).
		WithArgs("St. Luke", "East", "Active").
		WillReturnRows(pgxmock.NewRows([]string{"id"}).AddRow(int64(3)))

	repo := NewHospitalRepository(mock)

	hospitals, err := repo.List(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []model.Hospital{
		{ID: 1, Name: "General", Region: "North", Status: "Active"},
		{ID: 2, Name: "Mercy", Region: "South", Status: "Inactive"},
	}, hospitals)

	created, err := repo.Create(context.Background(), model.Hospital{Name: "St. Luke", Region: "East", Status: "Active"})
	require.NoError(t, err)
	assert.Equal(t, model.Hospital{ID: 3, Name: "St. Luke", Region: "East", Status: "Active"}, created)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestHospitalRepository_Update(t *testing.T) {
	status := "Inactive"

	t.Run("partial update", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE public\.hospitals SET status = \$1, updated_at = NOW\(\) WHERE hospital_id = \$2`).
			WithArgs("Inactive", int64(5)).
			WillReturnRows(pgxmock.NewRows([]string{"id", "name", "region", "status"}).
				AddRow(int64(5), "General", "North", "Inactive"))

		got, err := NewHospitalRepository(mock).Update(context.Background(), 5, model.HospitalPatch{Status: &status})

		require.NoError(t, err)
		assert.Equal(t, model.Hospital{ID: 5, Name: "General", Region: "North", Status: "Inactive"}, got)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("no fields", func(t *testing.T) {
		mock := newMock(t)
		_, err := NewHospitalRepository(mock).Update(context.Background(), 5, model.HospitalPatch{})
		require.ErrorIs(t, err, model.ErrNoFieldsToPatch)
	})

	t.Run("missing row", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(`UPDATE public\.hospitals`).WillReturnError(pgx.ErrNoRows)

		_, err := NewHospitalRepository(mock).Update(context.Background(), 5, model.HospitalPatch{Status: &status})

		require.ErrorIs(t, err, model.ErrHospitalNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestHospitalRepository_Delete(t *testing.T) {
	mock := newMock(t)
	mock.ExpectExec(`DELETE FROM public\.hospitals WHERE hospital_id = \$1`).
		WithArgs(int64(9)).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))

	err := NewHospitalRepository(mock).Delete(context.Background(), 9)

	require.ErrorIs(t, err, model.ErrHospitalNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
