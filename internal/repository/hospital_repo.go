package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"medportal/internal/model"
)

type HospitalRepository struct {
	db DBTX
}

func NewHospitalRepository(db DBTX) *HospitalRepository {
	return &HospitalRepository{db: db}
}

func (r *HospitalRepository) List(ctx context.Context) ([]model.Hospital, error) {
	rows, err := r.db.Query(ctx,
		`SELECT hospital_id, name, COALESCE(region, ''), COALESCE(status, '')
		 FROM public.hospitals ORDER BY hospital_id`)
	if err != nil {
		return nil, fmt.Errorf("list hospitals: %w", err)
	}
	defer rows.Close()

	hospitals := make([]model.Hospital, 0)
	for rows.Next() {
		var h model.Hospital
		if err := rows.Scan(&h.ID, &h.Name, &h.Region, &h.Status); err != nil {
			return nil, fmt.Errorf("scan hospital: %w", err)
		}
		hospitals = append(hospitals, h)
	}
	return hospitals, rows.Err()
}

func (r *HospitalRepository) Create(ctx context.Context, h model.Hospital) (model.Hospital, error) {
	err := r.db.QueryRow(ctx,
		`INSERT INTO public.hospitals (name, region, status)
		 VALUES ($1, $2, $3)
		 RETURNING hospital_id`,
		h.Name, h.Region, h.Status).Scan(&h.ID)
	if err != nil {
		return model.Hospital{}, fmt.Errorf("create hospital: %w", err)
	}
	return h, nil
}

func (r *HospitalRepository) Update(ctx context.Context, id int64, patch model.HospitalPatch) (model.Hospital, error) {
	if patch.Empty() {
		return model.Hospital{}, model.ErrNoFieldsToPatch
	}

	set := make([]string, 0, 4)
	args := make([]any, 0, 4)
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("name", patch.Name)
	add("region", patch.Region)
	add("status", patch.Status)
	set = append(set, "updated_at = NOW()")
	args = append(args, id)

	var h model.Hospital
	err := r.db.QueryRow(ctx, fmt.Sprintf(
		`UPDATE public.hospitals SET %s
		 WHERE hospital_id = $%d
		 RETURNING hospital_id, name, COALESCE(region, ''), COALESCE(status, '')`,
		strings.Join(set, ", "), len(args)), args...).
		Scan(&h.ID, &h.Name, &h.Region, &h.Status)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Hospital{}, model.ErrHospitalNotFound
	}
	if err != nil {
		return model.Hospital{}, fmt.Errorf("update hospital: %w", err)
	}
	return h, nil
}

func (r *HospitalRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM public.hospitals WHERE hospital_id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete hospital: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrHospitalNotFound
	}
	return nil
}
