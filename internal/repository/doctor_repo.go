package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"medportal/internal/model"
)

const doctorColumns = `id, doctor_id, COALESCE(name, ''), COALESCE(role, ''), COALESCE(region, ''),
		COALESCE(hospital, ''), COALESCE(status, ''), COALESCE(password_hash, ''), created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

type DoctorRepository struct {
	db DBTX
}

func NewDoctorRepository(db DBTX) *DoctorRepository {
	return &DoctorRepository{db: db}
}

// WithTx returns a repository bound to tx.
func (r *DoctorRepository) WithTx(tx pgx.Tx) *DoctorRepository {
	return &DoctorRepository{db: tx}
}

func (r *DoctorRepository) FindByDoctorID(ctx context.Context, doctorID string) (model.Doctor, error) {
	row := r.db.QueryRow(ctx,
		`SELECT `+doctorColumns+`
		 FROM medportal.doctors WHERE doctor_id = $1`, doctorID)

	d, err := scanDoctor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Doctor{}, model.ErrDoctorNotFound
	}
	if err != nil {
		return model.Doctor{}, fmt.Errorf("find doctor by id: %w", err)
	}
	return d, nil
}

func (r *DoctorRepository) List(ctx context.Context) ([]model.Doctor, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+doctorColumns+`
		 FROM medportal.doctors ORDER BY doctor_id`)
	if err != nil {
		return nil, fmt.Errorf("list doctors: %w", err)
	}
	defer rows.Close()

	doctors := make([]model.Doctor, 0)
	for rows.Next() {
		d, err := scanDoctor(rows)
		if err != nil {
			return nil, fmt.Errorf("scan doctor: %w", err)
		}
		doctors = append(doctors, d)
	}
	return doctors, rows.Err()
}

func (r *DoctorRepository) Create(ctx context.Context, d model.Doctor) (model.Doctor, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO medportal.doctors (doctor_id, name, role, region, hospital, status, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+doctorColumns,
		d.DoctorID, d.Name, d.Role, d.Region, d.Hospital, d.Status, d.PasswordHash)

	created, err := scanDoctor(row)
	if isUniqueViolation(err) {
		return model.Doctor{}, model.ErrDoctorAlreadyExists
	}
	if err != nil {
		return model.Doctor{}, fmt.Errorf("create doctor: %w", err)
	}
	return created, nil
}

// CreateIfAbsent inserts d unless its doctor id is taken and reports whether
// a row was written.
func (r *DoctorRepository) CreateIfAbsent(ctx context.Context, d model.Doctor) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`INSERT INTO medportal.doctors (doctor_id, name, role, region, hospital, status, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (doctor_id) DO NOTHING`,
		d.DoctorID, d.Name, d.Role, d.Region, d.Hospital, d.Status, d.PasswordHash)
	if err != nil {
		return false, fmt.Errorf("create doctor if absent: %w", err)
	}
	return tag.RowsAffected() == 1, nil
}

// Upsert creates d or overwrites the identity fields and password of an
// existing row with the same doctor id.
func (r *DoctorRepository) Upsert(ctx context.Context, d model.Doctor) (model.Doctor, error) {
	row := r.db.QueryRow(ctx,
		`INSERT INTO medportal.doctors (doctor_id, name, role, region, hospital, status, password_hash)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (doctor_id) DO UPDATE SET
		   name = EXCLUDED.name,
		   role = EXCLUDED.role,
		   region = EXCLUDED.region,
		   hospital = EXCLUDED.hospital,
		   status = EXCLUDED.status,
		   password_hash = EXCLUDED.password_hash,
		   updated_at = NOW()
		 RETURNING `+doctorColumns,
		d.DoctorID, d.Name, d.Role, d.Region, d.Hospital, d.Status, d.PasswordHash)

	saved, err := scanDoctor(row)
	if err != nil {
		return model.Doctor{}, fmt.Errorf("upsert doctor: %w", err)
	}
	return saved, nil
}

func (r *DoctorRepository) Update(ctx context.Context, doctorID string, patch model.DoctorPatch) (model.Doctor, error) {
	if patch.Empty() {
		return model.Doctor{}, model.ErrNoFieldsToPatch
	}

	set := make([]string, 0, 7)
	args := make([]any, 0, 7)
	add := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	add("name", patch.Name)
	add("role", patch.Role)
	add("region", patch.Region)
	add("hospital", patch.Hospital)
	add("status", patch.Status)
	add("password_hash", patch.PasswordHash)
	set = append(set, "updated_at = NOW()")
	args = append(args, doctorID)

	row := r.db.QueryRow(ctx, fmt.Sprintf(
		`UPDATE medportal.doctors SET %s
		 WHERE doctor_id = $%d
		 RETURNING `+doctorColumns, strings.Join(set, ", "), len(args)), args...)

	updated, err := scanDoctor(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Doctor{}, model.ErrDoctorNotFound
	}
	if err != nil {
		return model.Doctor{}, fmt.Errorf("update doctor: %w", err)
	}
	return updated, nil
}

func (r *DoctorRepository) Delete(ctx context.Context, doctorID string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM medportal.doctors WHERE doctor_id = $1`, doctorID)
	if err != nil {
		return fmt.Errorf("delete doctor: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrDoctorNotFound
	}
	return nil
}

func scanDoctor(row scanner) (model.Doctor, error) {
	var d model.Doctor
	err := row.Scan(&d.ID, &d.DoctorID, &d.Name, &d.Role, &d.Region,
		&d.Hospital, &d.Status, &d.PasswordHash, &d.CreatedAt, &d.UpdatedAt)
	return d, err
}
