package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"medportal/internal/model"
)

type SessionRepository struct {
	db DBTX
}

func NewSessionRepository(db DBTX) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) WithTx(tx pgx.Tx) *SessionRepository {
	return &SessionRepository{db: tx}
}

func (r *SessionRepository) Create(ctx context.Context, doctorID string, refreshToken string, expiresAt time.Time) (int64, error) {
	var id int64
	err := r.db.QueryRow(ctx,
		`INSERT INTO medportal.sessions (doctor_id, refresh_token, expires_at)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		doctorID, refreshToken, expiresAt).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("create session: %w", err)
	}
	return id, nil
}

// FindByToken locks and returns the session holding refreshToken for
// doctorID. Inside a transaction the row lock serialises concurrent
// refreshes of the same token.
func (r *SessionRepository) FindByToken(ctx context.Context, doctorID string, refreshToken string) (model.Session, error) {
	var s model.Session
	err := r.db.QueryRow(ctx,
		`SELECT id, doctor_id, refresh_token, expires_at, created_at
		 FROM medportal.sessions
		 WHERE doctor_id = $1 AND refresh_token = $2
		 FOR UPDATE`, doctorID, refreshToken).
		Scan(&s.ID, &s.DoctorID, &s.RefreshToken, &s.ExpiresAt, &s.CreatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return model.Session{}, model.ErrSessionNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("find session: %w", err)
	}
	return s, nil
}

// Rotate swaps the refresh token of session id only if it still holds
// oldToken. ErrSessionStale means another request rotated it first.
func (r *SessionRepository) Rotate(ctx context.Context, id int64, oldToken string, newToken string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE medportal.sessions
		 SET refresh_token = $3, expires_at = $4
		 WHERE id = $1 AND refresh_token = $2`,
		id, oldToken, newToken, expiresAt)
	if err != nil {
		return fmt.Errorf("rotate session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return model.ErrSessionStale
	}
	return nil
}

func (r *SessionRepository) Delete(ctx context.Context, doctorID string, refreshToken string) (bool, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM medportal.sessions WHERE doctor_id = $1 AND refresh_token = $2`,
		doctorID, refreshToken)
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

func (r *SessionRepository) DeleteAllForDoctor(ctx context.Context, doctorID string) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM medportal.sessions WHERE doctor_id = $1`, doctorID)
	if err != nil {
		return 0, fmt.Errorf("delete doctor sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}

func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM medportal.sessions WHERE expires_at <= NOW()`)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
