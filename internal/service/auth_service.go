package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"medportal/internal/metrics"
	"medportal/internal/model"
	"medportal/internal/repository"
	"medportal/internal/security"
	"medportal/pkg/apierror"
)

const (
	invalidLoginMessage   = "Invalid ID or password"
	noPasswordMessage     = "Password not set. Use Admin to reset password."
	invalidRefreshMessage = "Invalid or expired refresh token"
)

type AuthConfig struct {
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// Now defaults to time.Now.
	Now func() time.Time
}

type AuthService struct {
	db         repository.DBTX
	doctors    *repository.DoctorRepository
	sessions   *repository.SessionRepository
	audit      *AuditService
	codec      *security.TokenCodec
	hasher     *security.PasswordHasher
	metrics    *metrics.Metrics
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewAuthService(
	db repository.DBTX,
	doctors *repository.DoctorRepository,
	sessions *repository.SessionRepository,
	audit *AuditService,
	codec *security.TokenCodec,
	hasher *security.PasswordHasher,
	m *metrics.Metrics,
	cfg AuthConfig,
) *AuthService {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}

	return &AuthService{
		db:         db,
		doctors:    doctors,
		sessions:   sessions,
		audit:      audit,
		codec:      codec,
		hasher:     hasher,
		metrics:    m,
		accessTTL:  cfg.AccessTTL,
		refreshTTL: cfg.RefreshTTL,
		now:        now,
	}
}

func (s *AuthService) Login(ctx context.Context, doctorID string, password string, client model.ClientInfo) (model.LoginResponse, error) {
	if !model.ValidDoctorID(doctorID) {
		return model.LoginResponse{}, apierror.BadRequest("doctor_id must be exactly 6 digits", "doctor_id")
	}
	if password == "" {
		return model.LoginResponse{}, apierror.BadRequest("password is required", "password")
	}

	doctor, err := s.doctors.FindByDoctorID(ctx, doctorID)
	if errors.Is(err, model.ErrDoctorNotFound) {
		s.audit.Record(ctx, s.db, newAuditRecord(model.AuditActionLoginAttempt, false, "", model.AuditReasonDoctorNotFound, client))
		return model.LoginResponse{}, invalidLogin()
	}
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("login lookup: %w", err)
	}

	if security.IsBlankDigest(doctor.PasswordHash) {
		s.audit.Record(ctx, s.db, newAuditRecord(model.AuditActionLoginAttempt, false, doctorID, model.AuditReasonNoPasswordSet, client))
		return model.LoginResponse{}, apierror.Unauthorized(noPasswordMessage)
	}

	if err := s.hasher.Compare(password, doctor.PasswordHash); err != nil {
		reason := model.AuditReasonWrongPassword
		if errors.Is(err, security.ErrMalformedDigest) {
			reason = model.AuditReasonBcryptError
			slog.Error("stored password digest is unreadable", "doctor_id", doctorID, "error", err)
		}
		s.audit.Record(ctx, s.db, newAuditRecord(model.AuditActionLoginAttempt, false, doctorID, reason, client))
		return model.LoginResponse{}, invalidLogin()
	}

	accessToken, _, err := s.codec.Issue(doctorID, model.TokenTypeAccess, s.accessTTL)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("issue access token: %w", err)
	}
	refreshToken, refreshExpiry, err := s.codec.Issue(doctorID, model.TokenTypeRefresh, s.refreshTTL)
	if err != nil {
		return model.LoginResponse{}, fmt.Errorf("issue refresh token: %w", err)
	}

	// Tokens are returned even when the session cannot be stored; the
	// success audit only exists alongside a committed session row.
	err = repository.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		if _, err := s.sessions.WithTx(tx).Create(ctx, doctorID, refreshToken, refreshExpiry); err != nil {
			return err
		}
		s.audit.Record(ctx, tx, newAuditRecord(model.AuditActionLoginSuccess, true, doctorID, "", client))
		return nil
	})
	if err != nil {
		slog.Error("login session not persisted", "doctor_id", doctorID, "error", err)
	}

	role := strings.TrimSpace(doctor.Role)
	if role == "" {
		role = model.RoleDoctor
	}

	return model.LoginResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    model.TokenTypeBearer,
		ExpiresIn:    int64(s.accessTTL.Seconds()),
		Role:         role,
	}, nil
}

// ValidateSession checks an access token's signature and expiry without
// consulting the session store.
func (s *AuthService) ValidateSession(token string) (model.SessionInfo, error) {
	claims, err := s.ValidateToken(strings.TrimSpace(token), model.TokenTypeAccess)
	if err != nil {
		return model.SessionInfo{}, err
	}

	return model.SessionInfo{
		Valid:     true,
		DoctorID:  claims.Subject,
		ExpiresAt: claims.Expiry(),
	}, nil
}

// ValidateToken verifies token and requires its type tag to equal
// expectedType.
func (s *AuthService) ValidateToken(token string, expectedType string) (*security.Claims, error) {
	claims, err := s.codec.Verify(token)
	if errors.Is(err, security.ErrTokenExpired) {
		return nil, apierror.Unauthorized("Token expired")
	}
	if err != nil {
		return nil, apierror.Unauthorized("Invalid token")
	}
	if claims.Type != expectedType {
		return nil, apierror.Unauthorized("Invalid token type")
	}
	return claims, nil
}

func (s *AuthService) Refresh(ctx context.Context, refreshToken string, client model.ClientInfo) (model.RefreshResponse, error) {
	refreshToken = strings.TrimSpace(refreshToken)
	if refreshToken == "" {
		return model.RefreshResponse{}, apierror.BadRequest("refresh_token is required", "refresh_token")
	}

	claims, err := s.codec.Verify(refreshToken)
	if err != nil {
		s.audit.Record(ctx, s.db, newAuditRecord(model.AuditActionRefreshFailure, false, "", model.AuditReasonInvalidOrExpired, client))
		return model.RefreshResponse{}, invalidRefresh()
	}
	doctorID := claims.Subject
	if claims.Type != model.TokenTypeRefresh {
		s.audit.Record(ctx, s.db, newAuditRecord(model.AuditActionRefreshFailure, false, doctorID, model.AuditReasonInvalidOrExpired, client))
		return model.RefreshResponse{}, invalidRefresh()
	}

	var (
		response model.RefreshResponse
		rejected string
	)

	// Rejections commit their audit record and are reported after the
	// transaction closes.
	err = repository.WithTx(ctx, s.db, func(tx pgx.Tx) error {
		sessions := s.sessions.WithTx(tx)

		session, err := sessions.FindByToken(ctx, doctorID, refreshToken)
		if errors.Is(err, model.ErrSessionNotFound) {
			rejected = model.AuditReasonSessionNotFound
			s.audit.Record(ctx, tx, newAuditRecord(model.AuditActionRefreshFailure, false, doctorID, rejected, client))
			return nil
		}
		if err != nil {
			return err
		}

		if session.ExpiresAt.Before(s.now()) {
			rejected = model.AuditReasonExpired
			s.audit.Record(ctx, tx, newAuditRecord(model.AuditActionRefreshFailure, false, doctorID, rejected, client))
			return nil
		}

		accessToken, _, err := s.codec.Issue(doctorID, model.TokenTypeAccess, s.accessTTL)
		if err != nil {
			return fmt.Errorf("issue access token: %w", err)
		}
		newRefresh, newExpiry, err := s.codec.Issue(doctorID, model.TokenTypeRefresh, s.refreshTTL)
		if err != nil {
			return fmt.Errorf("issue refresh token: %w", err)
		}

		rotateErr := repository.WithTx(ctx, tx, func(sp pgx.Tx) error {
			return s.sessions.WithTx(sp).Rotate(ctx, session.ID, refreshToken, newRefresh, newExpiry)
		})
		switch {
		case errors.Is(rotateErr, model.ErrSessionStale):
			rejected = model.AuditReasonSessionNotFound
			s.audit.Record(ctx, tx, newAuditRecord(model.AuditActionRefreshFailure, false, doctorID, rejected, client))
			return nil
		case rotateErr != nil:
			slog.Error("session rotation not persisted", "doctor_id", doctorID, "session_id", session.ID, "error", rotateErr)
		}

		s.audit.Record(ctx, tx, newAuditRecord(model.AuditActionRefreshSuccess, true, doctorID, "", client))

		response = model.RefreshResponse{
			AccessToken:  accessToken,
			TokenType:    model.TokenTypeBearer,
			ExpiresIn:    int64(s.accessTTL.Seconds()),
			RefreshToken: newRefresh,
		}
		return nil
	})
	if err != nil {
		return model.RefreshResponse{}, fmt.Errorf("refresh session: %w", err)
	}
	if rejected != "" {
		return model.RefreshResponse{}, invalidRefresh()
	}

	return response, nil
}

// Logout drops the session holding refreshToken. Unknown sessions are not
// an error so repeated calls are harmless.
func (s *AuthService) Logout(ctx context.Context, refreshToken string, client model.ClientInfo) error {
	claims, err := s.ValidateToken(strings.TrimSpace(refreshToken), model.TokenTypeRefresh)
	if err != nil {
		return err
	}

	deleted, err := s.sessions.Delete(ctx, claims.Subject, strings.TrimSpace(refreshToken))
	if err != nil {
		return fmt.Errorf("logout: %w", err)
	}
	if deleted {
		s.audit.Record(ctx, s.db, newAuditRecord(model.AuditActionLogout, true, claims.Subject, "", client))
	}
	return nil
}

// EnsureAdmin creates an Admin account for doctorID unless one already
// exists under that id.
func (s *AuthService) EnsureAdmin(ctx context.Context, doctorID string, password string) error {
	if !model.ValidDoctorID(doctorID) {
		return fmt.Errorf("seed admin id %q must be exactly 6 digits", doctorID)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return fmt.Errorf("hash seed admin password: %w", err)
	}

	created, err := s.doctors.CreateIfAbsent(ctx, model.Doctor{
		DoctorID:     doctorID,
		Name:         "Administrator",
		Role:         model.RoleAdmin,
		Status:       model.StatusActive,
		PasswordHash: hash,
	})
	if err != nil {
		return fmt.Errorf("seed admin: %w", err)
	}
	if created {
		slog.Info("seed admin account created", "doctor_id", doctorID)
	}
	return nil
}

// RoleOf returns the current role of doctorID as stored, so role changes
// take effect without reissuing tokens.
func (s *AuthService) RoleOf(ctx context.Context, doctorID string) (string, error) {
	doctor, err := s.doctors.FindByDoctorID(ctx, doctorID)
	if err != nil {
		return "", err
	}
	return doctor.Role, nil
}

func (s *AuthService) SweepExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	s.metrics.RecordSweep(removed)
	return removed, nil
}

// StartSessionSweeper deletes expired sessions every interval until ctx is
// cancelled.
func (s *AuthService) StartSessionSweeper(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Hour
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed, err := s.SweepExpiredSessions(ctx)
			if err != nil {
				if ctx.Err() == nil {
					slog.Warn("session sweep failed", "error", err)
				}
				continue
			}
			if removed > 0 {
				slog.Info("expired sessions removed", "count", removed)
			}
		}
	}
}

func invalidLogin() error {
	return apierror.Unauthorized(invalidLoginMessage)
}

func invalidRefresh() error {
	return apierror.Unauthorized(invalidRefreshMessage)
}
