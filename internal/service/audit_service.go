package service

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v5"

	"medportal/internal/metrics"
	"medportal/internal/model"
	"medportal/internal/repository"
)

type AuditService struct {
	repo    *repository.AuditRepository
	metrics *metrics.Metrics
}

func NewAuditService(repo *repository.AuditRepository, m *metrics.Metrics) *AuditService {
	return &AuditService{repo: repo, metrics: m}
}

// Record appends rec through db, which may be the pool or an open
// transaction. The insert runs in its own savepoint so a failed write never
// aborts the caller's transaction. Failures are logged and dropped.
func (s *AuditService) Record(ctx context.Context, db repository.DBTX, rec model.AuditRecord) {
	if s == nil {
		return
	}

	reason := ""
	if rec.Reason != nil {
		reason = *rec.Reason
	}
	s.metrics.RecordAuthEvent(rec.Action, rec.Success, reason)

	err := repository.WithTx(ctx, db, func(tx pgx.Tx) error {
		return s.repo.WithTx(tx).Append(ctx, rec)
	})
	if err != nil {
		attrs := []any{"action", rec.Action, "success", rec.Success, "reason", reason, "error", err}
		if rec.DoctorID != nil {
			attrs = append(attrs, "doctor_id", *rec.DoctorID)
		}
		slog.Warn("audit write failed", attrs...)
	}
}

func (s *AuditService) Query(ctx context.Context, query model.AuditQuery) ([]model.AuditRecord, model.Meta, error) {
	return s.repo.Query(ctx, query)
}

func newAuditRecord(action string, success bool, doctorID string, reason string, client model.ClientInfo) model.AuditRecord {
	rec := model.AuditRecord{
		IPAddress: client.IPAddress,
		UserAgent: client.UserAgent,
		Action:    action,
		Success:   success,
	}
	if doctorID != "" {
		rec.DoctorID = &doctorID
	}
	if reason != "" {
		rec.Reason = &reason
	}
	return rec
}
