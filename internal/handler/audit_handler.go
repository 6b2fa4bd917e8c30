package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"medportal/internal/model"
	"medportal/pkg/apierror"
)

type auditQuerier interface {
	Query(ctx context.Context, query model.AuditQuery) ([]model.AuditRecord, model.Meta, error)
}

type AuditHandler struct {
	service auditQuerier
}

func NewAuditHandler(service auditQuerier) *AuditHandler {
	return &AuditHandler{service: service}
}

// List returns one page of authentication audit records, newest first.
func (h *AuditHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter := model.AuditQuery{
		DoctorID: strings.TrimSpace(query.Get("doctor_id")),
		Action:   strings.TrimSpace(query.Get("action")),
		Page:     parseIntOrDefault(query.Get("page"), 1),
		Limit:    parseIntOrDefault(query.Get("limit"), 50),
	}

	if raw := strings.TrimSpace(query.Get("success")); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			writeError(w, apierror.BadRequest("success must be true or false", raw))
			return
		}
		filter.Success = &success
	}

	var err error
	if filter.From, err = timeFilter(query.Get("from"), "from"); err != nil {
		writeError(w, err)
		return
	}
	if filter.To, err = timeFilter(query.Get("to"), "to"); err != nil {
		writeError(w, err)
		return
	}

	items, meta, err := h.service.Query(r.Context(), filter)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, model.AuditListData{Items: items, Meta: meta})
}

// timeFilter accepts RFC 3339 timestamps or plain dates and returns them
// normalised to RFC 3339.
func timeFilter(raw string, field string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", nil
	}

	for _, layout := range []string{time.RFC3339, time.DateOnly} {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format(time.RFC3339), nil
		}
	}
	return "", apierror.BadRequest(field+" must be RFC 3339 or YYYY-MM-DD", raw)
}

func parseIntOrDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}
