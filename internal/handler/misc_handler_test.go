package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medportal/internal/middleware"
	"medportal/internal/model"
	"medportal/internal/security"
	"medportal/pkg/apierror"
)

type fakeAuditQuerier struct {
	got model.AuditQuery
}

func (f *fakeAuditQuerier) Query(_ context.Context, q model.AuditQuery) ([]model.AuditRecord, model.Meta, error) {
	f.got = q
	return []model.AuditRecord{}, model.Meta{Page: q.Page, Limit: q.Limit, Total: 0, TotalPages: 0}, nil
}

func TestAuditHandler_List(t *testing.T) {
	svc := &fakeAuditQuerier{}
	h := NewAuditHandler(svc)

	rec := httptest.NewRecorder()
	h.List(rec, httptest.NewRequest(http.MethodGet,
		"/admin/audit?doctor_id=111111&action=login_attempt&success=false&from=2026-01-02&to=2026-01-03T10:00:00%2B02:00&page=2&limit=20", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, svc.got.Success)
	assert.False(t, *svc.got.Success)
	assert.Equal(t, "111111", svc.got.DoctorID)
	assert.Equal(t, "login_attempt", svc.got.Action)
	assert.Equal(t, "2026-01-02T00:00:00Z", svc.got.From)
	assert.Equal(t, "2026-01-03T08:00:00Z", svc.got.To)
	assert.Equal(t, 2, svc.got.Page)
	assert.Equal(t, 20, svc.got.Limit)
	assert.JSONEq(t, `{"items":[],"meta":{"page":2,"limit":20,"total":0,"total_pages":0}}`, rec.Body.String())
}

func TestAuditHandler_RejectsBadFilters(t *testing.T) {
	h := NewAuditHandler(&fakeAuditQuerier{})

	for _, target := range []string{"/admin/audit?success=maybe", "/admin/audit?from=yesterday"} {
		rec := httptest.NewRecorder()
		h.List(rec, httptest.NewRequest(http.MethodGet, target, nil))
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
	}
}

type fakePredictor struct {
	doctorID string
	err      error
}

func (f *fakePredictor) Predict(_ context.Context, doctorID string, _ model.PredictionRequest) (model.PredictionResult, error) {
	f.doctorID = doctorID
	return model.PredictionResult{Resistant: 1, Probability: 0.75}, f.err
}

func TestPredictionHandler(t *testing.T) {
	svc := &fakePredictor{}
	h := NewPredictionHandler(svc)

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{"age":40}`))
	req = req.WithContext(middleware.WithClaims(req.Context(), &security.Claims{
		Type:             model.TokenTypeAccess,
		RegisteredClaims: jwt.RegisteredClaims{Subject: "222222"},
	}))
	rec := httptest.NewRecorder()
	h.Predict(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"resistant":1,"probability":0.75}`, rec.Body.String())
	assert.Equal(t, "222222", svc.doctorID)
}

func TestPredictionHandler_RequiresClaims(t *testing.T) {
	rec := httptest.NewRecorder()
	NewPredictionHandler(&fakePredictor{}).Predict(rec, httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPredictionHandler_Unavailable(t *testing.T) {
	h := NewPredictionHandler(&fakePredictor{err: apierror.New("SERVICE_UNAVAILABLE", "Prediction model is not available", "", http.StatusServiceUnavailable)})

	req := httptest.NewRequest(http.MethodPost, "/predict", strings.NewReader(`{}`))
	req = req.WithContext(middleware.WithClaims(req.Context(), &security.Claims{RegisteredClaims: jwt.RegisteredClaims{Subject: "222222"}}))
	rec := httptest.NewRecorder()
	h.Predict(rec, req)

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type fakePinger struct{ err error }

func (f fakePinger) Health(context.Context) error { return f.err }

func TestHealthHandler(t *testing.T) {
	fixed := time.Date(2026, 5, 1, 9, 0, 0, 0, time.UTC)

	h := NewHealthHandler(fakePinger{})
	h.now = func() time.Time { return fixed }
	rec := httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok","database":"ok","timestamp":"2026-05-01T09:00:00Z"}`, rec.Body.String())

	h = NewHealthHandler(fakePinger{err: errors.New("down")})
	rec = httptest.NewRecorder()
	h.Health(rec, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	rec = httptest.NewRecorder()
	h.Root(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.JSONEq(t, `{"status":"MedPortal API + Admin API running"}`, rec.Body.String())
}
