package middleware

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"medportal/internal/model"
	"medportal/internal/security"
	"medportal/pkg/apierror"
)

type tokenValidator interface {
	ValidateToken(tokenString string, expectedType string) (*security.Claims, error)
}

type roleResolver interface {
	RoleOf(ctx context.Context, doctorID string) (string, error)
}

type contextKey string

const authClaimsContextKey contextKey = "auth_claims"

type AuthMiddleware struct {
	validator tokenValidator
	roles     roleResolver
}

func NewAuthMiddleware(validator tokenValidator, roles roleResolver) *AuthMiddleware {
	return &AuthMiddleware{validator: validator, roles: roles}
}

func (m *AuthMiddleware) RequireAuth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		header := strings.TrimSpace(r.Header.Get("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			writeErrorEnvelope(w, http.StatusUnauthorized, apierror.CodeUnauthorized, "missing or invalid authorization header")
			return
		}

		token := strings.TrimSpace(header[7:])
		claims, err := m.validator.ValidateToken(token, model.TokenTypeAccess)
		if err != nil {
			message := "invalid or expired token"
			var apiErr *apierror.APIError
			if errors.As(err, &apiErr) {
				message = apiErr.Message
			}
			writeErrorEnvelope(w, http.StatusUnauthorized, apierror.CodeUnauthorized, message)
			return
		}

		next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
	})
}

// RequireRoles admits callers whose stored role is one of allowedRoles. The
// role is read on every request so demotions take effect immediately.
func (m *AuthMiddleware) RequireRoles(allowedRoles ...string) func(http.Handler) http.Handler {
	roleSet := map[string]struct{}{}
	for _, role := range allowedRoles {
		roleSet[strings.ToLower(strings.TrimSpace(role))] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			claims, ok := ClaimsFromContext(r.Context())
			if !ok {
				writeErrorEnvelope(w, http.StatusUnauthorized, apierror.CodeUnauthorized, "authentication required")
				return
			}

			role, err := m.roles.RoleOf(r.Context(), claims.Subject)
			if errors.Is(err, model.ErrDoctorNotFound) {
				writeErrorEnvelope(w, http.StatusForbidden, apierror.CodeForbidden, "insufficient permissions")
				return
			}
			if err != nil {
				slog.Error("role lookup failed", "doctor_id", claims.Subject, "error", err)
				writeErrorEnvelope(w, http.StatusInternalServerError, apierror.CodeInternal, "Unexpected server error")
				return
			}

			if _, exists := roleSet[strings.ToLower(strings.TrimSpace(role))]; !exists {
				writeErrorEnvelope(w, http.StatusForbidden, apierror.CodeForbidden, "insufficient permissions")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func ClaimsFromContext(ctx context.Context) (*security.Claims, bool) {
	claims, ok := ctx.Value(authClaimsContextKey).(*security.Claims)
	return claims, ok
}

// WithClaims returns ctx carrying claims, as RequireAuth does.
func WithClaims(ctx context.Context, claims *security.Claims) context.Context {
	return context.WithValue(ctx, authClaimsContextKey, claims)
}
