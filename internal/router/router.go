package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"medportal/internal/config"
	"medportal/internal/handler"
	"medportal/internal/metrics"
	"medportal/internal/middleware"
	"medportal/internal/model"
)

type Handlers struct {
	Health     *handler.HealthHandler
	Auth       *handler.AuthHandler
	Prediction *handler.PredictionHandler
	Hospital   *handler.HospitalHandler
	Doctor     *handler.DoctorHandler
	Audit      *handler.AuditHandler
}

func New(
	cfg *config.Config,
	authMiddleware *middleware.AuthMiddleware,
	h Handlers,
	m *metrics.Metrics,
) http.Handler {
	r := chi.NewRouter()
	rateLimitMiddleware := middleware.NewRateLimitMiddleware(cfg.RateLimitRPM, cfg.AuthRateLimitRPM)

	r.Use(middleware.Recovery)
	r.Use(middleware.NewProxyTrust(cfg.TrustedProxies).Handler)
	r.Use(middleware.Logging)
	r.Use(middleware.Instrument(m))
	r.Use(middleware.SecurityHeaders)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", h.Health.Health)
	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Group(func(api chi.Router) {
		api.Use(rateLimitMiddleware.Handler)
		api.Use(middleware.Timeout(cfg.RequestTimeout))

		api.Get("/", h.Health.Root)

		api.Post("/login", h.Auth.Login)
		api.Post("/session/validate", h.Auth.ValidateSession)
		api.Post("/token/refresh", h.Auth.Refresh)
		api.Post("/logout", h.Auth.Logout)

		api.With(authMiddleware.RequireAuth).Post("/predict", h.Prediction.Predict)

		api.Route("/admin", func(admin chi.Router) {
			admin.Use(authMiddleware.RequireAuth, authMiddleware.RequireRoles(model.RoleAdmin))

			admin.Get("/hospitals", h.Hospital.List)
			admin.Post("/hospitals", h.Hospital.Create)
			admin.Put("/hospitals/{hospitalID}", h.Hospital.Update)
			admin.Delete("/hospitals/{hospitalID}", h.Hospital.Delete)

			admin.Get("/doctors", h.Doctor.List)
			admin.Post("/doctors", h.Doctor.Create)
			admin.Put("/doctors/{doctorID}", h.Doctor.Update)
			admin.Delete("/doctors/{doctorID}", h.Doctor.Delete)

			admin.Get("/audit", h.Audit.List)
		})
	})

	return r
}
