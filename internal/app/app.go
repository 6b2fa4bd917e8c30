package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"medportal/internal/config"
	"medportal/internal/database"
	"medportal/internal/handler"
	"medportal/internal/metrics"
	"medportal/internal/middleware"
	"medportal/internal/repository"
	"medportal/internal/router"
	"medportal/internal/scoring"
	"medportal/internal/security"
	"medportal/internal/service"
)

type App struct {
	server       *http.Server
	db           *database.DB
	cleanupFuncs []func()
}

// OpenDatabase connects to PostgreSQL and makes sure the schema exists.
func OpenDatabase(ctx context.Context, cfg *config.Config) (*database.DB, error) {
	slog.Info("connecting to PostgreSQL")
	db, err := database.New(ctx, cfg.PostgresURL(), cfg.DBMaxConns, cfg.DBMinConns)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if err := db.EnsureSchema(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure database schema: %w", err)
	}

	slog.Info("database ready")
	return db, nil
}

// NewDoctorService builds the account service used by both the HTTP API and
// the command line.
func NewDoctorService(cfg *config.Config, db repository.DBTX) *service.DoctorService {
	return service.NewDoctorService(
		repository.NewDoctorRepository(db),
		repository.NewSessionRepository(db),
		security.NewPasswordHasher(cfg.BcryptCost),
	)
}

// NewHandler wires repositories, services and handlers on top of db. The
// returned AuthService owns the session sweeper.
func NewHandler(ctx context.Context, cfg *config.Config, db *database.DB) (http.Handler, *service.AuthService, error) {
	codec, err := security.NewTokenCodec(cfg.JWTSecret, cfg.JWTAlgorithm)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize token codec: %w", err)
	}

	pool := db.Pool
	doctorRepo := repository.NewDoctorRepository(pool)
	sessionRepo := repository.NewSessionRepository(pool)
	auditRepo := repository.NewAuditRepository(pool)
	hospitalRepo := repository.NewHospitalRepository(pool)
	predictionRepo := repository.NewPredictionRepository(pool)

	m := metrics.New()
	hasher := security.NewPasswordHasher(cfg.BcryptCost)

	auditService := service.NewAuditService(auditRepo, m)
	authService := service.NewAuthService(pool, doctorRepo, sessionRepo, auditService, codec, hasher, m, service.AuthConfig{
		AccessTTL:  cfg.JWTAccessTTL,
		RefreshTTL: cfg.JWTRefreshTTL,
	})

	if cfg.SeedAdminPassword != "" {
		if err := authService.EnsureAdmin(ctx, cfg.SeedAdminID, cfg.SeedAdminPassword); err != nil {
			return nil, nil, fmt.Errorf("failed to seed admin account: %w", err)
		}
	}

	doctorService := service.NewDoctorService(doctorRepo, sessionRepo, hasher)
	hospitalService := service.NewHospitalService(hospitalRepo)

	scorer := scoring.NewClient(cfg.ModelServerURL, cfg.ModelTimeout)
	if !scorer.Configured() {
		slog.Warn("MODEL_SERVER_URL is not set; /predict will answer 503")
	}
	predictionService := service.NewPredictionService(scorer, predictionRepo)

	authMiddleware := middleware.NewAuthMiddleware(authService, authService)
	appRouter := router.New(cfg, authMiddleware, router.Handlers{
		Health:     handler.NewHealthHandler(db),
		Auth:       handler.NewAuthHandler(authService),
		Prediction: handler.NewPredictionHandler(predictionService),
		Hospital:   handler.NewHospitalHandler(hospitalService),
		Doctor:     handler.NewDoctorHandler(doctorService),
		Audit:      handler.NewAuditHandler(auditService),
	}, m)

	return appRouter, authService, nil
}

func New(ctx context.Context, cfg *config.Config) (*App, error) {
	db, err := OpenDatabase(ctx, cfg)
	if err != nil {
		return nil, err
	}

	appRouter, authService, err := NewHandler(ctx, cfg, db)
	if err != nil {
		db.Close()
		return nil, err
	}

	sweepCtx, sweepCancel := context.WithCancel(context.Background())
	go authService.StartSessionSweeper(sweepCtx, cfg.SessionCleanupInterval)

	server := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           appRouter,
		ReadHeaderTimeout: cfg.ServerReadHeaderTimeout,
		WriteTimeout:      cfg.ServerWriteTimeout,
		IdleTimeout:       cfg.ServerIdleTimeout,
	}

	return &App{
		server: server,
		db:     db,
		cleanupFuncs: []func(){
			func() {
				sweepCancel()
			},
			func() {
				db.Close()
			},
		},
	}, nil
}

func (a *App) Run() error {
	serveErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "addr", a.server.Addr)
		if err := a.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-stop:
		slog.Info("shutdown requested", "signal", sig.String())
	case err := <-serveErr:
		a.cleanup()
		return fmt.Errorf("server failed: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	shutdownErr := a.server.Shutdown(ctx)
	// Connections are drained before the pool goes away.
	a.cleanup()

	if shutdownErr != nil {
		return fmt.Errorf("graceful shutdown failed: %w", shutdownErr)
	}

	slog.Info("server stopped")
	return nil
}

func (a *App) cleanup() {
	for _, cleanup := range a.cleanupFuncs {
		cleanup()
	}
}
