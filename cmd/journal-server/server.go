package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/ehr/patient-journal/internal/config"
	"github.com/ehr/patient-journal/internal/domain/admin"
	"github.com/ehr/patient-journal/internal/domain/clinical"
	"github.com/ehr/patient-journal/internal/domain/encounter"
	"github.com/ehr/patient-journal/internal/domain/identity"
	"github.com/ehr/patient-journal/internal/platform/auth"
	"github.com/ehr/patient-journal/internal/platform/db"
	"github.com/ehr/patient-journal/internal/platform/errs"
	"github.com/ehr/patient-journal/internal/platform/metrics"
	"github.com/ehr/patient-journal/internal/platform/middleware"
	"github.com/ehr/patient-journal/internal/platform/validation"
)

const shutdownTimeout = 10 * time.Second

func newLogger(cfg *config.Config) zerolog.Logger {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()
	if cfg.IsDev() {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil && cfg.LogLevel != "" {
		logger = logger.Level(lvl)
	}
	return logger
}

func runServer() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	logger := newLogger(cfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var poolOpts []db.Option
	if cfg.DBQueryLog {
		poolOpts = append(poolOpts, db.WithQueryLog(logger, db.TraceLevel(cfg.LogLevel)))
	}
	pool, err := db.NewPool(ctx, cfg.DatabaseURL, cfg.DBMaxConns, cfg.DBMinConns, poolOpts...)
	if err != nil {
		return err
	}
	defer pool.Close()
	logger.Info().Msg("connected to database")

	prometheus.MustRegister(metrics.NewPoolCollector(pool))

	e := newEcho(cfg, logger)
	e.GET("/health/db", db.HealthHandler(pool))
	registerDomain(e, pool, cfg, logger)

	m := echo.New()
	m.HideBanner = true
	m.HidePort = true
	m.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return start(e, ":"+cfg.Port, "api", logger) })
	g.Go(func() error { return start(m, cfg.MetricsAddr, "metrics", logger) })
	g.Go(func() error {
		<-gctx.Done()
		logger.Info().Msg("shutting down server")
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return errors.Join(e.Shutdown(sctx), m.Shutdown(sctx))
	})

	if err := g.Wait(); err != nil {
		return err
	}
	logger.Info().Msg("server stopped")
	return nil
}

func start(e *echo.Echo, addr, name string, logger zerolog.Logger) error {
	logger.Info().Str("addr", addr).Str("listener", name).Msg("starting server")
	if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// newEcho builds the API server with its global middleware and the
// unauthenticated liveness route.
func newEcho(cfg *config.Config, logger zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = errs.HTTPErrorHandler(logger)
	e.Validator = validation.New()

	e.Use(middleware.Recovery(logger))
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger(logger))
	e.Use(metrics.Middleware())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.BodyLimit(cfg.BodyLimit))
	e.Use(middleware.RequestTimeout(cfg.RequestTimeout))
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins: cfg.CORSOrigins,
		AllowMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete},
		AllowHeaders: []string{"Authorization", "Content-Type", "X-Request-ID"},
	}))

	rateLimitCfg := middleware.RateLimitConfig{
		RequestsPerSecond: cfg.RateLimitRPS,
		BurstSize:         cfg.RateLimitBurst,
		Skipper:           auth.AuthSkipper,
	}
	if rateLimitCfg.RequestsPerSecond <= 0 {
		rateLimitCfg = middleware.DefaultRateLimitConfig()
		rateLimitCfg.Skipper = auth.AuthSkipper
	}
	e.Use(middleware.RateLimit(rateLimitCfg))
	e.Use(authMiddleware(cfg, logger))

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})
	return e
}

// authMiddleware verifies bearer tokens. In development, requests without a
// token are granted DEV_ROLES.
func authMiddleware(cfg *config.Config, logger zerolog.Logger) echo.MiddlewareFunc {
	jwtCfg := auth.JWTConfig{
		Issuer:   cfg.AuthIssuer,
		Audience: cfg.AuthAudience,
		JWKSURL:  cfg.AuthJWKSURL,
		Skipper:  auth.AuthSkipper,
		Logger:   logger,
	}
	if cfg.AuthSigningKey != "" {
		jwtCfg.SigningKey = []byte(cfg.AuthSigningKey)
	}
	verifier := auth.JWTMiddleware(jwtCfg)
	if !cfg.IsDev() {
		return verifier
	}
	logger.Warn().Str("roles", strings.Join(cfg.DevRoles, ",")).Msg("development auth enabled")
	return auth.DevAuthMiddleware(cfg.DevRoles, verifier)
}

// registerDomain wires repositories, services and handlers for every
// resource and mounts their routes at the root.
func registerDomain(e *echo.Echo, pool *pgxpool.Pool, cfg *config.Config, logger zerolog.Logger) {
	tx := db.Transactional(pool, logger)
	api := e.Group("")

	adminSvc := admin.NewService(admin.NewOrganizationRepo(pool), admin.NewLocationRepo(pool))
	identitySvc := identity.NewService(identity.NewPatientRepo(pool), identity.NewPractitionerRepo(pool))
	clinicalSvc := clinical.NewService(clinical.NewConditionRepo(pool), clinical.NewObservationRepo(pool), identitySvc,
		clinical.WithHighSeverityThreshold(cfg.HighSeverityThreshold))
	encounterSvc := encounter.NewService(encounter.NewRepo(pool), identitySvc, adminSvc,
		encounter.WithRecentWindow(time.Duration(cfg.RecentEncounterDays)*24*time.Hour))
	identitySvc.SetRecordSources(clinicalSvc, encounterSvc, clinicalSvc)

	admin.NewHandler(adminSvc).RegisterRoutes(api, tx)
	identity.NewHandler(identitySvc).RegisterRoutes(api, tx)
	clinical.NewHandler(clinicalSvc).RegisterRoutes(api, tx)
	encounter.NewHandler(encounterSvc).RegisterRoutes(api, tx)
}
