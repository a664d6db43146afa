// Package main is the entrypoint for the user-service API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/penshort/user-service/internal/config"
	"github.com/penshort/user-service/internal/handler"
	"github.com/penshort/user-service/internal/logging"
	"github.com/penshort/user-service/internal/metrics"
	"github.com/penshort/user-service/internal/middleware"
	"github.com/penshort/user-service/internal/repository"
	"github.com/penshort/user-service/internal/server"
)

// schemaTimeout bounds the startup schema bootstrap.
const schemaTimeout = 10 * time.Second

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server error", "error", err)
		_ = logger.Close()
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *logging.Logger) error {
	repo, err := repository.New(ctx, cfg.DatabaseURL, cfg.DBMaxConns)
	if err != nil {
		logger.Error(
			"failed to configure database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return err
	}

	initSchema(ctx, repo, cfg, logger.Logger)

	recorder := metrics.NewPrometheus()
	r := setupRouter(repo, recorder, cfg, logger.Logger)

	srv := server.New(r, server.Options{
		Port:            cfg.AppPort,
		ReadTimeout:     cfg.ReadTimeout,
		WriteTimeout:    cfg.WriteTimeout,
		ShutdownTimeout: cfg.ShutdownTimeout,
	}, logger.Logger)

	// LIFO: the logger closes after the pool.
	srv.OnShutdown("logger", func(context.Context) error { return logger.Close() })
	srv.OnShutdown("postgres", func(context.Context) error {
		repo.Close()
		return nil
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"database_url", redactURL(cfg.DatabaseURL),
	)

	return srv.Run()
}

// initLogger builds the process logger and installs it as the slog default.
func initLogger(cfg *config.Config) (*logging.Logger, error) {
	opts := logging.Options{
		Service: cfg.ServiceName,
		Level:   cfg.LogLevel,
		Format:  cfg.LogFormat,
	}
	if cfg.LogFileEnabled {
		opts.FilePath = cfg.LogFile
	}

	logger, err := logging.New(opts)
	if err != nil {
		return nil, err
	}
	slog.SetDefault(logger.Logger)

	return logger, nil
}

// initSchema creates the users table. Failure is logged and tolerated so the
// liveness probe keeps answering while the database is down.
func initSchema(ctx context.Context, repo *repository.Repository, cfg *config.Config, logger *slog.Logger) {
	ctx, cancel := context.WithTimeout(ctx, schemaTimeout)
	defer cancel()

	if err := repo.EnsureSchema(ctx); err != nil {
		logger.Error("DB init failed: "+sanitizeError(err, cfg.DatabaseURL),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		return
	}
	logger.Info("Database initialized")
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	store *repository.Repository,
	recorder *metrics.PrometheusRecorder,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	return newRouter(routerDeps{
		store:       store,
		pinger:      store,
		recorder:    recorder,
		gatherer:    recorder.Gatherer(),
		serviceName: cfg.ServiceName,
		maxBodySize: cfg.MaxRequestBodySize,
		logger:      logger,
	})
}

// routerDeps are the collaborators behind the HTTP surface.
type routerDeps struct {
	store       handler.UserStore
	pinger      handler.HealthChecker
	recorder    metrics.Recorder
	gatherer    prometheus.Gatherer
	serviceName string
	maxBodySize int64
	logger      *slog.Logger
}

// newRouter wires handlers and middleware. Recoverer sits inside Logger and
// Metrics so recovered panics are recorded as 500s.
func newRouter(deps routerDeps) *chi.Mux {
	h := handler.New()
	healthHandler := handler.NewHealthHandler(deps.serviceName, deps.pinger)
	metricsHandler := handler.NewMetricsHandler(deps.gatherer)
	userHandler := handler.NewUserHandler(deps.store, deps.recorder, deps.logger)

	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(deps.logger))
	r.Use(middleware.Metrics(deps.recorder))
	r.Use(middleware.Recoverer(deps.logger))

	r.Get("/health", healthHandler.Health)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	r.Route("/users", func(r chi.Router) {
		r.Get("/", userHandler.List)
		r.With(middleware.MaxBodySize(deps.maxBodySize)).Post("/", userHandler.Create)
		r.Get("/{id}", userHandler.Get)
	})

	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
