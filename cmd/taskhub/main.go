package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"golang.org/x/sync/errgroup"

	"github.com/perfectstack/taskhub/pkg/api"
	"github.com/perfectstack/taskhub/pkg/auth"
	"github.com/perfectstack/taskhub/pkg/config"
	"github.com/perfectstack/taskhub/pkg/httputil"
	"github.com/perfectstack/taskhub/pkg/observability"
	"github.com/perfectstack/taskhub/pkg/storage"
)

const maxRequestBody = 1 << 20 // 1 MiB

func main() {
	startupLog := logrus.New()

	cfg, err := config.LoadConfig()
	if err != nil {
		startupLog.Fatalf("Failed to load configuration: %v", err)
	}

	logger := observability.NewLogger(cfg.Observability.LogLevel, os.Stdout)

	store, err := openStore(cfg)
	if err != nil {
		startupLog.Fatalf("Failed to initialize %s storage: %v", cfg.Storage.Type, err)
	}
	startupLog.Infof("Storage initialized (%s)", cfg.Storage.Type)

	registry := prometheus.NewRegistry()
	metrics := observability.NewMetrics(registry)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	tp, err := observability.InitTracing(ctx, observability.OTelConfig{
		Enabled:        cfg.Observability.OTelEnabled,
		Endpoint:       cfg.Observability.OTelEndpoint,
		ServiceName:    cfg.Observability.OTelServiceName,
		ServiceVersion: cfg.Observability.OTelServiceVersion,
		Insecure:       cfg.Observability.OTelInsecure,
	}, logger)
	if err != nil {
		startupLog.Fatalf("Failed to initialize tracing: %v", err)
	}

	hasher := auth.NewPasswordHasher(cfg.Auth.BcryptCost)
	tokens := auth.NewTokenIssuer([]byte(cfg.Auth.SecretKey), cfg.Auth.TokenTTL)
	server := api.NewServer(store, hasher, tokens, logger, metrics)

	middlewares := []func(http.Handler) http.Handler{
		httputil.RecoveryMiddleware(logger),
		httputil.RequestIDMiddleware,
		httputil.LoggingMiddleware(logger),
	}
	if cfg.Observability.MetricsEnabled {
		middlewares = append(middlewares, observability.HTTPMetricsMiddleware(metrics))
	}
	middlewares = append(middlewares,
		httputil.CORSMiddleware([]string{"*"}),
		httputil.MaxBytesMiddleware(maxRequestBody),
	)

	var handler http.Handler = httputil.Chain(middlewares...)(server)
	if tp != nil {
		handler = otelhttp.NewHandler(handler, "taskhub-api")
	}

	apiServer := &http.Server{
		Addr:         net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	healthMux := http.NewServeMux()
	observability.RegisterHealthRoutes(healthMux, observability.NewHealthChecker(store, api.Version))
	if cfg.Observability.MetricsEnabled {
		observability.RegisterMetricsEndpoint(healthMux, registry)
	}
	healthServer := &http.Server{
		Addr:    net.JoinHostPort(cfg.Server.Host, cfg.Server.HealthPort),
		Handler: healthMux,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		startupLog.Infof("Starting TaskHub API server on %s", apiServer.Addr)
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		startupLog.Infof("Starting health/metrics server on %s", healthServer.Addr)
		if err := healthServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		startupLog.Info("Shutdown signal received, draining connections")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		var errs []error
		if err := apiServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := healthServer.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, err)
		}
		if err := observability.ShutdownTracing(shutdownCtx, tp, logger); err != nil {
			errs = append(errs, err)
		}
		return errors.Join(errs...)
	})

	if err := g.Wait(); err != nil {
		startupLog.Fatalf("Server error: %v", err)
	}
	startupLog.Info("Shutdown complete")
}

// openStore builds the persistence backend named by the configuration.
func openStore(cfg *config.Config) (api.Store, error) {
	switch cfg.Storage.Type {
	case "sqlite":
		if dir := filepath.Dir(cfg.Storage.SQLitePath); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
		return storage.OpenSQLiteStore(cfg.Storage.SQLitePath)
	default:
		return storage.NewFileSystemStore(cfg.Storage.FilesystemRoot)
	}
}
