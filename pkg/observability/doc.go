// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("port", 8080).Info("server started")
//
// Request-scoped logging picks up the request ID and user ID placed in the
// context by the HTTP middleware:
//
//	logger := observability.FromContext(r.Context(), baseLogger)
//
// # Prometheus Metrics
//
// Initialize metrics against a registry:
//
//	registry := prometheus.NewRegistry()
//	metrics := observability.NewMetrics(registry)
//	metrics.TasksCreatedTotal.Inc()
//
// # Health Checks
//
// Configure a health checker over the storage backend:
//
//	checker := observability.NewHealthChecker(store, "1.0.0")
//	observability.RegisterHealthRoutes(mux, checker)
//
// # OpenTelemetry
//
// Initialize tracing:
//
//	tp, err := observability.InitTracing(ctx, cfg, logger)
//	defer observability.ShutdownTracing(ctx, tp, logger)
package observability
