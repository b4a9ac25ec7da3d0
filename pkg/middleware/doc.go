// Package middleware provides observability middleware for route activations.
//
// # Prometheus Metrics
//
// Metrics records every activation and every deferred module load:
//   - blogshell_activations_total: activations by route pattern and status
//   - blogshell_activation_duration_seconds: time from match to joined result
//   - blogshell_route_failures_total: boundary-caught failures by kind
//   - blogshell_module_loads_total: view module fetches by module and result
//   - blogshell_module_load_duration_seconds: view module fetch duration
//   - blogshell_nav_sessions: open live navigation sessions
//   - blogshell_stale_frames_total: results discarded because a newer navigation started
//
//	m := middleware.NewMetrics(middleware.WithNamespace("blog"))
//	r, _ := router.New(routes, router.WithMiddleware(m.Middleware()))
//	blog := lazy.New("pages/blog", loadBlog, lazy.WithObserver(m))
//
// Expose them with promhttp:
//
//	mux.Handle("/metrics", promhttp.Handler())
//
// # OpenTelemetry
//
// Tracing starts a span per activation and hands the span context to the
// route loaders, so HTTP clients and database drivers used by loaders
// inherit the trace:
//
//	r, _ := router.New(routes, router.WithMiddleware(middleware.Tracing()))
//
// The tracer comes from the global provider; configure it in main with
// otel.SetTracerProvider.
package middleware
