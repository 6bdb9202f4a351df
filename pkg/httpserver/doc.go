// Package httpserver wraps net/http with graceful shutdown, configurable
// timeouts, health probes, and slog-based lifecycle hooks.
//
// Run blocks until the context is cancelled or an interrupt/TERM signal
// arrives, then drains in-flight requests within the shutdown deadline.
// Startup and shutdown failures are wrapped with the ErrStart and
// ErrShutdown sentinels for errors.Is.
//
//	srv := httpserver.NewFromConfig(cfg,
//		httpserver.WithLogger(log),
//		httpserver.WithStartHook(func(log *slog.Logger) {
//			log.Info("listening", "addr", cfg.Addr)
//		}),
//	)
//	if err := srv.Run(ctx, router); err != nil {
//		log.Error("server stopped", "err", err)
//	}
//
// HealthCheckHandler serves both probe flavors: with no checks it reports
// liveness, with checks (for example redis.Healthcheck) it reports
// readiness.
package httpserver
