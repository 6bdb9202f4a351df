package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"

	"github.com/First8Marketing/first8marketing-umami-sub001/modules/realtime"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/config"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/httpserver"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/logger"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/ratelimit"
	redisconn "github.com/First8Marketing/first8marketing-umami-sub001/pkg/redis"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/requestid"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/tenant"
)

type appConfig struct {
	Env   string `env:"APP_ENV" envDefault:"production"`
	Redis redisconn.Config
	HTTP  httpserver.Config
	Email notifications.EmailConfig
}

func main() {
	var cfg appConfig
	config.MustLoad(&cfg)

	log := newLogger(cfg.Env)

	if err := run(context.Background(), cfg, log); err != nil {
		log.Error("realtimed stopped", logger.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg appConfig, log *slog.Logger) error {
	client, err := redisconn.Connect(ctx, cfg.Redis)
	if err != nil {
		return err
	}
	defer func() { _ = client.Close() }()

	limiter, err := ratelimit.New(ratelimit.NewRedisStore(client), ratelimit.WithLogger(log))
	if err != nil {
		return err
	}

	var svcOpts []notifications.ServiceOption
	svcOpts = append(svcOpts, notifications.WithServiceLogger(log))
	if cfg.Email.PostmarkServerToken != "" {
		// The account system maintains users:email:{userID} entries.
		resolver := func(ctx context.Context, userID string) (string, error) {
			return client.Get(ctx, "users:email:"+userID).Result()
		}
		sender, err := notifications.NewPostmarkSender(cfg.Email, resolver)
		if err != nil {
			return err
		}
		svcOpts = append(svcOpts, notifications.WithEmailSender(sender))
	}

	notifier, err := notifications.NewService(
		notifications.NewRedisStorage(client),
		notifications.NewRedisPreferenceStore(client),
		nil,
		svcOpts...,
	)
	if err != nil {
		return err
	}

	r := chi.NewRouter()
	r.Get("/healthz", httpserver.HealthCheckHandler(ctx, log))
	r.Get("/readyz", httpserver.HealthCheckHandler(ctx, log, redisconn.Healthcheck(client)))
	r.Mount("/realtime", realtime.Router(realtime.RouterOptions{
		Notifications: notifier,
		Limiter:       limiter,
		Logger:        log,
	}))

	srv := httpserver.NewFromConfig(cfg.HTTP,
		httpserver.WithLogger(log),
		httpserver.WithStartHook(func(log *slog.Logger) {
			log.Info("realtimed listening", slog.String("addr", cfg.HTTP.Addr))
		}),
		httpserver.WithStopHook(func(log *slog.Logger) {
			log.Info("realtimed stopped")
		}),
	)
	return srv.Run(ctx, r)
}

func newLogger(env string) *slog.Logger {
	opts := []logger.Option{
		logger.WithContextExtractors(
			requestid.LoggerExtractor(),
			tenant.LoggerExtractor(),
		),
	}
	if env == "development" {
		opts = append(opts, logger.WithDevelopment("realtimed"))
	} else {
		opts = append(opts, logger.WithProduction("realtimed"))
	}
	return logger.New(opts...)
}
