package realtime

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/notifications"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/ratelimit"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/requestid"
	"github.com/First8Marketing/first8marketing-umami-sub001/pkg/tenant"
)

// RouterOptions configures the realtime module router. Notifications is
// required; Limiter is optional and skips rate limiting when nil (tests,
// single-tenant deployments behind an upstream limiter).
type RouterOptions struct {
	Notifications *notifications.Service
	Limiter       *ratelimit.Limiter
	Logger        *slog.Logger
}

// Router mounts the notification REST surface. Every route requires a
// tenant identity resolved by the authentication layer upstream.
//
// Example:
//
//	r := chi.NewRouter()
//	r.Mount("/realtime", realtime.Router(realtime.RouterOptions{
//	    Notifications: notifier,
//	    Limiter:       limiter,
//	}))
func Router(opts RouterOptions) chi.Router {
	if opts.Notifications == nil {
		panic(fmt.Errorf("realtime: notification service is required"))
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	h := &handlers{svc: opts.Notifications, log: log}

	read := limitOrPass(opts.Limiter, ratelimit.EndpointRead)
	write := limitOrPass(opts.Limiter, ratelimit.EndpointWrite)

	r := chi.NewRouter()
	r.Use(requestid.Middleware)
	r.Use(tenant.Middleware())

	r.Route("/notifications", func(n chi.Router) {
		n.With(read).Get("/", h.list)
		n.With(read).Get("/unread-count", h.unreadCount)
		n.With(write).Post("/read-all", h.markAllRead)
		n.With(write).Post("/{id}/read", h.markRead)
		n.With(write).Post("/{id}/dismiss", h.dismiss)
	})
	r.Route("/preferences", func(p chi.Router) {
		p.With(read).Get("/", h.getPreferences)
		p.With(write).Put("/", h.updatePreferences)
	})

	return r
}

func limitOrPass(limiter *ratelimit.Limiter, endpoint string) func(http.Handler) http.Handler {
	if limiter == nil {
		return func(next http.Handler) http.Handler { return next }
	}
	return ratelimit.Middleware(limiter, endpoint)
}
