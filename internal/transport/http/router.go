package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/time/rate"

	"github.com/go-notify-api/internal/application/badge"
	"github.com/go-notify-api/internal/application/dispatch"
	"github.com/go-notify-api/internal/application/notification"
	"github.com/go-notify-api/internal/application/subscription"
	"github.com/go-notify-api/internal/config"
	"github.com/go-notify-api/internal/domain"
	"github.com/go-notify-api/internal/transport/http/handler"
	appmiddleware "github.com/go-notify-api/internal/transport/http/middleware"
)

// NewRouter builds and returns the application router.
func NewRouter(cfg *config.Config, deps *Deps) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.AllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	var authMw func(http.Handler) http.Handler
	if deps.JWTProvider != nil {
		authMw = appmiddleware.Auth(deps.JWTProvider)
	} else {
		authMw = func(next http.Handler) http.Handler { return next }
	}

	// 5 requests/second, burst of 10. Service workers can retry subscribe in
	// a tight loop when registration errors, so that endpoint is limited.
	sensitiveRL := appmiddleware.NewRateLimiter(rate.Limit(5), 10)

	notifSvc := notification.NewService(deps.NotificationRepo, deps.Log)
	subSvc := subscription.NewService(deps.SubscriptionRepo, deps.Log)
	badgeSvc := badge.NewService(deps.NotificationRepo, deps.ApprovalRepo, deps.Log)
	dispatchSvc := dispatch.NewService(dispatch.ServiceDeps{
		Rules:         deps.Rules,
		Users:         deps.UserRepo,
		Notifications: deps.NotificationRepo,
		Subscriptions: deps.SubscriptionRepo,
		Push:          deps.PushSender,
		SMS:           deps.SMSSender,
		SMSTypes:      cfg.SMSEscalationTypes,
		Log:           deps.Log,
	})

	healthH := handler.NewHealthHandler()
	notifH := handler.NewNotificationHandler(notifSvc, badgeSvc)
	subH := handler.NewSubscriptionHandler(subSvc)
	eventH := handler.NewEventHandler(dispatchSvc)
	ruleH := handler.NewRuleHandler(deps.Rules)

	r.Route("/v1", func(r chi.Router) {
		// ── Public routes (no auth) ──────────────────────────────────────────
		r.Get("/health-check/{action}", healthH.Ping)
		r.Post("/health-check/{action}", healthH.Ping)

		// ── Authenticated routes ─────────────────────────────────────────────
		r.Group(func(r chi.Router) {
			r.Use(authMw)

			r.Get("/notifications", notifH.List)
			r.Patch("/notifications", notifH.MarkRead)
			r.Delete("/notifications", notifH.Delete)
			r.Get("/notifications/badge", notifH.Badge)

			r.With(sensitiveRL.Limit).Post("/push/subscribe", subH.Register)
			r.Delete("/push/subscribe", subH.Unregister)
			r.Get("/push/subscriptions", subH.List)

			// The orders and projects backends report status changes here.
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin, domain.RoleService))

				r.Post("/events", eventH.Dispatch)
			})

			// Admin-only routes
			r.Group(func(r chi.Router) {
				r.Use(appmiddleware.RequireRole(domain.RoleAdmin))

				r.Get("/targeting/rules", ruleH.List)
			})
		})
	})

	return r
}
