package transport

import (
	"net/http"
	"strings"
	"time"

	"storefront-be/internal/auth"
	"storefront-be/internal/logger"
	"storefront-be/internal/metrics"
	"storefront-be/internal/middleware"
	"storefront-be/internal/order"
	"storefront-be/internal/payment"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
)

const DefaultRequestTimeout = 30 * time.Second

type RouterConfig struct {
	Orders     order.Service
	Webhook    http.Handler
	Auth       *auth.Authenticator
	Metrics    *metrics.Registry
	Limiter    *middleware.RateLimiter
	CORSOrigin string
	Timeout    time.Duration
}

func NewRouter(cfg RouterConfig) http.Handler {
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.NewRegistry()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultRequestTimeout
	}

	h := NewHandler(cfg.Orders, cfg.Metrics)
	admin := NewAdminHandler(cfg.Orders, cfg.Auth)

	r := chi.NewRouter()
	r.Use(logger.RequestIDMiddleware)
	r.Use(logger.LoggingMiddleware)
	r.Use(chimw.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigin))

	limited := func(r chi.Router) {
		if cfg.Limiter != nil {
			r.Use(cfg.Limiter.Middleware)
		}
	}

	r.Group(func(r chi.Router) {
		limited(r)
		r.Get("/health", h.Health)
		r.Method(http.MethodGet, "/metrics", cfg.Metrics.Handler())
	})

	r.Route("/api", func(r chi.Router) {
		// Gateway notifications only ever see 200, 400 or 500: no rate
		// limit and no request timeout on this route.
		r.Method(http.MethodPost, trimAPI(payment.WebhookPath), cfg.Webhook)

		r.Group(func(r chi.Router) {
			limited(r)
			r.Use(chimw.Timeout(cfg.Timeout))

			r.Post("/checkout/create", h.CreateCheckout)
			r.Get("/orders/{id}", h.GetOrder)

			r.Route("/admin", func(r chi.Router) {
				r.Post("/login", admin.Login)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly(cfg.Auth))
					r.Get("/orders", admin.ListOrders)
					r.Get("/orders/{id}", admin.GetOrder)
					r.Post("/orders/{id}/cancel", admin.CancelOrder)
				})
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, errorResponse{OK: false, Error: "Not found"})
	})

	return r
}

func trimAPI(path string) string {
	return strings.TrimPrefix(path, "/api")
}
