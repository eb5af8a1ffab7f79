package router

import (
	"net/http"

	"tienda-api/internal/handler"
	"tienda-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Handlers groups the HTTP handlers mounted by the router.
type Handlers struct {
	Health   *handler.HealthHandler
	Product  *handler.ProductHandler
	Order    *handler.OrderHandler
	Checkout *handler.CheckoutHandler
	Webhook  *handler.WebhookHandler
}

// Options configures authentication and rate limiting.
type Options struct {
	AdminAPIKey  string
	Auth         *middleware.JWTAuth
	WebhookRPS   float64
	WebhookBurst int
}

// New creates a new HTTP router with all routes and middleware configured.
func New(h Handlers, opts Options, logger zerolog.Logger) http.Handler {
	r := chi.NewRouter()

	// Outermost first: Recovery -> RequestID -> Logging -> CORS
	r.Use(middleware.Recovery(logger))
	r.Use(chimw.RequestID)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.CORS)

	r.Get("/health", h.Health.Check)

	r.Route("/api", func(r chi.Router) {
		r.Get("/products", h.Product.GetAll)
		r.Get("/products/{id}", h.Product.GetByID)

		r.With(opts.Auth.Optional).Post("/orders", h.Order.Create)
		r.With(opts.Auth.Required).Get("/orders", h.Order.List)
		r.Get("/orders/{id}", h.Order.GetByID)

		r.Post("/checkout/mercadopago", h.Checkout.CreatePreference)

		r.With(middleware.RateLimit(opts.WebhookRPS, opts.WebhookBurst, logger)).
			Post("/webhooks/mercadopago", h.Webhook.MercadoPago)

		r.Route("/admin", func(r chi.Router) {
			r.Use(middleware.APIKeyAuth(opts.AdminAPIKey, logger))
			r.Patch("/orders/{id}/status", h.Order.UpdateStatus)
		})
	})

	return r
}
