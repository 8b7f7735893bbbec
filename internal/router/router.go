package router

import (
	"net/http"

	"order-relay/internal/handler"
	"order-relay/internal/middleware"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
)

// Options holds the router settings taken from configuration.
type Options struct {
	JWTSecret      string
	AllowedOrigins []string
}

// New creates a new HTTP router with all routes and middleware configured.
func New(
	productHandler *handler.ProductHandler,
	orderHandler *handler.OrderHandler,
	healthHandler *handler.HealthHandler,
	opts Options,
	logger zerolog.Logger,
) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(logger))
	r.Use(middleware.Recovery(logger))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))

	r.Get("/health", healthHandler.ServeHTTP)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", healthHandler.ServeHTTP)

		r.Group(func(r chi.Router) {
			r.Use(middleware.SubmitterAuth(opts.JWTSecret, logger))

			r.Post("/send-order", orderHandler.SendOrder)
			r.Post("/send-bulk-order", orderHandler.SendBulkOrder)

			r.Get("/orders", orderHandler.List)
			r.Get("/orders/{id}", orderHandler.GetByID)
			r.Put("/orders/{id}/status", orderHandler.UpdateStatus)

			r.Get("/products", productHandler.GetAll)
			r.Get("/products/{id}", productHandler.GetByID)
		})
	})

	return r
}
