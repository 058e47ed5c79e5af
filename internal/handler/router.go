package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/airbnblite/airbot/internal/middleware"
	"github.com/airbnblite/airbot/pkg/logger"
)

// RouterConfig holds the handlers and HTTP policy of the API.
type RouterConfig struct {
	APIContext  string
	CORSOrigins []string

	JWTSecret        string
	AdminAuthEnabled bool

	RateLimitRequests int
	RateLimitWindow   time.Duration

	Health         *HealthHandler
	Users          *UserHandler
	Properties     *PropertyHandler
	Bookings       *BookingHandler
	InsurancePlans *InsurancePlanHandler
	Chat           *ChatHandler
	Config         *ConfigHandler

	Logger *logger.Logger
}

// NewRouter builds the API router. Every route is mounted under APIContext.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging(cfg.Logger))
	r.Use(middleware.SecurityHeaders)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORSOrigins))

	r.Get("/health", cfg.Health.Health)
	r.Get("/ready", cfg.Health.Ready)
	r.Handle("/metrics", promhttp.Handler())

	api := func(r chi.Router) {
		r.Get("/", cfg.Health.Welcome)

		r.Get("/users", cfg.Users.List)
		r.Post("/register", cfg.Users.Register)
		r.Post("/login", cfg.Users.Login)
		r.Put("/users/{id}", cfg.Users.Update)

		r.Route("/properties", func(r chi.Router) {
			r.Get("/", cfg.Properties.List)
			r.Post("/", cfg.Properties.Create)
			r.Get("/{id}", cfg.Properties.Get)
			r.Put("/{id}", cfg.Properties.Update)
			r.Delete("/{id}", cfg.Properties.Delete)
		})

		r.Route("/bookings", func(r chi.Router) {
			r.Get("/", cfg.Bookings.List)
			r.Post("/", cfg.Bookings.Create)
			r.Get("/{id}", cfg.Bookings.Get)
			r.Put("/{id}", cfg.Bookings.Update)
		})

		r.Route("/insurance-plans", func(r chi.Router) {
			r.Get("/", cfg.InsurancePlans.List)
			r.Post("/", cfg.InsurancePlans.Create)
			r.Get("/{id}", cfg.InsurancePlans.Get)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RateLimit(cfg.RateLimitRequests, cfg.RateLimitWindow))
			r.Post("/chat", cfg.Chat.Chat)
			r.Post("/chatOptimized", cfg.Chat.ChatOptimized)
			r.Post("/chatCheckout", cfg.Chat.ChatCheckout)
			r.Post("/suggest-insurance-message", cfg.Chat.SuggestInsurance)
			r.Post("/generate-faq", cfg.Chat.GenerateFAQ)
		})

		r.Get("/config/insurance-method", cfg.Config.GetInsuranceMethod)
		r.Group(func(r chi.Router) {
			if cfg.AdminAuthEnabled {
				r.Use(middleware.Auth(cfg.JWTSecret))
				r.Use(middleware.RequireScope(middleware.ScopeAdmin))
			}
			r.Post("/config/insurance-method", cfg.Config.SetInsuranceMethod)
		})
	}

	if cfg.APIContext == "" {
		api(r)
	} else {
		r.Route(cfg.APIContext, api)
	}
	return r
}
