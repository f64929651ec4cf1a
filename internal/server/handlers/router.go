package handlers

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/iudanet/calcbread/internal/server/identity"
	"github.com/iudanet/calcbread/internal/server/middleware"
	"github.com/iudanet/calcbread/internal/server/service"
)

// RouterConfig зависимости HTTP слоя
type RouterConfig struct {
	Logger       *slog.Logger
	Auth         *service.AuthService
	Calculations *service.CalculationService
	Resolver     *identity.Resolver
	DB           Pinger
	Registry     *prometheus.Registry
}

// NewRouter собирает все маршруты API и middleware
func NewRouter(cfg RouterConfig) http.Handler {
	authHandler := NewAuthHandler(cfg.Logger, cfg.Auth)
	calcHandler := NewCalculationHandler(cfg.Logger, cfg.Calculations)
	healthHandler := NewHealthHandler(cfg.Logger, cfg.DB)

	metrics := middleware.NewMetrics(cfg.Registry)
	optional := middleware.OptionalAuth(cfg.Resolver)
	required := middleware.RequireAuth(cfg.Logger, cfg.Resolver)

	mux := http.NewServeMux()
	handle := func(pattern string, h http.Handler) {
		mux.Handle(pattern, metrics.Instrument(pattern, h))
	}

	handle("POST /api/register", http.HandlerFunc(authHandler.Register))
	handle("POST /api/login", http.HandlerFunc(authHandler.Login))
	handle("GET /api/me", required(http.HandlerFunc(authHandler.Me)))

	handle("GET /api/calculations", optional(http.HandlerFunc(calcHandler.List)))
	handle("POST /api/calculations", optional(http.HandlerFunc(calcHandler.Create)))
	handle("GET /api/calculations/{id}", http.HandlerFunc(calcHandler.Get))
	handle("PUT /api/calculations/{id}", http.HandlerFunc(calcHandler.Update))
	handle("DELETE /api/calculations/{id}", http.HandlerFunc(calcHandler.Delete))

	handle("GET /health", http.HandlerFunc(healthHandler.Health))
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.Registry, promhttp.HandlerOpts{}))

	// Порядок: request id -> recovery -> logging -> mux
	var handler http.Handler = mux
	handler = middleware.RequestLogging(cfg.Logger, "/metrics")(handler)
	handler = middleware.RecoveryMiddleware(cfg.Logger)(handler)
	handler = middleware.RequestID()(handler)

	return handler
}
