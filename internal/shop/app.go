// Package shop assembles the product and cart services into one HTTP
// handler, the way the process serves them.
package shop

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/carla-lopez/backendCoderhouse/internal/cart"
	"github.com/carla-lopez/backendCoderhouse/internal/catalog"
	"github.com/carla-lopez/backendCoderhouse/pkg/kit"
)

type HTTPDeps struct {
	Log      *zap.Logger
	Service  string
	Registry *prometheus.Registry

	MetricsEnabled bool
	MetricsToken   string
}

type Deps struct {
	Products catalog.Store
	Carts    cart.Store

	CartCreateLimitPerMin int
}

const readyTimeout = 1 * time.Second

func NewHandler(deps Deps, httpDeps HTTPDeps) http.Handler {
	r := chi.NewRouter()

	setupMiddleware(r, httpDeps)
	setupMetrics(r, httpDeps)

	products := &catalog.Server{Store: deps.Products, Log: httpDeps.Log}
	carts := &cart.Server{
		Store:             deps.Carts,
		Log:               httpDeps.Log,
		CreateLimitPerMin: deps.CartCreateLimitPerMin,
	}

	r.Get("/healthz", healthz)
	r.Get("/readyz", readyz(deps, httpDeps.Log))

	r.Mount("/api/products", products.Routes())
	r.Mount("/api/carts", carts.Routes())

	return r
}

func setupMiddleware(r *chi.Mux, deps HTTPDeps) {
	r.Use(chimw.RequestID)
	r.Use(kit.Recoverer)
	r.Use(kit.Logging(deps.Log))
}

func setupMetrics(r *chi.Mux, deps HTTPDeps) {
	if deps.Registry == nil {
		return
	}

	metrics := kit.NewMetrics(deps.Registry)
	r.Use(metrics.Middleware(deps.Service, kit.ChiRoutePatternOrPath))

	if !deps.MetricsEnabled {
		return
	}

	r.With(kit.MetricsAuth(deps.MetricsToken)).
		Handle("/metrics", promhttp.HandlerFor(deps.Registry, promhttp.HandlerOpts{}))
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func readyz(deps Deps, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()

		if err := deps.Products.Ping(ctx); err != nil {
			ready(w, r, log, "products", err)
			return
		}
		if err := deps.Carts.Ping(ctx); err != nil {
			ready(w, r, log, "carts", err)
			return
		}
		w.WriteHeader(http.StatusOK)
	}
}

func ready(w http.ResponseWriter, r *http.Request, log *zap.Logger, which string, err error) {
	if log != nil {
		log.Warn("readyz failed", zap.String("store", which), zap.Error(err))
	}
	kit.WriteError(w, r, http.StatusServiceUnavailable, "not ready", nil)
}
