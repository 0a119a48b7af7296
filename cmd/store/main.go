package main

import (
	"database/sql"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/carla-lopez/backendCoderhouse/internal/cart"
	"github.com/carla-lopez/backendCoderhouse/internal/catalog"
	"github.com/carla-lopez/backendCoderhouse/internal/config"
	"github.com/carla-lopez/backendCoderhouse/internal/shop"
	"github.com/carla-lopez/backendCoderhouse/internal/storage"
	"github.com/carla-lopez/backendCoderhouse/pkg/kit"
)

func main() {
	service := "store"
	log := kit.NewLogger(service)
	defer func() { _ = log.Sync() }()

	cfg := config.Load()

	products, carts, err := buildStores(cfg, log)
	if err != nil {
		log.Fatal("store setup failed", zap.Error(err))
	}

	h := shop.NewHandler(
		shop.Deps{
			Products:              products,
			Carts:                 carts,
			CartCreateLimitPerMin: cfg.CartCreateLimitPerMin,
		},
		shop.HTTPDeps{
			Log:            log,
			Service:        service,
			Registry:       prometheus.NewRegistry(),
			MetricsEnabled: cfg.MetricsEnabled,
			MetricsToken:   cfg.MetricsToken,
		},
	)

	if err := kit.RunHTTPServer(":"+cfg.Port, h, log); err != nil {
		log.Fatal("http server stopped", zap.Error(err))
	}
}

func buildStores(cfg config.Config, log *zap.Logger) (catalog.Store, cart.Store, error) {
	if cfg.Backend == config.BackendPostgres {
		db, err := sql.Open("pgx", cfg.DatabaseURL)
		if err != nil {
			return nil, nil, err
		}
		products := catalog.NewPostgresStore(db)
		return products, cart.NewPostgresStore(db, products), nil
	}

	products := catalog.NewRegistry(storage.NewFile[catalog.Product](cfg.DataDir, "products.json"), log)
	carts := cart.NewRegistry(storage.NewFile[cart.Cart](cfg.DataDir, "carts.json"), products, log)
	return products, carts, nil
}
