package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/saturnino-fabrica-de-software/soma/internal/api"
	"github.com/saturnino-fabrica-de-software/soma/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/soma/internal/config"
	"github.com/saturnino-fabrica-de-software/soma/internal/database"
	"github.com/saturnino-fabrica-de-software/soma/internal/repository"
	"github.com/saturnino-fabrica-de-software/soma/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadStore()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment, docs.StoreAPI)
	slog.SetDefault(logger)

	logger.Info("starting store-api",
		slog.String("environment", cfg.Environment),
		slog.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// the vector type must exist before the pool registers it on connect
	if cfg.AutoMigrate {
		if err := database.MigrateUp(ctx, cfg.DatabaseURL); err != nil {
			return fmt.Errorf("failed to migrate: %w", err)
		}
		logger.Info("migrations applied")
	}

	poolCfg := database.DefaultPoolConfig(cfg.DatabaseURL)
	poolCfg.MaxConns = cfg.MaxConns
	poolCfg.MinConns = cfg.MinConns

	pool, err := database.NewPgxPool(ctx, poolCfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	repo := repository.NewFaceEmbeddingRepository(pool)
	svc := service.NewStoreService(repo, logger).WithMaxCount(cfg.MaxMatchCount)

	router := api.NewRouter(logger, api.Config{
		Service:     docs.StoreAPI,
		Host:        cfg.Addr(),
		BodyLimitMB: cfg.BodyLimitMB,
	}, &api.Dependencies{Store: svc})
	router.Setup()

	return router.Run(ctx, cfg.Addr())
}
