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
	"github.com/saturnino-fabrica-de-software/soma/internal/remote"
	"github.com/saturnino-fabrica-de-software/soma/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadGateway()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment, docs.Gateway)
	slog.SetDefault(logger)

	logger.Info("starting gateway",
		slog.String("environment", cfg.Environment),
		slog.String("face_api", cfg.FaceAPIAddress),
		slog.String("store_api", cfg.StoreAPIAddress),
	)

	faces := remote.NewFaceClient(upstream(cfg, cfg.FaceAPIAddress), logger)
	store := remote.NewStoreClient(upstream(cfg, cfg.StoreAPIAddress), logger)
	svc := service.NewGatewayService(faces, store, logger)

	router := api.NewRouter(logger, api.Config{
		Service:     docs.Gateway,
		Host:        cfg.Addr(),
		BodyLimitMB: cfg.BodyLimitMB,
		RateLimit:   cfg.RateLimit,
	}, &api.Dependencies{Gateway: svc})
	router.Setup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return router.Run(ctx, cfg.Addr())
}

func upstream(cfg *config.GatewayConfig, baseURL string) remote.Config {
	c := remote.DefaultConfig(baseURL)
	c.Timeout = cfg.RequestTimeout
	c.RetryCount = cfg.MaxRetries
	return c
}
