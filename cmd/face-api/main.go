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
	"github.com/saturnino-fabrica-de-software/soma/internal/face"
	"github.com/saturnino-fabrica-de-software/soma/internal/service"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.LoadFace()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := config.NewLogger(cfg.Environment, docs.FaceAPI)
	slog.SetDefault(logger)

	logger.Info("starting face-api",
		slog.String("environment", cfg.Environment),
		slog.String("backend", cfg.Backend),
		slog.Bool("force_yolo", cfg.ForceYOLO),
		slog.Bool("only_detect", cfg.OnlyDetect),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	models, err := face.NewDetectors(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to load detectors: %w", err)
	}
	defer func() {
		if err := models.Close(); err != nil {
			logger.Error("failed to release models", slog.Any("error", err))
		}
	}()

	svc := service.NewFaceService(models, service.FaceOptions{
		DetectThreshold:  cfg.DetectThreshold,
		LargestThreshold: cfg.LargestThreshold,
		AlignSize:        cfg.AlignSize,
	}, logger)

	router := api.NewRouter(logger, api.Config{
		Service:     docs.FaceAPI,
		Host:        cfg.Addr(),
		BodyLimitMB: cfg.BodyLimitMB,
	}, &api.Dependencies{Face: svc})
	router.Setup()

	return router.Run(ctx, cfg.Addr())
}
