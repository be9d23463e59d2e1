package api

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	swagger "github.com/go-swagno/swagno-fiber/swagger"
	"github.com/saturnino-fabrica-de-software/soma/internal/api/docs"
	"github.com/saturnino-fabrica-de-software/soma/internal/api/handler"
	"github.com/saturnino-fabrica-de-software/soma/internal/api/middleware"
	"github.com/saturnino-fabrica-de-software/soma/internal/service"
)

// Dependencies carries the service a binary runs. Exactly one of Face, Store
// or Gateway is expected to be set.
type Dependencies struct {
	Face    *service.FaceService
	Store   *service.StoreService
	Gateway *service.GatewayService
}

type Config struct {
	// Service is one of docs.FaceAPI, docs.StoreAPI or docs.Gateway
	Service     string
	Host        string
	BodyLimitMB int
	// RateLimit is requests per minute per client IP, gateway only. Zero disables it.
	RateLimit int
}

type Router struct {
	app         *fiber.App
	logger      *slog.Logger
	config      Config
	deps        *Dependencies
	rateLimiter *middleware.RateLimiter
}

func NewRouter(logger *slog.Logger, config Config, deps *Dependencies) *Router {
	bodyLimit := config.BodyLimitMB
	if bodyLimit <= 0 {
		bodyLimit = 16
	}

	app := fiber.New(fiber.Config{
		ErrorHandler: middleware.ErrorHandler(logger),
		AppName:      "soma " + config.Service,
		BodyLimit:    bodyLimit * 1024 * 1024,
		ReadTimeout:  60 * time.Second,
	})

	return &Router{
		app:    app,
		logger: logger,
		config: config,
		deps:   deps,
	}
}

func (r *Router) Setup() {
	r.app.Use(requestid.New())
	r.app.Use(middleware.Recover(r.logger))
	r.app.Use(middleware.Logger(r.logger))
	r.app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept",
	}))

	sw := docs.New(r.config.Service, r.config.Host)
	swagger.SwaggerHandler(r.app, sw.MustToJson())

	var pinger handler.Pinger
	if r.deps != nil && r.deps.Store != nil {
		pinger = r.deps.Store
	}
	healthHandler := handler.NewHealthHandler(r.config.Service, pinger)
	r.app.Get("/health", healthHandler.Health)
	r.app.Get("/ready", healthHandler.Ready)

	if r.deps == nil {
		return
	}

	if r.deps.Face != nil {
		r.setupFaceRoutes(r.deps.Face)
	}
	if r.deps.Store != nil {
		r.setupStoreRoutes(r.deps.Store)
	}
	if r.deps.Gateway != nil {
		r.setupGatewayRoutes(r.deps.Gateway)
	}
}

func (r *Router) setupFaceRoutes(svc *service.FaceService) {
	h := handler.NewFaceHandler(svc, r.logger)

	r.app.Get("/", h.Index)
	r.app.Post("/get_face", h.Detect)
	if svc.HasRetina() {
		r.app.Post("/get_face/retina", h.DetectRetina)
	}
	r.app.Post("/get_largest_face", h.LargestFace)
	r.app.Post("/get_aligned_face", h.AlignedFace)
	if svc.HasEmbedding() {
		r.app.Post("/get_vec", h.Embedding)
	}
}

func (r *Router) setupStoreRoutes(svc *service.StoreService) {
	h := handler.NewStoreHandler(svc, r.logger)

	r.app.Post("/post_face_vec", h.PostFaceVec)
	r.app.Post("/get_face_by_uuid", h.GetFaceByUUID)
	r.app.Post("/get_similar_faces_by_uuid", h.SimilarByUUID)
	r.app.Post("/get_similar_faces_by_embedding", h.SimilarByEmbedding)
}

func (r *Router) setupGatewayRoutes(svc *service.GatewayService) {
	h := handler.NewGatewayHandler(svc, r.logger)

	if r.config.RateLimit > 0 {
		cfg := middleware.DefaultRateLimiterConfig()
		cfg.Max = r.config.RateLimit
		cfg.PerEndpoint = middleware.GatewayRateLimits()
		r.rateLimiter = middleware.NewRateLimiter(cfg)
	}

	chain := func(final fiber.Handler) []fiber.Handler {
		if r.rateLimiter == nil {
			return []fiber.Handler{final}
		}
		return []fiber.Handler{r.rateLimiter.Handler(), final}
	}

	r.app.Post("/add_face", chain(h.AddFace)...)
	r.app.Post("/get_similar_faces_uuid", chain(h.SimilarByUUID)...)
	r.app.Post("/get_similar_faces_image", chain(h.SimilarByImage)...)
}

func (r *Router) App() *fiber.App {
	return r.app
}

func (r *Router) Listen(addr string) error {
	return r.app.Listen(addr)
}

func (r *Router) Shutdown() error {
	return r.ShutdownWithTimeout(0)
}

// ShutdownWithTimeout stops accepting connections and waits up to timeout for
// in-flight requests. Zero waits indefinitely.
func (r *Router) ShutdownWithTimeout(timeout time.Duration) error {
	if r.rateLimiter != nil {
		r.rateLimiter.Stop()
	}

	return r.app.ShutdownWithTimeout(timeout)
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (r *Router) Run(ctx context.Context, addr string) error {
	errChan := make(chan error, 1)
	go func() {
		r.logger.Info("server listening", slog.String("addr", addr))
		if err := r.Listen(addr); err != nil {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		r.logger.Info("shutdown signal received")
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	}

	r.logger.Info("shutting down server...")
	if err := r.ShutdownWithTimeout(10 * time.Second); err != nil {
		r.logger.Error("shutdown error", slog.Any("error", err))
	}
	r.logger.Info("server stopped")

	return nil
}
