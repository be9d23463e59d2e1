package handler

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

// Pinger is satisfied by anything that can report its backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	service string
	pinger  Pinger
}

// NewHealthHandler builds the health routes. pinger may be nil for services
// without a backing store.
func NewHealthHandler(service string, pinger Pinger) *HealthHandler {
	return &HealthHandler{service: service, pinger: pinger}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
	Version string `json:"version,omitempty"`
}

func (h *HealthHandler) Health(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status:  "ok",
		Service: h.service,
		Version: "0.1.0",
	})
}

func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	if h.pinger != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()

		if err := h.pinger.Ping(ctx); err != nil {
			return domain.ErrNotReady.WithError(err)
		}
	}

	return c.JSON(HealthResponse{
		Status:  "ready",
		Service: h.service,
	})
}
