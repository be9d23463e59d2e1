package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

// FaceService interface for the service
type FaceService interface {
	Detect(ctx context.Context, data []byte) ([]domain.FaceCoords, error)
	DetectRetina(ctx context.Context, data []byte) ([]domain.FaceCoords, error)
	LargestFace(ctx context.Context, data []byte) (*domain.LargestFace, error)
	AlignedFace(ctx context.Context, data []byte) (*domain.LargestFace, error)
	Embedding(ctx context.Context, data []byte, aligned bool) ([]float32, error)
}

// FaceHandler serves the detection and embedding routes
type FaceHandler struct {
	service FaceService
	logger  *slog.Logger
}

func NewFaceHandler(service FaceService, logger *slog.Logger) *FaceHandler {
	return &FaceHandler{
		service: service,
		logger:  logger,
	}
}

// DetectResponse lists every detection, most confident first
type DetectResponse struct {
	Data    []domain.FaceCoords `json:"data"`
	Message string              `json:"message"`
}

// MessageResponse is returned when a detection route finds nothing
type MessageResponse struct {
	Message string `json:"message"`
}

type LargestFaceResponse struct {
	domain.LargestFace
	Message string `json:"message"`
}

type EmbeddingResponse struct {
	Data []float32 `json:"data"`
}

const successMessage = "success"

// Index GET /
func (h *FaceHandler) Index(c *fiber.Ctx) error {
	return c.SendString("server is up :)")
}

// Detect POST /get_face
func (h *FaceHandler) Detect(c *fiber.Ctx) error {
	return h.detect(c, h.service.Detect)
}

// DetectRetina POST /get_face/retina
func (h *FaceHandler) DetectRetina(c *fiber.Ctx) error {
	return h.detect(c, h.service.DetectRetina)
}

func (h *FaceHandler) detect(c *fiber.Ctx, run func(context.Context, []byte) ([]domain.FaceCoords, error)) error {
	data, _, err := readUpload(c)
	if err != nil {
		return err
	}

	faces, err := run(c.UserContext(), data)
	if err != nil {
		return err
	}
	if len(faces) == 0 {
		return c.JSON(MessageResponse{Message: domain.ErrNoFaceDetected.Message})
	}

	return c.JSON(DetectResponse{Data: faces, Message: successMessage})
}

// LargestFace POST /get_largest_face
func (h *FaceHandler) LargestFace(c *fiber.Ctx) error {
	return h.largest(c, h.service.LargestFace)
}

// AlignedFace POST /get_aligned_face
func (h *FaceHandler) AlignedFace(c *fiber.Ctx) error {
	return h.largest(c, h.service.AlignedFace)
}

func (h *FaceHandler) largest(c *fiber.Ctx, run func(context.Context, []byte) (*domain.LargestFace, error)) error {
	data, _, err := readUpload(c)
	if err != nil {
		return err
	}

	face, err := run(c.UserContext(), data)
	if errors.Is(err, domain.ErrNoFaceDetected) {
		return c.JSON(MessageResponse{Message: domain.ErrNoFaceDetected.Message})
	}
	if err != nil {
		return err
	}

	return c.JSON(LargestFaceResponse{LargestFace: *face, Message: successMessage})
}

// Embedding POST /get_vec
func (h *FaceHandler) Embedding(c *fiber.Ctx) error {
	data, _, err := readUpload(c)
	if err != nil {
		return err
	}

	aligned, err := formBool(c, "aligned", true)
	if err != nil {
		return err
	}

	vec, err := h.service.Embedding(c.UserContext(), data, aligned)
	if err != nil {
		return err
	}

	return c.JSON(EmbeddingResponse{Data: vec})
}
