package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

type StoreService interface {
	Insert(ctx context.Context, in domain.FaceInsert) (*domain.FaceEmbedding, error)
	GetByUUID(ctx context.Context, faceUUID string) (*domain.FaceEmbedding, error)
	SimilarByUUID(ctx context.Context, q domain.SimilarByUUIDQuery) ([]domain.SimilarFace, error)
	SimilarByEmbedding(ctx context.Context, q domain.SimilarByEmbeddingQuery) ([]domain.SimilarFace, error)
}

// StoreHandler serves the face vector store routes
type StoreHandler struct {
	service StoreService
	logger  *slog.Logger
}

func NewStoreHandler(service StoreService, logger *slog.Logger) *StoreHandler {
	return &StoreHandler{
		service: service,
		logger:  logger,
	}
}

// PostFaceVec POST /post_face_vec
func (h *StoreHandler) PostFaceVec(c *fiber.Ctx) error {
	var req domain.FaceInsert
	if err := parseJSON(c, &req); err != nil {
		return err
	}
	req.FaceUUID = strings.TrimSpace(req.FaceUUID)

	if _, err := h.service.Insert(c.UserContext(), req); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(domain.StatusResponse{
		Status:  fiber.StatusCreated,
		Message: successMessage,
	})
}

// GetFaceByUUID POST /get_face_by_uuid
func (h *StoreHandler) GetFaceByUUID(c *fiber.Ctx) error {
	var req domain.FaceLookup
	if err := parseJSON(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.FaceUUID) == "" {
		return validation("face_uuid is required")
	}

	face, err := h.service.GetByUUID(c.UserContext(), req.FaceUUID)
	if err != nil {
		return err
	}
	return c.JSON(face)
}

// SimilarByUUID POST /get_similar_faces_by_uuid
func (h *StoreHandler) SimilarByUUID(c *fiber.Ctx) error {
	var req domain.SimilarByUUIDQuery
	if err := parseJSON(c, &req); err != nil {
		return err
	}
	if strings.TrimSpace(req.FaceUUID) == "" {
		return validation("face_uuid is required")
	}

	matches, err := h.service.SimilarByUUID(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(matches)
}

// SimilarByEmbedding POST /get_similar_faces_by_embedding
func (h *StoreHandler) SimilarByEmbedding(c *fiber.Ctx) error {
	var req domain.SimilarByEmbeddingQuery
	if err := parseJSON(c, &req); err != nil {
		return err
	}

	matches, err := h.service.SimilarByEmbedding(c.UserContext(), req)
	if err != nil {
		return err
	}
	return c.JSON(matches)
}
