package handler

import (
	"context"
	"log/slog"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
	"github.com/saturnino-fabrica-de-software/soma/internal/service"
)

type GatewayService interface {
	AddFace(ctx context.Context, in service.AddFaceInput) (string, error)
	SimilarByUUID(ctx context.Context, q domain.SimilarByUUIDQuery) ([]domain.SimilarFace, error)
	SimilarByImage(ctx context.Context, up service.Upload, count int) ([]domain.SimilarFace, error)
}

// GatewayHandler serves the public routes that orchestrate face-api and
// store-api
type GatewayHandler struct {
	service GatewayService
	logger  *slog.Logger
}

func NewGatewayHandler(service GatewayService, logger *slog.Logger) *GatewayHandler {
	return &GatewayHandler{
		service: service,
		logger:  logger,
	}
}

type AddFaceResponse struct {
	ID      string `json:"id"`
	Message string `json:"message"`
}

// AddFace POST /add_face
func (h *GatewayHandler) AddFace(c *fiber.Ctx) error {
	up, err := upload(c)
	if err != nil {
		return err
	}

	in := service.AddFaceInput{Upload: up}
	if name := strings.TrimSpace(c.FormValue("name")); name != "" {
		in.Name = &name
	}
	gender, err := formInt(c, "gender")
	if err != nil {
		return err
	}
	if gender != nil {
		g := int32(*gender)
		in.Gender = &g
	}

	id, err := h.service.AddFace(c.UserContext(), in)
	if err != nil {
		return err
	}

	return c.JSON(AddFaceResponse{ID: id, Message: successMessage})
}

// SimilarByUUID POST /get_similar_faces_uuid
func (h *GatewayHandler) SimilarByUUID(c *fiber.Ctx) error {
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

// SimilarByImage POST /get_similar_faces_image
func (h *GatewayHandler) SimilarByImage(c *fiber.Ctx) error {
	up, err := upload(c)
	if err != nil {
		return err
	}

	count, err := formInt(c, "count")
	if err != nil {
		return err
	}
	if count == nil {
		return validation("count is required")
	}

	matches, err := h.service.SimilarByImage(c.UserContext(), up, *count)
	if err != nil {
		return err
	}
	return c.JSON(matches)
}

// upload reads the image and the aligned flag. Gateway uploads are raw
// photos unless told otherwise.
func upload(c *fiber.Ctx) (service.Upload, error) {
	data, filename, err := readUpload(c)
	if err != nil {
		return service.Upload{}, err
	}
	aligned, err := formBool(c, "aligned", false)
	if err != nil {
		return service.Upload{}, err
	}
	return service.Upload{Data: data, Filename: filename, Aligned: aligned}, nil
}
