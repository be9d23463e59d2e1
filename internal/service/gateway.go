package service

import (
	"context"
	"encoding/base64"
	"errors"
	"log/slog"

	"github.com/google/uuid"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

type FaceAPIInterface interface {
	LargestFace(ctx context.Context, image []byte, filename string) (*domain.LargestFace, error)
	Embedding(ctx context.Context, image []byte, filename string, aligned bool) ([]float32, error)
}

type StoreAPIInterface interface {
	PostFaceVec(ctx context.Context, face domain.FaceInsert) error
	SimilarByUUID(ctx context.Context, q domain.SimilarByUUIDQuery) ([]domain.SimilarFace, error)
	SimilarByEmbedding(ctx context.Context, q domain.SimilarByEmbeddingQuery) ([]domain.SimilarFace, error)
}

// Defaults stored when /add_face omits name or gender
const (
	DefaultFaceName   = "placeholder"
	DefaultFaceGender = int32(1)
)

// Upload is an image received by the gateway
type Upload struct {
	Data     []byte
	Filename string
	// Aligned means the upload already is a cropped, upright face.
	Aligned bool
}

type AddFaceInput struct {
	Upload
	Name   *string
	Gender *int32
}

// GatewayService orchestrates the face-api and store-api
type GatewayService struct {
	faces   FaceAPIInterface
	store   StoreAPIInterface
	logger  *slog.Logger
	newUUID func() string
}

func NewGatewayService(faces FaceAPIInterface, store StoreAPIInterface, logger *slog.Logger) *GatewayService {
	return &GatewayService{
		faces:   faces,
		store:   store,
		logger:  logger,
		newUUID: uuid.NewString,
	}
}

// AddFace embeds the upload and stores it under a fresh uuid, which is returned.
func (g *GatewayService) AddFace(ctx context.Context, in AddFaceInput) (string, error) {
	vec, err := g.embed(ctx, in.Upload)
	if err != nil {
		return "", err
	}

	face := domain.FaceInsert{
		Embedding: vec,
		Name:      in.Name,
		Gender:    in.Gender,
		FaceUUID:  g.newUUID(),
	}
	if face.Name == nil {
		name := DefaultFaceName
		face.Name = &name
	}
	if face.Gender == nil {
		gender := DefaultFaceGender
		face.Gender = &gender
	}

	if err := g.store.PostFaceVec(ctx, face); err != nil {
		return "", upstream(err)
	}

	g.logger.Info("face added", "face_uuid", face.FaceUUID, "aligned", in.Aligned)
	return face.FaceUUID, nil
}

func (g *GatewayService) SimilarByUUID(ctx context.Context, q domain.SimilarByUUIDQuery) ([]domain.SimilarFace, error) {
	if q.Count <= 0 {
		return nil, domain.ErrInvalidCount
	}
	matches, err := g.store.SimilarByUUID(ctx, q)
	if err != nil {
		return nil, upstream(err)
	}
	return matches, nil
}

func (g *GatewayService) SimilarByImage(ctx context.Context, up Upload, count int) ([]domain.SimilarFace, error) {
	if count <= 0 {
		return nil, domain.ErrInvalidCount
	}

	vec, err := g.embed(ctx, up)
	if err != nil {
		return nil, err
	}

	matches, err := g.store.SimilarByEmbedding(ctx, domain.SimilarByEmbeddingQuery{
		FaceEmbedding: vec,
		Count:         count,
	})
	if err != nil {
		return nil, upstream(err)
	}
	return matches, nil
}

// embed turns an upload into a face vector. Unaligned uploads go through
// the largest-face crop first.
func (g *GatewayService) embed(ctx context.Context, up Upload) ([]float32, error) {
	data, filename := up.Data, up.Filename

	if !up.Aligned {
		largest, err := g.faces.LargestFace(ctx, up.Data, up.Filename)
		if err != nil {
			return nil, upstream(err)
		}
		crop, err := base64.StdEncoding.DecodeString(largest.CroppedFace)
		if err != nil {
			return nil, domain.ErrUpstreamUnavailable.WithError(err)
		}
		data, filename = crop, "face.png"
	}

	vec, err := g.faces.Embedding(ctx, data, filename, true)
	if err != nil {
		return nil, upstream(err)
	}
	return vec, nil
}

// upstream keeps domain errors and cancellations as they are and reports
// anything else as an unavailable upstream.
func upstream(err error) error {
	var appErr *domain.AppError
	if errors.As(err, &appErr) {
		return err
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	return domain.ErrUpstreamUnavailable.WithError(err)
}
