package service

import (
	"context"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

type FaceEmbeddingRepositoryInterface interface {
	Create(ctx context.Context, face *domain.FaceEmbedding) error
	GetByUUID(ctx context.Context, faceUUID string) (*domain.FaceEmbedding, error)
	SimilarByEmbedding(ctx context.Context, embedding []float32, count int) ([]domain.SimilarFace, error)
	Ping(ctx context.Context) error
}

// StoreService validates and persists face vectors and answers similarity
// queries.
type StoreService struct {
	repo     FaceEmbeddingRepositoryInterface
	maxCount int
	logger   *slog.Logger
}

func NewStoreService(repo FaceEmbeddingRepositoryInterface, logger *slog.Logger) *StoreService {
	return &StoreService{
		repo:     repo,
		maxCount: 100,
		logger:   logger,
	}
}

// WithMaxCount caps how many matches a similarity query may ask for
func (s *StoreService) WithMaxCount(n int) *StoreService {
	s.maxCount = n
	return s
}

func (s *StoreService) Insert(ctx context.Context, in domain.FaceInsert) (*domain.FaceEmbedding, error) {
	if err := domain.ValidateEmbedding(in.Embedding); err != nil {
		return nil, err
	}
	if in.FaceUUID == "" {
		return nil, &domain.AppError{
			Code:       domain.ErrValidationFailed.Code,
			Message:    "face_uuid is required",
			StatusCode: domain.ErrValidationFailed.StatusCode,
		}
	}

	face := &domain.FaceEmbedding{
		Name:      in.Name,
		Gender:    in.Gender,
		FaceUUID:  in.FaceUUID,
		Embedding: in.Embedding,
	}
	if err := s.repo.Create(ctx, face); err != nil {
		return nil, err
	}

	s.logger.Info("face stored", "id", face.ID, "face_uuid", face.FaceUUID)
	return face, nil
}

func (s *StoreService) GetByUUID(ctx context.Context, faceUUID string) (*domain.FaceEmbedding, error) {
	return s.repo.GetByUUID(ctx, faceUUID)
}

// SimilarByUUID looks up the stored vector of faceUUID and ranks every face,
// itself included, against it.
func (s *StoreService) SimilarByUUID(ctx context.Context, q domain.SimilarByUUIDQuery) ([]domain.SimilarFace, error) {
	count, err := s.count(q.Count)
	if err != nil {
		return nil, err
	}

	face, err := s.repo.GetByUUID(ctx, q.FaceUUID)
	if err != nil {
		return nil, err
	}
	return s.repo.SimilarByEmbedding(ctx, face.Embedding, count)
}

func (s *StoreService) SimilarByEmbedding(ctx context.Context, q domain.SimilarByEmbeddingQuery) ([]domain.SimilarFace, error) {
	if err := domain.ValidateEmbedding(q.FaceEmbedding); err != nil {
		return nil, err
	}
	count, err := s.count(q.Count)
	if err != nil {
		return nil, err
	}
	return s.repo.SimilarByEmbedding(ctx, q.FaceEmbedding, count)
}

func (s *StoreService) Ping(ctx context.Context) error {
	return s.repo.Ping(ctx)
}

func (s *StoreService) count(n int) (int, error) {
	if n <= 0 {
		return 0, domain.ErrInvalidCount
	}
	return min(n, s.maxCount), nil
}
