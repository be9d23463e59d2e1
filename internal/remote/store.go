package remote

import (
	"context"
	"log/slog"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

// StoreClient calls the store-api service
type StoreClient struct {
	c *client
}

func NewStoreClient(config Config, logger *slog.Logger) *StoreClient {
	return &StoreClient{c: newClient("store-api", config, logger)}
}

// PostFaceVec calls POST /post_face_vec
func (s *StoreClient) PostFaceVec(ctx context.Context, face domain.FaceInsert) error {
	body, err := jsonPayload(face)
	if err != nil {
		return err
	}

	if err := s.c.doRequestWithRetry(ctx, "/post_face_vec", body, nil); err != nil {
		return translate(err, domain.ErrInvalidEmbedding, domain.ErrFaceExists)
	}
	return nil
}

// SimilarByUUID calls POST /get_similar_faces_by_uuid
func (s *StoreClient) SimilarByUUID(ctx context.Context, q domain.SimilarByUUIDQuery) ([]domain.SimilarFace, error) {
	return s.similar(ctx, "/get_similar_faces_by_uuid", q)
}

// SimilarByEmbedding calls POST /get_similar_faces_by_embedding
func (s *StoreClient) SimilarByEmbedding(ctx context.Context, q domain.SimilarByEmbeddingQuery) ([]domain.SimilarFace, error) {
	return s.similar(ctx, "/get_similar_faces_by_embedding", q)
}

func (s *StoreClient) similar(ctx context.Context, path string, q any) ([]domain.SimilarFace, error) {
	body, err := jsonPayload(q)
	if err != nil {
		return nil, err
	}

	matches := make([]domain.SimilarFace, 0)
	if err := s.c.doRequestWithRetry(ctx, path, body, &matches); err != nil {
		return nil, translate(err, domain.ErrFaceNotFound, domain.ErrInvalidEmbedding, domain.ErrInvalidCount)
	}
	return matches, nil
}
