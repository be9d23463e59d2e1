package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

// PgxPool is the subset of *pgxpool.Pool the repositories use. pgxmock's
// pool satisfies it in tests.
type PgxPool interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// FaceEmbeddingRepositoryInterface defines operations for face vector data access
type FaceEmbeddingRepositoryInterface interface {
	Create(ctx context.Context, face *domain.FaceEmbedding) error
	GetByUUID(ctx context.Context, faceUUID string) (*domain.FaceEmbedding, error)
	SimilarByEmbedding(ctx context.Context, embedding []float32, count int) ([]domain.SimilarFace, error)
	Ping(ctx context.Context) error
}
