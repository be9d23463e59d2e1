package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/pgvector/pgvector-go"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

type FaceEmbeddingRepository struct {
	pool PgxPool
}

var _ FaceEmbeddingRepositoryInterface = (*FaceEmbeddingRepository)(nil)

func NewFaceEmbeddingRepository(pool PgxPool) *FaceEmbeddingRepository {
	return &FaceEmbeddingRepository{pool: pool}
}

func (r *FaceEmbeddingRepository) Create(ctx context.Context, face *domain.FaceEmbedding) error {
	query := `
		INSERT INTO face_embeddings (name, embedding, gender, face_uuid)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`

	vec := pgvector.NewVector(face.Embedding)

	err := r.pool.QueryRow(ctx, query,
		face.Name,
		vec,
		face.Gender,
		face.FaceUUID,
	).Scan(&face.ID, &face.CreatedAt)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrFaceExists
		}
		return fmt.Errorf("create face embedding: %w", err)
	}

	return nil
}

func (r *FaceEmbeddingRepository) GetByUUID(ctx context.Context, faceUUID string) (*domain.FaceEmbedding, error) {
	query := `
		SELECT id, name, gender, embedding, face_uuid, created_at
		FROM face_embeddings
		WHERE face_uuid = $1
	`

	var face domain.FaceEmbedding
	var embedding *pgvector.Vector

	err := r.pool.QueryRow(ctx, query, faceUUID).Scan(
		&face.ID,
		&face.Name,
		&face.Gender,
		&embedding,
		&face.FaceUUID,
		&face.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrFaceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get face by uuid: %w", err)
	}

	face.Embedding = vectorSlice(embedding)
	return &face, nil
}

// SimilarByEmbedding returns the count nearest faces by cosine distance,
// most similar first. No similarity floor is applied.
func (r *FaceEmbeddingRepository) SimilarByEmbedding(ctx context.Context, embedding []float32, count int) ([]domain.SimilarFace, error) {
	query := `
		SELECT id, name, gender, embedding, face_uuid, 1 - (embedding <=> $1) AS cosine_similarity
		FROM face_embeddings
		ORDER BY cosine_similarity DESC
		LIMIT $2
	`

	rows, err := r.pool.Query(ctx, query, pgvector.NewVector(embedding), count)
	if err != nil {
		return nil, fmt.Errorf("search similar faces: %w", err)
	}
	defer rows.Close()

	matches := make([]domain.SimilarFace, 0)
	for rows.Next() {
		var m domain.SimilarFace
		var vec *pgvector.Vector

		if err := rows.Scan(
			&m.Face.ID,
			&m.Face.Name,
			&m.Face.Gender,
			&vec,
			&m.Face.FaceUUID,
			&m.CosineSimilarity,
		); err != nil {
			return nil, fmt.Errorf("scan similar face: %w", err)
		}

		m.Face.Embedding = vectorSlice(vec)
		matches = append(matches, m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similar faces: %w", err)
	}

	return matches, nil
}

// Ping is the readiness probe of the store service.
func (r *FaceEmbeddingRepository) Ping(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, "SELECT 1"); err != nil {
		return fmt.Errorf("ping database: %w", err)
	}
	return nil
}

func vectorSlice(v *pgvector.Vector) []float32 {
	if v == nil || v.Slice() == nil {
		return []float32{}
	}
	return v.Slice()
}
