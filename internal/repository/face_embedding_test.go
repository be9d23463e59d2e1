package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/pgvector/pgvector-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

func ptr[T any](v T) *T {
	return &v
}

const selectByUUID = `SELECT id, name, gender, embedding, face_uuid, created_at FROM face_embeddings WHERE face_uuid = \$1`

const selectSimilar = `SELECT id, name, gender, embedding, face_uuid, 1 - \(embedding <=> \$1\) AS cosine_similarity FROM face_embeddings ORDER BY cosine_similarity DESC LIMIT \$2`

func TestFaceEmbeddingRepository_Create(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		face      *domain.FaceEmbedding
		mockSetup func(mock pgxmock.PgxPoolIface)
		wantErr   error
		wantID    int64
	}{
		{
			name: "successful creation",
			face: &domain.FaceEmbedding{
				Name:      ptr("placeholder"),
				Gender:    ptr(int32(1)),
				FaceUUID:  "0b6c1c9e-1111-4c2e-9d5a-3f2f4f0e0001",
				Embedding: []float32{0.1, 0.2, 0.3},
			},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				rows := pgxmock.NewRows([]string{"id", "created_at"}).AddRow(int64(42), now)

				mock.ExpectQuery(`INSERT INTO face_embeddings`).
					WithArgs(
						ptr("placeholder"),
						pgxmock.AnyArg(),
						ptr(int32(1)),
						"0b6c1c9e-1111-4c2e-9d5a-3f2f4f0e0001",
					).
					WillReturnRows(rows)
			},
			wantID: 42,
		},
		{
			name: "duplicate face_uuid",
			face: &domain.FaceEmbedding{
				FaceUUID:  "dup",
				Embedding: []float32{0.1},
			},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO face_embeddings`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), "dup").
					WillReturnError(&pgconn.PgError{Code: "23505", Message: "duplicate key value violates unique constraint"})
			},
			wantErr: domain.ErrFaceExists,
		},
		{
			name: "database error on create",
			face: &domain.FaceEmbedding{
				FaceUUID:  "broken",
				Embedding: []float32{0.1},
			},
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(`INSERT INTO face_embeddings`).
					WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
					WillReturnError(errors.New("connection reset"))
			},
			wantErr: errors.New("create face embedding: connection reset"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewFaceEmbeddingRepository(mock)
			err = repo.Create(context.Background(), tt.face)

			if tt.wantErr != nil {
				require.Error(t, err)
				if errors.Is(tt.wantErr, domain.ErrFaceExists) {
					assert.ErrorIs(t, err, domain.ErrFaceExists)
				} else {
					assert.Contains(t, err.Error(), "create face embedding")
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantID, tt.face.ID)
				assert.Equal(t, now, tt.face.CreatedAt)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFaceEmbeddingRepository_GetByUUID(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name      string
		faceUUID  string
		mockSetup func(mock pgxmock.PgxPoolIface)
		want      *domain.FaceEmbedding
		wantErr   error
	}{
		{
			name:     "successful retrieval",
			faceUUID: "abc",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				embedding := pgvector.NewVector([]float32{0.1, 0.2, 0.3})
				rows := pgxmock.NewRows([]string{
					"id", "name", "gender", "embedding", "face_uuid", "created_at",
				}).AddRow(
					int64(7),
					ptr("alice"),
					ptr(int32(0)),
					&embedding,
					"abc",
					now,
				)

				mock.ExpectQuery(selectByUUID).
					WithArgs("abc").
					WillReturnRows(rows)
			},
			want: &domain.FaceEmbedding{
				ID:        7,
				Name:      ptr("alice"),
				Gender:    ptr(int32(0)),
				FaceUUID:  "abc",
				Embedding: []float32{0.1, 0.2, 0.3},
				CreatedAt: now,
			},
		},
		{
			name:     "face not found",
			faceUUID: "missing",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(selectByUUID).
					WithArgs("missing").
					WillReturnError(pgx.ErrNoRows)
			},
			wantErr: domain.ErrFaceNotFound,
		},
		{
			name:     "database error",
			faceUUID: "boom",
			mockSetup: func(mock pgxmock.PgxPoolIface) {
				mock.ExpectQuery(selectByUUID).
					WithArgs("boom").
					WillReturnError(errors.New("database connection error"))
			},
			wantErr: errors.New("get face by uuid: database connection error"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mock, err := pgxmock.NewPool()
			require.NoError(t, err)
			defer mock.Close()

			tt.mockSetup(mock)

			repo := NewFaceEmbeddingRepository(mock)
			got, err := repo.GetByUUID(context.Background(), tt.faceUUID)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Nil(t, got)
				if errors.Is(tt.wantErr, domain.ErrFaceNotFound) {
					assert.ErrorIs(t, err, domain.ErrFaceNotFound)
				} else {
					assert.Contains(t, err.Error(), "get face by uuid")
				}
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.want, got)
			}

			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestFaceEmbeddingRepository_SimilarByEmbedding(t *testing.T) {
	query := []float32{1, 0, 0}

	t.Run("returns rows in database order", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		first := pgvector.NewVector([]float32{1, 0, 0})
		second := pgvector.NewVector([]float32{0.8, 0.2, 0})
		rows := pgxmock.NewRows([]string{
			"id", "name", "gender", "embedding", "face_uuid", "cosine_similarity",
		}).
			AddRow(int64(1), ptr("a"), ptr(int32(1)), &first, "uuid-a", 1.0).
			AddRow(int64(2), ptr("b"), ptr(int32(0)), &second, "uuid-b", 0.97)

		mock.ExpectQuery(selectSimilar).
			WithArgs(pgxmock.AnyArg(), 2).
			WillReturnRows(rows)

		repo := NewFaceEmbeddingRepository(mock)
		got, err := repo.SimilarByEmbedding(context.Background(), query, 2)
		require.NoError(t, err)

		require.Len(t, got, 2)
		assert.Equal(t, "uuid-a", got[0].Face.FaceUUID)
		assert.Equal(t, 1.0, got[0].CosineSimilarity)
		assert.Equal(t, []float32{1, 0, 0}, got[0].Face.Embedding)
		assert.Equal(t, "uuid-b", got[1].Face.FaceUUID)
		assert.Equal(t, 0.97, got[1].CosineSimilarity)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("empty table yields empty slice", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(selectSimilar).
			WithArgs(pgxmock.AnyArg(), 5).
			WillReturnRows(pgxmock.NewRows([]string{
				"id", "name", "gender", "embedding", "face_uuid", "cosine_similarity",
			}))

		repo := NewFaceEmbeddingRepository(mock)
		got, err := repo.SimilarByEmbedding(context.Background(), query, 5)
		require.NoError(t, err)
		assert.NotNil(t, got)
		assert.Empty(t, got)

		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("query error", func(t *testing.T) {
		mock, err := pgxmock.NewPool()
		require.NoError(t, err)
		defer mock.Close()

		mock.ExpectQuery(selectSimilar).
			WithArgs(pgxmock.AnyArg(), 5).
			WillReturnError(errors.New("timeout"))

		repo := NewFaceEmbeddingRepository(mock)
		_, err = repo.SimilarByEmbedding(context.Background(), query, 5)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "search similar faces")

		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestFaceEmbeddingRepository_Ping(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	mock.ExpectExec(`SELECT 1`).WillReturnResult(pgxmock.NewResult("SELECT", 1))
	mock.ExpectExec(`SELECT 1`).WillReturnError(errors.New("down"))

	repo := NewFaceEmbeddingRepository(mock)
	assert.NoError(t, repo.Ping(context.Background()))
	assert.ErrorContains(t, repo.Ping(context.Background()), "ping database")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"pg error 23505", &pgconn.PgError{Code: "23505"}, true},
		{"pg error other code", &pgconn.PgError{Code: "23503"}, false},
		{"message fallback", errors.New("duplicate key value violates unique constraint"), true},
		{"unrelated", errors.New("connection refused"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isUniqueViolation(tt.err))
		})
	}
}
