package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

func TestFaceClient_LargestFace(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantErr    error
		wantCoords domain.FaceCoords
	}{
		{
			name:       "face found",
			status:     http.StatusOK,
			body:       `{"coords":{"confidence":0.9,"width":120,"height":140},"cropped_face":"aGVsbG8=","rotation":1}`,
			wantCoords: domain.FaceCoords{Confidence: 0.9, Width: 120, Height: 140},
		},
		{
			name:    "no detections message",
			status:  http.StatusOK,
			body:    `{"message":"no detections were found, please try with a better image!"}`,
			wantErr: domain.ErrNoFaceDetected,
		},
		{
			name:    "undecodable upload",
			status:  http.StatusUnprocessableEntity,
			body:    `{"error":{"code":"DECODE_FAILED","message":"Invalid image format or corrupted file"}}`,
			wantErr: domain.ErrDecodeFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/get_largest_face", r.URL.Path)
				assert.Equal(t, http.MethodPost, r.Method)

				file, header, err := r.FormFile("input")
				require.NoError(t, err)
				defer file.Close()
				data, _ := io.ReadAll(file)
				assert.Equal(t, "image-bytes", string(data))
				assert.Equal(t, "face.jpg", header.Filename)

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			fc := NewFaceClient(testConfig(server.URL), testLogger())
			got, err := fc.LargestFace(context.Background(), []byte("image-bytes"), "face.jpg")

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, got)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantCoords, got.Coords)
			assert.Equal(t, "aGVsbG8=", got.CroppedFace)
			assert.Equal(t, 1, got.Rotation)
		})
	}
}

func TestFaceClient_Embedding(t *testing.T) {
	t.Run("sends the aligned flag", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/get_vec", r.URL.Path)
			require.NoError(t, r.ParseMultipartForm(1<<20))
			assert.Equal(t, "false", r.FormValue("aligned"))

			_ = json.NewEncoder(w).Encode(map[string]any{"data": embedding()})
		}))
		defer server.Close()

		fc := NewFaceClient(testConfig(server.URL), testLogger())
		got, err := fc.Embedding(context.Background(), []byte("img"), "face.png", false)
		require.NoError(t, err)
		assert.Len(t, got, domain.EmbeddingDimension)
	})

	t.Run("wrong vector length", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"data":[0.1,0.2]}`))
		}))
		defer server.Close()

		fc := NewFaceClient(testConfig(server.URL), testLogger())
		_, err := fc.Embedding(context.Background(), []byte("img"), "face.png", true)
		assert.ErrorIs(t, err, ErrInvalidResponse)
	})
}

func TestStoreClient_PostFaceVec(t *testing.T) {
	name := "placeholder"
	gender := int32(1)
	face := domain.FaceInsert{
		Embedding: embedding(),
		Name:      &name,
		Gender:    &gender,
		FaceUUID:  "3f1c",
	}

	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"created", http.StatusCreated, `{"status":201,"message":"success"}`, nil},
		{"duplicate", http.StatusConflict, `{"error":{"code":"FACE_ALREADY_EXISTS","message":"dup"}}`, domain.ErrFaceExists},
		{"bad dimension", http.StatusBadRequest, `{"error":{"code":"INVALID_EMBEDDING","message":"bad"}}`, domain.ErrInvalidEmbedding},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/post_face_vec", r.URL.Path)
				assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

				var got domain.FaceInsert
				require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
				assert.Equal(t, "3f1c", got.FaceUUID)
				assert.Equal(t, "placeholder", *got.Name)
				assert.Len(t, got.Embedding, domain.EmbeddingDimension)

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			sc := NewStoreClient(testConfig(server.URL), testLogger())
			err := sc.PostFaceVec(context.Background(), face)
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestStoreClient_Similar(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/get_similar_faces_by_uuid":
			var q domain.SimilarByUUIDQuery
			require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
			if q.FaceUUID == "missing" {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"error":{"code":"FACE_NOT_FOUND","message":"none"}}`))
				return
			}
			assert.Equal(t, 3, q.Count)
		case "/get_similar_faces_by_embedding":
			var q domain.SimilarByEmbeddingQuery
			require.NoError(t, json.NewDecoder(r.Body).Decode(&q))
			assert.Len(t, q.FaceEmbedding, domain.EmbeddingDimension)
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`[{"face":{"id":1,"name":"a","face_uuid":"u1","gender":1,"embedding":[0.5]},"cosine_similarity":0.99}]`))
	}))
	defer server.Close()

	sc := NewStoreClient(testConfig(server.URL), testLogger())
	ctx := context.Background()

	byUUID, err := sc.SimilarByUUID(ctx, domain.SimilarByUUIDQuery{FaceUUID: "u1", Count: 3})
	require.NoError(t, err)
	require.Len(t, byUUID, 1)
	assert.Equal(t, "u1", byUUID[0].Face.FaceUUID)
	assert.Equal(t, 0.99, byUUID[0].CosineSimilarity)

	byVec, err := sc.SimilarByEmbedding(ctx, domain.SimilarByEmbeddingQuery{FaceEmbedding: embedding(), Count: 1})
	require.NoError(t, err)
	assert.Len(t, byVec, 1)

	_, err = sc.SimilarByUUID(ctx, domain.SimilarByUUIDQuery{FaceUUID: "missing", Count: 3})
	assert.ErrorIs(t, err, domain.ErrFaceNotFound)
}
