package domain

import (
	"time"
)

// EmbeddingDimension is the length of every stored face vector.
const EmbeddingDimension = 512

// FaceEmbedding representa uma face cadastrada no store
type FaceEmbedding struct {
	ID        int64     `json:"id"`
	Name      *string   `json:"name"`
	FaceUUID  string    `json:"face_uuid"`
	Gender    *int32    `json:"gender"`
	Embedding []float32 `json:"embedding"`
	CreatedAt time.Time `json:"-"`
}

// SimilarFace pairs a stored face with its cosine similarity to a query vector.
type SimilarFace struct {
	Face             FaceEmbedding `json:"face"`
	CosineSimilarity float64       `json:"cosine_similarity"`
}

// ValidateEmbedding rejects vectors that do not match the column dimension.
func ValidateEmbedding(embedding []float32) error {
	if len(embedding) != EmbeddingDimension {
		return ErrInvalidEmbedding
	}
	return nil
}

// FaceCoords is the wire form of a detection: confidence plus pixel width and
// height, truncated toward zero.
type FaceCoords struct {
	Confidence float32 `json:"confidence"`
	Width      int     `json:"width"`
	Height     int     `json:"height"`
}

// LargestFace is the face-api answer for the largest detected face.
type LargestFace struct {
	Coords      FaceCoords `json:"coords"`
	CroppedFace string     `json:"cropped_face"`
	Rotation    int        `json:"rotation"`
}

// FaceInsert is the body of a store insert.
type FaceInsert struct {
	Embedding []float32 `json:"embedding"`
	Name      *string   `json:"name"`
	Gender    *int32    `json:"gender"`
	FaceUUID  string    `json:"face_uuid"`
}

type FaceLookup struct {
	FaceUUID string `json:"face_uuid"`
}

type SimilarByUUIDQuery struct {
	FaceUUID string `json:"face_uuid"`
	Count    int    `json:"count"`
}

type SimilarByEmbeddingQuery struct {
	FaceEmbedding []float32 `json:"face_embedding"`
	Count         int       `json:"count"`
}

// StatusResponse is the generic acknowledgement of store writes.
type StatusResponse struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
}
