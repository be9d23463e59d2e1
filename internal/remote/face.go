package remote

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
)

// FaceClient calls the face-api service
type FaceClient struct {
	c *client
}

func NewFaceClient(config Config, logger *slog.Logger) *FaceClient {
	return &FaceClient{c: newClient("face-api", config, logger)}
}

type largestFaceResponse struct {
	domain.LargestFace
	Message string `json:"message"`
}

// LargestFace calls POST /get_largest_face. An answer without a crop means
// no face was found in any orientation.
func (f *FaceClient) LargestFace(ctx context.Context, image []byte, filename string) (*domain.LargestFace, error) {
	body, err := multipartPayload(formFile{field: "input", filename: filename, data: image}, nil)
	if err != nil {
		return nil, err
	}

	var resp largestFaceResponse
	if err := f.c.doRequestWithRetry(ctx, "/get_largest_face", body, &resp); err != nil {
		return nil, translate(err, domain.ErrDecodeFailed, domain.ErrNoFaceDetected)
	}

	if resp.CroppedFace == "" {
		return nil, domain.ErrNoFaceDetected
	}
	return &resp.LargestFace, nil
}

type embeddingResponse struct {
	Data []float32 `json:"data"`
}

// Embedding calls POST /get_vec. With aligned unset the face-api aligns the
// largest face itself before embedding.
func (f *FaceClient) Embedding(ctx context.Context, image []byte, filename string, aligned bool) ([]float32, error) {
	body, err := multipartPayload(
		formFile{field: "input", filename: filename, data: image},
		map[string]string{"aligned": strconv.FormatBool(aligned)},
	)
	if err != nil {
		return nil, err
	}

	var resp embeddingResponse
	if err := f.c.doRequestWithRetry(ctx, "/get_vec", body, &resp); err != nil {
		return nil, translate(err, domain.ErrDecodeFailed, domain.ErrNoFaceDetected)
	}

	if len(resp.Data) != domain.EmbeddingDimension {
		return nil, fmt.Errorf("%w: embedding of length %d", ErrInvalidResponse, len(resp.Data))
	}
	return resp.Data, nil
}
