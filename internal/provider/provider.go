package provider

import (
	"context"

	"github.com/saturnino-fabrica-de-software/soma/internal/bbox"
	"github.com/saturnino-fabrica-de-software/soma/internal/imaging"
)

// EmbeddingSize is the length of every face embedding.
const EmbeddingSize = 512

// Detector define a interface comum a todos os modelos: detectores e extratores de embedding.
// Detectors return FaceDetection in pixel space; extractors return FaceEmbedding and ignore threshold.
type Detector interface {
	Detect(ctx context.Context, img *imaging.Image, threshold float32) (Result, error)
}

// Result is either FaceDetection or FaceEmbedding.
type Result interface {
	isResult()
}

// FaceDetection is an ordered list of pixel-space boxes.
type FaceDetection []bbox.Bbox

// FaceEmbedding is a fixed-length face descriptor.
type FaceEmbedding []float32

func (FaceDetection) isResult() {}
func (FaceEmbedding) isResult() {}

// DetectFunc adapts a function to Detector.
type DetectFunc func(ctx context.Context, img *imaging.Image, threshold float32) (Result, error)

func (f DetectFunc) Detect(ctx context.Context, img *imaging.Image, threshold float32) (Result, error) {
	return f(ctx, img, threshold)
}
