package arcface

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/soma/internal/imaging"
	"github.com/saturnino-fabrica-de-software/soma/internal/inference"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider"
)

const (
	InputName = "data"
	InputSize = 112
)

var ErrShapeMismatch = errors.New("arcface: unexpected embedding size")

// Extractor produces a 512-value embedding for an (ideally aligned) face crop.
type Extractor struct {
	engine inference.Engine
	logger *slog.Logger
}

var _ provider.Detector = (*Extractor)(nil)

func NewExtractor(engine inference.Engine, logger *slog.Logger) *Extractor {
	return &Extractor{engine: engine, logger: logger}
}

// Detect ignores threshold.
func (e *Extractor) Detect(ctx context.Context, img *imaging.Image, _ float32) (provider.Result, error) {
	start := time.Now()

	input, err := img.ResizeExact(InputSize, InputSize).Tensor(imaging.NormCentered)
	if err != nil {
		return nil, fmt.Errorf("arcface preprocess: %w", err)
	}

	outputs, err := e.engine.Run(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("arcface inference: %w", err)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%w: no output tensors", ErrShapeMismatch)
	}

	values := outputs[0].Data()
	if len(values) != provider.EmbeddingSize {
		return nil, fmt.Errorf("%w: got %d values, want %d", ErrShapeMismatch, len(values), provider.EmbeddingSize)
	}

	e.logger.Debug("arcface embed", "duration_ms", time.Since(start).Milliseconds())

	return provider.FaceEmbedding(append([]float32(nil), values...)), nil
}

func (e *Extractor) Close() error {
	return e.engine.Close()
}
