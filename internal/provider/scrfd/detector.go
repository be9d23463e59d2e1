package scrfd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/soma/internal/bbox"
	"github.com/saturnino-fabrica-de-software/soma/internal/imaging"
	"github.com/saturnino-fabrica-de-software/soma/internal/inference"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider"
)

// ErrUnsupportedOutputs means the model is not a 3-stride, 2-anchor SCRFD export.
var ErrUnsupportedOutputs = errors.New("scrfd: model must expose 6 or 9 outputs")

// InputName is the input tensor name of the standard SCRFD exports.
const InputName = "input.1"

// Detector is the anchor-grid face detector.
type Detector struct {
	engine inference.Engine
	params Params
	nmsIoU float32
	logger *slog.Logger
}

var _ provider.Detector = (*Detector)(nil)

// NewDetector inspects the engine outputs: 6 means boxes only, 9 adds keypoints.
func NewDetector(engine inference.Engine, params Params, nmsIoU float32, logger *slog.Logger) (*Detector, error) {
	switch n := len(engine.OutputNames()); n {
	case 6:
		params.Keypoints = false
	case 9:
		params.Keypoints = true
	default:
		return nil, fmt.Errorf("%w: got %d", ErrUnsupportedOutputs, n)
	}

	return &Detector{
		engine: engine,
		params: params,
		nmsIoU: nmsIoU,
		logger: logger,
	}, nil
}

func (d *Detector) Detect(ctx context.Context, img *imaging.Image, threshold float32) (provider.Result, error) {
	start := time.Now()
	size := d.params.InputSize

	input, err := img.ResizeExact(size, size).Tensor(imaging.NormCentered)
	if err != nil {
		return nil, fmt.Errorf("scrfd preprocess: %w", err)
	}

	outputs, err := d.engine.Run(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("scrfd inference: %w", err)
	}

	p := d.params
	p.Threshold = threshold
	raw, err := Decode(outputs, p)
	if err != nil {
		return nil, err
	}

	boxes := make([]bbox.Bbox, 0, len(raw))
	for _, b := range raw {
		scaled, err := b.ApplyImageScale(img.Width(), img.Height(), float32(size), float32(size))
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, scaled)
	}
	kept := bbox.NMS(boxes, d.nmsIoU)

	d.logger.Debug("scrfd detect",
		"raw", len(raw),
		"kept", len(kept),
		"threshold", threshold,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return provider.FaceDetection(kept), nil
}

func (d *Detector) Close() error {
	return d.engine.Close()
}
