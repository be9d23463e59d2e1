package yolo

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/soma/internal/bbox"
	"github.com/saturnino-fabrica-de-software/soma/internal/imaging"
	"github.com/saturnino-fabrica-de-software/soma/internal/inference"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider"
)

const (
	InputName        = "images"
	DefaultInputSize = 640
	DefaultNMSIoU    = 0.5
)

// padding is 144/255 once normalised.
var padding = color.RGBA{R: 144, G: 144, B: 144, A: 0xff}

// Detector is the single-shot face detector.
type Detector struct {
	engine    inference.Engine
	inputSize int
	nmsIoU    float32
	logger    *slog.Logger
}

var _ provider.Detector = (*Detector)(nil)

func NewDetector(engine inference.Engine, inputSize int, nmsIoU float32, logger *slog.Logger) (*Detector, error) {
	if n := len(engine.OutputNames()); n < 1 {
		return nil, fmt.Errorf("%w: model has no outputs", ErrShapeMismatch)
	}
	if inputSize <= 0 {
		inputSize = DefaultInputSize
	}
	return &Detector{
		engine:    engine,
		inputSize: inputSize,
		nmsIoU:    nmsIoU,
		logger:    logger,
	}, nil
}

func (d *Detector) Detect(ctx context.Context, img *imaging.Image, threshold float32) (provider.Result, error) {
	start := time.Now()
	size := d.inputSize

	_, wNew, hNew := FitScale(img.Width(), img.Height(), size, size)
	canvas, err := img.ResizeFit(wNew, hNew, image.Pt(size, size), padding)
	if err != nil {
		return nil, fmt.Errorf("yolo preprocess: %w", err)
	}
	input, err := canvas.Tensor(imaging.NormUnit)
	if err != nil {
		return nil, fmt.Errorf("yolo preprocess: %w", err)
	}

	outputs, err := d.engine.Run(ctx, input)
	if err != nil {
		return nil, fmt.Errorf("yolo inference: %w", err)
	}
	if len(outputs) == 0 {
		return nil, fmt.Errorf("%w: no output tensors", ErrShapeMismatch)
	}

	raw, err := Decode(outputs[0], threshold)
	if err != nil {
		return nil, err
	}

	// network coordinates are relative to the resized image, not the padded canvas
	boxes := make([]bbox.Bbox, 0, len(raw))
	for _, b := range raw {
		scaled, err := b.ApplyImageScale(img.Width(), img.Height(), float32(wNew), float32(hNew))
		if err != nil {
			return nil, err
		}
		boxes = append(boxes, scaled)
	}
	kept := bbox.NMS(boxes, d.nmsIoU)

	d.logger.Debug("yolo detect",
		"raw", len(raw),
		"kept", len(kept),
		"resized", fmt.Sprintf("%dx%d", wNew, hNew),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return provider.FaceDetection(kept), nil
}

func (d *Detector) Close() error {
	return d.engine.Close()
}
