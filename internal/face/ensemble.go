package face

import (
	"context"
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/soma/internal/bbox"
	"github.com/saturnino-fabrica-de-software/soma/internal/imaging"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider"
)

// ErrNotDetection is returned when a member detector yields an embedding.
var ErrNotDetection = errors.New("face: detector did not return detections")

// Ensemble runs several detectors on the same image and keeps only the single
// most confident box across all of them. Boxes are not merged geometrically.
type Ensemble struct {
	detectors []provider.Detector
}

var _ provider.Detector = (*Ensemble)(nil)

func NewEnsemble(detectors ...provider.Detector) *Ensemble {
	return &Ensemble{detectors: detectors}
}

func (e *Ensemble) Detect(ctx context.Context, img *imaging.Image, threshold float32) (provider.Result, error) {
	var all []bbox.Bbox
	for i, d := range e.detectors {
		faces, err := detectFaces(ctx, d, img, threshold)
		if err != nil {
			return nil, fmt.Errorf("ensemble member %d: %w", i, err)
		}
		all = append(all, faces...)
	}

	top, ok := bbox.Top(all)
	if !ok {
		return provider.FaceDetection{}, nil
	}
	return provider.FaceDetection{top}, nil
}

func detectFaces(ctx context.Context, d provider.Detector, img *imaging.Image, threshold float32) (provider.FaceDetection, error) {
	res, err := d.Detect(ctx, img, threshold)
	if err != nil {
		return nil, err
	}
	faces, ok := res.(provider.FaceDetection)
	if !ok {
		return nil, fmt.Errorf("%w: got %T", ErrNotDetection, res)
	}
	return faces, nil
}
