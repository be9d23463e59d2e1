package face

import (
	"context"

	"github.com/saturnino-fabrica-de-software/soma/internal/imaging"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider"
)

// Rotations is the number of quarter turns tried: 0°, 90°, 180°, 270°.
const Rotations = 4

// Orientation is the outcome of a search. When Faces is empty every rotation
// failed and Image is nil.
type Orientation struct {
	Faces provider.FaceDetection
	// Image is the rotated input the faces were found in. Crops must use it.
	Image    *imaging.Image
	Index    int
	Attempts int
}

func (o Orientation) Found() bool {
	return len(o.Faces) > 0
}

// OrientationRetry re-runs a detector on quarter-turn rotations of the input
// until one yields a face. Attempts are strictly sequential.
type OrientationRetry struct {
	detector  provider.Detector
	threshold float32
}

func NewOrientationRetry(detector provider.Detector, threshold float32) *OrientationRetry {
	return &OrientationRetry{detector: detector, threshold: threshold}
}

func (r *OrientationRetry) Search(ctx context.Context, img *imaging.Image) (Orientation, error) {
	for i := 0; i < Rotations; i++ {
		if err := ctx.Err(); err != nil {
			return Orientation{Attempts: i}, err
		}

		rotated := img
		if i > 0 {
			rotated = img.Rotate(i)
		}

		faces, err := detectFaces(ctx, r.detector, rotated, r.threshold)
		if err != nil {
			return Orientation{Attempts: i + 1}, err
		}
		if len(faces) > 0 {
			return Orientation{Faces: faces, Image: rotated, Index: i, Attempts: i + 1}, nil
		}
	}
	return Orientation{Faces: provider.FaceDetection{}, Attempts: Rotations}, nil
}
