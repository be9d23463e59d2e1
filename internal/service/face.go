package service

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/saturnino-fabrica-de-software/soma/internal/bbox"
	"github.com/saturnino-fabrica-de-software/soma/internal/domain"
	"github.com/saturnino-fabrica-de-software/soma/internal/face"
	"github.com/saturnino-fabrica-de-software/soma/internal/imaging"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider"
)

// FaceOptions are the thresholds and sizes the face service runs with
type FaceOptions struct {
	DetectThreshold  float32
	LargestThreshold float32
	AlignSize        int
}

func DefaultFaceOptions() FaceOptions {
	return FaceOptions{
		DetectThreshold:  0.1,
		LargestThreshold: 0.5,
		AlignSize:        112,
	}
}

// FaceService implements detection, largest-face cropping, alignment and
// embedding extraction on top of the loaded detectors.
type FaceService struct {
	models *face.Detectors
	opts   FaceOptions
	logger *slog.Logger
}

func NewFaceService(models *face.Detectors, opts FaceOptions, logger *slog.Logger) *FaceService {
	return &FaceService{
		models: models,
		opts:   opts,
		logger: logger,
	}
}

// HasRetina reports whether the anchor-grid detector is loaded.
func (s *FaceService) HasRetina() bool { return s.models.Retina != nil }

// HasEmbedding reports whether the embedding extractor is loaded.
func (s *FaceService) HasEmbedding() bool { return s.models.Embed != nil }

// Detect runs the general detector and returns every box, most confident
// first. An empty result is not an error.
func (s *FaceService) Detect(ctx context.Context, data []byte) ([]domain.FaceCoords, error) {
	return s.detectWith(ctx, s.models.Detect, data)
}

// DetectRetina runs the anchor-grid detector alone.
func (s *FaceService) DetectRetina(ctx context.Context, data []byte) ([]domain.FaceCoords, error) {
	if s.models.Retina == nil {
		return nil, domain.ErrNotFound
	}
	return s.detectWith(ctx, s.models.Retina, data)
}

func (s *FaceService) detectWith(ctx context.Context, det provider.Detector, data []byte) ([]domain.FaceCoords, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	faces, err := detections(ctx, det, img, s.opts.DetectThreshold)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("detect",
		"faces", len(faces),
		"width", img.Width(),
		"height", img.Height(),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)

	sorted := bbox.SortByConfidence(faces)
	out := make([]domain.FaceCoords, 0, len(sorted))
	for _, b := range sorted {
		out = append(out, coords(b))
	}
	return out, nil
}

// LargestFace finds the largest face, retrying on rotated copies of the image,
// and returns it cropped.
func (s *FaceService) LargestFace(ctx context.Context, data []byte) (*domain.LargestFace, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}

	b, found, err := s.largest(ctx, img)
	if err != nil {
		return nil, err
	}

	crop, err := b.Crop(found.Image)
	if err != nil {
		return nil, domain.ErrNoFaceDetected.WithError(err)
	}
	return s.encode(b, crop, found.Index)
}

// AlignedFace is LargestFace with the crop levelled on the eye line and cut
// to AlignSize×AlignSize.
func (s *FaceService) AlignedFace(ctx context.Context, data []byte) (*domain.LargestFace, error) {
	img, err := decode(data)
	if err != nil {
		return nil, err
	}

	b, found, err := s.largest(ctx, img)
	if err != nil {
		return nil, err
	}

	aligned, err := s.align(b, found.Image)
	if err != nil {
		return nil, err
	}
	return s.encode(b, aligned, found.Index)
}

// Embedding extracts the face vector. When aligned is false the largest face
// is found and aligned first; otherwise the whole upload is treated as a face.
func (s *FaceService) Embedding(ctx context.Context, data []byte, aligned bool) ([]float32, error) {
	if s.models.Embed == nil {
		return nil, domain.ErrNotFound
	}

	img, err := decode(data)
	if err != nil {
		return nil, err
	}

	if !aligned {
		b, found, err := s.largest(ctx, img)
		if err != nil {
			return nil, err
		}
		if img, err = s.align(b, found.Image); err != nil {
			return nil, err
		}
	}

	res, err := s.models.Embed.Detect(ctx, img, 0)
	if err != nil {
		return nil, domain.ErrInference.WithError(err)
	}
	vec, ok := res.(provider.FaceEmbedding)
	if !ok {
		return nil, domain.ErrInference.WithError(fmt.Errorf("extractor returned %T", res))
	}
	return vec, nil
}

func (s *FaceService) largest(ctx context.Context, img *imaging.Image) (bbox.Bbox, face.Orientation, error) {
	retry := face.NewOrientationRetry(s.models.Largest, s.opts.LargestThreshold)
	found, err := retry.Search(ctx, img)
	if err != nil {
		return bbox.Bbox{}, found, domain.ErrInference.WithError(err)
	}
	if !found.Found() {
		s.logger.Debug("no face in any orientation", "attempts", found.Attempts)
		return bbox.Bbox{}, found, domain.ErrNoFaceDetected
	}
	if found.Index > 0 {
		s.logger.Debug("face found after rotation", "rotation", found.Index)
	}

	b, _ := bbox.Largest(found.Faces)
	return b.Clamp(found.Image.Width(), found.Image.Height()), found, nil
}

func (s *FaceService) align(b bbox.Bbox, img *imaging.Image) (*imaging.Image, error) {
	size := image.Pt(s.opts.AlignSize, s.opts.AlignSize)

	aligned, err := b.CropAndAlign(img, size)
	if errors.Is(err, bbox.ErrInsufficientKeypoints) {
		// sem landmarks: recorte simples redimensionado
		crop, cerr := b.Crop(img)
		if cerr != nil {
			return nil, domain.ErrNoFaceDetected.WithError(cerr)
		}
		return crop.ResizeExact(size.X, size.Y), nil
	}
	if err != nil {
		return nil, domain.ErrNoFaceDetected.WithError(err)
	}
	return aligned, nil
}

func (s *FaceService) encode(b bbox.Bbox, img *imaging.Image, rotation int) (*domain.LargestFace, error) {
	encoded, err := img.Base64PNG()
	if err != nil {
		return nil, domain.ErrInternal.WithError(err)
	}
	return &domain.LargestFace{
		Coords:      coords(b),
		CroppedFace: encoded,
		Rotation:    rotation,
	}, nil
}

func decode(data []byte) (*imaging.Image, error) {
	img, err := imaging.Decode(data)
	if err != nil {
		return nil, domain.ErrDecodeFailed.WithError(err)
	}
	return img, nil
}

func detections(ctx context.Context, det provider.Detector, img *imaging.Image, threshold float32) (provider.FaceDetection, error) {
	res, err := det.Detect(ctx, img, threshold)
	if err != nil {
		return nil, domain.ErrInference.WithError(err)
	}
	faces, ok := res.(provider.FaceDetection)
	if !ok {
		return nil, domain.ErrInference.WithError(fmt.Errorf("detector returned %T", res))
	}
	return faces, nil
}

// coords is the wire form of a box: width and height truncate toward zero.
func coords(b bbox.Bbox) domain.FaceCoords {
	return domain.FaceCoords{
		Confidence: b.Confidence,
		Width:      int(b.Width()),
		Height:     int(b.Height()),
	}
}
