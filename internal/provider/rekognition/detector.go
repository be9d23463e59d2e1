package rekognition

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/rekognition"
	"github.com/aws/aws-sdk-go-v2/service/rekognition/types"

	"github.com/saturnino-fabrica-de-software/soma/internal/bbox"
	"github.com/saturnino-fabrica-de-software/soma/internal/imaging"
	"github.com/saturnino-fabrica-de-software/soma/internal/provider"
)

// maxImageSize is the maximum image size supported by AWS Rekognition (5MB)
const maxImageSize = 5 * 1024 * 1024

// landmarkOrder matches the 5-point layout produced by the local models.
var landmarkOrder = []types.LandmarkType{
	types.LandmarkTypeEyeLeft,
	types.LandmarkTypeEyeRight,
	types.LandmarkTypeNose,
	types.LandmarkTypeMouthLeft,
	types.LandmarkTypeMouthRight,
}

// Detector implements provider.Detector using the Rekognition DetectFaces API.
// Rekognition returns boxes as ratios of the image size, which is the
// network space of this backend with a 1×1 reference.
type Detector struct {
	api    API
	cfg    Config
	logger *slog.Logger
}

var _ provider.Detector = (*Detector)(nil)

func NewDetector(api API, cfg Config, logger *slog.Logger) *Detector {
	return &Detector{api: api, cfg: cfg, logger: logger}
}

func (d *Detector) Detect(ctx context.Context, img *imaging.Image, threshold float32) (provider.Result, error) {
	start := time.Now()

	payload, err := img.EncodePNG()
	if err != nil {
		return nil, err
	}
	if len(payload) > maxImageSize {
		return nil, fmt.Errorf("%w: image too large (%d bytes, maximum %d)", ErrInvalidImage, len(payload), maxImageSize)
	}

	output, err := d.api.DetectFaces(ctx, &rekognition.DetectFacesInput{
		Image:      &types.Image{Bytes: payload},
		Attributes: []types.Attribute{types.AttributeDefault},
	})
	if err != nil {
		return nil, translateError(err)
	}

	faces := make([]bbox.Bbox, 0, len(output.FaceDetails))
	for _, detail := range output.FaceDetails {
		if detail.BoundingBox == nil {
			continue
		}
		confidence := aws.ToFloat32(detail.Confidence) / 100
		if confidence < threshold {
			continue
		}
		if calculateQualityScore(detail.Quality) < d.cfg.MinQuality {
			continue
		}

		left := aws.ToFloat32(detail.BoundingBox.Left)
		top := aws.ToFloat32(detail.BoundingBox.Top)
		b := bbox.New(
			left, top,
			left+aws.ToFloat32(detail.BoundingBox.Width), top+aws.ToFloat32(detail.BoundingBox.Height),
			confidence,
			landmarks(detail.Landmarks),
		)

		scaled, err := b.ApplyImageScale(img.Width(), img.Height(), 1, 1)
		if err != nil {
			return nil, err
		}
		faces = append(faces, scaled)
	}

	d.logger.Debug("rekognition detect",
		"faces", len(faces),
		"returned", len(output.FaceDetails),
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return provider.FaceDetection(bbox.SortByConfidence(faces)), nil
}

// landmarks returns the five points in model order, or nil when any is missing.
// The eyes are ordered left to right as they appear in the image.
func landmarks(marks []types.Landmark) []bbox.Point {
	byType := make(map[types.LandmarkType]bbox.Point, len(marks))
	for _, m := range marks {
		if m.X == nil || m.Y == nil {
			continue
		}
		byType[m.Type] = bbox.Point{X: *m.X, Y: *m.Y}
	}

	points := make([]bbox.Point, 0, len(landmarkOrder))
	for _, t := range landmarkOrder {
		p, ok := byType[t]
		if !ok {
			return nil
		}
		points = append(points, p)
	}
	if points[0].X > points[1].X {
		points[0], points[1] = points[1], points[0]
	}
	return points
}

// calculateQualityScore computes an overall quality score from Rekognition quality metrics
// Returns a score between 0.0 (poor quality) and 1.0 (excellent quality)
func calculateQualityScore(quality *types.ImageQuality) float64 {
	if quality == nil {
		return 0.0
	}

	brightness := float64(aws.ToFloat32(quality.Brightness)) / 100.0
	sharpness := float64(aws.ToFloat32(quality.Sharpness)) / 100.0

	// Weight sharpness more heavily as it's critical for face recognition
	return brightness*0.3 + sharpness*0.7
}
