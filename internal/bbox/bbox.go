package bbox

import (
	"errors"
	"fmt"
)

var (
	ErrWrongSpace            = errors.New("bbox: wrong coordinate space")
	ErrInvalidScale          = errors.New("bbox: scale must be positive")
	ErrOutOfBounds           = errors.New("bbox: region outside image")
	ErrInsufficientKeypoints = errors.New("bbox: alignment needs two eye keypoints")
)

// Space tells which coordinate frame a box lives in.
type Space uint8

const (
	// SpaceNetwork is the frame of the detector input tensor.
	SpaceNetwork Space = iota
	// SpacePixel is the frame of the original image.
	SpacePixel
)

func (s Space) String() string {
	switch s {
	case SpaceNetwork:
		return "network"
	case SpacePixel:
		return "pixel"
	default:
		return fmt.Sprintf("space(%d)", uint8(s))
	}
}

type Point struct {
	X, Y float32
}

// Bbox is a corner-form detection with optional landmarks.
// Landmarks follow the 5-point order: left eye, right eye, nose, left mouth, right mouth.
type Bbox struct {
	X1, Y1     float32
	X2, Y2     float32
	Confidence float32
	Keypoints  []Point
	Space      Space
}

// CenterForm is the (cx, cy, w, h) view of a pixel-space box.
type CenterForm struct {
	CX, CY     float32
	W, H       float32
	Confidence float32
	Keypoints  []Point
}

// New builds a network-space box, swapping corners so that x1<=x2 and y1<=y2.
func New(x1, y1, x2, y2, confidence float32, keypoints []Point) Bbox {
	if x1 > x2 {
		x1, x2 = x2, x1
	}
	if y1 > y2 {
		y1, y2 = y2, y1
	}
	return Bbox{
		X1: x1, Y1: y1, X2: x2, Y2: y2,
		Confidence: confidence,
		Keypoints:  keypoints,
		Space:      SpaceNetwork,
	}
}

func (b Bbox) Width() float32  { return b.X2 - b.X1 }
func (b Bbox) Height() float32 { return b.Y2 - b.Y1 }

// Area is negative for a box whose corners are inverted.
func (b Bbox) Area() float32 { return b.Width() * b.Height() }

func (b Bbox) Center() Point {
	return Point{X: (b.X1 + b.X2) / 2, Y: (b.Y1 + b.Y2) / 2}
}

// ApplyImageScale projects a network-space box into the pixel space of an image
// of size refW×refH, where (xScale, yScale) is the extent of the network region
// that covered the image.
func (b Bbox) ApplyImageScale(refW, refH int, xScale, yScale float32) (Bbox, error) {
	if b.Space != SpaceNetwork {
		return Bbox{}, fmt.Errorf("%w: projecting a %s box", ErrWrongSpace, b.Space)
	}
	if xScale <= 0 || yScale <= 0 {
		return Bbox{}, fmt.Errorf("%w: %gx%g", ErrInvalidScale, xScale, yScale)
	}

	fx := float32(refW) / xScale
	fy := float32(refH) / yScale

	var kps []Point
	if b.Keypoints != nil {
		kps = make([]Point, len(b.Keypoints))
		for i, p := range b.Keypoints {
			kps[i] = Point{X: p.X * fx, Y: p.Y * fy}
		}
	}

	return Bbox{
		X1: b.X1 * fx, Y1: b.Y1 * fy,
		X2: b.X2 * fx, Y2: b.Y2 * fy,
		Confidence: b.Confidence,
		Keypoints:  kps,
		Space:      SpacePixel,
	}, nil
}

// ToCenterForm converts a pixel-space box to centre form.
func (b Bbox) ToCenterForm() (CenterForm, error) {
	if b.Space != SpacePixel {
		return CenterForm{}, fmt.Errorf("%w: center form of a %s box", ErrWrongSpace, b.Space)
	}
	c := b.Center()
	return CenterForm{
		CX: c.X, CY: c.Y,
		W: b.Width(), H: b.Height(),
		Confidence: b.Confidence,
		Keypoints:  b.Keypoints,
	}, nil
}

// Clamp clips the box corners to [0,w]×[0,h]. Keypoints are left as they are.
func (b Bbox) Clamp(w, h int) Bbox {
	clip := func(v float32, hi int) float32 {
		return max(0, min(v, float32(hi)))
	}
	b.X1, b.X2 = clip(b.X1, w), clip(b.X2, w)
	b.Y1, b.Y2 = clip(b.Y1, h), clip(b.Y2, h)
	return b
}
