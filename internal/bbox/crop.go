package bbox

import (
	"fmt"
	"image"
	"image/color"
	"math"

	"github.com/saturnino-fabrica-de-software/soma/internal/imaging"
)

var black = color.RGBA{A: 0xff}

// Rect returns the integer pixel rectangle of the box. Origin and size are truncated.
func (b Bbox) Rect() image.Rectangle {
	x, y := int(b.X1), int(b.Y1)
	return image.Rect(x, y, x+int(b.Width()), y+int(b.Height()))
}

// Crop copies the box region out of img.
func (b Bbox) Crop(img *imaging.Image) (*imaging.Image, error) {
	if b.Space != SpacePixel {
		return nil, fmt.Errorf("%w: cropping a %s box", ErrWrongSpace, b.Space)
	}
	r := b.Rect()
	if r.Empty() || !r.In(img.Bounds()) {
		return nil, fmt.Errorf("%w: %v in %v", ErrOutOfBounds, r, img.Bounds())
	}
	return img.Crop(r)
}

// CropAndAlign crops the box, rotates the crop so the line between the two eye
// keypoints is horizontal, and cuts a size.X×size.Y window whose horizontal
// centre and upper third sit on the eye midpoint. Pixels the rotated crop does
// not cover are black.
func (b Bbox) CropAndAlign(img *imaging.Image, size image.Point) (*imaging.Image, error) {
	if len(b.Keypoints) < 2 {
		return nil, ErrInsufficientKeypoints
	}
	if size.X <= 0 || size.Y <= 0 {
		return nil, fmt.Errorf("%w: output size %v", ErrOutOfBounds, size)
	}

	face, err := b.Crop(img)
	if err != nil {
		return nil, err
	}

	left, right := b.Keypoints[0], b.Keypoints[1]
	roll := eyeRoll(left, right)
	rotated := face.RotateAbout(-roll, black)

	ex := float64((left.X+right.X)/2 - float32(b.Rect().Min.X))
	ey := float64((left.Y+right.Y)/2 - float32(b.Rect().Min.Y))
	ex, ey = imaging.RotatePoint(ex, ey, -roll, face.Width(), face.Height())

	originX := int(max(0, ex-float64(size.X)/2))
	originY := int(max(0, ey-float64(size.Y)/3))

	out := imaging.New(size.X, size.Y)
	for y := 0; y < size.Y; y++ {
		sy := originY + y
		if sy >= rotated.Height() {
			break
		}
		for x := 0; x < size.X; x++ {
			sx := originX + x
			if sx >= rotated.Width() {
				break
			}
			r, g, bl := rotated.RGB(sx, sy)
			out.SetRGB(x, y, r, g, bl)
		}
	}
	return out, nil
}

// eyeRoll is the angle of the left→right eye vector against the x axis.
func eyeRoll(left, right Point) float64 {
	return math.Atan2(float64(right.Y-left.Y), float64(right.X-left.X))
}
