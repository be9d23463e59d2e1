package imaging

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/nfnt/resize"
)

// ResizeExact scales to w×h, ignoring aspect ratio.
func (m *Image) ResizeExact(w, h int) *Image {
	if w == m.Width() && h == m.Height() {
		return m.Clone()
	}
	return FromImage(resize.Resize(uint(w), uint(h), m.rgba, resize.Bilinear))
}

// ResizeFit scales to w×h and pastes the result at the top-left of a canvas
// of the given size filled with fill. The canvas must be at least w×h.
func (m *Image) ResizeFit(w, h int, canvas image.Point, fill color.RGBA) (*Image, error) {
	if w > canvas.X || h > canvas.Y || w <= 0 || h <= 0 {
		return nil, fmt.Errorf("%w: %dx%d does not fit in %v", ErrOutOfRange, w, h, canvas)
	}
	scaled := m.ResizeExact(w, h)

	out := &Image{rgba: image.NewRGBA(image.Rect(0, 0, canvas.X, canvas.Y))}
	draw.Draw(out.rgba, out.rgba.Bounds(), image.NewUniform(fill), image.Point{}, draw.Src)
	draw.Draw(out.rgba, image.Rect(0, 0, w, h), scaled.rgba, image.Point{}, draw.Src)
	return out, nil
}

// Crop copies the pixels inside r, which must lie within the image.
func (m *Image) Crop(r image.Rectangle) (*Image, error) {
	if r.Empty() || !r.In(m.rgba.Rect) {
		return nil, fmt.Errorf("%w: %v not in %v", ErrOutOfRange, r, m.rgba.Rect)
	}
	return FromImage(m.rgba.SubImage(r)), nil
}

// Rotate turns the image clockwise by index quarter turns:
// 0 → 0°, 1 → 90°, 2 → 180°, 3 → 270°. Other indices return a copy.
func (m *Image) Rotate(index int) *Image {
	w, h := m.Width(), m.Height()

	var out *Image
	var dst func(x, y int) (int, int)
	switch index {
	case 1:
		out = New(h, w)
		dst = func(x, y int) (int, int) { return h - 1 - y, x }
	case 2:
		out = New(w, h)
		dst = func(x, y int) (int, int) { return w - 1 - x, h - 1 - y }
	case 3:
		out = New(h, w)
		dst = func(x, y int) (int, int) { return y, w - 1 - x }
	default:
		return m.Clone()
	}

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := m.RGB(x, y)
			dx, dy := dst(x, y)
			out.SetRGB(dx, dy, r, g, b)
		}
	}
	return out
}

// RotateAbout rotates the image by theta radians about its centre, keeping the
// original size. With y growing downward, positive theta turns content
// clockwise as displayed. Samples are bilinear; uncovered pixels get fill.
func (m *Image) RotateAbout(theta float64, fill color.RGBA) *Image {
	w, h := m.Width(), m.Height()
	out := &Image{rgba: image.NewRGBA(m.rgba.Rect)}
	cx, cy := float64(w)/2, float64(h)/2
	sin, cos := math.Sincos(theta)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			dx, dy := float64(x)-cx, float64(y)-cy
			sx := cos*dx + sin*dy + cx
			sy := -sin*dx + cos*dy + cy
			if sx < 0 || sy < 0 || sx > float64(w-1) || sy > float64(h-1) {
				out.SetRGB(x, y, fill.R, fill.G, fill.B)
				continue
			}
			r, g, b := m.bilinear(sx, sy)
			out.SetRGB(x, y, r, g, b)
		}
	}
	return out
}

// RotatePoint maps (x, y) through the same transform RotateAbout applies to
// an image of size w×h.
func RotatePoint(x, y, theta float64, w, h int) (float64, float64) {
	cx, cy := float64(w)/2, float64(h)/2
	sin, cos := math.Sincos(theta)
	dx, dy := x-cx, y-cy
	return cos*dx - sin*dy + cx, sin*dx + cos*dy + cy
}

func (m *Image) bilinear(sx, sy float64) (uint8, uint8, uint8) {
	x0, y0 := int(sx), int(sy)
	x1, y1 := min(x0+1, m.Width()-1), min(y0+1, m.Height()-1)
	fx, fy := sx-float64(x0), sy-float64(y0)

	r00, g00, b00 := m.RGB(x0, y0)
	r10, g10, b10 := m.RGB(x1, y0)
	r01, g01, b01 := m.RGB(x0, y1)
	r11, g11, b11 := m.RGB(x1, y1)

	mix := func(c00, c10, c01, c11 uint8) uint8 {
		top := float64(c00)*(1-fx) + float64(c10)*fx
		bottom := float64(c01)*(1-fx) + float64(c11)*fx
		return uint8(math.Round(top*(1-fy) + bottom*fy))
	}
	return mix(r00, r10, r01, r11), mix(g00, g10, g01, g11), mix(b00, b10, b01, b11)
}
