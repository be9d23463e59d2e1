package imaging

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"

	_ "golang.org/x/image/bmp"
	_ "golang.org/x/image/webp"
)

var (
	ErrDecode     = errors.New("imaging: cannot decode image")
	ErrEmpty      = errors.New("imaging: empty image")
	ErrOutOfRange = errors.New("imaging: region outside image")
)

// Image is an owned RGB pixel buffer with its origin at (0,0).
// Alpha is kept opaque; transparency from the source is dropped on conversion.
type Image struct {
	rgba *image.RGBA
}

// New returns a black w×h image.
func New(w, h int) *Image {
	rgba := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(rgba, rgba.Bounds(), image.NewUniform(color.RGBA{A: 0xff}), image.Point{}, draw.Src)
	return &Image{rgba: rgba}
}

// FromImage copies any image.Image into a new buffer.
func FromImage(src image.Image) *Image {
	b := src.Bounds()
	dst := New(b.Dx(), b.Dy())
	draw.Draw(dst.rgba, dst.rgba.Bounds(), src, b.Min, draw.Over)
	return dst
}

// Decode reads a PNG, JPEG, GIF, BMP or WebP payload.
func Decode(data []byte) (*Image, error) {
	if len(data) == 0 {
		return nil, ErrEmpty
	}
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if src.Bounds().Empty() {
		return nil, ErrEmpty
	}
	return FromImage(src), nil
}

// DecodeBase64 decodes a standard base64 string and then the image it carries.
func DecodeBase64(s string) (*Image, error) {
	raw, err := base64.StdEncoding.DecodeString(s)
	if err != nil {
		return nil, fmt.Errorf("%w: base64: %v", ErrDecode, err)
	}
	return Decode(raw)
}

func (m *Image) Width() int  { return m.rgba.Rect.Dx() }
func (m *Image) Height() int { return m.rgba.Rect.Dy() }

// Bounds returns the image rectangle, always anchored at the origin.
func (m *Image) Bounds() image.Rectangle { return m.rgba.Rect }

// Image exposes the buffer as a standard library image.
func (m *Image) Image() image.Image { return m.rgba }

// RGB returns the colour at (x, y). Callers keep x, y in bounds.
func (m *Image) RGB(x, y int) (r, g, b uint8) {
	i := m.rgba.PixOffset(x, y)
	p := m.rgba.Pix[i : i+3 : i+3]
	return p[0], p[1], p[2]
}

// SetRGB writes an opaque colour at (x, y).
func (m *Image) SetRGB(x, y int, r, g, b uint8) {
	i := m.rgba.PixOffset(x, y)
	p := m.rgba.Pix[i : i+4 : i+4]
	p[0], p[1], p[2], p[3] = r, g, b, 0xff
}

// EncodePNG serialises the image as PNG.
func (m *Image) EncodePNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, m.rgba); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// Base64PNG is EncodePNG followed by standard base64.
func (m *Image) Base64PNG() (string, error) {
	data, err := m.EncodePNG()
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}

// Clone returns an independent copy.
func (m *Image) Clone() *Image {
	rgba := image.NewRGBA(m.rgba.Rect)
	copy(rgba.Pix, m.rgba.Pix)
	return &Image{rgba: rgba}
}
