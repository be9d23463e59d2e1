package imaging

import (
	"image"
	"image/color"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filled(w, h int, c color.RGBA) *Image {
	img := New(w, h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetRGB(x, y, c.R, c.G, c.B)
		}
	}
	return img
}

func TestDecode(t *testing.T) {
	t.Run("empty payload", func(t *testing.T) {
		_, err := Decode(nil)
		assert.ErrorIs(t, err, ErrEmpty)
	})

	t.Run("not an image", func(t *testing.T) {
		_, err := Decode([]byte("definitely not a picture"))
		assert.ErrorIs(t, err, ErrDecode)
	})

	t.Run("png payload", func(t *testing.T) {
		src := New(4, 3)
		src.SetRGB(2, 1, 10, 20, 30)
		data, err := src.EncodePNG()
		require.NoError(t, err)

		img, err := Decode(data)
		require.NoError(t, err)
		assert.Equal(t, 4, img.Width())
		assert.Equal(t, 3, img.Height())
		r, g, b := img.RGB(2, 1)
		assert.Equal(t, []uint8{10, 20, 30}, []uint8{r, g, b})
	})
}

func TestDecodeBase64(t *testing.T) {
	src := filled(2, 2, color.RGBA{R: 200, A: 255})
	encoded, err := src.Base64PNG()
	require.NoError(t, err)

	img, err := DecodeBase64(encoded)
	require.NoError(t, err)
	r, _, _ := img.RGB(1, 1)
	assert.Equal(t, uint8(200), r)

	_, err = DecodeBase64("***")
	assert.ErrorIs(t, err, ErrDecode)
}

func TestNew_IsOpaqueBlack(t *testing.T) {
	img := New(2, 2)
	assert.Equal(t, color.RGBA{A: 255}, img.Image().At(1, 1))
}

func TestImage_Rotate(t *testing.T) {
	src := New(3, 2)
	src.SetRGB(0, 0, 255, 0, 0)

	tests := []struct {
		index        int
		wantW, wantH int
		redX, redY   int
	}{
		{index: 0, wantW: 3, wantH: 2, redX: 0, redY: 0},
		{index: 1, wantW: 2, wantH: 3, redX: 1, redY: 0},
		{index: 2, wantW: 3, wantH: 2, redX: 2, redY: 1},
		{index: 3, wantW: 2, wantH: 3, redX: 0, redY: 2},
		{index: 9, wantW: 3, wantH: 2, redX: 0, redY: 0},
	}

	for _, tt := range tests {
		out := src.Rotate(tt.index)
		assert.Equal(t, tt.wantW, out.Width(), "index %d", tt.index)
		assert.Equal(t, tt.wantH, out.Height(), "index %d", tt.index)
		r, _, _ := out.RGB(tt.redX, tt.redY)
		assert.Equal(t, uint8(255), r, "index %d", tt.index)
	}
}

func TestImage_RotateAbout_ZeroIsIdentity(t *testing.T) {
	src := New(5, 4)
	for y := 0; y < 4; y++ {
		for x := 0; x < 5; x++ {
			src.SetRGB(x, y, uint8(x*40), uint8(y*60), 7)
		}
	}

	out := src.RotateAbout(0, color.RGBA{})
	assert.Equal(t, src.rgba.Pix, out.rgba.Pix)
}

func TestImage_RotateAbout_FillsUncovered(t *testing.T) {
	src := filled(10, 10, color.RGBA{R: 255, G: 255, B: 255, A: 255})

	out := src.RotateAbout(math.Pi/4, color.RGBA{A: 255})
	r, g, b := out.RGB(0, 0)
	assert.Equal(t, []uint8{0, 0, 0}, []uint8{r, g, b})
	r, _, _ = out.RGB(5, 5)
	assert.Equal(t, uint8(255), r)
}

func TestRotatePoint(t *testing.T) {
	x, y := RotatePoint(3, 7, 0, 10, 10)
	assert.InDelta(t, 3, x, 1e-9)
	assert.InDelta(t, 7, y, 1e-9)

	x, y = RotatePoint(6, 5, math.Pi/2, 10, 10)
	assert.InDelta(t, 5, x, 1e-9)
	assert.InDelta(t, 6, y, 1e-9)
}

func TestImage_Crop(t *testing.T) {
	src := New(10, 8)
	src.SetRGB(3, 2, 9, 9, 9)

	out, err := src.Crop(image.Rect(3, 2, 7, 6))
	require.NoError(t, err)
	assert.Equal(t, 4, out.Width())
	assert.Equal(t, 4, out.Height())
	r, _, _ := out.RGB(0, 0)
	assert.Equal(t, uint8(9), r)

	_, err = src.Crop(image.Rect(8, 0, 12, 4))
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = src.Crop(image.Rect(2, 2, 2, 4))
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestImage_ResizeExact(t *testing.T) {
	src := filled(40, 20, color.RGBA{R: 100, G: 150, B: 200, A: 255})

	out := src.ResizeExact(16, 16)
	assert.Equal(t, 16, out.Width())
	assert.Equal(t, 16, out.Height())
	r, g, b := out.RGB(8, 8)
	assert.InDelta(t, 100, int(r), 1)
	assert.InDelta(t, 150, int(g), 1)
	assert.InDelta(t, 200, int(b), 1)
}

func TestImage_ResizeFit(t *testing.T) {
	src := filled(40, 20, color.RGBA{R: 255, A: 255})
	fill := color.RGBA{R: 144, G: 144, B: 144, A: 255}

	out, err := src.ResizeFit(32, 16, image.Pt(32, 32), fill)
	require.NoError(t, err)
	assert.Equal(t, 32, out.Width())
	assert.Equal(t, 32, out.Height())

	r, g, _ := out.RGB(31, 31)
	assert.Equal(t, uint8(144), r)
	assert.Equal(t, uint8(144), g)

	r, g, _ = out.RGB(10, 5)
	assert.InDelta(t, 255, int(r), 1)
	assert.InDelta(t, 0, int(g), 1)

	_, err = src.ResizeFit(40, 16, image.Pt(32, 32), fill)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestImage_Tensor(t *testing.T) {
	img := New(2, 1)
	img.SetRGB(0, 0, 255, 0, 51)
	img.SetRGB(1, 0, 0, 255, 0)

	grid, err := img.Tensor(NormUnit)
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3, 1, 2}, grid.Shape())

	data := grid.Data()
	assert.InDelta(t, 1.0, data[0], 1e-6)
	assert.InDelta(t, 0.0, data[1], 1e-6)
	assert.InDelta(t, 0.0, data[2], 1e-6)
	assert.InDelta(t, 1.0, data[3], 1e-6)
	assert.InDelta(t, 0.2, data[4], 1e-6)

	centered, err := img.Tensor(NormCentered)
	require.NoError(t, err)
	assert.InDelta(t, (255-127.5)/128, centered.Data()[0], 1e-6)
}
