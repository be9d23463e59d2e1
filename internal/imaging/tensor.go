package imaging

import (
	"github.com/saturnino-fabrica-de-software/soma/internal/numgrid"
)

// Norm maps a channel value v to (v - Mean) * Scale.
type Norm struct {
	Mean  float32
	Scale float32
}

var (
	// NormCentered is the (v - 127.5) / 128 mapping used by anchor-grid and embedding models.
	NormCentered = Norm{Mean: 127.5, Scale: 1.0 / 128}
	// NormUnit maps channel values into [0, 1].
	NormUnit = Norm{Mean: 0, Scale: 1.0 / 255}
)

// Tensor lays the image out as a [1, 3, H, W] planar RGB grid.
func (m *Image) Tensor(n Norm) (*numgrid.Grid, error) {
	w, h := m.Width(), m.Height()
	plane := w * h
	data := make([]float32, 3*plane)

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, b := m.RGB(x, y)
			i := y*w + x
			data[i] = (float32(r) - n.Mean) * n.Scale
			data[plane+i] = (float32(g) - n.Mean) * n.Scale
			data[2*plane+i] = (float32(b) - n.Mean) * n.Scale
		}
	}
	return numgrid.New(data, 1, 3, h, w)
}
