package numgrid

import (
	"errors"
	"fmt"

	"gorgonia.org/tensor"
)

// ErrShape is returned when a shape does not fit the data or the requested view.
var ErrShape = errors.New("numgrid: invalid shape")

// Grid is a dense float32 array backed by a gorgonia tensor.
// Model inputs and outputs travel through the pipeline as grids.
type Grid struct {
	dense *tensor.Dense
}

// New wraps data with the given shape. The slice is used as backing storage, not copied.
func New(data []float32, shape ...int) (*Grid, error) {
	size, err := volume(shape)
	if err != nil {
		return nil, err
	}
	if size != len(data) {
		return nil, fmt.Errorf("%w: shape %v needs %d values, got %d", ErrShape, shape, size, len(data))
	}

	return &Grid{
		dense: tensor.New(
			tensor.Of(tensor.Float32),
			tensor.WithShape(shape...),
			tensor.WithBacking(data),
		),
	}, nil
}

// Zeros allocates a zero-filled grid.
func Zeros(shape ...int) (*Grid, error) {
	size, err := volume(shape)
	if err != nil {
		return nil, err
	}
	return New(make([]float32, size), shape...)
}

func volume(shape []int) (int, error) {
	if len(shape) == 0 {
		return 0, fmt.Errorf("%w: empty shape", ErrShape)
	}
	size := 1
	for _, d := range shape {
		if d <= 0 {
			return 0, fmt.Errorf("%w: non-positive dimension in %v", ErrShape, shape)
		}
		size *= d
	}
	return size, nil
}

// Shape returns a copy of the grid dimensions.
func (g *Grid) Shape() []int {
	return append([]int(nil), g.dense.Shape()...)
}

// Dims returns the number of dimensions.
func (g *Grid) Dims() int {
	return g.dense.Dims()
}

// Len returns the number of elements.
func (g *Grid) Len() int {
	return len(g.Data())
}

// Data returns the backing slice in row-major order.
func (g *Grid) Data() []float32 {
	return float32s(g.dense)
}

func float32s(d *tensor.Dense) []float32 {
	switch v := d.Data().(type) {
	case []float32:
		return v
	case float32:
		return []float32{v}
	default:
		return nil
	}
}

// Matrix views the grid as rows of its last dimension.
// A one-dimensional grid is a column: n rows of width 1.
func (g *Grid) Matrix() (rows, cols int) {
	shape := g.dense.Shape()
	if len(shape) == 1 {
		return shape[0], 1
	}
	cols = shape[len(shape)-1]
	return g.Len() / cols, cols
}

// Row returns row i of the Matrix view. The slice aliases the grid.
func (g *Grid) Row(i int) []float32 {
	rows, cols := g.Matrix()
	if i < 0 || i >= rows {
		return nil
	}
	return g.Data()[i*cols : (i+1)*cols]
}

// Reshape returns a copy of the grid with a new shape of the same volume.
func (g *Grid) Reshape(shape ...int) (*Grid, error) {
	size, err := volume(shape)
	if err != nil {
		return nil, err
	}
	if size != g.Len() {
		return nil, fmt.Errorf("%w: cannot reshape %v to %v", ErrShape, g.dense.Shape(), shape)
	}
	clone := g.dense.Clone().(*tensor.Dense)
	if err := clone.Reshape(shape...); err != nil {
		return nil, fmt.Errorf("numgrid reshape: %w", err)
	}
	return &Grid{dense: clone}, nil
}

// Squeeze2D drops leading unit dimensions until two remain.
func (g *Grid) Squeeze2D() (*Grid, error) {
	shape := g.dense.Shape()
	for len(shape) > 2 && shape[0] == 1 {
		shape = shape[1:]
	}
	if len(shape) != 2 {
		return nil, fmt.Errorf("%w: %v is not two-dimensional", ErrShape, g.dense.Shape())
	}
	return g.Reshape(shape...)
}

// Transpose2D returns the materialised transpose of a (squeezable) 2-D grid.
func (g *Grid) Transpose2D() (*Grid, error) {
	flat, err := g.Squeeze2D()
	if err != nil {
		return nil, err
	}
	if err := flat.dense.T(); err != nil {
		return nil, fmt.Errorf("numgrid transpose: %w", err)
	}
	if err := flat.dense.Transpose(); err != nil {
		return nil, fmt.Errorf("numgrid transpose: %w", err)
	}
	return flat, nil
}

// Scale returns a new grid with every element multiplied by s.
func (g *Grid) Scale(s float32) (*Grid, error) {
	out, err := g.dense.MulScalar(s, true)
	if err != nil {
		return nil, fmt.Errorf("numgrid scale: %w", err)
	}
	return &Grid{dense: out}, nil
}
