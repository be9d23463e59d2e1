package scrfd

import (
	"errors"
	"fmt"

	"github.com/saturnino-fabrica-de-software/soma/internal/bbox"
	"github.com/saturnino-fabrica-de-software/soma/internal/numgrid"
)

var ErrShapeMismatch = errors.New("scrfd: output shape mismatch")

// Params describes the stride pyramid of an anchor-grid model.
type Params struct {
	InputSize  int
	Strides    []int
	NumAnchors int
	Threshold  float32
	Keypoints  bool
}

func DefaultParams() Params {
	return Params{
		InputSize:  640,
		Strides:    []int{8, 16, 32},
		NumAnchors: 2,
		Threshold:  0.5,
		Keypoints:  true,
	}
}

// Decode turns per-stride outputs into network-space boxes.
//
// outputs holds the score tensors for every stride, then the box deltas, then
// (with Keypoints) the keypoint deltas, all in stride order. Detections from
// every stride are accumulated. A score passes when it is positive and at
// least Threshold.
func Decode(outputs []*numgrid.Grid, p Params) ([]bbox.Bbox, error) {
	levels := len(p.Strides)
	groups := 2
	if p.Keypoints {
		groups = 3
	}
	if levels == 0 || p.NumAnchors <= 0 || p.InputSize <= 0 {
		return nil, fmt.Errorf("%w: invalid params %+v", ErrShapeMismatch, p)
	}
	if len(outputs) < groups*levels {
		return nil, fmt.Errorf("%w: need %d outputs, got %d", ErrShapeMismatch, groups*levels, len(outputs))
	}

	dets := []bbox.Bbox{}
	for i, stride := range p.Strides {
		side := p.InputSize / stride
		anchors := side * side * p.NumAnchors

		scores, deltas := outputs[i], outputs[i+levels]
		if err := expectRows(scores, anchors, 1, "scores", stride); err != nil {
			return nil, err
		}
		if err := expectRows(deltas, anchors, 4, "boxes", stride); err != nil {
			return nil, err
		}

		s := float32(stride)
		// deltas are in stride units
		boxes, err := deltas.Scale(s)
		if err != nil {
			return nil, err
		}

		var kpsOffsets *numgrid.Grid
		if p.Keypoints {
			kpsDeltas := outputs[i+2*levels]
			if err := expectRows(kpsDeltas, anchors, 0, "keypoints", stride); err != nil {
				return nil, err
			}
			if kpsOffsets, err = kpsDeltas.Scale(s); err != nil {
				return nil, err
			}
		}

		for row := 0; row < anchors; row++ {
			score := scores.Row(row)[0]
			if !(score > 0) || score < p.Threshold {
				continue
			}

			cell := row / p.NumAnchors
			cx := float32(cell%side) * s
			cy := float32(cell/side) * s

			d := boxes.Row(row)

			var kps []bbox.Point
			if kpsOffsets != nil {
				k := kpsOffsets.Row(row)
				kps = make([]bbox.Point, len(k)/2)
				for j := range kps {
					kps[j] = bbox.Point{X: cx + k[2*j], Y: cy + k[2*j+1]}
				}
			}

			dets = append(dets, bbox.New(cx-d[0], cy-d[1], cx+d[2], cy+d[3], score, kps))
		}
	}
	return dets, nil
}

// expectRows checks the row count and, when cols > 0, the row width.
// Keypoint rows only need an even width.
func expectRows(g *numgrid.Grid, rows, cols int, what string, stride int) error {
	r, c := g.Matrix()
	if r != rows {
		return fmt.Errorf("%w: stride %d %s has %d rows, want %d", ErrShapeMismatch, stride, what, r, rows)
	}
	if cols > 0 && c != cols {
		return fmt.Errorf("%w: stride %d %s rows are %d wide, want %d", ErrShapeMismatch, stride, what, c, cols)
	}
	if cols == 0 && c%2 != 0 {
		return fmt.Errorf("%w: stride %d %s rows are %d wide, want pairs", ErrShapeMismatch, stride, what, c)
	}
	return nil
}
