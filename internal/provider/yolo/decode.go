package yolo

import (
	"errors"
	"fmt"
	"math"

	"github.com/saturnino-fabrica-de-software/soma/internal/bbox"
	"github.com/saturnino-fabrica-de-software/soma/internal/numgrid"
)

var ErrShapeMismatch = errors.New("yolo: output shape mismatch")

// Decode reads a [1, C, N] or [C, N] head where each of the N candidates is
// (cx, cy, w, h, confidence) followed by (x, y, visibility) keypoint triples.
// Candidates scoring at least threshold become network-space boxes.
func Decode(out *numgrid.Grid, threshold float32) ([]bbox.Bbox, error) {
	rows, err := out.Transpose2D()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrShapeMismatch, err)
	}

	n, c := rows.Matrix()
	if c < 5 {
		return nil, fmt.Errorf("%w: candidates have %d values, need at least 5", ErrShapeMismatch, c)
	}

	dets := []bbox.Bbox{}
	for i := 0; i < n; i++ {
		row := rows.Row(i)
		conf := row[4]
		if math.IsNaN(float64(conf)) || conf < threshold {
			continue
		}

		var kps []bbox.Point
		for j := 5; j+1 < c; j += 3 {
			kps = append(kps, bbox.Point{X: row[j], Y: row[j+1]})
		}

		cx, cy, w, h := row[0], row[1], row[2], row[3]
		dets = append(dets, bbox.New(cx-w/2, cy-h/2, cx+w/2, cy+h/2, conf, kps))
	}
	return dets, nil
}

// FitScale returns the factor that fits a w0×h0 image inside w1×h1 while
// keeping its aspect ratio, and the rounded size of the fitted image.
func FitScale(w0, h0, w1, h1 int) (r float32, wNew, hNew int) {
	r = min(float32(w1)/float32(w0), float32(h1)/float32(h0))
	wNew = max(1, int(math.Round(float64(float32(w0)*r))))
	hNew = max(1, int(math.Round(float64(float32(h0)*r))))
	return r, wNew, hNew
}
