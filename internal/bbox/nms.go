package bbox

import (
	"cmp"
	"slices"
)

// IoU is the intersection over union of two boxes, 0 when the union is not positive.
func IoU(a, b Bbox) float32 {
	w := max(0, min(a.X2, b.X2)-max(a.X1, b.X1))
	h := max(0, min(a.Y2, b.Y2)-max(a.Y1, b.Y1))
	inter := w * h

	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0
	}
	return inter / union
}

// SortByConfidence returns a copy ordered by descending confidence.
// Equal confidences keep their input order.
func SortByConfidence(boxes []Bbox) []Bbox {
	sorted := slices.Clone(boxes)
	slices.SortStableFunc(sorted, func(a, b Bbox) int {
		return cmp.Compare(b.Confidence, a.Confidence)
	})
	return sorted
}

// NMS greedily keeps the most confident box and drops every remaining box
// overlapping it by more than iouThreshold, until none are left.
func NMS(boxes []Bbox, iouThreshold float32) []Bbox {
	if len(boxes) == 0 {
		return []Bbox{}
	}

	sorted := SortByConfidence(boxes)
	suppressed := make([]bool, len(sorted))
	kept := make([]Bbox, 0, len(sorted))

	for i := range sorted {
		if suppressed[i] {
			continue
		}
		kept = append(kept, sorted[i])
		for j := i + 1; j < len(sorted); j++ {
			if !suppressed[j] && IoU(sorted[i], sorted[j]) > iouThreshold {
				suppressed[j] = true
			}
		}
	}
	return kept
}

// Top returns the most confident box.
func Top(boxes []Bbox) (Bbox, bool) {
	if len(boxes) == 0 {
		return Bbox{}, false
	}
	best := boxes[0]
	for _, b := range boxes[1:] {
		if b.Confidence > best.Confidence {
			best = b
		}
	}
	return best, true
}

// Largest returns the box with the greatest area; the first wins a tie.
func Largest(boxes []Bbox) (Bbox, bool) {
	if len(boxes) == 0 {
		return Bbox{}, false
	}
	best := boxes[0]
	for _, b := range boxes[1:] {
		if b.Area() > best.Area() {
			best = b
		}
	}
	return best, true
}
