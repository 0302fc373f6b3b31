// Package render draws detected landmarks onto a blank canvas.
package render

import (
	"image"

	"github.com/chaz8081/signspeak/internal/landmark"
)

// Segment is a line between two projected points.
type Segment struct {
	From, To image.Point
}

// Project converts a normalized landmark to pixel coordinates, truncating
// toward zero.
func Project(lm landmark.Landmark, width, height int) image.Point {
	return image.Pt(int(lm.X*float64(width)), int(lm.Y*float64(height)))
}

// Points projects every valid landmark.
func Points(lms []landmark.Landmark, width, height int) []image.Point {
	out := make([]image.Point, 0, len(lms))
	for _, lm := range lms {
		if lm.Valid() {
			out = append(out, Project(lm, width, height))
		}
	}
	return out
}

// Segments returns the lines to draw for conns. A connection is dropped
// when either end is in skip, out of range, missing, or less visible than
// minVisibility.
func Segments(lms []landmark.Landmark, conns []landmark.Connection, skip map[int]bool,
	minVisibility float64, width, height int) []Segment {
	out := make([]Segment, 0, len(conns))
	for _, c := range conns {
		a, b := c[0], c[1]
		if skip[a] || skip[b] {
			continue
		}
		if a >= len(lms) || b >= len(lms) {
			continue
		}
		la, lb := lms[a], lms[b]
		if !la.Valid() || !lb.Valid() {
			continue
		}
		if la.Visibility < minVisibility || lb.Visibility < minVisibility {
			continue
		}
		out = append(out, Segment{From: Project(la, width, height), To: Project(lb, width, height)})
	}
	return out
}

// SkipSet builds a lookup set from a list of landmark indices.
func SkipSet(indices []int) map[int]bool {
	set := make(map[int]bool, len(indices))
	for _, i := range indices {
		set[i] = true
	}
	return set
}
