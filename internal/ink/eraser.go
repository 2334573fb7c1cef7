package ink

import (
	"math"

	"InkPDF/internal/render"
	"InkPDF/internal/state"
)

// DefaultEraseStride is the spacing, in page pixels, of the points sampled
// along a stored segment when testing it against the eraser.
const DefaultEraseStride = 1.0

// Eraser removes whole draw-order groups touched by an eraser gesture.
type Eraser struct {
	// Radius is the hit distance in page pixels.
	Radius float64
	// Stride is the interpolation step along stored segments.
	Stride float64
}

// Hits returns the draw-order groups of segs that lie within Radius of any
// eraser sample. samples and the page size are in page pixels. bounds may
// be nil; when given it is used to skip groups that cannot be hit.
func (e Eraser) Hits(samples []render.Point, segs []state.Segment, pageW, pageH float64, bounds *state.GroupBounds) map[int64]bool {
	hit := make(map[int64]bool)
	if pageW <= 0 || pageH <= 0 {
		return hit
	}
	for _, p := range samples {
		for _, s := range segs {
			if hit[s.DrawOrder] {
				continue
			}
			if bounds != nil && !bounds.Near(s.DrawOrder, p.X, p.Y, e.Radius) {
				continue
			}
			if e.touches(p, s, pageW, pageH) {
				hit[s.DrawOrder] = true
			}
		}
	}
	return hit
}

// touches tests the segment end first, then points interpolated from the
// end back to the start.
func (e Eraser) touches(p render.Point, s state.Segment, pageW, pageH float64) bool {
	ex, ey := s.X*pageW, s.Y*pageH
	if math.Hypot(ex-p.X, ey-p.Y) <= e.Radius {
		return true
	}
	sx, sy := s.LastX*pageW, s.LastY*pageH
	length := math.Hypot(sx-ex, sy-ey)
	if length == 0 {
		return false
	}
	stride := e.Stride
	if stride <= 0 {
		stride = DefaultEraseStride
	}
	for d := 0.0; d <= length; d += stride {
		t := d / length
		mx := (1-t)*ex + t*sx
		my := (1-t)*ey + t*sy
		if math.Hypot(mx-p.X, my-p.Y) <= e.Radius {
			return true
		}
	}
	return math.Hypot(sx-p.X, sy-p.Y) <= e.Radius
}

// Erase returns the segments of segs that survive the eraser samples and
// the number removed. segs is never modified.
func (e Eraser) Erase(samples []render.Point, segs []state.Segment, pageW, pageH float64, bounds *state.GroupBounds) ([]state.Segment, int) {
	hit := e.Hits(samples, segs, pageW, pageH, bounds)
	if len(hit) == 0 {
		return segs, 0
	}
	kept := make([]state.Segment, 0, len(segs))
	for _, s := range segs {
		if !hit[s.DrawOrder] {
			kept = append(kept, s)
		}
	}
	return kept, len(segs) - len(kept)
}

// Samples converts an eraser gesture buffer into page pixels.
func Samples(buf []state.Segment, pageW, pageH float64) []render.Point {
	pts := make([]render.Point, len(buf))
	for i, s := range buf {
		pts[i] = render.Point{X: s.X * pageW, Y: s.Y * pageH}
	}
	return pts
}
