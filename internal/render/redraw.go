package render

import "InkPDF/internal/state"

// Redraw clears the surface and rebuilds the ink of one page from its
// stored segments and presents the result. It draws nothing while the
// page is not sized yet.
func Redraw(s Surface, segs []state.Segment, pageW, pageH float64) {
	if w, h := s.Size(); w == 0 || h == 0 || pageW <= 0 || pageH <= 0 {
		return
	}
	s.Clear()
	Paint(s, Primitives(segs, pageW, pageH))
	Present(s)
}

// Paint replays primitives onto a surface without clearing it first.
func Paint(s Surface, prims []Primitive) {
	for _, p := range prims {
		switch p.Kind {
		case KindDot:
			s.Dot(p.Points[0], p.Pen)
		case KindPolyline:
			s.Polyline(p.Points, p.Pen)
		}
	}
}
