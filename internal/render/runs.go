package render

import "InkPDF/internal/state"

// Run is a maximal sequence of segments where each one starts exactly
// where the previous one ended.
type Run []state.Segment

// Isolated reports whether the run is a lone segment, drawn as a point.
func (r Run) Isolated() bool { return len(r) == 1 }

// Partition splits segs into runs using exact equality of coordinates.
// Both ends of a continuation come from the same recorder session, so no
// tolerance is applied.
func Partition(segs []state.Segment) []Run {
	var runs []Run
	start := 0
	for i := 1; i <= len(segs); i++ {
		if i < len(segs) && segs[i].Continues(segs[i-1]) {
			continue
		}
		runs = append(runs, Run(segs[start:i]))
		start = i
	}
	return runs
}

type Point struct {
	X, Y float64
}

// Pen is the resolved ink of a primitive, in surface pixels.
type Pen struct {
	Color string
	Width float64
	Alpha float64
}

func penOf(s state.Segment, pageW float64) Pen {
	return Pen{Color: s.Color, Width: s.LineWidth * pageW, Alpha: s.Alpha}
}

type Kind int

const (
	KindPolyline Kind = iota
	KindDot
)

// Primitive is one drawing call produced from the store.
type Primitive struct {
	Kind   Kind
	Points []Point
	Pen    Pen
}

// Primitives denormalizes segs onto a page of pageW x pageH pixels and
// turns every run into drawing calls. Runs of two or more segments become
// round-capped polylines, split wherever the style changes. An isolated
// segment becomes a short line, or a dot when it has zero length.
// Repeated points, such as the pen-down sample opening a stroke, are
// dropped from polylines.
func Primitives(segs []state.Segment, pageW, pageH float64) []Primitive {
	var out []Primitive
	for _, run := range Partition(segs) {
		if run.Isolated() {
			s := run[0]
			if s.IsPoint() {
				out = append(out, Primitive{
					Kind:   KindDot,
					Points: []Point{{s.X * pageW, s.Y * pageH}},
					Pen:    penOf(s, pageW),
				})
				continue
			}
			out = append(out, Primitive{
				Kind:   KindPolyline,
				Points: []Point{{s.LastX * pageW, s.LastY * pageH}, {s.X * pageW, s.Y * pageH}},
				Pen:    penOf(s, pageW),
			})
			continue
		}

		cur := Primitive{Kind: KindPolyline, Pen: penOf(run[0], pageW)}
		cur.Points = append(cur.Points, Point{run[0].LastX * pageW, run[0].LastY * pageH})
		for _, s := range run {
			pen := penOf(s, pageW)
			if pen != cur.Pen {
				out = append(out, cur)
				last := cur.Points[len(cur.Points)-1]
				cur = Primitive{Kind: KindPolyline, Pen: pen, Points: []Point{last}}
			}
			next := Point{s.X * pageW, s.Y * pageH}
			if next != cur.Points[len(cur.Points)-1] {
				cur.Points = append(cur.Points, next)
			}
		}
		out = append(out, cur)
	}
	return out
}
