package state

import "math"

// nearSlack absorbs rounding in interpolated sample points.
const nearSlack = 1e-6

// GroupBounds indexes the bounding box, in page pixels, of every draw-order
// group on a page. A point farther than r from a group's box cannot be
// within r of any of its segments, which lets the eraser skip whole groups.
type GroupBounds struct {
	width, height float64
	version       uint64
	boxes         map[int64]Rect
}

func NewGroupBounds(segs []Segment, width, height float64) *GroupBounds {
	gb := &GroupBounds{
		width:  width,
		height: height,
		boxes:  make(map[int64]Rect),
	}
	for _, s := range segs {
		x1, y1 := s.LastX*width, s.LastY*height
		x2, y2 := s.X*width, s.Y*height
		box := Rect{
			MinX: math.Min(x1, x2),
			MinY: math.Min(y1, y2),
			MaxX: math.Max(x1, x2),
			MaxY: math.Max(y1, y2),
		}
		if existing, ok := gb.boxes[s.DrawOrder]; ok {
			box = existing.Union(box)
		}
		gb.boxes[s.DrawOrder] = box
	}
	return gb
}

// Near reports whether (x, y) lies within r of the box of group order.
// Unknown groups are reported as near.
func (gb *GroupBounds) Near(order int64, x, y, r float64) bool {
	box, ok := gb.boxes[order]
	if !ok {
		return true
	}
	return box.Inset(-(r + nearSlack)).Contains(x, y)
}

// Box returns the bounding box of a group.
func (gb *GroupBounds) Box(order int64) (Rect, bool) {
	box, ok := gb.boxes[order]
	return box, ok
}

// Len returns the number of indexed groups.
func (gb *GroupBounds) Len() int {
	return len(gb.boxes)
}
