package ink

import (
	"math"

	"InkPDF/internal/render"
	"InkPDF/internal/state"
)

// DefaultMinDistance is the decimation threshold between recorded samples,
// in surface pixels.
const DefaultMinDistance = 20.0

type recState int

const (
	idle recState = iota
	recording
	// aborted: a second pointer joined the gesture; wait for all pointers
	// to lift without recording anything.
	aborted
)

// Recorder buffers the segments of the gesture in progress. Nothing it
// holds is visible in the store until the engine commits it.
type Recorder struct {
	MinDistance float64

	state    recState
	pointers map[int]bool
	page     Page
	style    state.Style
	prev     render.Point
	buffer   []state.Segment
}

func NewRecorder(minDistance float64) *Recorder {
	if minDistance <= 0 {
		minDistance = DefaultMinDistance
	}
	return &Recorder{
		MinDistance: minDistance,
		pointers:    make(map[int]bool),
	}
}

func (r *Recorder) Recording() bool { return r.state == recording }

// Style returns the style resolved when the current gesture started.
func (r *Recorder) Style() state.Style { return r.style }

func (r *Recorder) Page() Page { return r.page }

// Down starts a gesture at p. A pointer joining a gesture in progress
// aborts it and Down reports false.
func (r *Recorder) Down(id int, p render.Point, page Page, style state.Style) bool {
	if r.pointers[id] {
		return false
	}
	r.pointers[id] = true
	switch r.state {
	case recording:
		r.abort()
		return false
	case aborted:
		return false
	}

	r.state = recording
	r.page = page
	r.style = style
	r.prev = p
	x, y := page.ToPage(p)
	r.buffer = []state.Segment{r.segment(x, y, x, y)}
	return true
}

// Move records p when it is at least MinDistance away from the last
// recorded point. It returns the start of the new segment.
func (r *Recorder) Move(id int, p render.Point) (from render.Point, ok bool) {
	if r.state != recording || !r.pointers[id] {
		return render.Point{}, false
	}
	if math.Hypot(p.X-r.prev.X, p.Y-r.prev.Y) < r.MinDistance {
		return render.Point{}, false
	}
	from = r.prev
	lx, ly := r.page.ToPage(from)
	x, y := r.page.ToPage(p)
	r.buffer = append(r.buffer, r.segment(x, y, lx, ly))
	r.prev = p
	return from, true
}

// Up ends the gesture for pointer id. It returns the buffered segments
// when the gesture completed normally, and nil otherwise.
func (r *Recorder) Up(id int) []state.Segment {
	if !r.pointers[id] {
		return nil
	}
	delete(r.pointers, id)

	var out []state.Segment
	if r.state == recording {
		out = r.buffer
	}
	r.buffer = nil
	if len(r.pointers) == 0 {
		r.state = idle
	} else {
		r.state = aborted
	}
	return out
}

// Last returns the most recently recorded point in surface pixels.
func (r *Recorder) Last() render.Point { return r.prev }

// Cancel drops the gesture and forgets every pointer.
func (r *Recorder) Cancel() {
	r.buffer = nil
	r.state = idle
	clear(r.pointers)
}

func (r *Recorder) abort() {
	r.buffer = nil
	r.state = aborted
}

func (r *Recorder) segment(x, y, lastX, lastY float64) state.Segment {
	return state.Segment{
		X:         x,
		Y:         y,
		LastX:     lastX,
		LastY:     lastY,
		LineWidth: r.style.Width / r.page.Width,
		Color:     r.style.Color,
		Alpha:     r.style.Alpha,
	}
}
