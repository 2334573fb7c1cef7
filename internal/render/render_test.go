package render

import (
	"bytes"
	"image"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkPDF/internal/state"
)

func seg(lx, ly, x, y float64) state.Segment {
	return state.Segment{
		X: x, Y: y, LastX: lx, LastY: ly,
		LineWidth: 0.05, Color: "#000000", Alpha: 1,
	}
}

func TestPartitionContiguity(t *testing.T) {
	segs := []state.Segment{
		seg(0, 0, 0.1, 0.1),
		seg(0.1, 0.1, 0.2, 0.2),
		seg(0.5, 0.5, 0.5, 0.5),
	}
	runs := Partition(segs)
	require.Len(t, runs, 2)
	assert.Len(t, runs[0], 2)
	assert.False(t, runs[0].Isolated())
	assert.True(t, runs[1].Isolated())

	prims := Primitives(segs, 100, 100)
	require.Len(t, prims, 2)
	assert.Equal(t, KindPolyline, prims[0].Kind)
	assert.Equal(t, []Point{{0, 0}, {10, 10}, {20, 20}}, prims[0].Points)
	assert.Equal(t, KindDot, prims[1].Kind)
	assert.Equal(t, []Point{{50, 50}}, prims[1].Points)
}

func TestPartitionEmpty(t *testing.T) {
	assert.Empty(t, Partition(nil))
	assert.Empty(t, Primitives(nil, 10, 10))
}

func TestPrimitivesSplitOnStyleChange(t *testing.T) {
	a := seg(0, 0, 0.1, 0)
	b := seg(0.1, 0, 0.2, 0)
	b.Color = "#F34A47"
	c := seg(0.2, 0, 0.3, 0)
	c.Color = "#F34A47"

	prims := Primitives([]state.Segment{a, b, c}, 100, 100)
	require.Len(t, prims, 2)
	assert.Equal(t, []Point{{0, 0}, {10, 0}}, prims[0].Points)
	assert.Equal(t, []Point{{10, 0}, {20, 0}, {30, 0}}, prims[1].Points)
	assert.Equal(t, "#F34A47", prims[1].Pen.Color)
	assert.Equal(t, 5.0, prims[1].Pen.Width)
}

func TestPrimitivesIsolatedLine(t *testing.T) {
	prims := Primitives([]state.Segment{seg(0.1, 0.1, 0.3, 0.1)}, 100, 50)
	require.Len(t, prims, 1)
	assert.Equal(t, KindPolyline, prims[0].Kind)
	assert.Equal(t, []Point{{10, 5}, {30, 5}}, prims[0].Points)
}

func TestRedrawIdempotent(t *testing.T) {
	segs := []state.Segment{
		seg(0.1, 0.1, 0.1, 0.1),
		seg(0.1, 0.1, 0.4, 0.3),
		seg(0.4, 0.3, 0.6, 0.7),
		seg(0.8, 0.2, 0.8, 0.2),
	}
	segs[3].Alpha = 0.4
	c := NewCanvas(120, 90)

	Redraw(c, segs, 120, 90)
	first := bytes.Clone(c.Image().Pix)
	Redraw(c, segs, 120, 90)

	assert.True(t, bytes.Equal(first, c.Image().Pix))
	assert.NotZero(t, alphaAt(c, 12, 9))
}

func TestRedrawTapIsVisible(t *testing.T) {
	c := NewCanvas(100, 100)
	Redraw(c, []state.Segment{seg(0.5, 0.5, 0.5, 0.5)}, 100, 100)

	assert.NotZero(t, alphaAt(c, 50, 50))
	assert.Zero(t, alphaAt(c, 10, 10))
}

func TestRedrawClearsPreviousInk(t *testing.T) {
	c := NewCanvas(50, 50)
	Redraw(c, []state.Segment{seg(0.2, 0.2, 0.2, 0.2)}, 50, 50)
	require.NotZero(t, alphaAt(c, 10, 10))

	Redraw(c, nil, 50, 50)
	assert.Zero(t, alphaAt(c, 10, 10))
}

func TestRedrawUnmountedIsNoop(t *testing.T) {
	c := NewCanvas(0, 0)
	assert.NotPanics(t, func() {
		Redraw(c, []state.Segment{seg(0, 0, 1, 1)}, 0, 0)
		c.Dot(Point{1, 1}, Pen{Width: 3, Alpha: 1})
		c.DashedLine(Point{0, 0}, Point{5, 5})
	})
}

func TestDashedLinePaints(t *testing.T) {
	c := NewCanvas(100, 20)
	c.DashedLine(Point{0, 10}, Point{100, 10})
	assert.Zero(t, alphaAt(c, 2, 10), "not visible before Present")

	c.Present()
	assert.NotZero(t, alphaAt(c, 2, 10))
}

func TestCanvasImageIsACopy(t *testing.T) {
	c := NewCanvas(40, 40)
	Redraw(c, []state.Segment{seg(0.5, 0.5, 0.5, 0.5)}, 40, 40)

	frame := c.Image()
	require.NotZero(t, frame.RGBAAt(20, 20).A)

	Redraw(c, nil, 40, 40)
	assert.NotZero(t, frame.RGBAAt(20, 20).A, "held frame is not touched by later redraws")
	assert.Zero(t, alphaAt(c, 20, 20))
}

func TestCanvasResizeKeepsFrameUntilPresent(t *testing.T) {
	c := NewCanvas(40, 40)
	Redraw(c, []state.Segment{seg(0.5, 0.5, 0.5, 0.5)}, 40, 40)

	c.Resize(60, 30)
	frame := c.Image()
	assert.Equal(t, image.Rect(0, 0, 40, 40), frame.Bounds())
	assert.NotZero(t, frame.RGBAAt(20, 20).A)

	Redraw(c, nil, 60, 30)
	frame = c.Image()
	assert.Equal(t, image.Rect(0, 0, 60, 30), frame.Bounds())
	assert.Zero(t, frame.RGBAAt(20, 20).A)
}

func alphaAt(c *Canvas, x, y int) uint8 {
	return c.Image().RGBAAt(x, y).A
}
