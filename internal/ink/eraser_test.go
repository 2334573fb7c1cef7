package ink

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkPDF/internal/render"
	"InkPDF/internal/state"
)

// px builds a segment from page-pixel coordinates on a 100x100 page.
func px(lx, ly, x, y float64, order int64) state.Segment {
	return state.Segment{
		X: x / 100, Y: y / 100, LastX: lx / 100, LastY: ly / 100,
		LineWidth: 0.05, Color: "#000000", Alpha: 1, DrawOrder: order,
	}
}

func TestEraserEndpointHit(t *testing.T) {
	segs := []state.Segment{px(10, 10, 10, 10, 0)}
	hits := Eraser{Radius: 3}.Hits([]render.Point{{X: 12, Y: 12}}, segs, 100, 100, nil)
	assert.True(t, hits[0])
}

func TestEraserInterpolationCatchesCrossing(t *testing.T) {
	// One long segment; the eraser crosses its middle, far from both ends.
	segs := []state.Segment{px(0, 50, 100, 50, 7)}
	er := Eraser{Radius: 2, Stride: 1}

	hits := er.Hits([]render.Point{{X: 50, Y: 51.5}}, segs, 100, 100, nil)
	assert.True(t, hits[7])

	hits = er.Hits([]render.Point{{X: 50, Y: 53}}, segs, 100, 100, nil)
	assert.Empty(t, hits)
}

func TestEraserZeroLengthSegment(t *testing.T) {
	segs := []state.Segment{px(40, 40, 40, 40, 1)}
	er := Eraser{Radius: 5}
	assert.NotPanics(t, func() {
		assert.Empty(t, er.Hits([]render.Point{{X: 60, Y: 60}}, segs, 100, 100, nil))
	})
	assert.True(t, er.Hits([]render.Point{{X: 43, Y: 43}}, segs, 100, 100, nil)[1])
}

func TestEraserRemovesWholeGroups(t *testing.T) {
	segs := []state.Segment{
		px(10, 10, 10, 10, 0),
		px(10, 10, 30, 10, 0),
		px(30, 10, 50, 10, 0),
		px(80, 80, 80, 80, 1),
		px(80, 80, 90, 90, 1),
	}
	before := append([]state.Segment(nil), segs...)

	kept, removed := Eraser{Radius: 2}.Erase([]render.Point{{X: 20, Y: 11}}, segs, 100, 100, nil)

	assert.Equal(t, 3, removed)
	require.Len(t, kept, 2)
	for _, s := range kept {
		assert.Equal(t, int64(1), s.DrawOrder)
	}
	assert.Equal(t, before, segs)
}

func TestEraserNoHitReturnsInput(t *testing.T) {
	segs := []state.Segment{px(10, 10, 30, 10, 0)}
	kept, removed := Eraser{Radius: 2}.Erase([]render.Point{{X: 90, Y: 90}}, segs, 100, 100, nil)
	assert.Zero(t, removed)
	assert.Equal(t, segs, kept)
}

func TestEraserBoundsPrefilterAgrees(t *testing.T) {
	segs := []state.Segment{
		px(10, 10, 30, 10, 0),
		px(30, 10, 30, 40, 0),
		px(70, 70, 90, 75, 1),
		px(50, 5, 50, 5, 2),
	}
	samples := []render.Point{{X: 31, Y: 25}, {X: 60, Y: 60}, {X: 52, Y: 7}}
	er := Eraser{Radius: 3}
	bounds := state.NewGroupBounds(segs, 100, 100)

	assert.Equal(t, er.Hits(samples, segs, 100, 100, nil), er.Hits(samples, segs, 100, 100, bounds))
}

func TestEraserUnmountedPage(t *testing.T) {
	segs := []state.Segment{px(10, 10, 10, 10, 0)}
	assert.Empty(t, Eraser{Radius: 100}.Hits([]render.Point{{X: 10, Y: 10}}, segs, 0, 0, nil))
}
