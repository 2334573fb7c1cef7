package render

import (
	"image"
	"image/color"
	"image/draw"
	"math"
	"sync"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"InkPDF/internal/state"
)

// Surface is what the engine paints on: the page-sized ink layer.
type Surface interface {
	Size() (w, h int)
	Clear()
	Polyline(pts []Point, pen Pen)
	Dot(p Point, pen Pen)
	DashedLine(a, b Point)
}

// Discard is a Surface of zero size that draws nothing.
var Discard Surface = discard{}

type discard struct{}

func (discard) Size() (int, int)      { return 0, 0 }
func (discard) Clear()                {}
func (discard) Polyline([]Point, Pen) {}
func (discard) Dot(Point, Pen)        {}
func (discard) DashedLine(a, b Point) {}

var (
	previewColor  = color.NRGBA{R: 0x80, G: 0x80, B: 0x80, A: 0xFF}
	previewDashes = []float64{6, 6}
)

const previewWidth = 2.0

// Presenter is implemented by surfaces that show a frame only once it is
// complete.
type Presenter interface {
	Present()
}

// Present publishes what has been drawn on s so far, when s buffers frames.
func Present(s Surface) {
	if p, ok := s.(Presenter); ok {
		p.Present()
	}
}

// Canvas is a double-buffered Surface backed by RGBA images. Drawing goes
// to the back buffer and must come from one goroutine at a time; Present
// copies it to the front buffer, which Image reads from any goroutine.
type Canvas struct {
	img    *image.RGBA
	dasher *rasterx.Dasher

	mu    sync.RWMutex
	front *image.RGBA
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{}
	c.Resize(w, h)
	return c
}

// Resize reallocates the back buffer; its content is dropped. The
// presented frame stays visible until the next Present.
func (c *Canvas) Resize(w, h int) {
	w, h = max(w, 0), max(h, 0)
	if c.img != nil && c.img.Bounds().Dx() == w && c.img.Bounds().Dy() == h {
		return
	}
	c.img = image.NewRGBA(image.Rect(0, 0, w, h))
	c.mu.Lock()
	if c.front == nil {
		c.front = image.NewRGBA(c.img.Bounds())
	}
	c.mu.Unlock()
	c.dasher = nil
	if w == 0 || h == 0 {
		return
	}
	scanner := rasterx.NewScannerGV(w, h, c.img, c.img.Bounds())
	c.dasher = rasterx.NewDasher(w, h, scanner)
}

// Present makes the back buffer the visible frame.
func (c *Canvas) Present() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.front.Bounds() != c.img.Bounds() {
		c.front = image.NewRGBA(c.img.Bounds())
	}
	copy(c.front.Pix, c.img.Pix)
}

// Image returns a copy of the last presented frame.
func (c *Canvas) Image() *image.RGBA {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := image.NewRGBA(c.front.Bounds())
	copy(out.Pix, c.front.Pix)
	return out
}

func (c *Canvas) Size() (int, int) {
	b := c.img.Bounds()
	return b.Dx(), b.Dy()
}

func (c *Canvas) Clear() {
	draw.Draw(c.img, c.img.Bounds(), image.Transparent, image.Point{}, draw.Src)
}

func (c *Canvas) mounted() bool {
	return c.dasher != nil
}

func (c *Canvas) Polyline(pts []Point, pen Pen) {
	if !c.mounted() || len(pts) == 0 {
		return
	}
	if degenerate(pts) {
		c.Dot(pts[0], pen)
		return
	}
	c.dasher.SetStroke(toFixed(pen.Width), 0, rasterx.RoundCap, rasterx.RoundCap, rasterx.RoundGap, rasterx.Round, nil, 0)
	c.dasher.Start(rasterx.ToFixedP(pts[0].X, pts[0].Y))
	for _, p := range pts[1:] {
		c.dasher.Line(rasterx.ToFixedP(p.X, p.Y))
	}
	c.dasher.Stop(false)
	c.dasher.SetColor(inkColor(pen))
	c.dasher.Draw()
	c.dasher.Clear()
}

// Dot fills a disc of diameter pen.Width, the shape a round cap gives a
// zero-length line.
func (c *Canvas) Dot(p Point, pen Pen) {
	if !c.mounted() {
		return
	}
	r := math.Max(pen.Width/2, 0.5)
	filler := &c.dasher.Filler
	rasterx.AddCircle(p.X, p.Y, r, filler)
	filler.SetColor(inkColor(pen))
	filler.Draw()
	filler.Clear()
}

// DashedLine paints the eraser preview. It is never stored.
func (c *Canvas) DashedLine(a, b Point) {
	if !c.mounted() {
		return
	}
	c.dasher.SetStroke(toFixed(previewWidth), 0, rasterx.ButtCap, rasterx.ButtCap, rasterx.RoundGap, rasterx.Round, previewDashes, 0)
	c.dasher.Start(rasterx.ToFixedP(a.X, a.Y))
	c.dasher.Line(rasterx.ToFixedP(b.X, b.Y))
	c.dasher.Stop(false)
	c.dasher.SetColor(previewColor)
	c.dasher.Draw()
	c.dasher.Clear()
}

func degenerate(pts []Point) bool {
	for _, p := range pts[1:] {
		if p != pts[0] {
			return false
		}
	}
	return true
}

func toFixed(v float64) fixed.Int26_6 {
	return fixed.Int26_6(math.Round(v * 64))
}

func inkColor(pen Pen) color.NRGBA {
	c := state.ParseHex(pen.Color)
	a := math.Min(math.Max(pen.Alpha, 0), 1)
	c.A = uint8(math.Round(a * 255))
	return c
}
