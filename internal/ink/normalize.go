package ink

import "InkPDF/internal/render"

type PointerType string

const (
	PointerPen   PointerType = "pen"
	PointerTouch PointerType = "touch"
	PointerMouse PointerType = "mouse"
)

// PointerEvent is a raw pointer or touch sample as the host delivers it,
// in CSS pixels relative to the viewport.
type PointerEvent struct {
	ID      int
	Type    PointerType
	ClientX float64
	ClientY float64
}

// Viewport describes how the ink surface is currently shown.
type Viewport struct {
	// Left and Top are the surface's bounding-box origin in CSS pixels.
	Left, Top float64
	// Scale is the pinch-zoom factor, 1 when not zoomed.
	Scale            float64
	DevicePixelRatio float64
}

// Normalize maps a raw event onto surface pixels, compensating for zoom
// and the device pixel ratio.
func Normalize(ev PointerEvent, vp Viewport) render.Point {
	scale := vp.Scale
	if scale <= 0 {
		scale = 1
	}
	dpr := vp.DevicePixelRatio
	if dpr <= 0 {
		dpr = 1
	}
	return render.Point{
		X: (ev.ClientX - vp.Left) / scale * dpr,
		Y: (ev.ClientY - vp.Top) / scale * dpr,
	}
}

// Page is the active page and its layout size in pixels. Stored
// coordinates are fractions of Width and Height.
type Page struct {
	Number        int
	Width, Height float64
}

// Mounted reports whether the page has been laid out.
func (p Page) Mounted() bool {
	return p.Number > 0 && p.Width > 0 && p.Height > 0
}

// ToPage converts surface pixels into page-fraction units.
func (p Page) ToPage(pt render.Point) (x, y float64) {
	return pt.X / p.Width, pt.Y / p.Height
}

// FromPage converts page-fraction units back to surface pixels.
func (p Page) FromPage(x, y float64) render.Point {
	return render.Point{X: x * p.Width, Y: y * p.Height}
}
