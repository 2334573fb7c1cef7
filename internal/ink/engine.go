package ink

import (
	"fmt"
	"log"
	"math"
	"sync"

	"InkPDF/internal/export"
	"InkPDF/internal/render"
	"InkPDF/internal/state"
)

// Settings are the user-facing drawing options.
type Settings struct {
	Tool       state.Tool
	Color      string
	StrokeStep float64
	// Accept is the only pointer type that draws; the other is ignored.
	Accept  PointerType
	Drawing bool

	MinDistance      float64
	EraseStride      float64
	DevicePixelRatio float64
}

func DefaultSettings() Settings {
	return Settings{
		Tool:             state.ToolPen,
		Color:            state.DefaultColor,
		StrokeStep:       12,
		Accept:           PointerPen,
		MinDistance:      DefaultMinDistance,
		EraseStride:      DefaultEraseStride,
		DevicePixelRatio: 2,
	}
}

// Confirmer asks the user before an irreversible action.
type Confirmer interface {
	Confirm(prompt string) bool
}

type ConfirmFunc func(prompt string) bool

func (f ConfirmFunc) Confirm(prompt string) bool { return f(prompt) }

// Confirmed is a Confirmer for callers that already asked the user.
var Confirmed Confirmer = ConfirmFunc(func(string) bool { return true })

// Resizer is implemented by surfaces the engine may resize on page changes.
type Resizer interface {
	Resize(w, h int)
}

// Engine ties the recorder, eraser, store and renderer together for the
// page on screen. All methods are safe to call from the UI thread and the
// host bridge; none of them panic on bad input.
type Engine struct {
	mu        sync.Mutex
	store     *state.PathStore
	surface   render.Surface
	rec       *Recorder
	settings  Settings
	view      Viewport
	page      Page
	pageCount int
}

func NewEngine(store *state.PathStore, surface render.Surface, settings Settings) *Engine {
	if store == nil {
		store = state.NewPathStore(nil)
	}
	if surface == nil {
		surface = render.Discard
	}
	if settings.DevicePixelRatio <= 0 {
		settings.DevicePixelRatio = 1
	}
	return &Engine{
		store:    store,
		surface:  surface,
		rec:      NewRecorder(settings.MinDistance),
		settings: settings,
		view:     Viewport{Scale: 1, DevicePixelRatio: settings.DevicePixelRatio},
	}
}

func (e *Engine) Store() *state.PathStore { return e.store }

func (e *Engine) Settings() Settings {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.settings
}

func (e *Engine) Page() Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.page
}

// SetPageCount bounds the pages accepted when loading path data.
func (e *Engine) SetPageCount(n int) {
	e.mu.Lock()
	e.pageCount = n
	e.mu.Unlock()
}

// SetPage switches to page number laid out at width x height and redraws
// its ink. It is also how the host reports a resize.
func (e *Engine) SetPage(number int, width, height float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if number != e.page.Number {
		e.rec.Cancel()
	}
	e.page = Page{Number: number, Width: width, Height: height}
	if rs, ok := e.surface.(Resizer); ok && e.page.Mounted() {
		dpr := e.settings.DevicePixelRatio
		rs.Resize(int(math.Ceil(width*dpr)), int(math.Ceil(height*dpr)))
	}
	e.redraw()
}

// SetViewport updates the surface placement and zoom used to normalize
// pointer events.
func (e *Engine) SetViewport(left, top, scale float64) {
	e.mu.Lock()
	e.view.Left, e.view.Top, e.view.Scale = left, top, scale
	e.mu.Unlock()
}

func (e *Engine) SetTool(t state.Tool) {
	e.mu.Lock()
	e.settings.Tool = t
	e.mu.Unlock()
}

func (e *Engine) SetColor(hex string) {
	e.mu.Lock()
	e.settings.Color = hex
	e.mu.Unlock()
}

func (e *Engine) SetStrokeStep(step float64) {
	if step <= 0 {
		return
	}
	e.mu.Lock()
	e.settings.StrokeStep = step
	e.mu.Unlock()
}

func (e *Engine) SetAccept(t PointerType) {
	e.mu.Lock()
	e.settings.Accept = t
	e.mu.Unlock()
}

// SetDrawing turns drawing on or off. Turning it off drops a gesture in
// progress without committing it.
func (e *Engine) SetDrawing(on bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.settings.Drawing = on
	if !on && e.rec.Recording() {
		e.rec.Cancel()
		e.redraw()
	}
}

// PointerDown starts a gesture.
func (e *Engine) PointerDown(ev PointerEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.page.Mounted() || !e.settings.Drawing || ev.Type != e.settings.Accept {
		return
	}
	p := Normalize(ev, e.view)
	style := state.ResolveStyle(e.settings.Tool, e.settings.Color, e.settings.StrokeStep)
	if !e.rec.Down(ev.ID, p, e.page, style) && !e.rec.Recording() {
		// A second pointer turned the gesture into a pinch: take back the
		// live ink painted so far.
		e.redraw()
	}
}

// PointerMove extends the gesture and paints the new piece right away.
func (e *Engine) PointerMove(ev PointerEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.rec.Recording() {
		return
	}
	if !e.settings.Drawing || !e.page.Mounted() {
		e.rec.Cancel()
		e.redraw()
		return
	}
	p := Normalize(ev, e.view)
	from, ok := e.rec.Move(ev.ID, p)
	if !ok {
		return
	}
	st := e.rec.Style()
	if st.Tool == state.ToolEraser {
		e.surface.DashedLine(from, p)
	} else {
		e.surface.Polyline([]render.Point{from, p}, render.Pen{Color: st.Color, Width: st.Width, Alpha: st.Alpha})
	}
	render.Present(e.surface)
}

// PointerUp ends the gesture: ink is committed, an eraser pass is applied.
func (e *Engine) PointerUp(ev PointerEvent) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.settings.Drawing || !e.page.Mounted() {
		wasRecording := e.rec.Recording()
		e.rec.Cancel()
		if wasRecording {
			e.redraw()
		}
		return
	}
	page := e.rec.Page()
	st := e.rec.Style()
	last := e.rec.Last()
	buf := e.rec.Up(ev.ID)
	if len(buf) == 0 {
		return
	}
	if page.Number != e.page.Number {
		return
	}

	if st.Tool == state.ToolEraser {
		e.erase(buf, st)
		return
	}
	if len(buf) == 1 {
		e.surface.Dot(last, render.Pen{Color: st.Color, Width: st.Width, Alpha: st.Alpha})
	}
	order := e.store.Clock().Next()
	for i := range buf {
		buf[i].DrawOrder = order
	}
	e.store.Commit(page.Number, buf)
	e.redraw()
}

// PointerCancel drops the gesture in progress.
func (e *Engine) PointerCancel() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.rec.Recording() {
		e.rec.Cancel()
		e.redraw()
		return
	}
	e.rec.Cancel()
}

func (e *Engine) erase(buf []state.Segment, st state.Style) {
	segs := e.store.Page(e.page.Number)
	er := Eraser{Radius: e.settings.StrokeStep, Stride: e.settings.EraseStride}
	bounds := e.store.Bounds(e.page.Number, e.page.Width, e.page.Height)
	kept, removed := er.Erase(Samples(buf, e.page.Width, e.page.Height), segs, e.page.Width, e.page.Height, bounds)
	if removed > 0 {
		e.store.ReplacePage(e.page.Number, kept)
		log.Printf("[ERASER] Removed %d segments from page %d", removed, e.page.Number)
	}
	e.redraw()
}

// Redraw rebuilds the surface from the store.
func (e *Engine) Redraw() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.redraw()
}

func (e *Engine) redraw() {
	if !e.page.Mounted() {
		return
	}
	render.Redraw(e.surface, e.store.Page(e.page.Number), e.page.Width, e.page.Height)
}

// PathData returns the serialized store.
func (e *Engine) PathData() ([]byte, error) {
	return e.store.Serialize()
}

// LoadPathData replaces all ink with serialized path data and redraws.
func (e *Engine) LoadPathData(data []byte) (state.HydrateReport, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.Cancel()
	report, err := e.store.Hydrate(data, e.pageCount)
	if err != nil {
		return report, err
	}
	e.redraw()
	return report, nil
}

// ClearPage erases the ink of the current page after confirmation.
func (e *Engine) ClearPage(c Confirmer) bool {
	e.mu.Lock()
	number := e.page.Number
	e.mu.Unlock()
	if c == nil || !c.Confirm(fmt.Sprintf("Erase all ink on page %d?", number)) {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.Cancel()
	e.store.ClearPage(number)
	e.redraw()
	return true
}

// ClearAll erases the ink of every page after confirmation.
func (e *Engine) ClearAll(c Confirmer) bool {
	if c == nil || !c.Confirm("Erase all annotations in this document?") {
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rec.Cancel()
	e.store.ClearAll()
	e.redraw()
	return true
}

// Flatten burns the ink into a PDF whose pages have the given sizes.
func (e *Engine) Flatten(pages []export.PageSize) ([]byte, error) {
	dpr := e.Settings().DevicePixelRatio
	lines := export.Lines(e.store.Snapshot(), pages, dpr)
	return export.Flatten(lines, pages)
}
