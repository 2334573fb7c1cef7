package ui

import (
	"fmt"
	"image/color"
	"io"
	"log"
	"math"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"InkPDF/internal/export"
	"InkPDF/internal/ink"
	"InkPDF/internal/render"
)

// mousePointer is the pointer id used for the desktop mouse. The desktop
// driver cannot tell a stylus from a mouse, so events are reported as the
// pointer type the engine accepts.
const mousePointer = 1

// LetterPage is used when no page sizes are known.
var LetterPage = export.PageSize{Width: 612, Height: 792}

// InkWidget shows the ink layer of the current page, fitted into the
// widget and centered, and forwards mouse input to the engine.
type InkWidget struct {
	widget.BaseWidget
	engine  *ink.Engine
	surface *render.Canvas

	mu      sync.Mutex
	pages   []export.PageSize
	pressed bool

	image     *canvas.Image
	statusBar *widget.Label
	OnPage    func(number, count int)
}

var _ fyne.Widget = (*InkWidget)(nil)
var _ fyne.Draggable = (*InkWidget)(nil)
var _ desktop.Mouseable = (*InkWidget)(nil)

func NewInkWidget(e *ink.Engine, surface *render.Canvas, pages []export.PageSize) *InkWidget {
	if len(pages) == 0 {
		pages = []export.PageSize{LetterPage}
	}
	w := &InkWidget{
		engine:    e,
		surface:   surface,
		pages:     pages,
		statusBar: widget.NewLabel("Ready"),
	}
	w.image = canvas.NewImageFromImage(surface.Image())
	w.image.FillMode = canvas.ImageFillStretch
	w.image.ScaleMode = canvas.ImageScaleSmooth
	w.ExtendBaseWidget(w)
	e.SetPageCount(len(pages))
	w.ShowPage(1)
	return w
}

func (w *InkWidget) Pages() []export.PageSize {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]export.PageSize(nil), w.pages...)
}

func (w *InkWidget) StatusBar() *widget.Label { return w.statusBar }

func (w *InkWidget) SetStatus(text string) {
	fyne.Do(func() { w.statusBar.SetText(text) })
}

// NextPage and PrevPage move through the document; they stop at its ends.
func (w *InkWidget) NextPage() { w.turn(1) }
func (w *InkWidget) PrevPage() { w.turn(-1) }

func (w *InkWidget) turn(delta int) {
	w.ShowPage(w.engine.Page().Number + delta)
}

// ShowPage switches to page number (1-based) of the document.
func (w *InkWidget) ShowPage(number int) {
	w.mu.Lock()
	if number < 1 || number > len(w.pages) {
		w.mu.Unlock()
		return
	}
	size := w.pages[number-1]
	w.mu.Unlock()

	w.engine.SetPage(number, size.Width, size.Height)
	w.PageChanged()
}

// PageChanged refits the widget to the engine's current page. It must run
// on the UI thread; it is also how page switches made by the host show up.
func (w *InkWidget) PageChanged() {
	w.Refresh()
	w.Repaint()
	number := w.engine.Page().Number
	w.mu.Lock()
	count := len(w.pages)
	w.mu.Unlock()
	w.SetStatus(fmt.Sprintf("Page %d / %d", number, count))
	if w.OnPage != nil {
		w.OnPage(number, count)
	}
}

// Repaint hands the last presented ink frame to fyne. The frame is a copy,
// so the engine may keep drawing while fyne paints it.
func (w *InkWidget) Repaint() {
	w.image.Image = w.surface.Image()
	w.image.Refresh()
}

func (w *InkWidget) pointer(pos fyne.Position) ink.PointerEvent {
	return ink.PointerEvent{
		ID:      mousePointer,
		Type:    w.engine.Settings().Accept,
		ClientX: float64(pos.X),
		ClientY: float64(pos.Y),
	}
}

func (w *InkWidget) MouseDown(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary {
		return
	}
	w.pressed = true
	w.engine.PointerDown(w.pointer(e.Position))
	w.Repaint()
}

func (w *InkWidget) Dragged(e *fyne.DragEvent) {
	if !w.pressed {
		return
	}
	w.engine.PointerMove(w.pointer(e.Position))
	w.Repaint()
}

func (w *InkWidget) MouseUp(e *desktop.MouseEvent) {
	if e.Button != desktop.MouseButtonPrimary || !w.pressed {
		return
	}
	w.pressed = false
	w.engine.PointerUp(w.pointer(e.Position))
	w.Repaint()
}

// DragEnd can arrive without a MouseUp when the drag leaves the window.
func (w *InkWidget) DragEnd() {
	if !w.pressed {
		return
	}
	w.pressed = false
	w.engine.PointerUp(ink.PointerEvent{ID: mousePointer, Type: w.engine.Settings().Accept})
	w.Repaint()
}

// layoutPage fits the engine's current page into size and reports the new
// viewport to the engine.
func (w *InkWidget) layoutPage(size fyne.Size) (fyne.Position, fyne.Size) {
	page := w.engine.Page()
	if !page.Mounted() {
		return fyne.NewPos(0, 0), size
	}

	scale := float32(math.Min(float64(size.Width)/page.Width, float64(size.Height)/page.Height))
	if scale <= 0 || math.IsNaN(float64(scale)) {
		scale = 1
	}
	fitted := fyne.NewSize(float32(page.Width)*scale, float32(page.Height)*scale)
	origin := fyne.NewPos((size.Width-fitted.Width)/2, (size.Height-fitted.Height)/2)
	w.engine.SetViewport(float64(origin.X), float64(origin.Y), float64(scale))
	return origin, fitted
}

// SavePathData writes the serialized annotations of every page.
func (w *InkWidget) SavePathData(writer fyne.URIWriteCloser) {
	defer func() {
		if err := writer.Close(); err != nil {
			log.Printf("Error closing writer: %v", err)
		}
	}()
	data, err := w.engine.PathData()
	if err != nil {
		log.Printf("SavePathData: Error serializing: %v", err)
		w.SetStatus("Error saving annotations")
		return
	}
	if _, err := writer.Write(data); err != nil {
		log.Printf("SavePathData: Error writing: %v", err)
		w.SetStatus("Error writing file")
		return
	}
	w.SetStatus(fmt.Sprintf("Saved annotations to %s", writer.URI().Name()))
}

// LoadPathData replaces all annotations with a saved file.
func (w *InkWidget) LoadPathData(reader fyne.URIReadCloser) {
	defer func() {
		if err := reader.Close(); err != nil {
			log.Printf("Error closing reader: %v", err)
		}
	}()
	data, err := io.ReadAll(reader)
	if err != nil {
		log.Printf("LoadPathData: Error reading file: %v", err)
		w.SetStatus("Error reading file")
		return
	}
	report, err := w.engine.LoadPathData(data)
	if err != nil {
		log.Printf("LoadPathData: %v", err)
		w.SetStatus("Error parsing file - invalid format")
		return
	}
	w.Repaint()
	msg := fmt.Sprintf("Loaded %d segments on %d pages", report.Segments, report.Pages)
	if n := len(report.Skipped); n > 0 {
		msg += fmt.Sprintf(" (%d pages skipped)", n)
	}
	w.SetStatus(msg)
}

func (w *InkWidget) CreateRenderer() fyne.WidgetRenderer {
	paper := canvas.NewRectangle(color.White)
	paper.StrokeColor = color.Gray{Y: 200}
	paper.StrokeWidth = 1
	return &inkWidgetRenderer{widget: w, paper: paper}
}

type inkWidgetRenderer struct {
	widget *InkWidget
	paper  *canvas.Rectangle
}

func (r *inkWidgetRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.paper, r.widget.image}
}

func (r *inkWidgetRenderer) Layout(size fyne.Size) {
	origin, fitted := r.widget.layoutPage(size)
	for _, o := range r.Objects() {
		o.Move(origin)
		o.Resize(fitted)
	}
}

func (r *inkWidgetRenderer) MinSize() fyne.Size {
	return fyne.NewSize(300, 300)
}

func (r *inkWidgetRenderer) Refresh() {
	r.Layout(r.widget.Size())
	r.widget.image.Refresh()
	canvas.Refresh(r.widget)
}

func (r *inkWidgetRenderer) Destroy() {}

func (w *InkWidget) MouseIn(*desktop.MouseEvent)    {}
func (w *InkWidget) MouseOut()                      {}
func (w *InkWidget) MouseMoved(*desktop.MouseEvent) {}
