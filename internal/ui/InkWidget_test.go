package ui

import (
	"bytes"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"InkPDF/internal/export"
	"InkPDF/internal/ink"
	"InkPDF/internal/render"
	"InkPDF/internal/state"
)

type bufferCloser struct {
	bytes.Buffer
	closed bool
}

func (b *bufferCloser) Close() error {
	b.closed = true
	return nil
}

func (b *bufferCloser) URI() fyne.URI {
	return storage.NewFileURI("/tmp/annotations.json")
}

type readerCloser struct {
	*bytes.Reader
	closed bool
}

func (r *readerCloser) Close() error {
	r.closed = true
	return nil
}

func (r *readerCloser) URI() fyne.URI {
	return storage.NewFileURI("/tmp/annotations.json")
}

func newTestWidget(t *testing.T) (*InkWidget, *ink.Engine) {
	t.Helper()
	test.NewApp()

	settings := ink.DefaultSettings()
	settings.Drawing = true
	settings.DevicePixelRatio = 1
	surface := render.NewCanvas(0, 0)
	e := ink.NewEngine(state.NewPathStore(nil), surface, settings)
	pages := []export.PageSize{{Width: 300, Height: 400}, {Width: 300, Height: 400}}
	w := NewInkWidget(e, surface, pages)
	test.WidgetRenderer(w)
	w.Resize(fyne.NewSize(300, 400))
	return w, e
}

func click(w *InkWidget, x, y float32) {
	ev := &desktop.MouseEvent{Button: desktop.MouseButtonPrimary}
	ev.Position = fyne.NewPos(x, y)
	w.MouseDown(ev)
	w.MouseUp(ev)
}

func TestInkWidgetTapCommitsDot(t *testing.T) {
	w, e := newTestWidget(t)

	click(w, 150, 200)

	segs := e.Store().Page(1)
	require.Len(t, segs, 1)
	assert.InDelta(t, 0.5, segs[0].X, 1e-9)
	assert.InDelta(t, 0.5, segs[0].Y, 1e-9)
	assert.True(t, segs[0].IsPoint())
}

func TestInkWidgetIgnoresSecondaryButton(t *testing.T) {
	w, e := newTestWidget(t)

	ev := &desktop.MouseEvent{Button: desktop.MouseButtonSecondary}
	ev.Position = fyne.NewPos(10, 10)
	w.MouseDown(ev)
	w.MouseUp(ev)

	assert.Empty(t, e.Store().Pages())
}

func TestInkWidgetPageTurns(t *testing.T) {
	w, e := newTestWidget(t)
	var seen []int
	w.OnPage = func(number, _ int) { seen = append(seen, number) }

	w.PrevPage()
	assert.Equal(t, 1, e.Page().Number)

	w.NextPage()
	w.NextPage()
	assert.Equal(t, 2, e.Page().Number)
	assert.Equal(t, []int{2}, seen)

	click(w, 30, 30)
	assert.Len(t, e.Store().Page(2), 1)
	assert.Empty(t, e.Store().Page(1))
}

func TestExportPDF(t *testing.T) {
	w, e := newTestWidget(t)
	click(w, 150, 200)

	out := &bufferCloser{}
	require.NoError(t, ExportPDF(out, e, w.Pages()))
	assert.True(t, out.closed)
	assert.True(t, bytes.HasPrefix(out.Bytes(), []byte("%PDF-")))
}

func TestInkWidgetSaveThenLoad(t *testing.T) {
	w, e := newTestWidget(t)
	click(w, 150, 200)
	w.NextPage()
	click(w, 30, 30)

	saved := &bufferCloser{}
	w.SavePathData(saved)
	assert.True(t, saved.closed)
	assert.Contains(t, w.StatusBar().Text, "Saved annotations")

	require.True(t, e.ClearAll(ink.Confirmed))
	require.Empty(t, e.Store().Pages())

	in := &readerCloser{Reader: bytes.NewReader(saved.Bytes())}
	w.LoadPathData(in)
	assert.True(t, in.closed)
	assert.Equal(t, []int{1, 2}, e.Store().Pages())
	assert.Equal(t, "Loaded 2 segments on 2 pages", w.StatusBar().Text)
}

func TestInkWidgetLoadReportsSkippedPages(t *testing.T) {
	w, e := newTestWidget(t)

	data := `{"1":[{"x":0.5,"y":0.5,"lastX":0.5,"lastY":0.5,"lineWidth":0.01,"color":"#000000","alpha":1,"drawOrder":0}],` +
		`"9":[{"x":0.1,"y":0.1,"lastX":0.1,"lastY":0.1,"lineWidth":0.01,"color":"#000000","alpha":1,"drawOrder":1}]}`
	w.LoadPathData(&readerCloser{Reader: bytes.NewReader([]byte(data))})

	assert.Equal(t, []int{1}, e.Store().Pages())
	assert.Equal(t, "Loaded 1 segments on 1 pages (1 pages skipped)", w.StatusBar().Text)

	w.LoadPathData(&readerCloser{Reader: bytes.NewReader([]byte(`"broken"`))})
	assert.Equal(t, "Error parsing file - invalid format", w.StatusBar().Text)
	assert.Equal(t, []int{1}, e.Store().Pages())
}

func TestInkWidgetFollowsHostPageSwitch(t *testing.T) {
	w, e := newTestWidget(t)
	w.Resize(fyne.NewSize(600, 400))

	// The host lays out page 2 at a different size than the widget knows.
	e.SetPage(2, 200, 400)
	w.PageChanged()
	assert.Equal(t, "Page 2 / 2", w.StatusBar().Text)

	// 200x400 fitted into 600x400 is centered at x offset 200, scale 1.
	click(w, 300, 200)
	segs := e.Store().Page(2)
	require.Len(t, segs, 1)
	assert.InDelta(t, 0.5, segs[0].X, 1e-6)
	assert.InDelta(t, 0.5, segs[0].Y, 1e-6)

	w.PrevPage()
	assert.Equal(t, 1, e.Page().Number)
}
