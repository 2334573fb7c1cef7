package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"InkPDF/internal/export"
	"InkPDF/internal/ink"
	"InkPDF/internal/render"
)

// App is the desktop shell around one engine.
type App struct {
	fyneApp fyne.App
	window  fyne.Window
	Ink     *InkWidget
}

// NewApp builds the window; it must be called before any other fyne use.
func NewApp(e *ink.Engine, surface *render.Canvas, pages []export.PageSize, shareLink string) *App {
	a := app.NewWithID("io.inkpdf.desktop")
	win := a.NewWindow("InkPDF")
	win.Resize(fyne.NewSize(1024, 900))

	board := NewInkWidget(e, surface, pages)
	toolbar := NewToolbar(board, e, win)

	var bottom fyne.CanvasObject = board.StatusBar()
	if shareLink != "" {
		link := widget.NewEntry()
		link.SetText(shareLink)
		bottom = container.NewBorder(nil, nil, nil, link, board.StatusBar())
	}

	win.SetContent(container.NewBorder(toolbar, bottom, nil, nil, board))
	return &App{fyneApp: a, window: win, Ink: board}
}

// Refresh repaints the ink after a change made off the UI thread.
func (a *App) Refresh() {
	fyne.Do(a.Ink.Repaint)
}

// PageChanged follows a page switch made off the UI thread.
func (a *App) PageChanged(int) {
	fyne.Do(a.Ink.PageChanged)
}

func (a *App) Run() {
	a.window.ShowAndRun()
}
