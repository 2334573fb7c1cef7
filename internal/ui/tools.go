package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"InkPDF/internal/ink"
	"InkPDF/internal/state"
)

// --- Custom Widget for Color Swatches ---
type colorSwatch struct {
	widget.BaseWidget
	Hex      string
	OnTapped func(hex string)
}

func newColorSwatch(hex string, tapped func(string)) *colorSwatch {
	s := &colorSwatch{Hex: hex, OnTapped: tapped}
	s.ExtendBaseWidget(s)
	return s
}

func (s *colorSwatch) CreateRenderer() fyne.WidgetRenderer {
	rect := canvas.NewRectangle(state.ParseHex(s.Hex))
	rect.SetMinSize(fyne.NewSize(28, 28))

	border := canvas.NewRectangle(color.Transparent)
	border.StrokeColor = color.Gray{Y: 150}
	border.StrokeWidth = 1

	return widget.NewSimpleRenderer(container.NewStack(rect, border))
}

func (s *colorSwatch) Tapped(_ *fyne.PointEvent) {
	if s.OnTapped != nil {
		s.OnTapped(s.Hex)
	}
}

// --- The Main Toolbar ---
func NewToolbar(w *InkWidget, e *ink.Engine, win fyne.Window) fyne.CanvasObject {
	tb := widget.NewToolbar(
		widget.NewToolbarAction(theme.DocumentCreateIcon(), func() {
			e.SetTool(state.ToolPen)
			w.SetStatus("Pen")
		}),
		widget.NewToolbarAction(theme.ColorChromaticIcon(), func() {
			e.SetTool(state.ToolHighlighter)
			w.SetStatus("Highlighter")
		}),
		widget.NewToolbarAction(theme.ContentRemoveIcon(), func() {
			e.SetTool(state.ToolEraser)
			w.SetStatus("Eraser")
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.ContentClearIcon(), func() {
			dialog.ShowConfirm("Erase page", "Erase all ink on this page?", func(ok bool) {
				if ok && e.ClearPage(ink.Confirmed) {
					w.Repaint()
					w.SetStatus("Page erased")
				}
			}, win)
		}),
		widget.NewToolbarAction(theme.DeleteIcon(), func() {
			dialog.ShowConfirm("Erase all", "Erase all annotations in this document?", func(ok bool) {
				if ok && e.ClearAll(ink.Confirmed) {
					w.Repaint()
					w.SetStatus("All annotations erased")
				}
			}, win)
		}),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.NavigateBackIcon(), w.PrevPage),
		widget.NewToolbarAction(theme.NavigateNextIcon(), w.NextPage),
		widget.NewToolbarSeparator(),
		widget.NewToolbarAction(theme.DocumentSaveIcon(), func() {
			d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, win)
					return
				}
				if writer != nil {
					w.SavePathData(writer)
				}
			}, win)
			d.SetFileName("annotations.json")
			d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
			d.Show()
		}),
		widget.NewToolbarAction(theme.FolderOpenIcon(), func() {
			d := dialog.NewFileOpen(func(reader fyne.URIReadCloser, err error) {
				if err != nil {
					dialog.ShowError(err, win)
					return
				}
				if reader != nil {
					w.LoadPathData(reader)
				}
			}, win)
			d.SetFilter(storage.NewExtensionFileFilter([]string{".json"}))
			d.Show()
		}),
		widget.NewToolbarAction(theme.DocumentPrintIcon(), func() {
			d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
				if err != nil {
					dialog.ShowError(err, win)
					return
				}
				if writer != nil {
					if err := ExportPDF(writer, e, w.Pages()); err != nil {
						dialog.ShowError(err, win)
					}
				}
			}, win)
			d.SetFileName("annotated.pdf")
			d.Show()
		}),
	)

	// --- Color Palette ---
	colorBox := container.NewHBox()
	for _, hex := range state.Palette {
		colorBox.Add(newColorSwatch(hex, func(hex string) {
			e.SetColor(hex)
			if e.Settings().Tool == state.ToolEraser {
				e.SetTool(state.ToolPen)
			}
		}))
	}

	// --- Stroke Width Slider ---
	strokeSlider := widget.NewSlider(2, 40)
	strokeSlider.Step = 2
	strokeSlider.SetValue(e.Settings().StrokeStep)
	strokeSlider.OnChanged = e.SetStrokeStep
	sliderContainer := container.New(layout.NewGridWrapLayout(fyne.NewSize(150, 35)), strokeSlider)

	drawing := widget.NewCheck("Draw", e.SetDrawing)
	drawing.SetChecked(e.Settings().Drawing)

	// --- Assemble everything ---
	return container.NewHBox(
		drawing,
		widget.NewLabel("Tool:"),
		tb,
		widget.NewSeparator(),
		widget.NewLabel("Color:"),
		colorBox,
		widget.NewSeparator(),
		widget.NewLabel("Size:"),
		sliderContainer,
		layout.NewSpacer(),
	)
}
