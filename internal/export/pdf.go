package export

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"log"
	"sort"

	"github.com/jung-kurt/gofpdf"

	"InkPDF/internal/state"
)

// PageSize is the size of a PDF page in points. The page number is the
// index in the slice plus one.
type PageSize struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Line is one stroke segment in PDF page space: origin bottom-left, y up.
type Line struct {
	Page           int
	X1, Y1, X2, Y2 float64
	Width          float64
	R, G, B        uint8
	Alpha          float64
}

var ErrNoPages = errors.New("export: document has no pages")

// Lines converts stored ink into PDF-space lines. Coordinates are scaled by
// the page size and divided by the device pixel ratio the ink was recorded
// at; y is flipped. Ink on pages the document does not have is skipped.
func Lines(pages map[int][]state.Segment, sizes []PageSize, dpr float64) []Line {
	if dpr <= 0 {
		dpr = 1
	}
	numbers := make([]int, 0, len(pages))
	for n := range pages {
		numbers = append(numbers, n)
	}
	sort.Ints(numbers)

	var out []Line
	for _, n := range numbers {
		if n < 1 || n > len(sizes) {
			if len(pages[n]) > 0 {
				log.Printf("[EXPORT] Skipping ink on page %d: document has %d pages", n, len(sizes))
			}
			continue
		}
		w, h := sizes[n-1].Width, sizes[n-1].Height
		for _, s := range pages[n] {
			c := state.ParseHex(s.Color)
			out = append(out, Line{
				Page:  n,
				X1:    s.LastX * w / dpr,
				Y1:    h - s.LastY*h/dpr,
				X2:    s.X * w / dpr,
				Y2:    h - s.Y*h/dpr,
				Width: s.LineWidth * w / dpr,
				R:     c.R,
				G:     c.G,
				B:     c.B,
				Alpha: s.Alpha,
			})
		}
	}
	return out
}

// Drawer is the subset of *gofpdf.Fpdf used to burn lines into a page.
type Drawer interface {
	SetDrawColor(r, g, b int)
	SetLineWidth(width float64)
	SetLineCapStyle(styleStr string)
	SetAlpha(alpha float64, blendModeStr string)
	Line(x1, y1, x2, y2 float64)
}

// Burn draws lines onto the current page of d. gofpdf measures y from the
// top, so PDF-space y is turned back using the page height.
func Burn(d Drawer, lines []Line, pageHeight float64) {
	d.SetLineCapStyle("round")
	for _, l := range lines {
		d.SetDrawColor(int(l.R), int(l.G), int(l.B))
		d.SetLineWidth(l.Width)
		d.SetAlpha(l.Alpha, "Normal")
		d.Line(l.X1, pageHeight-l.Y1, l.X2, pageHeight-l.Y2)
	}
	d.SetAlpha(1, "Normal")
}

// Flatten renders the lines into a new PDF with one page per size.
func Flatten(lines []Line, sizes []PageSize) ([]byte, error) {
	if len(sizes) == 0 {
		return nil, ErrNoPages
	}
	byPage := make(map[int][]Line)
	for _, l := range lines {
		byPage[l.Page] = append(byPage[l.Page], l)
	}

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		OrientationStr: "P",
		UnitStr:        "pt",
		Size:           gofpdf.SizeType{Wd: sizes[0].Width, Ht: sizes[0].Height},
	})
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	for i, sz := range sizes {
		pdf.AddPageFormat("P", gofpdf.SizeType{Wd: sz.Width, Ht: sz.Height})
		Burn(pdf, byPage[i+1], sz.Height)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("write flattened pdf: %w", err)
	}
	log.Printf("[EXPORT] Flattened %d lines onto %d pages (%d bytes)", len(lines), len(sizes), buf.Len())
	return buf.Bytes(), nil
}

// FlattenBase64 is Flatten encoded for the host bridge.
func FlattenBase64(lines []Line, sizes []PageSize) (string, error) {
	data, err := Flatten(lines, sizes)
	if err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(data), nil
}
