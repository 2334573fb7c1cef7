package state

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Segment is one stored piece of ink: a line from (LastX, LastY) to (X, Y)
// in page-fraction units. Every segment of one gesture shares a DrawOrder.
type Segment struct {
	X         float64 `json:"x"`
	Y         float64 `json:"y"`
	LastX     float64 `json:"lastX"`
	LastY     float64 `json:"lastY"`
	LineWidth float64 `json:"lineWidth"`
	Color     string  `json:"color"`
	Alpha     float64 `json:"alpha"`
	DrawOrder int64   `json:"drawOrder"`
}

// Continues reports whether s starts exactly where prev ends.
func (s Segment) Continues(prev Segment) bool {
	return s.LastX == prev.X && s.LastY == prev.Y
}

// IsPoint reports whether the segment has zero length (a tap).
func (s Segment) IsPoint() bool {
	return s.X == s.LastX && s.Y == s.LastY
}

type Tool string

const (
	ToolPen         Tool = "pen"
	ToolHighlighter Tool = "highlight"
	ToolEraser      Tool = "eraser"
)

func ParseTool(s string) (Tool, error) {
	switch t := Tool(s); t {
	case ToolPen, ToolHighlighter, ToolEraser:
		return t, nil
	}
	return "", fmt.Errorf("unknown tool %q", s)
}

// Style is the ink style of a gesture, resolved once when the gesture starts.
type Style struct {
	Tool  Tool
	Color string
	// Width is the stroke width in page pixels.
	Width float64
	Alpha float64
}

const (
	penAlpha       = 1.0
	highlightAlpha = 0.4
)

// ResolveStyle derives the gesture style from the selected tool.
// Highlighter strokes are twice as wide and translucent.
func ResolveStyle(tool Tool, hex string, strokeStep float64) Style {
	st := Style{Tool: tool, Color: hex, Width: strokeStep, Alpha: penAlpha}
	if tool == ToolHighlighter {
		st.Width = strokeStep * 2
		st.Alpha = highlightAlpha
	}
	return st
}

// Palette is the fixed set of stroke colors offered to the user.
var Palette = []string{
	"#F34A47",
	"#FF9F2E",
	"#FFD93D",
	"#3DBE6C",
	"#3A86FF",
	"#7B4DFF",
	"#000000",
}

const DefaultColor = "#F34A47"

// ParseHex converts "#RRGGBB" (or "#RGB") into an opaque color.
// Unparseable input resolves to black.
func ParseHex(hex string) color.NRGBA {
	s := strings.TrimPrefix(strings.TrimSpace(hex), "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	black := color.NRGBA{A: 255}
	if len(s) != 6 {
		return black
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return black
	}
	return color.NRGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}
}

// Rect is an axis-aligned box in page pixels.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

func (r Rect) Inset(d float64) Rect {
	return Rect{r.MinX + d, r.MinY + d, r.MaxX - d, r.MaxY - d}
}

func (r Rect) Contains(x, y float64) bool {
	return x >= r.MinX && x <= r.MaxX && y >= r.MinY && y <= r.MaxY
}

func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinX: min(r.MinX, o.MinX),
		MinY: min(r.MinY, o.MinY),
		MaxX: max(r.MaxX, o.MaxX),
		MaxY: max(r.MaxY, o.MaxY),
	}
}

type OpType string

const (
	OpCommit  OpType = "commit"
	OpReplace OpType = "replace"
	OpClear   OpType = "clear"
	OpHydrate OpType = "hydrate"
)

// Change describes one mutation of the store.
type Change struct {
	Type    OpType `json:"type"`
	Page    int    `json:"page,omitempty"` // 0 for whole-document operations
	Version uint64 `json:"version,omitempty"`
}
