package sheet

import (
	"github.com/youruser/idcardapp/internal/template"
)

// Scale converts template pixels (300 DPI) into PDF points.
const Scale = 72.0 / template.DPI

// GapPx is the space between neighbouring cards, in template pixels.
const GapPx = 10

type Grid struct {
	Rows   int     `json:"rows"`
	Cols   int     `json:"cols"`
	PageW  float64 `json:"page_w"`
	PageH  float64 `json:"page_h"`
	CardW  float64 `json:"card_w"`
	CardH  float64 `json:"card_h"`
	Gap    float64 `json:"gap"`
	StartX float64 `json:"start_x"`
	StartY float64 `json:"start_y"`
}

// Slot is where one card lands: page index and top-left corner in points.
type Slot struct {
	Page int     `json:"page"`
	Row  int     `json:"row"`
	Col  int     `json:"col"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
}

// NewGrid centres a rows×cols grid of cards on the template's sheet.
func NewGrid(spec *template.Spec) Grid {
	rows, cols := spec.GridRows, spec.GridCols
	if rows <= 0 {
		rows = template.DefaultGridRows
	}
	if cols <= 0 {
		cols = template.DefaultGridCols
	}
	sw, sh := spec.SheetWidth, spec.SheetHeight
	if sw <= 0 {
		sw = template.DefaultSheetWidth
	}
	if sh <= 0 {
		sh = template.DefaultSheetHeight
	}

	g := Grid{
		Rows:  rows,
		Cols:  cols,
		PageW: float64(sw) * Scale,
		PageH: float64(sh) * Scale,
		CardW: float64(spec.CardWidth) * Scale,
		CardH: float64(spec.CardHeight) * Scale,
		Gap:   GapPx * Scale,
	}
	totalW := float64(cols)*g.CardW + float64(cols-1)*g.Gap
	totalH := float64(rows)*g.CardH + float64(rows-1)*g.Gap
	g.StartX = (g.PageW - totalW) / 2
	g.StartY = (g.PageH - totalH) / 2
	return g
}

func (g Grid) PerPage() int {
	return g.Rows * g.Cols
}

// Pages is the number of pages needed for n cards.
func (g Grid) Pages(n int) int {
	if n <= 0 {
		return 0
	}
	per := g.PerPage()
	return (n + per - 1) / per
}

// Place returns the slot of the i-th card (0-based), filling rows left to
// right, top to bottom.
func (g Grid) Place(i int) Slot {
	per := g.PerPage()
	idx := i % per
	s := Slot{
		Page: i / per,
		Row:  idx / g.Cols,
		Col:  idx % g.Cols,
	}
	s.X = g.StartX + float64(s.Col)*(g.CardW+g.Gap)
	s.Y = g.StartY + float64(s.Row)*(g.CardH+g.Gap)
	return s
}

// Plan lays out n cards.
func (g Grid) Plan(n int) []Slot {
	out := make([]Slot, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, g.Place(i))
	}
	return out
}
