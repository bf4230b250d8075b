package sheet_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/youruser/idcardapp/internal/sheet"
	"github.com/youruser/idcardapp/internal/template"
)

func TestNewGrid_DefaultSheet(t *testing.T) {
	g := sheet.NewGrid(template.Default(template.Landscape))

	assert.Equal(t, 5, g.Rows)
	assert.Equal(t, 2, g.Cols)
	assert.Equal(t, 10, g.PerPage())
	assert.InDelta(t, 595.2, g.PageW, 0.001)
	assert.InDelta(t, 841.92, g.PageH, 0.001)
	assert.InDelta(t, 243.6, g.CardW, 0.001)
	assert.InDelta(t, 2.4, g.Gap, 0.001)

	// centred: equal margins on both sides
	right := g.PageW - (g.StartX + 2*g.CardW + g.Gap)
	assert.InDelta(t, g.StartX, right, 0.001)
	bottom := g.PageH - (g.StartY + 5*g.CardH + 4*g.Gap)
	assert.InDelta(t, g.StartY, bottom, 0.001)
}

func TestGrid_Place(t *testing.T) {
	g := sheet.NewGrid(template.Default(template.Landscape))

	first := g.Place(0)
	assert.Equal(t, 0, first.Page)
	assert.InDelta(t, g.StartX, first.X, 0.001)
	assert.InDelta(t, g.StartY, first.Y, 0.001)

	second := g.Place(1)
	assert.Equal(t, 1, second.Col)
	assert.InDelta(t, g.StartX+g.CardW+g.Gap, second.X, 0.001)

	third := g.Place(2)
	assert.Equal(t, 1, third.Row)
	assert.Equal(t, 0, third.Col)
	assert.InDelta(t, g.StartY+g.CardH+g.Gap, third.Y, 0.001)

	eleventh := g.Place(10)
	assert.Equal(t, 1, eleventh.Page)
	assert.Equal(t, first.X, eleventh.X)
	assert.Equal(t, first.Y, eleventh.Y)
}

func TestGrid_Pages(t *testing.T) {
	spec := template.Default(template.Landscape)
	spec.GridRows, spec.GridCols = 2, 2
	g := sheet.NewGrid(spec)

	assert.Equal(t, 0, g.Pages(0))
	assert.Equal(t, 1, g.Pages(4))
	assert.Equal(t, 2, g.Pages(5))
	assert.Len(t, g.Plan(5), 5)
}

func TestNewGrid_ZeroGridUsesDefaults(t *testing.T) {
	spec := template.Default(template.Portrait)
	spec.GridRows, spec.GridCols, spec.SheetWidth = 0, 0, 0
	g := sheet.NewGrid(spec)
	assert.Equal(t, 10, g.PerPage())
	assert.InDelta(t, 595.2, g.PageW, 0.001)
}

func TestExportText(t *testing.T) {
	spec := template.Default(template.Landscape)
	spec.GridRows, spec.GridCols = 1, 2
	g := sheet.NewGrid(spec)

	got := sheet.ExportText("Green Valley", g, []string{"Ali", "Sara", "Omar"})
	want := "# Green Valley\n" +
		"2x1 per page, 3 cards, 2 pages\n" +
		"## page 1\n" +
		"r1c1 Ali\n" +
		"r1c2 Sara\n" +
		"## page 2\n" +
		"r1c1 Omar"
	assert.Equal(t, want, got)
}
