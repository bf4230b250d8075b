package pdf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/youruser/idcardapp/internal/fonts"
	"github.com/youruser/idcardapp/internal/layout"
	"github.com/youruser/idcardapp/internal/sheet"
	"github.com/youruser/idcardapp/internal/template"
)

func TestValueLinesFitInPDF(t *testing.T) {
	fam := fonts.NewRegistry(t.TempDir(), "", "").Family("", "")
	t.Cleanup(fam.Close)

	for _, size := range []int{24, 26, 36} {
		spec := template.Default(template.Landscape)
		spec.Font.ValueFontSize = size

		res := layout.New(spec, fam).Layout([]template.Field{
			{Name: "name", Label: "NAME", Value: strings.Repeat("1", 200), Order: 10},
			{Name: "father_name", Label: "FATHER", Value: strings.Repeat("Wide Mmm ", 20), Order: 20},
			{Name: "address", Label: "ADDRESS", Value: strings.Repeat("House 12, Street 4, ", 6), Order: 60},
		})

		maxW := map[string]float64{}
		for _, p := range res.Fields {
			maxW[p.Name] = p.MaxWidth
		}

		d := newDocument(spec, fam, float64(spec.CardWidth)*sheet.Scale, float64(spec.CardHeight)*sheet.Scale, 95)
		require.True(t, d.embedded[0])
		var checked int
		for _, cmd := range res.Commands {
			if cmd.Kind != layout.Value {
				continue
			}
			d.setFont(cmd.Bold, float64(cmd.Size)*sheet.Scale)
			w := d.pdf.GetStringWidth(cmd.Text) / sheet.Scale
			// gofpdf keeps glyph widths in thousandths of an em
			assert.LessOrEqual(t, w, maxW[cmd.Field]+1, "size %d field %s line %q", size, cmd.Field, cmd.Text)
			checked++
		}
		assert.Greater(t, checked, 3)
	}
}
