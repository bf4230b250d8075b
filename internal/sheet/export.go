package sheet

import (
	"fmt"
	"strings"
)

// ExportText lists which card went where, one page block at a time. It is
// written next to sheet PDFs so a print run can be checked by name.
func ExportText(title string, g Grid, names []string) string {
	lines := []string{}
	if title != "" {
		lines = append(lines, "# "+title)
	}
	lines = append(lines, fmt.Sprintf("%dx%d per page, %d cards, %d pages", g.Cols, g.Rows, len(names), g.Pages(len(names))))

	page := -1
	for i, name := range names {
		s := g.Place(i)
		if s.Page != page {
			page = s.Page
			lines = append(lines, fmt.Sprintf("## page %d", page+1))
		}
		lines = append(lines, strings.TrimSpace(fmt.Sprintf("r%dc%d %s", s.Row+1, s.Col+1, name)))
	}
	return strings.Join(lines, "\n")
}
