package fonts

import "golang.org/x/image/font"

// DefaultMin is the shrink floor used when a caller gives none.
func DefaultMin(start int) int {
	if start-10 > 8 {
		return start - 10
	}
	return 8
}

// Fit returns the largest size from start down to floor (step 1) at
// which text fits in maxWidth, or floor when nothing fits. floor <= 0 selects
// DefaultMin(start).
func (f *Family) Fit(bold bool, text string, maxWidth float64, start, floor int) (font.Face, int) {
	if floor <= 0 {
		floor = DefaultMin(start)
	}
	size := start
	for size > floor && f.Measure(bold, size, text) > maxWidth {
		size--
	}
	return f.Face(bold, size), size
}
