package render

import "fmt"

// Failure is a render that could not complete. Asset names what was
// missing: "template" for the background image, "font" for fonts.
type Failure struct {
	Asset string
	Err   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("render failed: %s: %v", f.Asset, f.Err)
}

func (f *Failure) Unwrap() error {
	return f.Err
}
