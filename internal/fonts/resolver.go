// Package fonts resolves template font names to parsed fonts and sizes
// text to fit. Resolution walks a fixed chain: the named file, the
// configured default file, the bundled Go font, then the built-in bitmap
// face, and reports which one was used.
package fonts

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/opentype"
)

// Source says which link of the chain produced a font.
type Source int

const (
	SourceFile Source = iota
	SourceDefaultFile
	SourceEmbedded
	SourceBuiltin
)

func (s Source) String() string {
	switch s {
	case SourceFile:
		return "file"
	case SourceDefaultFile:
		return "default_file"
	case SourceEmbedded:
		return "embedded"
	default:
		return "builtin"
	}
}

// Resolution describes how a font request was satisfied. Fallback is set
// whenever the requested file was not the one used; Reason carries the
// first failure.
type Resolution struct {
	Requested string
	Path      string
	Source    Source
	Fallback  bool
	Reason    string
}

// Font is a parsed font ready for faces. Data and parsed are nil for the
// built-in bitmap fallback.
type Font struct {
	Name       string
	Bold       bool
	Data       []byte
	Resolution Resolution

	parsed *opentype.Font
}

// Builtin reports whether f is the fixed-size bitmap fallback.
func (f *Font) Builtin() bool {
	return f.parsed == nil
}

// Resolver walks the fallback chain. Dir is searched for relative names.
type Resolver struct {
	Dir            string
	DefaultRegular string
	DefaultBold    string

	// embedded lets tests knock out the bundled family.
	embedded func(bold bool) []byte
}

func embeddedGoFont(bold bool) []byte {
	if bold {
		return gobold.TTF
	}
	return goregular.TTF
}

// Resolve never fails: the last link is the built-in face.
func (r *Resolver) Resolve(name string, bold bool) (*Font, Resolution) {
	res := Resolution{Requested: name}
	var reason error

	def := r.DefaultRegular
	if bold {
		def = r.DefaultBold
	}

	candidates := []struct {
		name   string
		source Source
	}{
		{name, SourceFile},
		{def, SourceDefaultFile},
	}
	for _, c := range candidates {
		if c.name == "" {
			continue
		}
		path := r.path(c.name)
		f, err := loadFile(path)
		if err == nil {
			res.Path = path
			res.Source = c.source
			res.Fallback = c.source != SourceFile
			return &Font{Name: c.name, Bold: bold, Data: f.data, parsed: f.parsed, Resolution: res}, res
		}
		if reason == nil {
			reason = err
		}
	}

	res.Fallback = true
	if reason != nil {
		res.Reason = reason.Error()
	} else {
		res.Reason = "no font configured"
	}

	embedded := r.embedded
	if embedded == nil {
		embedded = embeddedGoFont
	}
	if data := embedded(bold); data != nil {
		if parsed, err := opentype.Parse(data); err == nil {
			res.Source = SourceEmbedded
			return &Font{Name: "go", Bold: bold, Data: data, parsed: parsed, Resolution: res}, res
		}
	}

	res.Source = SourceBuiltin
	return &Font{Name: "builtin", Bold: bold, Resolution: res}, res
}

func (r *Resolver) path(name string) string {
	if filepath.IsAbs(name) || r.Dir == "" {
		return name
	}
	if _, err := os.Stat(name); err == nil && filepath.Dir(name) != "." {
		return name
	}
	return filepath.Join(r.Dir, name)
}

type loaded struct {
	data   []byte
	parsed *opentype.Font
}

func loadFile(path string) (loaded, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return loaded{}, errors.Wrapf(err, "read font %s", path)
	}
	parsed, err := opentype.Parse(data)
	if err != nil {
		return loaded{}, errors.Wrapf(err, "parse font %s", path)
	}
	return loaded{data: data, parsed: parsed}, nil
}
