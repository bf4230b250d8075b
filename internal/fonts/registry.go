package fonts

import (
	"sync"

	"github.com/mylxsw/asteria/log"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"

	"github.com/youruser/idcardapp/internal/metrics"
)

// Registry is the shared table of parsed fonts. Fonts are resolved once
// and never mutated afterwards, so a Registry is safe for concurrent
// renders. Faces are not: each render takes its own Family.
type Registry struct {
	resolver Resolver

	mu    sync.RWMutex
	fonts map[fontKey]*Font
}

type fontKey struct {
	name string
	bold bool
}

// NewRegistry creates a registry resolving relative names against dir.
func NewRegistry(dir, defaultRegular, defaultBold string) *Registry {
	return &Registry{
		resolver: Resolver{Dir: dir, DefaultRegular: defaultRegular, DefaultBold: defaultBold},
		fonts:    make(map[fontKey]*Font),
	}
}

// Font returns the parsed font for name, resolving it on first use.
func (r *Registry) Font(name string, bold bool) *Font {
	key := fontKey{name, bold}

	r.mu.RLock()
	f, ok := r.fonts[key]
	r.mu.RUnlock()
	if ok {
		return f
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.fonts[key]; ok {
		return f
	}

	f, res := r.resolver.Resolve(name, bold)
	if res.Fallback {
		log.WithFields(log.Fields{
			"font":   name,
			"bold":   bold,
			"source": res.Source.String(),
		}).Warningf("font fallback in use: %s", res.Reason)
		metrics.Fallback("font")
	}
	r.fonts[key] = f
	return f
}

// Family opens a per-render family for the regular and bold font names.
func (r *Registry) Family(regular, bold string) *Family {
	return &Family{
		regular: r.Font(regular, false),
		bold:    r.Font(bold, true),
		faces:   make(map[faceKey]font.Face),
	}
}

// Family holds the faces of one render. Not safe for concurrent use.
type Family struct {
	regular *Font
	bold    *Font
	faces   map[faceKey]font.Face
}

type faceKey struct {
	bold bool
	size int
}

// Regular returns the regular font of the family.
func (f *Family) Regular() *Font { return f.regular }

// Bold returns the bold font of the family.
func (f *Family) Bold() *Font { return f.bold }

// Face returns a face of the given pixel size. A face that cannot be built
// degrades to the built-in bitmap face.
func (f *Family) Face(bold bool, size int) font.Face {
	key := faceKey{bold, size}
	if face, ok := f.faces[key]; ok {
		return face
	}

	src := f.regular
	if bold {
		src = f.bold
	}

	var face font.Face = basicfont.Face7x13
	if !src.Builtin() && size > 0 {
		nf, err := opentype.NewFace(src.parsed, &opentype.FaceOptions{
			Size:    float64(size),
			DPI:     72,
			Hinting: font.HintingNone,
		})
		if err != nil {
			log.WithFields(log.Fields{"font": src.Name, "size": size}).Warningf("create font face failed: %v", err)
			metrics.Fallback("font")
		} else {
			face = nf
		}
	}
	f.faces[key] = face
	return face
}

// Measure returns the advance width of text in pixels.
func (f *Family) Measure(bold bool, size int, text string) float64 {
	return toPixels(font.MeasureString(f.Face(bold, size), text))
}

// Ascent returns the distance from the top of the line to the baseline.
func (f *Family) Ascent(bold bool, size int) float64 {
	return toPixels(f.Face(bold, size).Metrics().Ascent)
}

// Close releases every face the family opened.
func (f *Family) Close() {
	for k, face := range f.faces {
		if face != basicfont.Face7x13 {
			_ = face.Close()
		}
		delete(f.faces, k)
	}
}

func toPixels(v fixed.Int26_6) float64 {
	return float64(v) / 64
}
