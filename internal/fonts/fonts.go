// Package fonts resolves font families named in entity descriptors to
// TrueType data. Families that were never registered fall back to the
// bundled Go fonts, so every descriptor renders.
package fonts

import (
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// Style selects one face of a family.
type Style uint8

const (
	Regular Style = iota
	Bold
	Italic
	BoldItalic
)

// StyleOf maps bold and italic flags to a Style.
func StyleOf(bold, italic bool) Style {
	switch {
	case bold && italic:
		return BoldItalic
	case bold:
		return Bold
	case italic:
		return Italic
	default:
		return Regular
	}
}

// Family holds the TTF data of up to four faces. Missing faces fall back to
// Regular.
type Family [4][]byte

var (
	goSans = Family{goregular.TTF, gobold.TTF, goitalic.TTF, gobolditalic.TTF}
	goMono = Family{gomono.TTF, gomonobold.TTF, gomonoitalic.TTF, gomonobolditalic.TTF}
)

// Registry maps family names to font data. The zero value is ready to use.
// A Registry is not safe for concurrent mutation.
type Registry struct {
	families map[string]Family
}

// Register adds or replaces a family.
func (r *Registry) Register(name string, f Family) {
	if r.families == nil {
		r.families = make(map[string]Family)
	}
	r.families[strings.ToLower(name)] = f
}

// Has reports whether name was registered.
func (r *Registry) Has(name string) bool {
	_, ok := r.families[strings.ToLower(name)]
	return ok
}

// TTF returns the data for one face of family. Unregistered families with
// "mono" or "coding" in their name use Go Mono; all others use Go Regular.
func (r *Registry) TTF(family string, s Style) []byte {
	f, ok := r.families[strings.ToLower(family)]
	if !ok {
		f = fallback(family)
	}
	if data := f[s]; len(data) > 0 {
		return data
	}
	return f[Regular]
}

func fallback(family string) Family {
	lower := strings.ToLower(family)
	if strings.Contains(lower, "mono") || strings.Contains(lower, "coding") {
		return goMono
	}
	return goSans
}

var defaultRegistry Registry

// Register adds a family to the default registry.
func Register(name string, f Family) { defaultRegistry.Register(name, f) }

// TTF looks a face up in the default registry.
func TTF(family string, bold, italic bool) []byte {
	return defaultRegistry.TTF(family, StyleOf(bold, italic))
}
