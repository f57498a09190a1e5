package font

import (
	"fmt"
	"os"
	"sync"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/gobolditalic"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/gomonobold"
	"golang.org/x/image/font/gofont/gomonobolditalic"
	"golang.org/x/image/font/gofont/gomonoitalic"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/benedoc-inc/pdfburn/types"
)

// Files names the font files of one family. Only Regular is required.
type Files struct {
	Regular    string `yaml:"regular"`
	Bold       string `yaml:"bold"`
	Italic     string `yaml:"italic"`
	BoldItalic string `yaml:"bold_italic"`
}

// Faces holds the font data of one family. Only Regular is required.
type Faces struct {
	Regular, Bold, Italic, BoldItalic []byte
}

// Registry resolves styles to faces. It starts with the standard fonts and
// the Go fonts; more TrueType families can be registered.
type Registry struct {
	mu       sync.RWMutex
	families map[string]*family
}

var goFamilies = sync.OnceValues(func() (map[string]*family, error) {
	regular, err := parseFamily(Faces{
		Regular:    goregular.TTF,
		Bold:       gobold.TTF,
		Italic:     goitalic.TTF,
		BoldItalic: gobolditalic.TTF,
	})
	if err != nil {
		return nil, err
	}
	mono, err := parseFamily(Faces{
		Regular:    gomono.TTF,
		Bold:       gomonobold.TTF,
		Italic:     gomonoitalic.TTF,
		BoldItalic: gomonobolditalic.TTF,
	})
	if err != nil {
		return nil, err
	}
	return map[string]*family{"go": regular, "go mono": mono}, nil
})

// NewRegistry creates a registry with the built-in families
func NewRegistry() (*Registry, error) {
	builtin, err := goFamilies()
	if err != nil {
		return nil, types.WrapError(types.ErrCodeFontError, "failed to load Go fonts", err)
	}

	r := &Registry{families: make(map[string]*family)}
	for name, f := range builtin {
		r.families[name] = f
	}
	return r, nil
}

// Register adds a TrueType family under name, replacing any previous one
func (r *Registry) Register(name string, faces Faces) error {
	f, err := parseFamily(faces)
	if err != nil {
		return types.WrapErrorf(types.ErrCodeFontError, err, "font family %q", name)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.families[normalizeFamily(name)] = f
	return nil
}

// RegisterFiles reads and registers a TrueType family from disk
func (r *Registry) RegisterFiles(name string, files Files) error {
	var faces Faces
	for _, item := range []struct {
		path string
		dst  *[]byte
	}{
		{files.Regular, &faces.Regular},
		{files.Bold, &faces.Bold},
		{files.Italic, &faces.Italic},
		{files.BoldItalic, &faces.BoldItalic},
	} {
		if item.path == "" {
			continue
		}
		data, err := os.ReadFile(item.path)
		if err != nil {
			return types.WrapErrorf(types.ErrCodeFontError, err, "font family %q", name)
		}
		*item.dst = data
	}
	return r.Register(name, faces)
}

// Resolve returns the face for style. It never fails: unknown families
// resolve to the serif fallback and missing faces degrade to the nearest
// available one, both reported as substitutions.
func (r *Registry) Resolve(style Style) Resolution {
	key := normalizeFamily(style.Family)

	if r != nil {
		r.mu.RLock()
		f, ok := r.families[key]
		r.mu.RUnlock()
		if ok {
			face, degraded := f.pick(style.Bold, style.Italic)
			return Resolution{Face: face, Substituted: degraded}
		}
	}

	if f, ok := standardFamilies[key]; ok {
		face, degraded := f.pick(style.Bold, style.Italic)
		return Resolution{Face: face, Substituted: degraded}
	}

	face, _ := times.pick(style.Bold, style.Italic)
	return Resolution{Face: face, Substituted: true}
}

func parseFamily(faces Faces) (*family, error) {
	if len(faces.Regular) == 0 {
		return nil, fmt.Errorf("regular face is required")
	}

	f := &family{}
	for _, item := range []struct {
		data []byte
		dst  *Face
	}{
		{faces.Regular, &f.regular},
		{faces.Bold, &f.bold},
		{faces.Italic, &f.italic},
		{faces.BoldItalic, &f.boldItalic},
	} {
		if len(item.data) == 0 {
			continue
		}
		face, err := ParseTrueType(item.data)
		if err != nil {
			return nil, err
		}
		*item.dst = face
	}
	return f, nil
}
