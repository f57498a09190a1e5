package config

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/benedoc-inc/pdfburn/compose"
	"github.com/benedoc-inc/pdfburn/core/parse"
	"github.com/benedoc-inc/pdfburn/font"
	"github.com/benedoc-inc/pdfburn/sample"
)

// FontRegistry loads the configured TrueType families next to the built-in ones
func (c *Config) FontRegistry() (*font.Registry, error) {
	r, err := font.NewRegistry()

	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(c.Fonts))

	for name := range c.Fonts {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		if err := r.RegisterFiles(name, c.Fonts[name]); err != nil {
			return nil, err
		}
	}

	return r, nil
}

// Fallback returns the document burned when a request has none: the
// configured file, or the built-in sample
func (c *Config) Fallback() ([]byte, error) {
	if c.FallbackPath == "" {
		return sample.Document()
	}

	data, err := os.ReadFile(c.FallbackPath)

	if err != nil {
		return nil, fmt.Errorf("document.fallback: %w", err)
	}

	if _, err := parse.Open(data, nil); err != nil {
		return nil, fmt.Errorf("document.fallback: %w", err)
	}

	return data, nil
}

// Compositor builds the compositor with fonts and fallback loaded
func (c *Config) Compositor(log *slog.Logger) (*compose.Compositor, error) {
	fonts, err := c.FontRegistry()

	if err != nil {
		return nil, err
	}

	fallback, err := c.Fallback()

	if err != nil {
		return nil, err
	}

	return compose.New(compose.Options{
		Workers:        c.Workers,
		MaxImagePixels: c.MaxImagePixels,
		Fonts:          fonts,
		Fallback:       fallback,
		Logger:         log,
	}), nil
}
