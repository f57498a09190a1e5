package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/benedoc-inc/pdfburn/audit"
	"github.com/benedoc-inc/pdfburn/font"
	"github.com/benedoc-inc/pdfburn/sample"
	"github.com/benedoc-inc/pdfburn/types"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestParse_Defaults(t *testing.T) {
	t.Setenv("DEBUG", "")

	c, err := Parse("")
	require.NoError(t, err)

	require.Equal(t, ":8080", c.Address)
	require.Equal(t, []string{"*"}, c.CORSOrigins)
	require.Equal(t, int64(DefaultBodyLimit), c.BodyLimit)
	require.Nil(t, c.Limiter)
	require.Equal(t, slog.LevelInfo, c.LogLevel)
	require.Equal(t, "log", c.Audit.Type)
	require.False(t, c.TrustProxy)
}

func TestParse_DebugEnv(t *testing.T) {
	t.Setenv("DEBUG", "1")

	c, err := Parse("")
	require.NoError(t, err)
	require.Equal(t, slog.LevelDebug, c.LogLevel)
}

func TestParse_File(t *testing.T) {
	t.Setenv("AUDIT_DSN", "postgres://burn@db/burn")

	path := writeConfig(t, `
address: ":9090"
cors:
  origins: ["https://editor.example.com"]
limits:
  body_bytes: 1048576
  rate: 10
  burst: 20
proxy:
  trusted: true
log:
  level: warn
  format: json
compose:
  workers: 2
  max_image_pixels: 1000000
fonts:
  Brand:
    regular: /fonts/brand.ttf
    bold: /fonts/brand-bold.ttf
audit:
  type: postgres
  dsn: ${AUDIT_DSN}
  timeout: 3s
`)

	c, err := Parse(path)
	require.NoError(t, err)

	require.Equal(t, ":9090", c.Address)
	require.Equal(t, []string{"https://editor.example.com"}, c.CORSOrigins)
	require.Equal(t, int64(1<<20), c.BodyLimit)
	require.NotNil(t, c.Limiter)
	require.Equal(t, 20, c.Limiter.Burst())
	require.True(t, c.TrustProxy)
	require.Equal(t, slog.LevelWarn, c.LogLevel)
	require.Equal(t, "json", c.LogFormat)
	require.Equal(t, 2, c.Workers)
	require.Equal(t, 1000000, c.MaxImagePixels)
	require.Equal(t, font.Files{Regular: "/fonts/brand.ttf", Bold: "/fonts/brand-bold.ttf"}, c.Fonts["Brand"])
	require.Equal(t, Audit{Type: "postgres", DSN: "postgres://burn@db/burn", Timeout: 3 * time.Second}, c.Audit)
}

func TestParse_Errors(t *testing.T) {
	tests := map[string]string{
		"unknown key":        "adress: \":80\"\n",
		"bad level":          "log:\n  level: loud\n",
		"bad format":         "log:\n  format: xml\n",
		"bad audit type":     "audit:\n  type: s3\n",
		"jsonl without path": "audit:\n  type: jsonl\n",
		"postgres no dsn":    "audit:\n  type: postgres\n",
	}

	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(writeConfig(t, content))
			require.Error(t, err)
		})
	}

	_, err := Parse(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestFallback(t *testing.T) {
	c := Default()

	data, err := c.Fallback()
	require.NoError(t, err)

	want, err := sample.Document()
	require.NoError(t, err)
	require.Equal(t, want, data)

	c.FallbackPath = writeConfig(t, "not a pdf")
	_, err = c.Fallback()
	require.Error(t, err)

	c.FallbackPath = filepath.Join(t.TempDir(), "fallback.pdf")
	require.NoError(t, os.WriteFile(c.FallbackPath, want, 0o600))
	data, err = c.Fallback()
	require.NoError(t, err)
	require.Equal(t, want, data)
}

func TestFontRegistry(t *testing.T) {
	c := Default()

	r, err := c.FontRegistry()
	require.NoError(t, err)
	require.Equal(t, "Helvetica", r.Resolve(font.Style{Family: "Inter"}).Face.Name())

	c.Fonts = map[string]font.Files{"Broken": {Regular: filepath.Join(t.TempDir(), "missing.ttf")}}
	_, err = c.FontRegistry()
	require.ErrorIs(t, err, types.ErrFontError)
}

func TestCompositor(t *testing.T) {
	c := Default()

	comp, err := c.Compositor(nil)
	require.NoError(t, err)

	res, err := comp.Burn(context.Background(), types.BurnRequest{
		Fields: []types.Field{{Type: types.FieldRadio, PageNumber: 1, Rect: types.NormalizedRect{X: 0.5, Y: 0.5, W: 0.05, H: 0.05}, Value: "true"}},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Drawn)
}

func TestRecorder_JSONL(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, nil))

	c := Default()
	c.Audit = Audit{Type: "jsonl", Path: filepath.Join(t.TempDir(), "audit.jsonl")}

	r, closer, err := c.Recorder(context.Background(), log)
	require.NoError(t, err)

	req := &types.BurnRequest{DocumentID: "doc"}
	r.Record(context.Background(), audit.NewRecord(req, &types.BurnResult{}, types.Requester{}, time.Now()))
	require.NoError(t, closer(context.Background()))

	data, err := os.ReadFile(c.Audit.Path)
	require.NoError(t, err)
	require.Contains(t, string(data), `"documentId":"doc"`)
	require.Empty(t, buf.String())
}

func TestRecorder_Log(t *testing.T) {
	tests := []struct {
		name    string
		content string
		logged  bool
	}{
		{"default", "address: \":9090\"\n", true},
		{"log", "audit:\n  type: log\n", true},
		{"none", "audit:\n  type: none\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			log := slog.New(slog.NewTextHandler(&buf, nil))

			c, err := Parse(writeConfig(t, tt.content))
			require.NoError(t, err)

			r, closer, err := c.Recorder(context.Background(), log)
			require.NoError(t, err)

			r.Record(context.Background(), audit.NewRecord(&types.BurnRequest{DocumentID: "doc"}, &types.BurnResult{}, types.Requester{}, time.Now()))
			require.NoError(t, closer(context.Background()))

			if tt.logged {
				require.Contains(t, buf.String(), "burn recorded")
			} else {
				require.NotContains(t, buf.String(), "burn recorded")
			}
		})
	}
}
