package config

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/benedoc-inc/pdfburn/font"

	"golang.org/x/time/rate"
	"gopkg.in/yaml.v3"
)

// DefaultBodyLimit is the largest accepted request body
const DefaultBodyLimit = 50 << 20

type Config struct {
	Address string

	CORSOrigins []string
	BodyLimit   int64
	Limiter     *rate.Limiter

	// TrustProxy takes the client address from X-Forwarded-For / X-Real-IP.
	// Only set it when every request arrives through a proxy that overwrites them.
	TrustProxy bool

	LogLevel  slog.Level
	LogFormat string

	FallbackPath string

	Workers        int
	MaxImagePixels int
	Fonts          map[string]font.Files

	Audit Audit
}

type Audit struct {
	Type    string
	Path    string
	DSN     string
	Timeout time.Duration
}

// Default returns the configuration used when no file is given
func Default() *Config {
	c := &Config{
		Address: ":8080",

		CORSOrigins: []string{"*"},
		BodyLimit:   DefaultBodyLimit,

		LogLevel:  slog.LevelInfo,
		LogFormat: "text",

		Audit: Audit{Type: "log"},
	}

	if os.Getenv("DEBUG") != "" {
		c.LogLevel = slog.LevelDebug
	}

	return c
}

// Parse reads a YAML config file. An empty path yields the defaults.
func Parse(path string) (*Config, error) {
	c := Default()

	if path == "" {
		return c, nil
	}

	file, err := parseFile(path)

	if err != nil {
		return nil, err
	}

	if err := c.apply(file); err != nil {
		return nil, err
	}

	return c, nil
}

type configFile struct {
	Address string `yaml:"address"`

	CORS struct {
		Origins []string `yaml:"origins"`
	} `yaml:"cors"`

	Limits struct {
		BodyBytes int64 `yaml:"body_bytes"`
		Rate      *int  `yaml:"rate"`
		Burst     *int  `yaml:"burst"`
	} `yaml:"limits"`

	Proxy struct {
		Trusted bool `yaml:"trusted"`
	} `yaml:"proxy"`

	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`

	Document struct {
		Fallback string `yaml:"fallback"`
	} `yaml:"document"`

	Compose struct {
		Workers        int `yaml:"workers"`
		MaxImagePixels int `yaml:"max_image_pixels"`
	} `yaml:"compose"`

	Fonts map[string]font.Files `yaml:"fonts"`

	Audit struct {
		Type    string        `yaml:"type"`
		Path    string        `yaml:"path"`
		DSN     string        `yaml:"dsn"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"audit"`
}

func parseFile(path string) (*configFile, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, err
	}

	data = []byte(os.ExpandEnv(string(data)))

	var config configFile

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)

	if err := decoder.Decode(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (c *Config) apply(file *configFile) error {
	if file.Address != "" {
		c.Address = file.Address
	}

	if len(file.CORS.Origins) > 0 {
		c.CORSOrigins = file.CORS.Origins
	}

	if file.Limits.BodyBytes > 0 {
		c.BodyLimit = file.Limits.BodyBytes
	}

	c.Limiter = createLimiter(file.Limits.Rate, file.Limits.Burst)

	c.TrustProxy = file.Proxy.Trusted

	if file.Log.Level != "" {
		if err := c.LogLevel.UnmarshalText([]byte(file.Log.Level)); err != nil {
			return fmt.Errorf("log.level: %w", err)
		}
	}

	switch format := strings.ToLower(file.Log.Format); format {
	case "":
	case "text", "json":
		c.LogFormat = format
	default:
		return fmt.Errorf("log.format: unsupported format %q", file.Log.Format)
	}

	c.FallbackPath = file.Document.Fallback

	c.Workers = file.Compose.Workers
	c.MaxImagePixels = file.Compose.MaxImagePixels

	c.Fonts = file.Fonts

	if err := c.applyAudit(file); err != nil {
		return err
	}

	return nil
}

func createLimiter(limit, burst *int) *rate.Limiter {
	if limit == nil || *limit <= 0 {
		return nil
	}

	b := *limit

	if burst != nil && *burst > 0 {
		b = *burst
	}

	return rate.NewLimiter(rate.Limit(*limit), b)
}
