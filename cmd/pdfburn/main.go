package main

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/benedoc-inc/pdfburn/config"
	"github.com/benedoc-inc/pdfburn/coords"
	"github.com/benedoc-inc/pdfburn/internal/otel"
	"github.com/benedoc-inc/pdfburn/sample"
	"github.com/benedoc-inc/pdfburn/types"
)

func main() {
	if err := run(context.Background(), os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(2)
		}

		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("pdfburn", flag.ContinueOnError)
	flags.SetOutput(stderr)

	var (
		configPath = flags.String("config", "", "Path to config file (fonts, fallback document, compose limits)")
		inputPDF   = flags.String("input", "", "Path to input PDF file (if empty, the sample document is used)")
		fieldsJSON = flags.String("fields", "", "Path to JSON file with the fields to burn")
		outputPDF  = flags.String("output", "", "Path to output PDF file")
		frame      = flags.String("frame", "", "Treat field rects as pixels in a WIDTHxHEIGHT frame")
		samplePDF  = flags.String("sample", "", "Write the sample document to this path and exit")
		documentID = flags.String("id", "", "Document id reported in the log")
		verbose    = flags.Bool("verbose", false, "Enable verbose logging")
	)

	if err := flags.Parse(args); err != nil {
		return err
	}

	if *samplePDF != "" {
		data, err := sample.Document()

		if err != nil {
			return err
		}

		return os.WriteFile(*samplePDF, data, 0o644)
	}

	if *fieldsJSON == "" {
		return errors.New("-fields flag is required")
	}

	if *outputPDF == "" {
		return errors.New("-output flag is required")
	}

	cfg, err := config.Parse(*configPath)

	if err != nil {
		return err
	}

	if *verbose {
		cfg.LogLevel = slog.LevelDebug
	}

	if _, err := otel.Setup(ctx, otel.Options{Level: cfg.LogLevel, Format: cfg.LogFormat, Output: stderr}); err != nil {
		return err
	}

	log := slog.Default()

	fields, err := readFields(*fieldsJSON)

	if err != nil {
		return err
	}

	if *frame != "" {
		f, err := parseFrame(*frame)

		if err != nil {
			return err
		}

		for i := range fields {
			r := fields[i].Rect
			fields[i].Rect = f.Normalize(coords.PixelRect{X: r.X, Y: r.Y, Width: r.W, Height: r.H})
		}
	}

	req := types.BurnRequest{
		DocumentID: *documentID,
		Fields:     fields,
	}

	if *inputPDF != "" {
		data, err := os.ReadFile(*inputPDF)

		if err != nil {
			return fmt.Errorf("reading PDF: %w", err)
		}

		req.DocumentData = base64.StdEncoding.EncodeToString(data)
	}

	log.Debug("burning", "input", *inputPDF, "fields", len(fields), "output", *outputPDF)

	c, err := cfg.Compositor(log)

	if err != nil {
		return err
	}

	result, err := c.Burn(ctx, req)

	if err != nil {
		return err
	}

	if err := os.WriteFile(*outputPDF, result.Output, 0o644); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}

	fmt.Fprintf(stdout, "input  sha256:%s\n", result.InputDigest)
	fmt.Fprintf(stdout, "output sha256:%s\n", result.OutputDigest)
	fmt.Fprintf(stdout, "drawn  %d of %d fields on %d pages\n", result.Drawn, len(fields), result.Pages)

	for _, w := range result.Warnings {
		fmt.Fprintf(stdout, "warning %s %s: %s\n", w.Code, w.FieldID, w.Message)
	}

	return nil
}

// readFields accepts a bare field array or an object with a "fields" key
func readFields(path string) ([]types.Field, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		return nil, fmt.Errorf("reading fields: %w", err)
	}

	var fields []types.Field

	if err := json.Unmarshal(data, &fields); err == nil {
		return fields, nil
	}

	var wrapped struct {
		Fields []types.Field `json:"fields"`
	}

	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("parsing fields: %w", err)
	}

	return wrapped.Fields, nil
}

func parseFrame(s string) (coords.Frame, error) {
	w, h, ok := strings.Cut(strings.ToLower(s), "x")

	if !ok {
		return coords.Frame{}, fmt.Errorf("invalid frame %q, want WIDTHxHEIGHT", s)
	}

	width, err := strconv.ParseFloat(strings.TrimSpace(w), 64)

	if err != nil {
		return coords.Frame{}, fmt.Errorf("invalid frame width: %w", err)
	}

	height, err := strconv.ParseFloat(strings.TrimSpace(h), 64)

	if err != nil {
		return coords.Frame{}, fmt.Errorf("invalid frame height: %w", err)
	}

	f := coords.Frame{Width: width, Height: height}

	if !f.Valid() {
		return coords.Frame{}, fmt.Errorf("invalid frame %q, both sides must be positive", s)
	}

	return f, nil
}
