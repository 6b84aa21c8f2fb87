// Package render writes an AnalysisResult as text, JSON, YAML or an HTML page.
package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pierrec/lz4/v4"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/report"
)

// Output formats.
const (
	FormatText = "text"
	FormatJSON = "json"
	FormatYAML = "yaml"
	FormatHTML = "html"
)

// CompressedSuffix marks report files written as an lz4 frame.
const CompressedSuffix = ".lz4"

// ErrUnknownFormat is returned for a format outside FormatText..FormatHTML.
var ErrUnknownFormat = errors.New("unknown output format")

// SourceFunc returns the content of an analyzed file, for source previews.
type SourceFunc func(path string) ([]byte, error)

// Options controls rendering.
type Options struct {
	Format string

	// TopN bounds the function and file lists of the text and HTML reports.
	// Zero or less shows everything.
	TopN int

	// MinCC drops functions with a lower CC from the rendered function list.
	MinCC int

	NoColor bool
	Width   int

	// Source feeds the HTML source previews. Nil reads from disk.
	Source SourceFunc
}

// Write renders result to w in opts.Format.
func Write(w io.Writer, result report.AnalysisResult, opts Options) error {
	result = result.WithMinCC(opts.MinCC)

	switch opts.Format {
	case FormatJSON:
		return JSON(w, result)
	case FormatYAML:
		return YAML(w, result)
	case FormatText, "":
		return Text(w, result, opts)
	case FormatHTML:
		return HTML(w, result, opts)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, opts.Format)
	}
}

// WriteFile renders result to path, or to stdout when path is empty. A path
// ending in CompressedSuffix is written as an lz4 frame.
func WriteFile(path string, stdout io.Writer, result report.AnalysisResult, opts Options) error {
	if path == "" {
		return Write(stdout, result, opts)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create report file: %w", err)
	}

	var out io.Writer = file

	var zw *lz4.Writer

	if strings.HasSuffix(path, CompressedSuffix) {
		zw = lz4.NewWriter(file)
		out = zw
	}

	err = Write(out, result, opts)

	if zw != nil {
		err = errors.Join(err, zw.Close())
	}

	err = errors.Join(err, file.Close())
	if err != nil {
		return fmt.Errorf("write report %s: %w", path, err)
	}

	return nil
}

// JSON writes result as indented JSON.
func JSON(w io.Writer, result report.AnalysisResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	err := enc.Encode(result)
	if err != nil {
		return fmt.Errorf("encode JSON report: %w", err)
	}

	return nil
}

// YAML writes result as YAML.
func YAML(w io.Writer, result report.AnalysisResult) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)

	err := enc.Encode(result)
	if err != nil {
		return fmt.Errorf("encode YAML report: %w", err)
	}

	err = enc.Close()
	if err != nil {
		return fmt.Errorf("flush YAML report: %w", err)
	}

	return nil
}

// ReadJSON loads a JSON report written by JSON or WriteFile, decompressing it
// when path ends in CompressedSuffix.
func ReadJSON(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open report: %w", err)
	}
	defer file.Close()

	var in io.Reader = file
	if strings.HasSuffix(path, CompressedSuffix) {
		in = lz4.NewReader(file)
	}

	data, err := io.ReadAll(in)
	if err != nil {
		return nil, fmt.Errorf("read report %s: %w", path, err)
	}

	return data, nil
}
