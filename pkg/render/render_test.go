package render_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/analyze"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/render"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/report"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

const cleanSource = `"""Helpers."""


def add(a, b):
    """Add two numbers."""
    # plain sum
    return a + b
`

const branchySource = `"""Branchy."""


def route(kind, value):
    """Dispatch on kind."""
    # one branch per kind
    if kind == "a":
        return 1
    elif kind == "b":
        return 2
    elif kind == "c":
        return 3
    elif kind == "d":
        return 4
    elif kind == "e":
        return 5
    elif kind == "f":
        return 6
    elif kind == "g":
        return 7
    elif kind == "h":
        return 8
    elif kind == "i" and value:
        return 9
    return 0
`

var sources = map[string]string{
	"pkg/branchy.py": branchySource,
	"pkg/clean.py":   cleanSource,
	"pkg/broken.py":  "def broken(:\n    return\n",
}

func sourceOf(path string) ([]byte, error) {
	src, ok := sources[path]
	if !ok {
		return nil, os.ErrNotExist
	}

	return []byte(src), nil
}

func analyzeSources(t *testing.T, files map[string]string) report.AnalysisResult {
	t.Helper()

	classifier, err := risk.NewClassifier(risk.DefaultThresholds())
	require.NoError(t, err)

	inputs := make([]analyze.Input, 0, len(files))
	for path, src := range files {
		inputs = append(inputs, analyze.Input{Path: path, Source: src})
	}

	result, err := analyze.New(classifier).RunInputs(context.Background(), inputs)
	require.NoError(t, err)

	return result
}

func fixture(t *testing.T) report.AnalysisResult {
	t.Helper()

	return analyzeSources(t, sources)
}

func TestJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, fixture(t), render.Options{Format: render.FormatJSON}))

	var decoded struct {
		Summary struct {
			NumFiles     int `json:"num_files"`
			NumFailed    int `json:"num_failed"`
			NumFunctions int `json:"num_functions"`
		} `json:"summary"`
		Functions []struct {
			ID   string `json:"id"`
			CC   int    `json:"cc"`
			Tier string `json:"tier"`
		} `json:"functions"`
		Files  []map[string]any `json:"files"`
		Errors []struct {
			File string `json:"file"`
			Kind string `json:"kind"`
		} `json:"errors"`
	}

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))

	assert.Equal(t, 2, decoded.Summary.NumFiles)
	assert.Equal(t, 1, decoded.Summary.NumFailed)
	assert.Equal(t, 2, decoded.Summary.NumFunctions)
	require.Len(t, decoded.Functions, 2)
	assert.Equal(t, "pkg/branchy.py::route", decoded.Functions[0].ID)
	assert.Equal(t, 11, decoded.Functions[0].CC)
	assert.Equal(t, "high", decoded.Functions[0].Tier)
	require.Len(t, decoded.Errors, 1)
	assert.Equal(t, "pkg/broken.py", decoded.Errors[0].File)
	assert.Equal(t, report.ErrorKindParse, decoded.Errors[0].Kind)

	require.Len(t, decoded.Files, 2)
	assert.Contains(t, decoded.Files[0], "docstring_cov")
	assert.Contains(t, decoded.Files[0], "unused_imports")
}

func TestWrite_MinCCFiltersFunctionsOnly(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, fixture(t), render.Options{Format: render.FormatJSON, MinCC: 5}))

	var decoded report.AnalysisResult

	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded.Functions, 1)
	assert.Equal(t, "route", decoded.Functions[0].QualifiedName)
	assert.Equal(t, 2, decoded.Summary.NumFunctions)
}

func TestYAML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, fixture(t), render.Options{Format: render.FormatYAML}))

	out := buf.String()
	assert.Contains(t, out, "qualified_name: route")
	assert.Contains(t, out, "tier: high")
	assert.Contains(t, out, "num_files: 2")
	assert.Contains(t, out, "kind: parse_error")
}

func TestText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, fixture(t), render.Options{NoColor: true, TopN: 1, Width: 80}))

	out := buf.String()
	assert.Contains(t, out, "CYCLOCALC")
	assert.Contains(t, out, "2 files  2 functions")
	assert.Contains(t, out, "Riskiest functions (1 of 2)")
	assert.Contains(t, out, "pkg/branchy.py::route")
	assert.NotContains(t, out, "pkg/clean.py::add")
	assert.Contains(t, out, "Cyclomatic complexity")
	assert.Contains(t, out, "parse_error")
	assert.Contains(t, out, "1 of 3 files could not be analyzed")
	assert.NotContains(t, out, "\x1b[")
}

func TestText_Colored(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Text(&buf, fixture(t), render.Options{}))
	assert.Contains(t, buf.String(), "\x1b[31mhigh")
}

func TestHTML(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	require.NoError(t, render.Write(&buf, fixture(t), render.Options{Format: render.FormatHTML, Source: sourceOf}))

	out := buf.String()
	assert.Equal(t, 1, strings.Count(out, "<!DOCTYPE html>"))
	assert.Contains(t, out, "Complexity and risk report")
	assert.Contains(t, out, "Riskiest files")
	assert.Contains(t, out, "CC_avg")
	assert.Contains(t, out, "Source previews")
	assert.Contains(t, out, `<span class="ln">4</span>def route(kind, value):`)
	assert.Contains(t, out, "tier-high")
	assert.Contains(t, out, "parse_error")
}

func TestHTML_PreviewTruncated(t *testing.T) {
	t.Parallel()

	var src strings.Builder

	src.WriteString("def long():\n")

	for i := range 40 {
		fmt.Fprintf(&src, "    x%d = %d\n", i, i)
	}

	result := analyzeSources(t, map[string]string{"long.py": src.String()})

	var buf bytes.Buffer

	err := render.HTML(&buf, result, render.Options{Source: func(string) ([]byte, error) {
		return []byte(src.String()), nil
	}})
	require.NoError(t, err)

	out := buf.String()
	assert.Contains(t, out, `<span class="ln">30</span>    x28 = 28`)
	assert.NotContains(t, out, `<span class="ln">31</span>`)
	assert.Contains(t, out, "…")
}

func TestHTML_MissingSourceSkipsPreview(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer

	err := render.HTML(&buf, fixture(t), render.Options{Source: func(string) ([]byte, error) {
		return nil, errors.New("gone")
	}})
	require.NoError(t, err)
	assert.NotContains(t, buf.String(), `class="ln"`)
}

func TestWrite_UnknownFormat(t *testing.T) {
	t.Parallel()

	err := render.Write(&bytes.Buffer{}, fixture(t), render.Options{Format: "xml"})
	require.ErrorIs(t, err, render.ErrUnknownFormat)
}

func TestWriteFile_Compressed(t *testing.T) {
	t.Parallel()

	result := fixture(t)
	opts := render.Options{Format: render.FormatJSON}

	var plain bytes.Buffer

	require.NoError(t, render.Write(&plain, result, opts))

	dir := t.TempDir()

	for _, name := range []string{"report.json", "report.json.lz4"} {
		path := filepath.Join(dir, name)
		require.NoError(t, render.WriteFile(path, nil, result, opts))

		data, err := render.ReadJSON(path)
		require.NoError(t, err)
		assert.JSONEq(t, plain.String(), string(data), name)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "report.json.lz4"))
	require.NoError(t, err)
	assert.NotEqual(t, plain.Bytes(), raw)
}

func TestWriteFile_Stdout(t *testing.T) {
	t.Parallel()

	var stdout bytes.Buffer

	require.NoError(t, render.WriteFile("", &stdout, fixture(t), render.Options{Format: render.FormatYAML}))
	assert.Contains(t, stdout.String(), "summary:")
}
