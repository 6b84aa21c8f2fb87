package analyze_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/analyze"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/report"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
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

const brokenSource = "def broken(:\n    return\n"

func newAnalyzer(t *testing.T, opts ...analyze.Option) *analyze.Analyzer {
	t.Helper()

	classifier, err := risk.NewClassifier(risk.DefaultThresholds())
	require.NoError(t, err)

	return analyze.New(classifier, append([]analyze.Option{analyze.WithWorkers(4)}, opts...)...)
}

func writeFiles(t *testing.T, files map[string]string) []string {
	t.Helper()

	dir := t.TempDir()
	paths := make([]string, 0, len(files))

	for name, content := range files {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		paths = append(paths, path)
	}

	return paths
}

func TestRun_ParseFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	paths := writeFiles(t, map[string]string{
		"a.py":      cleanSource,
		"b.py":      branchySource,
		"c.py":      cleanSource,
		"broken.py": brokenSource,
	})

	result, err := newAnalyzer(t).Run(context.Background(), paths)
	require.NoError(t, err)

	assert.Equal(t, 3, result.Summary.NumFiles)
	assert.Equal(t, 1, result.Summary.NumFailed)
	assert.Len(t, result.Files, 3)

	require.Len(t, result.Errors, 1)
	assert.Equal(t, report.ErrorKindParse, result.Errors[0].Kind)
	assert.True(t, strings.HasSuffix(result.Errors[0].File, "broken.py"))
}

func TestRun_Idempotent(t *testing.T) {
	t.Parallel()

	paths := writeFiles(t, map[string]string{
		"a.py": cleanSource,
		"b.py": branchySource,
		"c.py": brokenSource,
	})

	a := newAnalyzer(t)

	first, err := a.Run(context.Background(), paths)
	require.NoError(t, err)

	reversed := make([]string, len(paths))
	for i, p := range paths {
		reversed[len(paths)-1-i] = p
	}

	second, err := a.Run(context.Background(), reversed)
	require.NoError(t, err)

	want, err := json.Marshal(first)
	require.NoError(t, err)

	got, err := json.Marshal(second)
	require.NoError(t, err)

	assert.JSONEq(t, string(want), string(got))
}

func TestRun_ClassifiesEndToEnd(t *testing.T) {
	t.Parallel()

	paths := writeFiles(t, map[string]string{"b.py": branchySource, "a.py": cleanSource})

	result, err := newAnalyzer(t).Run(context.Background(), paths)
	require.NoError(t, err)
	require.Len(t, result.Functions, 2)

	top := result.Functions[0]
	assert.Equal(t, "route", top.QualifiedName)
	assert.Equal(t, 11, top.CC, "if + 8 elif + one extra and operand")
	assert.Equal(t, 1, top.NEST)
	assert.Equal(t, 4, top.Line)
	assert.Equal(t, risk.TierHigh, top.Tier)

	add := result.Functions[1]
	assert.Equal(t, 1, add.CC)
	assert.Equal(t, 4, add.LEN)
	assert.Equal(t, risk.TierLow, add.Tier)

	require.NotEmpty(t, result.Smells)
	assert.Equal(t, risk.MetricCC, result.Smells[0].Metric)
	assert.Equal(t, top.ID, result.Smells[0].Subject)
}

func TestRun_Cancelled(t *testing.T) {
	t.Parallel()

	paths := writeFiles(t, map[string]string{"a.py": cleanSource})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newAnalyzer(t).Run(ctx, paths)
	require.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzeFile_Unreadable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	oversized := filepath.Join(dir, "big.py")
	require.NoError(t, os.WriteFile(oversized, []byte(strings.Repeat("x = 1\n", 100)), 0o600))

	binary := filepath.Join(dir, "bin.py")
	require.NoError(t, os.WriteFile(binary, []byte{0xff, 0xfe, 0x00}, 0o600))

	a := newAnalyzer(t, analyze.WithMaxFileSize(64))

	for _, path := range []string{oversized, binary, filepath.Join(dir, "missing.py"), dir} {
		fa := a.AnalyzeFile(context.Background(), path)

		assert.True(t, fa.Failed, path)
		require.Len(t, fa.Errors, 1, path)
		assert.Equal(t, report.ErrorKindSourceUnreadable, fa.Errors[0].Kind, path)
	}
}

func TestAnalyzeFile_StripsBOM(t *testing.T) {
	t.Parallel()

	paths := writeFiles(t, map[string]string{"bom.py": "\ufeff" + cleanSource})

	fa := newAnalyzer(t).AnalyzeFile(context.Background(), paths[0])
	require.False(t, fa.Failed, fa.Errors)
	assert.Len(t, fa.Functions, 1)
}

func TestAnalyzeSource_DuplicateNamesGetOrdinals(t *testing.T) {
	t.Parallel()

	src := "def f():\n    pass\n\n\ndef f():\n    pass\n"

	fa := newAnalyzer(t).AnalyzeSource(context.Background(), "dup.py", []byte(src))
	require.Len(t, fa.Functions, 2)

	assert.Equal(t, "dup.py::f", fa.Functions[0].ID)
	assert.Equal(t, "dup.py::f#2", fa.Functions[1].ID)
}

func TestAnalyzeTree_MalformedFunctionIsSkipped(t *testing.T) {
	t.Parallel()

	root := &syntax.Node{
		Kind: syntax.KindModule,
		Span: &syntax.Span{Start: 1, End: 10},
		Children: []*syntax.Node{
			{Kind: syntax.KindFunction, Name: "good", Span: &syntax.Span{Start: 1, End: 3}, Children: []*syntax.Node{
				{Kind: syntax.KindBlock, Children: []*syntax.Node{{Kind: syntax.KindIf}}},
			}},
			{Kind: syntax.KindFunction, Name: "ghost", Span: &syntax.Span{Start: 6, End: 4}},
		},
	}

	fa := newAnalyzer(t).AnalyzeTree("tree.py", []byte("x\n"), root)

	assert.False(t, fa.Failed)
	require.Len(t, fa.Functions, 1)
	assert.Equal(t, "good", fa.Functions[0].QualifiedName)
	assert.Equal(t, 2, fa.Functions[0].Metrics.CC)

	require.Len(t, fa.Errors, 1)
	assert.Equal(t, report.ErrorKindMalformedTree, fa.Errors[0].Kind)
	assert.Contains(t, fa.Errors[0].Reason, "ghost")
}

func TestAnalyzeTree_NilRoot(t *testing.T) {
	t.Parallel()

	fa := newAnalyzer(t).AnalyzeTree("nil.py", nil, nil)

	assert.True(t, fa.Failed)
	require.Len(t, fa.Errors, 1)
	assert.Equal(t, report.ErrorKindMalformedTree, fa.Errors[0].Kind)
}

func TestRunInputs_TreesAndSources(t *testing.T) {
	t.Parallel()

	tree := &syntax.Node{
		Kind: syntax.KindModule,
		Span: &syntax.Span{Start: 1, End: 2},
		Children: []*syntax.Node{
			{Kind: syntax.KindFunction, Name: "external", Span: &syntax.Span{Start: 1, End: 2}},
		},
	}

	inputs := []analyze.Input{
		{Path: "ext.py", Source: "def external():\n    pass\n", Tree: tree},
		{Path: "src.py", Source: cleanSource},
		{Path: "bad.py", Source: brokenSource},
	}

	result, err := newAnalyzer(t).RunInputs(context.Background(), inputs)
	require.NoError(t, err)

	assert.Equal(t, 2, result.Summary.NumFiles)
	assert.Equal(t, 2, result.Summary.NumFunctions)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "bad.py", result.Errors[0].File)
}
