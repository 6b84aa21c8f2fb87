package commands

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/discovery"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/report"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

const sample = `def simple():
    return 1


def branchy(x):
    if x > 1:
        return 2
    elif x < 0 and x != -5:
        return 3
    return 4
`

const brokenSample = "def broken(:\n    return\n"

// execute runs cmd with args and stdin, returning what it wrote to stdout.
func execute(t *testing.T, cmd *cobra.Command, stdin string, args ...string) (string, error) {
	t.Helper()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())

	return out.String(), err
}

// writeTree creates files under a fresh temp dir and returns its path.
func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := t.TempDir()

	for name, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	}

	return dir
}

// emptyConfig returns an empty config file, so tests never pick up a
// .cyclocalc.yaml from the working directory or $HOME.
func emptyConfig(t *testing.T) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "cyclocalc.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	return path
}

func decodeResult(t *testing.T, data []byte) report.AnalysisResult {
	t.Helper()

	var result report.AnalysisResult
	require.NoError(t, json.Unmarshal(data, &result))

	return result
}

func TestRunCommand_JSON(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"pkg/app.py": sample, "pkg/broken.py": brokenSample})

	out, err := execute(t, NewRunCommand(), "",
		dir, "--config", emptyConfig(t), "--format", "json", "--silent")
	require.NoError(t, err)

	result := decodeResult(t, []byte(out))
	assert.Equal(t, 1, result.Summary.NumFiles)
	assert.Equal(t, 1, result.Summary.NumFailed)
	require.Len(t, result.Functions, 2)
	assert.Equal(t, "branchy", result.Functions[0].QualifiedName)
	assert.Equal(t, 4, result.Functions[0].CC)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, report.ErrorKindParse, result.Errors[0].Kind)
}

func TestRunCommand_AnalyzeAlias(t *testing.T) {
	t.Parallel()

	assert.Contains(t, NewRunCommand().Aliases, "analyze")
}

func TestRunCommand_FlagsOverrideConfig(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"app.py": sample, "skip_me.py": sample})

	cfg := filepath.Join(t.TempDir(), "cyclocalc.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("output:\n  format: yaml\nanalysis:\n  min_cc: 1\n"), 0o600))

	out, err := execute(t, NewRunCommand(), "",
		dir, "--config", cfg, "--format", "json", "-t", "2", "--exclude", "skip_*.py", "--silent")
	require.NoError(t, err)

	result := decodeResult(t, []byte(out))
	assert.Equal(t, 1, result.Summary.NumFiles)
	assert.Equal(t, 2, result.Summary.NumFunctions)
	require.Len(t, result.Functions, 1)
	assert.Equal(t, "branchy", result.Functions[0].QualifiedName)
}

func TestRunCommand_TextReport(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"app.py": sample})

	out, err := execute(t, NewRunCommand(), "", dir, "--config", emptyConfig(t), "--no-color", "--silent")
	require.NoError(t, err)

	assert.Contains(t, out, "CYCLOCALC")
	assert.Contains(t, out, "branchy")
	assert.NotContains(t, out, "\x1b[")
}

func TestRunCommand_WritesCompressedReport(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"app.py": sample})
	reportPath := filepath.Join(t.TempDir(), "report.json.lz4")

	out, err := execute(t, NewRunCommand(), "",
		dir, "--config", emptyConfig(t), "--format", "json", "-o", reportPath, "--silent")
	require.NoError(t, err)
	assert.Empty(t, out)

	out, err = execute(t, NewValidateCommand(), "", reportPath, "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Report is valid")
}

func TestRunCommand_ProgressGoesToStderr(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"app.py": sample})

	cmd := NewRunCommand()

	var out, errOut bytes.Buffer

	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs([]string{dir, "--config", emptyConfig(t), "--format", "json"})

	require.NoError(t, cmd.ExecuteContext(context.Background()))
	assert.Contains(t, errOut.String(), "progress: analyzing 1 files")
	assert.True(t, json.Valid(out.Bytes()))
}

func TestRunCommand_InvalidConfiguration(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"app.py": sample, "notes.txt": "hello"})

	tests := []struct {
		name string
		args []string
	}{
		{name: "unknown format", args: []string{dir, "--format", "xml"}},
		{name: "negative workers", args: []string{dir, "--workers", "-1"}},
		{name: "zero long line limit", args: []string{dir, "--long-line-limit", "0"}},
		{name: "non python file", args: []string{filepath.Join(dir, "notes.txt")}},
		{name: "missing path", args: []string{filepath.Join(dir, "absent")}},
		{name: "bad exclude pattern", args: []string{dir, "--exclude", "[unclosed"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			args := append([]string{"--config", emptyConfig(t), "--silent"}, tt.args...)

			_, err := execute(t, NewRunCommand(), "", args...)
			require.ErrorIs(t, err, risk.ErrInvalidConfiguration)
		})
	}
}

func TestRunCommand_InvertedThresholdsInConfig(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"app.py": sample})

	cfg := filepath.Join(t.TempDir(), "cyclocalc.yaml")
	require.NoError(t, os.WriteFile(cfg,
		[]byte("thresholds:\n  function:\n    cc:\n      medium: 12\n      high: 5\n"), 0o600))

	_, err := execute(t, NewRunCommand(), "", dir, "--config", cfg, "--silent")
	require.ErrorIs(t, err, risk.ErrInvalidConfiguration)
}

func TestRunCommand_EmptyDirectory(t *testing.T) {
	t.Parallel()

	_, err := execute(t, NewRunCommand(), "", t.TempDir(), "--config", emptyConfig(t), "--silent")
	require.ErrorIs(t, err, discovery.ErrNoPythonFiles)
}
