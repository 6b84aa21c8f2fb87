package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const growingSample = `def simple():
    return 1


def branchy(x):
    if x > 1:
        return 2
    elif x < 0 and x != -5:
        return 3
    while x:
        x -= 1
    return 4
`

// jsonReport analyzes files and writes the JSON report to a temp file.
func jsonReport(t *testing.T, files map[string]string) string {
	t.Helper()

	dir := writeTree(t, files)
	path := filepath.Join(t.TempDir(), "report.json")

	_, err := execute(t, NewRunCommand(), "", dir, "--config", emptyConfig(t), "--format", "json", "-o", path, "--silent")
	require.NoError(t, err)

	return path
}

func TestDiffCommand_ShowsChangedMetrics(t *testing.T) {
	t.Parallel()

	before := jsonReport(t, map[string]string{"app.py": sample})
	after := jsonReport(t, map[string]string{"app.py": growingSample})

	out, err := execute(t, NewDiffCommand(), "", before, after, "--no-color")
	require.NoError(t, err)

	assert.Contains(t, out, "--- "+before)
	assert.Contains(t, out, "+++ "+after)
	assert.NotContains(t, out, "no differences")

	var removed, added bool

	for line := range strings.Lines(out) {
		removed = removed || (strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"))
		added = added || (strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"))
	}

	assert.True(t, removed)
	assert.True(t, added)
}

func TestDiffCommand_SameReport(t *testing.T) {
	t.Parallel()

	path := jsonReport(t, map[string]string{"app.py": sample})

	out, err := execute(t, NewDiffCommand(), "", path, path, "-f", "json")
	require.NoError(t, err)
	assert.Contains(t, out, "no differences")
}

func TestDiffCommand_Errors(t *testing.T) {
	t.Parallel()

	path := jsonReport(t, map[string]string{"app.py": sample})

	garbage := filepath.Join(t.TempDir(), "garbage.json")
	require.NoError(t, os.WriteFile(garbage, []byte("[1, 2"), 0o600))

	_, err := execute(t, NewDiffCommand(), "", path, garbage)
	require.ErrorContains(t, err, "decode report")

	_, err = execute(t, NewDiffCommand(), "", path, filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, os.ErrNotExist)

	_, err = execute(t, NewDiffCommand(), "", path)
	require.Error(t, err)
}

func TestDiffLines(t *testing.T) {
	t.Parallel()

	diffs := diffLines("a\nb\nc\n", "a\nB\nc\n")

	var kinds []diffmatchpatch.Operation
	for _, d := range diffs {
		kinds = append(kinds, d.Type)
	}

	assert.Equal(t, []diffmatchpatch.Operation{
		diffmatchpatch.DiffEqual, diffmatchpatch.DiffDelete, diffmatchpatch.DiffInsert, diffmatchpatch.DiffEqual,
	}, kinds)
	assert.Equal(t, "b\n", diffs[1].Text)
	assert.Equal(t, "B\n", diffs[2].Text)
}
