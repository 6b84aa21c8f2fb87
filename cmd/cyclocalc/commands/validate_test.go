package commands

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/schema"
)

func TestValidateCommand_Stdin(t *testing.T) {
	t.Parallel()

	dir := writeTree(t, map[string]string{"app.py": sample})

	report, err := execute(t, NewRunCommand(), "", dir, "--config", emptyConfig(t), "--format", "json", "--silent")
	require.NoError(t, err)

	out, err := execute(t, NewValidateCommand(), report, "-", "--no-color")
	require.NoError(t, err)
	assert.Contains(t, out, "Report is valid (-)")
}

func TestValidateCommand_Violations(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"summary": {}, "functions": "none"}`), 0o600))

	out, err := execute(t, NewValidateCommand(), "", path, "--no-color")
	require.ErrorIs(t, err, ErrReportInvalid)
	assert.Contains(t, out, "Report validation failed")
	assert.Contains(t, out, "functions")
	assert.NotContains(t, out, "\x1b[")
}

func TestValidateCommand_NotJSON(t *testing.T) {
	t.Parallel()

	_, err := execute(t, NewValidateCommand(), "not json", "-")
	require.ErrorIs(t, err, schema.ErrInvalidJSON)
}

func TestValidateCommand_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := execute(t, NewValidateCommand(), "", filepath.Join(t.TempDir(), "absent.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
