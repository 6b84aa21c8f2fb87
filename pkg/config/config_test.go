package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/config"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), ".cyclocalc.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	return path
}

func TestLoadConfig_EmptyFileUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, risk.DefaultThresholds(), cfg.Policy())
	assert.Equal(t, config.DefaultLongLineLimit, cfg.Analysis.LongLineLimit)
	assert.Equal(t, config.DefaultTopN, cfg.Analysis.TopN)
	assert.Equal(t, config.DefaultMinCC, cfg.Analysis.MinCC)
	assert.Equal(t, config.DefaultExcludeDirs, cfg.Discovery.ExcludeDirs)
	assert.True(t, cfg.Discovery.SkipVendored)
	assert.Equal(t, config.FormatText, cfg.Output.Format)

	size, err := cfg.MaxFileSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(2<<20), size)
}

func TestLoadConfig_FileOverrides(t *testing.T) {
	t.Parallel()

	path := writeConfig(t, `thresholds:
  function:
    cc:
      medium: 5
      high: 8
  file:
    medium:
      unused_imports_max: 2
    high:
      enabled: true
      unused_imports_max: 6
analysis:
  long_line_limit: 100
  max_file_size: "500 kB"
discovery:
  exclude_files: ["*_pb2.py", "migrations/**"]
output:
  format: json
  path: report.json.lz4
`)

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)

	policy := cfg.Policy()
	assert.Equal(t, risk.Limit{Medium: 5, High: 8}, policy.Function.CC)
	assert.Equal(t, risk.Limit{Medium: risk.DefaultLENMedium, High: risk.DefaultLENHigh}, policy.Function.LEN)
	assert.Equal(t, 2, policy.FileMedium.UnusedImportsMax)
	assert.True(t, policy.FileHighEnabled)
	assert.Equal(t, 6, policy.FileHigh.UnusedImportsMax)
	assert.InDelta(t, risk.DefaultHighLongLineCeiling, policy.FileHigh.LongLineCeiling, 1e-9)

	assert.Equal(t, 100, cfg.Analysis.LongLineLimit)
	assert.Equal(t, []string{"*_pb2.py", "migrations/**"}, cfg.Discovery.ExcludeFiles)
	assert.Equal(t, config.FormatJSON, cfg.Output.Format)
	assert.Equal(t, "report.json.lz4", cfg.Output.Path)

	size, err := cfg.MaxFileSizeBytes()
	require.NoError(t, err)
	assert.Equal(t, uint64(500_000), size)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("CYCLOCALC_ANALYSIS_TOP_N", "25")
	t.Setenv("CYCLOCALC_THRESHOLDS_FUNCTION_NEST_HIGH", "9")

	cfg, err := config.LoadConfig(writeConfig(t, ""))
	require.NoError(t, err)

	assert.Equal(t, 25, cfg.Analysis.TopN)
	assert.Equal(t, 9, cfg.Policy().Function.NEST.High)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	t.Parallel()

	_, err := config.LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestLoadConfig_InvalidConfiguration(t *testing.T) {
	t.Parallel()

	tests := map[string]struct {
		content string
		target  error
	}{
		"inverted cc": {
			content: "thresholds:\n  function:\n    cc:\n      medium: 12\n      high: 10\n",
		},
		"ratio above one": {
			content: "thresholds:\n  file:\n    medium:\n      docstring_floor: 1.5\n",
		},
		"unknown format": {
			content: "output:\n  format: xml\n",
			target:  config.ErrInvalidFormat,
		},
		"bad size": {
			content: "analysis:\n  max_file_size: lots\n",
			target:  config.ErrInvalidFileSize,
		},
		"negative workers": {
			content: "analysis:\n  workers: -2\n",
			target:  config.ErrInvalidWorkers,
		},
	}

	for name, tt := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			_, err := config.LoadConfig(writeConfig(t, tt.content))
			require.ErrorIs(t, err, risk.ErrInvalidConfiguration)

			if tt.target != nil {
				require.ErrorIs(t, err, tt.target)
			}
		})
	}
}

func TestConfig_ObservabilityConfig(t *testing.T) {
	t.Parallel()

	cfg := config.Default()
	cfg.Observability.OTLPHeaders = "k=v"
	cfg.Observability.LogLevel = "debug"
	cfg.Observability.MetricsFile = "/tmp/m.prom"

	obs := cfg.ObservabilityConfig("mcp", "1.0.0")

	assert.Equal(t, "cyclocalc", obs.ServiceName)
	assert.Equal(t, "1.0.0", obs.ServiceVersion)
	assert.Equal(t, map[string]string{"k": "v"}, obs.OTLPHeaders)
	assert.Equal(t, "DEBUG", obs.LogLevel.String())
	assert.Equal(t, "/tmp/m.prom", obs.MetricsFile)
}
