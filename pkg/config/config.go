// Package config loads cyclocalc configuration from a YAML file, environment
// variables and defaults.
package config

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/viper"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/observability"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

// Sentinel validation errors. Each is reported wrapped in risk.ErrInvalidConfiguration.
var (
	ErrInvalidFormat        = errors.New("unknown output format")
	ErrInvalidFileSize      = errors.New("invalid max file size")
	ErrInvalidWorkers       = errors.New("workers must not be negative")
	ErrInvalidTopN          = errors.New("top_n must not be negative")
	ErrInvalidMinCC         = errors.New("min_cc must not be negative")
	ErrInvalidLongLineLimit = errors.New("long line limit must be positive")
)

const envPrefix = "CYCLOCALC"

// Formats lists the supported output formats.
var Formats = []string{FormatText, FormatJSON, FormatYAML, FormatHTML}

// Config holds all configuration for cyclocalc.
type Config struct {
	Thresholds    ThresholdsConfig    `mapstructure:"thresholds"`
	Analysis      AnalysisConfig      `mapstructure:"analysis"`
	Discovery     DiscoveryConfig     `mapstructure:"discovery"`
	Output        OutputConfig        `mapstructure:"output"`
	Observability ObservabilityConfig `mapstructure:"observability"`
}

// ThresholdsConfig holds the classification thresholds.
type ThresholdsConfig struct {
	Function risk.FunctionLimits `mapstructure:"function"`
	File     FileThresholds      `mapstructure:"file"`
}

// FileThresholds holds the per-file tiers. The high tier is opt-in.
type FileThresholds struct {
	Medium risk.FileLimits `mapstructure:"medium"`
	High   HighFileLimits  `mapstructure:"high"`
}

// HighFileLimits is the optional high file tier.
type HighFileLimits struct {
	Enabled bool `mapstructure:"enabled"`

	risk.FileLimits `mapstructure:",squash"`
}

// AnalysisConfig holds metric and scheduling options.
type AnalysisConfig struct {
	LongLineLimit int    `mapstructure:"long_line_limit"`
	Workers       int    `mapstructure:"workers"`
	MaxFileSize   string `mapstructure:"max_file_size"`
	TopN          int    `mapstructure:"top_n"`
	MinCC         int    `mapstructure:"min_cc"`
}

// DiscoveryConfig controls which files are analyzed.
type DiscoveryConfig struct {
	ExcludeDirs  []string `mapstructure:"exclude_dirs"`
	ExcludeFiles []string `mapstructure:"exclude_files"`
	SkipVendored bool     `mapstructure:"skip_vendored"`
}

// OutputConfig controls report rendering.
type OutputConfig struct {
	Format string `mapstructure:"format"`
	Path   string `mapstructure:"path"`
}

// ObservabilityConfig controls telemetry export and logging.
type ObservabilityConfig struct {
	OTLPEndpoint string `mapstructure:"otlp_endpoint"`
	OTLPHeaders  string `mapstructure:"otlp_headers"`
	OTLPInsecure bool   `mapstructure:"otlp_insecure"`
	MetricsFile  string `mapstructure:"metrics_file"`
	LogLevel     string `mapstructure:"log_level"`
	LogJSON      bool   `mapstructure:"log_json"`
}

// LoadConfig loads configuration from file and environment variables. Without
// an explicit path, .cyclocalc.yaml is looked up in the working directory and
// then $HOME; a missing file there is not an error.
func LoadConfig(configPath string) (*Config, error) {
	viperCfg := viper.New()

	setDefaults(viperCfg)

	if configPath != "" {
		viperCfg.SetConfigFile(configPath)
	} else {
		viperCfg.SetConfigName(".cyclocalc")
		viperCfg.SetConfigType("yaml")
		viperCfg.AddConfigPath(".")
		viperCfg.AddConfigPath("$HOME")
	}

	viperCfg.SetEnvPrefix(envPrefix)
	viperCfg.AutomaticEnv()
	viperCfg.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	readErr := viperCfg.ReadInConfig()
	if readErr != nil {
		var notFoundErr viper.ConfigFileNotFoundError
		if !errors.As(readErr, &notFoundErr) {
			return nil, fmt.Errorf("failed to read config file: %w", readErr)
		}
	}

	var config Config

	unmarshalErr := viperCfg.Unmarshal(&config)
	if unmarshalErr != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", unmarshalErr)
	}

	validateErr := config.Validate()
	if validateErr != nil {
		return nil, validateErr
	}

	return &config, nil
}

// Default returns the configuration used when no file or environment overrides exist.
func Default() *Config {
	th := risk.DefaultThresholds()

	return &Config{
		Thresholds: ThresholdsConfig{
			Function: th.Function,
			File: FileThresholds{
				Medium: th.FileMedium,
				High:   HighFileLimits{FileLimits: th.FileHigh},
			},
		},
		Analysis: AnalysisConfig{
			LongLineLimit: DefaultLongLineLimit,
			Workers:       DefaultWorkers,
			MaxFileSize:   DefaultMaxFileSize,
			TopN:          DefaultTopN,
			MinCC:         DefaultMinCC,
		},
		Discovery: DiscoveryConfig{
			ExcludeDirs:  slices.Clone(DefaultExcludeDirs),
			ExcludeFiles: []string{},
			SkipVendored: DefaultSkipVendored,
		},
		Output:        OutputConfig{Format: DefaultFormat},
		Observability: ObservabilityConfig{LogLevel: DefaultLogLevel},
	}
}

// setDefaults registers every key so environment variables can override it.
func setDefaults(viperCfg *viper.Viper) {
	def := Default()

	for prefix, limit := range map[string]risk.Limit{
		"thresholds.function.cc":   def.Thresholds.Function.CC,
		"thresholds.function.len":  def.Thresholds.Function.LEN,
		"thresholds.function.nest": def.Thresholds.Function.NEST,
	} {
		viperCfg.SetDefault(prefix+".medium", limit.Medium)
		viperCfg.SetDefault(prefix+".high", limit.High)
	}

	setFileDefaults(viperCfg, "thresholds.file.medium", def.Thresholds.File.Medium)
	setFileDefaults(viperCfg, "thresholds.file.high", def.Thresholds.File.High.FileLimits)
	viperCfg.SetDefault("thresholds.file.high.enabled", false)

	viperCfg.SetDefault("analysis.long_line_limit", def.Analysis.LongLineLimit)
	viperCfg.SetDefault("analysis.workers", def.Analysis.Workers)
	viperCfg.SetDefault("analysis.max_file_size", def.Analysis.MaxFileSize)
	viperCfg.SetDefault("analysis.top_n", def.Analysis.TopN)
	viperCfg.SetDefault("analysis.min_cc", def.Analysis.MinCC)

	viperCfg.SetDefault("discovery.exclude_dirs", def.Discovery.ExcludeDirs)
	viperCfg.SetDefault("discovery.exclude_files", def.Discovery.ExcludeFiles)
	viperCfg.SetDefault("discovery.skip_vendored", def.Discovery.SkipVendored)

	viperCfg.SetDefault("output.format", def.Output.Format)
	viperCfg.SetDefault("output.path", "")

	viperCfg.SetDefault("observability.otlp_endpoint", "")
	viperCfg.SetDefault("observability.otlp_headers", "")
	viperCfg.SetDefault("observability.otlp_insecure", false)
	viperCfg.SetDefault("observability.metrics_file", "")
	viperCfg.SetDefault("observability.log_level", def.Observability.LogLevel)
	viperCfg.SetDefault("observability.log_json", false)
}

func setFileDefaults(viperCfg *viper.Viper, prefix string, limits risk.FileLimits) {
	viperCfg.SetDefault(prefix+".docstring_floor", limits.DocstringFloor)
	viperCfg.SetDefault(prefix+".comment_floor", limits.CommentFloor)
	viperCfg.SetDefault(prefix+".long_line_ceiling", limits.LongLineCeiling)
	viperCfg.SetDefault(prefix+".naming_ceiling", limits.NamingCeiling)
	viperCfg.SetDefault(prefix+".unused_imports_max", limits.UnusedImportsMax)
}

// Validate checks option ranges and the threshold policy. Every failure wraps
// risk.ErrInvalidConfiguration.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains(Formats, c.Output.Format) {
		errs = append(errs, fmt.Errorf("%w: %q", ErrInvalidFormat, c.Output.Format))
	}

	if _, err := c.MaxFileSizeBytes(); err != nil {
		errs = append(errs, err)
	}

	if c.Analysis.Workers < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidWorkers, c.Analysis.Workers))
	}

	if c.Analysis.TopN < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidTopN, c.Analysis.TopN))
	}

	if c.Analysis.MinCC < 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidMinCC, c.Analysis.MinCC))
	}

	if c.Analysis.LongLineLimit <= 0 {
		errs = append(errs, fmt.Errorf("%w: %d", ErrInvalidLongLineLimit, c.Analysis.LongLineLimit))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", risk.ErrInvalidConfiguration, errors.Join(errs...))
	}

	err := c.Policy().Validate()
	if err != nil {
		return fmt.Errorf("thresholds: %w", err)
	}

	return nil
}

// Policy converts the configured limits into a classification policy.
func (c *Config) Policy() risk.Thresholds {
	return risk.Thresholds{
		Function:        c.Thresholds.Function,
		FileMedium:      c.Thresholds.File.Medium,
		FileHigh:        c.Thresholds.File.High.FileLimits,
		FileHighEnabled: c.Thresholds.File.High.Enabled,
	}
}

// MaxFileSizeBytes parses analysis.max_file_size ("2MiB", "500 kB", "1048576").
func (c *Config) MaxFileSizeBytes() (uint64, error) {
	n, err := humanize.ParseBytes(c.Analysis.MaxFileSize)
	if err != nil {
		return 0, fmt.Errorf("%w: %q: %w", ErrInvalidFileSize, c.Analysis.MaxFileSize, err)
	}

	return n, nil
}

// ObservabilityConfig builds the telemetry configuration for the given mode.
func (c *Config) ObservabilityConfig(mode observability.AppMode, version string) observability.Config {
	cfg := observability.DefaultConfig()
	cfg.Mode = mode
	cfg.ServiceVersion = version
	cfg.OTLPEndpoint = c.Observability.OTLPEndpoint
	cfg.OTLPHeaders = observability.ParseOTLPHeaders(c.Observability.OTLPHeaders)
	cfg.OTLPInsecure = c.Observability.OTLPInsecure
	cfg.MetricsFile = c.Observability.MetricsFile
	cfg.LogLevel = observability.ParseLogLevel(c.Observability.LogLevel)
	cfg.LogJSON = c.Observability.LogJSON

	return cfg
}
