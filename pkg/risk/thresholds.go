package risk

import (
	"errors"
	"fmt"
)

// ErrInvalidConfiguration is returned for self-contradictory thresholds. It is the
// only condition that aborts a run.
var ErrInvalidConfiguration = errors.New("invalid configuration")

// Limit is a pair of inclusive lower bounds: a value >= Medium is at least medium
// risk, a value >= High is high risk.
type Limit struct {
	Medium int `json:"medium" yaml:"medium" mapstructure:"medium"`
	High   int `json:"high"   yaml:"high"   mapstructure:"high"`
}

// FunctionLimits holds the per-function thresholds.
type FunctionLimits struct {
	CC   Limit `json:"cc"   yaml:"cc"   mapstructure:"cc"`
	LEN  Limit `json:"len"  yaml:"len"  mapstructure:"len"`
	NEST Limit `json:"nest" yaml:"nest" mapstructure:"nest"`
}

// FileLimits holds one tier of per-file thresholds. A file crosses the tier when
// a ratio falls below a floor, rises above a ceiling, or it has more unused
// imports than UnusedImportsMax.
type FileLimits struct {
	DocstringFloor   float64 `json:"docstring_floor"    yaml:"docstring_floor"    mapstructure:"docstring_floor"`
	CommentFloor     float64 `json:"comment_floor"      yaml:"comment_floor"      mapstructure:"comment_floor"`
	LongLineCeiling  float64 `json:"long_line_ceiling"  yaml:"long_line_ceiling"  mapstructure:"long_line_ceiling"`
	NamingCeiling    float64 `json:"naming_ceiling"     yaml:"naming_ceiling"     mapstructure:"naming_ceiling"`
	UnusedImportsMax int     `json:"unused_imports_max" yaml:"unused_imports_max" mapstructure:"unused_imports_max"`
}

// Thresholds is the complete, immutable classification policy. FileHigh only
// applies when FileHighEnabled is set.
type Thresholds struct {
	Function        FunctionLimits `json:"function"          yaml:"function"`
	FileMedium      FileLimits     `json:"file_medium"       yaml:"file_medium"`
	FileHigh        FileLimits     `json:"file_high"         yaml:"file_high"`
	FileHighEnabled bool           `json:"file_high_enabled" yaml:"file_high_enabled"`
}

// Default threshold values.
const (
	DefaultCCMedium   = 7
	DefaultCCHigh     = 10
	DefaultLENMedium  = 40
	DefaultLENHigh    = 60
	DefaultNESTMedium = 3
	DefaultNESTHigh   = 5

	DefaultDocstringFloor  = 0.30
	DefaultCommentFloor    = 0.02
	DefaultLongLineCeiling = 0.10
	DefaultNamingCeiling   = 0.10

	DefaultHighDocstringFloor   = 0.10
	DefaultHighCommentFloor     = 0.0
	DefaultHighLongLineCeiling  = 0.25
	DefaultHighNamingCeiling    = 0.30
	DefaultHighUnusedImportsMax = 3
)

// DefaultThresholds returns the default policy. Files never reach High unless
// FileHighEnabled is turned on.
func DefaultThresholds() Thresholds {
	return Thresholds{
		Function: FunctionLimits{
			CC:   Limit{Medium: DefaultCCMedium, High: DefaultCCHigh},
			LEN:  Limit{Medium: DefaultLENMedium, High: DefaultLENHigh},
			NEST: Limit{Medium: DefaultNESTMedium, High: DefaultNESTHigh},
		},
		FileMedium: FileLimits{
			DocstringFloor:   DefaultDocstringFloor,
			CommentFloor:     DefaultCommentFloor,
			LongLineCeiling:  DefaultLongLineCeiling,
			NamingCeiling:    DefaultNamingCeiling,
			UnusedImportsMax: 0,
		},
		FileHigh: FileLimits{
			DocstringFloor:   DefaultHighDocstringFloor,
			CommentFloor:     DefaultHighCommentFloor,
			LongLineCeiling:  DefaultHighLongLineCeiling,
			NamingCeiling:    DefaultHighNamingCeiling,
			UnusedImportsMax: DefaultHighUnusedImportsMax,
		},
	}
}

// Validate reports ErrInvalidConfiguration when the policy contradicts itself.
func (t Thresholds) Validate() error {
	var errs []error

	for name, limit := range map[string]Limit{
		MetricCC:   t.Function.CC,
		MetricLEN:  t.Function.LEN,
		MetricNEST: t.Function.NEST,
	} {
		if limit.Medium < 0 {
			errs = append(errs, fmt.Errorf("%w: %s medium threshold %d is negative", ErrInvalidConfiguration, name, limit.Medium))
		}

		if limit.Medium >= limit.High {
			errs = append(errs, fmt.Errorf("%w: %s medium threshold %d must be below high threshold %d",
				ErrInvalidConfiguration, name, limit.Medium, limit.High))
		}
	}

	errs = append(errs, t.FileMedium.validate("medium")...)

	if t.FileHighEnabled {
		errs = append(errs, t.FileHigh.validate("high")...)
		errs = append(errs, t.validateFileOrdering()...)
	}

	return sortedJoin(errs)
}

func (l FileLimits) validate(tier string) []error {
	var errs []error

	for name, value := range map[string]float64{
		"docstring_floor":   l.DocstringFloor,
		"comment_floor":     l.CommentFloor,
		"long_line_ceiling": l.LongLineCeiling,
		"naming_ceiling":    l.NamingCeiling,
	} {
		if value < 0 || value > 1 {
			errs = append(errs, fmt.Errorf("%w: file %s %s %g is outside [0, 1]", ErrInvalidConfiguration, tier, name, value))
		}
	}

	if l.UnusedImportsMax < 0 {
		errs = append(errs, fmt.Errorf("%w: file %s unused_imports_max %d is negative",
			ErrInvalidConfiguration, tier, l.UnusedImportsMax))
	}

	return errs
}

// validateFileOrdering requires every high file limit to be at least as strict as
// its medium counterpart.
func (t Thresholds) validateFileOrdering() []error {
	medium, high := t.FileMedium, t.FileHigh

	var errs []error

	if high.DocstringFloor > medium.DocstringFloor {
		errs = append(errs, fmt.Errorf("%w: file high docstring_floor %g exceeds medium %g",
			ErrInvalidConfiguration, high.DocstringFloor, medium.DocstringFloor))
	}

	if high.CommentFloor > medium.CommentFloor {
		errs = append(errs, fmt.Errorf("%w: file high comment_floor %g exceeds medium %g",
			ErrInvalidConfiguration, high.CommentFloor, medium.CommentFloor))
	}

	if high.LongLineCeiling < medium.LongLineCeiling {
		errs = append(errs, fmt.Errorf("%w: file high long_line_ceiling %g is below medium %g",
			ErrInvalidConfiguration, high.LongLineCeiling, medium.LongLineCeiling))
	}

	if high.NamingCeiling < medium.NamingCeiling {
		errs = append(errs, fmt.Errorf("%w: file high naming_ceiling %g is below medium %g",
			ErrInvalidConfiguration, high.NamingCeiling, medium.NamingCeiling))
	}

	if high.UnusedImportsMax < medium.UnusedImportsMax {
		errs = append(errs, fmt.Errorf("%w: file high unused_imports_max %d is below medium %d",
			ErrInvalidConfiguration, high.UnusedImportsMax, medium.UnusedImportsMax))
	}

	return errs
}
