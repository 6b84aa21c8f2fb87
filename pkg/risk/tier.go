// Package risk classifies function and file metrics into risk tiers and records
// every crossed threshold as a smell.
package risk

import (
	"fmt"
)

// Tier is an ordered risk level: Low < Medium < High.
type Tier int

// Risk tiers.
const (
	TierLow Tier = iota
	TierMedium
	TierHigh
)

var tierNames = [...]string{
	TierLow:    "low",
	TierMedium: "medium",
	TierHigh:   "high",
}

// String returns the lower-case tier name.
func (t Tier) String() string {
	if t < TierLow || t > TierHigh {
		return fmt.Sprintf("tier(%d)", int(t))
	}

	return tierNames[t]
}

// ParseTier parses a tier name.
func ParseTier(s string) (Tier, error) {
	for i, name := range tierNames {
		if name == s {
			return Tier(i), nil
		}
	}

	return TierLow, fmt.Errorf("%w: unknown tier %q", ErrInvalidConfiguration, s)
}

// MarshalText implements encoding.TextMarshaler.
func (t Tier) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (t *Tier) UnmarshalText(text []byte) error {
	parsed, err := ParseTier(string(text))
	if err != nil {
		return err
	}

	*t = parsed

	return nil
}

// Metric names used in smells.
const (
	MetricCC            = "cc"
	MetricLEN           = "len"
	MetricNEST          = "nest"
	MetricDocstringCov  = "docstring_cov"
	MetricCommentRatio  = "comment_ratio"
	MetricLongLineRatio = "long_line_ratio"
	MetricNamingRatio   = "naming_issue_ratio"
	MetricUnusedImports = "unused_imports"
)

// Subject kinds.
const (
	SubjectFunction = "function"
	SubjectFile     = "file"
)

// Smell is a crossed threshold on one subject. Subject is the function id or the
// file path.
type Smell struct {
	Subject     string  `json:"subject"        yaml:"subject"`
	SubjectKind string  `json:"subject_kind"   yaml:"subject_kind"`
	Metric      string  `json:"metric"         yaml:"metric"`
	Observed    float64 `json:"observed_value" yaml:"observed_value"`
	Threshold   float64 `json:"threshold"      yaml:"threshold"`
	Tier        Tier    `json:"tier"           yaml:"tier"`
}

// String renders the smell as a single line.
func (s Smell) String() string {
	return fmt.Sprintf("%s %s: %s=%g (threshold %g, %s)",
		s.SubjectKind, s.Subject, s.Metric, s.Observed, s.Threshold, s.Tier)
}
