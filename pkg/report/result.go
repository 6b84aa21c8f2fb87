// Package report folds per-file analyses into one deterministic, fully ordered
// AnalysisResult.
package report

import (
	"fmt"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/complexity"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/quality"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

// Error kinds recorded in AnalysisResult.Errors.
const (
	ErrorKindSourceUnreadable = "source_unreadable"
	ErrorKindParse            = "parse_error"
	ErrorKindMalformedTree    = "malformed_tree"
)

// FunctionAnalysis is the classified result of one function.
type FunctionAnalysis struct {
	ID            string
	QualifiedName string
	Line          int
	EndLine       int
	Metrics       complexity.Metrics
	Tier          risk.Tier
	Smells        []risk.Smell
}

// FileAnalysis is the output of analyzing one file. A file with Failed set is
// excluded from every metric and only contributes its Errors.
type FileAnalysis struct {
	Path      string
	Failed    bool
	Metrics   quality.Metrics
	Tier      risk.Tier
	Smells    []risk.Smell
	Functions []FunctionAnalysis
	Errors    []ErrorEntry
}

// FunctionResult is one row of the ranked function list.
type FunctionResult struct {
	ID            string    `json:"id"             yaml:"id"`
	File          string    `json:"file"           yaml:"file"`
	QualifiedName string    `json:"qualified_name" yaml:"qualified_name"`
	Line          int       `json:"line"           yaml:"line"`
	EndLine       int       `json:"end_line"       yaml:"end_line"`
	CC            int       `json:"cc"             yaml:"cc"`
	LEN           int       `json:"len"            yaml:"len"`
	NEST          int       `json:"nest"           yaml:"nest"`
	Tier          risk.Tier `json:"tier"           yaml:"tier"`
}

// FileResult is one row of the ranked file list.
type FileResult struct {
	Path string `json:"path" yaml:"path"`

	quality.Metrics `yaml:",inline"`

	Tier          risk.Tier `json:"tier"           yaml:"tier"`
	SmellCount    int       `json:"smell_count"    yaml:"smell_count"`
	HighSmells    int       `json:"high_smells"    yaml:"high_smells"`
	MediumSmells  int       `json:"medium_smells"  yaml:"medium_smells"`
	FunctionCount int       `json:"function_count" yaml:"function_count"`
	CCAvg         float64   `json:"cc_avg"         yaml:"cc_avg"`
	CCMax         int       `json:"cc_max"         yaml:"cc_max"`
	LENAvg        float64   `json:"len_avg"        yaml:"len_avg"`
	LENMax        int       `json:"len_max"        yaml:"len_max"`
	NESTAvg       float64   `json:"nest_avg"       yaml:"nest_avg"`
	NESTMax       int       `json:"nest_max"       yaml:"nest_max"`
}

// ErrorEntry is a recovered per-file failure or diagnostic.
type ErrorEntry struct {
	File   string `json:"file"   yaml:"file"`
	Kind   string `json:"kind"   yaml:"kind"`
	Reason string `json:"reason" yaml:"reason"`
}

// AnalysisResult is the immutable output of a run.
type AnalysisResult struct {
	Summary   Summary          `json:"summary"   yaml:"summary"`
	Functions []FunctionResult `json:"functions" yaml:"functions"`
	Files     []FileResult     `json:"files"     yaml:"files"`
	Smells    []risk.Smell     `json:"smells"    yaml:"smells"`
	Errors    []ErrorEntry     `json:"errors"    yaml:"errors"`
}

// FunctionID builds the stable identifier of a function. ordinal counts earlier
// definitions with the same qualified name in the same file.
func FunctionID(path, qualifiedName string, ordinal int) string {
	if ordinal == 0 {
		return path + "::" + qualifiedName
	}

	return fmt.Sprintf("%s::%s#%d", path, qualifiedName, ordinal+1)
}

// WithMinCC returns a copy of r whose function list omits functions with CC below
// minCC. The summary is left untouched.
func (r AnalysisResult) WithMinCC(minCC int) AnalysisResult {
	if minCC <= 1 {
		return r
	}

	filtered := make([]FunctionResult, 0, len(r.Functions))

	for _, fn := range r.Functions {
		if fn.CC >= minCC {
			filtered = append(filtered, fn)
		}
	}

	r.Functions = filtered

	return r
}

// TopFunctions returns at most n functions from the head of the ranking.
func (r AnalysisResult) TopFunctions(n int) []FunctionResult {
	if n <= 0 || n >= len(r.Functions) {
		return r.Functions
	}

	return r.Functions[:n]
}

// TopFiles returns at most n files from the head of the ranking.
func (r AnalysisResult) TopFiles(n int) []FileResult {
	if n <= 0 || n >= len(r.Files) {
		return r.Files
	}

	return r.Files[:n]
}
