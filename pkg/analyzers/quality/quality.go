// Package quality computes per-file quality metrics from raw source lines and
// the normalized syntax tree.
package quality

import (
	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

// Options tunes the file metrics.
type Options struct {
	LongLineLimit int
}

// DefaultOptions returns the default options.
func DefaultOptions() Options {
	return Options{LongLineLimit: DefaultLongLineLimit}
}

// Metrics holds the quality metrics of one file. Ratios are in [0, 1].
type Metrics struct {
	Lines             int      `json:"lines"              yaml:"lines"`
	CommentRatio      float64  `json:"comment_ratio"      yaml:"comment_ratio"`
	DocstringCoverage float64  `json:"docstring_cov"      yaml:"docstring_cov"`
	LongLineRatio     float64  `json:"long_line_ratio"    yaml:"long_line_ratio"`
	NamingIssueRatio  float64  `json:"naming_issue_ratio" yaml:"naming_issue_ratio"`
	NamingIssues      []string `json:"naming_issues"      yaml:"naming_issues"`
	UnusedImports     []string `json:"unused_imports"     yaml:"unused_imports"`
	WildcardImports   []string `json:"wildcard_imports"   yaml:"wildcard_imports"`
}

// Extract computes the metrics of one file.
func Extract(root *syntax.Node, lines []string, opts Options) Metrics {
	if opts.LongLineLimit <= 0 {
		opts.LongLineLimit = DefaultLongLineLimit
	}

	naming := NamingIssues(root)
	imports := UnusedImports(root)

	return Metrics{
		Lines:             len(lines),
		CommentRatio:      CommentRatio(lines),
		DocstringCoverage: DocstringCoverage(root),
		LongLineRatio:     LongLineRatio(lines, opts.LongLineLimit),
		NamingIssueRatio:  naming.Ratio(),
		NamingIssues:      nonNil(naming.Issues),
		UnusedImports:     nonNil(imports.Unused),
		WildcardImports:   nonNil(imports.Wildcards),
	}
}

// nonNil keeps list fields as [] rather than null in JSON output.
func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}

	return values
}
