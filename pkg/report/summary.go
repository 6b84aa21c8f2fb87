package report

import (
	"math"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

// Bucket is one histogram bin. Max of 0 means the bin is open-ended.
type Bucket struct {
	Label string `json:"label" yaml:"label"`
	Min   int    `json:"min"   yaml:"min"`
	Max   int    `json:"max"   yaml:"max"`
	Count int    `json:"count" yaml:"count"`
}

func (b Bucket) contains(v int) bool {
	return v >= b.Min && (b.Max == 0 || v <= b.Max)
}

// CCBuckets returns the empty cyclomatic complexity histogram.
func CCBuckets() []Bucket {
	return []Bucket{
		{Label: "1-3", Min: 1, Max: 3},
		{Label: "4-6", Min: 4, Max: 6},
		{Label: "7-10", Min: 7, Max: 10},
		{Label: "11+", Min: 11},
	}
}

// LENBuckets returns the empty function length histogram.
func LENBuckets() []Bucket {
	return []Bucket{
		{Label: "1-20", Min: 1, Max: 20},
		{Label: "21-40", Min: 21, Max: 40},
		{Label: "41-60", Min: 41, Max: 60},
		{Label: "61+", Min: 61},
	}
}

// TierCounts counts subjects per tier.
type TierCounts struct {
	Low    int `json:"low"    yaml:"low"`
	Medium int `json:"medium" yaml:"medium"`
	High   int `json:"high"   yaml:"high"`
}

func (c *TierCounts) add(t risk.Tier) {
	switch t {
	case risk.TierHigh:
		c.High++
	case risk.TierMedium:
		c.Medium++
	default:
		c.Low++
	}
}

// FileAverages holds the mean file metrics over analyzed files.
type FileAverages struct {
	CommentRatio      float64 `json:"comment_ratio"      yaml:"comment_ratio"`
	DocstringCoverage float64 `json:"docstring_cov"      yaml:"docstring_cov"`
	LongLineRatio     float64 `json:"long_line_ratio"    yaml:"long_line_ratio"`
	NamingIssueRatio  float64 `json:"naming_issue_ratio" yaml:"naming_issue_ratio"`
	UnusedImports     float64 `json:"unused_imports"     yaml:"unused_imports"`
}

// Summary holds run-level aggregates. Averages are rounded to two decimals.
type Summary struct {
	NumFiles        int          `json:"num_files"        yaml:"num_files"`
	NumFailed       int          `json:"num_failed"       yaml:"num_failed"`
	NumFunctions    int          `json:"num_functions"    yaml:"num_functions"`
	CCAvg           float64      `json:"cc_avg"           yaml:"cc_avg"`
	CCMax           int          `json:"cc_max"           yaml:"cc_max"`
	LENAvg          float64      `json:"len_avg"          yaml:"len_avg"`
	LENMax          int          `json:"len_max"          yaml:"len_max"`
	NESTAvg         float64      `json:"nest_avg"         yaml:"nest_avg"`
	NESTMax         int          `json:"nest_max"         yaml:"nest_max"`
	CCDistribution  []Bucket     `json:"cc_distribution"  yaml:"cc_distribution"`
	LENDistribution []Bucket     `json:"len_distribution" yaml:"len_distribution"`
	FileMetricAvg   FileAverages `json:"file_metric_avg"  yaml:"file_metric_avg"`
	FunctionTiers   TierCounts   `json:"function_tiers"   yaml:"function_tiers"`
	FileTiers       TierCounts   `json:"file_tiers"       yaml:"file_tiers"`
	SmellTiers      TierCounts   `json:"smell_tiers"      yaml:"smell_tiers"`
}

// summarize expects functions and files already in their final order so float
// sums are accumulated in a fixed sequence.
func summarize(functions []FunctionResult, files []FileResult, smells []risk.Smell, failed int) Summary {
	s := Summary{
		NumFiles:        len(files),
		NumFailed:       failed,
		NumFunctions:    len(functions),
		CCDistribution:  CCBuckets(),
		LENDistribution: LENBuckets(),
	}

	var ccSum, lenSum, nestSum int

	for _, fn := range functions {
		ccSum += fn.CC
		lenSum += fn.LEN
		nestSum += fn.NEST
		s.CCMax = max(s.CCMax, fn.CC)
		s.LENMax = max(s.LENMax, fn.LEN)
		s.NESTMax = max(s.NESTMax, fn.NEST)

		fill(s.CCDistribution, fn.CC)
		fill(s.LENDistribution, fn.LEN)
		s.FunctionTiers.add(fn.Tier)
	}

	s.CCAvg = mean(float64(ccSum), len(functions))
	s.LENAvg = mean(float64(lenSum), len(functions))
	s.NESTAvg = mean(float64(nestSum), len(functions))

	var avg FileAverages

	for _, f := range files {
		avg.CommentRatio += f.CommentRatio
		avg.DocstringCoverage += f.DocstringCoverage
		avg.LongLineRatio += f.LongLineRatio
		avg.NamingIssueRatio += f.NamingIssueRatio
		avg.UnusedImports += float64(len(f.UnusedImports))
		s.FileTiers.add(f.Tier)
	}

	s.FileMetricAvg = FileAverages{
		CommentRatio:      mean(avg.CommentRatio, len(files)),
		DocstringCoverage: mean(avg.DocstringCoverage, len(files)),
		LongLineRatio:     mean(avg.LongLineRatio, len(files)),
		NamingIssueRatio:  mean(avg.NamingIssueRatio, len(files)),
		UnusedImports:     mean(avg.UnusedImports, len(files)),
	}

	for _, smell := range smells {
		s.SmellTiers.add(smell.Tier)
	}

	return s
}

func fill(buckets []Bucket, v int) {
	for i := range buckets {
		if buckets[i].contains(v) {
			buckets[i].Count++

			return
		}
	}
}

func mean(sum float64, n int) float64 {
	if n == 0 {
		return 0
	}

	return round2(sum / float64(n))
}

func round2(v float64) float64 {
	const scale = 100

	return math.Round(v*scale) / scale
}
