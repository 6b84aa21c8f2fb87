package report

import (
	"cmp"
	"slices"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

// Fold combines per-file analyses into one AnalysisResult. The output depends only
// on the set of inputs, never on their order, so analyses may complete in any
// order.
func Fold(analyses []FileAnalysis) AnalysisResult {
	sorted := slices.Clone(analyses)
	slices.SortStableFunc(sorted, func(a, b FileAnalysis) int { return cmp.Compare(a.Path, b.Path) })

	result := AnalysisResult{
		Functions: []FunctionResult{},
		Files:     []FileResult{},
		Smells:    []risk.Smell{},
		Errors:    []ErrorEntry{},
	}

	failed := 0

	for _, fa := range sorted {
		result.Errors = append(result.Errors, fa.Errors...)

		if fa.Failed {
			failed++

			continue
		}

		result.Files = append(result.Files, fileRow(fa))
		result.Smells = append(result.Smells, fa.Smells...)

		for _, fn := range fa.Functions {
			result.Functions = append(result.Functions, FunctionResult{
				ID:            fn.ID,
				File:          fa.Path,
				QualifiedName: fn.QualifiedName,
				Line:          fn.Line,
				EndLine:       fn.EndLine,
				CC:            fn.Metrics.CC,
				LEN:           fn.Metrics.LEN,
				NEST:          fn.Metrics.NEST,
				Tier:          fn.Tier,
			})
			result.Smells = append(result.Smells, fn.Smells...)
		}
	}

	slices.SortFunc(result.Functions, CompareFunctions)
	slices.SortFunc(result.Files, CompareFiles)
	slices.SortFunc(result.Smells, compareSmells)
	slices.SortFunc(result.Errors, compareErrors)

	result.Summary = summarize(result.Functions, result.Files, result.Smells, failed)

	return result
}

// CompareFunctions orders functions by CC descending, then LEN descending, then
// qualified name, file and line ascending.
func CompareFunctions(a, b FunctionResult) int {
	return cmp.Or(
		cmp.Compare(b.CC, a.CC),
		cmp.Compare(b.LEN, a.LEN),
		cmp.Compare(a.QualifiedName, b.QualifiedName),
		cmp.Compare(a.File, b.File),
		cmp.Compare(a.Line, b.Line),
		cmp.Compare(a.ID, b.ID),
	)
}

// CompareFiles orders files by tier descending, then smell count descending, then
// path ascending.
func CompareFiles(a, b FileResult) int {
	return cmp.Or(
		cmp.Compare(b.Tier, a.Tier),
		cmp.Compare(b.SmellCount, a.SmellCount),
		cmp.Compare(a.Path, b.Path),
	)
}

func compareSmells(a, b risk.Smell) int {
	return cmp.Or(
		cmp.Compare(b.Tier, a.Tier),
		cmp.Compare(a.SubjectKind, b.SubjectKind),
		cmp.Compare(a.Subject, b.Subject),
		cmp.Compare(a.Metric, b.Metric),
	)
}

func compareErrors(a, b ErrorEntry) int {
	return cmp.Or(
		cmp.Compare(a.File, b.File),
		cmp.Compare(a.Kind, b.Kind),
		cmp.Compare(a.Reason, b.Reason),
	)
}

func fileRow(fa FileAnalysis) FileResult {
	row := FileResult{
		Path:          fa.Path,
		Metrics:       fa.Metrics,
		Tier:          fa.Tier,
		FunctionCount: len(fa.Functions),
	}

	count := func(s risk.Smell) {
		row.SmellCount++

		switch s.Tier {
		case risk.TierHigh:
			row.HighSmells++
		case risk.TierMedium:
			row.MediumSmells++
		default:
		}
	}

	for _, s := range fa.Smells {
		count(s)
	}

	var ccSum, lenSum, nestSum int

	for _, fn := range fa.Functions {
		for _, s := range fn.Smells {
			count(s)
		}

		ccSum += fn.Metrics.CC
		lenSum += fn.Metrics.LEN
		nestSum += fn.Metrics.NEST
		row.CCMax = max(row.CCMax, fn.Metrics.CC)
		row.LENMax = max(row.LENMax, fn.Metrics.LEN)
		row.NESTMax = max(row.NESTMax, fn.Metrics.NEST)
	}

	row.CCAvg = mean(float64(ccSum), len(fa.Functions))
	row.LENAvg = mean(float64(lenSum), len(fa.Functions))
	row.NESTAvg = mean(float64(nestSum), len(fa.Functions))

	return row
}
