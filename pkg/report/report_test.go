package report_test

import (
	"encoding/json"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/complexity"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/quality"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/report"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

func function(path, qname string, line, cc, length, nest int, tier risk.Tier) report.FunctionAnalysis {
	fa := report.FunctionAnalysis{
		ID:            report.FunctionID(path, qname, 0),
		QualifiedName: qname,
		Line:          line,
		EndLine:       line + length - 1,
		Metrics:       complexity.Metrics{CC: cc, LEN: length, NEST: nest},
		Tier:          tier,
	}

	if tier > risk.TierLow {
		fa.Smells = []risk.Smell{{Subject: fa.ID, SubjectKind: risk.SubjectFunction, Metric: risk.MetricCC, Observed: float64(cc), Tier: tier}}
	}

	return fa
}

func fixture() []report.FileAnalysis {
	return []report.FileAnalysis{
		{
			Path:    "b.py",
			Metrics: quality.Metrics{CommentRatio: 0.1, DocstringCoverage: 0.5, UnusedImports: []string{"os"}},
			Tier:    risk.TierMedium,
			Smells: []risk.Smell{
				{Subject: "b.py", SubjectKind: risk.SubjectFile, Metric: risk.MetricUnusedImports, Observed: 1, Tier: risk.TierMedium},
			},
			Functions: []report.FunctionAnalysis{
				function("b.py", "beta", 1, 4, 10, 1, risk.TierLow),
				function("b.py", "alpha", 20, 4, 10, 2, risk.TierLow),
			},
		},
		{
			Path:    "a.py",
			Metrics: quality.Metrics{CommentRatio: 0.3, DocstringCoverage: 1, UnusedImports: []string{}},
			Functions: []report.FunctionAnalysis{
				function("a.py", "hot", 3, 12, 70, 6, risk.TierHigh),
				function("a.py", "alpha", 90, 4, 25, 0, risk.TierLow),
			},
			Errors: []report.ErrorEntry{{File: "a.py", Kind: report.ErrorKindMalformedTree, Reason: "ghost"}},
		},
		{
			Path:   "broken.py",
			Failed: true,
			Errors: []report.ErrorEntry{{File: "broken.py", Kind: report.ErrorKindParse, Reason: "invalid syntax"}},
		},
	}
}

func TestFold_FunctionRanking(t *testing.T) {
	t.Parallel()

	result := report.Fold(fixture())

	var ids []string
	for _, fn := range result.Functions {
		ids = append(ids, fn.ID)
	}

	// CC desc, then LEN desc, then qualified name, then file.
	assert.Equal(t, []string{"a.py::hot", "a.py::alpha", "b.py::alpha", "b.py::beta"}, ids)
}

func TestFold_FileRanking(t *testing.T) {
	t.Parallel()

	result := report.Fold(fixture())
	require.Len(t, result.Files, 2)

	assert.Equal(t, "b.py", result.Files[0].Path, "medium file ranks above low file")
	assert.Equal(t, "a.py", result.Files[1].Path)

	a := result.Files[1]
	assert.Equal(t, 2, a.FunctionCount)
	assert.Equal(t, 12, a.CCMax)
	assert.InDelta(t, 8.0, a.CCAvg, 1e-9)
	assert.Equal(t, 1, a.HighSmells)
	assert.Equal(t, 1, a.SmellCount)
}

func TestFold_FileRankingTieBreaks(t *testing.T) {
	t.Parallel()

	files := []report.FileResult{
		{Path: "z.py", Tier: risk.TierMedium, SmellCount: 1},
		{Path: "m.py", Tier: risk.TierMedium, SmellCount: 3},
		{Path: "a.py", Tier: risk.TierLow, SmellCount: 9},
		{Path: "c.py", Tier: risk.TierMedium, SmellCount: 1},
		{Path: "h.py", Tier: risk.TierHigh},
	}

	slices.SortFunc(files, report.CompareFiles)

	var paths []string
	for _, f := range files {
		paths = append(paths, f.Path)
	}

	assert.Equal(t, []string{"h.py", "m.py", "c.py", "z.py", "a.py"}, paths)
}

func TestFold_ErrorsAndFailedFiles(t *testing.T) {
	t.Parallel()

	result := report.Fold(fixture())

	require.Len(t, result.Errors, 2)
	assert.Equal(t, "a.py", result.Errors[0].File)
	assert.Equal(t, report.ErrorKindParse, result.Errors[1].Kind)

	assert.Equal(t, 2, result.Summary.NumFiles)
	assert.Equal(t, 1, result.Summary.NumFailed)

	for _, f := range result.Files {
		assert.NotEqual(t, "broken.py", f.Path)
	}
}

func TestFold_Summary(t *testing.T) {
	t.Parallel()

	s := report.Fold(fixture()).Summary

	assert.Equal(t, 4, s.NumFunctions)
	assert.InDelta(t, 6.0, s.CCAvg, 1e-9)
	assert.Equal(t, 12, s.CCMax)
	assert.InDelta(t, 28.75, s.LENAvg, 1e-9)
	assert.Equal(t, 70, s.LENMax)
	assert.Equal(t, 6, s.NESTMax)
	assert.InDelta(t, 2.25, s.NESTAvg, 1e-9)

	cc := map[string]int{}
	for _, b := range s.CCDistribution {
		cc[b.Label] = b.Count
	}

	assert.Equal(t, map[string]int{"1-3": 0, "4-6": 3, "7-10": 0, "11+": 1}, cc)

	length := map[string]int{}
	for _, b := range s.LENDistribution {
		length[b.Label] = b.Count
	}

	assert.Equal(t, map[string]int{"1-20": 2, "21-40": 1, "41-60": 0, "61+": 1}, length)

	assert.InDelta(t, 0.2, s.FileMetricAvg.CommentRatio, 1e-9)
	assert.InDelta(t, 0.75, s.FileMetricAvg.DocstringCoverage, 1e-9)
	assert.InDelta(t, 0.5, s.FileMetricAvg.UnusedImports, 1e-9)

	assert.Equal(t, report.TierCounts{Low: 3, High: 1}, s.FunctionTiers)
	assert.Equal(t, report.TierCounts{Low: 1, Medium: 1}, s.FileTiers)
	assert.Equal(t, report.TierCounts{Medium: 1, High: 1}, s.SmellTiers)
}

func TestFold_OrderInvariantAndIdempotent(t *testing.T) {
	t.Parallel()

	want, err := json.Marshal(report.Fold(fixture()))
	require.NoError(t, err)

	rng := rand.New(rand.NewPCG(1, 2))

	for range 20 {
		inputs := fixture()
		rng.Shuffle(len(inputs), func(i, j int) { inputs[i], inputs[j] = inputs[j], inputs[i] })

		got, marshalErr := json.Marshal(report.Fold(inputs))
		require.NoError(t, marshalErr)
		assert.Equal(t, string(want), string(got))
	}
}

func TestFold_Empty(t *testing.T) {
	t.Parallel()

	result := report.Fold(nil)

	assert.NotNil(t, result.Functions)
	assert.NotNil(t, result.Files)
	assert.NotNil(t, result.Smells)
	assert.NotNil(t, result.Errors)
	assert.Zero(t, result.Summary.NumFiles)
	assert.Len(t, result.Summary.CCDistribution, 4)
}

func TestFunctionID(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "pkg/a.py::A.run", report.FunctionID("pkg/a.py", "A.run", 0))
	assert.Equal(t, "pkg/a.py::A.run#2", report.FunctionID("pkg/a.py", "A.run", 1))
}

func TestAnalysisResult_Views(t *testing.T) {
	t.Parallel()

	result := report.Fold(fixture())

	filtered := result.WithMinCC(5)
	require.Len(t, filtered.Functions, 1)
	assert.Equal(t, "a.py::hot", filtered.Functions[0].ID)
	assert.Equal(t, 4, filtered.Summary.NumFunctions, "summary keeps every function")
	assert.Len(t, result.Functions, 4, "original result is not modified")

	assert.Len(t, result.TopFunctions(2), 2)
	assert.Len(t, result.TopFunctions(0), 4)
	assert.Len(t, result.TopFiles(10), 2)
}
