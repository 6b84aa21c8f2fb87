package risk_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/complexity"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/quality"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
)

func newClassifier(t *testing.T, thresholds risk.Thresholds) *risk.Classifier {
	t.Helper()

	c, err := risk.NewClassifier(thresholds)
	require.NoError(t, err)

	return c
}

func cleanFile() quality.Metrics {
	return quality.Metrics{
		CommentRatio:      0.2,
		DocstringCoverage: 1,
		UnusedImports:     []string{},
	}
}

func TestClassifyFunction_Tiers(t *testing.T) {
	t.Parallel()

	c := newClassifier(t, risk.DefaultThresholds())

	tests := []struct {
		name    string
		metrics complexity.Metrics
		tier    risk.Tier
		smells  []string
	}{
		{"simple", complexity.Metrics{CC: 2, LEN: 5, NEST: 1}, risk.TierLow, nil},
		{"cc medium inclusive", complexity.Metrics{CC: 7, LEN: 5}, risk.TierMedium, []string{risk.MetricCC}},
		{"cc high inclusive", complexity.Metrics{CC: 10, LEN: 5}, risk.TierHigh, []string{risk.MetricCC}},
		{"len medium", complexity.Metrics{CC: 1, LEN: 40}, risk.TierMedium, []string{risk.MetricLEN}},
		{"nest high wins over medium", complexity.Metrics{CC: 7, LEN: 1, NEST: 5}, risk.TierHigh, []string{risk.MetricCC, risk.MetricNEST}},
		{"all high", complexity.Metrics{CC: 30, LEN: 200, NEST: 9}, risk.TierHigh, []string{risk.MetricCC, risk.MetricLEN, risk.MetricNEST}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tier, smells := c.ClassifyFunction("pkg/mod.py::f", tt.metrics)
			assert.Equal(t, tt.tier, tier)

			var metrics []string
			for _, s := range smells {
				metrics = append(metrics, s.Metric)
				assert.Equal(t, "pkg/mod.py::f", s.Subject)
				assert.Equal(t, risk.SubjectFunction, s.SubjectKind)
			}

			assert.Equal(t, tt.smells, metrics)
		})
	}
}

func TestClassifyFunction_SmellCarriesDecidingThreshold(t *testing.T) {
	t.Parallel()

	c := newClassifier(t, risk.DefaultThresholds())

	_, smells := c.ClassifyFunction("f", complexity.Metrics{CC: 12, LEN: 45, NEST: 0})
	require.Len(t, smells, 2)

	assert.InDelta(t, 12, smells[0].Observed, 1e-9)
	assert.InDelta(t, risk.DefaultCCHigh, smells[0].Threshold, 1e-9)
	assert.Equal(t, risk.TierHigh, smells[0].Tier)

	assert.InDelta(t, risk.DefaultLENMedium, smells[1].Threshold, 1e-9)
	assert.Equal(t, risk.TierMedium, smells[1].Tier)
}

func TestClassifyFunction_Monotonic(t *testing.T) {
	t.Parallel()

	c := newClassifier(t, risk.DefaultThresholds())

	bases := []complexity.Metrics{
		{CC: 1, LEN: 1, NEST: 0},
		{CC: 6, LEN: 39, NEST: 2},
		{CC: 9, LEN: 59, NEST: 4},
	}

	for _, base := range bases {
		for step := range 80 {
			grown := []complexity.Metrics{
				{CC: base.CC + step, LEN: base.LEN, NEST: base.NEST},
				{CC: base.CC, LEN: base.LEN + step, NEST: base.NEST},
				{CC: base.CC, LEN: base.LEN, NEST: base.NEST + step},
			}

			prev, _ := c.ClassifyFunction("f", base)

			for _, g := range grown {
				tier, _ := c.ClassifyFunction("f", g)
				assert.GreaterOrEqual(t, tier, prev, "metrics %+v", g)
			}
		}
	}
}

func TestClassifyFile_Medium(t *testing.T) {
	t.Parallel()

	c := newClassifier(t, risk.DefaultThresholds())

	tier, smells := c.ClassifyFile("a.py", cleanFile())
	assert.Equal(t, risk.TierLow, tier)
	assert.Empty(t, smells)

	m := cleanFile()
	m.DocstringCoverage = 0.1
	m.CommentRatio = 0.0
	m.LongLineRatio = 0.5
	m.NamingIssueRatio = 0.2
	m.UnusedImports = []string{"os", "sys"}

	tier, smells = c.ClassifyFile("a.py", m)
	assert.Equal(t, risk.TierMedium, tier)
	require.Len(t, smells, 5)

	assert.Equal(t, risk.MetricUnusedImports, smells[4].Metric)
	assert.InDelta(t, 2, smells[4].Observed, 1e-9)

	for _, s := range smells {
		assert.Equal(t, risk.TierMedium, s.Tier)
		assert.Equal(t, risk.SubjectFile, s.SubjectKind)
	}
}

func TestClassifyFile_BoundariesAreExclusive(t *testing.T) {
	t.Parallel()

	c := newClassifier(t, risk.DefaultThresholds())

	m := cleanFile()
	m.DocstringCoverage = risk.DefaultDocstringFloor
	m.CommentRatio = risk.DefaultCommentFloor
	m.LongLineRatio = risk.DefaultLongLineCeiling
	m.NamingIssueRatio = risk.DefaultNamingCeiling

	tier, smells := c.ClassifyFile("a.py", m)
	assert.Equal(t, risk.TierLow, tier)
	assert.Empty(t, smells)
}

func TestClassifyFile_HighTierIsOptIn(t *testing.T) {
	t.Parallel()

	m := cleanFile()
	m.DocstringCoverage = 0.0
	m.UnusedImports = []string{"a", "b", "c", "d"}
	m.LongLineRatio = 0.15

	tier, _ := newClassifier(t, risk.DefaultThresholds()).ClassifyFile("a.py", m)
	assert.Equal(t, risk.TierMedium, tier)

	enabled := risk.DefaultThresholds()
	enabled.FileHighEnabled = true

	tier, smells := newClassifier(t, enabled).ClassifyFile("a.py", m)
	assert.Equal(t, risk.TierHigh, tier)
	require.Len(t, smells, 3)
	assert.Equal(t, risk.TierHigh, smells[0].Tier)
	assert.Equal(t, risk.TierMedium, smells[1].Tier, "long lines only cross the medium ceiling")
	assert.Equal(t, risk.TierHigh, smells[2].Tier)
}

func TestThresholds_Validate(t *testing.T) {
	t.Parallel()

	require.NoError(t, risk.DefaultThresholds().Validate())

	mutations := map[string]func(*risk.Thresholds){
		"cc medium equals high":  func(th *risk.Thresholds) { th.Function.CC.Medium = th.Function.CC.High },
		"len medium above high":  func(th *risk.Thresholds) { th.Function.LEN.Medium = 100 },
		"nest negative":          func(th *risk.Thresholds) { th.Function.NEST = risk.Limit{Medium: -1, High: 2} },
		"ratio out of range":     func(th *risk.Thresholds) { th.FileMedium.DocstringFloor = 1.5 },
		"negative unused max":    func(th *risk.Thresholds) { th.FileMedium.UnusedImportsMax = -1 },
		"high looser than medium": func(th *risk.Thresholds) {
			th.FileHighEnabled = true
			th.FileHigh.LongLineCeiling = 0.05
		},
	}

	for name, mutate := range mutations {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			th := risk.DefaultThresholds()
			mutate(&th)

			err := th.Validate()
			require.ErrorIs(t, err, risk.ErrInvalidConfiguration)

			_, err = risk.NewClassifier(th)
			require.ErrorIs(t, err, risk.ErrInvalidConfiguration)
		})
	}
}

func TestThresholds_DisabledHighIsNotValidated(t *testing.T) {
	t.Parallel()

	th := risk.DefaultThresholds()
	th.FileHigh.LongLineCeiling = 0.01

	assert.NoError(t, th.Validate())
}

func TestTier_Text(t *testing.T) {
	t.Parallel()

	assert.True(t, risk.TierLow < risk.TierMedium && risk.TierMedium < risk.TierHigh)

	data, err := json.Marshal(map[string]risk.Tier{"t": risk.TierHigh})
	require.NoError(t, err)
	assert.JSONEq(t, `{"t":"high"}`, string(data))

	var back map[string]risk.Tier
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, risk.TierHigh, back["t"])

	_, err = risk.ParseTier("critical")
	require.ErrorIs(t, err, risk.ErrInvalidConfiguration)
}
