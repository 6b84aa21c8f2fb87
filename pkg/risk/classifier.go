package risk

import (
	"errors"
	"sort"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/complexity"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/quality"
)

// Classifier applies a fixed Thresholds value. It holds no mutable state and is
// safe for concurrent use.
type Classifier struct {
	thresholds Thresholds
}

// NewClassifier validates thresholds and returns a classifier bound to them.
func NewClassifier(thresholds Thresholds) (*Classifier, error) {
	err := thresholds.Validate()
	if err != nil {
		return nil, err
	}

	return &Classifier{thresholds: thresholds}, nil
}

// Thresholds returns the policy the classifier was built with.
func (c *Classifier) Thresholds() Thresholds {
	return c.thresholds
}

// ClassifyFunction returns the tier of a function and one smell per metric that
// crossed a threshold, at the highest tier it crossed.
func (c *Classifier) ClassifyFunction(subject string, m complexity.Metrics) (Tier, []Smell) {
	limits := c.thresholds.Function
	acc := accumulator{subject: subject, kind: SubjectFunction}

	acc.atLeast(MetricCC, m.CC, limits.CC)
	acc.atLeast(MetricLEN, m.LEN, limits.LEN)
	acc.atLeast(MetricNEST, m.NEST, limits.NEST)

	return acc.tier, acc.smells
}

// ClassifyFile returns the tier of a file and its smells. Files reach High only
// when the high file tier is enabled.
func (c *Classifier) ClassifyFile(subject string, m quality.Metrics) (Tier, []Smell) {
	acc := accumulator{subject: subject, kind: SubjectFile}
	tiers := []fileTier{{TierMedium, c.thresholds.FileMedium}}

	if c.thresholds.FileHighEnabled {
		tiers = []fileTier{{TierHigh, c.thresholds.FileHigh}, {TierMedium, c.thresholds.FileMedium}}
	}

	unused := float64(len(m.UnusedImports))

	checks := []struct {
		metric   string
		observed float64
		limit    func(FileLimits) float64
		crossed  func(observed, limit float64) bool
	}{
		{MetricDocstringCov, m.DocstringCoverage, func(l FileLimits) float64 { return l.DocstringFloor }, below},
		{MetricCommentRatio, m.CommentRatio, func(l FileLimits) float64 { return l.CommentFloor }, below},
		{MetricLongLineRatio, m.LongLineRatio, func(l FileLimits) float64 { return l.LongLineCeiling }, above},
		{MetricNamingRatio, m.NamingIssueRatio, func(l FileLimits) float64 { return l.NamingCeiling }, above},
		{MetricUnusedImports, unused, func(l FileLimits) float64 { return float64(l.UnusedImportsMax) }, above},
	}

	for _, check := range checks {
		for _, tier := range tiers {
			threshold := check.limit(tier.limits)
			if check.crossed(check.observed, threshold) {
				acc.add(check.metric, check.observed, threshold, tier.tier)

				break
			}
		}
	}

	return acc.tier, acc.smells
}

type fileTier struct {
	tier   Tier
	limits FileLimits
}

func below(observed, limit float64) bool { return observed < limit }

func above(observed, limit float64) bool { return observed > limit }

type accumulator struct {
	subject string
	kind    string
	tier    Tier
	smells  []Smell
}

// atLeast records the highest inclusive limit crossed by value. High is checked
// first so the smell carries the threshold that decided its tier.
func (a *accumulator) atLeast(metric string, value int, limit Limit) {
	switch {
	case value >= limit.High:
		a.add(metric, float64(value), float64(limit.High), TierHigh)
	case value >= limit.Medium:
		a.add(metric, float64(value), float64(limit.Medium), TierMedium)
	}
}

func (a *accumulator) add(metric string, observed, threshold float64, tier Tier) {
	a.smells = append(a.smells, Smell{
		Subject:     a.subject,
		SubjectKind: a.kind,
		Metric:      metric,
		Observed:    observed,
		Threshold:   threshold,
		Tier:        tier,
	})

	a.tier = max(a.tier, tier)
}

func sortedJoin(errs []error) error {
	sort.Slice(errs, func(i, j int) bool { return errs[i].Error() < errs[j].Error() })

	return errors.Join(errs...)
}
