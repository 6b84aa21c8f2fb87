package analyze

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/report"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

// Input is one file handed to RunInputs. When Tree is nil, Source is parsed.
type Input struct {
	Path   string       `json:"path"`
	Source string       `json:"source"`
	Tree   *syntax.Node `json:"tree,omitempty"`
}

// Run analyzes every path concurrently and folds the outcomes. Per-file
// failures become error entries; only cancellation of ctx aborts the run.
func (a *Analyzer) Run(ctx context.Context, paths []string) (report.AnalysisResult, error) {
	a.logger.InfoContext(ctx, "analysis started", "files", len(paths), "workers", a.limit())

	return a.fanOut(ctx, len(paths), func(gctx context.Context, i int) report.FileAnalysis {
		return a.AnalyzeFile(gctx, paths[i])
	})
}

// RunInputs analyzes in-memory inputs concurrently and folds the outcomes.
func (a *Analyzer) RunInputs(ctx context.Context, inputs []Input) (report.AnalysisResult, error) {
	return a.fanOut(ctx, len(inputs), func(gctx context.Context, i int) report.FileAnalysis {
		in := inputs[i]
		if in.Tree != nil {
			return a.AnalyzeTree(in.Path, []byte(in.Source), in.Tree)
		}

		return a.AnalyzeSource(gctx, in.Path, []byte(in.Source))
	})
}

// fanOut runs analyze for indexes [0, n) on a bounded worker group. Each
// worker writes only its own slot, so no locking is needed.
func (a *Analyzer) fanOut(
	ctx context.Context, n int, analyze func(context.Context, int) report.FileAnalysis,
) (report.AnalysisResult, error) {
	ctx, span := a.tracer.Start(ctx, "cyclocalc.analyze.run")
	defer span.End()

	slots := make([]report.FileAnalysis, n)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.limit())

	for i := range n {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}

			slots[i] = analyze(gctx, i)

			return nil
		})
	}

	err := g.Wait()
	if err != nil {
		return report.AnalysisResult{}, fmt.Errorf("analysis cancelled: %w", err)
	}

	result := report.Fold(slots)

	a.logger.InfoContext(ctx, "analysis finished",
		"files", result.Summary.NumFiles,
		"failed", result.Summary.NumFailed,
		"functions", result.Summary.NumFunctions,
	)

	return result, nil
}

func (a *Analyzer) limit() int {
	if a.workers > 0 {
		return a.workers
	}

	return runtime.GOMAXPROCS(0)
}
