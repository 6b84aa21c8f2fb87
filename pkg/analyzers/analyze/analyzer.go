// Package analyze runs the per-file pipeline (parse, measure, classify) and
// folds the outcomes of many files into one report.
package analyze

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"time"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/complexity"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/analyzers/quality"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/observability"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/parser"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/report"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/risk"
	"github.com/Sumatoshi-tech/cyclocalc/pkg/syntax"
)

// DefaultMaxFileSize is the largest source file read by AnalyzeFile.
const DefaultMaxFileSize = 2 << 20

var errNilTree = errors.New("tree has no root node")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Analyzer measures and classifies Python files. It is safe for concurrent use.
type Analyzer struct {
	parser      *parser.Parser
	classifier  *risk.Classifier
	quality     quality.Options
	workers     int
	maxFileSize uint64
	logger      *slog.Logger
	metrics     *observability.AnalysisMetrics
	tracer      trace.Tracer
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWorkers bounds the number of files analyzed at once. Values below one
// mean one worker per CPU.
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = n }
}

// WithMaxFileSize sets the size limit in bytes above which files are recorded
// as unreadable instead of parsed. Zero disables the limit.
func WithMaxFileSize(n uint64) Option {
	return func(a *Analyzer) { a.maxFileSize = n }
}

// WithQualityOptions sets the file metric options.
func WithQualityOptions(opts quality.Options) Option {
	return func(a *Analyzer) { a.quality = opts }
}

// WithLogger sets the logger used for per-file diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(a *Analyzer) { a.logger = logger }
}

// WithMetrics records per-file outcomes on am.
func WithMetrics(am *observability.AnalysisMetrics) Option {
	return func(a *Analyzer) { a.metrics = am }
}

// WithTracer sets the tracer used for per-file spans.
func WithTracer(tracer trace.Tracer) Option {
	return func(a *Analyzer) { a.tracer = tracer }
}

// New creates an Analyzer that classifies with classifier.
func New(classifier *risk.Classifier, opts ...Option) *Analyzer {
	a := &Analyzer{
		parser:      parser.New(),
		classifier:  classifier,
		quality:     quality.DefaultOptions(),
		maxFileSize: DefaultMaxFileSize,
		logger:      slog.New(slog.DiscardHandler),
		tracer:      nooptrace.NewTracerProvider().Tracer(""),
	}

	for _, opt := range opts {
		opt(a)
	}

	return a
}

// AnalyzeFile reads, parses and analyzes the file at path. Failures are
// recorded in the returned analysis rather than returned.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) report.FileAnalysis {
	ctx, span := a.tracer.Start(ctx, "cyclocalc.analyze.file",
		trace.WithAttributes(attribute.String("analysis.file", path)))
	defer span.End()

	start := time.Now()

	src, err := a.readSource(path)

	var fa report.FileAnalysis
	if err != nil {
		fa = failed(path, report.ErrorKindSourceUnreadable, err)
	} else {
		fa = a.AnalyzeSource(ctx, path, src)
	}

	if fa.Failed {
		span.SetStatus(codes.Error, fa.Errors[0].Kind)
	}

	a.record(ctx, fa, time.Since(start))

	return fa
}

// AnalyzeSource parses src and analyzes the resulting tree.
func (a *Analyzer) AnalyzeSource(ctx context.Context, path string, src []byte) report.FileAnalysis {
	root, err := a.parser.Parse(ctx, path, src)
	if err != nil {
		a.logger.WarnContext(ctx, "parse failed", "file", path, "error", err)

		return failed(path, report.ErrorKindParse, err)
	}

	return a.AnalyzeTree(path, src, root)
}

// AnalyzeTree measures and classifies an already adapted tree. src supplies
// the physical lines for the line-based file metrics. A function whose span is
// unusable is skipped and recorded as a malformed_tree error; the rest of the
// file is still analyzed.
func (a *Analyzer) AnalyzeTree(path string, src []byte, root *syntax.Node) report.FileAnalysis {
	if root == nil {
		return failed(path, report.ErrorKindMalformedTree, fmt.Errorf("%w: %w", syntax.ErrMalformedTree, errNilTree))
	}

	fa := report.FileAnalysis{
		Path:      path,
		Functions: []report.FunctionAnalysis{},
		Errors:    []report.ErrorEntry{},
	}

	extracted := complexity.Extract(root)
	seen := make(map[string]int, len(extracted.Functions))

	for _, fn := range extracted.Functions {
		id := report.FunctionID(path, fn.QualifiedName, seen[fn.QualifiedName])
		seen[fn.QualifiedName]++

		tier, smells := a.classifier.ClassifyFunction(id, fn.Metrics)

		fa.Functions = append(fa.Functions, report.FunctionAnalysis{
			ID:            id,
			QualifiedName: fn.QualifiedName,
			Line:          fn.Line,
			EndLine:       fn.Node.Span.End,
			Metrics:       fn.Metrics,
			Tier:          tier,
			Smells:        smells,
		})
	}

	for _, diag := range extracted.Diagnostics {
		fa.Errors = append(fa.Errors, report.ErrorEntry{
			File:   path,
			Kind:   report.ErrorKindMalformedTree,
			Reason: fmt.Sprintf("%s: %v", diag.QualifiedName, diag.Err),
		})
	}

	fa.Metrics = quality.Extract(root, quality.SplitLines(src), a.quality)
	fa.Tier, fa.Smells = a.classifier.ClassifyFile(path, fa.Metrics)

	return fa
}

func (a *Analyzer) readSource(path string) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("stat: %w", err)
	}

	if !info.Mode().IsRegular() {
		return nil, fmt.Errorf("not a regular file: %w", fs.ErrInvalid)
	}

	if a.maxFileSize > 0 && uint64(info.Size()) > a.maxFileSize {
		return nil, fmt.Errorf("file size %s exceeds limit %s",
			humanize.IBytes(uint64(info.Size())), humanize.IBytes(a.maxFileSize))
	}

	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	src = bytes.TrimPrefix(src, utf8BOM)

	if !utf8.Valid(src) {
		return nil, errors.New("source is not valid UTF-8")
	}

	return src, nil
}

func (a *Analyzer) record(ctx context.Context, fa report.FileAnalysis, elapsed time.Duration) {
	stats := observability.FileStats{
		Status:    observability.StatusOK,
		Functions: len(fa.Functions),
		Duration:  elapsed,
		Smells:    map[observability.SmellKey]int{},
	}

	if fa.Failed {
		stats.Status = observability.StatusFailed
	}

	for _, s := range fa.Smells {
		stats.Smells[observability.SmellKey{Subject: s.SubjectKind, Tier: s.Tier.String()}]++
	}

	for _, fn := range fa.Functions {
		for _, s := range fn.Smells {
			stats.Smells[observability.SmellKey{Subject: s.SubjectKind, Tier: s.Tier.String()}]++
		}
	}

	a.metrics.RecordFile(ctx, stats)

	a.logger.DebugContext(ctx, "file analyzed",
		"file", fa.Path,
		"functions", len(fa.Functions),
		"tier", fa.Tier.String(),
		"failed", fa.Failed,
		"elapsed", elapsed,
	)
}

func failed(path, kind string, err error) report.FileAnalysis {
	return report.FileAnalysis{
		Path:   path,
		Failed: true,
		Errors: []report.ErrorEntry{{File: path, Kind: kind, Reason: err.Error()}},
	}
}
