// Package batch analyzes many images concurrently and cross-checks them as a
// deployment layout.
package batch

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/checks"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/policy"
	"github.com/microsoft/Xbox-GDK-Samples-sub013/internal/utils"
)

// Options configures a Driver
type Options struct {
	Analysis checks.Options
	// Workers bounds the number of files analyzed at once; <1 means NumCPU.
	Workers int
	// Layout treats the batch as one deployment layout and cross-checks it.
	Layout bool
}

// Summary counts per-file outcomes
type Summary struct {
	Files   int `json:"files" yaml:"files"`
	Passed  int `json:"passed" yaml:"passed"`
	Failed  int `json:"failed" yaml:"failed"`
	Skipped int `json:"skipped" yaml:"skipped"`
	Errors  int `json:"errors" yaml:"errors"`
}

// Result is the outcome of a batch run. Files are in input order.
type Result struct {
	Target     policy.Target            `json:"target" yaml:"target"`
	Files      []*checks.AnalysisResult `json:"files" yaml:"files"`
	MinVersion checks.ToolsetVersion    `json:"min_toolset" yaml:"min_toolset"`
	Layout     *LayoutReport            `json:"layout,omitempty" yaml:"layout,omitempty"`
	Summary    Summary                  `json:"summary" yaml:"summary"`
	Duration   time.Duration            `json:"-" yaml:"-"`
}

// Failed reports whether any file failed or the layout check found an error
func (r *Result) Failed() bool {
	if r.Summary.Failed > 0 {
		return true
	}
	return r.Layout != nil && checks.HasErrors(r.Layout.Diagnostics)
}

// ExitCode is 1 when the run failed and 0 otherwise
func (r *Result) ExitCode() int {
	if r.Failed() {
		return 1
	}
	return 0
}

// Driver runs an Analyzer over a list of files
type Driver struct {
	analyzer *checks.Analyzer
	opts     Options
	logger   *utils.Logger
}

// NewDriver creates a driver running the default checks
func NewDriver(opts Options, logger *utils.Logger) *Driver {
	if opts.Workers < 1 {
		opts.Workers = runtime.NumCPU()
	}
	if logger == nil {
		logger = utils.NewDefaultLogger()
	}
	return &Driver{
		analyzer: checks.NewAnalyzer(opts.Analysis),
		opts:     opts,
		logger:   logger,
	}
}

// Run analyzes paths with at most Workers files in flight. A file that cannot
// be read or parsed is recorded in its result and never stops the batch; only
// cancellation of ctx does.
func (d *Driver) Run(ctx context.Context, paths []string) (*Result, error) {
	start := time.Now()
	results := make([]*checks.AnalysisResult, len(paths))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(d.opts.Workers)

	for i, path := range paths {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			log := d.logger.WithFile("batch", path)
			log.Debug("Analyzing file")

			r := d.analyzer.AnalyzeFile(path)
			switch {
			case r.Failure != nil:
				log.WithField("kind", r.Failure.Kind).Warnf("Failed to analyze: %s", r.Failure.Message)
			case r.Skipped:
				log.Info("Skipped file")
			default:
				log.WithField("passed", r.Passed).Debug("Analysis complete")
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch cancelled: %w", err)
	}

	result := &Result{
		Target:   d.opts.Analysis.Target,
		Files:    results,
		Duration: time.Since(start),
	}

	acc := NewAccumulator()
	for _, r := range results {
		acc.Add(r)
		result.Summary.add(r)
	}
	result.MinVersion = acc.MinVersion()
	if result.Target == policy.TargetUnspecified {
		result.Target = acc.InferredTarget()
	}
	if d.opts.Layout {
		result.Layout = acc.Layout(result.Target)
	}

	d.logger.WithComponent("batch").WithFields(logrus.Fields{
		"files":    result.Summary.Files,
		"failed":   result.Summary.Failed,
		"duration": result.Duration.String(),
	}).Debug("Batch complete")

	return result, nil
}

func (s *Summary) add(r *checks.AnalysisResult) {
	s.Files++
	switch {
	case r.Skipped:
		s.Skipped++
	case r.Passed:
		s.Passed++
	default:
		s.Failed++
		if r.Failure != nil {
			s.Errors++
		}
	}
}
