package core

// pipeline.go composes the passes into one run:
//
//	normalize headers -> select columns -> {email, name, phone} -> dedupe
//
// Each pass is isolated: an error or panic inside it is recorded in the
// pass report and the dataset continues unchanged into the next pass.
// With Workers > 1 the three column rules read the same snapshot in
// parallel and their columns are merged in a fixed order afterwards.

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options configures a Pipeline. Zero values mean "off" or "default".
type Options struct {
	// Select restricts output to these columns. Empty keeps every column.
	Select []string

	// Rule column bindings. Empty disables the rule.
	EmailColumn string
	NameColumn  string
	PhoneColumn string

	// KnownDomains drives email repair. The zero value uses DefaultKnownDomains.
	KnownDomains KnownDomains
	// SimilarityThreshold is the minimum ratio for a domain repair, in (0, 1].
	// Zero uses DefaultSimilarityThreshold.
	SimilarityThreshold float64

	Dedupe      bool
	Workers     int
	StopOnError bool
}

// DefaultOptions binds the rules to the conventional column names.
func DefaultOptions() Options {
	return Options{
		EmailColumn:         "email",
		NameColumn:          "firstname",
		PhoneColumn:         "phone",
		KnownDomains:        DefaultKnownDomains,
		SimilarityThreshold: DefaultSimilarityThreshold,
		Dedupe:              true,
		Workers:             1,
	}
}

// Validate reports every configuration problem at once.
func (o Options) Validate() error {
	var errs []string

	if o.SimilarityThreshold < 0 || o.SimilarityThreshold > 1 {
		errs = append(errs, fmt.Sprintf("similarity threshold %v outside [0, 1]", o.SimilarityThreshold))
	}
	if o.Workers < 0 {
		errs = append(errs, fmt.Sprintf("workers must not be negative, got %d", o.Workers))
	}

	owner := make(map[string]string)
	for _, b := range []struct{ rule, column string }{
		{"email", o.EmailColumn},
		{"name", o.NameColumn},
		{"phone", o.PhoneColumn},
	} {
		if b.column == "" {
			continue
		}
		col := NormalizeColumnName(b.column)
		if prev, ok := owner[col]; ok {
			errs = append(errs, fmt.Sprintf("%s and %s rules both target column %q", prev, b.rule, col))
			continue
		}
		owner[col] = b.rule
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(errs, "; "))
	}
	return nil
}

// Pipeline runs the configured passes over a dataset.
// A Pipeline holds no per-run state and is safe for concurrent use.
type Pipeline struct {
	opts   Options
	logger *slog.Logger

	headers []Pass
	rules   []*ColumnRule
	tail    []Pass
}

// NewPipeline validates opts and builds the pass list.
func NewPipeline(opts Options, logger *slog.Logger) (*Pipeline, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	if opts.KnownDomains.Len() == 0 {
		opts.KnownDomains = DefaultKnownDomains
	}
	if opts.SimilarityThreshold == 0 {
		opts.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if opts.Workers == 0 {
		opts.Workers = 1
	}

	p := &Pipeline{opts: opts, logger: logger}

	p.headers = append(p.headers, normalizePass{})
	if len(opts.Select) > 0 {
		cols := make([]string, len(opts.Select))
		for i, c := range opts.Select {
			cols[i] = NormalizeColumnName(c)
		}
		p.headers = append(p.headers, selectPass{columns: cols})
	}

	if opts.EmailColumn != "" {
		p.rules = append(p.rules, EmailRule(NormalizeColumnName(opts.EmailColumn), opts.KnownDomains, opts.SimilarityThreshold))
	}
	if opts.NameColumn != "" {
		p.rules = append(p.rules, NameRule(NormalizeColumnName(opts.NameColumn)))
	}
	if opts.PhoneColumn != "" {
		p.rules = append(p.rules, PhoneRule(NormalizeColumnName(opts.PhoneColumn)))
	}

	if opts.Dedupe {
		p.tail = append(p.tail, dedupePass{})
	}
	return p, nil
}

// Options returns the effective options after defaults were applied.
func (p *Pipeline) Options() Options { return p.opts }

// Run cleans ds and returns the cleaned dataset with its report. ds is not
// modified.
//
// A failing pass is rolled back and recorded in the report. Run only
// returns an error when ctx is cancelled, ds is nil, or StopOnError is set
// and a pass failed; the dataset and report reflect the work done so far.
func (p *Pipeline) Run(ctx context.Context, ds *Dataset) (*Dataset, *Report, error) {
	if ds == nil {
		return nil, nil, fmt.Errorf("%w: nil dataset", ErrInvalidDataset)
	}

	report := &Report{
		RunID:     RunIDFromContext(ctx),
		StartedAt: time.Now(),
		RowsIn:    ds.Len(),
		ColumnsIn: len(ds.Columns),
	}
	if report.RunID == "" {
		report.RunID = uuid.NewString()
	}
	logger := p.logger.With("run_id", report.RunID)

	finish := func(cur *Dataset, err error) (*Dataset, *Report, error) {
		report.RowsOut = cur.Len()
		report.ColumnsOut = len(cur.Columns)
		report.DurationMs = time.Since(report.StartedAt).Milliseconds()
		repaired, rejected, removed := report.Totals()
		logger.Info("pipeline finished",
			"rows_in", report.RowsIn,
			"rows_out", report.RowsOut,
			"repaired", repaired,
			"rejected", rejected,
			"removed", removed,
			"failed_passes", len(report.Failures()),
			"duration_ms", report.DurationMs,
		)
		return cur, report, err
	}

	cur := ds
	for _, pass := range p.headers {
		if err := ctx.Err(); err != nil {
			return finish(cur, err)
		}
		var err error
		if cur, err = p.runPass(logger, report, pass, cur); err != nil {
			return finish(cur, err)
		}
	}

	if err := ctx.Err(); err != nil {
		return finish(cur, err)
	}
	var err error
	if p.opts.Workers > 1 && len(p.rules) > 1 {
		cur, err = p.runRulesConcurrently(ctx, logger, report, cur)
	} else {
		for _, rule := range p.rules {
			if err = ctx.Err(); err != nil {
				break
			}
			if cur, err = p.runPass(logger, report, rule, cur); err != nil {
				break
			}
		}
	}
	if err != nil {
		return finish(cur, err)
	}

	for _, pass := range p.tail {
		if err := ctx.Err(); err != nil {
			return finish(cur, err)
		}
		if cur, err = p.runPass(logger, report, pass, cur); err != nil {
			return finish(cur, err)
		}
	}
	return finish(cur, nil)
}

// runPass applies one pass in isolation and appends its report. On failure
// it returns the input dataset; the error is only returned under StopOnError.
func (p *Pipeline) runPass(logger *slog.Logger, report *Report, pass Pass, ds *Dataset) (*Dataset, error) {
	start := time.Now()
	out, pr, err := safeApply(pass, ds)
	pr.DurationMs = time.Since(start).Milliseconds()
	if pr.Pass == "" {
		pr.Pass = pass.Name()
	}

	if err != nil {
		pr.Error = err.Error()
		report.Passes = append(report.Passes, pr)
		logger.Error("pass failed, dataset left unchanged", "pass", pr.Pass, "column", pr.Column, "error", err)
		if p.opts.StopOnError {
			return ds, fmt.Errorf("%s pass: %w", pr.Pass, err)
		}
		return ds, nil
	}

	report.Passes = append(report.Passes, pr)
	p.logPass(logger, pr)
	return out, nil
}

// runRulesConcurrently evaluates every rule against the same snapshot and
// merges the resulting columns in rule order.
func (p *Pipeline) runRulesConcurrently(ctx context.Context, logger *slog.Logger, report *Report, ds *Dataset) (*Dataset, error) {
	type result struct {
		cells  []Cell
		report PassReport
		err    error
	}
	results := make([]result, len(p.rules))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.opts.Workers)
	for i, rule := range p.rules {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			start := time.Now()
			cells, pr, err := safeEvaluate(rule, ds)
			pr.DurationMs = time.Since(start).Milliseconds()
			results[i] = result{cells: cells, report: pr, err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return ds, err
	}

	var out *Dataset
	var stopErr error
	for i, rule := range p.rules {
		res := results[i]
		if res.err != nil {
			res.report.Error = res.err.Error()
			report.Passes = append(report.Passes, res.report)
			logger.Error("pass failed, dataset left unchanged", "pass", rule.Name(), "column", rule.Column(), "error", res.err)
			if p.opts.StopOnError && stopErr == nil {
				stopErr = fmt.Errorf("%s pass: %w", rule.Name(), res.err)
			}
			continue
		}
		if stopErr != nil {
			continue
		}
		if out == nil {
			out = ds.Clone()
		}
		idx := out.ColumnIndex(rule.Column())
		for r := range out.Rows {
			out.Rows[r][idx] = res.cells[r]
		}
		report.Passes = append(report.Passes, res.report)
		p.logPass(logger, res.report)
	}

	if out == nil {
		out = ds
	}
	return out, stopErr
}

func (p *Pipeline) logPass(logger *slog.Logger, pr PassReport) {
	for _, w := range pr.Warnings {
		logger.Warn(w.Message, "pass", pr.Pass, "code", string(w.Code), "columns", w.Columns)
	}
	if pr.Rejected > 0 {
		logger.Warn("cells rejected", "pass", pr.Pass, "column", pr.Column, "rejected", pr.Rejected, "repaired", pr.Repaired)
		return
	}
	logger.Info("pass complete",
		"pass", pr.Pass,
		"column", pr.Column,
		"repaired", pr.Repaired,
		"removed", pr.Removed,
		"duration_ms", pr.DurationMs,
	)
}

func safeApply(pass Pass, ds *Dataset) (out *Dataset, pr PassReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			out = ds
			pr = PassReport{Pass: pass.Name()}
			err = fmt.Errorf("%w: %v", ErrPassPanicked, r)
		}
	}()
	return pass.Apply(ds)
}

func safeEvaluate(rule *ColumnRule, ds *Dataset) (cells []Cell, pr PassReport, err error) {
	defer func() {
		if r := recover(); r != nil {
			cells = nil
			pr = PassReport{Pass: rule.Name(), Column: rule.Column()}
			err = fmt.Errorf("%w: %v", ErrPassPanicked, r)
		}
	}()
	return rule.evaluate(ds)
}
