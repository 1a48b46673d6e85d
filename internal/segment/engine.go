package segment

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"surveyinsight/domain/core"
	"surveyinsight/domain/survey"
	"surveyinsight/internal"
	"surveyinsight/internal/errors"
)

// RunStats summarises one analysis run
type RunStats struct {
	Sources     int                `json:"sources"`
	PairsTested int                `json:"pairs_tested"`
	Insights    int                `json:"insights"`
	Skips       map[SkipReason]int `json:"skips"`
	Duration    time.Duration      `json:"duration"`
}

// Result is the ordered output of a run plus what it ran against
type Result struct {
	RunID              core.RunID              `json:"run_id"`
	StartedAt          core.Timestamp          `json:"started_at"`
	Fingerprint        core.DatasetFingerprint `json:"dataset_fingerprint"`
	ClassificationHash core.ClassificationHash `json:"classification_hash"`
	Splits             []SegmentSplit          `json:"splits"`
	Insights           []survey.Insight        `json:"insights"`
	Stats              RunStats                `json:"stats"`
}

// Engine drives the segment discovery: every continuous source is median
// split and tested against every eligible target
type Engine struct {
	opts     Options
	tester   *Tester
	logger   *internal.Logger
	observer SkipObserver
	onRun    func(*Result)

	observerMu sync.Mutex
}

// EngineOption customises an Engine
type EngineOption func(*Engine)

// WithLogger sets the engine logger
func WithLogger(logger *internal.Logger) EngineOption {
	return func(e *Engine) {
		e.logger = logger.WithComponent("SegmentEngine")
	}
}

// WithSkipObserver forwards every skipped pair to observer. Calls are serialised.
func WithSkipObserver(observer SkipObserver) EngineOption {
	return func(e *Engine) {
		e.observer = observer
	}
}

// WithRunObserver calls fn with every completed result
func WithRunObserver(fn func(*Result)) EngineOption {
	return func(e *Engine) {
		e.onRun = fn
	}
}

// NewEngine creates an engine with the given thresholds
func NewEngine(opts Options, options ...EngineOption) *Engine {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if len(opts.GroupRules) == 0 {
		opts.GroupRules = DefaultGroupRules()
	}
	e := &Engine{
		opts:   opts,
		tester: NewTester(opts),
		logger: internal.NewDefaultLogger().WithComponent("SegmentEngine"),
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

// Sources lists the columns that get median-split, in run order
func Sources(classification survey.Classification) []string {
	return classification.Concat(survey.SourceOrder...)
}

// Run analyses every source of the classification. Output order is the
// per-source order concatenated in source order, regardless of concurrency.
func (e *Engine) Run(ctx context.Context, ds *survey.Dataset, classification survey.Classification) (*Result, error) {
	if err := e.validate(ds, classification); err != nil {
		return nil, err
	}
	return e.run(ctx, ds, classification, Sources(classification))
}

// RunSource analyses a single source column
func (e *Engine) RunSource(ctx context.Context, ds *survey.Dataset, classification survey.Classification, source string) (*Result, error) {
	if err := e.validate(ds, classification); err != nil {
		return nil, err
	}
	if !ds.HasColumn(source) {
		return nil, errors.NotFound(fmt.Sprintf("source column %q", source))
	}
	return e.run(ctx, ds, classification, []string{source})
}

func (e *Engine) validate(ds *survey.Dataset, classification survey.Classification) error {
	if ds == nil {
		return errors.InvalidInput("dataset is required")
	}
	if err := classification.ValidateAgainst(ds); err != nil {
		return errors.WithCode(errors.CodeClassificationInvalid, err)
	}
	return nil
}

func (e *Engine) run(ctx context.Context, ds *survey.Dataset, classification survey.Classification, sources []string) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:              core.NewRunID(),
		StartedAt:          core.NewTimestamp(start),
		Fingerprint:        ds.Fingerprint(),
		ClassificationHash: classification.Hash(),
	}
	targets := e.planTargets(classification)

	e.logger.Info("run %s: %d sources, %d rows, %d workers", result.RunID.String()[:8], len(sources), ds.RowCount(), e.opts.Workers)

	passes := make([]sourcePass, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.opts.Workers)

	for i, source := range sources {
		g.Go(func() error {
			pass, err := e.analyseSource(gctx, ds, source, targets)
			if err != nil {
				return err
			}
			passes[i] = pass
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, errors.Wrap(err, "segment analysis cancelled")
	}

	result.Stats.Skips = make(map[SkipReason]int)
	result.Insights = []survey.Insight{}
	for _, pass := range passes {
		result.Splits = append(result.Splits, pass.split)
		result.Insights = append(result.Insights, pass.insights...)
		result.Stats.PairsTested += pass.pairs
		for reason, n := range pass.skips {
			result.Stats.Skips[reason] += n
		}
	}
	result.Stats.Sources = len(sources)
	result.Stats.Insights = len(result.Insights)
	result.Stats.Duration = time.Since(start)

	e.logger.Info("run %s: %d insights from %d pairs in %s", result.RunID.String()[:8], result.Stats.Insights, result.Stats.PairsTested, result.Stats.Duration)
	if e.onRun != nil {
		e.onRun(result)
	}
	return result, nil
}

// target is one planned evaluation within a source pass
type target struct {
	column   string
	category survey.Category
	group    string
}

// planTargets fixes the evaluation order: continuous targets by category
// order, then each grouped category's groups sorted by prefix
func (e *Engine) planTargets(classification survey.Classification) []target {
	var plan []target
	for _, cat := range survey.ContinuousTargetOrder {
		for _, col := range classification.Columns(cat) {
			plan = append(plan, target{column: col, category: cat})
		}
	}
	for _, rule := range e.opts.GroupRules {
		for _, group := range ResolveGroups(classification.Columns(rule.Category), rule.PrefixTokens) {
			for _, col := range group.Columns {
				plan = append(plan, target{column: col, category: rule.Category, group: group.Prefix})
			}
		}
	}
	return plan
}

type sourcePass struct {
	split    SegmentSplit
	insights []survey.Insight
	pairs    int
	skips    map[SkipReason]int
}

func (e *Engine) analyseSource(ctx context.Context, ds *survey.Dataset, source string, targets []target) (sourcePass, error) {
	split := Split(ds, source)
	overlay := survey.NewOverlay(ds, source, split.Labels)
	pass := sourcePass{split: split, skips: make(map[SkipReason]int)}

	e.logger.Debug("source %s: median=%g low=%d high=%d", source, split.Median, split.LowCount, split.HighCount)

	observer := SkipObserverFunc(func(skip Skip) {
		pass.skips[skip.Reason]++
		e.logger.Trace("skip %s vs %s: %s", skip.Source, skip.Target, skip.Reason)
		e.forward(skip)
	})

	for _, tgt := range targets {
		if err := ctx.Err(); err != nil {
			return sourcePass{}, err
		}
		pass.pairs++

		var (
			insight *survey.Insight
			ok      bool
		)
		if tgt.category.IsIndicator() {
			insight, ok = e.tester.TestIndicator(overlay, tgt.column, tgt.category, tgt.group, observer)
		} else {
			insight, ok = e.tester.TestContinuous(overlay, tgt.column, tgt.category, observer)
		}
		if ok {
			pass.insights = append(pass.insights, *insight)
		}
	}

	e.logger.Debug("source %s: %d insights", source, len(pass.insights))
	return pass, nil
}

func (e *Engine) forward(skip Skip) {
	if e.observer == nil {
		return
	}
	e.observerMu.Lock()
	defer e.observerMu.Unlock()
	e.observer.ObserveSkip(skip)
}
