package segment

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"surveyinsight/adapters/stats/senses"
	"surveyinsight/domain/survey"
	"surveyinsight/internal/config"
)

// SkipReason explains why a source/target pair produced no insight
type SkipReason string

const (
	SkipSelfComparison     SkipReason = "self_comparison"
	SkipInsufficientSample SkipReason = "insufficient_sample"
	SkipDegenerateTable    SkipReason = "degenerate_table"
	SkipNotSignificant     SkipReason = "not_significant"
)

// Skip describes one pair that was evaluated and dropped
type Skip struct {
	Source string     `json:"source"`
	Target string     `json:"target"`
	Reason SkipReason `json:"reason"`
	PValue float64    `json:"p_value,omitempty"`
}

// SkipObserver receives skipped pairs. Skips are control flow, not errors.
type SkipObserver interface {
	ObserveSkip(skip Skip)
}

// SkipObserverFunc adapts a plain function to SkipObserver
type SkipObserverFunc func(skip Skip)

// ObserveSkip calls f
func (f SkipObserverFunc) ObserveSkip(skip Skip) {
	f(skip)
}

// Options holds the decision thresholds of the tester
type Options struct {
	Alpha        float64
	MinGroupSize int
	GroupRules   []GroupRule
	Workers      int
}

// DefaultOptions returns alpha 0.05, more than five observations per group
// and the default checkbox/radio grouping
func DefaultOptions() Options {
	return OptionsFromConfig(config.DefaultAnalysisConfig())
}

// OptionsFromConfig maps the analysis configuration onto tester options
func OptionsFromConfig(cfg config.AnalysisConfig) Options {
	return Options{
		Alpha:        cfg.Alpha,
		MinGroupSize: cfg.MinGroupSize,
		GroupRules: []GroupRule{
			{Category: survey.CategoryCheckbox, PrefixTokens: cfg.CheckboxPrefixTokens},
			{Category: survey.CategoryRadio, PrefixTokens: cfg.RadioPrefixTokens},
		},
		Workers: cfg.Workers,
	}
}

// Tester decides significance for one target against a segmented overlay
type Tester struct {
	opts  Options
	welch *senses.WelchTTestSense
	chi   *senses.ChiSquareSense
}

// NewTester creates a tester with the given thresholds
func NewTester(opts Options) *Tester {
	return &Tester{
		opts:  opts,
		welch: senses.NewWelchTTestSense(),
		chi:   senses.NewChiSquareSense(),
	}
}

// TestContinuous compares the target's Low and High means with Welch's t-test
func (t *Tester) TestContinuous(ov *survey.Overlay, target string, category survey.Category, observer SkipObserver) (*survey.Insight, bool) {
	source := ov.Source()
	if SameVariable(target, source) {
		notify(observer, Skip{Source: source, Target: target, Reason: SkipSelfComparison})
		return nil, false
	}

	low, high, ok := ov.SplitNumeric(target)
	if !ok || len(low) <= t.opts.MinGroupSize || len(high) <= t.opts.MinGroupSize {
		notify(observer, Skip{Source: source, Target: target, Reason: SkipInsufficientSample})
		return nil, false
	}

	res := t.welch.Compare(low, high)
	if !res.Significant(t.opts.Alpha) {
		notify(observer, Skip{Source: source, Target: target, Reason: SkipNotSignificant, PValue: res.PValue})
		return nil, false
	}

	aggregates := map[survey.Segment]float64{
		survey.SegmentLow:  round2(stat.Mean(low, nil)),
		survey.SegmentHigh: round2(stat.Mean(high, nil)),
	}

	return &survey.Insight{
		Summary:    RenderSummary(source, target, aggregates, res.PValue, false),
		Source:     source,
		Target:     target,
		Category:   category,
		ChartType:  survey.ChartBoxplot,
		Test:       res.SenseName,
		Statistic:  res.Statistic,
		PValue:     res.PValue,
		Aggregates: aggregates,
		LowValues:  low,
		HighValues: high,
	}, true
}

// TestIndicator cross-tabulates the segment against whether the target was
// answered and runs a chi-square test of independence
func (t *Tester) TestIndicator(ov *survey.Overlay, target string, category survey.Category, group string, observer SkipObserver) (*survey.Insight, bool) {
	source := ov.Source()
	if SameVariable(target, source) {
		notify(observer, Skip{Source: source, Target: target, Reason: SkipSelfComparison})
		return nil, false
	}

	table, ok := ov.CrossTab(target)
	if !ok || !table.IsComplete() {
		notify(observer, Skip{Source: source, Target: target, Reason: SkipDegenerateTable})
		return nil, false
	}

	res := t.chi.Test(table.Matrix())
	if !res.Tested() {
		notify(observer, Skip{Source: source, Target: target, Reason: SkipDegenerateTable})
		return nil, false
	}
	if !res.Significant(t.opts.Alpha) {
		notify(observer, Skip{Source: source, Target: target, Reason: SkipNotSignificant, PValue: res.PValue})
		return nil, false
	}

	aggregates := map[survey.Segment]float64{
		survey.SegmentLow:  selectionPercentage(table.Low),
		survey.SegmentHigh: selectionPercentage(table.High),
	}

	return &survey.Insight{
		Summary:     RenderSummary(source, target, aggregates, res.PValue, true),
		Source:      source,
		Target:      target,
		Category:    category,
		Group:       group,
		ChartType:   survey.ChartBar,
		Test:        res.SenseName,
		Statistic:   res.Statistic,
		PValue:      res.PValue,
		Percentage:  true,
		Aggregates:  aggregates,
		Contingency: &table,
	}, true
}

// selectionPercentage is the selected share rounded to two decimals, as a percentage
func selectionPercentage(c survey.IndicatorCounts) float64 {
	if c.Total() == 0 {
		return 0
	}
	share := float64(c.Selected) / float64(c.Total())
	return math.RoundToEven(share * 100)
}

func notify(observer SkipObserver, skip Skip) {
	if observer != nil {
		observer.ObserveSkip(skip)
	}
}
