package classify

import (
	"strings"

	"surveyinsight/domain/survey"
	"surveyinsight/internal"
)

// Rule assigns a category to every column whose lower-cased name contains one of its patterns
type Rule struct {
	Category survey.Category
	Patterns []string
}

// Matches reports whether a lower-cased column name contains any pattern
func (r Rule) Matches(lowerName string) bool {
	for _, p := range r.Patterns {
		if strings.Contains(lowerName, p) {
			return true
		}
	}
	return false
}

// DefaultRules returns the naming conventions of the survey export, in priority order
func DefaultRules() []Rule {
	return []Rule{
		{Category: survey.CategorySegment, Patterns: []string{"segment_"}},
		{Category: survey.CategoryLikert, Patterns: []string{"likert_"}},
		{Category: survey.CategoryRating, Patterns: []string{"rating_", "nps_"}},
		{Category: survey.CategoryMatrix, Patterns: []string{"matrix_"}},
		{Category: survey.CategoryRadio, Patterns: []string{"rb_"}},
		{Category: survey.CategoryCheckbox, Patterns: []string{"checkbox_"}},
		{Category: survey.CategoryRanking, Patterns: []string{"rank_"}},
		{Category: survey.CategorySemanticDifferential, Patterns: []string{"sd_"}},
		{Category: survey.CategoryOpenEnded, Patterns: []string{"open_ended_", "comment_", "feedback_"}},
	}
}

// Classifier tags columns with semantic categories from their names
type Classifier struct {
	rules  []Rule
	logger *internal.Logger
}

// Option configures a Classifier
type Option func(*Classifier)

// WithLogger sets the logger used for classification summaries
func WithLogger(logger *internal.Logger) Option {
	return func(c *Classifier) {
		c.logger = logger.WithComponent("Classifier")
	}
}

// New creates a classifier; the first matching rule wins
func New(rules []Rule, options ...Option) *Classifier {
	lowered := make([]Rule, len(rules))
	for i, r := range rules {
		patterns := make([]string, len(r.Patterns))
		for j, p := range r.Patterns {
			patterns[j] = strings.ToLower(p)
		}
		lowered[i] = Rule{Category: r.Category, Patterns: patterns}
	}
	c := &Classifier{
		rules:  lowered,
		logger: internal.NewDefaultLogger().WithComponent("Classifier"),
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

// Default creates a classifier with DefaultRules
func Default() *Classifier {
	return New(DefaultRules())
}

// Rules returns a copy of the rules in priority order
func (c *Classifier) Rules() []Rule {
	out := make([]Rule, len(c.rules))
	copy(out, c.rules)
	return out
}

// Classify buckets column names, keeping input order within a category.
// Every category is present in the result; unmatched columns are dropped.
func (c *Classifier) Classify(columns []string) survey.Classification {
	result := survey.NewClassification()
	unmatched := 0

	for _, col := range columns {
		cat, ok := c.CategoryFor(col)
		if !ok {
			unmatched++
			continue
		}
		result[cat] = append(result[cat], col)
	}

	c.logger.Debug("classified %d columns, %d unmatched", len(columns)-unmatched, unmatched)
	return result
}

// ClassifyDataset classifies the dataset's headers
func (c *Classifier) ClassifyDataset(ds *survey.Dataset) survey.Classification {
	return c.Classify(ds.Headers())
}

// CategoryFor returns the category of the first rule matching the column
func (c *Classifier) CategoryFor(column string) (survey.Category, bool) {
	lower := strings.ToLower(column)
	for _, r := range c.rules {
		if r.Matches(lower) {
			return r.Category, true
		}
	}
	return 0, false
}
