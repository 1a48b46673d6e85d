package survey

import (
	"sort"
	"strings"

	"surveyinsight/domain/core"
)

// Classification maps each category to its columns in discovery order
type Classification map[Category][]string

// NewClassification returns a classification with every category present and empty
func NewClassification() Classification {
	c := make(Classification, len(AllCategories))
	for _, cat := range AllCategories {
		c[cat] = []string{}
	}
	return c
}

// Columns returns the columns of one category
func (c Classification) Columns(cat Category) []string {
	return c[cat]
}

// Concat joins the columns of several categories in the given order
func (c Classification) Concat(cats ...Category) []string {
	var out []string
	for _, cat := range cats {
		out = append(out, c[cat]...)
	}
	return out
}

// CategoryOf returns the category a column was assigned to
func (c Classification) CategoryOf(column string) (Category, bool) {
	for _, cat := range AllCategories {
		for _, col := range c[cat] {
			if col == column {
				return cat, true
			}
		}
	}
	return 0, false
}

// Validate checks that all nine categories are present and no column is listed twice
func (c Classification) Validate() error {
	var missing []string
	for _, cat := range AllCategories {
		if _, ok := c[cat]; !ok {
			missing = append(missing, cat.String())
		}
	}
	if len(missing) > 0 {
		return core.NewClassificationError("missing categories: %s", strings.Join(missing, ", "))
	}

	owner := make(map[string]Category)
	for _, cat := range AllCategories {
		for _, col := range c[cat] {
			if prev, dup := owner[col]; dup {
				return core.NewClassificationError("column %q is classified as both %s and %s", col, prev, cat)
			}
			owner[col] = cat
		}
	}
	return nil
}

// ValidateAgainst runs Validate and checks every classified column exists in ds
func (c Classification) ValidateAgainst(ds *Dataset) error {
	if err := c.Validate(); err != nil {
		return err
	}
	for _, cat := range AllCategories {
		for _, col := range c[cat] {
			if !ds.HasColumn(col) {
				return core.NewClassificationError("%s column %q does not exist in the dataset", cat, col)
			}
		}
	}
	return nil
}

// Hash identifies the classification content
func (c Classification) Hash() core.ClassificationHash {
	groups := make(map[string][]string, len(c))
	for cat, cols := range c {
		groups[cat.String()] = cols
	}
	return core.ComputeClassificationHash(groups)
}

// Counts returns the number of columns per category key, for summaries
func (c Classification) Counts() map[string]int {
	out := make(map[string]int, len(c))
	for cat, cols := range c {
		out[cat.String()] = len(cols)
	}
	return out
}

// Classified returns every classified column sorted by name
func (c Classification) Classified() []string {
	var out []string
	for _, cols := range c {
		out = append(out, cols...)
	}
	sort.Strings(out)
	return out
}
