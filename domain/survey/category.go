package survey

import (
	"fmt"
	"strings"
)

// Category is the semantic type a column was tagged with by the classifier
type Category int

const (
	CategorySegment Category = iota
	CategoryLikert
	CategoryRating
	CategoryMatrix
	CategoryRadio
	CategoryCheckbox
	CategoryRanking
	CategorySemanticDifferential
	CategoryOpenEnded
)

// AllCategories lists every category in classifier order
var AllCategories = []Category{
	CategorySegment,
	CategoryLikert,
	CategoryRating,
	CategoryMatrix,
	CategoryRadio,
	CategoryCheckbox,
	CategoryRanking,
	CategorySemanticDifferential,
	CategoryOpenEnded,
}

var categoryNames = map[Category]string{
	CategorySegment:              "segments",
	CategoryLikert:               "likert",
	CategoryRating:               "rating",
	CategoryMatrix:               "matrix",
	CategoryRadio:                "radio",
	CategoryCheckbox:             "checkbox",
	CategoryRanking:              "ranking",
	CategorySemanticDifferential: "semantic",
	CategoryOpenEnded:            "open_ended",
}

// String returns the canonical category key
func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory maps a canonical key back to its category.
// "segment" and "semantic_differential" are accepted as aliases.
func ParseCategory(s string) (Category, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	switch key {
	case "segment":
		return CategorySegment, nil
	case "semantic_differential":
		return CategorySemanticDifferential, nil
	}
	for c, name := range categoryNames {
		if name == key {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown category %q", s)
}

// MarshalText lets categories act as JSON object keys
func (c Category) MarshalText() ([]byte, error) {
	if _, ok := categoryNames[c]; !ok {
		return nil, fmt.Errorf("unknown category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText parses a category key
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// TestKind says which significance test a target of this category receives
type TestKind int

const (
	TestNone TestKind = iota
	TestContinuous
	TestIndicator
)

// TestKind dispatches a target category to its test family
func (c Category) TestKind() TestKind {
	switch c {
	case CategoryLikert, CategoryRating, CategoryMatrix, CategorySemanticDifferential, CategoryRanking:
		return TestContinuous
	case CategoryRadio, CategoryCheckbox:
		return TestIndicator
	case CategorySegment, CategoryOpenEnded:
		return TestNone
	}
	return TestNone
}

// IsContinuous reports whether targets of this category get a difference-of-means test
func (c Category) IsContinuous() bool {
	return c.TestKind() == TestContinuous
}

// IsIndicator reports whether targets of this category get a selected/not-selected test
func (c Category) IsIndicator() bool {
	return c.TestKind() == TestIndicator
}

// ContinuousTargetOrder is the order continuous targets are evaluated in
var ContinuousTargetOrder = []Category{
	CategoryLikert,
	CategoryRating,
	CategoryMatrix,
	CategorySemanticDifferential,
	CategoryRanking,
}

// SourceOrder lists the categories whose columns can drive a segment split
var SourceOrder = []Category{
	CategoryLikert,
	CategoryRating,
	CategorySemanticDifferential,
	CategoryRanking,
}
