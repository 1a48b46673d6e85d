package segment

import (
	"fmt"
	"math"
	"strings"
	"unicode"

	"surveyinsight/domain/survey"
)

// RenderSummary formats the one-line statement for a significant pair.
// Direction is decided from the aggregates alone; a missing segment reads as zero.
func RenderSummary(source, target string, aggregates map[survey.Segment]float64, pValue float64, percentage bool) string {
	direction := "less likely to"
	if aggregates[survey.SegmentHigh] > aggregates[survey.SegmentLow] {
		direction = "more likely to"
	}

	unit := "score"
	if percentage {
		unit = "percentage"
	}

	return fmt.Sprintf("People who rate %s high are %s show higher %s (%s) (p = %.3f).",
		Prettify(source), direction, Prettify(target), unit, pValue)
}

// Prettify turns a column name into a display label: underscores become
// spaces, colons are dropped and every word is title-cased. A letter is
// upper-cased when it follows a non-letter, so "1st" becomes "1St".
func Prettify(column string) string {
	s := strings.ReplaceAll(column, "_", " ")
	s = strings.ReplaceAll(s, ":", "")

	var b strings.Builder
	b.Grow(len(s))
	prevCased := false
	for _, r := range s {
		cased := unicode.IsUpper(r) || unicode.IsLower(r) || unicode.IsTitle(r)
		switch {
		case cased && prevCased:
			b.WriteRune(unicode.ToLower(r))
		case cased:
			b.WriteRune(unicode.ToTitle(r))
		default:
			b.WriteRune(r)
		}
		prevCased = cased
	}
	return b.String()
}

// round2 rounds half to even at two decimals
func round2(v float64) float64 {
	return math.RoundToEven(v*100) / 100
}
