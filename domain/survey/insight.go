package survey

import (
	"encoding/json"
	"math"
)

// IndicatorCounts holds how many respondents in one segment did or did not select an option
type IndicatorCounts struct {
	Unselected int `json:"unselected"`
	Selected   int `json:"selected"`
}

// Total returns the segment size
func (c IndicatorCounts) Total() int {
	return c.Unselected + c.Selected
}

// ContingencyTable crosses the segment label with a selected indicator
type ContingencyTable struct {
	Low  IndicatorCounts `json:"low"`
	High IndicatorCounts `json:"high"`
}

// Add records one respondent
func (t *ContingencyTable) Add(seg Segment, selected bool) {
	counts := &t.High
	if seg == SegmentLow {
		counts = &t.Low
	}
	if selected {
		counts.Selected++
	} else {
		counts.Unselected++
	}
}

// IsComplete reports whether both segments and both indicator values were observed,
// i.e. the cross tabulation is a full 2x2 table
func (t ContingencyTable) IsComplete() bool {
	return t.Low.Total() > 0 && t.High.Total() > 0 &&
		t.Low.Selected+t.High.Selected > 0 &&
		t.Low.Unselected+t.High.Unselected > 0
}

// Matrix returns observed counts with rows Low, High and columns unselected, selected
func (t ContingencyTable) Matrix() [][]float64 {
	return [][]float64{
		{float64(t.Low.Unselected), float64(t.Low.Selected)},
		{float64(t.High.Unselected), float64(t.High.Selected)},
	}
}

// Insight is one significant source/target finding ready for display
type Insight struct {
	Summary    string              `json:"summary"`
	Source     string              `json:"source"`
	Target     string              `json:"target"`
	Category   Category            `json:"category"`
	Group      string              `json:"group,omitempty"`
	ChartType  ChartType           `json:"chart_type"`
	Test       string              `json:"test"`
	Statistic  float64             `json:"statistic"`
	PValue     float64             `json:"p_value"`
	Percentage bool                `json:"percentage"`
	Aggregates map[Segment]float64 `json:"aggregates"`

	// Boxplot insights carry the raw per-segment samples
	LowValues  []float64 `json:"low_values,omitempty"`
	HighValues []float64 `json:"high_values,omitempty"`

	// Bar insights carry the cross tabulation they were tested on
	Contingency *ContingencyTable `json:"contingency,omitempty"`
}

// MarshalJSON encodes a non-finite statistic as null. A perfectly separated
// Welch comparison has t = ±Inf.
func (i Insight) MarshalJSON() ([]byte, error) {
	type plain Insight
	var statistic *float64
	if !math.IsNaN(i.Statistic) && !math.IsInf(i.Statistic, 0) {
		v := i.Statistic
		statistic = &v
	}
	return json.Marshal(struct {
		plain
		Statistic *float64 `json:"statistic"`
	}{plain(i), statistic})
}

// HigherSegment returns the segment whose aggregate is larger; ties go to Low
func (i Insight) HigherSegment() Segment {
	if i.Aggregates[SegmentHigh] > i.Aggregates[SegmentLow] {
		return SegmentHigh
	}
	return SegmentLow
}
