package segment

import (
	"encoding/json"
	"math"

	"github.com/montanaflynn/stats"

	"surveyinsight/domain/survey"
)

// SegmentSplit is the result of median-splitting one source column
type SegmentSplit struct {
	Column    string           `json:"column"`
	Median    float64          `json:"median"`
	Labels    []survey.Segment `json:"labels"`
	LowCount  int              `json:"low_count"`
	HighCount int              `json:"high_count"`
}

// MarshalJSON encodes a NaN median as null
func (s SegmentSplit) MarshalJSON() ([]byte, error) {
	type plain SegmentSplit
	var median *float64
	if !math.IsNaN(s.Median) {
		m := s.Median
		median = &m
	}
	return json.Marshal(struct {
		plain
		Median *float64 `json:"median"`
	}{plain(s), median})
}

// Split labels every row Low when its numeric value is strictly below the
// column median and High otherwise. Missing and non-numeric cells compare
// false against the median and therefore land in High; a column with no
// numeric values has a NaN median and is entirely High.
func Split(ds *survey.Dataset, column string) SegmentSplit {
	split := SegmentSplit{Column: column, Median: math.NaN()}

	values, ok := ds.NumericColumn(column)
	if !ok {
		values = make([]float64, ds.RowCount())
		for i := range values {
			values[i] = math.NaN()
		}
	}

	valid := make(stats.Float64Data, 0, len(values))
	for _, v := range values {
		if !math.IsNaN(v) {
			valid = append(valid, v)
		}
	}
	if len(valid) > 0 {
		if median, err := stats.Median(valid); err == nil {
			split.Median = median
		}
	}

	split.Labels = make([]survey.Segment, len(values))
	for i, v := range values {
		if v < split.Median {
			split.Labels[i] = survey.SegmentLow
			split.LowCount++
		} else {
			split.Labels[i] = survey.SegmentHigh
			split.HighCount++
		}
	}
	return split
}
