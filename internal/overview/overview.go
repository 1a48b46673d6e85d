// Package overview computes the descriptive numbers behind the upload and
// overview screen: scale means, multi-select shares, ranking and
// semantic-differential averages, open-ended samples and a raw preview.
package overview

import (
	"fmt"
	"math"
	"sort"
	"strconv"

	"github.com/montanaflynn/stats"

	"surveyinsight/domain/survey"
	"surveyinsight/internal/errors"
	"surveyinsight/internal/segment"
)

const (
	DefaultPreviewRows      = 20
	DefaultOpenEndedSamples = 5
)

// ColumnStat is the average of one numeric column. Count is the number of
// numeric answers; Mean is zero when Count is zero.
type ColumnStat struct {
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
	Count  int     `json:"count"`
}

// SegmentMeans holds column averages for respondents sharing one segment value
type SegmentMeans struct {
	Segment string       `json:"segment"`
	Size    int          `json:"size"`
	Columns []ColumnStat `json:"columns"`
}

// ScaleSummary averages the columns of a scale category
type ScaleSummary struct {
	Category  survey.Category `json:"category"`
	Columns   []ColumnStat    `json:"columns"`
	BySegment []SegmentMeans  `json:"by_segment,omitempty"`
}

// ShareStat is the percentage of respondents who answered a column
type ShareStat struct {
	Column   string  `json:"column"`
	Selected int     `json:"selected"`
	Percent  float64 `json:"percent"`
}

// SegmentShares holds shares for respondents sharing one segment value
type SegmentShares struct {
	Segment string      `json:"segment"`
	Size    int         `json:"size"`
	Columns []ShareStat `json:"columns"`
}

// GroupShares summarises one checkbox or radio question group
type GroupShares struct {
	Category  survey.Category `json:"category"`
	Prefix    string          `json:"prefix"`
	Columns   []ShareStat     `json:"columns"`
	BySegment []SegmentShares `json:"by_segment,omitempty"`
}

// OpenEndedSample lists the first free-text answers of a column
type OpenEndedSample struct {
	Column    string   `json:"column"`
	Responses []string `json:"responses"`
}

// Overview is the full descriptive summary of a dataset
type Overview struct {
	Rows      int               `json:"rows"`
	Columns   int               `json:"columns"`
	Counts    map[string]int    `json:"category_counts"`
	Segment   string            `json:"segment,omitempty"`
	Scales    []ScaleSummary    `json:"scales"`
	Groups    []GroupShares     `json:"groups"`
	Ranking   []ColumnStat      `json:"ranking"`
	Semantic  []ColumnStat      `json:"semantic"`
	OpenEnded []OpenEndedSample `json:"open_ended"`
	Headers   []string          `json:"headers"`
	Preview   [][]string        `json:"preview"`
}

// Builder computes overviews
type Builder struct {
	groupRules       []segment.GroupRule
	previewRows      int
	openEndedSamples int
}

// NewBuilder creates a builder using the given group conventions
func NewBuilder(groupRules []segment.GroupRule) *Builder {
	if len(groupRules) == 0 {
		groupRules = segment.DefaultGroupRules()
	}
	return &Builder{
		groupRules:       groupRules,
		previewRows:      DefaultPreviewRows,
		openEndedSamples: DefaultOpenEndedSamples,
	}
}

var scaleCategories = []survey.Category{survey.CategoryLikert, survey.CategoryRating, survey.CategoryMatrix}

// Build summarises the dataset. segmentColumn is optional; when set it must be
// a column of the segments category and breaks scales and shares down by its values.
func (b *Builder) Build(ds *survey.Dataset, classification survey.Classification, segmentColumn string) (*Overview, error) {
	if ds == nil {
		return nil, errors.InvalidInput("dataset is required")
	}
	if err := classification.ValidateAgainst(ds); err != nil {
		return nil, errors.WithCode(errors.CodeClassificationInvalid, err)
	}

	var partition []segmentRows
	if segmentColumn != "" {
		if cat, ok := classification.CategoryOf(segmentColumn); !ok || cat != survey.CategorySegment {
			return nil, errors.InvalidInput(fmt.Sprintf("%q is not a segment column", segmentColumn))
		}
		partition = partitionBy(ds, segmentColumn)
	}

	ov := &Overview{
		Rows:    ds.RowCount(),
		Columns: ds.ColumnCount(),
		Counts:  classification.Counts(),
		Segment: segmentColumn,
		Headers: ds.Headers(),
		Preview: ds.Head(b.previewRows),
	}

	for _, cat := range scaleCategories {
		cols := classification.Columns(cat)
		if len(cols) == 0 {
			continue
		}
		ov.Scales = append(ov.Scales, scaleSummary(ds, cat, cols, segmentColumn != "", partition))
	}

	for _, rule := range b.groupRules {
		for _, group := range segment.ResolveGroups(classification.Columns(rule.Category), rule.PrefixTokens) {
			ov.Groups = append(ov.Groups, groupShares(ds, rule.Category, group, partition))
		}
	}

	ov.Ranking = sortedAscending(columnMeans(ds, classification.Columns(survey.CategoryRanking), nil))
	ov.Semantic = sortedAscending(columnMeans(ds, classification.Columns(survey.CategorySemanticDifferential), nil))

	for _, col := range classification.Columns(survey.CategoryOpenEnded) {
		ov.OpenEnded = append(ov.OpenEnded, b.openEnded(ds, col))
	}

	return ov, nil
}

// segmentRows is the set of rows sharing one segment value
type segmentRows struct {
	value string
	rows  []int
}

// partitionBy groups rows by the answer in column; unanswered rows belong to no group.
// Groups are ordered numerically when every value is a number, lexically otherwise.
func partitionBy(ds *survey.Dataset, column string) []segmentRows {
	index := make(map[string]int)
	var groups []segmentRows
	for r := 0; r < ds.RowCount(); r++ {
		v, ok := ds.Value(r, column)
		if !ok {
			continue
		}
		i, seen := index[v]
		if !seen {
			i = len(groups)
			index[v] = i
			groups = append(groups, segmentRows{value: v})
		}
		groups[i].rows = append(groups[i].rows, r)
	}

	numeric := true
	for _, g := range groups {
		if math.IsNaN(survey.ParseNumeric(g.value)) {
			numeric = false
			break
		}
	}
	sort.SliceStable(groups, func(i, j int) bool {
		if numeric {
			return survey.ParseNumeric(groups[i].value) < survey.ParseNumeric(groups[j].value)
		}
		return groups[i].value < groups[j].value
	})
	return groups
}

func scaleSummary(ds *survey.Dataset, cat survey.Category, cols []string, grouped bool, partition []segmentRows) ScaleSummary {
	summary := ScaleSummary{Category: cat}
	if !grouped {
		summary.Columns = sortedDescending(columnMeans(ds, cols, nil))
		return summary
	}

	summary.Columns = columnMeans(ds, cols, nil)
	for _, seg := range partition {
		summary.BySegment = append(summary.BySegment, SegmentMeans{
			Segment: seg.value,
			Size:    len(seg.rows),
			Columns: columnMeans(ds, cols, seg.rows),
		})
	}
	return summary
}

// columnMeans averages each column over rows (all rows when nil)
func columnMeans(ds *survey.Dataset, cols []string, rows []int) []ColumnStat {
	out := make([]ColumnStat, 0, len(cols))
	for _, col := range cols {
		values, _ := ds.NumericColumn(col)
		var valid stats.Float64Data
		visit(rows, len(values), func(r int) {
			if !math.IsNaN(values[r]) {
				valid = append(valid, values[r])
			}
		})

		stat := ColumnStat{Column: col, Count: len(valid)}
		if mean, err := stats.Mean(valid); err == nil {
			stat.Mean = mean
		}
		out = append(out, stat)
	}
	return out
}

func groupShares(ds *survey.Dataset, cat survey.Category, group segment.Group, partition []segmentRows) GroupShares {
	shares := GroupShares{
		Category: cat,
		Prefix:   group.Prefix,
		Columns:  columnShares(ds, group.Columns, nil),
	}
	for _, seg := range partition {
		shares.BySegment = append(shares.BySegment, SegmentShares{
			Segment: seg.value,
			Size:    len(seg.rows),
			Columns: columnShares(ds, group.Columns, seg.rows),
		})
	}
	return shares
}

func columnShares(ds *survey.Dataset, cols []string, rows []int) []ShareStat {
	out := make([]ShareStat, 0, len(cols))
	for _, col := range cols {
		present, _ := ds.PresenceColumn(col)
		selected, total := 0, 0
		visit(rows, len(present), func(r int) {
			total++
			if present[r] {
				selected++
			}
		})

		stat := ShareStat{Column: col, Selected: selected}
		if total > 0 {
			stat.Percent = float64(selected) / float64(total) * 100
		}
		out = append(out, stat)
	}
	return out
}

func (b *Builder) openEnded(ds *survey.Dataset, col string) OpenEndedSample {
	sample := OpenEndedSample{Column: col, Responses: []string{}}
	for r := 0; r < ds.RowCount() && len(sample.Responses) < b.openEndedSamples; r++ {
		if v, ok := ds.Value(r, col); ok {
			sample.Responses = append(sample.Responses, v)
		}
	}
	return sample
}

// visit calls fn for each listed row, or every row when rows is nil
func visit(rows []int, n int, fn func(r int)) {
	if rows == nil {
		for r := 0; r < n; r++ {
			fn(r)
		}
		return
	}
	for _, r := range rows {
		fn(r)
	}
}

func sortedDescending(in []ColumnStat) []ColumnStat {
	sort.SliceStable(in, func(i, j int) bool { return in[i].Mean > in[j].Mean })
	return in
}

func sortedAscending(in []ColumnStat) []ColumnStat {
	sort.SliceStable(in, func(i, j int) bool { return in[i].Mean < in[j].Mean })
	return in
}

// FormatPercent renders a share the way the overview charts label bars
func FormatPercent(p float64) string {
	return strconv.FormatFloat(p, 'f', 1, 64) + "%"
}
