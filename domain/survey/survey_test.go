package survey

import (
	"encoding/json"
	"math"
	"testing"

	"surveyinsight/domain/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCategoryDispatchIsExhaustive(t *testing.T) {
	for _, cat := range AllCategories {
		kind := cat.TestKind()
		switch cat {
		case CategoryLikert, CategoryRating, CategoryMatrix, CategorySemanticDifferential, CategoryRanking:
			assert.Equal(t, TestContinuous, kind, cat.String())
		case CategoryRadio, CategoryCheckbox:
			assert.Equal(t, TestIndicator, kind, cat.String())
		default:
			assert.Equal(t, TestNone, kind, cat.String())
		}
	}
}

func TestParseCategoryRoundTrip(t *testing.T) {
	for _, cat := range AllCategories {
		parsed, err := ParseCategory(cat.String())
		require.NoError(t, err)
		assert.Equal(t, cat, parsed)
	}

	alias, err := ParseCategory("Semantic_Differential")
	require.NoError(t, err)
	assert.Equal(t, CategorySemanticDifferential, alias)

	_, err = ParseCategory("sliders")
	assert.Error(t, err)
}

func TestClassificationJSONUsesCategoryKeys(t *testing.T) {
	c := NewClassification()
	c[CategoryLikert] = []string{"likert_trust"}

	raw, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"likert":["likert_trust"]`)

	var decoded Classification
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, []string{"likert_trust"}, decoded[CategoryLikert])
	assert.NoError(t, decoded.Validate())
}

func TestClassificationValidate(t *testing.T) {
	c := NewClassification()
	delete(c, CategoryRanking)
	err := c.Validate()
	require.Error(t, err)
	assert.True(t, core.IsClassificationError(err))
	assert.Contains(t, err.Error(), "ranking")

	c = NewClassification()
	c[CategoryLikert] = []string{"q1"}
	c[CategoryRating] = []string{"q1"}
	err = c.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "q1")
}

func TestClassificationValidateAgainstDataset(t *testing.T) {
	ds, err := NewDataset([]string{"likert_a"}, [][]string{{"1"}})
	require.NoError(t, err)

	c := NewClassification()
	c[CategoryLikert] = []string{"likert_a", "likert_missing"}
	err = c.ValidateAgainst(ds)
	require.Error(t, err)
	assert.True(t, core.IsClassificationError(err))
	assert.Contains(t, err.Error(), "likert_missing")
}

func TestDatasetCoercesAndPads(t *testing.T) {
	ds, err := NewDataset(
		[]string{"rating_x", "checkbox_a_b_1"},
		[][]string{{"4", "yes"}, {"n/a-text"}, {" 2.5 ", ""}},
	)
	require.NoError(t, err)
	assert.Equal(t, 3, ds.RowCount())

	nums, ok := ds.NumericColumn("rating_x")
	require.True(t, ok)
	assert.Equal(t, 4.0, nums[0])
	assert.True(t, math.IsNaN(nums[1]))
	assert.Equal(t, 2.5, nums[2])

	present, ok := ds.PresenceColumn("checkbox_a_b_1")
	require.True(t, ok)
	assert.Equal(t, []bool{true, false, false}, present)

	_, ok = ds.NumericColumn("nope")
	assert.False(t, ok)
}

func TestDatasetDisambiguatesDuplicateHeaders(t *testing.T) {
	ds, err := NewDataset([]string{"q", "q", "q"}, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"q", "q.1", "q.2"}, ds.Headers())
}

func TestDatasetFingerprintStable(t *testing.T) {
	a, _ := NewDataset([]string{"x"}, [][]string{{"1"}, {"2"}})
	b, _ := NewDataset([]string{"x"}, [][]string{{"1"}, {"2"}})
	assert.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestOverlayKeepsDerivedColumnsOffTheBase(t *testing.T) {
	ds, err := NewDataset([]string{"rb_q_1", "likert_a"}, [][]string{{"x", "1"}, {"", "5"}, {"y", ""}})
	require.NoError(t, err)

	labels := []Segment{SegmentLow, SegmentHigh, SegmentHigh}
	overlay := NewOverlay(ds, "likert_a", labels)
	labels[0] = SegmentHigh
	assert.Equal(t, SegmentLow, overlay.Label(0), "overlay must own its labels")

	table, ok := overlay.CrossTab("rb_q_1")
	require.True(t, ok)
	assert.Equal(t, IndicatorCounts{Unselected: 0, Selected: 1}, table.Low)
	assert.Equal(t, IndicatorCounts{Unselected: 1, Selected: 1}, table.High)
	assert.True(t, table.IsComplete(), "a zero cell still leaves both rows and both columns observed")

	assert.Equal(t, []string{"rb_q_1_selected"}, overlay.IndicatorColumns())
	assert.False(t, ds.HasColumn("rb_q_1_selected"))

	low, high, ok := overlay.SplitNumeric("likert_a")
	require.True(t, ok)
	assert.Equal(t, []float64{1}, low)
	assert.Equal(t, []float64{5}, high)
}

func TestContingencyCompleteness(t *testing.T) {
	var table ContingencyTable
	table.Add(SegmentLow, true)
	table.Add(SegmentHigh, true)
	assert.False(t, table.IsComplete(), "indicator never 0")

	table.Add(SegmentHigh, false)
	assert.True(t, table.IsComplete())
	assert.Equal(t, [][]float64{{0, 1}, {1, 1}}, table.Matrix())
}

func TestInsightHigherSegment(t *testing.T) {
	in := Insight{Aggregates: map[Segment]float64{SegmentLow: 3, SegmentHigh: 18}}
	assert.Equal(t, SegmentHigh, in.HigherSegment())
	in.Aggregates[SegmentHigh] = 3
	assert.Equal(t, SegmentLow, in.HigherSegment())
}

func TestInsightJSONNonFiniteStatistic(t *testing.T) {
	in := Insight{
		Source:     "rating_a",
		Target:     "likert_b",
		Category:   CategoryLikert,
		Statistic:  math.Inf(-1),
		PValue:     0,
		Aggregates: map[Segment]float64{SegmentLow: 1, SegmentHigh: 5},
	}

	encoded, err := json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"statistic":null`)
	assert.Contains(t, string(encoded), `"category":"likert"`)
	assert.Contains(t, string(encoded), `"p_value":0`)

	in.Statistic = 2.5
	encoded, err = json.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(encoded), `"statistic":2.5`)
}
