package overview

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyinsight/domain/survey"
	"surveyinsight/internal/errors"
)

func fixture(t *testing.T) (*survey.Dataset, survey.Classification) {
	t.Helper()
	headers := []string{"segment_region", "likert_a", "likert_b", "checkbox_q1_opt_x", "checkbox_q1_opt_y", "rb_q2_a", "rank_price", "rank_speed", "sd_modern", "comment_free"}
	rows := [][]string{
		{"2", "1", "5", "Yes", "", "a", "2", "1", "-1", "great"},
		{"1", "2", "4", "", "", "", "1", "2", "2", ""},
		{"2", "3", "x", "Yes", "Yes", "a", "2", "1", "0", "ok"},
		{"1", "4", "4", "", "Yes", "", "1", "2", "1", "meh"},
		{"", "5", "", "Yes", "", "a", "2", "1", "1", "fine"},
		{"1", "", "2", "", "", "", "1", "2", "", "nice"},
		{"2", "6", "1", "Yes", "", "", "2", "1", "2", "cool"},
	}
	ds, err := survey.NewDataset(headers, rows)
	require.NoError(t, err)

	c := survey.NewClassification()
	c[survey.CategorySegment] = []string{"segment_region"}
	c[survey.CategoryLikert] = []string{"likert_a", "likert_b"}
	c[survey.CategoryCheckbox] = []string{"checkbox_q1_opt_x", "checkbox_q1_opt_y"}
	c[survey.CategoryRadio] = []string{"rb_q2_a"}
	c[survey.CategoryRanking] = []string{"rank_price", "rank_speed"}
	c[survey.CategorySemanticDifferential] = []string{"sd_modern"}
	c[survey.CategoryOpenEnded] = []string{"comment_free"}
	return ds, c
}

func TestBuild_Ungrouped(t *testing.T) {
	ds, c := fixture(t)

	ov, err := NewBuilder(nil).Build(ds, c, "")
	require.NoError(t, err)

	assert.Equal(t, 7, ov.Rows)
	assert.Equal(t, 10, ov.Columns)
	assert.Equal(t, 2, ov.Counts["likert"])

	require.Len(t, ov.Scales, 1)
	likert := ov.Scales[0]
	assert.Equal(t, survey.CategoryLikert, likert.Category)
	// likert_a mean 21/6 = 3.5, likert_b mean 16/5 = 3.2, sorted descending
	require.Len(t, likert.Columns, 2)
	assert.Equal(t, "likert_a", likert.Columns[0].Column)
	assert.InDelta(t, 3.5, likert.Columns[0].Mean, 1e-12)
	assert.Equal(t, 6, likert.Columns[0].Count)
	assert.InDelta(t, 3.2, likert.Columns[1].Mean, 1e-12)
	assert.Empty(t, likert.BySegment)

	require.Len(t, ov.Groups, 2)
	checkbox := ov.Groups[0]
	assert.Equal(t, "checkbox_q1_opt", checkbox.Prefix)
	assert.Equal(t, 4, checkbox.Columns[0].Selected)
	assert.InDelta(t, 400.0/7, checkbox.Columns[0].Percent, 1e-9)
	assert.Equal(t, "rb_q2", ov.Groups[1].Prefix)
	assert.Equal(t, survey.CategoryRadio, ov.Groups[1].Category)

	// rank_speed averages lower, so it ranks first
	require.Len(t, ov.Ranking, 2)
	assert.Equal(t, "rank_speed", ov.Ranking[0].Column)
	assert.Equal(t, "rank_price", ov.Ranking[1].Column)

	require.Len(t, ov.Semantic, 1)
	assert.InDelta(t, 5.0/6, ov.Semantic[0].Mean, 1e-12)

	require.Len(t, ov.OpenEnded, 1)
	assert.Equal(t, []string{"great", "ok", "meh", "fine", "nice"}, ov.OpenEnded[0].Responses)

	assert.Len(t, ov.Preview, 7)
	assert.Equal(t, ds.Headers(), ov.Headers)
}

func TestBuild_BySegment(t *testing.T) {
	ds, c := fixture(t)

	ov, err := NewBuilder(nil).Build(ds, c, "segment_region")
	require.NoError(t, err)
	assert.Equal(t, "segment_region", ov.Segment)

	likert := ov.Scales[0]
	// grouped columns keep classification order
	assert.Equal(t, "likert_a", likert.Columns[0].Column)
	require.Len(t, likert.BySegment, 2)

	one := likert.BySegment[0]
	assert.Equal(t, "1", one.Segment)
	assert.Equal(t, 3, one.Size)
	assert.InDelta(t, 3.0, one.Columns[0].Mean, 1e-12)
	assert.InDelta(t, 10.0/3, one.Columns[1].Mean, 1e-12)

	two := likert.BySegment[1]
	assert.Equal(t, "2", two.Segment)
	assert.InDelta(t, 10.0/3, two.Columns[0].Mean, 1e-12)
	assert.InDelta(t, 3.0, two.Columns[1].Mean, 1e-12)

	checkbox := ov.Groups[0]
	require.Len(t, checkbox.BySegment, 2)
	assert.Equal(t, 0.0, checkbox.BySegment[0].Columns[0].Percent)
	assert.Equal(t, 100.0, checkbox.BySegment[1].Columns[0].Percent)
}

func TestBuild_Errors(t *testing.T) {
	ds, c := fixture(t)
	b := NewBuilder(nil)

	_, err := b.Build(ds, c, "likert_a")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = b.Build(nil, c, "")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	c[survey.CategoryMatrix] = []string{"matrix_missing"}
	_, err = b.Build(ds, c, "")
	assert.Equal(t, errors.CodeClassificationInvalid, errors.GetCode(err))
}

func TestPartitionBy_LexicalWhenNotNumeric(t *testing.T) {
	ds, err := survey.NewDataset([]string{"segment_tier"}, [][]string{{"gold"}, {"bronze"}, {""}, {"silver"}, {"gold"}})
	require.NoError(t, err)

	groups := partitionBy(ds, "segment_tier")

	require.Len(t, groups, 3)
	assert.Equal(t, "bronze", groups[0].value)
	assert.Equal(t, "gold", groups[1].value)
	assert.Equal(t, []int{0, 4}, groups[1].rows)
	assert.Equal(t, "silver", groups[2].value)
}

func TestFormatPercent(t *testing.T) {
	assert.Equal(t, "57.1%", FormatPercent(400.0/7))
}
