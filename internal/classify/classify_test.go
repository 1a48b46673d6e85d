package classify

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyinsight/domain/survey"
	"surveyinsight/internal"
	"surveyinsight/internal/errors"
)

func TestClassify_DefaultRules(t *testing.T) {
	columns := []string{
		"Segment_Region",
		"likert_q1_satisfaction",
		"NPS_overall",
		"rating_support",
		"matrix_q4_speed",
		"rb_q5_a",
		"checkbox_q6_brand_x",
		"rank_q7_price",
		"sd_q8_modern",
		"comment_anything",
		"respondent_id",
	}

	c := Default().Classify(columns)

	require.NoError(t, c.Validate())
	assert.Equal(t, []string{"Segment_Region"}, c[survey.CategorySegment])
	assert.Equal(t, []string{"likert_q1_satisfaction"}, c[survey.CategoryLikert])
	assert.Equal(t, []string{"NPS_overall", "rating_support"}, c[survey.CategoryRating])
	assert.Equal(t, []string{"matrix_q4_speed"}, c[survey.CategoryMatrix])
	assert.Equal(t, []string{"rb_q5_a"}, c[survey.CategoryRadio])
	assert.Equal(t, []string{"checkbox_q6_brand_x"}, c[survey.CategoryCheckbox])
	assert.Equal(t, []string{"rank_q7_price"}, c[survey.CategoryRanking])
	assert.Equal(t, []string{"sd_q8_modern"}, c[survey.CategorySemanticDifferential])
	assert.Equal(t, []string{"comment_anything"}, c[survey.CategoryOpenEnded])

	_, ok := c.CategoryOf("respondent_id")
	assert.False(t, ok)
}

func TestClassify_FirstMatchWins(t *testing.T) {
	cl := Default()

	// contains both segment_ and likert_
	cat, ok := cl.CategoryFor("likert_segment_q1")
	require.True(t, ok)
	assert.Equal(t, survey.CategorySegment, cat)

	// substring, not prefix
	cat, ok = cl.CategoryFor("q9_feedback_text")
	require.True(t, ok)
	assert.Equal(t, survey.CategoryOpenEnded, cat)
}

func TestClassify_EmptyInputHasAllKeys(t *testing.T) {
	c := Default().Classify(nil)

	assert.Len(t, c, len(survey.AllCategories))
	assert.NoError(t, c.Validate())
}

func TestParseRules(t *testing.T) {
	set, err := ParseRules([]byte(`
rules:
  - category: likert
    patterns: ["AGREE_"]
  - category: checkbox
    patterns: ["multi_"]
groups:
  checkbox: 2
`))
	require.NoError(t, err)

	require.Len(t, set.Rules, 2)
	assert.Equal(t, survey.CategoryLikert, set.Rules[0].Category)
	assert.Equal(t, 2, set.GroupRules[0].PrefixTokens)
	assert.Equal(t, 2, set.GroupRules[1].PrefixTokens)

	c := New(set.Rules).Classify([]string{"agree_q1", "multi_q2_a", "likert_q3"})
	assert.Equal(t, []string{"agree_q1"}, c[survey.CategoryLikert])
	assert.Equal(t, []string{"multi_q2_a"}, c[survey.CategoryCheckbox])
}

func TestParseRules_Invalid(t *testing.T) {
	cases := map[string]string{
		"bad yaml":      "rules: [",
		"unknown cat":   "rules:\n  - category: bogus\n    patterns: [x_]\n",
		"no patterns":   "rules:\n  - category: likert\n",
		"ungrouped":     "groups:\n  likert: 2\n",
		"zero tokens":   "groups:\n  radio: 0\n",
		"unknown group": "groups:\n  nope: 2\n",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseRules([]byte(doc))
			require.Error(t, err)
			assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
		})
	}
}

func TestLoadRules(t *testing.T) {
	set, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), set.Rules)

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("groups:\n  radio: 3\n"), 0o600))

	set, err = LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultRules(), set.Rules)
	assert.Equal(t, 3, set.GroupRules[1].PrefixTokens)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestNew_WithLogger(t *testing.T) {
	t.Setenv("LOG_LEVEL", "TRACE")

	assert.Equal(t, internal.LogLevelTrace, Default().logger.GetLevel())
	c := New(DefaultRules(), WithLogger(internal.NewLogger(internal.LogLevelWarn)))
	assert.Equal(t, internal.LogLevelWarn, c.logger.GetLevel())
}
