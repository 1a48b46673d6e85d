package metrics

import (
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyinsight/internal/segment"
)

func TestRecorder_Counts(t *testing.T) {
	r := NewRecorder()

	r.ObserveSkip(segment.Skip{Source: "likert_a", Target: "likert_a", Reason: segment.SkipSelfComparison})
	r.ObserveSkip(segment.Skip{Source: "likert_a", Target: "rating_b", Reason: segment.SkipNotSignificant, PValue: 0.4})
	r.ObserveSkip(segment.Skip{Source: "likert_a", Target: "radio_c", Reason: segment.SkipNotSignificant, PValue: 0.9})
	r.ObserveRun(&segment.Result{Stats: segment.RunStats{PairsTested: 6, Insights: 2, Duration: 40 * time.Millisecond}})
	r.ObserveRun(nil)

	assert.Equal(t, 1.0, testutil.ToFloat64(r.runs))
	assert.Equal(t, 6.0, testutil.ToFloat64(r.pairs))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.insights))
	assert.Equal(t, 2.0, testutil.ToFloat64(r.skips.WithLabelValues("not_significant")))
	assert.Equal(t, 1.0, testutil.ToFloat64(r.skips.WithLabelValues("self_comparison")))
	assert.Equal(t, 1, testutil.CollectAndCount(r.runDuration))
}

func TestRecorder_SeparateRegistries(t *testing.T) {
	a, b := NewRecorder(), NewRecorder()
	a.ObserveRun(&segment.Result{})

	assert.Equal(t, 1.0, testutil.ToFloat64(a.runs))
	assert.Equal(t, 0.0, testutil.ToFloat64(b.runs))
	assert.NotSame(t, a.Registry(), b.Registry())
}

func TestRecorder_Handler(t *testing.T) {
	r := NewRecorder()
	r.ObserveRun(&segment.Result{Stats: segment.RunStats{PairsTested: 3}})

	rec := httptest.NewRecorder()
	r.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)

	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "surveyinsight_analysis_runs_total 1")
	assert.Contains(t, string(body), "surveyinsight_analysis_pairs_total 3")
}
