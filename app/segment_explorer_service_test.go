package app

import (
	"context"
	stderrors "errors"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"surveyinsight/adapters/memstore"
	"surveyinsight/domain/core"
	"surveyinsight/domain/survey"
	"surveyinsight/internal"
	"surveyinsight/internal/classify"
	"surveyinsight/internal/errors"
	"surveyinsight/internal/overview"
	"surveyinsight/internal/report"
	"surveyinsight/internal/segment"
	"surveyinsight/ports"
)

// MockDatasetStore is a testify mock of ports.DatasetStore
type MockDatasetStore struct {
	mock.Mock
}

func (m *MockDatasetStore) Save(ctx context.Context, record *survey.DatasetRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockDatasetStore) Get(ctx context.Context, id core.DatasetID) (*survey.DatasetRecord, error) {
	args := m.Called(ctx, id)
	record, _ := args.Get(0).(*survey.DatasetRecord)
	return record, args.Error(1)
}

func (m *MockDatasetStore) List(ctx context.Context) ([]*survey.DatasetRecord, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*survey.DatasetRecord), args.Error(1)
}

func (m *MockDatasetStore) Delete(ctx context.Context, id core.DatasetID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func newService(store *MockDatasetStore) *SegmentExplorerService {
	return newServiceWith(store)
}

func newServiceWith(store ports.DatasetStore) *SegmentExplorerService {
	engine := segment.NewEngine(segment.DefaultOptions(), segment.WithLogger(internal.NewLogger(internal.LogLevelError)))
	return NewSegmentExplorerService(store, classify.Default(), engine, overview.NewBuilder(nil), WithLogger(internal.NewLogger(internal.LogLevelError)))
}

func TestWithLogger_OverridesEnvironment(t *testing.T) {
	t.Setenv("LOG_LEVEL", "TRACE")

	s := NewSegmentExplorerService(memstore.NewDatasetStore(), classify.Default(), nil, nil)
	assert.Equal(t, internal.LogLevelTrace, s.logger.GetLevel())

	s = newServiceWith(memstore.NewDatasetStore())
	assert.Equal(t, internal.LogLevelError, s.logger.GetLevel())
}

// correlatedCSV has likert_a and rating_b rising together over 20 respondents
func correlatedCSV() string {
	var b strings.Builder
	b.WriteString("segment_group,likert_a,rating_b,checkbox_q1_opt_a,comment_text\n")
	for i := 1; i <= 20; i++ {
		sel := ""
		if i > 10 {
			sel = "Yes"
		}
		group := "A"
		if i%2 == 0 {
			group = "B"
		}
		b.WriteString(group + "," + strconv.Itoa(i) + "," + strconv.Itoa(i) + "," + sel + ",note " + strconv.Itoa(i) + "\n")
	}
	return b.String()
}

func TestUpload_ClassifiesAndStores(t *testing.T) {
	store := new(MockDatasetStore)
	store.On("Save", mock.Anything, mock.AnythingOfType("*survey.DatasetRecord")).Return(nil)
	svc := newService(store)

	record, err := svc.Upload(context.Background(), "survey.csv", strings.NewReader(correlatedCSV()))
	require.NoError(t, err)

	assert.False(t, record.ID.IsEmpty())
	assert.Equal(t, "survey.csv", record.Name)
	assert.Equal(t, 20, record.Data.RowCount())
	assert.Equal(t, []string{"likert_a"}, record.Classification[survey.CategoryLikert])
	assert.Equal(t, []string{"segment_group"}, record.Classification[survey.CategorySegment])
	store.AssertExpectations(t)
}

func TestUpload_StoreFailureIsWrapped(t *testing.T) {
	store := new(MockDatasetStore)
	store.On("Save", mock.Anything, mock.Anything).Return(stderrors.New("disk full"))
	svc := newService(store)

	_, err := svc.Upload(context.Background(), "survey.csv", strings.NewReader(correlatedCSV()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to store dataset")
}

func TestUpload_RejectsUnsupportedFormat(t *testing.T) {
	svc := newService(new(MockDatasetStore))

	_, err := svc.Upload(context.Background(), "survey.json", strings.NewReader("{}"))
	assert.Equal(t, errors.CodeUnsupportedFormat, errors.GetCode(err))
}

func TestGet_InvalidAndMissingIDs(t *testing.T) {
	store := new(MockDatasetStore)
	id := core.NewDatasetID()
	store.On("Get", mock.Anything, id).Return(nil, errors.NotFound("dataset"))
	svc := newService(store)

	_, err := svc.Get(context.Background(), "not-a-uuid")
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))

	_, err = svc.Get(context.Background(), id.String())
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	store.AssertExpectations(t)
}

func TestAnalyzeAndReport(t *testing.T) {
	svc := newServiceWith(memstore.NewDatasetStore())
	ctx := context.Background()

	record, err := svc.Upload(ctx, "survey.csv", strings.NewReader(correlatedCSV()))
	require.NoError(t, err)
	id := record.ID.String()

	result, err := svc.Analyze(ctx, AnalyzeRequest{DatasetID: id})
	require.NoError(t, err)
	require.Len(t, result.Insights, 4)
	assert.Equal(t, "rating_b", result.Insights[0].Target)
	assert.Equal(t, "checkbox_q1_opt_a", result.Insights[1].Target)
	assert.Equal(t, "rating_b", result.Insights[2].Source)

	single, err := svc.Analyze(ctx, AnalyzeRequest{DatasetID: id, Source: "rating_b"})
	require.NoError(t, err)
	assert.Len(t, single.Insights, 2)

	override := survey.NewClassification()
	override[survey.CategoryLikert] = []string{"likert_a"}
	override[survey.CategoryLikert] = append(override[survey.CategoryLikert], "rating_b")
	overridden, err := svc.Analyze(ctx, AnalyzeRequest{DatasetID: id, Classification: override})
	require.NoError(t, err)
	assert.Len(t, overridden.Insights, 2)

	bad := survey.Classification{survey.CategoryLikert: {"likert_a"}}
	_, err = svc.Analyze(ctx, AnalyzeRequest{DatasetID: id, Classification: bad})
	assert.Equal(t, errors.CodeClassificationInvalid, errors.GetCode(err))

	md, err := svc.Report(ctx, id, report.FormatMarkdown)
	require.NoError(t, err)
	assert.Contains(t, string(md), "# Segment insights: survey.csv")
	assert.Contains(t, string(md), "People who rate Likert A high are more likely to show higher Rating B (score)")

	page, err := svc.Report(ctx, id, report.FormatHTML)
	require.NoError(t, err)
	assert.Contains(t, string(page), "<html")
}

func TestOverviewListAndDelete(t *testing.T) {
	svc := newServiceWith(memstore.NewDatasetStore())
	ctx := context.Background()

	record, err := svc.Upload(ctx, "survey.csv", strings.NewReader(correlatedCSV()))
	require.NoError(t, err)
	id := record.ID.String()

	ov, err := svc.Overview(ctx, id, " segment_group ")
	require.NoError(t, err)
	assert.Equal(t, "segment_group", ov.Segment)
	require.NotEmpty(t, ov.Scales)
	assert.Len(t, ov.Scales[0].BySegment, 2)
	require.Len(t, ov.OpenEnded, 1)
	assert.Len(t, ov.OpenEnded[0].Responses, 5)

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, 20, list[0].Rows)

	c, err := svc.Classification(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, []string{"rating_b"}, c[survey.CategoryRating])

	require.NoError(t, svc.Delete(ctx, id))
	_, err = svc.Get(ctx, id)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}
