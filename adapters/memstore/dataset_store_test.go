package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyinsight/domain/core"
	"surveyinsight/domain/survey"
	"surveyinsight/internal/errors"
	"surveyinsight/ports"
)

var _ ports.DatasetStore = (*DatasetStore)(nil)

func record(t *testing.T, name string, at time.Time) *survey.DatasetRecord {
	t.Helper()
	ds, err := survey.NewDataset([]string{"likert_a"}, [][]string{{"1"}})
	require.NoError(t, err)
	return &survey.DatasetRecord{
		ID:             core.NewDatasetID(),
		Name:           name,
		UploadedAt:     core.NewTimestamp(at),
		Data:           ds,
		Classification: survey.NewClassification(),
	}
}

func TestDatasetStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	store := NewDatasetStore()
	now := time.Now()

	later := record(t, "later.csv", now.Add(time.Minute))
	earlier := record(t, "earlier.csv", now)
	require.NoError(t, store.Save(ctx, later))
	require.NoError(t, store.Save(ctx, earlier))

	got, err := store.Get(ctx, earlier.ID)
	require.NoError(t, err)
	assert.Same(t, earlier, got)

	list, err := store.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "earlier.csv", list[0].Name)
	assert.Equal(t, "later.csv", list[1].Name)

	require.NoError(t, store.Delete(ctx, earlier.ID))
	_, err = store.Get(ctx, earlier.ID)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(store.Delete(ctx, earlier.ID)))
}

func TestDatasetStore_RejectsRecordWithoutID(t *testing.T) {
	store := NewDatasetStore()

	err := store.Save(context.Background(), &survey.DatasetRecord{})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(store.Save(context.Background(), nil)))
}
