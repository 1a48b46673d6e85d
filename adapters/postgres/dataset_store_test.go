package postgres

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"surveyinsight/domain/core"
	"surveyinsight/domain/survey"
	"surveyinsight/internal/errors"
)

func newMockStore(t *testing.T) (*DatasetStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewDatasetStore(sqlx.NewDb(db, "postgres")), mock
}

func sampleRecord(t *testing.T) *survey.DatasetRecord {
	t.Helper()
	ds, err := survey.NewDataset([]string{"likert_q1", "rating_q2"}, [][]string{{"1", "2"}, {"3", ""}})
	require.NoError(t, err)

	classification := survey.NewClassification()
	classification[survey.CategoryLikert] = []string{"likert_q1"}
	classification[survey.CategoryRating] = []string{"rating_q2"}

	return &survey.DatasetRecord{
		ID:             core.NewDatasetID(),
		Name:           "survey.csv",
		UploadedAt:     core.NewTimestamp(time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)),
		Data:           ds,
		Classification: classification,
	}
}

var datasetColumns = []string{"id", "name", "uploaded_at", "headers", "cells", "classification"}

func rowFor(t *testing.T, record *survey.DatasetRecord) []driver.Value {
	t.Helper()
	headers, err := json.Marshal(record.Data.Headers())
	require.NoError(t, err)
	cells, err := json.Marshal(record.Data.Head(record.Data.RowCount()))
	require.NoError(t, err)
	classification, err := json.Marshal(record.Classification)
	require.NoError(t, err)
	return []driver.Value{record.ID.String(), record.Name, record.UploadedAt.Time(), headers, cells, classification}
}

func TestSave(t *testing.T) {
	store, mock := newMockStore(t)
	record := sampleRecord(t)

	mock.ExpectExec(`INSERT INTO survey_datasets`).
		WithArgs(record.ID.String(), "survey.csv", record.UploadedAt.Time(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

// recentTime matches a non-zero timestamp argument
type recentTime struct{}

func (recentTime) Match(v driver.Value) bool {
	ts, ok := v.(time.Time)
	return ok && !ts.IsZero() && time.Since(ts) < time.Minute
}

func TestSave_StampsMissingUploadTime(t *testing.T) {
	store, mock := newMockStore(t)
	record := sampleRecord(t)
	record.UploadedAt = core.Timestamp{}

	mock.ExpectExec(`INSERT INTO survey_datasets`).
		WithArgs(record.ID.String(), "survey.csv", recentTime{}, sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, store.Save(context.Background(), record))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSave_RejectsIncompleteRecord(t *testing.T) {
	store, _ := newMockStore(t)

	err := store.Save(context.Background(), &survey.DatasetRecord{Name: "x"})
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestGet(t *testing.T) {
	store, mock := newMockStore(t)
	record := sampleRecord(t)

	mock.ExpectQuery(`SELECT id, name, uploaded_at, headers, cells, classification FROM survey_datasets WHERE id = \$1`).
		WithArgs(record.ID.String()).
		WillReturnRows(sqlmock.NewRows(datasetColumns).AddRow(rowFor(t, record)...))

	got, err := store.Get(context.Background(), record.ID)
	require.NoError(t, err)
	assert.Equal(t, record.ID, got.ID)
	assert.Equal(t, "survey.csv", got.Name)
	assert.Equal(t, record.Data.Fingerprint(), got.Data.Fingerprint())
	assert.Equal(t, []string{"rating_q2"}, got.Classification[survey.CategoryRating])
	assert.NoError(t, got.Classification.Validate())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGet_NotFound(t *testing.T) {
	store, mock := newMockStore(t)
	id := core.NewDatasetID()

	mock.ExpectQuery(`FROM survey_datasets WHERE id`).WithArgs(id.String()).WillReturnError(sql.ErrNoRows)

	_, err := store.Get(context.Background(), id)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
}

func TestList(t *testing.T) {
	store, mock := newMockStore(t)
	first, second := sampleRecord(t), sampleRecord(t)

	mock.ExpectQuery(`FROM survey_datasets ORDER BY uploaded_at, id`).
		WillReturnRows(sqlmock.NewRows(datasetColumns).AddRow(rowFor(t, first)...).AddRow(rowFor(t, second)...))

	records, err := store.List(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, first.ID, records[0].ID)
	assert.Equal(t, 2, records[1].Data.RowCount())
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDelete(t *testing.T) {
	store, mock := newMockStore(t)
	id := core.NewDatasetID()

	mock.ExpectExec(`DELETE FROM survey_datasets WHERE id = \$1`).WithArgs(id.String()).WillReturnResult(sqlmock.NewResult(0, 1))
	require.NoError(t, store.Delete(context.Background(), id))

	mock.ExpectExec(`DELETE FROM survey_datasets WHERE id = \$1`).WithArgs(id.String()).WillReturnResult(sqlmock.NewResult(0, 0))
	err := store.Delete(context.Background(), id)
	assert.Equal(t, errors.CodeNotFound, errors.GetCode(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestConnect_RequiresURL(t *testing.T) {
	_, err := Connect("")
	assert.Equal(t, errors.CodeConfigInvalid, errors.GetCode(err))
}
