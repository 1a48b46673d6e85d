package postgres

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"

	"surveyinsight/domain/core"
	"surveyinsight/domain/survey"
	"surveyinsight/internal/errors"
)

// Connect opens and pings a PostgreSQL database
func Connect(url string) (*sqlx.DB, error) {
	if url == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", url)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	return db, nil
}

// DatasetStore is a PostgreSQL ports.DatasetStore. Cells and the
// classification are kept as JSONB next to the listing columns.
type DatasetStore struct {
	db *sqlx.DB
}

// NewDatasetStore creates a store over an open connection
func NewDatasetStore(db *sqlx.DB) *DatasetStore {
	return &DatasetStore{db: db}
}

type datasetRow struct {
	ID             string    `db:"id"`
	Name           string    `db:"name"`
	UploadedAt     time.Time `db:"uploaded_at"`
	Headers        []byte    `db:"headers"`
	Cells          []byte    `db:"cells"`
	Classification []byte    `db:"classification"`
}

const selectDataset = `SELECT id, name, uploaded_at, headers, cells, classification FROM survey_datasets`

// Save inserts or replaces a record
func (s *DatasetStore) Save(ctx context.Context, record *survey.DatasetRecord) error {
	if record == nil || record.ID.IsEmpty() || record.Data == nil {
		return errors.InvalidInput("dataset record must have an ID and data")
	}

	headers, err := json.Marshal(record.Data.Headers())
	if err != nil {
		return fmt.Errorf("failed to marshal headers: %w", err)
	}
	cells, err := json.Marshal(record.Data.Head(record.Data.RowCount()))
	if err != nil {
		return fmt.Errorf("failed to marshal cells: %w", err)
	}
	classification, err := json.Marshal(record.Classification)
	if err != nil {
		return fmt.Errorf("failed to marshal classification: %w", err)
	}

	query := `INSERT INTO survey_datasets (id, name, uploaded_at, headers, cells, classification)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			uploaded_at = EXCLUDED.uploaded_at,
			headers = EXCLUDED.headers,
			cells = EXCLUDED.cells,
			classification = EXCLUDED.classification`

	uploadedAt := record.UploadedAt
	if uploadedAt.IsZero() {
		uploadedAt = core.Now()
	}

	_, err = s.db.ExecContext(ctx, query,
		record.ID.String(), record.Name, uploadedAt.Time(), headers, cells, classification,
	)
	if err != nil {
		return fmt.Errorf("failed to save dataset: %w", err)
	}
	return nil
}

// Get returns a record by ID
func (s *DatasetStore) Get(ctx context.Context, id core.DatasetID) (*survey.DatasetRecord, error) {
	var row datasetRow
	err := s.db.GetContext(ctx, &row, selectDataset+` WHERE id = $1`, id.String())
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.NotFound(fmt.Sprintf("dataset %s", id))
		}
		return nil, fmt.Errorf("failed to get dataset: %w", err)
	}
	return row.record()
}

// List returns all records, oldest upload first
func (s *DatasetStore) List(ctx context.Context) ([]*survey.DatasetRecord, error) {
	var rows []datasetRow
	if err := s.db.SelectContext(ctx, &rows, selectDataset+` ORDER BY uploaded_at, id`); err != nil {
		return nil, fmt.Errorf("failed to list datasets: %w", err)
	}

	out := make([]*survey.DatasetRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.record()
		if err != nil {
			return nil, err
		}
		out = append(out, record)
	}
	return out, nil
}

// Delete removes a record
func (s *DatasetStore) Delete(ctx context.Context, id core.DatasetID) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM survey_datasets WHERE id = $1`, id.String())
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete dataset: %w", err)
	}
	if affected == 0 {
		return errors.NotFound(fmt.Sprintf("dataset %s", id))
	}
	return nil
}

func (row datasetRow) record() (*survey.DatasetRecord, error) {
	id, err := core.ParseDatasetID(row.ID)
	if err != nil {
		return nil, fmt.Errorf("stored dataset has a bad id: %w", err)
	}

	var headers []string
	if err := json.Unmarshal(row.Headers, &headers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal headers of %s: %w", id, err)
	}
	var cells [][]string
	if err := json.Unmarshal(row.Cells, &cells); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cells of %s: %w", id, err)
	}
	var classification survey.Classification
	if err := json.Unmarshal(row.Classification, &classification); err != nil {
		return nil, fmt.Errorf("failed to unmarshal classification of %s: %w", id, err)
	}

	ds, err := survey.NewDataset(headers, cells)
	if err != nil {
		return nil, err
	}

	return &survey.DatasetRecord{
		ID:             id,
		Name:           row.Name,
		UploadedAt:     core.NewTimestamp(row.UploadedAt),
		Data:           ds,
		Classification: classification,
	}, nil
}
