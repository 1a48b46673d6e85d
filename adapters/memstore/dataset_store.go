package memstore

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"surveyinsight/domain/core"
	"surveyinsight/domain/survey"
	"surveyinsight/internal/errors"
)

// DatasetStore is an in-memory ports.DatasetStore
type DatasetStore struct {
	mu       sync.RWMutex
	datasets map[core.DatasetID]*survey.DatasetRecord
}

// NewDatasetStore creates an empty store
func NewDatasetStore() *DatasetStore {
	return &DatasetStore{datasets: make(map[core.DatasetID]*survey.DatasetRecord)}
}

// Save inserts or replaces a record
func (s *DatasetStore) Save(ctx context.Context, record *survey.DatasetRecord) error {
	if record == nil || record.ID.IsEmpty() {
		return errors.InvalidInput("dataset record must have an ID")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[record.ID] = record
	return nil
}

// Get returns a record by ID
func (s *DatasetStore) Get(ctx context.Context, id core.DatasetID) (*survey.DatasetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	record, ok := s.datasets[id]
	if !ok {
		return nil, errors.NotFound(fmt.Sprintf("dataset %s", id))
	}
	return record, nil
}

// List returns all records, oldest upload first
func (s *DatasetStore) List(ctx context.Context) ([]*survey.DatasetRecord, error) {
	s.mu.RLock()
	out := make([]*survey.DatasetRecord, 0, len(s.datasets))
	for _, record := range s.datasets {
		out = append(out, record)
	}
	s.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].UploadedAt.Time().Equal(out[j].UploadedAt.Time()) {
			return out[i].ID < out[j].ID
		}
		return out[i].UploadedAt.Before(out[j].UploadedAt)
	})
	return out, nil
}

// Delete removes a record
func (s *DatasetStore) Delete(ctx context.Context, id core.DatasetID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return errors.NotFound(fmt.Sprintf("dataset %s", id))
	}
	delete(s.datasets, id)
	return nil
}
