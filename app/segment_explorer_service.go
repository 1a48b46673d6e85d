package app

import (
	"context"
	"fmt"
	"io"
	"strings"

	"surveyinsight/adapters/excel"
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

// SegmentExplorerService ties dataset loading, classification, the overview
// and the segment engine together for the HTTP surfaces and the CLI
type SegmentExplorerService struct {
	store      ports.DatasetStore
	classifier *classify.Classifier
	engine     *segment.Engine
	overview   *overview.Builder
	logger     *internal.Logger
}

// AnalyzeRequest selects what to analyse. An empty Source analyses every
// source; a nil Classification uses the one derived at upload.
type AnalyzeRequest struct {
	DatasetID      string
	Source         string
	Classification survey.Classification
}

// ServiceOption configures a SegmentExplorerService
type ServiceOption func(*SegmentExplorerService)

// WithLogger sets the service logger
func WithLogger(logger *internal.Logger) ServiceOption {
	return func(s *SegmentExplorerService) {
		s.logger = logger.WithComponent("SegmentExplorer")
	}
}

// NewSegmentExplorerService creates the service
func NewSegmentExplorerService(store ports.DatasetStore, classifier *classify.Classifier, engine *segment.Engine, builder *overview.Builder, options ...ServiceOption) *SegmentExplorerService {
	s := &SegmentExplorerService{
		store:      store,
		classifier: classifier,
		engine:     engine,
		overview:   builder,
		logger:     internal.NewDefaultLogger().WithComponent("SegmentExplorer"),
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

// Upload reads a CSV or XLSX body, classifies its columns and stores it
func (s *SegmentExplorerService) Upload(ctx context.Context, name string, body io.Reader) (*survey.DatasetRecord, error) {
	ds, err := excel.ReadUpload(name, body)
	if err != nil {
		return nil, err
	}
	return s.Import(ctx, name, ds)
}

// Import classifies and stores an already loaded dataset
func (s *SegmentExplorerService) Import(ctx context.Context, name string, ds *survey.Dataset) (*survey.DatasetRecord, error) {
	if ds == nil {
		return nil, errors.InvalidInput("dataset is required")
	}

	record := &survey.DatasetRecord{
		ID:             core.NewDatasetID(),
		Name:           name,
		UploadedAt:     core.Now(),
		Data:           ds,
		Classification: s.classifier.ClassifyDataset(ds),
	}
	if err := s.store.Save(ctx, record); err != nil {
		return nil, errors.Wrap(err, "failed to store dataset")
	}

	s.logger.Info("dataset %s (%s): %d rows, %d columns, %d classified", record.ID, name, ds.RowCount(), ds.ColumnCount(), len(record.Classification.Classified()))
	return record, nil
}

// List returns summaries of all stored datasets
func (s *SegmentExplorerService) List(ctx context.Context) ([]survey.DatasetSummary, error) {
	records, err := s.store.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]survey.DatasetSummary, 0, len(records))
	for _, record := range records {
		out = append(out, record.Summary())
	}
	return out, nil
}

// Get returns a stored dataset by its string ID
func (s *SegmentExplorerService) Get(ctx context.Context, id string) (*survey.DatasetRecord, error) {
	datasetID, err := core.ParseDatasetID(id)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}
	return s.store.Get(ctx, datasetID)
}

// Delete removes a stored dataset
func (s *SegmentExplorerService) Delete(ctx context.Context, id string) error {
	datasetID, err := core.ParseDatasetID(id)
	if err != nil {
		return errors.InvalidInput(err.Error())
	}
	return s.store.Delete(ctx, datasetID)
}

// Classification returns the classification derived at upload
func (s *SegmentExplorerService) Classification(ctx context.Context, id string) (survey.Classification, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return record.Classification, nil
}

// Overview computes descriptive numbers, optionally broken down by a segment column
func (s *SegmentExplorerService) Overview(ctx context.Context, id, segmentColumn string) (*overview.Overview, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.overview.Build(record.Data, record.Classification, strings.TrimSpace(segmentColumn))
}

// Analyze runs the segment engine over a stored dataset
func (s *SegmentExplorerService) Analyze(ctx context.Context, req AnalyzeRequest) (*segment.Result, error) {
	record, err := s.Get(ctx, req.DatasetID)
	if err != nil {
		return nil, err
	}

	classification := record.Classification
	if req.Classification != nil {
		classification = req.Classification
	}

	source := strings.TrimSpace(req.Source)
	if source == "" {
		return s.engine.Run(ctx, record.Data, classification)
	}
	return s.engine.RunSource(ctx, record.Data, classification, source)
}

// Report analyses a stored dataset and renders the insight report
func (s *SegmentExplorerService) Report(ctx context.Context, id string, format report.Format) ([]byte, error) {
	record, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	result, err := s.Analyze(ctx, AnalyzeRequest{DatasetID: id})
	if err != nil {
		return nil, err
	}
	return report.Render(format, fmt.Sprintf("Segment insights: %s", record.Name), result), nil
}
