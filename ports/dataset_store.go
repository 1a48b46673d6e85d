package ports

import (
	"context"

	"surveyinsight/domain/core"
	"surveyinsight/domain/survey"
)

// DatasetStore holds uploaded datasets and their classifications
type DatasetStore interface {
	Save(ctx context.Context, record *survey.DatasetRecord) error
	Get(ctx context.Context, id core.DatasetID) (*survey.DatasetRecord, error)
	List(ctx context.Context) ([]*survey.DatasetRecord, error)
	Delete(ctx context.Context, id core.DatasetID) error
}
