package survey

import "surveyinsight/domain/core"

// DatasetRecord is an uploaded dataset with the classification derived for it
type DatasetRecord struct {
	ID             core.DatasetID
	Name           string
	UploadedAt     core.Timestamp
	Data           *Dataset
	Classification Classification
}

// DatasetSummary is the listing view of a record
type DatasetSummary struct {
	ID             core.DatasetID          `json:"id"`
	Name           string                  `json:"name"`
	UploadedAt     core.Timestamp          `json:"uploaded_at"`
	Rows           int                     `json:"rows"`
	Columns        int                     `json:"columns"`
	Fingerprint    core.DatasetFingerprint `json:"fingerprint"`
	CategoryCounts map[string]int          `json:"category_counts"`
}

// Summary returns the listing view
func (r *DatasetRecord) Summary() DatasetSummary {
	return DatasetSummary{
		ID:             r.ID,
		Name:           r.Name,
		UploadedAt:     r.UploadedAt,
		Rows:           r.Data.RowCount(),
		Columns:        r.Data.ColumnCount(),
		Fingerprint:    r.Data.Fingerprint(),
		CategoryCounts: r.Classification.Counts(),
	}
}
