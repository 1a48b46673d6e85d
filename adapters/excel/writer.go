package excel

import (
	"fmt"
	"io"
	"log"
	"math"
	"strconv"

	"github.com/xuri/excelize/v2"

	"surveyinsight/domain/survey"
)

// InsightSheet is the worksheet insight exports are written to
const InsightSheet = "Insights"

var insightHeader = []interface{}{
	"Source", "Target", "Category", "Group", "Chart", "Test", "Statistic", "P Value", "Low", "High", "Summary",
}

// InsightWriter exports insight records to an xlsx workbook
type InsightWriter struct{}

// NewInsightWriter creates a new insight writer
func NewInsightWriter() *InsightWriter {
	return &InsightWriter{}
}

// WriteFile saves the insights to path
func (w *InsightWriter) WriteFile(path string, insights []survey.Insight) error {
	f, err := w.build(insights)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save insight workbook: %w", err)
	}
	log.Printf("[InsightWriter] %d insights written to %s", len(insights), path)
	return nil
}

// Write streams the workbook to out
func (w *InsightWriter) Write(out io.Writer, insights []survey.Insight) error {
	f, err := w.build(insights)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(out); err != nil {
		return fmt.Errorf("failed to write insight workbook: %w", err)
	}
	return nil
}

func (w *InsightWriter) build(insights []survey.Insight) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(DefaultSheet, InsightSheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name insight sheet: %w", err)
	}

	if err := f.SetSheetRow(InsightSheet, "A1", &insightHeader); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to write header: %w", err)
	}
	if style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}}); err == nil {
		_ = f.SetRowStyle(InsightSheet, 1, 1, style)
	}

	for i, insight := range insights {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			f.Close()
			return nil, err
		}
		row := []interface{}{
			insight.Source,
			insight.Target,
			insight.Category.String(),
			insight.Group,
			string(insight.ChartType),
			insight.Test,
			statisticCell(insight.Statistic),
			insight.PValue,
			insight.Aggregates[survey.SegmentLow],
			insight.Aggregates[survey.SegmentHigh],
			insight.Summary,
		}
		if err := f.SetSheetRow(InsightSheet, cell, &row); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to write insight %d: %w", i, err)
		}
	}

	_ = f.SetColWidth(InsightSheet, "A", "B", 28)
	_ = f.SetColWidth(InsightSheet, "K", "K", 90)
	return f, nil
}

// statisticCell keeps infinite statistics readable; excelize writes numbers verbatim
func statisticCell(v float64) interface{} {
	if math.IsInf(v, 0) || math.IsNaN(v) {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return v
}
