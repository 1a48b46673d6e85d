package excel

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"surveyinsight/domain/survey"
	"surveyinsight/internal/errors"
)

// DefaultSheet is read when a workbook reports no sheet list
const DefaultSheet = "Sheet1"

// missingTokens are cell values treated as a missing answer
var missingTokens = map[string]struct{}{
	"": {}, "#N/A": {}, "#N/A N/A": {}, "#NA": {}, "-1.#IND": {}, "-1.#QNAN": {},
	"-NaN": {}, "-nan": {}, "1.#IND": {}, "1.#QNAN": {}, "<NA>": {}, "N/A": {},
	"NA": {}, "NULL": {}, "NaN": {}, "None": {}, "n/a": {}, "nan": {}, "null": {},
}

// IsMissingToken reports whether a trimmed cell stands for a missing answer
func IsMissingToken(cell string) bool {
	_, ok := missingTokens[cell]
	return ok
}

// DataReader handles reading Excel and CSV survey exports
type DataReader struct {
	filePath string
	fileType string // "xlsx" or "csv"
}

// NewDataReader creates a new data reader that handles both Excel and CSV files
func NewDataReader(filePath string) *DataReader {
	return &DataReader{filePath: filePath, fileType: FileType(filePath)}
}

// FileType maps a file name to "csv", "xlsx" or "" when unsupported
func FileType(name string) string {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".csv":
		return "csv"
	case ".xlsx", ".xlsm":
		return "xlsx"
	}
	return ""
}

// ReadData reads the file into a dataset
func (r *DataReader) ReadData() (*survey.Dataset, error) {
	log.Printf("[DataReader] Starting to read %s file: %s", r.fileType, r.filePath)

	if r.fileType == "" {
		return nil, errors.UnsupportedFormat(filepath.Ext(r.filePath))
	}

	// Check if file exists
	if _, err := os.Stat(r.filePath); os.IsNotExist(err) {
		return nil, errors.NotFound(fmt.Sprintf("%s file %s", strings.ToUpper(r.fileType), r.filePath))
	}

	file, err := os.Open(r.filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s file: %w", r.fileType, err)
	}
	defer file.Close()

	return readByType(r.fileType, file)
}

// ReadUpload reads an uploaded file body, dispatching on the file name extension
func ReadUpload(name string, body io.Reader) (*survey.Dataset, error) {
	fileType := FileType(name)
	if fileType == "" {
		return nil, errors.UnsupportedFormat(filepath.Ext(name))
	}
	log.Printf("[DataReader] Reading uploaded %s file: %s", fileType, name)
	return readByType(fileType, body)
}

func readByType(fileType string, body io.Reader) (*survey.Dataset, error) {
	var (
		rows [][]string
		err  error
	)
	readStart := time.Now()
	switch fileType {
	case "csv":
		rows, err = readCSVRows(body)
	case "xlsx":
		rows, err = readExcelRows(body)
	default:
		return nil, errors.UnsupportedFormat(fileType)
	}
	if err != nil {
		return nil, err
	}
	log.Printf("[DataReader] %s read in %.2fms (%d rows)", strings.ToUpper(fileType), float64(time.Since(readStart).Nanoseconds())/1e6, len(rows))

	if len(rows) < 2 {
		return nil, errors.InvalidInput(fmt.Sprintf("%s file must have at least a header row and one data row", strings.ToUpper(fileType)))
	}

	return processRows(rows)
}

// readExcelRows reads the first sheet of a workbook
func readExcelRows(body io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(body)
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to open Excel file: %v", err))
	}
	defer f.Close()

	sheet := DefaultSheet
	if sheets := f.GetSheetList(); len(sheets) > 0 {
		sheet = sheets[0]
	}

	// Raw values keep number-formatted cells ("75%", "1,234") numeric
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", sheet, err)
	}
	return rows, nil
}

// readCSVRows reads CSV data, tolerating ragged rows and a UTF-8 byte order mark
func readCSVRows(body io.Reader) ([][]string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV file: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))

	reader := csv.NewReader(bytes.NewReader(data))
	reader.FieldsPerRecord = -1
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, errors.InvalidInput(fmt.Sprintf("failed to parse CSV file: %v", err))
	}
	return rows, nil
}

// processRows trims headers and cells and normalises missing tokens to empty cells
func processRows(rows [][]string) (*survey.Dataset, error) {
	headerRow := rows[0]
	headers := make([]string, len(headerRow))
	for i, header := range headerRow {
		headers[i] = strings.TrimSpace(header)
	}

	dataRows := make([][]string, 0, len(rows)-1)
	for i := 1; i < len(rows); i++ {
		row := make([]string, len(rows[i]))
		for j, cell := range rows[i] {
			cell = strings.TrimSpace(cell)
			if IsMissingToken(cell) {
				cell = ""
			}
			row[j] = cell
		}
		dataRows = append(dataRows, row)
	}

	ds, err := survey.NewDataset(headers, dataRows)
	if err != nil {
		return nil, errors.InvalidInput(err.Error())
	}

	log.Printf("[DataReader] dataset built (%d columns, %d rows)", ds.ColumnCount(), ds.RowCount())
	return ds, nil
}
