package survey

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"surveyinsight/domain/core"
)

// Dataset is an immutable table of respondents (rows) by questions (columns).
// Cells are kept as text; an empty cell is a missing answer.
type Dataset struct {
	headers     []string
	index       map[string]int
	rows        [][]string
	fingerprint core.DatasetFingerprint
}

// NewDataset copies headers and rows into a Dataset. Rows shorter than the
// header are padded with missing cells, longer rows are truncated. Repeated
// header names are disambiguated as name.1, name.2, ...
func NewDataset(headers []string, rows [][]string) (*Dataset, error) {
	if len(headers) == 0 {
		return nil, fmt.Errorf("dataset must have at least one column")
	}

	ds := &Dataset{
		headers: make([]string, len(headers)),
		index:   make(map[string]int, len(headers)),
		rows:    make([][]string, len(rows)),
	}

	seen := make(map[string]int, len(headers))
	for i, h := range headers {
		name := h
		if n, dup := seen[h]; dup {
			for {
				name = fmt.Sprintf("%s.%d", h, n)
				n++
				if _, taken := ds.index[name]; !taken {
					break
				}
			}
			seen[h] = n
		} else {
			seen[h] = 1
		}
		ds.headers[i] = name
		ds.index[name] = i
	}

	for r, row := range rows {
		copied := make([]string, len(headers))
		copy(copied, row)
		ds.rows[r] = copied
	}

	ds.fingerprint = core.ComputeDatasetFingerprint(ds.headers, ds.rows)
	return ds, nil
}

// Headers returns the column names in file order
func (d *Dataset) Headers() []string {
	out := make([]string, len(d.headers))
	copy(out, d.headers)
	return out
}

// RowCount returns the number of respondents
func (d *Dataset) RowCount() int {
	return len(d.rows)
}

// ColumnCount returns the number of questions
func (d *Dataset) ColumnCount() int {
	return len(d.headers)
}

// HasColumn reports whether the named column exists
func (d *Dataset) HasColumn(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Fingerprint identifies the dataset content
func (d *Dataset) Fingerprint() core.DatasetFingerprint {
	return d.fingerprint
}

// Value returns the cell text and whether the answer is present
func (d *Dataset) Value(row int, column string) (string, bool) {
	idx, ok := d.index[column]
	if !ok || row < 0 || row >= len(d.rows) {
		return "", false
	}
	v := d.rows[row][idx]
	return v, v != ""
}

// Column returns a copy of the raw cells of a column
func (d *Dataset) Column(column string) ([]string, bool) {
	idx, ok := d.index[column]
	if !ok {
		return nil, false
	}
	out := make([]string, len(d.rows))
	for r, row := range d.rows {
		out[r] = row[idx]
	}
	return out, true
}

// NumericColumn coerces a column to numbers; unparseable and missing cells become NaN
func (d *Dataset) NumericColumn(column string) ([]float64, bool) {
	idx, ok := d.index[column]
	if !ok {
		return nil, false
	}
	out := make([]float64, len(d.rows))
	for r, row := range d.rows {
		out[r] = ParseNumeric(row[idx])
	}
	return out, true
}

// PresenceColumn reports, per row, whether the column was answered
func (d *Dataset) PresenceColumn(column string) ([]bool, bool) {
	idx, ok := d.index[column]
	if !ok {
		return nil, false
	}
	out := make([]bool, len(d.rows))
	for r, row := range d.rows {
		out[r] = row[idx] != ""
	}
	return out, true
}

// Head returns copies of the first n rows
func (d *Dataset) Head(n int) [][]string {
	if n > len(d.rows) {
		n = len(d.rows)
	}
	if n < 0 {
		n = 0
	}
	out := make([][]string, n)
	for i := 0; i < n; i++ {
		row := make([]string, len(d.rows[i]))
		copy(row, d.rows[i])
		out[i] = row
	}
	return out
}

// ParseNumeric converts a cell to float64, returning NaN when it is not a number
func ParseNumeric(cell string) float64 {
	s := strings.TrimSpace(cell)
	if s == "" {
		return math.NaN()
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
