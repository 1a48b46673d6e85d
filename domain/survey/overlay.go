package survey

import "math"

// IndicatorSuffix names derived selected/not-selected columns
const IndicatorSuffix = "_selected"

// Overlay is a per-source view over an immutable dataset that carries the
// derived segment label and indicator columns. Every source pass gets its own
// overlay, so concurrent passes never share derived state.
type Overlay struct {
	base       *Dataset
	source     string
	labels     []Segment
	indicators map[string][]bool
}

// NewOverlay attaches segment labels (one per row) to a dataset
func NewOverlay(base *Dataset, source string, labels []Segment) *Overlay {
	copied := make([]Segment, len(labels))
	copy(copied, labels)
	return &Overlay{
		base:       base,
		source:     source,
		labels:     copied,
		indicators: make(map[string][]bool),
	}
}

// Base returns the underlying dataset
func (o *Overlay) Base() *Dataset {
	return o.base
}

// Source returns the column the segment was derived from
func (o *Overlay) Source() string {
	return o.source
}

// Label returns the segment of one row
func (o *Overlay) Label(row int) Segment {
	return o.labels[row]
}

// Labels returns a copy of all row labels
func (o *Overlay) Labels() []Segment {
	out := make([]Segment, len(o.labels))
	copy(out, o.labels)
	return out
}

// IndicatorName returns the derived column name for a target
func IndicatorName(column string) string {
	return column + IndicatorSuffix
}

// Indicator derives (once) the selected flag of a column: answered means selected
func (o *Overlay) Indicator(column string) ([]bool, bool) {
	if cached, ok := o.indicators[column]; ok {
		return cached, true
	}
	presence, ok := o.base.PresenceColumn(column)
	if !ok {
		return nil, false
	}
	o.indicators[column] = presence
	return presence, true
}

// IndicatorColumns lists derived indicator column names in no particular order
func (o *Overlay) IndicatorColumns() []string {
	out := make([]string, 0, len(o.indicators))
	for col := range o.indicators {
		out = append(out, IndicatorName(col))
	}
	return out
}

// SplitNumeric coerces a column and splits its valid values by segment, dropping missing values per group
func (o *Overlay) SplitNumeric(column string) (low, high []float64, ok bool) {
	values, ok := o.base.NumericColumn(column)
	if !ok {
		return nil, nil, false
	}
	for row, v := range values {
		if math.IsNaN(v) {
			continue
		}
		if o.labels[row] == SegmentLow {
			low = append(low, v)
		} else {
			high = append(high, v)
		}
	}
	return low, high, true
}

// CrossTab builds the segment x indicator table for a column
func (o *Overlay) CrossTab(column string) (ContingencyTable, bool) {
	selected, ok := o.Indicator(column)
	if !ok {
		return ContingencyTable{}, false
	}
	var table ContingencyTable
	for row, sel := range selected {
		table.Add(o.labels[row], sel)
	}
	return table, true
}
