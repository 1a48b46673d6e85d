package survey

// Segment is the Low/High label derived from a median split
type Segment string

const (
	SegmentLow  Segment = "Low"
	SegmentHigh Segment = "High"
)

// Segments lists both labels in display order
var Segments = []Segment{SegmentLow, SegmentHigh}

// ChartType tells the presentation layer how to draw an insight
type ChartType string

const (
	ChartBoxplot ChartType = "boxplot"
	ChartBar     ChartType = "bar"
)
