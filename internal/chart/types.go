package chart

import (
	"encoding/json"
	"math"
)

// Type identifies a chart kind. The set is closed; every switch over Type in
// this package enumerates all members so a new kind forces a review.
type Type string

const (
	Bar           Type = "bar"
	HorizontalBar Type = "horizontalBar"
	Pie           Type = "pie"
	Donut         Type = "donut"
	Histogram     Type = "histogram"
	Box           Type = "box"
	GroupedBar    Type = "groupedBar"
	StackedBar    Type = "stackedBar"
	Scatter       Type = "scatter"
	Line          Type = "line"
	Correlation   Type = "correlation"
)

// AllTypes lists every chart kind in presentation order. Compatibility
// results preserve this order.
var AllTypes = []Type{
	Bar, HorizontalBar, Pie, Donut, Histogram, Box,
	GroupedBar, StackedBar, Scatter, Line, Correlation,
}

// ParseType maps a wire name to a Type.
func ParseType(s string) (Type, bool) {
	for _, t := range AllTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// Aggregation selects how a numeric column is folded per category.
type Aggregation string

const (
	AggSum     Aggregation = "sum"
	AggAverage Aggregation = "average"
)

// SortOrder controls series ordering. Scatter charts use the axis-qualified
// values; label-indexed charts use the value/label forms.
type SortOrder string

const (
	SortNone      SortOrder = "none"
	SortAsc       SortOrder = "asc"
	SortDesc      SortOrder = "desc"
	SortLabelAsc  SortOrder = "label-asc"
	SortLabelDesc SortOrder = "label-desc"
	SortXAsc      SortOrder = "x-asc"
	SortXDesc     SortOrder = "x-desc"
	SortYAsc      SortOrder = "y-asc"
	SortYDesc     SortOrder = "y-desc"
)

// Params are the user knobs applied by the series builder. FilterTop of zero
// means no truncation.
type Params struct {
	Aggregation Aggregation `json:"aggregationType,omitempty"`
	FilterTop   int         `json:"filterTop,omitempty"`
	SortOrder   SortOrder   `json:"sortOrder,omitempty"`
}

func (p Params) aggregation() Aggregation {
	if p.Aggregation == AggAverage {
		return AggAverage
	}
	return AggSum
}

func (p Params) sortOrder() SortOrder {
	if p.SortOrder == "" {
		return SortNone
	}
	return p.SortOrder
}

// Point is one scatter sample. Missing coordinates are carried as NaN and
// serialized as null so the rendering layer decides how to treat them.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

func (p Point) MarshalJSON() ([]byte, error) {
	type coord struct {
		X any `json:"x"`
		Y any `json:"y"`
	}
	c := coord{X: p.X, Y: p.Y}
	if math.IsNaN(p.X) {
		c.X = nil
	}
	if math.IsNaN(p.Y) {
		c.Y = nil
	}
	return json.Marshal(c)
}

// BoxStats is the five-number summary of a numeric column plus the sorted
// sample it was computed from.
type BoxStats struct {
	Min    float64   `json:"min"`
	Q1     float64   `json:"q1"`
	Median float64   `json:"median"`
	Q3     float64   `json:"q3"`
	Max    float64   `json:"max"`
	Values []float64 `json:"values"`
}

// CorrCell is one cell of a correlation matrix: the Pearson coefficient for
// the (X, Y) column pair.
type CorrCell struct {
	X string  `json:"x"`
	Y string  `json:"y"`
	V float64 `json:"v"`
}

// Dataset is one plotted series. Exactly one of Data, Points, Cells, or Box
// is populated depending on the chart kind.
type Dataset struct {
	Label  string     `json:"label,omitempty"`
	Data   []float64  `json:"data,omitempty"`
	Points []Point    `json:"points,omitempty"`
	Cells  []CorrCell `json:"cells,omitempty"`
	Box    *BoxStats  `json:"box,omitempty"`
	Color  string     `json:"backgroundColor,omitempty"`
	Colors []string   `json:"backgroundColors,omitempty"`
}

// Series is the chart-ready structure handed to a renderer. For label-indexed
// kinds every dataset's Data aligns index-for-index with Labels.
type Series struct {
	Labels   []string  `json:"labels,omitempty"`
	Datasets []Dataset `json:"datasets"`
}
