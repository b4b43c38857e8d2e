package dataset

import (
	"strconv"
	"strings"
)

// ColumnGroup is the semantic category of a column. Chart compatibility and
// series derivation dispatch on this, so the set is closed.
type ColumnGroup int

const (
	GroupNumerical ColumnGroup = iota
	GroupBoolean
	GroupCategorical
	GroupDateTime
)

// String returns the wire name of the group as the analysis metadata uses it.
func (g ColumnGroup) String() string {
	switch g {
	case GroupNumerical:
		return "Numerical"
	case GroupBoolean:
		return "Boolean"
	case GroupCategorical:
		return "Categorical"
	case GroupDateTime:
		return "Date/Time"
	default:
		return "Categorical"
	}
}

// ParseGroup maps a wire group name back to a ColumnGroup.
func ParseGroup(s string) (ColumnGroup, bool) {
	switch s {
	case "Numerical":
		return GroupNumerical, true
	case "Boolean":
		return GroupBoolean, true
	case "Categorical":
		return GroupCategorical, true
	case "Date/Time":
		return GroupDateTime, true
	default:
		return GroupCategorical, false
	}
}

// Descriptor is a column as supplied by a metadata source: a dtype plus an
// optional pre-assigned group.
type Descriptor struct {
	Name  string `json:"name"`
	Dtype string `json:"dtype"`
	Group string `json:"group,omitempty"`
}

// Column is a classified column. Immutable for the life of a dataset.
type Column struct {
	Name  string      `json:"name"`
	Dtype string      `json:"dtype"`
	Group ColumnGroup `json:"-"`
}

// Classify maps raw descriptors to classified columns.
//
// A boolean dtype, or a descriptor that arrives without a group, is forced to
// the Boolean group; anything else keeps the group it was given. Boolean is
// tracked separately from Categorical for display grouping, but counts as
// categorical for bar/pie compatibility. Malformed input degrades to an empty
// result, never an error.
func Classify(raw []Descriptor) []Column {
	if len(raw) == 0 {
		return nil
	}
	cols := make([]Column, 0, len(raw))
	for _, d := range raw {
		if d.Name == "" {
			continue
		}
		c := Column{Name: d.Name, Dtype: d.Dtype}
		if isBoolDtype(d.Dtype) || d.Group == "" {
			c.Group = GroupBoolean
		} else {
			g, ok := ParseGroup(d.Group)
			if !ok {
				g = GroupCategorical
			}
			c.Group = g
		}
		cols = append(cols, c)
	}
	return cols
}

func isBoolDtype(dtype string) bool {
	return strings.Contains(strings.ToLower(dtype), "bool")
}

// Row maps column names to scalar cell values: float64, string, bool, or nil.
type Row map[string]any

// Dataset is the classified columns plus the full rows and a bounded preview.
// Both row collections are row-shaped identically; consumers prefer the full
// set when it is non-empty.
type Dataset struct {
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows,omitempty"`
	Preview []Row    `json:"preview,omitempty"`
}

// Source returns the rows to derive series from: the full dataset when
// present, otherwise the preview.
func (d *Dataset) Source() []Row {
	if len(d.Rows) > 0 {
		return d.Rows
	}
	return d.Preview
}

// Column looks up a classified column by name.
func (d *Dataset) Column(name string) (Column, bool) {
	for _, c := range d.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Names returns the names of all columns in the given group, in column order.
func (d *Dataset) Names(g ColumnGroup) []string {
	var out []string
	for _, c := range d.Columns {
		if c.Group == g {
			out = append(out, c.Name)
		}
	}
	return out
}

// AsNumber coerces a cell value to a float64. Nil cells, booleans, and
// non-numeric strings report false rather than panicking or guessing.
func AsNumber(v any) (float64, bool) {
	switch x := v.(type) {
	case nil:
		return 0, false
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int32:
		return float64(x), true
	case int64:
		return float64(x), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(x), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// AsLabel renders a cell value as a category label. Nil cells report false so
// callers can skip them.
func AsLabel(v any) (string, bool) {
	switch x := v.(type) {
	case nil:
		return "", false
	case string:
		return x, true
	case bool:
		if x {
			return "true", true
		}
		return "false", true
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), true
	default:
		return "", false
	}
}
