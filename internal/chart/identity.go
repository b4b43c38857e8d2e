package chart

import (
	"fmt"
	"strconv"
	"strings"
)

// Identity is the parsed form of a chart identity key: the full configuration
// that distinguishes one chart from another.
type Identity struct {
	Type        Type
	Columns     []string
	FilterTop   int
	SortOrder   SortOrder
	Aggregation Aggregation
}

// aggregationSensitive reports whether the key must carry the aggregation
// knob. Single-column distributions only count, so aggregation cannot change
// their output and is left out of the key.
func aggregationSensitive(t Type, columnCount int) bool {
	if columnCount < 2 {
		return false
	}
	switch t {
	case Bar, HorizontalBar, GroupedBar, StackedBar, Pie, Donut:
		return true
	case Histogram, Box, Scatter, Line, Correlation:
		return false
	default:
		return false
	}
}

// Key derives the deterministic identity string for a configuration:
// "{type}:{columns}:filter={n}:sort={order}" with ":agg={agg}" appended for
// aggregation-sensitive configurations. Column names are escaped so embedded
// delimiters cannot collide with the key structure; ParseKey reverses the
// construction exactly.
func Key(t Type, columns []string, p Params) string {
	escaped := make([]string, len(columns))
	for i, c := range columns {
		escaped[i] = escapeComponent(c)
	}
	filter := ""
	if p.FilterTop > 0 {
		filter = strconv.Itoa(p.FilterTop)
	}
	key := fmt.Sprintf("%s:%s:filter=%s:sort=%s",
		t, strings.Join(escaped, ","), filter, p.sortOrder())
	if aggregationSensitive(t, len(columns)) {
		key += ":agg=" + string(p.aggregation())
	}
	return key
}

// ParseKey recovers a configuration from its identity string.
func ParseKey(key string) (Identity, error) {
	parts := strings.Split(key, ":")
	if len(parts) < 4 {
		return Identity{}, fmt.Errorf("malformed chart key %q", key)
	}
	t, ok := ParseType(parts[0])
	if !ok {
		return Identity{}, fmt.Errorf("unknown chart type %q in key", parts[0])
	}
	var columns []string
	if parts[1] != "" {
		for _, c := range strings.Split(parts[1], ",") {
			columns = append(columns, unescapeComponent(c))
		}
	}
	id := Identity{Type: t, Columns: columns, SortOrder: SortNone}
	for _, seg := range parts[2:] {
		name, value, found := strings.Cut(seg, "=")
		if !found {
			return Identity{}, fmt.Errorf("malformed key segment %q", seg)
		}
		switch name {
		case "filter":
			if value == "" {
				continue
			}
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return Identity{}, fmt.Errorf("invalid filter value %q", value)
			}
			id.FilterTop = n
		case "sort":
			id.SortOrder = SortOrder(value)
		case "agg":
			id.Aggregation = Aggregation(value)
		default:
			return Identity{}, fmt.Errorf("unknown key segment %q", name)
		}
	}
	return id, nil
}

// escapeComponent percent-encodes the three characters that carry structure
// in a key: '%', ':' and ','.
func escapeComponent(s string) string {
	r := strings.NewReplacer("%", "%25", ":", "%3A", ",", "%2C")
	return r.Replace(s)
}

func unescapeComponent(s string) string {
	r := strings.NewReplacer("%3A", ":", "%2C", ",", "%25", "%")
	return r.Replace(s)
}
