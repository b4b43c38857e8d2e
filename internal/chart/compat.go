package chart

import (
	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
)

// groupCounts tallies the selection by column group. Categorical includes
// Boolean for compatibility purposes; names that resolve to no column are
// ignored.
type groupCounts struct {
	num, cat, dt, total int
}

func countGroups(selected []string, d *dataset.Dataset) groupCounts {
	var gc groupCounts
	for _, name := range selected {
		if name == "" {
			continue
		}
		col, ok := d.Column(name)
		if !ok {
			continue
		}
		gc.total++
		switch col.Group {
		case dataset.GroupNumerical:
			gc.num++
		case dataset.GroupBoolean, dataset.GroupCategorical:
			gc.cat++
		case dataset.GroupDateTime:
			gc.dt++
		}
	}
	return gc
}

// CompatibleCharts returns the chart types valid for the selected columns, in
// presentation order. An empty selection yields nil.
func CompatibleCharts(selected []string, d *dataset.Dataset) []Type {
	gc := countGroups(selected, d)
	if gc.total == 0 {
		return nil
	}
	var out []Type
	for _, t := range AllTypes {
		if typeAccepts(t, gc) {
			out = append(out, t)
		}
	}
	return out
}

func typeAccepts(t Type, gc groupCounts) bool {
	switch t {
	case Bar, HorizontalBar:
		return (gc.cat == 1 && gc.num == 0 && gc.dt == 0) ||
			(gc.cat == 1 && gc.num == 1 && gc.dt == 0)
	case Pie, Donut:
		return (gc.cat == 1 && gc.num == 0 && gc.dt == 0) ||
			(gc.num == 1 && gc.cat == 0 && gc.dt == 0) ||
			(gc.cat == 1 && gc.num == 1 && gc.dt == 0) ||
			(gc.num == 2 && gc.cat == 0 && gc.dt == 0)
	case Histogram, Box:
		return gc.num == 1 && gc.cat == 0 && gc.dt == 0
	case GroupedBar, StackedBar:
		return gc.cat >= 2 && gc.num >= 1
	case Scatter:
		return gc.num == 2 && gc.cat == 0 && gc.dt == 0
	case Line:
		return (gc.dt == 1 && gc.num == 1) ||
			(gc.num == 1 && gc.cat == 0 && gc.dt == 0) ||
			(gc.num == 2 && gc.cat == 0 && gc.dt == 0)
	case Correlation:
		return gc.num == gc.total && gc.num >= 2
	default:
		return false
	}
}

// Combo is an ordered template of column slots. Each slot lists the column
// names eligible for that position.
type Combo [][]string

// Combos returns the slot templates for a chart type over the dataset's
// columns. The templates both validate candidate selections and populate
// selection widgets.
func Combos(t Type, d *dataset.Dataset) []Combo {
	cat := categoricalNames(d)
	num := d.Names(dataset.GroupNumerical)
	dt := d.Names(dataset.GroupDateTime)

	switch t {
	case Bar, HorizontalBar:
		return []Combo{{cat}, {cat, num}}
	case Pie, Donut:
		return []Combo{{cat}, {num}, {cat, num}}
	case Histogram, Box:
		return []Combo{{num}}
	case GroupedBar, StackedBar:
		return []Combo{{cat, cat, num}}
	case Scatter:
		return []Combo{{num, num}}
	case Line:
		return []Combo{{dt, num}, {cat, num}, {num, num}}
	case Correlation:
		return []Combo{{cat, cat, num}, {num, num}}
	default:
		return nil
	}
}

// categoricalNames is the pool for category slots: Categorical plus Boolean,
// in column order.
func categoricalNames(d *dataset.Dataset) []string {
	var out []string
	for _, c := range d.Columns {
		if c.Group == dataset.GroupCategorical || c.Group == dataset.GroupBoolean {
			out = append(out, c.Name)
		}
	}
	return out
}

// IsValidSelection reports whether the chosen columns satisfy one of the
// chart type's combos slot-for-slot.
//
// Two relaxations cover the two-dropdown UI for single-column distributions:
// bar charts accept [category, blank], and pie charts accept exactly one
// filled slot valid as either category or value.
func IsValidSelection(t Type, chosen []string, combos []Combo) bool {
	for _, combo := range combos {
		if matchesCombo(t, chosen, combo) {
			return true
		}
	}

	switch t {
	case Bar, HorizontalBar:
		if len(chosen) == 2 && chosen[1] == "" && chosen[0] != "" {
			for _, combo := range combos {
				if len(combo) >= 1 && contains(combo[0], chosen[0]) {
					return true
				}
			}
		}
	case Pie, Donut:
		if len(chosen) == 2 {
			filled, blanks := "", 0
			for _, c := range chosen {
				if c == "" {
					blanks++
				} else {
					filled = c
				}
			}
			if blanks == 1 {
				for _, combo := range combos {
					for _, slot := range combo {
						if contains(slot, filled) {
							return true
						}
					}
				}
			}
		}
	case Histogram, Box, GroupedBar, StackedBar, Scatter, Line, Correlation:
		// No relaxations for the remaining types.
	}
	return false
}

func matchesCombo(t Type, chosen []string, combo Combo) bool {
	if len(chosen) != len(combo) {
		return false
	}
	for i, name := range chosen {
		if name == "" || !contains(combo[i], name) {
			return false
		}
	}
	// Both category slots draw from the same pool, so repeated names must be
	// rejected explicitly.
	if t == GroupedBar || t == StackedBar {
		if len(chosen) >= 2 && chosen[0] == chosen[1] {
			return false
		}
	}
	return true
}

func contains(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
