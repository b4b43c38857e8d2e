package chart

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
)

// Build derives the plottable series for one chart configuration. It returns
// nil whenever the inputs cannot produce a chart: unknown type, wrong column
// arity, or no usable values after skipping nulls. Malformed cells never
// cause a panic; they are skipped per the rules of each chart kind.
func Build(t Type, selected []string, d *dataset.Dataset, p Params) *Series {
	cols := compact(selected)
	if t == "" || len(cols) == 0 || d == nil {
		return nil
	}
	rows := d.Source()

	switch t {
	case Bar, HorizontalBar:
		switch len(cols) {
		case 1:
			return countSeries(rows, cols[0], p, barColor, false)
		case 2:
			return aggregateSeries(rows, cols, d, p, barColor, false)
		}
		return nil
	case Pie, Donut:
		switch len(cols) {
		case 1:
			return countSeries(rows, cols[0], p, "", true)
		case 2:
			return aggregateSeries(rows, cols, d, p, "", true)
		}
		return nil
	case Histogram:
		if len(cols) != 1 {
			return nil
		}
		return histogramSeries(rows, cols[0], p)
	case Box:
		if len(cols) != 1 {
			return nil
		}
		return boxSeries(rows, cols[0])
	case GroupedBar, StackedBar:
		if len(cols) != 3 {
			return nil
		}
		return groupedSeries(rows, cols[0], cols[1], cols[2], p)
	case Scatter:
		if len(cols) != 2 {
			return nil
		}
		return scatterSeries(rows, cols[0], cols[1], p)
	case Line:
		if len(cols) != 2 {
			return nil
		}
		return lineSeries(rows, cols[0], cols[1], p)
	case Correlation:
		return correlationSeries(rows, cols, d)
	default:
		return nil
	}
}

func compact(selected []string) []string {
	var out []string
	for _, s := range selected {
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}

// filterAndSort orders label/value pairs per the sort knob and then truncates
// to the top-N request. Sorting always happens before truncation so the kept
// pairs are the N largest or smallest, not the first N encountered.
func filterAndSort(labels []string, values []float64, p Params) ([]string, []float64) {
	idx := make([]int, len(labels))
	for i := range idx {
		idx[i] = i
	}
	switch p.sortOrder() {
	case SortAsc:
		sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] < values[idx[b]] })
	case SortDesc:
		sort.SliceStable(idx, func(a, b int) bool { return values[idx[a]] > values[idx[b]] })
	case SortLabelAsc:
		sort.SliceStable(idx, func(a, b int) bool { return labels[idx[a]] < labels[idx[b]] })
	case SortLabelDesc:
		sort.SliceStable(idx, func(a, b int) bool { return labels[idx[a]] > labels[idx[b]] })
	}
	if p.FilterTop > 0 && p.FilterTop < len(idx) {
		idx = idx[:p.FilterTop]
	}
	outL := make([]string, len(idx))
	outV := make([]float64, len(idx))
	for i, j := range idx {
		outL[i] = labels[j]
		outV[i] = values[j]
	}
	return outL, outV
}

// countSeries counts occurrences of each distinct value in first-seen order.
// Numeric values are treated as discrete categories.
func countSeries(rows []dataset.Row, col string, p Params, color string, pie bool) *Series {
	var labels []string
	var counts []float64
	index := map[string]int{}
	for _, r := range rows {
		label, ok := dataset.AsLabel(r[col])
		if !ok {
			continue
		}
		i, seen := index[label]
		if !seen {
			i = len(labels)
			index[label] = i
			labels = append(labels, label)
			counts = append(counts, 0)
		}
		counts[i]++
	}
	if len(labels) == 0 {
		return nil
	}
	labels, counts = filterAndSort(labels, counts, p)
	ds := Dataset{Label: col, Data: counts}
	if pie {
		ds.Colors = pieColors(len(counts))
	} else {
		ds.Color = color
	}
	return &Series{Labels: labels, Datasets: []Dataset{ds}}
}

// aggregateSeries folds a numeric column grouped by a categorical column.
// Which of the two selected columns plays which role is decided by group
// inspection, falling back to positional order when neither matches cleanly.
func aggregateSeries(rows []dataset.Row, cols []string, d *dataset.Dataset, p Params, color string, pie bool) *Series {
	catCol, numCol := resolveCatNum(cols[0], cols[1], d)

	var labels []string
	var sums, counts []float64
	index := map[string]int{}
	for _, r := range rows {
		label, ok := dataset.AsLabel(r[catCol])
		if !ok {
			continue
		}
		v, ok := dataset.AsNumber(r[numCol])
		if !ok {
			continue
		}
		i, seen := index[label]
		if !seen {
			i = len(labels)
			index[label] = i
			labels = append(labels, label)
			sums = append(sums, 0)
			counts = append(counts, 0)
		}
		sums[i] += v
		counts[i]++
	}
	if len(labels) == 0 {
		return nil
	}
	values := sums
	if p.aggregation() == AggAverage {
		values = make([]float64, len(sums))
		for i := range sums {
			values[i] = sums[i] / counts[i]
		}
	}
	labels, values = filterAndSort(labels, values, p)
	ds := Dataset{Label: fmt.Sprintf("%s of %s", p.aggregation(), numCol), Data: values}
	if pie {
		ds.Colors = pieColors(len(values))
	} else {
		ds.Color = color
	}
	return &Series{Labels: labels, Datasets: []Dataset{ds}}
}

// resolveCatNum decides which selected column is the category and which the
// value by inspecting their groups.
func resolveCatNum(a, b string, d *dataset.Dataset) (catCol, numCol string) {
	ca, okA := d.Column(a)
	cb, okB := d.Column(b)
	aNum := okA && ca.Group == dataset.GroupNumerical
	bNum := okB && cb.Group == dataset.GroupNumerical
	if aNum && !bNum {
		return b, a
	}
	return a, b
}

// groupedSeries builds one dataset per subgroup value, each aligned to the
// primary group's label order.
func groupedSeries(rows []dataset.Row, g1Col, g2Col, numCol string, p Params) *Series {
	sums := map[string]map[string]float64{}
	counts := map[string]map[string]float64{}
	totals := map[string]float64{}
	var g1Order, g2Order []string
	g2Seen := map[string]bool{}

	for _, r := range rows {
		g1, ok := dataset.AsLabel(r[g1Col])
		if !ok {
			continue
		}
		g2, ok := dataset.AsLabel(r[g2Col])
		if !ok {
			continue
		}
		v, ok := dataset.AsNumber(r[numCol])
		if !ok {
			continue
		}
		if sums[g1] == nil {
			sums[g1] = map[string]float64{}
			counts[g1] = map[string]float64{}
			g1Order = append(g1Order, g1)
		}
		if !g2Seen[g2] {
			g2Seen[g2] = true
			g2Order = append(g2Order, g2)
		}
		sums[g1][g2] += v
		counts[g1][g2]++
		totals[g1] += v
	}
	if len(g1Order) == 0 {
		return nil
	}

	// Top-N ranks primary groups by their total across every subgroup; the
	// subgroup set itself is never filtered.
	if p.FilterTop > 0 {
		ranked := append([]string(nil), g1Order...)
		asc := p.sortOrder() == SortAsc || p.sortOrder() == SortLabelAsc
		sort.SliceStable(ranked, func(a, b int) bool {
			if asc {
				return totals[ranked[a]] < totals[ranked[b]]
			}
			return totals[ranked[a]] > totals[ranked[b]]
		})
		if p.FilterTop < len(ranked) {
			ranked = ranked[:p.FilterTop]
		}
		g1Order = ranked
	}

	average := p.aggregation() == AggAverage
	datasets := make([]Dataset, 0, len(g2Order))
	for i, g2 := range g2Order {
		data := make([]float64, len(g1Order))
		for j, g1 := range g1Order {
			s := sums[g1][g2]
			if average {
				if c := counts[g1][g2]; c > 0 {
					s /= c
				}
			}
			data[j] = s
		}
		datasets = append(datasets, Dataset{Label: g2, Data: data, Color: groupColor(i)})
	}
	return &Series{Labels: g1Order, Datasets: datasets}
}

// histogramSeries bins a numeric column into sqrt(n) bins bounded to [5, 20].
// The maximum value lands in the last bin rather than overflowing it.
func histogramSeries(rows []dataset.Row, col string, p Params) *Series {
	values := numericValues(rows, col)
	if len(values) == 0 {
		return nil
	}
	min, max := values[0], values[0]
	for _, v := range values[1:] {
		if v < min {
			min = v
		}
		if v > max {
			max = v
		}
	}
	binCount := int(math.Ceil(math.Sqrt(float64(len(values)))))
	if binCount < 5 {
		binCount = 5
	}
	if binCount > 20 {
		binCount = 20
	}
	width := (max - min) / float64(binCount)
	if width == 0 {
		width = 1
	}
	counts := make([]float64, binCount)
	for _, v := range values {
		idx := int(math.Floor((v - min) / width))
		if idx >= binCount {
			idx = binCount - 1
		}
		counts[idx]++
	}
	labels := make([]string, binCount)
	for i := range labels {
		from := min + float64(i)*width
		labels[i] = fmt.Sprintf("%.1f - %.1f", from, from+width)
	}
	labels, counts = filterAndSort(labels, counts, p)
	return &Series{
		Labels:   labels,
		Datasets: []Dataset{{Label: col, Data: counts, Color: barColor}},
	}
}

// boxSeries computes the five-number summary with linear quartile
// interpolation.
func boxSeries(rows []dataset.Row, col string) *Series {
	values := numericValues(rows, col)
	if len(values) == 0 {
		return nil
	}
	sort.Float64s(values)
	stats := &BoxStats{
		Min:    values[0],
		Q1:     quantile(values, 0.25),
		Median: quantile(values, 0.5),
		Q3:     quantile(values, 0.75),
		Max:    values[len(values)-1],
		Values: values,
	}
	return &Series{
		Labels:   []string{col},
		Datasets: []Dataset{{Label: col, Box: stats, Color: barColor}},
	}
}

// quantile interpolates linearly between the two sorted values straddling
// position (n-1)*q.
func quantile(sorted []float64, q float64) float64 {
	pos := float64(len(sorted)-1) * q
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo] + frac*(sorted[hi]-sorted[lo])
}

// scatterSeries maps each row to an (x, y) point with no null filtering:
// missing cells become NaN coordinates and serialize as null, leaving the
// drop decision to the renderer.
func scatterSeries(rows []dataset.Row, xCol, yCol string, p Params) *Series {
	points := make([]Point, 0, len(rows))
	for _, r := range rows {
		x, okX := dataset.AsNumber(r[xCol])
		if !okX {
			x = math.NaN()
		}
		y, okY := dataset.AsNumber(r[yCol])
		if !okY {
			y = math.NaN()
		}
		points = append(points, Point{X: x, Y: y})
	}
	if len(points) == 0 {
		return nil
	}
	switch p.sortOrder() {
	case SortXAsc, SortAsc:
		sort.SliceStable(points, func(a, b int) bool { return points[a].X < points[b].X })
	case SortXDesc, SortDesc:
		sort.SliceStable(points, func(a, b int) bool { return points[a].X > points[b].X })
	case SortYAsc:
		sort.SliceStable(points, func(a, b int) bool { return points[a].Y < points[b].Y })
	case SortYDesc:
		sort.SliceStable(points, func(a, b int) bool { return points[a].Y > points[b].Y })
	}
	return &Series{
		Datasets: []Dataset{{
			Label:  fmt.Sprintf("%s vs %s", xCol, yCol),
			Points: points,
			Color:  barColor,
		}},
	}
}

// lineSeries plots the second column over the first. Top-N here means the
// first N points in x-order after sorting, not the N largest values.
func lineSeries(rows []dataset.Row, xCol, yCol string, p Params) *Series {
	type sample struct {
		label string
		x     float64
		xNum  bool
		y     float64
	}
	var samples []sample
	for _, r := range rows {
		label, ok := dataset.AsLabel(r[xCol])
		if !ok {
			continue
		}
		y, ok := dataset.AsNumber(r[yCol])
		if !ok {
			continue
		}
		x, xNum := dataset.AsNumber(r[xCol])
		samples = append(samples, sample{label: label, x: x, xNum: xNum, y: y})
	}
	if len(samples) == 0 {
		return nil
	}
	less := func(a, b sample) bool {
		if a.xNum && b.xNum {
			return a.x < b.x
		}
		return a.label < b.label
	}
	switch p.sortOrder() {
	case SortAsc, SortXAsc, SortLabelAsc:
		sort.SliceStable(samples, func(a, b int) bool { return less(samples[a], samples[b]) })
	case SortDesc, SortXDesc, SortLabelDesc:
		sort.SliceStable(samples, func(a, b int) bool { return less(samples[b], samples[a]) })
	}
	if p.FilterTop > 0 && p.FilterTop < len(samples) {
		samples = samples[:p.FilterTop]
	}
	labels := make([]string, len(samples))
	data := make([]float64, len(samples))
	for i, s := range samples {
		labels[i] = s.label
		data[i] = s.y
	}
	return &Series{
		Labels:   labels,
		Datasets: []Dataset{{Label: yCol, Data: data, Color: barColor}},
	}
}

// correlationSeries computes the full Pearson matrix over the numeric subset
// of the selection, pairwise-complete per cell. The diagonal goes through the
// same formula as every other cell.
func correlationSeries(rows []dataset.Row, selected []string, d *dataset.Dataset) *Series {
	var names []string
	for _, name := range selected {
		if col, ok := d.Column(name); ok && col.Group == dataset.GroupNumerical {
			names = append(names, name)
		}
	}
	if len(names) < 2 {
		return nil
	}
	cells := make([]CorrCell, 0, len(names)*len(names))
	for _, y := range names {
		for _, x := range names {
			cells = append(cells, CorrCell{X: x, Y: y, V: pearson(rows, x, y)})
		}
	}
	return &Series{
		Labels:   names,
		Datasets: []Dataset{{Label: "correlation", Cells: cells}},
	}
}

// pearson computes the correlation coefficient over rows where both columns
// hold numeric values. Zero variance in either column yields 0, preserving
// the documented defined-as-zero convention.
func pearson(rows []dataset.Row, a, b string) float64 {
	var xs, ys []float64
	for _, r := range rows {
		x, okX := dataset.AsNumber(r[a])
		y, okY := dataset.AsNumber(r[b])
		if okX && okY {
			xs = append(xs, x)
			ys = append(ys, y)
		}
	}
	n := len(xs)
	if n == 0 {
		return 0
	}
	var meanX, meanY float64
	for i := 0; i < n; i++ {
		meanX += xs[i]
		meanY += ys[i]
	}
	meanX /= float64(n)
	meanY /= float64(n)
	var num, dx2, dy2 float64
	for i := 0; i < n; i++ {
		dx := xs[i] - meanX
		dy := ys[i] - meanY
		num += dx * dy
		dx2 += dx * dx
		dy2 += dy * dy
	}
	denom := math.Sqrt(dx2 * dy2)
	if denom == 0 {
		return 0
	}
	return num / denom
}

func numericValues(rows []dataset.Row, col string) []float64 {
	var out []float64
	for _, r := range rows {
		if v, ok := dataset.AsNumber(r[col]); ok {
			out = append(out, v)
		}
	}
	return out
}

// Describe renders a short human-readable summary of a configuration for
// report listings.
func Describe(t Type, columns []string, agg Aggregation) string {
	desc := fmt.Sprintf("%s of %s", t, strings.Join(columns, ", "))
	if agg != "" {
		desc += fmt.Sprintf(" (%s)", agg)
	}
	return desc
}
