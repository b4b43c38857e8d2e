package chart

import (
	"math"
	"testing"

	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func rowsFrom(cols []string, cells ...[]any) []dataset.Row {
	rows := make([]dataset.Row, len(cells))
	for i, rec := range cells {
		row := dataset.Row{}
		for j, c := range cols {
			row[c] = rec[j]
		}
		rows[i] = row
	}
	return rows
}

func salesDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"region", "product", "sales", "profit"},
		[]any{"A", "widget", 10.0, 1.0},
		[]any{"A", "gadget", 20.0, 2.0},
		[]any{"B", "widget", 5.0, 3.0},
	)
	return d
}

func TestFilterAndSortTopN(t *testing.T) {
	labels := []string{"a", "b", "c", "d", "e", "f", "g", "h"}
	values := []float64{3, 1, 4, 1, 5, 9, 2, 6}
	gotL, gotV := filterAndSort(labels, values, Params{FilterTop: 5, SortOrder: SortDesc})
	wantV := []float64{9, 6, 5, 4, 3}
	wantL := []string{"f", "h", "e", "c", "a"}
	for i := range wantV {
		if gotV[i] != wantV[i] || gotL[i] != wantL[i] {
			t.Fatalf("top-5 desc = %v/%v, want %v/%v", gotL, gotV, wantL, wantV)
		}
	}
}

func TestFilterAndSortNoneKeepsOrder(t *testing.T) {
	labels := []string{"b", "a"}
	values := []float64{1, 2}
	gotL, _ := filterAndSort(labels, values, Params{})
	if gotL[0] != "b" || gotL[1] != "a" {
		t.Fatalf("sort none should keep first-seen order, got %v", gotL)
	}
}

func TestBarAggregateSumAndAverage(t *testing.T) {
	d := salesDataset(t)
	s := Build(Bar, []string{"region", "sales"}, d, Params{Aggregation: AggSum})
	if s == nil {
		t.Fatal("expected series")
	}
	if len(s.Labels) != 2 || s.Labels[0] != "A" || s.Labels[1] != "B" {
		t.Fatalf("labels = %v", s.Labels)
	}
	if !almostEqual(s.Datasets[0].Data[0], 30) || !almostEqual(s.Datasets[0].Data[1], 5) {
		t.Fatalf("sum data = %v", s.Datasets[0].Data)
	}

	s = Build(Bar, []string{"region", "sales"}, d, Params{Aggregation: AggAverage})
	if !almostEqual(s.Datasets[0].Data[0], 15) || !almostEqual(s.Datasets[0].Data[1], 5) {
		t.Fatalf("average data = %v", s.Datasets[0].Data)
	}
}

func TestBarColumnOrderIrrelevant(t *testing.T) {
	d := salesDataset(t)
	s := Build(Bar, []string{"sales", "region"}, d, Params{})
	if s == nil || s.Labels[0] != "A" {
		t.Fatalf("reversed column order should still group by category, got %+v", s)
	}
}

func TestBarNullResilience(t *testing.T) {
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"region", "sales"},
		[]any{"A", 10.0},
		[]any{"A", nil},
		[]any{"A", 20.0},
		[]any{nil, 99.0},
		[]any{"B", 5.0},
	)
	s := Build(Bar, []string{"region", "sales"}, d, Params{})
	if s == nil {
		t.Fatal("nulls should not kill the series")
	}
	if !almostEqual(s.Datasets[0].Data[0], 30) {
		t.Fatalf("null cells should be skipped, group A = %v", s.Datasets[0].Data[0])
	}
	if len(s.Labels) != 2 {
		t.Fatalf("null category rows should be dropped, labels = %v", s.Labels)
	}
}

func TestCountDistribution(t *testing.T) {
	d := salesDataset(t)
	s := Build(Bar, []string{"region"}, d, Params{})
	if s == nil || len(s.Labels) != 2 {
		t.Fatalf("series = %+v", s)
	}
	if !almostEqual(s.Datasets[0].Data[0], 2) || !almostEqual(s.Datasets[0].Data[1], 1) {
		t.Fatalf("counts = %v", s.Datasets[0].Data)
	}
}

func TestPiePaletteCycles(t *testing.T) {
	d := testDataset(t)
	rows := make([]dataset.Row, 8)
	for i := range rows {
		rows[i] = dataset.Row{"region": string(rune('a' + i))}
	}
	d.Rows = rows
	s := Build(Pie, []string{"region"}, d, Params{})
	if s == nil {
		t.Fatal("expected series")
	}
	colors := s.Datasets[0].Colors
	if len(colors) != 8 {
		t.Fatalf("expected 8 slice colors, got %d", len(colors))
	}
	if colors[6] != colors[0] || colors[7] != colors[1] {
		t.Error("palette should cycle after six slices")
	}
}

func TestGroupedBarTopNByTotal(t *testing.T) {
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"region", "product", "sales"},
		[]any{"A", "w", 1.0}, []any{"A", "g", 1.0},
		[]any{"B", "w", 50.0}, []any{"B", "g", 50.0},
		[]any{"C", "w", 10.0}, []any{"C", "g", 5.0},
	)
	s := Build(GroupedBar, []string{"region", "product", "sales"},
		d, Params{FilterTop: 2, SortOrder: SortDesc})
	if s == nil {
		t.Fatal("expected series")
	}
	if len(s.Labels) != 2 || s.Labels[0] != "B" || s.Labels[1] != "C" {
		t.Fatalf("top-2 by total should be [B C], got %v", s.Labels)
	}
	if len(s.Datasets) != 2 {
		t.Fatalf("subgroup set should never be filtered, got %d datasets", len(s.Datasets))
	}
	for _, ds := range s.Datasets {
		if len(ds.Data) != len(s.Labels) {
			t.Fatalf("dataset %s not aligned to labels", ds.Label)
		}
	}
}

func TestGroupedBarAverage(t *testing.T) {
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"region", "product", "sales"},
		[]any{"A", "w", 10.0}, []any{"A", "w", 20.0},
	)
	s := Build(GroupedBar, []string{"region", "product", "sales"},
		d, Params{Aggregation: AggAverage})
	if !almostEqual(s.Datasets[0].Data[0], 15) {
		t.Fatalf("average = %v", s.Datasets[0].Data[0])
	}
}

func TestHistogramBinCoverage(t *testing.T) {
	d := testDataset(t)
	var rows []dataset.Row
	for i := 0; i < 50; i++ {
		rows = append(rows, dataset.Row{"sales": float64(i)})
	}
	d.Rows = rows
	s := Build(Histogram, []string{"sales"}, d, Params{})
	if s == nil {
		t.Fatal("expected series")
	}
	// ceil(sqrt(50)) = 8 bins.
	if len(s.Labels) != 8 {
		t.Fatalf("expected 8 bins, got %d", len(s.Labels))
	}
	var total float64
	for _, c := range s.Datasets[0].Data {
		total += c
	}
	if total != 50 {
		t.Fatalf("every value should land in exactly one bin, total = %v", total)
	}
	// The maximum value closes into the last bin rather than overflowing.
	if last := s.Datasets[0].Data[len(s.Datasets[0].Data)-1]; last == 0 {
		t.Error("last bin should hold the maximum value")
	}
}

func TestHistogramIdenticalValues(t *testing.T) {
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"sales"},
		[]any{7.0}, []any{7.0}, []any{7.0})
	s := Build(Histogram, []string{"sales"}, d, Params{})
	if s == nil {
		t.Fatal("identical values should still bin with width fallback 1")
	}
	var total float64
	for _, c := range s.Datasets[0].Data {
		total += c
	}
	if total != 3 {
		t.Fatalf("total = %v", total)
	}
}

func TestBoxQuartiles(t *testing.T) {
	d := testDataset(t)
	var rows []dataset.Row
	for i := 1; i <= 10; i++ {
		rows = append(rows, dataset.Row{"sales": float64(i)})
	}
	d.Rows = rows
	s := Build(Box, []string{"sales"}, d, Params{})
	if s == nil || s.Datasets[0].Box == nil {
		t.Fatal("expected box stats")
	}
	b := s.Datasets[0].Box
	if !almostEqual(b.Q1, 3.25) || !almostEqual(b.Median, 5.5) || !almostEqual(b.Q3, 7.75) {
		t.Fatalf("quartiles = %v / %v / %v, want 3.25 / 5.5 / 7.75", b.Q1, b.Median, b.Q3)
	}
	if b.Min != 1 || b.Max != 10 {
		t.Fatalf("min/max = %v/%v", b.Min, b.Max)
	}
	if len(b.Values) != 10 {
		t.Fatalf("raw values should be retained, got %d", len(b.Values))
	}
}

func TestScatterKeepsNulls(t *testing.T) {
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"sales", "profit"},
		[]any{1.0, 2.0},
		[]any{nil, 3.0},
		[]any{4.0, nil},
	)
	s := Build(Scatter, []string{"sales", "profit"}, d, Params{})
	if s == nil {
		t.Fatal("expected series")
	}
	pts := s.Datasets[0].Points
	if len(pts) != 3 {
		t.Fatalf("scatter should keep every row, got %d points", len(pts))
	}
	if !math.IsNaN(pts[1].X) || !math.IsNaN(pts[2].Y) {
		t.Error("missing cells should surface as NaN coordinates")
	}
}

func TestScatterSortByY(t *testing.T) {
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"sales", "profit"},
		[]any{1.0, 9.0}, []any{2.0, 3.0}, []any{3.0, 6.0})
	s := Build(Scatter, []string{"sales", "profit"}, d, Params{SortOrder: SortYAsc})
	pts := s.Datasets[0].Points
	if pts[0].Y != 3 || pts[1].Y != 6 || pts[2].Y != 9 {
		t.Fatalf("y-asc sort = %v", pts)
	}
}

func TestLineFirstNInXOrder(t *testing.T) {
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"sales", "profit"},
		[]any{3.0, 30.0}, []any{1.0, 10.0}, []any{2.0, 20.0}, []any{4.0, 40.0})
	s := Build(Line, []string{"sales", "profit"}, d,
		Params{SortOrder: SortAsc, FilterTop: 2})
	if s == nil {
		t.Fatal("expected series")
	}
	// First 2 in x-order, not the 2 largest y values.
	if len(s.Labels) != 2 || s.Labels[0] != "1" || s.Labels[1] != "2" {
		t.Fatalf("labels = %v", s.Labels)
	}
	if !almostEqual(s.Datasets[0].Data[0], 10) || !almostEqual(s.Datasets[0].Data[1], 20) {
		t.Fatalf("data = %v", s.Datasets[0].Data)
	}
}

func TestLineFiltersNullRows(t *testing.T) {
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"signup", "sales"},
		[]any{"2024-01-01", 5.0},
		[]any{nil, 6.0},
		[]any{"2024-01-03", nil},
		[]any{"2024-01-02", 7.0},
	)
	s := Build(Line, []string{"signup", "sales"}, d, Params{})
	if len(s.Labels) != 2 {
		t.Fatalf("rows with null x or y should drop, labels = %v", s.Labels)
	}
}

func TestCorrelationDiagonalAndSymmetry(t *testing.T) {
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"sales", "profit"},
		[]any{1.0, 2.0}, []any{2.0, 4.5}, []any{3.0, 5.5}, []any{4.0, 9.0})
	s := Build(Correlation, []string{"sales", "profit"}, d, Params{})
	if s == nil {
		t.Fatal("expected series")
	}
	cells := s.Datasets[0].Cells
	if len(cells) != 4 {
		t.Fatalf("expected 2x2 matrix, got %d cells", len(cells))
	}
	byPair := map[[2]string]float64{}
	for _, c := range cells {
		byPair[[2]string{c.X, c.Y}] = c.V
	}
	if !almostEqual(byPair[[2]string{"sales", "sales"}], 1) {
		t.Errorf("diagonal should be 1, got %v", byPair[[2]string{"sales", "sales"}])
	}
	if !almostEqual(byPair[[2]string{"sales", "profit"}], byPair[[2]string{"profit", "sales"}]) {
		t.Error("matrix should be symmetric")
	}
}

func TestCorrelationPairwiseComplete(t *testing.T) {
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"sales", "profit"},
		[]any{1.0, 1.0}, []any{2.0, 2.0}, []any{3.0, nil}, []any{nil, 4.0}, []any{5.0, 5.0})
	s := Build(Correlation, []string{"sales", "profit"}, d, Params{})
	for _, c := range s.Datasets[0].Cells {
		if c.X == "sales" && c.Y == "profit" && !almostEqual(c.V, 1) {
			t.Errorf("pairwise-complete r = %v, want 1", c.V)
		}
	}
}

func TestCorrelationZeroVariance(t *testing.T) {
	d := testDataset(t)
	d.Rows = rowsFrom([]string{"sales", "profit"},
		[]any{5.0, 1.0}, []any{5.0, 2.0}, []any{5.0, 3.0})
	s := Build(Correlation, []string{"sales", "profit"}, d, Params{})
	for _, c := range s.Datasets[0].Cells {
		if c.X == "sales" && c.Y == "sales" && c.V != 0 {
			t.Errorf("zero-variance self correlation should be 0, got %v", c.V)
		}
		if c.X == "sales" && c.Y == "profit" && c.V != 0 {
			t.Errorf("zero-variance pair correlation should be 0, got %v", c.V)
		}
	}
}

func TestCorrelationDropsNonNumeric(t *testing.T) {
	d := salesDataset(t)
	s := Build(Correlation, []string{"region", "sales", "profit"}, d, Params{})
	if s == nil {
		t.Fatal("expected series after dropping categorical")
	}
	if len(s.Labels) != 2 {
		t.Fatalf("labels = %v", s.Labels)
	}
	if Build(Correlation, []string{"region", "sales"}, d, Params{}) != nil {
		t.Error("fewer than two numeric columns should yield nil")
	}
}

func TestBuildDegradesToNil(t *testing.T) {
	d := salesDataset(t)
	if Build("", []string{"region"}, d, Params{}) != nil {
		t.Error("missing type should yield nil")
	}
	if Build(Bar, nil, d, Params{}) != nil {
		t.Error("no columns should yield nil")
	}
	if Build(Bar, []string{"region", "sales", "profit"}, d, Params{}) != nil {
		t.Error("wrong arity should yield nil")
	}
	empty := testDataset(t)
	if Build(Histogram, []string{"sales"}, empty, Params{}) != nil {
		t.Error("no numeric data should yield nil")
	}
}

func TestBuildUsesPreviewFallback(t *testing.T) {
	d := testDataset(t)
	d.Preview = rowsFrom([]string{"region"}, []any{"A"}, []any{"A"})
	s := Build(Bar, []string{"region"}, d, Params{})
	if s == nil || !almostEqual(s.Datasets[0].Data[0], 2) {
		t.Fatalf("preview rows should back the series when full rows are absent, got %+v", s)
	}
}
