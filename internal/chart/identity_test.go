package chart

import (
	"testing"
)

func TestKeyDeterministic(t *testing.T) {
	p := Params{Aggregation: AggSum, FilterTop: 5, SortOrder: SortDesc}
	a := Key(Bar, []string{"region", "sales"}, p)
	b := Key(Bar, []string{"region", "sales"}, p)
	if a != b {
		t.Fatalf("identical inputs produced different keys: %q vs %q", a, b)
	}
}

func TestKeyFormat(t *testing.T) {
	got := Key(Bar, []string{"region", "sales"},
		Params{Aggregation: AggSum, FilterTop: 5, SortOrder: SortDesc})
	want := "bar:region,sales:filter=5:sort=desc:agg=sum"
	if got != want {
		t.Fatalf("key = %q, want %q", got, want)
	}
}

func TestKeyOmitsAggregationWhenInsensitive(t *testing.T) {
	if k := Key(Bar, []string{"region"}, Params{Aggregation: AggSum}); k != "bar:region:filter=:sort=none" {
		t.Errorf("single-column bar key = %q", k)
	}
	if k := Key(Scatter, []string{"a", "b"}, Params{Aggregation: AggSum}); k != "scatter:a,b:filter=:sort=none" {
		t.Errorf("scatter key = %q", k)
	}
	if k := Key(GroupedBar, []string{"a", "b", "c"}, Params{Aggregation: AggAverage}); k != "groupedBar:a,b,c:filter=:sort=none:agg=average" {
		t.Errorf("grouped key = %q", k)
	}
}

func TestKeyComponentsChangeKey(t *testing.T) {
	base := Key(Bar, []string{"region", "sales"}, Params{Aggregation: AggSum})
	variants := []string{
		Key(HorizontalBar, []string{"region", "sales"}, Params{Aggregation: AggSum}),
		Key(Bar, []string{"region", "profit"}, Params{Aggregation: AggSum}),
		Key(Bar, []string{"region", "sales"}, Params{Aggregation: AggSum, FilterTop: 3}),
		Key(Bar, []string{"region", "sales"}, Params{Aggregation: AggSum, SortOrder: SortAsc}),
		Key(Bar, []string{"region", "sales"}, Params{Aggregation: AggAverage}),
	}
	for i, v := range variants {
		if v == base {
			t.Errorf("variant %d should differ from base key %q", i, base)
		}
	}
}

func TestParseKeyRoundTrip(t *testing.T) {
	cases := []struct {
		t    Type
		cols []string
		p    Params
	}{
		{Bar, []string{"region", "sales"}, Params{Aggregation: AggSum, FilterTop: 5, SortOrder: SortDesc}},
		{Pie, []string{"region"}, Params{SortOrder: SortAsc}},
		{Correlation, []string{"a", "b", "c"}, Params{}},
		{Scatter, []string{"x", "y"}, Params{SortOrder: SortYDesc}},
	}
	for _, c := range cases {
		key := Key(c.t, c.cols, c.p)
		id, err := ParseKey(key)
		if err != nil {
			t.Fatalf("ParseKey(%q): %v", key, err)
		}
		if id.Type != c.t {
			t.Errorf("type = %s, want %s", id.Type, c.t)
		}
		if len(id.Columns) != len(c.cols) {
			t.Fatalf("columns = %v, want %v", id.Columns, c.cols)
		}
		for i := range c.cols {
			if id.Columns[i] != c.cols[i] {
				t.Errorf("column %d = %q, want %q", i, id.Columns[i], c.cols[i])
			}
		}
		if id.FilterTop != c.p.FilterTop {
			t.Errorf("filterTop = %d, want %d", id.FilterTop, c.p.FilterTop)
		}
		if id.SortOrder != c.p.sortOrder() {
			t.Errorf("sortOrder = %s, want %s", id.SortOrder, c.p.sortOrder())
		}
		if aggregationSensitive(c.t, len(c.cols)) && id.Aggregation != c.p.aggregation() {
			t.Errorf("aggregation = %s, want %s", id.Aggregation, c.p.aggregation())
		}
	}
}

func TestKeyEscapesDelimiters(t *testing.T) {
	cols := []string{"a:b", "c,d", "e%f"}
	key := Key(Correlation, cols, Params{})
	id, err := ParseKey(key)
	if err != nil {
		t.Fatalf("ParseKey(%q): %v", key, err)
	}
	if len(id.Columns) != 3 {
		t.Fatalf("columns = %v", id.Columns)
	}
	for i := range cols {
		if id.Columns[i] != cols[i] {
			t.Errorf("column %d = %q, want %q", i, id.Columns[i], cols[i])
		}
	}
}

func TestParseKeyRejectsGarbage(t *testing.T) {
	for _, bad := range []string{
		"",
		"bar",
		"bar:region",
		"nochart:region:filter=:sort=none",
		"bar:region:filter=x:sort=none",
		"bar:region:bogus:sort=none",
	} {
		if _, err := ParseKey(bad); err == nil {
			t.Errorf("ParseKey(%q) should fail", bad)
		}
	}
}
