package dataset

import (
	"bufio"
	"encoding/csv"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"
	"time"
)

// LoadOptions bounds ingestion. Zero values take defaults.
type LoadOptions struct {
	// Delimiter overrides sniffing when non-zero.
	Delimiter rune
	// MaxRows caps how many data rows are kept; 0 means unlimited.
	MaxRows int
	// PreviewRows is how many leading rows go into the preview (default 10).
	PreviewRows int
}

const defaultPreviewRows = 10

// LoadCSV reads a delimited file into a classified dataset. Column dtypes and
// groups are inferred from the predominant parse of each column's non-empty
// cells.
func LoadCSV(path string, opt LoadOptions) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()
	return ReadCSV(f, opt)
}

// ReadCSV is LoadCSV over an arbitrary reader.
func ReadCSV(r io.Reader, opt LoadOptions) (*Dataset, error) {
	br := bufio.NewReader(r)
	delim := opt.Delimiter
	if delim == 0 {
		d, err := sniffDelimiter(br)
		if err != nil {
			return nil, err
		}
		delim = d
	}

	cr := csv.NewReader(br)
	cr.Comma = delim
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	names := make([]string, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		names[i] = h
	}

	accs := make([]cellAcc, len(names))
	var cells [][]any
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		row := make([]any, len(names))
		for i := range names {
			var raw string
			if i < len(rec) {
				raw = strings.TrimSpace(rec[i])
			}
			row[i] = accs[i].observe(raw)
		}
		cells = append(cells, row)
		if opt.MaxRows > 0 && len(cells) >= opt.MaxRows {
			break
		}
	}

	cols := make([]Descriptor, len(names))
	for i, name := range names {
		dtype, group := accs[i].classify()
		cols[i] = Descriptor{Name: name, Dtype: dtype, Group: group}
	}

	rows := make([]Row, len(cells))
	for ri, rc := range cells {
		row := make(Row, len(names))
		for ci, name := range names {
			row[name] = rc[ci]
		}
		rows[ri] = row
	}

	preview := opt.PreviewRows
	if preview <= 0 {
		preview = defaultPreviewRows
	}
	if preview > len(rows) {
		preview = len(rows)
	}

	return &Dataset{
		Columns: Classify(cols),
		Rows:    rows,
		Preview: rows[:preview],
	}, nil
}

// cellAcc tallies how each cell in a column parses so the column's dtype can
// be inferred from the predominant kind.
type cellAcc struct {
	total    int
	numeric  int
	integral int
	boolean  int
	datetime int
}

// observe records one raw cell and returns its typed value. Datetime cells
// stay strings so downstream grouping treats them as labels.
func (a *cellAcc) observe(raw string) any {
	if raw == "" {
		return nil
	}
	a.total++
	if b, ok := parseBool(raw); ok {
		a.boolean++
		return b
	}
	if f, ok := parseNumeric(raw); ok {
		a.numeric++
		if f == math.Trunc(f) {
			a.integral++
		}
		return f
	}
	if parseTimeMaybe(raw) {
		a.datetime++
		return raw
	}
	return raw
}

func (a *cellAcc) classify() (dtype, group string) {
	if a.total == 0 {
		return "object", GroupCategorical.String()
	}
	threshold := (a.total * 9) / 10
	switch {
	case a.boolean == a.total:
		return "bool", GroupBoolean.String()
	case a.numeric > threshold:
		if a.integral == a.numeric {
			return "int64", GroupNumerical.String()
		}
		return "float64", GroupNumerical.String()
	case a.datetime > threshold:
		return "datetime64[ns]", GroupDateTime.String()
	default:
		return "object", GroupCategorical.String()
	}
}

func parseBool(s string) (bool, bool) {
	switch strings.ToLower(s) {
	case "true":
		return true, true
	case "false":
		return false, true
	default:
		return false, false
	}
}

func parseNumeric(s string) (float64, bool) {
	s = strings.ReplaceAll(s, ",", "")
	if s == "" {
		return 0, false
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
	"01/02/2006",
	"02/01/2006",
	"2006/01/02",
	"Jan 2, 2006",
}

func parseTimeMaybe(s string) bool {
	for _, layout := range timeLayouts {
		if _, err := time.Parse(layout, s); err == nil {
			return true
		}
	}
	return false
}

// sniffDelimiter inspects the first line for the most frequent candidate
// separator, defaulting to comma.
func sniffDelimiter(br *bufio.Reader) (rune, error) {
	const peek = 4096
	buf, err := br.Peek(peek)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return 0, fmt.Errorf("sniff delimiter: %w", err)
	}
	line := string(buf)
	if i := strings.IndexByte(line, '\n'); i >= 0 {
		line = line[:i]
	}
	best := ','
	bestCount := strings.Count(line, ",")
	for _, cand := range []rune{';', '\t', '|'} {
		if n := strings.Count(line, string(cand)); n > bestCount {
			best, bestCount = cand, n
		}
	}
	return best, nil
}
