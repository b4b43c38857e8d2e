package dataset

import (
	"archive/zip"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path"
	"strconv"
	"strings"
)

// LoadXLSX reads the first worksheet of an .xlsx workbook into a classified
// dataset. Cells are extracted as raw strings and run through the same
// inference as CSV ingestion.
func LoadXLSX(filePath string, opt LoadOptions) (*Dataset, error) {
	f, err := os.Open(filePath)
	if err != nil {
		return nil, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat xlsx: %w", err)
	}
	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		return nil, fmt.Errorf("read xlsx archive: %w", err)
	}

	sheetPath, err := firstSheetPath(zr)
	if err != nil {
		return nil, err
	}
	shared, err := sharedStrings(zr)
	if err != nil {
		return nil, err
	}
	grid, err := sheetRows(zr, sheetPath, shared, opt.MaxRows)
	if err != nil {
		return nil, err
	}
	if len(grid) == 0 {
		return nil, fmt.Errorf("xlsx sheet %s has no rows", sheetPath)
	}
	return fromStringGrid(grid, opt)
}

// fromStringGrid runs header extraction and type inference over raw cells.
func fromStringGrid(grid [][]string, opt LoadOptions) (*Dataset, error) {
	width := 0
	for _, r := range grid {
		if len(r) > width {
			width = len(r)
		}
	}
	names := make([]string, width)
	for i := 0; i < width; i++ {
		var h string
		if i < len(grid[0]) {
			h = strings.TrimSpace(grid[0][i])
		}
		if h == "" {
			h = fmt.Sprintf("column_%d", i+1)
		}
		names[i] = h
	}

	accs := make([]cellAcc, width)
	rows := make([]Row, 0, len(grid)-1)
	for _, rec := range grid[1:] {
		row := make(Row, width)
		for i, name := range names {
			var raw string
			if i < len(rec) {
				raw = strings.TrimSpace(rec[i])
			}
			row[name] = accs[i].observe(raw)
		}
		rows = append(rows, row)
	}

	cols := make([]Descriptor, width)
	for i, name := range names {
		dtype, group := accs[i].classify()
		cols[i] = Descriptor{Name: name, Dtype: dtype, Group: group}
	}

	preview := opt.PreviewRows
	if preview <= 0 {
		preview = defaultPreviewRows
	}
	if preview > len(rows) {
		preview = len(rows)
	}
	return &Dataset{Columns: Classify(cols), Rows: rows, Preview: rows[:preview]}, nil
}

// firstSheetPath resolves the archive path of the workbook's first sheet via
// the workbook relationships.
func firstSheetPath(zr *zip.Reader) (string, error) {
	wb, err := readZipFile(zr, "xl/workbook.xml")
	if err != nil {
		return "", err
	}
	var workbook struct {
		Sheets struct {
			Sheet []struct {
				RID string `xml:"http://schemas.openxmlformats.org/officeDocument/2006/relationships id,attr"`
			} `xml:"sheet"`
		} `xml:"sheets"`
	}
	if err := xml.Unmarshal(wb, &workbook); err != nil {
		return "", fmt.Errorf("parse workbook: %w", err)
	}
	if len(workbook.Sheets.Sheet) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}

	relData, err := readZipFile(zr, "xl/_rels/workbook.xml.rels")
	if err != nil {
		return "", err
	}
	var rels struct {
		Relationship []struct {
			ID     string `xml:"Id,attr"`
			Target string `xml:"Target,attr"`
		} `xml:"Relationship"`
	}
	if err := xml.Unmarshal(relData, &rels); err != nil {
		return "", fmt.Errorf("parse workbook rels: %w", err)
	}
	want := workbook.Sheets.Sheet[0].RID
	for _, rel := range rels.Relationship {
		if rel.ID == want {
			target := rel.Target
			if strings.HasPrefix(target, "/") {
				return path.Clean(strings.TrimPrefix(target, "/")), nil
			}
			return path.Clean(path.Join("xl", target)), nil
		}
	}
	return "", fmt.Errorf("sheet relationship %s not found", want)
}

func sharedStrings(zr *zip.Reader) ([]string, error) {
	data, err := readZipFile(zr, "xl/sharedStrings.xml")
	if err != nil {
		// Workbooks without string cells omit the part.
		return nil, nil
	}
	var sst struct {
		SI []struct {
			T string `xml:"t"`
			R []struct {
				T string `xml:"t"`
			} `xml:"r"`
		} `xml:"si"`
	}
	if err := xml.Unmarshal(data, &sst); err != nil {
		return nil, fmt.Errorf("parse shared strings: %w", err)
	}
	out := make([]string, len(sst.SI))
	for i, si := range sst.SI {
		if len(si.R) > 0 {
			var sb strings.Builder
			for _, run := range si.R {
				sb.WriteString(run.T)
			}
			out[i] = sb.String()
			continue
		}
		out[i] = si.T
	}
	return out, nil
}

// sheetRows walks sheetData cell by cell, placing values by column reference
// so sparse rows keep their alignment.
func sheetRows(zr *zip.Reader, sheetPath string, shared []string, maxRows int) ([][]string, error) {
	rc, err := openZipFile(zr, sheetPath)
	if err != nil {
		return nil, err
	}
	defer rc.Close()

	dec := xml.NewDecoder(rc)
	var grid [][]string
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("parse sheet %s: %w", sheetPath, err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "row" {
			continue
		}
		var row struct {
			C []struct {
				R string `xml:"r,attr"`
				T string `xml:"t,attr"`
				V string `xml:"v"`
				IS struct {
					T string `xml:"t"`
				} `xml:"is"`
			} `xml:"c"`
		}
		if err := dec.DecodeElement(&row, &start); err != nil {
			return nil, fmt.Errorf("parse sheet row: %w", err)
		}
		cells := make([]string, 0, len(row.C))
		for i, c := range row.C {
			idx := colIndexFromRef(c.R)
			if idx < 0 {
				idx = i
			}
			for len(cells) <= idx {
				cells = append(cells, "")
			}
			cells[idx] = cellValue(c.T, c.V, c.IS.T, shared)
		}
		grid = append(grid, cells)
		// Header row plus maxRows data rows.
		if maxRows > 0 && len(grid) > maxRows {
			break
		}
	}
	return grid, nil
}

func cellValue(typ, v, inline string, shared []string) string {
	switch typ {
	case "s":
		idx, err := strconv.Atoi(v)
		if err != nil || idx < 0 || idx >= len(shared) {
			return ""
		}
		return shared[idx]
	case "inlineStr":
		return inline
	case "b":
		if v == "1" {
			return "true"
		}
		return "false"
	default:
		return v
	}
}

// colIndexFromRef converts a cell reference like "C12" to a zero-based column
// index. Returns -1 when the reference has no letters.
func colIndexFromRef(ref string) int {
	idx := 0
	seen := false
	for _, r := range ref {
		if r >= 'A' && r <= 'Z' {
			idx = idx*26 + int(r-'A') + 1
			seen = true
			continue
		}
		break
	}
	if !seen {
		return -1
	}
	return idx - 1
}

func readZipFile(zr *zip.Reader, name string) ([]byte, error) {
	rc, err := openZipFile(zr, name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

func openZipFile(zr *zip.Reader, name string) (io.ReadCloser, error) {
	for _, f := range zr.File {
		if path.Clean(f.Name) == name {
			return f.Open()
		}
	}
	return nil, fmt.Errorf("xlsx part %s not found", name)
}
