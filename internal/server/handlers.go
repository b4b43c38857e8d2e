package server

import (
	"encoding/base64"
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/labstack/echo/v4"

	"github.com/KaramelBytes/chartloom-cli/internal/chart"
	"github.com/KaramelBytes/chartloom-cli/internal/report"
)

type errorResponse struct {
	Error string `json:"error"`
}

func errJSON(c echo.Context, code int, msg string) error {
	return c.JSON(code, errorResponse{Error: msg})
}

// handleUpload accepts a multipart file upload and replaces the active
// dataset.
func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "missing file field")
	}
	src, err := fh.Open()
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "open upload: "+err.Error())
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "chartloom-*"+filepath.Ext(fh.Filename))
	if err != nil {
		return errJSON(c, http.StatusInternalServerError, "stage upload: "+err.Error())
	}
	defer os.Remove(tmp.Name())
	if _, err := io.Copy(tmp, src); err != nil {
		tmp.Close()
		return errJSON(c, http.StatusInternalServerError, "stage upload: "+err.Error())
	}
	tmp.Close()

	d, err := s.loadByExtension(tmp.Name())
	if err != nil {
		return errJSON(c, http.StatusBadRequest, "parse dataset: "+err.Error())
	}
	s.SetDataset(d)
	return c.JSON(http.StatusOK, map[string]any{
		"columns": d.Columns,
		"rows":    len(d.Rows),
	})
}

// analysisColumn is the column shape the analysis endpoint serves.
type analysisColumn struct {
	Name  string `json:"name"`
	Dtype string `json:"dtype"`
	Group string `json:"group"`
}

// handleAnalysis returns the classified columns plus a bounded row preview.
func (s *Server) handleAnalysis(c echo.Context) error {
	d, ok := s.currentDataset()
	if !ok {
		return errJSON(c, http.StatusNotFound, "no dataset loaded")
	}
	cols := make([]analysisColumn, len(d.Columns))
	for i, col := range d.Columns {
		cols[i] = analysisColumn{Name: col.Name, Dtype: col.Dtype, Group: col.Group.String()}
	}
	return c.JSON(http.StatusOK, map[string]any{
		"columns": cols,
		"preview": d.Preview,
		"rows":    len(d.Rows),
	})
}

type compatibleRequest struct {
	Columns []string `json:"columns"`
}

func (s *Server) handleCompatible(c echo.Context) error {
	d, ok := s.currentDataset()
	if !ok {
		return errJSON(c, http.StatusNotFound, "no dataset loaded")
	}
	var req compatibleRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	charts := chart.CompatibleCharts(req.Columns, d)
	if charts == nil {
		charts = []chart.Type{}
	}
	return c.JSON(http.StatusOK, map[string]any{"charts": charts})
}

type combosRequest struct {
	Type string `json:"type"`
}

func (s *Server) handleCombos(c echo.Context) error {
	d, ok := s.currentDataset()
	if !ok {
		return errJSON(c, http.StatusNotFound, "no dataset loaded")
	}
	var req combosRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	t, ok := chart.ParseType(req.Type)
	if !ok {
		return errJSON(c, http.StatusBadRequest, "unknown chart type")
	}
	return c.JSON(http.StatusOK, map[string]any{"combos": chart.Combos(t, d)})
}

type validateRequest struct {
	Type    string   `json:"type"`
	Columns []string `json:"columns"`
}

func (s *Server) handleValidate(c echo.Context) error {
	d, ok := s.currentDataset()
	if !ok {
		return errJSON(c, http.StatusNotFound, "no dataset loaded")
	}
	var req validateRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	t, ok := chart.ParseType(req.Type)
	if !ok {
		return errJSON(c, http.StatusBadRequest, "unknown chart type")
	}
	valid := chart.IsValidSelection(t, req.Columns, chart.Combos(t, d))
	return c.JSON(http.StatusOK, map[string]any{"valid": valid})
}

type chartDataRequest struct {
	Type        string   `json:"type"`
	Columns     []string `json:"columns"`
	Aggregation string   `json:"aggregationType"`
	FilterTop   int      `json:"filterTop"`
	SortOrder   string   `json:"sortOrder"`
}

// handleChartData derives the plottable series for a configuration. An
// unbuildable configuration answers 204 rather than an error, mirroring the
// engine's degrade-to-null policy.
func (s *Server) handleChartData(c echo.Context) error {
	d, ok := s.currentDataset()
	if !ok {
		return errJSON(c, http.StatusNotFound, "no dataset loaded")
	}
	var req chartDataRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	t, ok := chart.ParseType(req.Type)
	if !ok {
		return errJSON(c, http.StatusBadRequest, "unknown chart type")
	}
	p := chart.Params{
		Aggregation: chart.Aggregation(req.Aggregation),
		FilterTop:   req.FilterTop,
		SortOrder:   chart.SortOrder(req.SortOrder),
	}
	series := chart.Build(t, req.Columns, d, p)
	if series == nil {
		return c.NoContent(http.StatusNoContent)
	}
	return c.JSON(http.StatusOK, map[string]any{
		"key":    chart.Key(t, req.Columns, p),
		"series": series,
	})
}

type toggleRequest struct {
	Key      string `json:"key"`
	Selected bool   `json:"selected"`
	Image    string `json:"image,omitempty"` // base64-encoded capture
}

// handleReportToggle records a selection decision. A rejected capture answers
// 409 so the client reverts its checkbox.
func (s *Server) handleReportToggle(c echo.Context) error {
	var req toggleRequest
	if err := c.Bind(&req); err != nil {
		return errJSON(c, http.StatusBadRequest, "invalid request body")
	}
	var image []byte
	if req.Image != "" {
		b, err := base64.StdEncoding.DecodeString(req.Image)
		if err != nil {
			return errJSON(c, http.StatusBadRequest, "invalid image encoding")
		}
		image = b
	}
	err := s.store.Toggle(req.Key, req.Selected, image)
	switch {
	case errors.Is(err, report.ErrCaptureFailed):
		return errJSON(c, http.StatusConflict, err.Error())
	case err != nil:
		return errJSON(c, http.StatusBadRequest, err.Error())
	}
	if err := s.store.Save(); err != nil {
		return errJSON(c, http.StatusInternalServerError, "persist report: "+err.Error())
	}
	entry, _ := s.store.Get(req.Key)
	return c.JSON(http.StatusOK, entry)
}

// handleReportList serves the selected entries without image payloads.
func (s *Server) handleReportList(c echo.Context) error {
	type listed struct {
		Key         string `json:"key"`
		Description string `json:"description"`
	}
	var out []listed
	for _, key := range s.store.Selected() {
		e, ok := s.store.Get(key)
		if !ok {
			continue
		}
		out = append(out, listed{Key: key, Description: e.Describe()})
	}
	if out == nil {
		out = []listed{}
	}
	return c.JSON(http.StatusOK, map[string]any{"selected": out})
}
