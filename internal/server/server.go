package server

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/KaramelBytes/chartloom-cli/internal/config"
	"github.com/KaramelBytes/chartloom-cli/internal/dataset"
	"github.com/KaramelBytes/chartloom-cli/internal/report"
)

// Server exposes the analysis engine over HTTP: dataset upload and
// inspection, chart compatibility, series derivation, and report selection.
type Server struct {
	echo  *echo.Echo
	cfg   *config.Global
	store *report.Store

	mu sync.RWMutex
	ds *dataset.Dataset
}

// New wires routes and middleware. The store may be pre-loaded from disk.
func New(cfg *config.Global, store *report.Store) *Server {
	s := &Server{
		echo:  echo.New(),
		cfg:   cfg,
		store: store,
	}
	s.echo.HideBanner = true
	s.echo.Use(middleware.Recover())
	if cfg.ServerAccessLogged {
		s.echo.Use(middleware.Logger())
	}
	if cfg.ServerCORSEnabled {
		s.echo.Use(middleware.CORS())
	}
	if cfg.ServerMaxUploadMB > 0 {
		s.echo.Use(middleware.BodyLimit(fmt.Sprintf("%dM", cfg.ServerMaxUploadMB)))
	}

	s.echo.POST("/upload", s.handleUpload)
	s.echo.GET("/analysis", s.handleAnalysis)
	s.echo.POST("/charts/compatible", s.handleCompatible)
	s.echo.POST("/charts/combos", s.handleCombos)
	s.echo.POST("/charts/validate", s.handleValidate)
	s.echo.POST("/charts/data", s.handleChartData)
	s.echo.POST("/report/toggle", s.handleReportToggle)
	s.echo.GET("/report", s.handleReportList)
	return s
}

// SetDataset installs a pre-loaded dataset, e.g. from a --file flag.
func (s *Server) SetDataset(d *dataset.Dataset) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ds = d
}

func (s *Server) currentDataset() (*dataset.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.ds == nil {
		return nil, false
	}
	return s.ds, true
}

// Start blocks serving HTTP on the configured address.
func (s *Server) Start() error {
	s.echo.Server.ReadTimeout = time.Duration(s.cfg.ServerTimeoutSec) * time.Second
	s.echo.Server.WriteTimeout = time.Duration(s.cfg.ServerTimeoutSec) * time.Second
	return s.echo.Start(s.cfg.ServerAddr)
}

// Handler exposes the underlying http.Handler, primarily for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// loadByExtension dispatches a saved upload to the matching reader.
func (s *Server) loadByExtension(path string) (*dataset.Dataset, error) {
	opt := dataset.LoadOptions{
		MaxRows:     s.cfg.MaxRows,
		PreviewRows: s.cfg.PreviewRows,
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx":
		return dataset.LoadXLSX(path, opt)
	default:
		return dataset.LoadCSV(path, opt)
	}
}
