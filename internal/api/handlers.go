package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"erdgraph/internal/builder"
	"erdgraph/internal/diagram"
	"erdgraph/internal/expr"
	"erdgraph/internal/logger"
	"erdgraph/internal/metadata"
	"erdgraph/internal/reconcile"
	"erdgraph/internal/store"
	"erdgraph/pkg/config"
)

// getConnect handles GET /api/getConnect
func (s *Server) getConnect(c *gin.Context) {
	cfg, _, _ := s.active()
	cfg.Type = config.NormalizeDriver(cfg.Type)
	success(c, http.StatusOK, cfg, "")
}

// connect handles POST /api/connect. It tests the connection, builds a
// diagram from it and keeps the connection as the active one.
func (s *Server) connect(c *gin.Context) {
	var req config.DBConfig
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid JSON")
		return
	}
	driver, dsn, err := config.BuildDriverAndDSN(req)
	if err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid connection settings")
		return
	}

	m, err := s.extract(c.Request.Context(), driver, dsn, s.timeout)
	if err != nil {
		fail(c, http.StatusInternalServerError, err, "Connection failed")
		return
	}
	s.SetActive(req, driver, dsn)

	t := config.DatabaseType(driver)
	cfg := s.dialects.Apply(t)
	d, report := builder.Build(m, builder.Options{DatabaseType: t, Dialect: &cfg})
	if err := s.store.Put(c.Request.Context(), d); err != nil {
		fail(c, http.StatusInternalServerError, err, "Failed to store diagram")
		return
	}
	logger.Info("connected to %s, diagram %s with %d tables", driver, d.ID, len(d.Tables))

	success(c, http.StatusOK, ImportResult{Diagram: d, Gaps: report.Gaps}, "Connected")
}

// schema handles GET /api/schema using the active connection
func (s *Server) schema(c *gin.Context) {
	_, driver, dsn := s.active()
	if driver == "" || dsn == "" {
		fail(c, http.StatusBadRequest, nil, "No active connection; POST /api/connect to create one")
		return
	}
	m, err := s.extract(c.Request.Context(), driver, dsn, s.timeout)
	if err != nil {
		fail(c, http.StatusInternalServerError, err, "Failed to extract schema")
		return
	}
	success(c, http.StatusOK, m, "")
}

type checkRequest struct {
	Expression string `json:"expression"`
}

// check handles POST /api/check. An invalid expression is a successful
// request whose result says so.
func (s *Server) check(c *gin.Context) {
	var req checkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid JSON")
		return
	}
	success(c, http.StatusOK, expr.Validate(req.Expression), "")
}

type filterRequest struct {
	Metadata  json.RawMessage          `json:"metadata" binding:"required"`
	Selection []metadata.TableSelector `json:"selection"`
}

// filter handles POST /api/metadata/filter
func (s *Server) filter(c *gin.Context) {
	var req filterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid JSON")
		return
	}
	m, err := metadata.Parse(req.Metadata)
	if err != nil {
		rejectMetadata(c, err)
		return
	}
	success(c, http.StatusOK, metadata.Filter(m, req.Selection), "")
}

// importDiagram handles POST /api/import
func (s *Server) importDiagram(c *gin.Context) {
	var req ImportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid JSON")
		return
	}

	var previous *diagram.Diagram
	if req.DiagramID != "" {
		d, err := s.store.Get(c.Request.Context(), req.DiagramID)
		switch {
		case err == nil:
			previous = &d
		case errors.Is(err, store.ErrNotFound):
			logger.Warn("import: diagram %s not stored, building a new one", req.DiagramID)
		default:
			fail(c, http.StatusInternalServerError, err, "Failed to load diagram")
			return
		}
	}

	res, err := Import(req, s.dialects, previous)
	if err != nil {
		rejectMetadata(c, err)
		return
	}
	if err := s.store.Put(c.Request.Context(), res.Diagram); err != nil {
		fail(c, http.StatusInternalServerError, err, "Failed to store diagram")
		return
	}
	if len(res.Gaps) > 0 {
		logger.Debug("import %s: %d references dropped", res.Diagram.ID, len(res.Gaps))
	}
	success(c, http.StatusOK, res, "Diagram imported")
}

type reconcileRequest struct {
	Source diagram.Diagram `json:"source"`
	Target diagram.Diagram `json:"target"`
}

// reconcile handles POST /api/reconcile
func (s *Server) reconcile(c *gin.Context) {
	var req reconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err, "Invalid JSON")
		return
	}
	success(c, http.StatusOK, reconcile.Reconcile(req.Source, req.Target), "")
}

// getDiagram handles GET /api/diagrams/:id
func (s *Server) getDiagram(c *gin.Context) {
	d, err := s.store.Get(c.Request.Context(), c.Param("id"))
	if errors.Is(err, store.ErrNotFound) {
		fail(c, http.StatusNotFound, err, "Diagram not found")
		return
	}
	if err != nil {
		fail(c, http.StatusInternalServerError, err, "Failed to load diagram")
		return
	}
	success(c, http.StatusOK, d, "")
}

func rejectMetadata(c *gin.Context, err error) {
	var serr *metadata.StructuralError
	if errors.As(err, &serr) {
		failWith(c, http.StatusBadRequest, err, gin.H{"issues": serr.Issues}, "Invalid metadata")
		return
	}
	fail(c, http.StatusInternalServerError, err, "Import failed")
}
