// Package api serves the diagram pipeline over HTTP.
package api

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"

	"erdgraph/internal/db"
	"erdgraph/internal/logger"
	"erdgraph/internal/metadata"
	"erdgraph/internal/store"
	"erdgraph/pkg/config"
)

// ExtractFunc connects to a database and returns its metadata payload.
type ExtractFunc func(ctx context.Context, driver, dsn string, timeout time.Duration) (metadata.DatabaseMetadata, error)

type Server struct {
	store    store.Store
	dialects config.Dialects
	timeout  time.Duration
	extract  ExtractFunc

	activeMu     sync.RWMutex
	activeConfig config.DBConfig
	activeDriver string
	activeDSN    string
}

type Option func(*Server)

// WithExtractor replaces live database introspection, mostly for tests.
func WithExtractor(f ExtractFunc) Option {
	return func(s *Server) { s.extract = f }
}

func WithDialects(d config.Dialects) Option {
	return func(s *Server) { s.dialects = d }
}

func NewServer(st store.Store, timeout time.Duration, opts ...Option) *Server {
	s := &Server{
		store:   st,
		timeout: timeout,
		extract: db.ConnectAndExtract,
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// SetActive sets the active database connection
func (s *Server) SetActive(cfg config.DBConfig, driver, dsn string) {
	s.activeMu.Lock()
	defer s.activeMu.Unlock()
	s.activeConfig = cfg
	s.activeDriver = driver
	s.activeDSN = dsn
}

// active returns the active database connection
func (s *Server) active() (config.DBConfig, string, string) {
	s.activeMu.RLock()
	defer s.activeMu.RUnlock()
	return s.activeConfig, s.activeDriver, s.activeDSN
}

// Router wires every endpoint. Requests outside /api are served from webdir
// when it is set.
func (s *Server) Router(webdir string) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")
	{
		api.GET("/getConnect", s.getConnect)
		api.POST("/connect", s.connect)
		api.GET("/schema", s.schema)
		api.POST("/check", s.check)
		api.POST("/metadata/filter", s.filter)
		api.POST("/import", s.importDiagram)
		api.POST("/reconcile", s.reconcile)
		api.GET("/diagrams/:id", s.getDiagram)
	}

	if webdir != "" {
		r.NoRoute(gin.WrapH(http.FileServer(http.Dir(webdir))))
	}
	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		status := c.Writer.Status()
		if status >= http.StatusInternalServerError {
			logger.Error("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
			return
		}
		logger.Debug("%s %s -> %d (%v)", c.Request.Method, c.Request.URL.Path, status, time.Since(start))
	}
}
