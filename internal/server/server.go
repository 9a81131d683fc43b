// Package server is the HTTP surface: the validation endpoint, two
// SharePoint connectivity probes, metrics and liveness.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/gzip"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/heptiolabs/healthcheck"
	"go.uber.org/zap"

	"github.com/dshills/docstyle/internal/graph"
	"github.com/dshills/docstyle/internal/rule"
	"github.com/dshills/docstyle/internal/validate"
)

// RuleStore supplies the active rule set.
type RuleStore interface {
	FetchRules(ctx context.Context) ([]rule.Rule, error)
}

// FileStore reads and writes documents by server-relative path.
type FileStore interface {
	Download(ctx context.Context, path string) ([]byte, error)
	Upload(ctx context.Context, data []byte, path string) (string, error)
}

// StatusSink writes the status columns of a document item.
type StatusSink interface {
	UpdateStatus(ctx context.Context, itemID, status, reportURL string) error
}

// ResultStore keeps a record of each run and links it from the document.
type ResultStore interface {
	SaveResult(ctx context.Context, rec graph.Record) (string, error)
	LinkResult(ctx context.Context, filePath, resultURL string) error
}

// SiteInfo backs the connectivity endpoints.
type SiteInfo interface {
	Site(ctx context.Context) (*graph.Site, error)
	ListDocuments(ctx context.Context) ([]graph.DriveItem, error)
}

type Validator interface {
	Validate(ctx context.Context, data []byte, rules []rule.Rule, dt rule.DocType) (*validate.Result, error)
}

// Deps are the collaborators of a Server. Rules, Files, Validator are
// required; the rest may be nil.
type Deps struct {
	Rules     RuleStore
	Files     FileStore
	Status    StatusSink
	Results   ResultStore
	Site      SiteInfo
	Validator Validator

	SiteURL        string
	Metrics        http.Handler
	Log            *zap.Logger
	RequestTimeout time.Duration
	Now            func() time.Time
}

type Server struct {
	d      Deps
	engine *gin.Engine
}

const (
	runIDHeader = "X-Run-Id"
	logKey      = "docstyle.log"
)

// New builds the router. gin runs in release mode.
func New(d Deps) *Server {
	if d.Log == nil {
		d.Log = zap.NewNop()
	}
	if d.Now == nil {
		d.Now = time.Now
	}

	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(ginzap.Ginzap(d.Log, time.RFC3339, true))
	r.Use(ginzap.RecoveryWithZap(d.Log, true))
	r.Use(gzip.Gzip(gzip.DefaultCompression))
	r.Use(runID(d.Log))

	s := &Server{d: d, engine: r}

	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "online") })
	api := r.Group("/api")
	{
		api.POST("/ValidateDocument", s.validateDocument)
		api.GET("/ValidateDocument", s.validateDocument)
		api.GET("/TestSharePoint", s.testSharePoint)
		api.GET("/ListDocuments", s.listDocuments)
	}
	if d.Metrics != nil {
		r.GET("/metrics", gin.WrapH(d.Metrics))
	}
	return s
}

func (s *Server) Handler() http.Handler { return s.engine }

// Run serves on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.engine, ReadHeaderTimeout: 10 * time.Second}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.d.Log.Info("listening", zap.String("addr", addr))

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdown, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdown)
	}
}

// Health returns the /live and /ready handler for the side port. ready may
// be nil.
func Health(ready func() error) http.Handler {
	h := healthcheck.NewHandler()
	h.AddLivenessCheck("goroutine-threshold", healthcheck.GoroutineCountCheck(1000))
	if ready != nil {
		h.AddReadinessCheck("graph-token", ready)
	}
	return h
}

// runID tags every request with a fresh id, echoed in X-Run-Id and
// attached to the request logger.
func runID(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := uuid.NewString()
		c.Header(runIDHeader, id)
		c.Set(logKey, log.With(zap.String("run_id", id)))
		c.Next()
	}
}

func logger(c *gin.Context) *zap.Logger {
	if v, ok := c.Get(logKey); ok {
		return v.(*zap.Logger)
	}
	return zap.NewNop()
}
