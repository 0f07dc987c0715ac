// internal/server/server.go
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"pairdp/core/dist"
	"pairdp/internal/engine"
	"pairdp/internal/logging"
	"pairdp/internal/modelfile"
	"pairdp/internal/telemetry"
)

type Config struct {
	Addr      string
	ModelPath string
	Watch     bool
	MaxSeqLen int // 0 = unlimited

	// Engine is the template for every engine the server builds; requests
	// may override Algorithm and ScoreType.
	Engine engine.Config
	Logger *slog.Logger
}

// Server answers alignment requests against one model file. The model can
// be swapped at runtime; in-flight requests finish on the engine they began with.
type Server struct {
	cfg    Config
	log    *slog.Logger
	cur    atomic.Pointer[loaded]
	router *gin.Engine
}

// loaded is one model generation and the engines built from it.
type loaded struct {
	file     *modelfile.Loaded
	template engine.Config
	at       time.Time

	mu      sync.Mutex
	engines map[engineKey]*engine.Engine
}

type engineKey struct {
	algo string
	st   dist.ScoreType
}

func (l *loaded) engine(algo string, st dist.ScoreType) (*engine.Engine, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	k := engineKey{algo, st}
	if e, ok := l.engines[k]; ok {
		return e, nil
	}
	cfg := l.template
	cfg.Algorithm, cfg.ScoreType = algo, st
	e, err := engine.New(l.file.Model, cfg)
	if err != nil {
		return nil, err
	}
	l.engines[k] = e
	return e, nil
}

func New(cfg Config) (*Server, error) {
	s := &Server{cfg: cfg, log: logging.OrDiscard(cfg.Logger)}
	if err := s.Reload(); err != nil {
		return nil, err
	}
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()
	r.Use(gin.Recovery(), otelgin.Middleware(telemetry.TracerName), s.accessLog())
	s.routes(r)
	s.router = r
	return s, nil
}

func (s *Server) Handler() http.Handler { return s.router }

// Reload reads the model file and swaps it in. On failure the current
// model stays.
func (s *Server) Reload() error {
	l, err := modelfile.Load(s.cfg.ModelPath)
	if err != nil {
		telemetry.ModelReloads.WithLabelValues("error").Inc()
		return fmt.Errorf("load model: %w", err)
	}
	tmpl := s.cfg.Engine
	tmpl.ModelDigest = l.Digest
	tmpl.Logger = s.cfg.Logger
	next := &loaded{file: l, template: tmpl, at: time.Now(), engines: map[engineKey]*engine.Engine{}}
	if _, err := next.engine(tmpl.Algorithm, tmpl.ScoreType); err != nil {
		telemetry.ModelReloads.WithLabelValues("error").Inc()
		return err
	}
	prev := s.cur.Swap(next)
	telemetry.ModelReloads.WithLabelValues("ok").Inc()
	if prev != nil {
		s.log.Info("model reloaded", slog.String("model", l.Model.Name()), slog.String("digest", l.Digest[:12]))
	}
	return nil
}

// Run serves until ctx is done, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if s.cfg.Watch {
		go func() {
			if err := s.watch(ctx, 200*time.Millisecond); err != nil {
				s.log.Warn("model watch stopped", slog.Any("error", err))
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("listening", slog.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}
	shutCtx, done := context.WithTimeout(context.Background(), 10*time.Second)
	defer done()
	if err := srv.Shutdown(shutCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.log.Debug("request",
			slog.String("method", c.Request.Method),
			slog.String("path", c.FullPath()),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("took", time.Since(start)),
		)
	}
}
