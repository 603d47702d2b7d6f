// Package api serves the dispatcher over HTTP.
package api

import (
	"context"
	stderrors "errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	lru "github.com/hashicorp/golang-lru/v2"

	"lawkit/app"
	"lawkit/domain/law"
	"lawkit/internal/config"
)

// Server exposes the analysis endpoints
type Server struct {
	router     *gin.Engine
	dispatcher *app.Dispatcher
	cfg        config.ServerConfig
	logger     *slog.Logger

	// responses holds recent results keyed by law and request body;
	// nil when caching is disabled.
	responses *lru.Cache[string, []law.Result]
}

// NewServer builds the router. The gin mode is process-global, so it is set
// here once from the configuration.
func NewServer(dispatcher *app.Dispatcher, cfg config.ServerConfig, logger *slog.Logger) (*Server, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}

	s := &Server{
		router:     gin.New(),
		dispatcher: dispatcher,
		cfg:        cfg,
		logger:     logger.With("component", "api"),
	}
	if cfg.CacheSize > 0 {
		cache, err := lru.New[string, []law.Result](cfg.CacheSize)
		if err != nil {
			return nil, err
		}
		s.responses = cache
	}

	s.router.Use(gin.Recovery(), s.requestID(), s.accessLog())
	s.setupRoutes()
	return s, nil
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	v1.Use(s.limitBody())
	v1.POST("/law/:law", s.handleLaw)
}

// Handler returns the HTTP handler, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:        s.cfg.Addr,
		Handler:     s.router,
		ReadTimeout: s.cfg.ReadTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.cfg.Addr)
		if err := srv.ListenAndServe(); err != nil && !stderrors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	s.logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	return <-errCh
}
