package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/probablyarth/dynload-go"
)

const (
	shutdownTimeout   = 10 * time.Second
	readHeaderTimeout = 10 * time.Second
	maxManifestBytes  = 1 << 20
)

// Server exposes a process-lifetime Loader over HTTP.
type Server struct {
	echo     *echo.Echo
	loader   *dynload.Loader
	ns       dynload.Namespace
	gatherer prometheus.Gatherer
	logger   *slog.Logger
	addr     string
	retry    int
}

// Option configures a Server created by NewServer.
type Option func(*Server)

// WithDefaultRetry sets the retry budget for batches that do not set one.
func WithDefaultRetry(n int) Option {
	return func(s *Server) {
		if n > 0 {
			s.retry = n
		}
	}
}

// NewServer creates and configures a new HTTP server. Artifacts are read from
// ns and metrics served from gatherer.
func NewServer(addr string, loader *dynload.Loader, ns dynload.Namespace, gatherer prometheus.Gatherer, logger *slog.Logger, opts ...Option) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Server.ReadHeaderTimeout = readHeaderTimeout

	srv := &Server{
		echo:     e,
		loader:   loader,
		ns:       ns,
		gatherer: gatherer,
		logger:   logger,
		addr:     addr,
	}
	for _, opt := range opts {
		opt(srv)
	}

	e.Use(middleware.RequestID())
	e.Use(middleware.Recover())
	e.Use(srv.loggingMiddleware)
	e.Use(srv.loaderMiddleware)

	srv.routes()

	return srv
}

func (s *Server) routes() {
	s.echo.GET("/healthz", s.handleHealthz)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))

	v1 := s.echo.Group("/v1")
	v1.POST("/batches", s.handleLoadBatch)
	v1.GET("/cache", s.handleGetCache)
}

// Handler returns the HTTP handler serving all routes.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Run serves until ctx is cancelled, then shuts down gracefully. Loads that are
// still running are not interrupted.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server listening", "addr", s.addr)
		if err := s.echo.Start(s.addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down", "cause", context.Cause(ctx))
	case err, ok := <-errCh:
		if ok {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := s.echo.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}

	s.logger.Info("server stopped")
	return nil
}

// loaderMiddleware attaches the process loader to every request context.
func (s *Server) loaderMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx := dynload.WithLoader(c.Request().Context(), s.loader)
		c.SetRequest(c.Request().WithContext(ctx))
		return next(c)
	}
}

// loggingMiddleware logs each request using the structured logger.
func (s *Server) loggingMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		if err := next(c); err != nil {
			c.Error(err)
		}

		s.logger.Info("request",
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", c.Response().Status,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", c.Response().Header().Get(echo.HeaderXRequestID),
		)
		return nil
	}
}
