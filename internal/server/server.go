// Package server runs an http.Handler until its context is cancelled.
package server

import (
	"context"
	stderrors "errors"
	"net"
	"net/http"
	"time"

	"abtest/internal"
	"abtest/internal/config"
)

// Server wraps http.Server with context-driven graceful shutdown
type Server struct {
	httpSrv         *http.Server
	shutdownTimeout time.Duration
	logger          *internal.Logger
}

// New creates a server for handler using the configured timeouts
func New(cfg config.ServerConfig, handler http.Handler, logger *internal.Logger) *Server {
	if logger == nil {
		logger = internal.NewNopLogger()
	}
	return &Server{
		httpSrv: &http.Server{
			Addr:              ":" + cfg.Port,
			Handler:           handler,
			ReadTimeout:       cfg.ReadTimeout,
			ReadHeaderTimeout: cfg.ReadTimeout,
		},
		shutdownTimeout: cfg.ShutdownTimeout,
		logger:          logger,
	}
}

// ListenAndServe binds the configured address and serves until ctx is done
func (s *Server) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.httpSrv.Addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done, then drains in-flight
// requests for at most the shutdown timeout.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening on %s", ln.Addr())
		errCh <- s.httpSrv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.shutdownTimeout)
	defer cancel()
	if err := s.httpSrv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !stderrors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
