// Package server runs an HTTP handler until its context is cancelled, then
// drains connections.
package server

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/dd0wney/cluso-graphviewer/pkg/logging"
)

// Options holds the http.Server timeouts.
type Options struct {
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// GracefulServer wraps an HTTP server with graceful shutdown capabilities
type GracefulServer struct {
	server       *http.Server
	timeout      time.Duration
	logger       logging.Logger
	shutdownCh   chan struct{}
	shutdownOnce sync.Once
	addrCh       chan net.Addr
}

// NewGracefulServer creates a new graceful HTTP server. Zero timeouts take
// the defaults.
func NewGracefulServer(addr string, handler http.Handler, opts Options, logger logging.Logger) *GracefulServer {
	if opts.ReadTimeout == 0 {
		opts.ReadTimeout = 30 * time.Second
	}
	if opts.WriteTimeout == 0 {
		opts.WriteTimeout = 30 * time.Second
	}
	if opts.IdleTimeout == 0 {
		opts.IdleTimeout = 120 * time.Second
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 30 * time.Second
	}
	return &GracefulServer{
		server: &http.Server{
			Addr:           addr,
			Handler:        handler,
			ReadTimeout:    opts.ReadTimeout,
			WriteTimeout:   opts.WriteTimeout,
			IdleTimeout:    opts.IdleTimeout,
			MaxHeaderBytes: 1 << 20,
		},
		timeout:    opts.ShutdownTimeout,
		logger:     logging.OrNop(logger).With(logging.Component("http")),
		shutdownCh: make(chan struct{}),
		addrCh:     make(chan net.Addr, 1),
	}
}

// Run listens and serves until ctx is done, then shuts down within the
// shutdown timeout. A clean shutdown returns nil.
func (gs *GracefulServer) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", gs.server.Addr)
	if err != nil {
		return err
	}
	gs.addrCh <- ln.Addr()
	gs.logger.Info("starting HTTP server", logging.String("addr", ln.Addr().String()))

	errCh := make(chan error, 1)
	go func() {
		if err := gs.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		return gs.Shutdown(gs.timeout)
	}
}

// Addr blocks until Run is listening and returns the bound address.
func (gs *GracefulServer) Addr(ctx context.Context) (net.Addr, error) {
	select {
	case a := <-gs.addrCh:
		gs.addrCh <- a
		return a, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Shutdown initiates a graceful shutdown
func (gs *GracefulServer) Shutdown(timeout time.Duration) error {
	var err error
	gs.shutdownOnce.Do(func() {
		close(gs.shutdownCh)

		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()

		gs.logger.Info("initiating graceful shutdown", logging.Duration("timeout", timeout))
		if err = gs.server.Shutdown(ctx); err != nil {
			gs.logger.Error("shutdown failed", logging.Error(err))
		} else {
			gs.logger.Info("server shutdown complete")
		}
	})
	return err
}

// IsShuttingDown returns true if shutdown has been initiated
func (gs *GracefulServer) IsShuttingDown() bool {
	select {
	case <-gs.shutdownCh:
		return true
	default:
		return false
	}
}

// ShutdownChannel returns a channel that closes when shutdown is initiated
func (gs *GracefulServer) ShutdownChannel() <-chan struct{} {
	return gs.shutdownCh
}
