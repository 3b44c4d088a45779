// Package server runs the bridge and metrics listeners and reports their
// lifecycle through the logger.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"golang.org/x/sync/errgroup"

	"attachbridge/internal/logging"
)

// DefaultShutdownTimeout bounds graceful shutdown of a listener.
const DefaultShutdownTimeout = 10 * time.Second

// probeTimeout bounds a single Probe dial.
const probeTimeout = time.Second

// ErrAddrInUse is returned by Listen when another process owns the address.
var ErrAddrInUse = errors.New("address already in use")

// Server runs the bridge fiber app on one TCP address.
type Server struct {
	app    *fiber.App
	addr   string
	logger *slog.Logger
	ln     net.Listener
}

// New returns a Server for app on addr. Nothing is bound until Listen or Run.
func New(addr string, app *fiber.App, logger *slog.Logger) *Server {
	return &Server{app: app, addr: addr, logger: logger}
}

// Listen binds the address and returns the bound address, which differs from
// the configured one when the port is 0.
func (s *Server) Listen() (net.Addr, error) {
	s.logger.Info("server starting", logging.Addr(s.addr))

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		inUse := errors.Is(err, syscall.EADDRINUSE)
		s.logger.Error("bind error", logging.Addr(s.addr), slog.Bool("in_use", inUse), logging.Err(err))
		if inUse {
			return nil, fmt.Errorf("listen %s: %w", s.addr, ErrAddrInUse)
		}
		return nil, fmt.Errorf("listen %s: %w", s.addr, err)
	}
	s.ln = ln
	return ln.Addr(), nil
}

// Serve serves on the bound listener until ctx is done, then shuts down
// gracefully. Listen must have succeeded.
func (s *Server) Serve(ctx context.Context) error {
	if s.ln == nil {
		return errors.New("serve called before listen")
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.logger.Info("server started", logging.Addr(s.ln.Addr().String()))
		if err := s.app.Listener(s.ln); err != nil {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), DefaultShutdownTimeout)
		defer cancel()

		if err := s.app.ShutdownWithContext(shutdownCtx); err != nil {
			return fmt.Errorf("server shutdown: %w", err)
		}
		return nil
	})

	err := g.Wait()
	s.logger.Info("server stopped", logging.Addr(s.ln.Addr().String()), logging.Err(err))
	return err
}

// Run is Listen followed by Serve.
func (s *Server) Run(ctx context.Context) error {
	if _, err := s.Listen(); err != nil {
		return err
	}
	return s.Serve(ctx)
}

// Probe reports whether something accepts TCP connections on addr.
func Probe(ctx context.Context, addr string) bool {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", addr)
	if err != nil {
		return false
	}
	_ = conn.Close()
	return true
}
