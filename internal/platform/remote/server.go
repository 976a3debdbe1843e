// Package remote serves termfx demos over SSH via Wish. Each session with a
// PTY gets its own framebuffer sized to the client's window and runs one
// demo, chosen by the SSH command ("ssh -p 2323 host shapes") or the
// configured default.
package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"

	"github.com/vovakirdan/termfx/internal/config"
	"github.com/vovakirdan/termfx/internal/platform/runner"
	"github.com/vovakirdan/termfx/internal/platform/terminal"
)

// ErrNoPTY is reported to clients that connect without requesting a PTY.
var ErrNoPTY = errors.New("remote: a PTY is required (use ssh -t)")

// Server wraps a Wish SSH server for termfx.
type Server struct {
	cfg    config.ServeConfig
	runner *runner.Runner
	server *ssh.Server
	logger *log.Logger
	active atomic.Int32
}

// Option configures a Server.
type Option func(*Server)

// WithLogger sets the server logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an SSH server that runs demos through r.
func New(cfg config.ServeConfig, r *runner.Runner, opts ...Option) (*Server, error) {
	srv := &Server{
		cfg:    cfg,
		runner: r,
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "termfx-ssh",
		}),
	}
	for _, opt := range opts {
		opt(srv)
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		hostKeyPath = config.UserPath("host_key")
		if hostKeyPath == "" {
			return nil, fmt.Errorf("remote: cannot resolve host key path")
		}
	}

	// Ensure host key directory exists
	if err := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); err != nil {
		return nil, fmt.Errorf("remote: cannot create host key directory: %w", err)
	}

	server, err := wish.NewServer(
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout()),
		wish.WithMiddleware(
			srv.demoMiddleware,
			srv.limitMiddleware,
			srv.loggingMiddleware,
		),
	)
	if err != nil {
		return nil, fmt.Errorf("remote: cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// demoMiddleware runs the requested demo for the session.
func (s *Server) demoMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		if err := s.serveSession(sess); err != nil {
			fmt.Fprintf(sess.Stderr(), "termfx: %v\r\n", err)
			sess.Exit(1)
			return
		}
		next(sess)
	}
}

func (s *Server) serveSession(sess ssh.Session) error {
	pty, winCh, ok := sess.Pty()
	if !ok {
		return ErrNoPTY
	}

	demoID := s.cfg.DefaultDemo
	if args := sess.Command(); len(args) > 0 {
		demoID = args[0]
	}

	if err := s.runner.Check(demoID); err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(sess.Context())
	defer cancel()

	// Resizes are not tracked; drain them so the session never blocks.
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-winCh:
				if !ok {
					return
				}
			}
		}
	}()

	t := &sessionTerminal{sess: sess, cols: pty.Window.Width, rows: pty.Window.Height}
	if err := terminal.Enter(sess, "termfx: "+demoID); err != nil {
		return err
	}
	defer terminal.Leave(sess)

	stats, err := s.runner.Run(ctx, t, demoID, sess.User())
	s.logger.Info("demo finished", "user", sess.User(), "demo", demoID,
		"frames", stats.Frames, "keys", stats.Keys, "err", err)
	return err
}

// limitMiddleware rejects sessions beyond the configured maximum.
func (s *Server) limitMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		if limit := int32(s.cfg.MaxSessions); limit > 0 {
			if s.active.Add(1) > limit {
				s.active.Add(-1)
				fmt.Fprint(sess.Stderr(), "termfx: server is full, try again later\r\n")
				sess.Exit(1)
				return
			}
			defer s.active.Add(-1)
		}
		next(sess)
	}
}

// loggingMiddleware logs SSH session events.
func (s *Server) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		s.logger.Info("session started",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
		next(sess)
		s.logger.Info("session ended",
			"user", sess.User(),
			"remote", sess.RemoteAddr().String(),
		)
	}
}

// ListenAndServe listens on the configured address and serves until ctx is
// cancelled.
func (s *Server) ListenAndServe(ctx context.Context) error {
	l, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("remote: %w", err)
	}
	return s.Serve(ctx, l)
}

// Serve accepts sessions on l until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) Serve(ctx context.Context, l net.Listener) error {
	s.logger.Info("starting SSH server", "address", l.Addr().String())

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.Serve(l); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("remote: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *Server) Addr() string {
	return s.cfg.Address
}

// sessionTerminal adapts an SSH session to engine.Terminal.
type sessionTerminal struct {
	sess       ssh.Session
	cols, rows int
}

func (t *sessionTerminal) Size() (int, int, error) {
	if t.cols <= 0 || t.rows <= 0 {
		return 0, 0, fmt.Errorf("remote: client window is %dx%d", t.cols, t.rows)
	}
	return t.cols, t.rows, nil
}

func (t *sessionTerminal) Write(p []byte) (int, error) { return t.sess.Write(p) }

func (t *sessionTerminal) Input() io.Reader { return t.sess }
