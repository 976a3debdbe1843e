package remote

import (
	"bytes"
	"context"
	"io"
	"net"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	gossh "golang.org/x/crypto/ssh"

	"github.com/vovakirdan/termfx/internal/config"
	_ "github.com/vovakirdan/termfx/internal/demos"
	"github.com/vovakirdan/termfx/internal/platform/runner"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startServer(t *testing.T, cfg config.ServeConfig) string {
	t.Helper()
	cfg.HostKeyPath = filepath.Join(t.TempDir(), "host_key")

	r, err := runner.New(config.DefaultConfig(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	srv, err := New(cfg, r, WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatalf("New() failed: %v", err)
	}

	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Skipf("cannot listen: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		srv.Serve(ctx, l)
		close(done)
	}()
	t.Cleanup(func() {
		cancel()
		<-done
	})
	return l.Addr().String()
}

func dial(t *testing.T, addr string) *gossh.Session {
	t.Helper()
	client, err := gossh.Dial("tcp", addr, &gossh.ClientConfig{
		User:            "tester",
		HostKeyCallback: gossh.InsecureIgnoreHostKey(),
		Timeout:         5 * time.Second,
	})
	if err != nil {
		t.Fatalf("Dial() failed: %v", err)
	}
	t.Cleanup(func() { client.Close() })

	sess, err := client.NewSession()
	if err != nil {
		t.Fatalf("NewSession() failed: %v", err)
	}
	return sess
}

func TestServeDemoOverSSH(t *testing.T) {
	addr := startServer(t, config.DefaultConfig().Serve)
	sess := dial(t, addr)

	if err := sess.RequestPty("xterm-256color", 12, 40, gossh.TerminalModes{}); err != nil {
		t.Fatalf("RequestPty() failed: %v", err)
	}
	stdin, err := sess.StdinPipe()
	if err != nil {
		t.Fatal(err)
	}
	out := &syncBuffer{}
	sess.Stdout = out

	if err := sess.Start("shapes"); err != nil {
		t.Fatalf("Start() failed: %v", err)
	}

	deadline := time.Now().Add(5 * time.Second)
	for !strings.Contains(out.String(), "\x1b[48;2;") && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !strings.Contains(out.String(), "\x1b[48;2;") {
		t.Fatal("no half-block frame received")
	}

	stdin.Write([]byte{0x03}) // ctrl+c

	waitErr := make(chan error, 1)
	go func() { waitErr <- sess.Wait() }()
	select {
	case err := <-waitErr:
		if err != nil {
			t.Errorf("session ended with %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("session did not end after the quit key")
	}
	if !strings.Contains(out.String(), "\x1b[?1049l") {
		t.Error("alternate screen not left")
	}
}

func TestServeRejectsMissingPTY(t *testing.T) {
	addr := startServer(t, config.DefaultConfig().Serve)
	sess := dial(t, addr)

	var stderr bytes.Buffer
	sess.Stderr = &stderr
	err := sess.Run("planes")

	var exit *gossh.ExitError
	if err == nil || !asExit(err, &exit) || exit.ExitStatus() != 1 {
		t.Errorf("Run() = %v, expected exit status 1", err)
	}
	if !strings.Contains(stderr.String(), "PTY") {
		t.Errorf("stderr = %q, expected PTY hint", stderr.String())
	}
}

func TestServeUnknownDemo(t *testing.T) {
	addr := startServer(t, config.DefaultConfig().Serve)
	sess := dial(t, addr)
	sess.RequestPty("xterm", 12, 40, gossh.TerminalModes{})

	var stderr syncBuffer
	sess.Stderr = &stderr
	sess.Stdout = io.Discard
	err := sess.Run("shpes")

	if err == nil {
		t.Fatal("Run(unknown demo) succeeded")
	}
	if !strings.Contains(stderr.String(), "did you mean shapes") {
		t.Errorf("stderr = %q, expected a suggestion", stderr.String())
	}
}

func TestSessionTerminalSize(t *testing.T) {
	st := &sessionTerminal{cols: 0, rows: 10}
	if _, _, err := st.Size(); err == nil {
		t.Error("Size() with zero width expected error")
	}
	st = &sessionTerminal{cols: 80, rows: 24}
	if c, r, err := st.Size(); err != nil || c != 80 || r != 24 {
		t.Errorf("Size() = %d, %d, %v", c, r, err)
	}
}

func asExit(err error, target **gossh.ExitError) bool {
	e, ok := err.(*gossh.ExitError)
	if ok {
		*target = e
	}
	return ok
}
