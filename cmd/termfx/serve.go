package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/termfx/internal/platform/remote"
	"github.com/vovakirdan/termfx/internal/platform/runner"
	"github.com/vovakirdan/termfx/internal/storage"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout int
	flagDefaultDemo string
	flagMaxSessions int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the termfx SSH server",
	Long: `Start an SSH server that shows demos to connecting users.

Each SSH connection with a PTY runs one demo on a framebuffer sized to the
client's window. The demo is taken from the SSH command, or the default
demo when no command is given. Runs are recorded in the same statistics
database as local runs, labelled with the SSH user.

Host key handling:
  - If --host-key is provided, uses that key file (created if missing)
  - Otherwise, uses serve.host_key_path from the config

Examples:
  termfx serve                           # Listen on :2323
  termfx serve --ssh :2222               # Listen on port 2222
  termfx serve --host-key ./my_host_key  # Use specific host key
  termfx serve --default-demo bounce     # Demo for plain "ssh host"

Users can connect with:
  ssh -t localhost -p 2323
  ssh -t localhost -p 2323 shapes`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (host:port)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file")
	serveCmd.Flags().IntVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout in seconds before disconnecting")
	serveCmd.Flags().StringVar(&flagDefaultDemo, "default-demo", "", "Demo to run when the client sends no command")
	serveCmd.Flags().IntVar(&flagMaxSessions, "max-sessions", 0, "Maximum concurrent sessions (0 = from config)")
}

func runServe(cmd *cobra.Command, _ []string) {
	cfg, err := loadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}

	sc := cfg.Serve
	if flagSSHAddr != "" {
		sc.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		sc.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		sc.IdleTimeoutS = flagIdleTimeout
	}
	if flagDefaultDemo != "" {
		sc.DefaultDemo = flagDefaultDemo
	}
	if flagMaxSessions > 0 {
		sc.MaxSessions = flagMaxSessions
	}

	// The server owns no terminal, so it logs to stderr.
	logger := log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		Prefix:          "termfx-ssh",
	})
	if level, err := log.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	}

	store, err := storage.Open(dbPath(cfg))
	if err != nil {
		logger.Warn("could not open statistics database, runs will not be recorded", "err", err)
		store = nil
	}

	r, err := runner.New(cfg, store, logger)
	if err != nil {
		closeStore(store)
		fmt.Fprintf(os.Stderr, "Error loading assets: %v\n", err)
		os.Exit(1)
	}
	if err := r.Check(sc.DefaultDemo); err != nil {
		closeStore(store)
		fmt.Fprintf(os.Stderr, "Error: default demo: %v\n", err)
		os.Exit(1)
	}

	server, err := remote.New(sc, r, remote.WithLogger(logger))
	if err != nil {
		closeStore(store)
		fmt.Fprintf(os.Stderr, "Error creating server: %v\n", err)
		os.Exit(1)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Printf("Starting termfx SSH server on %s\n", server.Addr())
	fmt.Printf("Connect with: ssh -t localhost -p %s\n", portOf(server.Addr()))
	fmt.Println("Press Ctrl+C to stop")

	err = server.ListenAndServe(ctx)
	closeStore(store)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Server error: %v\n", err)
		os.Exit(1)
	}
}

func closeStore(store *storage.Store) {
	if store != nil {
		store.Close()
	}
}

// portOf returns the port part of a listen address such as ":2323".
func portOf(addr string) string {
	if _, port, err := net.SplitHostPort(addr); err == nil {
		return port
	}
	return addr
}
