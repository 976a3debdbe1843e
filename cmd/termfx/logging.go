package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/termfx/internal/config"
)

// openLog creates the file logger. While a demo runs the terminal belongs to
// the frame, so logs never go to stdout or stderr.
// The returned closer must be called once the logger is no longer used.
func openLog(cfg config.LogConfig, prefix string) (*log.Logger, io.Closer, error) {
	path := cfg.Path
	if path == "" {
		path = config.UserPath("termfx.log")
	}
	if path == "" {
		return log.New(io.Discard), io.NopCloser(nil), nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("cannot create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("cannot open log file: %w", err)
	}

	logger := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
	})
	if cfg.Level != "" {
		level, err := log.ParseLevel(cfg.Level)
		if err != nil {
			f.Close()
			return nil, nil, fmt.Errorf("invalid log level: %w", err)
		}
		logger.SetLevel(level)
	}
	return logger, f, nil
}
