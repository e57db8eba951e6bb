// Package main is the entry point for the gogitracker server.
//
// main stays minimal: load configuration, build the logger, create the data
// directory, hand everything to internal/server. All actual behaviour lives
// in the imported packages.
package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/YashchenkoBV/gogitracker/internal/config"
	"github.com/YashchenkoBV/gogitracker/internal/server"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		// The logger depends on config, so this one failure goes to stderr
		// directly.
		os.Stderr.WriteString("config error: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))

	// The logger is created once here and injected everywhere — services
	// never reach for a global.
	if dir := filepath.Dir(cfg.DBPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("failed to create database directory",
				slog.String("dir", dir),
				slog.String("error", err.Error()),
			)
			os.Exit(1)
		}
	}

	srv, err := server.New(cfg, logger)
	if err != nil {
		logger.Error("failed to create server", slog.String("error", err.Error()))
		os.Exit(1)
	}

	if err := srv.Start(); err != nil {
		logger.Error("server error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
