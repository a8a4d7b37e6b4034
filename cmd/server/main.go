// Package main implements the entry point for the TaskPulse server, which
// mutates tasks transactionally, dispatches committed task events, and runs
// the notification pipeline end to end.
package main

import (
	"log"
	"log/slog"

	"github.com/taskpulse/taskpulse/internal/config"
	"github.com/taskpulse/taskpulse/internal/platform/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	appLogger, err := logger.Setup(cfg.Server)
	if err != nil {
		log.Fatalf("failed to set up logger: %v", err)
	}

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"log_level", cfg.Server.LogLevel,
		"notifications_enabled", cfg.Notification.Enabled)

	app, err := newApplication(cfg, appLogger)
	if err != nil {
		log.Fatalf("failed to initialize application: %v", err)
	}

	if err := app.run(); err != nil {
		log.Fatalf("application exited with error: %v", err)
	}
}
