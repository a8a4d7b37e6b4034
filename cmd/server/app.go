package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"

	"github.com/taskpulse/taskpulse/internal/config"
	"github.com/taskpulse/taskpulse/internal/events"
	"github.com/taskpulse/taskpulse/internal/notification"
	"github.com/taskpulse/taskpulse/internal/platform/postgres"
	"github.com/taskpulse/taskpulse/internal/platform/redisbroker"
	"github.com/taskpulse/taskpulse/internal/reminder"
	"github.com/taskpulse/taskpulse/internal/service"
	"github.com/taskpulse/taskpulse/internal/store"
)

// application holds every wired component plus the handles needed for a
// graceful shutdown in dependency order.
type application struct {
	config *config.Config
	logger *slog.Logger

	db          *sql.DB
	redisClient *redis.Client

	dispatcher *events.Dispatcher
	audit      *service.AuditLogService
	tasks      service.TaskService
	consumer   *notification.Consumer
	scanner    *reminder.Scanner
}

// newApplication wires the full pipeline: stores, transaction manager,
// dispatcher, publisher, broker, consumer, reminder scanner and the audit
// recorder.
func newApplication(cfg *config.Config, logger *slog.Logger) (*application, error) {
	db, err := sql.Open("pgx", cfg.Database.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, err
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err := redisClient.Ping(pingCtx).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping redis: %w", err)
	}

	taskStore := postgres.NewPostgresTaskStore(db, logger)
	userStore := postgres.NewPostgresUserStore(db, logger)
	auditStore := postgres.NewPostgresAuditLogStore(db, logger)

	auditService := service.NewAuditLogService(auditStore, logger)
	dispatcher := events.NewDispatcher(logger)

	brk := redisbroker.New(redisClient, logger)
	publisher := notification.NewPublisher(
		userStore,
		brk,
		cfg.Notification.Topic,
		cfg.Notification.Enabled,
		logger,
	)
	dispatcher.Subscribe(publisher)

	registry := notification.NewRegistry()
	if cfg.Notification.EmailConfigured() {
		mailer := notification.NewSMTPMailer(
			cfg.Notification.SMTPHost,
			cfg.Notification.SMTPPort,
			cfg.Notification.SMTPFrom,
		)
		registry.Register(
			notification.NewEmailChannel(mailer, logger),
			notification.TypeTaskAssigned,
			notification.TypeTaskStatusChanged,
			notification.TypeTaskReminder,
			notification.TypeTaskOverdue,
		)
	} else {
		logger.Warn("smtp host not configured, email delivery disabled")
	}

	consumer := notification.NewConsumer(
		brk,
		cfg.Notification.Topic,
		cfg.Notification.GroupID,
		registry,
		logger,
	)

	tasks, err := service.NewTaskService(
		store.NewTxManager(db),
		taskStore,
		userStore,
		auditService,
		dispatcher,
		logger,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create task service: %w", err)
	}

	scanner := reminder.NewScanner(
		tasks,
		cfg.Notification.ReminderLead(),
		cfg.Notification.ReminderScanInterval,
		logger,
	)

	return &application{
		config:      cfg,
		logger:      logger,
		db:          db,
		redisClient: redisClient,
		dispatcher:  dispatcher,
		audit:       auditService,
		tasks:       tasks,
		consumer:    consumer,
		scanner:     scanner,
	}, nil
}

// run starts the background components and the HTTP server, then blocks until
// a shutdown signal arrives.
func (app *application) run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := app.consumer.Start(ctx); err != nil {
		return fmt.Errorf("failed to start notification consumer: %w", err)
	}
	app.scanner.Start(ctx)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", app.config.Server.Port),
		Handler: app.router(),
	}

	serverErr := make(chan error, 1)
	go func() {
		app.logger.Info("starting server", "port", app.config.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	shutdownCh := make(chan os.Signal, 1)
	signal.Notify(shutdownCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdownCh:
		app.logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		app.logger.Error("server failed", "error", err)
		return err
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		app.logger.Error("server shutdown failed", "error", err)
	}

	app.cleanup()
	app.logger.Info("shutdown complete")
	return nil
}

// cleanup stops components in dependency order: stop producing new work
// (scanner), drain in-flight events (dispatcher), stop consuming, wait for
// audit writes, then close connections.
func (app *application) cleanup() {
	app.scanner.Stop()
	app.dispatcher.Close()
	app.consumer.Stop()
	app.audit.Wait()

	if err := app.redisClient.Close(); err != nil {
		app.logger.Error("failed to close redis client", "error", err)
	}
	if err := app.db.Close(); err != nil {
		app.logger.Error("failed to close database", "error", err)
	}
}

// router builds the operational HTTP surface: liveness and readiness probes.
func (app *application) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	r.Get("/readyz", func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := app.db.PingContext(ctx); err != nil {
			http.Error(w, "database unavailable", http.StatusServiceUnavailable)
			return
		}
		if err := app.redisClient.Ping(ctx).Err(); err != nil {
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
	})

	return r
}
