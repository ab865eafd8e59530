package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"registrar/internal/audit"
	"registrar/internal/audit/publisher"
	auditmemory "registrar/internal/audit/store/memory"
	auditpostgres "registrar/internal/audit/store/postgres"
	"registrar/internal/platform/config"
	"registrar/internal/platform/httpserver"
	"registrar/internal/platform/logger"
	platformmetrics "registrar/internal/platform/metrics"
	"registrar/internal/platform/mongodb"
	"registrar/internal/platform/postgres"
	"registrar/internal/student"
	"registrar/internal/student/metrics"
	"registrar/internal/student/service"
	"registrar/internal/student/store"
	httptransport "registrar/internal/transport/http"
)

const (
	auditBufferSize = 256
	shutdownTimeout = 10 * time.Second
)

// main wires dependencies and owns the server lifecycle. Business logic
// lives in the internal service packages.
func main() {
	cfg := config.MustLoad()
	log := logger.New(cfg.Env)

	ctx := context.Background()

	students, auditStore, closeStorage, err := setupStorage(ctx, cfg, log)
	if err != nil {
		log.Error("storage setup failed", "backend", cfg.Database.Backend, "error", err)
		os.Exit(1)
	}
	defer closeStorage()

	auditPublisher := publisher.NewPublisher(auditStore, publisher.WithAsyncBuffer(auditBufferSize))

	svc := student.NewService(students,
		service.WithLogger(log),
		service.WithAuditPublisher(auditPublisher),
		service.WithMetrics(metrics.New()),
	)

	router := httptransport.NewRouter(student.NewHandler(svc, log), svc, log, httptransport.Config{
		CORSOrigins: cfg.CORS.Origins,
		Metrics:     platformmetrics.New(),
	})

	srv := httpserver.New(cfg.Addr, router)

	go func() {
		log.Info("starting registrar",
			"addr", cfg.Addr,
			"backend", cfg.Database.Backend,
			"env", cfg.Env,
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("graceful shutdown failed", "error", err)
	}

	// Drains any buffered audit events before the stores go away.
	auditPublisher.Close()

	log.Info("server stopped")
}

// setupStorage connects the configured backend and returns the student store,
// the audit store, and a close function for shutdown. The postgres backend
// persists the audit trail next to the students; the mongo backend keeps it
// in process memory.
func setupStorage(ctx context.Context, cfg *config.Config, log *slog.Logger) (store.Store, audit.Store, func(), error) {
	switch cfg.Database.Backend {
	case config.BackendPostgres:
		if err := postgres.Migrate(ctx, cfg.Database.PostgresDSN); err != nil {
			return nil, nil, nil, fmt.Errorf("migrate postgres: %w", err)
		}
		pool, err := postgres.New(ctx, cfg.Database.PostgresDSN)
		if err != nil {
			return nil, nil, nil, err
		}
		log.Info("connected to postgres")
		return store.NewPostgres(pool), auditpostgres.New(pool), pool.Close, nil

	case config.BackendMongo:
		client, db, err := mongodb.Connect(ctx, mongodb.Config{
			URI:         cfg.Database.Mongo.URI,
			Database:    cfg.Database.Mongo.Database,
			MinPoolSize: cfg.Database.Mongo.MinPoolSize,
			MaxPoolSize: cfg.Database.Mongo.MaxPoolSize,
			MaxIdleTime: cfg.Database.Mongo.MaxIdleTime,
		})
		if err != nil {
			return nil, nil, nil, err
		}

		mongoStore := store.NewMongo(db)
		if err := mongoStore.EnsureIndexes(ctx); err != nil {
			_ = client.Disconnect(context.WithoutCancel(ctx))
			return nil, nil, nil, fmt.Errorf("ensure mongo indexes: %w", err)
		}
		log.Info("connected to mongodb", "database", cfg.Database.Mongo.Database)

		closeFn := func() {
			disconnectCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = client.Disconnect(disconnectCtx)
		}
		return mongoStore, auditmemory.NewInMemoryStore(), closeFn, nil

	default:
		return nil, nil, nil, fmt.Errorf("unsupported database backend %q", cfg.Database.Backend)
	}
}
