// Package server initializes and runs the exhibit application server.
// It opens the database, applies migrations, configures the object storage
// gateway, wires the services and starts the HTTP endpoint with graceful
// shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/nick102030/Jolvre-BE/internal/logging"
	"github.com/nick102030/Jolvre-BE/internal/server/config"
	"github.com/nick102030/Jolvre-BE/internal/server/httpapi"
	"github.com/nick102030/Jolvre-BE/internal/server/repositories/repomanager"
	"github.com/nick102030/Jolvre-BE/internal/server/services"
	"github.com/nick102030/Jolvre-BE/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, cfg *config.Config) (*App, error) {
	logger := logging.NewSlogLogger(slog.New(slog.NewJSONHandler(os.Stdout, nil)))

	db, err := sql.Open("pgx", cfg.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db init error: %w", err)
	}

	rm, err := repomanager.NewPostgresRepositoryManager()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("repository manager init error: %w", err)
	}
	if err := rm.RunMigrations(ctx, db); err != nil {
		db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := storage.NewS3Store(cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("object storage init error: %w", err)
	}

	uploads := services.NewUploadService(store, logger, cfg.UploadParallelism)
	exhibits := services.NewExhibitService(db, rm, uploads, store, logger)
	invites := services.NewInviteService(db, rm, logger)

	srv := httpapi.NewServer(exhibits, invites, []byte(cfg.SecretKey), logger)

	return &App{config: cfg, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// Run serves HTTP until the context is cancelled or an OS signal arrives,
// then drains in-flight requests and closes the database.
func (app *App) Run(ctx context.Context) error {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "starting app", "addr", app.config.EndpointAddrHTTP)

	app.initSignalHandler(cancelFunc)

	errCh := make(chan error, 1)
	go func() {
		errCh <- app.server.Run(app.config.EndpointAddrHTTP)
	}()

	select {
	case err := <-errCh:
		app.db.Close()
		return err
	case <-ctx.Done():
	}

	app.logger.Info(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), app.config.ShutdownTimeout)
	defer cancel()

	err := app.server.Shutdown(shutdownCtx)
	if closeErr := app.db.Close(); err == nil {
		err = closeErr
	}
	return err
}
