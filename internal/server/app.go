// Package server initializes and runs the application server: it opens the
// metadata database, applies migrations, builds the content store and the
// key wrapper, and serves the HTTP API until shutdown.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"filevault/internal/cryptox"
	"filevault/internal/logging"
	"filevault/internal/server/config"
	"filevault/internal/server/httpapi"
	"filevault/internal/server/repositories/repomanager"
	"filevault/internal/server/services"
	"filevault/internal/server/storage"
)

type App struct {
	config *config.Config
	logger logging.Logger
	db     *sql.DB
	server *httpapi.Server
}

func NewApp(ctx context.Context, c *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	db, err := sql.Open("pgx", c.DatabaseDSN)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}

	rm := repomanager.NewPostgresRepositoryManager()
	if err := rm.RunMigrations(ctx, db); err != nil {
		return nil, fmt.Errorf("migration error: %w", err)
	}

	store, err := storage.NewS3Store(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("content store init error: %w", err)
	}

	kek := cryptox.DeriveKEK([]byte(c.MasterSecret), []byte(c.MasterSalt))
	wrapper, err := cryptox.NewKeyWrapper(kek)
	if err != nil {
		return nil, fmt.Errorf("key wrapper init error: %w", err)
	}

	fs := services.NewFileService(db, rm, store, wrapper, logger)
	ss := services.NewSharingService(db, rm, logger)
	ls := services.NewListingService(db, rm)

	srv := httpapi.NewServer(c.EndpointAddr, logger, fs, ss, ls, c.SecretKey, c.CORSAllowOrigin)

	return &App{config: c, logger: logger, db: db, server: srv}, nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...")

	app.initSignalHandler(cancelFunc)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.server.Run(ctx); err != nil {
			app.logger.Error(ctx, err.Error())
			cancelFunc()
		}
	}()

	wg.Wait()

	if err := app.db.Close(); err != nil {
		app.logger.Error(ctx, err.Error())
	}
}
