package app

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"BlogEngine/internal/ai"
	"BlogEngine/internal/config"
	aiinfra "BlogEngine/internal/infrastructure/ai"
	"BlogEngine/internal/infrastructure/scheduler"
	"BlogEngine/internal/infrastructure/storage"
	"BlogEngine/internal/logging"
	"BlogEngine/internal/server"
	"BlogEngine/internal/usecase"
)

// Application wires configs to use cases and lifecycle orchestration.
type Application struct {
	cfg       config.Config
	log       *slog.Logger
	httpSrv   *http.Server
	scheduler *usecase.Scheduler
	closeDB   func() error
}

// New builds a runnable application instance.
func New(cfg config.Config, baseLogger *slog.Logger) (*Application, error) {
	if baseLogger == nil {
		baseLogger = logging.New(cfg.Logging.Level)
	}

	db, err := storage.Open(cfg.Database, baseLogger)
	if err != nil {
		return nil, err
	}
	if err := storage.RunMigrations(db, cfg.Database.MigrationsPath, baseLogger); err != nil {
		db.Close()
		return nil, err
	}

	store := storage.NewPostgres(db, baseLogger)
	factory := aiinfra.NewFactory(cfg.Providers, baseLogger)
	router := ai.NewRouter(cfg.Routing, factory, baseLogger.With("component", "router"))

	engine := usecase.NewEngine(usecase.EngineDeps{
		Storage: store,
		Router:  router,
		Ledger:  store,
		Logger:  baseLogger.With("component", "engine"),
	})

	driver := scheduler.NewIntervalScheduler(cfg.Scheduler.Interval.Std())
	sweeper := usecase.NewScheduler(driver, engine)

	httpSrv := &http.Server{
		Addr:    cfg.HTTP.Addr,
		Handler: server.NewRouter(engine, store, baseLogger),
	}

	return &Application{
		cfg:       cfg,
		log:       baseLogger,
		httpSrv:   httpSrv,
		scheduler: sweeper,
		closeDB:   db.Close,
	}, nil
}

// Run starts the sweep scheduler and serves HTTP until ctx is cancelled.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("http server listening", "addr", a.httpSrv.Addr)
		if err := a.httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx := context.Background()
	if err := a.scheduler.Stop(shutdownCtx); err != nil {
		a.log.Error("scheduler stop", "error", err)
	}
	if err := a.httpSrv.Shutdown(shutdownCtx); err != nil {
		a.log.Error("http shutdown", "error", err)
	}
	if err := a.closeDB(); err != nil {
		a.log.Error("database close", "error", err)
	}
	return nil
}
