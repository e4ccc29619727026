// Package app wires configuration, storage, the prediction cache, the model
// handle and the HTTP server into one runnable service.
package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"gorm.io/gorm"

	"github.com/yungbote/housing-predictor/internal/cache"
	"github.com/yungbote/housing-predictor/internal/config"
	"github.com/yungbote/housing-predictor/internal/httpapi"
	"github.com/yungbote/housing-predictor/internal/observability"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
	"github.com/yungbote/housing-predictor/internal/serving"
)

const ServiceName = "housing-predictor"

type App struct {
	Log     *logger.Logger
	Config  *config.Config
	DB      *gorm.DB
	Metrics *observability.Metrics
	Model   *serving.Handle

	cache        cache.PredictionCache
	server       *http.Server
	shutdownOTel func(context.Context) error
}

func New(ctx context.Context) (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	log, err := logger.New(cfg.Env)
	if err != nil {
		return nil, fmt.Errorf("init logger: %w", err)
	}

	shutdownOTel := observability.InitOTel(ctx, log, observability.OtelConfigFromEnv(ServiceName, cfg.Env, "1.0.0"))

	cl, err := wireClients(ctx, log, cfg)
	if err != nil {
		_ = shutdownOTel(context.Background())
		log.Sync()
		return nil, err
	}

	m := observability.New()
	model := serving.NewHandle(cfg.Artifacts.Dir, log,
		serving.WithCache(cl.Cache),
		serving.WithMetrics(m),
	)
	handlerset := wireHandlers(log, cfg, model, cl)
	router := httpapi.NewRouter(httpapi.RouterConfig{
		Log:             log,
		Metrics:         m,
		ServiceName:     ServiceName,
		CORSOrigins:     cfg.HTTP.CORSOrigins,
		MaxBody:         cfg.HTTP.MaxRequestBytes,
		SystemHandler:   handlerset.System,
		PredictHandler:  handlerset.Predict,
		PropertyHandler: handlerset.Property,
	})

	return &App{
		Log:          log,
		Config:       cfg,
		DB:           cl.DB,
		Metrics:      m,
		Model:        model,
		cache:        cl.Cache,
		server:       httpapi.NewServer(cfg.HTTP, router),
		shutdownOTel: shutdownOTel,
	}, nil
}

// Run serves until ctx is cancelled or the listener fails. The model is
// loaded eagerly; a missing model only degrades /health and /predict.
func (a *App) Run(ctx context.Context) error {
	if _, err := a.Model.Get(ctx); err != nil {
		a.Log.Warn("model not loaded at startup", "dir", a.Config.Artifacts.Dir, "error", err)
	}
	if a.DB != nil {
		a.Metrics.StartStoreCollector(ctx, a.Log, a.DB)
	}

	errCh := make(chan error, 1)
	go func() {
		a.Log.Info("HTTP server listening", "addr", a.server.Addr)
		errCh <- a.server.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.HTTP.ShutdownTimeout.Duration)
		defer cancel()
		a.Log.Info("shutting down")
		return a.server.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}

func (a *App) Close() {
	if a == nil {
		return
	}
	if a.cache != nil {
		if err := a.cache.Close(); err != nil {
			a.Log.Warn("close cache", "error", err)
		}
	}
	if a.DB != nil {
		if sqlDB, err := a.DB.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	if a.shutdownOTel != nil {
		_ = a.shutdownOTel(context.Background())
	}
	a.Log.Sync()
}
