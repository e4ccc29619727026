package app

import (
	"context"

	"gorm.io/gorm"

	"github.com/yungbote/housing-predictor/internal/cache"
	"github.com/yungbote/housing-predictor/internal/config"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
	"github.com/yungbote/housing-predictor/internal/store"
)

type Clients struct {
	DB    *gorm.DB
	Repo  store.PropertyRepo
	Cache cache.PredictionCache
}

// wireClients opens the database and cache when configured. Either may be
// absent; the API then skips persistence or caching.
func wireClients(ctx context.Context, log *logger.Logger, cfg *config.Config) (Clients, error) {
	var out Clients
	sc := store.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN}
	if sc.Enabled() {
		db, err := store.Open(sc, log)
		if err != nil {
			return Clients{}, err
		}
		out.DB = db
		out.Repo = store.NewPropertyRepo(db, log)
	} else {
		log.Info("property store disabled", "reason", "no dsn")
	}

	c, err := cache.New(ctx, cache.Config{Addr: cfg.Cache.RedisAddr, TTL: cfg.Cache.TTL.Duration}, log)
	if err != nil {
		if out.DB != nil {
			if sqlDB, derr := out.DB.DB(); derr == nil {
				_ = sqlDB.Close()
			}
		}
		return Clients{}, err
	}
	out.Cache = c
	return out, nil
}
