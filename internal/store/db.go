// Package store persists raw and engineered property records.
package store

import (
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/housing-predictor/internal/platform/logger"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Driver string
	DSN    string
}

// Enabled reports whether a store was configured at all.
func (c Config) Enabled() bool { return strings.TrimSpace(c.DSN) != "" }

// Open connects with the configured driver and migrates the schema.
func Open(cfg Config, logg *logger.Logger) (*gorm.DB, error) {
	if !cfg.Enabled() {
		return nil, pkgerrors.Configuration("store dsn", "is empty")
	}
	var dialector gorm.Dialector
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres, "postgresql":
		dialector = postgres.Open(cfg.DSN)
	case DriverSQLite, "":
		dialector = sqlite.Open(cfg.DSN)
	default:
		return nil, pkgerrors.Configuration("store driver", "unsupported driver %q", cfg.Driver)
	}

	gormLog := gormLogger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		gormLogger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  gormLogger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  false,
		},
	)
	db, err := gorm.Open(dialector, &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s store: %w", cfg.Driver, err)
	}
	if err := AutoMigrate(db); err != nil {
		return nil, err
	}
	if logg != nil {
		logg.Info("store ready", "driver", cfg.Driver, "store_dsn", cfg.DSN)
	}
	return db, nil
}

func AutoMigrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&PropertyRecord{}); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}
	return nil
}
