package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yungbote/housing-predictor/internal/config"
	"github.com/yungbote/housing-predictor/internal/dataset"
	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
	"github.com/yungbote/housing-predictor/internal/platform/shutdown"
	"github.com/yungbote/housing-predictor/internal/store"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		os.Exit(1)
	}
	data := flag.String("data", cfg.Training.DataPath, "CSV file to load into the property store")
	flag.Parse()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	if err := run(ctx, log, cfg, *data); err != nil {
		log.Error("ingest failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger, cfg *config.Config, path string) error {
	sc := store.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN}
	if !sc.Enabled() {
		return fmt.Errorf("ingest needs STORE_DSN")
	}
	frame, err := dataset.LoadCSV(path, housing.RawColumns())
	if err != nil {
		return err
	}
	db, err := store.Open(sc, log)
	if err != nil {
		return err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	res, err := store.Ingest(ctx, db, store.NewPropertyRepo(db, log), frame, store.SourceCSV)
	if err != nil {
		return err
	}
	log.Info("ingest complete", "path", path, "stored", res.Stored, "skipped", res.Skipped)
	return nil
}
