package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/yungbote/housing-predictor/internal/config"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
	"github.com/yungbote/housing-predictor/internal/platform/shutdown"
	"github.com/yungbote/housing-predictor/internal/store"
	"github.com/yungbote/housing-predictor/internal/training"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("load config: %v\n", err)
		os.Exit(1)
	}

	var (
		source = flag.String("source", cfg.Training.Source, "training data source: csv or store")
		data   = flag.String("data", cfg.Training.DataPath, "CSV file with raw features and MedHouseVal")
		out    = flag.String("out", cfg.Artifacts.Dir, "directory for model artifacts")
		ratio  = flag.Float64("test-ratio", cfg.Training.TestRatio, "share of rows held out for evaluation")
		seed   = flag.Uint64("seed", cfg.Training.Seed, "split seed")
		alpha  = flag.Float64("alpha", cfg.Training.RidgeAlpha, "ridge penalty")
	)
	flag.Parse()

	log, err := logger.New(cfg.Env)
	if err != nil {
		fmt.Printf("init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	ctx, stop := shutdown.NotifyContext(context.Background())
	defer stop()

	if err := run(ctx, log, cfg, *source, *data, training.Config{
		OutputDir:  *out,
		ModelName:  cfg.Training.ModelName,
		TestRatio:  *ratio,
		Seed:       *seed,
		RidgeAlpha: *alpha,
		Pipeline:   cfg.PipelineOptions(),
	}); err != nil {
		log.Error("training failed", "error", err)
		log.Sync()
		os.Exit(1)
	}
}

func run(ctx context.Context, log *logger.Logger, cfg *config.Config, source, data string, tc training.Config) error {
	var src training.Source
	switch source {
	case config.SourceCSV:
		src = training.CSVSource{Path: data}
	case config.SourceStore:
		sc := store.Config{Driver: cfg.Store.Driver, DSN: cfg.Store.DSN}
		if !sc.Enabled() {
			return fmt.Errorf("source %q needs STORE_DSN", source)
		}
		db, err := store.Open(sc, log)
		if err != nil {
			return err
		}
		if sqlDB, err := db.DB(); err == nil {
			defer sqlDB.Close()
		}
		src = training.StoreSource{Repo: store.NewPropertyRepo(db, log)}
	default:
		return fmt.Errorf("unknown source %q", source)
	}

	tr, err := training.New(log, tc)
	if err != nil {
		return err
	}
	res, err := tr.Run(ctx, src)
	if err != nil {
		return err
	}
	log.Info("training complete",
		"model", res.ModelPath,
		"preprocessor", res.PreprocessorPath,
		"test_rmse", res.Metadata.Metrics["test_rmse"],
		"test_r2", res.Metadata.Metrics["test_r2"],
	)
	return nil
}
