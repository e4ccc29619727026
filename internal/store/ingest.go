package store

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/pipeline/features"
)

// IngestResult counts what Ingest stored and skipped.
type IngestResult struct {
	Stored  int
	Skipped int
}

// Ingest engineers every row of f and stores it with its target, if the
// frame has one. Rows whose features are not finite are skipped and counted;
// the remaining rows are written in one transaction.
func Ingest(ctx context.Context, db *gorm.DB, repo PropertyRepo, f *housing.Frame, source string) (IngestResult, error) {
	engineered, err := features.Augment(f)
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest: %w", err)
	}
	var res IngestResult
	rows := make([]*PropertyRecord, 0, f.Len())
	for i := 0; i < f.Len(); i++ {
		row, err := NewPropertyRecord(source, f.Row(i), engineered.Row(i), nil)
		if err != nil {
			res.Skipped++
			continue
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return res, nil
	}
	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		_, err := repo.Create(ctx, tx, rows)
		return err
	})
	if err != nil {
		return IngestResult{}, fmt.Errorf("ingest: %w", err)
	}
	res.Stored = len(rows)
	return res, nil
}
