package observability

import (
	"context"
	"errors"

	"github.com/yungbote/housing-predictor/internal/platform/ctxutil"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

// ReportPipelineError counts and logs an input the pipeline rejected.
// Errors that are not about the data itself are ignored.
func ReportPipelineError(ctx context.Context, log *logger.Logger, m *Metrics, stage string, err error) {
	if err == nil {
		return
	}
	if stage == "" {
		stage = "unknown"
	}
	counts := map[string]int{}

	var schemaErr *pkgerrors.SchemaError
	var compErrs pkgerrors.ComputationErrors
	var compErr *pkgerrors.ComputationError
	switch {
	case errors.As(err, &schemaErr):
		for _, col := range schemaErr.Missing {
			m.IncDataQuality(stage, "missing_column", col)
			counts["missing_column"]++
		}
		for _, col := range schemaErr.Extra {
			m.IncDataQuality(stage, "extra_column", col)
			counts["extra_column"]++
		}
		if schemaErr.Misordered {
			m.IncDataQuality(stage, "misordered", "")
			counts["misordered"]++
		}
	case errors.As(err, &compErrs):
		for _, e := range compErrs {
			m.IncDataQuality(stage, "non_finite", e.Column)
			counts["non_finite"]++
		}
	case errors.As(err, &compErr):
		m.IncDataQuality(stage, "non_finite", compErr.Column)
		counts["non_finite"]++
	default:
		return
	}

	if log == nil {
		return
	}
	kv := []interface{}{"stage", stage, "issues", counts, "error", err.Error()}
	kv = append(kv, ctxutil.LogFields(ctx)...)
	log.Warn("data quality issue detected", kv...)
}
