package training

import (
	"context"

	"github.com/yungbote/housing-predictor/internal/dataset"
	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/store"
)

// CSVSource reads a labelled CSV file. Columns other than the raw features
// and the target are dropped.
type CSVSource struct {
	Path string
}

func (s CSVSource) Load(ctx context.Context) (*housing.Frame, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := dataset.LoadCSV(s.Path, dataset.TrainingColumns())
	if err != nil {
		return nil, err
	}
	return f.Select(dataset.TrainingColumns())
}

// StoreSource trains on the labelled rows of the property store.
type StoreSource struct {
	Repo store.PropertyRepo
}

func (s StoreSource) Load(ctx context.Context) (*housing.Frame, error) {
	return s.Repo.LoadTrainingFrame(ctx, nil)
}
