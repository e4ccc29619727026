package preprocess

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/yungbote/housing-predictor/internal/housing"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
	"github.com/yungbote/housing-predictor/internal/pipeline/outliers"
	"github.com/yungbote/housing-predictor/internal/pipeline/scaling"
	"github.com/yungbote/housing-predictor/internal/platform/atomicfile"
)

const stateVersion = 1

// State is the persisted form of a Fitted pipeline. Bounds, scaler
// statistics and the feature list are stored together and restored together.
type State struct {
	Version    int                        `json:"version"`
	Target     string                     `json:"target"`
	Features   housing.Schema             `json:"features"`
	CapColumns []string                   `json:"cap_columns"`
	Bounds     map[string]outliers.Bounds `json:"bounds"`
	Scaler     []scaling.ColumnStats      `json:"scaler"`
}

func (p *Fitted) State() (State, error) {
	if !p.ready() {
		return State{}, pkgerrors.NotFitted("preprocessor")
	}
	return State{
		Version:    stateVersion,
		Target:     p.target,
		Features:   p.Schema(),
		CapColumns: p.capper.Columns(),
		Bounds:     p.capper.Bounds(),
		Scaler:     p.scaler.Stats(),
	}, nil
}

// FromState rebuilds a Fitted pipeline, checking that the scaler columns
// match the feature list exactly.
func FromState(s State) (*Fitted, error) {
	if s.Version != stateVersion {
		return nil, fmt.Errorf("preprocess: unsupported state version %d", s.Version)
	}
	if s.Target == "" {
		return nil, pkgerrors.Configuration("target", "name is empty")
	}
	if len(s.Features) != len(s.Scaler) {
		return nil, fmt.Errorf("preprocess: %d features but %d scaler columns", len(s.Features), len(s.Scaler))
	}
	for i, f := range s.Features {
		if s.Scaler[i].Name != f.Name {
			return nil, fmt.Errorf("preprocess: scaler column %d is %s, feature is %s", i, s.Scaler[i].Name, f.Name)
		}
	}
	capper, err := outliers.Restore(s.CapColumns, s.Bounds)
	if err != nil {
		return nil, err
	}
	scaler, err := scaling.RestoreRobustScaler(s.Scaler)
	if err != nil {
		return nil, err
	}
	return &Fitted{
		target: s.Target,
		schema: append(housing.Schema(nil), s.Features...),
		capper: capper,
		scaler: scaler,
	}, nil
}

func (p *Fitted) MarshalJSON() ([]byte, error) {
	s, err := p.State()
	if err != nil {
		return nil, err
	}
	return json.Marshal(s)
}

func (p *Fitted) UnmarshalJSON(b []byte) error {
	var s State
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	restored, err := FromState(s)
	if err != nil {
		return err
	}
	*p = *restored
	return nil
}

// Save writes the pipeline to path atomically.
func Save(path string, p *Fitted) error {
	return atomicfile.WriteJSON(path, p)
}

func Load(path string) (*Fitted, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var p Fitted
	if err := json.Unmarshal(b, &p); err != nil {
		return nil, fmt.Errorf("load preprocessor %s: %w", path, err)
	}
	return &p, nil
}
