package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/yungbote/housing-predictor/internal/platform/atomicfile"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

const (
	PreprocessorFile = "preprocessor.json"
	MetadataFile     = "model_metadata.json"

	modelFilePrefix = "best_model_"
	modelTimeLayout = "20060102T150405Z"
)

// Metadata describes a trained model for /model-info.
type Metadata struct {
	ModelName    string             `json:"model_name"`
	ModelType    string             `json:"model_type"`
	TrainingDate time.Time          `json:"training_date"`
	Metrics      map[string]float64 `json:"metrics"`
	NFeatures    int                `json:"n_features"`
	Features     []string           `json:"features"`
	TrainRows    int                `json:"train_rows"`
	TestRows     int                `json:"test_rows"`
}

// Version is the date part of the training timestamp.
func (m Metadata) Version() string {
	if m.TrainingDate.IsZero() {
		return ""
	}
	return m.TrainingDate.UTC().Format("2006-01-02")
}

// Artifact is the persisted model file.
type Artifact struct {
	Name     string   `json:"name"`
	Type     string   `json:"type"`
	Features []string `json:"features"`
	Ridge    *Ridge   `json:"ridge,omitempty"`
}

func (a *Artifact) Regressor() (Regressor, error) {
	switch a.Type {
	case TypeRidge:
		if a.Ridge == nil {
			return nil, fmt.Errorf("model %s: missing ridge parameters", a.Name)
		}
		if len(a.Ridge.Coef) != len(a.Features) {
			return nil, fmt.Errorf("model %s: %d coefficients for %d features", a.Name, len(a.Ridge.Coef), len(a.Features))
		}
		return a.Ridge, nil
	default:
		return nil, fmt.Errorf("model %s: unsupported type %q", a.Name, a.Type)
	}
}

// ModelFileName names a model file by its training time so that the newest
// sorts last.
func ModelFileName(trainedAt time.Time) string {
	return modelFilePrefix + trainedAt.UTC().Format(modelTimeLayout) + ".json"
}

// LatestModelPath returns the newest best_model_*.json under dir.
func LatestModelPath(dir string) (string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, modelFilePrefix+"*.json"))
	if err != nil {
		return "", err
	}
	if len(matches) == 0 {
		return "", fmt.Errorf("no model found in %s: %w", dir, pkgerrors.ErrNotFound)
	}
	sort.Strings(matches)
	return matches[len(matches)-1], nil
}

func SaveJSON(path string, v any) error {
	return atomicfile.WriteJSON(path, v)
}

func LoadArtifact(path string) (*Artifact, error) {
	var a Artifact
	if err := loadJSON(path, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

func LoadMetadata(path string) (*Metadata, error) {
	var m Metadata
	if err := loadJSON(path, &m); err != nil {
		return nil, err
	}
	return &m, nil
}

func loadJSON(path string, v any) error {
	b, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%s: %w", path, pkgerrors.ErrNotFound)
		}
		return err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return fmt.Errorf("decode %s: %w", path, err)
	}
	return nil
}
