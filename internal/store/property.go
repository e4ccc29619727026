package store

import (
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/housing-predictor/internal/housing"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

const (
	SourceAPI = "api"
	SourceCSV = "csv"

	CategoryLow    = "low"
	CategoryMedium = "medium"
	CategoryHigh   = "high"
)

// PropertyRecord is one block group: the raw input document, its engineered
// features and, when known, the observed and predicted values.
type PropertyRecord struct {
	ID     uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Source string    `gorm:"column:source;not null;index" json:"source"`

	Target    *float64 `gorm:"column:med_house_val;index" json:"MedHouseVal,omitempty"`
	Predicted *float64 `gorm:"column:predicted" json:"predicted,omitempty"`
	// low|medium|high, from Target when present, else Predicted
	PriceCategory string `gorm:"column:price_category;index" json:"price_category,omitempty"`
	ModelVersion  string `gorm:"column:model_version" json:"model_version,omitempty"`

	Raw        datatypes.JSON `gorm:"column:raw" json:"raw"`
	Engineered datatypes.JSON `gorm:"column:engineered" json:"engineered"`

	CreatedAt time.Time `gorm:"not null;index" json:"created_at"`
}

func (PropertyRecord) TableName() string { return "property_record" }

func (r *PropertyRecord) BeforeCreate(*gorm.DB) error {
	if r.ID == uuid.Nil {
		r.ID = uuid.New()
	}
	return nil
}

// PriceCategory buckets a value in units of $100k.
func PriceCategory(v float64) string {
	switch {
	case v < 1.5:
		return CategoryLow
	case v < 3.0:
		return CategoryMedium
	default:
		return CategoryHigh
	}
}

// NewPropertyRecord builds a record from a raw row and its augmented form.
// The target key in raw, if any, becomes Target. Engineered values must be
// finite.
func NewPropertyRecord(source string, raw, engineered housing.Record, predicted *float64) (*PropertyRecord, error) {
	inputs := make(map[string]float64, len(housing.RawColumns()))
	for _, c := range housing.RawColumns() {
		v, ok := raw[c]
		if !ok {
			return nil, pkgerrors.MissingColumns("property record", c)
		}
		inputs[c] = v
	}
	derived := make(map[string]float64, len(housing.EngineeredColumns()))
	for _, c := range housing.EngineeredColumns() {
		v, ok := engineered[c]
		if !ok {
			return nil, pkgerrors.MissingColumns("property record", c)
		}
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return nil, &pkgerrors.ComputationError{Column: c, Rows: []int{0}}
		}
		derived[c] = v
	}
	rawJSON, err := json.Marshal(inputs)
	if err != nil {
		return nil, fmt.Errorf("encode raw: %w", err)
	}
	engJSON, err := json.Marshal(derived)
	if err != nil {
		return nil, fmt.Errorf("encode engineered: %w", err)
	}

	rec := &PropertyRecord{
		Source:     source,
		Predicted:  predicted,
		Raw:        datatypes.JSON(rawJSON),
		Engineered: datatypes.JSON(engJSON),
	}
	if y, ok := raw[housing.Target]; ok {
		rec.Target = &y
		rec.PriceCategory = PriceCategory(y)
	} else if predicted != nil {
		rec.PriceCategory = PriceCategory(*predicted)
	}
	return rec, nil
}

// RawRecord decodes the raw document.
func (r *PropertyRecord) RawRecord() (housing.Record, error) {
	var out housing.Record
	if err := json.Unmarshal(r.Raw, &out); err != nil {
		return nil, fmt.Errorf("decode raw %s: %w", r.ID, err)
	}
	return out, nil
}
