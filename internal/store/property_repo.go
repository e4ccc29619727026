package store

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

type PropertyRepo interface {
	Create(ctx context.Context, tx *gorm.DB, rows []*PropertyRecord) ([]*PropertyRecord, error)
	GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*PropertyRecord, error)
	List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*PropertyRecord, error)
	Count(ctx context.Context, tx *gorm.DB) (int64, error)
	DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error

	LoadTrainingFrame(ctx context.Context, tx *gorm.DB) (*housing.Frame, error)
}

const (
	defaultListLimit = 20
	maxListLimit     = 1000
	createBatchSize  = 500
)

type propertyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewPropertyRepo(db *gorm.DB, baseLog *logger.Logger) PropertyRepo {
	if baseLog == nil {
		baseLog = logger.NewNop()
	}
	return &propertyRepo{db: db, log: baseLog.With("repo", "PropertyRepo")}
}

func (r *propertyRepo) conn(tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx
	}
	return r.db
}

func clampLimit(limit int) int {
	if limit <= 0 {
		return defaultListLimit
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}

func (r *propertyRepo) Create(ctx context.Context, tx *gorm.DB, rows []*PropertyRecord) ([]*PropertyRecord, error) {
	if len(rows) == 0 {
		return []*PropertyRecord{}, nil
	}
	if err := r.conn(tx).WithContext(ctx).CreateInBatches(rows, createBatchSize).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *propertyRepo) GetByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*PropertyRecord, error) {
	var out []*PropertyRecord
	if len(ids) == 0 {
		return out, nil
	}
	if err := r.conn(tx).WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *propertyRepo) List(ctx context.Context, tx *gorm.DB, limit, offset int) ([]*PropertyRecord, error) {
	if offset < 0 {
		offset = 0
	}
	var out []*PropertyRecord
	if err := r.conn(tx).WithContext(ctx).
		Order("created_at DESC, id").
		Limit(clampLimit(limit)).
		Offset(offset).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *propertyRepo) Count(ctx context.Context, tx *gorm.DB) (int64, error) {
	var n int64
	if err := r.conn(tx).WithContext(ctx).Model(&PropertyRecord{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

func (r *propertyRepo) DeleteByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) error {
	if len(ids) == 0 {
		return nil
	}
	return r.conn(tx).WithContext(ctx).Where("id IN ?", ids).Delete(&PropertyRecord{}).Error
}

// LoadTrainingFrame returns every labelled record as a frame of raw columns
// plus the target, oldest first.
func (r *propertyRepo) LoadTrainingFrame(ctx context.Context, tx *gorm.DB) (*housing.Frame, error) {
	var rows []*PropertyRecord
	if err := r.conn(tx).WithContext(ctx).
		Where("med_house_val IS NOT NULL").
		Order("created_at, id").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, pkgerrors.Configuration("training data", "store holds no labelled records")
	}
	records := make([]housing.Record, 0, len(rows))
	for _, row := range rows {
		rec, err := row.RawRecord()
		if err != nil {
			return nil, err
		}
		rec[housing.Target] = *row.Target
		records = append(records, rec)
	}
	r.log.Debug("training frame loaded", "rows", len(records))
	return housing.FromRecords(records)
}
