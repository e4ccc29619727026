package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/yungbote/housing-predictor/internal/housing"
	"github.com/yungbote/housing-predictor/internal/housing/housingtest"
	"github.com/yungbote/housing-predictor/internal/pipeline/features"
	pkgerrors "github.com/yungbote/housing-predictor/internal/pkg/errors"
)

func testDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := Open(Config{Driver: DriverSQLite, DSN: filepath.Join(t.TempDir(), "store.db")}, nil)
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	return db
}

func record(t *testing.T, raw housing.Record, predicted *float64) *PropertyRecord {
	t.Helper()
	eng, err := features.AugmentRecord(raw)
	require.NoError(t, err)
	rec, err := NewPropertyRecord("test", raw, eng, predicted)
	require.NoError(t, err)
	return rec
}

func seed(t *testing.T, repo PropertyRepo, targets ...float64) []*PropertyRecord {
	t.Helper()
	raws := housingtest.Records(len(targets), 3, false)
	rows := make([]*PropertyRecord, len(targets))
	for i, y := range targets {
		raws[i][housing.Target] = y
		rows[i] = record(t, raws[i], nil)
	}
	out, err := repo.Create(context.Background(), nil, rows)
	require.NoError(t, err)
	return out
}

func TestOpenRejectsUnknownDriver(t *testing.T) {
	_, err := Open(Config{Driver: "mongo", DSN: "x"}, nil)
	require.ErrorIs(t, err, pkgerrors.ErrConfiguration)
	_, err = Open(Config{}, nil)
	require.ErrorIs(t, err, pkgerrors.ErrConfiguration)
}

func TestCreateGetDelete(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertyRepo(testDB(t), nil)

	rows := seed(t, repo, 1.0, 2.0, 4.0)
	for _, r := range rows {
		if r.ID == uuid.Nil {
			t.Fatalf("expected id to be assigned")
		}
	}

	got, err := repo.GetByIDs(ctx, nil, []uuid.UUID{rows[0].ID, rows[2].ID})
	require.NoError(t, err)
	require.Len(t, got, 2)

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)

	require.NoError(t, repo.DeleteByIDs(ctx, nil, []uuid.UUID{rows[1].ID}))
	n, err = repo.Count(ctx, nil)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	page, err := repo.List(ctx, nil, 1, 0)
	require.NoError(t, err)
	require.Len(t, page, 1)
}

func TestRecordDocuments(t *testing.T) {
	pred := 3.2
	rec := record(t, housingtest.Sample(), &pred)
	require.Nil(t, rec.Target)
	require.Equal(t, CategoryHigh, rec.PriceCategory)

	raw, err := rec.RawRecord()
	require.NoError(t, err)
	require.Equal(t, housingtest.Sample(), raw)
	require.Contains(t, string(rec.Engineered), housing.DistanceToSF)
}

func TestNewPropertyRecordRejectsNonFinite(t *testing.T) {
	raw := housingtest.Sample()
	raw[housing.AveRooms] = 0
	eng, err := features.AugmentRecord(raw)
	require.NoError(t, err)
	_, err = NewPropertyRecord("test", raw, eng, nil)
	require.ErrorIs(t, err, pkgerrors.ErrComputation)

	delete(raw, housing.Latitude)
	_, err = NewPropertyRecord("test", raw, eng, nil)
	require.ErrorIs(t, err, pkgerrors.ErrSchema)
}

func TestPriceCategory(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertyRepo(testDB(t), nil)
	rows := seed(t, repo, 0.8, 2.0, 5.0)
	require.Equal(t, CategoryLow, rows[0].PriceCategory)
	require.Equal(t, CategoryMedium, rows[1].PriceCategory)
	require.Equal(t, CategoryHigh, rows[2].PriceCategory)

	pred := 3.2
	got, err := repo.Create(ctx, nil, []*PropertyRecord{record(t, housingtest.Sample(), &pred)})
	require.NoError(t, err)
	require.Nil(t, got[0].Target)
	require.Equal(t, CategoryHigh, got[0].PriceCategory)
}

func TestLoadTrainingFrame(t *testing.T) {
	ctx := context.Background()
	repo := NewPropertyRepo(testDB(t), nil)

	_, err := repo.LoadTrainingFrame(ctx, nil)
	require.ErrorIs(t, err, pkgerrors.ErrConfiguration)

	seed(t, repo, 1.0, 2.0, 3.0)
	pred := 1.1
	_, err = repo.Create(ctx, nil, []*PropertyRecord{record(t, housingtest.Sample(), &pred)})
	require.NoError(t, err)

	f, err := repo.LoadTrainingFrame(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 3, f.Len())
	require.Equal(t, append(housing.RawColumns(), housing.Target), f.Names())
}

func TestCreateInTransaction(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewPropertyRepo(db, nil)

	err := db.Transaction(func(tx *gorm.DB) error {
		_, err := repo.Create(ctx, tx, []*PropertyRecord{record(t, housingtest.Sample(), nil)})
		require.NoError(t, err)
		return gorm.ErrInvalidTransaction
	})
	require.Error(t, err)

	n, err := repo.Count(ctx, nil)
	require.NoError(t, err)
	require.Zero(t, n)
}

func TestIngestSkipsNonFiniteRows(t *testing.T) {
	ctx := context.Background()
	db := testDB(t)
	repo := NewPropertyRepo(db, nil)

	recs := housingtest.Records(5, 11, true)
	recs[2][housing.AveOccup] = 0
	f, err := housing.FromRecords(recs)
	require.NoError(t, err)

	res, err := Ingest(ctx, db, repo, f, SourceCSV)
	require.NoError(t, err)
	require.Equal(t, IngestResult{Stored: 4, Skipped: 1}, res)

	frame, err := repo.LoadTrainingFrame(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 4, frame.Len())

	partial, err := housing.NewFrame([]string{housing.MedInc}, [][]float64{{3.1}})
	require.NoError(t, err)
	_, err = Ingest(ctx, db, repo, partial, SourceCSV)
	require.ErrorIs(t, err, pkgerrors.ErrSchema)
}
