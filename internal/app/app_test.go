package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/yungbote/housing-predictor/internal/cache"
	"github.com/yungbote/housing-predictor/internal/config"
	"github.com/yungbote/housing-predictor/internal/platform/logger"
	"github.com/yungbote/housing-predictor/internal/serving"
)

func TestWireClientsWithoutStore(t *testing.T) {
	cfg := config.Default()
	cl, err := wireClients(context.Background(), logger.NewNop(), cfg)
	require.NoError(t, err)
	require.Nil(t, cl.DB)
	require.Nil(t, cl.Repo)
	require.IsType(t, cache.Nop{}, cl.Cache)

	h := wireHandlers(logger.NewNop(), cfg, serving.NewHandle(t.TempDir(), nil), cl)
	require.NotNil(t, h.System)
	require.NotNil(t, h.Predict)
	require.Nil(t, h.Property)
}

func TestWireClientsWithSQLite(t *testing.T) {
	cfg := config.Default()
	cfg.Store.DSN = filepath.Join(t.TempDir(), "app.db")
	cl, err := wireClients(context.Background(), logger.NewNop(), cfg)
	require.NoError(t, err)
	require.NotNil(t, cl.DB)
	require.NotNil(t, cl.Repo)

	h := wireHandlers(logger.NewNop(), cfg, serving.NewHandle(t.TempDir(), nil), cl)
	require.NotNil(t, h.Property)

	sqlDB, err := cl.DB.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())
}
