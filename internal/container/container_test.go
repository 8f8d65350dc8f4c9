package container

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"goinsight/internal"
	"goinsight/internal/config"
	"goinsight/internal/errors"
	"goinsight/internal/session"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *internal.Logger {
	return internal.NewLoggerWithWriter(internal.LogLevelError, io.Discard)
}

func TestNewRequiresConfig(t *testing.T) {
	_, err := New(nil, nil)
	assert.Error(t, err)
}

func TestStartWithSyntheticData(t *testing.T) {
	c, err := New(config.Default(), quietLogger())
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	assert.Equal(t, "static:retail", c.Source.Name())

	token, err := c.Start(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	snap, err := c.Session.Await(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, session.StateReady, snap.State)
	assert.Equal(t, "retail", snap.Dataset)
	assert.Greater(t, snap.PageCount, 0)
}

func TestStartWithMissingDataFile(t *testing.T) {
	cfg := config.Default()
	cfg.Data.File = filepath.Join(t.TempDir(), "missing.csv")

	c, err := New(cfg, quietLogger())
	require.NoError(t, err)
	defer c.Shutdown(context.Background())

	_, err = c.Start(context.Background())
	require.Error(t, err)
	assert.Equal(t, errors.CodeDataSource, errors.GetCode(err))
	assert.Equal(t, session.StateIdle, c.Session.Snapshot().State)
}
