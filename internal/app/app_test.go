package app

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/comic-tracker/cache"
	"github.com/anoixa/comic-tracker/config"
	"github.com/anoixa/comic-tracker/database/dbtest"
	"github.com/anoixa/comic-tracker/internal/comics"
	"github.com/anoixa/comic-tracker/internal/strips"
	"github.com/anoixa/comic-tracker/storage"
)

func TestContainer_Wire(t *testing.T) {
	cfg := &config.Config{
		StatusDefaultDays: 14,
		StatusCacheTTL:    time.Minute,
		UploadMaxSizeMB:   1,
		JWTSecret:         strings.Repeat("k", 32),
		JWTExpiresIn:      time.Hour,
	}

	local, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)
	locker, err := strips.NewFileLocker(t.TempDir())
	require.NoError(t, err)
	mem, err := cache.NewMemoryCache(cache.MemoryConfig{})
	require.NoError(t, err)

	c := NewContainer(cfg)
	require.NoError(t, c.Wire(dbtest.NewProvider(t), storage.NewFactoryWithProviders(local), mem, locker))
	t.Cleanup(func() { _ = c.Close() })

	require.NotNil(t, c.JWT)
	assert.False(t, c.Keys.Enabled())
	assert.Equal(t, "local", c.GetStorageFactory().GetDefaultName())

	ctx := context.Background()
	_, err = c.Comics.Create(ctx, comics.Input{Name: "xkcd"})
	require.NoError(t, err)

	report, err := c.Status.Report(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, report.Days, 16)
	require.Len(t, report.Comics, 1)
	assert.Equal(t, []string{"unscheduled"}, report.Comics[0].Cells[0].Tags)
}

func TestContainer_RejectsShortJWTSecret(t *testing.T) {
	local, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)
	locker, err := strips.NewFileLocker(t.TempDir())
	require.NoError(t, err)

	c := NewContainer(&config.Config{JWTSecret: "short", JWTExpiresIn: time.Hour})
	err = c.Wire(dbtest.NewProvider(t), storage.NewFactoryWithProviders(local), nil, locker)
	assert.Error(t, err)
}
