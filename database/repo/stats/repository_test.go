package stats

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/comic-tracker/database/dbtest"
	"github.com/anoixa/comic-tracker/database/models"
)

func TestRepository_GetOverview(t *testing.T) {
	p := dbtest.NewProvider(t)
	repo := NewRepository(p)

	xkcd := dbtest.CreateComic(t, p, "xkcd")
	idle := dbtest.CreateComic(t, p, "idle")
	require.NoError(t, p.DB().Model(idle).Update("active", false).Error)

	a := dbtest.CreateStrip(t, p, xkcd, "aaaa")
	b := dbtest.CreateStrip(t, p, xkcd, "bbbb")
	require.NoError(t, p.DB().Model(b).Update("file_size", 41).Error)

	dbtest.CreateRelease(t, p, xkcd, a, dbtest.Date(2021, 1, 4))
	dbtest.CreateRelease(t, p, xkcd, b, dbtest.Date(2021, 1, 11))
	require.NoError(t, p.DB().Create(&models.Collection{Name: "all"}).Error)

	overview, err := repo.GetOverview(context.Background(), dbtest.Date(2021, 1, 10))
	require.NoError(t, err)

	assert.Equal(t, int64(2), overview.ComicTotal)
	assert.Equal(t, int64(1), overview.ActiveComics)
	assert.Equal(t, int64(2), overview.StripTotal)
	assert.Equal(t, int64(42), overview.StorageTotal)
	assert.Equal(t, int64(2), overview.ReleaseTotal)
	assert.Equal(t, int64(1), overview.ReleasesSince)
	assert.Equal(t, int64(1), overview.CollectionTotal)
}

func TestRepository_StorageAndDailyStats(t *testing.T) {
	p := dbtest.NewProvider(t)
	repo := NewRepository(p)
	ctx := context.Background()

	xkcd := dbtest.CreateComic(t, p, "xkcd")
	a := dbtest.CreateStrip(t, p, xkcd, "aaaa")
	b := dbtest.CreateStrip(t, p, xkcd, "bbbb")
	require.NoError(t, p.DB().Model(b).Updates(map[string]interface{}{"storage": "minio", "file_size": 10}).Error)

	dbtest.CreateRelease(t, p, xkcd, a, dbtest.Date(2021, 1, 4))
	dbtest.CreateRelease(t, p, xkcd, b, dbtest.Date(2021, 1, 4))
	dbtest.CreateRelease(t, p, xkcd, a, dbtest.Date(2021, 1, 11))

	storages, err := repo.GetStorageStats(ctx)
	require.NoError(t, err)
	require.Len(t, storages, 2)
	assert.Equal(t, StorageStat{Storage: "local", Count: 1, Size: 1}, storages[0])
	assert.Equal(t, StorageStat{Storage: "minio", Count: 1, Size: 10}, storages[1])

	daily, err := repo.GetDailyReleases(ctx, dbtest.Date(2021, 1, 1))
	require.NoError(t, err)
	require.Len(t, daily, 2)
	assert.Equal(t, dbtest.Date(2021, 1, 4), time.Time(daily[0].PubDate).UTC())
	assert.Equal(t, int64(2), daily[0].Count)
	assert.Equal(t, int64(1), daily[1].Count)
}
