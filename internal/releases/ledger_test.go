package releases

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/dbtest"
	"github.com/anoixa/comic-tracker/database/models"
	comicsrepo "github.com/anoixa/comic-tracker/database/repo/comics"
	releasesrepo "github.com/anoixa/comic-tracker/database/repo/releases"
	stripsrepo "github.com/anoixa/comic-tracker/database/repo/strips"
	"github.com/anoixa/comic-tracker/internal/errdefs"
	"github.com/anoixa/comic-tracker/internal/strips"
	"github.com/anoixa/comic-tracker/storage"
)

type fixture struct {
	db     database.Provider
	local  *storage.LocalStorage
	store  *strips.Store
	ledger *Ledger
	comic  *models.Comic
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	p := dbtest.NewProvider(t)
	local, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)
	locker, err := strips.NewFileLocker(t.TempDir())
	require.NoError(t, err)

	stripRepo := stripsrepo.NewRepository(p)
	store := strips.NewStore(stripRepo, storage.NewFactoryWithProviders(local), locker)

	return &fixture{
		db:     p,
		local:  local,
		store:  store,
		ledger: NewLedger(releasesrepo.NewRepository(p), comicsrepo.NewRepository(p), stripRepo, store),
		comic:  dbtest.CreateComic(t, p, "xkcd"),
	}
}

func (f *fixture) put(t *testing.T, comic *models.Comic, content string) *models.Strip {
	t.Helper()
	strip, _, err := f.store.Put(context.Background(), comic, []byte(content), strips.Dimensions{}, strips.Meta{MimeType: "image/png", Extension: ".png"})
	require.NoError(t, err)
	return strip
}

func (f *fixture) fileCount(t *testing.T) int {
	t.Helper()
	n := 0
	require.NoError(t, f.local.Walk(context.Background(), func(string) error {
		n++
		return nil
	}))
	return n
}

func TestLedger_RecordRejectsDuplicateTriple(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	strip := f.put(t, f.comic, "monday")

	release, err := f.ledger.Record(ctx, f.comic.ID, dbtest.Date(2021, 1, 4), strip.ID)
	require.NoError(t, err)
	assert.NotZero(t, release.ID)

	_, err = f.ledger.Record(ctx, f.comic.ID, dbtest.Date(2021, 1, 4), strip.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrDuplicateRelease))

	var count int64
	require.NoError(t, f.db.DB().Model(&models.Release{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
}

func TestLedger_RecordNormalisesToCalendarDate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	strip := f.put(t, f.comic, "evening")

	cet := time.FixedZone("CET", 3600)
	release, err := f.ledger.Record(ctx, f.comic.ID, time.Date(2021, 1, 4, 23, 30, 0, 0, cet), strip.ID)
	require.NoError(t, err)
	assert.Equal(t, "2021-01-04", release.Date().Format("2006-01-02"))

	// 同一日历日的不同时刻仍是重复
	_, err = f.ledger.Record(ctx, f.comic.ID, time.Date(2021, 1, 4, 8, 0, 0, 0, cet), strip.ID)
	assert.True(t, errors.Is(err, errdefs.ErrDuplicateRelease))
}

func TestLedger_RecordUnknownComic(t *testing.T) {
	f := newFixture(t)
	strip := f.put(t, f.comic, "x")

	_, err := f.ledger.Record(context.Background(), 4242, dbtest.Date(2021, 1, 4), strip.ID)
	assert.True(t, errors.Is(err, errdefs.ErrUnknownComic))
}

func TestLedger_RecordRejectsForeignStrip(t *testing.T) {
	f := newFixture(t)
	other := dbtest.CreateComic(t, f.db, "lunch")
	strip := f.put(t, other, "not yours")

	_, err := f.ledger.Record(context.Background(), f.comic.ID, dbtest.Date(2021, 1, 4), strip.ID)
	assert.True(t, errors.Is(err, errdefs.ErrReferentialIntegrity))

	_, err = f.ledger.Record(context.Background(), f.comic.ID, dbtest.Date(2021, 1, 4), 9999)
	assert.True(t, errors.Is(err, errdefs.ErrNotFound))
}

func TestLedger_LatestAndRange(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	a := f.put(t, f.comic, "a")
	b := f.put(t, f.comic, "b")

	none, err := f.ledger.LatestFor(ctx, f.comic.ID)
	require.NoError(t, err)
	assert.Nil(t, none)

	_, err = f.ledger.Record(ctx, f.comic.ID, dbtest.Date(2021, 1, 11), b.ID)
	require.NoError(t, err)
	_, err = f.ledger.Record(ctx, f.comic.ID, dbtest.Date(2021, 1, 4), a.ID)
	require.NoError(t, err)

	latest, err := f.ledger.LatestFor(ctx, f.comic.ID)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, b.ID, latest.StripID)

	first, err := f.ledger.FirstFor(ctx, a.ID)
	require.NoError(t, err)
	require.NotNil(t, first)
	assert.Equal(t, "2021-01-04", first.Date().Format("2006-01-02"))

	inRange, err := f.ledger.InRange(ctx, Query{From: dbtest.Date(2021, 1, 1), To: dbtest.Date(2021, 1, 31)})
	require.NoError(t, err)
	require.Len(t, inRange, 2)
	assert.True(t, inRange[0].Date().Before(inRange[1].Date()))

	empty, err := f.ledger.InRange(ctx, Query{From: dbtest.Date(2021, 1, 31), To: dbtest.Date(2021, 1, 1)})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestLedger_DeleteLastReleasePurgesArtifact(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	strip := f.put(t, f.comic, "shared")

	r1, err := f.ledger.Record(ctx, f.comic.ID, dbtest.Date(2021, 1, 4), strip.ID)
	require.NoError(t, err)
	r2, err := f.ledger.Record(ctx, f.comic.ID, dbtest.Date(2021, 1, 11), strip.ID)
	require.NoError(t, err)

	// strip 仍被引用时不能删除
	err = f.store.Delete(ctx, strip.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrReferentialIntegrity))

	_, err = f.ledger.Delete(ctx, r1.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, f.fileCount(t), "strip still referenced by the second release")

	deleted, err := f.ledger.Delete(ctx, r2.ID)
	require.NoError(t, err)
	assert.Equal(t, r2.ID, deleted.ID)
	assert.Equal(t, 0, f.fileCount(t))

	_, err = f.store.Get(ctx, strip.ID)
	assert.True(t, errors.Is(err, errdefs.ErrNotFound))

	_, err = f.ledger.Delete(ctx, r2.ID)
	assert.True(t, errors.Is(err, errdefs.ErrNotFound))
}

func TestLedger_Get(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	strip := f.put(t, f.comic, "get")

	release, err := f.ledger.Record(ctx, f.comic.ID, dbtest.Date(2021, 1, 4), strip.ID)
	require.NoError(t, err)

	got, err := f.ledger.Get(ctx, release.ID)
	require.NoError(t, err)
	assert.Equal(t, "xkcd", got.Comic.Slug)

	_, err = f.ledger.Get(ctx, 999)
	assert.True(t, errors.Is(err, errdefs.ErrNotFound))
}
