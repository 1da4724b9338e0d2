package ingest

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"sync/atomic"
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
	"github.com/anoixa/comic-tracker/internal/comics"
	"github.com/anoixa/comic-tracker/internal/errdefs"
	"github.com/anoixa/comic-tracker/internal/releases"
	"github.com/anoixa/comic-tracker/internal/strips"
	"github.com/anoixa/comic-tracker/storage"
)

type countingInvalidator struct{ n atomic.Int32 }

func (c *countingInvalidator) Invalidate(context.Context) error {
	c.n.Add(1)
	return nil
}

type fixture struct {
	db       database.Provider
	local    *storage.LocalStorage
	store    *strips.Store
	ledger   *releases.Ledger
	registry *comics.Registry
	cache    *countingInvalidator
	svc      *Service
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
	comicRepo := comicsrepo.NewRepository(p)
	ledger := releases.NewLedger(releasesrepo.NewRepository(p), comicRepo, stripRepo, store)
	registry := comics.NewRegistry(comicRepo)
	inv := &countingInvalidator{}

	dbtest.CreateComic(t, p, "xkcd")

	return &fixture{
		db:       p,
		local:    local,
		store:    store,
		ledger:   ledger,
		registry: registry,
		cache:    inv,
		svc:      NewService(registry, store, ledger, inv, 0),
	}
}

func (f *fixture) count(t *testing.T, model interface{}) int64 {
	t.Helper()
	var n int64
	require.NoError(t, f.db.DB().Model(model).Count(&n).Error)
	return n
}

func (f *fixture) files(t *testing.T) int {
	t.Helper()
	n := 0
	require.NoError(t, f.local.Walk(context.Background(), func(string) error {
		n++
		return nil
	}))
	return n
}

func pngBytes(t *testing.T, shade uint8) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 30, 10))
	img.Set(1, 1, color.RGBA{R: shade, A: 255})
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestIngest_StoresAndRecords(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data := pngBytes(t, 1)

	res, err := f.svc.Ingest(ctx, Request{ComicSlug: "xkcd", PubDate: dbtest.Date(2021, 1, 4), Data: data, Title: "Monday"})
	require.NoError(t, err)
	assert.True(t, res.StripCreated)
	assert.Equal(t, 30, res.Strip.Width)
	assert.Equal(t, "image/png", res.Strip.MimeType)
	assert.Equal(t, "Monday", res.Strip.Title)
	assert.Equal(t, "xkcd", res.Release.Comic.Slug)
	assert.Equal(t, int32(1), f.cache.n.Load())

	// 同一内容在另一天再次发布，复用 strip
	again, err := f.svc.Ingest(ctx, Request{ComicID: res.Comic.ID, PubDate: dbtest.Date(2021, 1, 11), Data: data})
	require.NoError(t, err)
	assert.False(t, again.StripCreated)
	assert.Equal(t, res.Strip.ID, again.Strip.ID)

	assert.Equal(t, int64(1), f.count(t, &models.Strip{}))
	assert.Equal(t, int64(2), f.count(t, &models.Release{}))
	assert.Equal(t, 1, f.files(t))
}

func TestIngest_DuplicateKeepsExistingStrip(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	req := Request{ComicSlug: "xkcd", PubDate: dbtest.Date(2021, 1, 4), Data: pngBytes(t, 2)}

	_, err := f.svc.Ingest(ctx, req)
	require.NoError(t, err)

	_, err = f.svc.Ingest(ctx, req)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrDuplicateRelease))
	assert.Equal(t, int64(1), f.count(t, &models.Strip{}))
	assert.Equal(t, 1, f.files(t))
	assert.Equal(t, int32(1), f.cache.n.Load())
}

type failingRecorder struct{}

func (failingRecorder) Record(context.Context, uint, time.Time, uint) (*models.Release, error) {
	return nil, errors.New("database is locked")
}

func TestIngest_RollsBackNewStripWhenRecordFails(t *testing.T) {
	f := newFixture(t)
	svc := NewService(f.registry, f.store, failingRecorder{}, nil, 0)

	_, err := svc.Ingest(context.Background(), Request{ComicSlug: "xkcd", PubDate: dbtest.Date(2021, 1, 4), Data: pngBytes(t, 3)})
	require.Error(t, err)
	assert.Zero(t, f.count(t, &models.Strip{}))
	assert.Zero(t, f.files(t))
}

func TestIngest_RejectsBadRequests(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	date := dbtest.Date(2021, 1, 4)

	_, err := f.svc.Ingest(ctx, Request{ComicSlug: "nope", PubDate: date, Data: pngBytes(t, 4)})
	assert.True(t, errors.Is(err, errdefs.ErrUnknownComic))

	_, err = f.svc.Ingest(ctx, Request{PubDate: date, Data: pngBytes(t, 4)})
	assert.True(t, errors.Is(err, errdefs.ErrUnknownComic))

	_, err = f.svc.Ingest(ctx, Request{ComicSlug: "xkcd", PubDate: date, Data: []byte("not an image")})
	assert.True(t, errors.Is(err, errdefs.ErrInvalidImage))

	_, err = f.svc.Ingest(ctx, Request{ComicSlug: "xkcd", Data: pngBytes(t, 4)})
	assert.True(t, errors.Is(err, errdefs.ErrInvalidInput))

	small := NewService(f.registry, f.store, f.ledger, nil, 10)
	_, err = small.Ingest(ctx, Request{ComicSlug: "xkcd", PubDate: date, Data: pngBytes(t, 4)})
	assert.True(t, errors.Is(err, errdefs.ErrInvalidImage))

	assert.Zero(t, f.count(t, &models.Strip{}))
}

func TestIngestBatch_ReportsPerItem(t *testing.T) {
	f := newFixture(t)
	reqs := []Request{
		{ComicSlug: "xkcd", PubDate: dbtest.Date(2021, 1, 4), Data: pngBytes(t, 5)},
		{ComicSlug: "missing", PubDate: dbtest.Date(2021, 1, 4), Data: pngBytes(t, 6)},
		{ComicSlug: "xkcd", PubDate: dbtest.Date(2021, 1, 5), Data: pngBytes(t, 7)},
	}

	results, err := f.svc.IngestBatch(context.Background(), reqs)
	require.NoError(t, err)
	require.Len(t, results, 3)

	assert.NoError(t, results[0].Err)
	assert.True(t, errors.Is(results[1].Err, errdefs.ErrUnknownComic))
	assert.NotEmpty(t, results[1].Error)
	assert.NoError(t, results[2].Err)
	assert.Equal(t, int64(2), f.count(t, &models.Release{}))
}
