package strips

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/dbtest"
	"github.com/anoixa/comic-tracker/database/models"
	stripsrepo "github.com/anoixa/comic-tracker/database/repo/strips"
	"github.com/anoixa/comic-tracker/internal/errdefs"
	"github.com/anoixa/comic-tracker/storage"
)

type fixture struct {
	provider database.Provider
	local    *storage.LocalStorage
	store    *Store
	comic    *models.Comic
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	p := dbtest.NewProvider(t)
	local, err := storage.NewLocalStorage(storage.LocalConfig{Path: t.TempDir()})
	require.NoError(t, err)
	locker, err := NewFileLocker(t.TempDir())
	require.NoError(t, err)

	return &fixture{
		provider: p,
		local:    local,
		store:    NewStore(stripsrepo.NewRepository(p), storage.NewFactoryWithProviders(local), locker),
		comic:    dbtest.CreateComic(t, p, "xkcd"),
	}
}

func (f *fixture) files(t *testing.T) []string {
	t.Helper()
	var files []string
	require.NoError(t, f.local.Walk(context.Background(), func(id string) error {
		files = append(files, id)
		return nil
	}))
	return files
}

var pngMeta = Meta{MimeType: "image/png", Extension: ".png"}

func TestChecksum_Deterministic(t *testing.T) {
	const want = "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"

	assert.Equal(t, want, Checksum([]byte("hello")))
	assert.Equal(t, Checksum([]byte("hello")), Checksum([]byte("hello")))
	assert.NotEqual(t, want, Checksum([]byte("hello!")))
	assert.True(t, ValidChecksum(want))
	assert.False(t, ValidChecksum("not-a-digest"))
}

func TestStore_PutDeduplicates(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data := []byte("hello")

	first, created, err := f.store.Put(ctx, f.comic, data, Dimensions{Width: 10, Height: 20}, pngMeta)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "xkcd/2/2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824.png", first.StoragePath)
	assert.Equal(t, "local", first.Storage)
	assert.Equal(t, int64(5), first.FileSize)
	assert.Equal(t, 10, first.Width)

	second, created, err := f.store.Put(ctx, f.comic, data, Dimensions{Width: 10, Height: 20}, pngMeta)
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, []string{first.StoragePath}, f.files(t))

	// 另一个漫画的相同内容是独立的 strip
	other := dbtest.CreateComic(t, f.provider, "lunch")
	third, created, err := f.store.Put(ctx, other, data, Dimensions{}, pngMeta)
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, third.ID)
}

func TestStore_ConcurrentPutStoresOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	data := []byte("concurrent strip")

	const workers = 16
	ids := make([]uint, workers)
	var creators atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			strip, created, err := f.store.Put(ctx, f.comic, data, Dimensions{}, pngMeta)
			if assert.NoError(t, err) {
				ids[i] = strip.ID
			}
			if created {
				creators.Add(1)
			}
		}(i)
	}
	wg.Wait()

	for _, id := range ids {
		assert.Equal(t, ids[0], id)
	}
	assert.Equal(t, int32(1), creators.Load(), "exactly one caller owns the new strip")

	var count int64
	require.NoError(t, f.provider.DB().Model(&models.Strip{}).Count(&count).Error)
	assert.Equal(t, int64(1), count)
	assert.Len(t, f.files(t), 1)
}

func TestStore_OpenReturnsBytes(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	strip, _, err := f.store.Put(ctx, f.comic, []byte("bytes"), Dimensions{}, pngMeta)
	require.NoError(t, err)

	got, err := f.store.Get(ctx, strip.ID)
	require.NoError(t, err)

	r, err := f.store.Open(ctx, got)
	require.NoError(t, err)
	data, err := io.ReadAll(r)
	require.NoError(t, err)
	_ = r.(io.Closer).Close()
	assert.Equal(t, "bytes", string(data))

	_, err = f.store.Get(ctx, 9999)
	assert.True(t, errors.Is(err, errdefs.ErrNotFound))
}

func TestStore_DeleteRespectsReferences(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	strip, _, err := f.store.Put(ctx, f.comic, []byte("held"), Dimensions{}, pngMeta)
	require.NoError(t, err)
	dbtest.CreateRelease(t, f.provider, f.comic, strip, dbtest.Date(2021, 1, 4))

	err = f.store.Delete(ctx, strip.ID)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrReferentialIntegrity))
	assert.Len(t, f.files(t), 1, "bytes must survive a rejected delete")

	free, _, err := f.store.Put(ctx, f.comic, []byte("free"), Dimensions{}, pngMeta)
	require.NoError(t, err)
	require.NoError(t, f.store.Delete(ctx, free.ID))
	assert.Equal(t, []string{strip.StoragePath}, f.files(t))

	assert.True(t, errors.Is(f.store.Delete(ctx, free.ID), errdefs.ErrNotFound))
}

func TestStore_PurgeSkipsRecreatedContent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	strip, _, err := f.store.Put(ctx, f.comic, []byte("again"), Dimensions{}, pngMeta)
	require.NoError(t, err)

	// 记录仍存在时 Purge 不删除文件
	require.NoError(t, f.store.Purge(ctx, strip))
	assert.Len(t, f.files(t), 1)
}

func TestStore_PutRejectsBadInput(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.store.Put(ctx, nil, []byte("x"), Dimensions{}, pngMeta)
	assert.True(t, errors.Is(err, errdefs.ErrUnknownComic))

	_, _, err = f.store.Put(ctx, f.comic, nil, Dimensions{}, pngMeta)
	assert.True(t, errors.Is(err, errdefs.ErrInvalidImage))
}

// failingProvider 写入总是失败
type failingProvider struct {
	storage.Provider
}

func (failingProvider) Name() string { return "broken" }

func (failingProvider) Exists(context.Context, string) (bool, error) { return false, nil }

func (failingProvider) SaveWithContext(context.Context, string, io.Reader) error {
	return errors.New("disk full")
}

func TestStore_StorageFailureLeavesNoRow(t *testing.T) {
	p := dbtest.NewProvider(t)
	locker, err := NewFileLocker(t.TempDir())
	require.NoError(t, err)
	store := NewStore(stripsrepo.NewRepository(p), storage.NewFactoryWithProviders(failingProvider{}), locker)
	comic := dbtest.CreateComic(t, p, "xkcd")

	_, _, err = store.Put(context.Background(), comic, []byte("data"), Dimensions{}, pngMeta)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errdefs.ErrStorageFailure))

	var se *errdefs.StorageError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "write", se.Op)

	var count int64
	require.NoError(t, p.DB().Model(&models.Strip{}).Count(&count).Error)
	assert.Zero(t, count)
}

// failingRepo 登记 strip 总是失败
type failingRepo struct {
	Repository
}

func (failingRepo) Create(context.Context, *models.Strip) error {
	return errors.New("database is locked")
}

func TestStore_FailedCreateRemovesNewFile(t *testing.T) {
	f := newFixture(t)
	locker, err := NewFileLocker(t.TempDir())
	require.NoError(t, err)
	store := NewStore(failingRepo{Repository: stripsrepo.NewRepository(f.provider)}, storage.NewFactoryWithProviders(f.local), locker)

	_, _, err = store.Put(context.Background(), f.comic, []byte("orphan"), Dimensions{}, pngMeta)
	require.Error(t, err)
	assert.Empty(t, f.files(t))
}

func TestStore_CanceledContextStillCompletesWrite(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	strip, created, err := f.store.Put(ctx, f.comic, []byte("late"), Dimensions{}, pngMeta)
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, []string{strip.StoragePath}, f.files(t))
}
