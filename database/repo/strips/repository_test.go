package strips

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/dbtest"
	"github.com/anoixa/comic-tracker/database/models"
	"github.com/anoixa/comic-tracker/internal/errdefs"
)

func newStrip(comicID uint, checksum string) *models.Strip {
	return &models.Strip{
		ComicID:     comicID,
		Fetched:     time.Now().UTC(),
		Checksum:    checksum,
		StoragePath: "xkcd/" + checksum[:1] + "/" + checksum + ".png",
		Storage:     "local",
		MimeType:    "image/png",
		FileSize:    10,
	}
}

func TestRepository_UniqueChecksumPerComic(t *testing.T) {
	p := dbtest.NewProvider(t)
	repo := NewRepository(p)
	ctx := context.Background()

	xkcd := dbtest.CreateComic(t, p, "xkcd")
	lunch := dbtest.CreateComic(t, p, "lunch")

	require.NoError(t, repo.Create(ctx, newStrip(xkcd.ID, "aaaa")))
	err := repo.Create(ctx, newStrip(xkcd.ID, "aaaa"))
	require.Error(t, err)
	assert.True(t, database.IsUniqueViolation(err))

	// 不同漫画可以有相同校验和
	require.NoError(t, repo.Create(ctx, newStrip(lunch.ID, "aaaa")))

	got, err := repo.GetByChecksum(ctx, xkcd.ID, "aaaa")
	require.NoError(t, err)
	assert.Equal(t, xkcd.ID, got.ComicID)

	_, err = repo.GetByChecksum(ctx, xkcd.ID, "bbbb")
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_DeleteUnreferenced(t *testing.T) {
	p := dbtest.NewProvider(t)
	repo := NewRepository(p)
	ctx := context.Background()

	comic := dbtest.CreateComic(t, p, "xkcd")
	held := dbtest.CreateStrip(t, p, comic, "held")
	free := dbtest.CreateStrip(t, p, comic, "free")
	dbtest.CreateRelease(t, p, comic, held, dbtest.Date(2021, 1, 4))

	_, err := repo.DeleteUnreferenced(ctx, held.ID)
	assert.True(t, errors.Is(err, errdefs.ErrReferentialIntegrity))

	deleted, err := repo.DeleteUnreferenced(ctx, free.ID)
	require.NoError(t, err)
	assert.Equal(t, free.StoragePath, deleted.StoragePath)

	_, err = repo.GetByID(ctx, free.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))

	_, err = repo.DeleteUnreferenced(ctx, free.ID)
	assert.True(t, errors.Is(err, gorm.ErrRecordNotFound))
}

func TestRepository_DeleteUnreferencedKeepsReferencedRow(t *testing.T) {
	p := dbtest.NewProvider(t)
	repo := NewRepository(p)
	ctx := context.Background()

	comic := dbtest.CreateComic(t, p, "xkcd")
	held := dbtest.CreateStrip(t, p, comic, "held")
	dbtest.CreateRelease(t, p, comic, held, dbtest.Date(2021, 1, 4))
	dbtest.CreateRelease(t, p, comic, held, dbtest.Date(2021, 1, 11))

	_, err := repo.DeleteUnreferenced(ctx, held.ID)
	var ie *errdefs.IntegrityError
	require.ErrorAs(t, err, &ie)
	assert.Equal(t, int64(2), ie.References)

	got, err := repo.GetByID(ctx, held.ID)
	require.NoError(t, err)
	assert.Equal(t, held.Checksum, got.Checksum)
}

func TestReferencedError(t *testing.T) {
	err := referencedError(9, fmt.Errorf("delete: %w", gorm.ErrForeignKeyViolated))
	assert.True(t, errors.Is(err, errdefs.ErrReferentialIntegrity))

	err = referencedError(9, errors.New("FOREIGN KEY constraint failed"))
	assert.True(t, errors.Is(err, errdefs.ErrReferentialIntegrity))

	boom := errors.New("disk I/O error")
	assert.Same(t, boom, referencedError(9, boom))
}

func TestRepository_ListUnreferencedAndPaths(t *testing.T) {
	p := dbtest.NewProvider(t)
	repo := NewRepository(p)
	ctx := context.Background()

	comic := dbtest.CreateComic(t, p, "xkcd")
	held := dbtest.CreateStrip(t, p, comic, "held")
	free := dbtest.CreateStrip(t, p, comic, "free")
	dbtest.CreateRelease(t, p, comic, held, dbtest.Date(2021, 1, 4))

	orphans, err := repo.ListUnreferenced(ctx, 0)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, free.ID, orphans[0].ID)

	paths, err := repo.StoragePaths(ctx, "local")
	require.NoError(t, err)
	assert.Len(t, paths, 2)
	assert.Contains(t, paths, held.StoragePath)

	none, err := repo.StoragePaths(ctx, "minio")
	require.NoError(t, err)
	assert.Empty(t, none)

	refs, err := repo.CountReleases(ctx, held.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), refs)
}
