package collections

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/dbtest"
	"github.com/anoixa/comic-tracker/database/models"
)

func setsOf(t *testing.T, p database.Provider, comicID uint) int {
	t.Helper()
	var comic models.Comic
	require.NoError(t, p.DB().First(&comic, comicID).Error)
	return comic.NumberOfSets
}

func TestRepository_NumberOfSetsFollowsMembership(t *testing.T) {
	p := dbtest.NewProvider(t)
	repo := NewRepository(p)
	ctx := context.Background()

	xkcd := dbtest.CreateComic(t, p, "xkcd")
	lunch := dbtest.CreateComic(t, p, "lunch")

	nerdy := &models.Collection{Name: "nerdy"}
	daily := &models.Collection{Name: "daily"}
	require.NoError(t, repo.Create(ctx, nerdy))
	require.NoError(t, repo.Create(ctx, daily))

	require.NoError(t, repo.AddComics(ctx, nerdy.ID, []uint{xkcd.ID, lunch.ID}))
	require.NoError(t, repo.AddComics(ctx, daily.ID, []uint{xkcd.ID}))
	// 重复加入不报错也不重复计数
	require.NoError(t, repo.AddComics(ctx, daily.ID, []uint{xkcd.ID}))

	assert.Equal(t, 2, setsOf(t, p, xkcd.ID))
	assert.Equal(t, 1, setsOf(t, p, lunch.ID))

	require.NoError(t, repo.RemoveComic(ctx, nerdy.ID, lunch.ID))
	assert.Equal(t, 0, setsOf(t, p, lunch.ID))

	require.NoError(t, repo.Delete(ctx, daily.ID))
	assert.Equal(t, 1, setsOf(t, p, xkcd.ID))

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "nerdy", list[0].Name)
	require.Len(t, list[0].Comics, 1)
	assert.Equal(t, "xkcd", list[0].Comics[0].Slug)
}

func TestRepository_MissingCollection(t *testing.T) {
	p := dbtest.NewProvider(t)
	repo := NewRepository(p)
	ctx := context.Background()

	comic := dbtest.CreateComic(t, p, "xkcd")

	assert.Error(t, repo.AddComics(ctx, 999, []uint{comic.ID}))
	assert.Error(t, repo.RemoveComic(ctx, 999, comic.ID))
	assert.Error(t, repo.Delete(ctx, 999))
	_, err := repo.GetByID(ctx, 999)
	assert.Error(t, err)
	assert.NoError(t, repo.AddComics(ctx, 999, nil))
}
