package collections

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/anoixa/comic-tracker/database"
	"github.com/anoixa/comic-tracker/database/dbtest"
	"github.com/anoixa/comic-tracker/database/models"
	collectionsrepo "github.com/anoixa/comic-tracker/database/repo/collections"
	comicsrepo "github.com/anoixa/comic-tracker/database/repo/comics"
	"github.com/anoixa/comic-tracker/internal/comics"
	"github.com/anoixa/comic-tracker/internal/errdefs"
)

func newService(t *testing.T) (*Service, database.Provider) {
	t.Helper()
	p := dbtest.NewProvider(t)
	registry := comics.NewRegistry(comicsrepo.NewRepository(p))
	return NewService(collectionsrepo.NewRepository(p), registry), p
}

func sets(t *testing.T, p database.Provider, id uint) int {
	t.Helper()
	var comic models.Comic
	require.NoError(t, p.DB().First(&comic, id).Error)
	return comic.NumberOfSets
}

func TestService_MembershipMaintainsSetCount(t *testing.T) {
	svc, p := newService(t)
	ctx := context.Background()
	xkcd := dbtest.CreateComic(t, p, "xkcd")
	lunch := dbtest.CreateComic(t, p, "lunch")

	nerdy, err := svc.Create(ctx, "Nerdy", "")
	require.NoError(t, err)
	daily, err := svc.Create(ctx, "Daily", "weekday strips")
	require.NoError(t, err)

	got, err := svc.AddComics(ctx, nerdy.ID, []string{"xkcd", "lunch"})
	require.NoError(t, err)
	require.Len(t, got.Comics, 2)
	assert.Equal(t, "lunch", got.Comics[0].Slug)

	_, err = svc.AddComics(ctx, daily.ID, []string{"xkcd", "xkcd"})
	require.NoError(t, err)
	assert.Equal(t, 2, sets(t, p, xkcd.ID))
	assert.Equal(t, 1, sets(t, p, lunch.ID))

	require.NoError(t, svc.RemoveComic(ctx, nerdy.ID, "lunch"))
	assert.Equal(t, 0, sets(t, p, lunch.ID))

	require.NoError(t, svc.Delete(ctx, daily.ID))
	assert.Equal(t, 1, sets(t, p, xkcd.ID))

	list, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Nerdy", list[0].Name)
}

func TestService_Errors(t *testing.T) {
	svc, p := newService(t)
	ctx := context.Background()
	dbtest.CreateComic(t, p, "xkcd")

	_, err := svc.Create(ctx, "  ", "")
	assert.True(t, errors.Is(err, errdefs.ErrInvalidInput))

	c, err := svc.Create(ctx, "Nerdy", "")
	require.NoError(t, err)
	_, err = svc.Create(ctx, "Nerdy", "")
	assert.True(t, errors.Is(err, errdefs.ErrConflict))

	_, err = svc.AddComics(ctx, c.ID, []string{"xkcd", "missing"})
	assert.True(t, errors.Is(err, errdefs.ErrUnknownComic))

	_, err = svc.AddComics(ctx, 999, []string{"xkcd"})
	assert.True(t, errors.Is(err, errdefs.ErrNotFound))

	assert.True(t, errors.Is(svc.Delete(ctx, 999), errdefs.ErrNotFound))
	_, err = svc.Get(ctx, 999)
	assert.True(t, errors.Is(err, errdefs.ErrNotFound))
}
