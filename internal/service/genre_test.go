package service

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainerrors "github.com/locallibrary/catalog/internal/errors"
)

func TestGenreService_CreateOrReuse(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	first, created, err := svc.genres.CreateGenre(ctx, "Fantasy")
	require.NoError(t, err)
	assert.True(t, created)

	again, created, err := svc.genres.CreateGenre(ctx, "Fantasy")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, first.ID, again.ID)

	// Matching is exact.
	other, created, err := svc.genres.CreateGenre(ctx, "fantasy")
	require.NoError(t, err)
	assert.True(t, created)
	assert.NotEqual(t, first.ID, other.ID)

	n, err := svc.store.CountGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
}

func TestGenreService_CreateConcurrent(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	const workers = 8
	ids := make([]string, workers)
	var wg sync.WaitGroup
	for i := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			g, _, err := svc.genres.CreateGenre(ctx, "Horror")
			if assert.NoError(t, err) {
				ids[i] = g.ID
			}
		}()
	}
	wg.Wait()

	for _, got := range ids {
		assert.Equal(t, ids[0], got)
	}
	n, err := svc.store.CountGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func TestGenreService_CreateValidates(t *testing.T) {
	svc := setupTestServices(t)

	_, _, err := svc.genres.CreateGenre(context.Background(), "ab")
	assert.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestGenreService_Update(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	poetry, _, err := svc.genres.CreateGenre(ctx, "Poetry")
	require.NoError(t, err)
	drama, _, err := svc.genres.CreateGenre(ctx, "Drama")
	require.NoError(t, err)

	updated, err := svc.genres.UpdateGenre(ctx, poetry.ID, "Verse")
	require.NoError(t, err)
	assert.Equal(t, "Verse", updated.Name)

	// Keeping its own name is fine.
	_, err = svc.genres.UpdateGenre(ctx, poetry.ID, "Verse")
	require.NoError(t, err)

	_, err = svc.genres.UpdateGenre(ctx, drama.ID, "Verse")
	require.ErrorIs(t, err, domainerrors.ErrValidation)
}

func TestGenreService_DetailAndDeleteGuard(t *testing.T) {
	svc := setupTestServices(t)
	ctx := context.Background()

	g, _, err := svc.genres.CreateGenre(ctx, "Mystery")
	require.NoError(t, err)
	a, err := svc.authors.CreateAuthor(ctx, AuthorInput{FirstName: "Agatha", FamilyName: "Christie"})
	require.NoError(t, err)
	_, err = svc.books.CreateBook(ctx, BookInput{Title: "Poirot", AuthorID: a.ID, Summary: "Detective.", ISBN: "1", GenreIDs: []string{g.ID}})
	require.NoError(t, err)

	d, err := svc.genres.GetGenreDetail(ctx, g.ID)
	require.NoError(t, err)
	assert.Len(t, d.Books, 1)

	assert.ErrorIs(t, svc.genres.DeleteGenre(ctx, g.ID), domainerrors.ErrConflict)

	_, err = svc.genres.GetGenreDetail(ctx, "genre-missing")
	require.ErrorIs(t, err, domainerrors.ErrNotFound)
	assert.Equal(t, "Genre not found", domainerrors.MessageOf(err, ""))
}
