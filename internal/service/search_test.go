package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog/internal/search"
)

func hitIDs(res *search.SearchResult) []string {
	ids := make([]string, 0, len(res.Hits))
	for _, h := range res.Hits {
		ids = append(ids, h.ID)
	}
	return ids
}

func TestSearchService_TracksWrites(t *testing.T) {
	svc := setupTestServices(t)
	f := newBookFixture(t, svc)
	ctx := context.Background()

	b, err := svc.books.CreateBook(ctx, BookInput{Title: "The Tombs of Atuan", AuthorID: f.author.ID, Summary: "Tenar.", ISBN: "9780689845369"})
	require.NoError(t, err)

	res, err := svc.search.Search(ctx, search.SearchParams{Query: "atuan"})
	require.NoError(t, err)
	assert.Equal(t, []string{b.ID}, hitIDs(res))

	// Renaming the author reindexes their books.
	_, err = svc.authors.UpdateAuthor(ctx, f.author.ID, AuthorInput{FirstName: "Ursula", FamilyName: "Kroeber"})
	require.NoError(t, err)
	res, err = svc.search.Search(ctx, search.SearchParams{Query: "kroeber"})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{f.author.ID, b.ID}, hitIDs(res))

	require.NoError(t, svc.books.DeleteBook(ctx, b.ID))
	res, err = svc.search.Search(ctx, search.SearchParams{Query: "atuan"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
}

func TestSearchService_Reindex(t *testing.T) {
	svc := setupTestServices(t)
	newBookFixture(t, svc)
	ctx := context.Background()

	require.NoError(t, svc.search.Reindex(ctx))

	res, err := svc.search.Search(ctx, search.SearchParams{Query: "fantasy"})
	require.NoError(t, err)
	assert.Len(t, res.Hits, 1)
}

func TestSearchService_Disabled(t *testing.T) {
	var s *SearchService
	assert.False(t, s.Enabled())

	res, err := s.Search(context.Background(), search.SearchParams{Query: "anything"})
	require.NoError(t, err)
	assert.Empty(t, res.Hits)
	assert.NoError(t, s.Reindex(context.Background()))

	disabled := NewSearchService(nil, nil, nil)
	assert.False(t, disabled.Enabled())
}
