package service

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog/internal/search"
	"github.com/locallibrary/catalog/internal/store"
)

type testServices struct {
	store     store.Store
	search    *SearchService
	catalog   *CatalogService
	authors   *AuthorService
	books     *BookService
	genres    *GenreService
	instances *BookInstanceService
}

// setupTestServices wires every service over a temporary Badger store and an
// in-memory search index.
func setupTestServices(t *testing.T) *testServices {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	index, err := search.NewSearchIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	searchSvc := NewSearchService(index, s, logger)
	return &testServices{
		store:     s,
		search:    searchSvc,
		catalog:   NewCatalogService(s, logger),
		authors:   NewAuthorService(s, searchSvc, logger),
		books:     NewBookService(s, searchSvc, logger),
		genres:    NewGenreService(s, searchSvc, logger),
		instances: NewBookInstanceService(s, logger),
	}
}
