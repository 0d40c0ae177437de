package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/samber/lo"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/dto"
	"github.com/locallibrary/catalog/internal/search"
	"github.com/locallibrary/catalog/internal/store"
)

// SearchService bridges the search index with the store. A nil
// *SearchService, or one without an index, is valid and indexes nothing.
//
// Index maintenance never fails a write: errors are logged and the next
// Reindex repairs the index.
type SearchService struct {
	index    *search.SearchIndex
	store    store.Store
	enricher *dto.Enricher
	logger   *slog.Logger
}

// NewSearchService creates a new search service. index may be nil when
// search is disabled.
func NewSearchService(index *search.SearchIndex, store store.Store, logger *slog.Logger) *SearchService {
	return &SearchService{
		index:    index,
		store:    store,
		enricher: dto.NewEnricher(store),
		logger:   logger,
	}
}

// Enabled reports whether an index is attached.
func (s *SearchService) Enabled() bool {
	return s != nil && s.index != nil
}

// DocumentCount returns the number of indexed documents, or zero when search
// is disabled.
func (s *SearchService) DocumentCount() (uint64, error) {
	if !s.Enabled() {
		return 0, nil
	}
	return s.index.DocumentCount()
}

// Search runs a catalog-wide query. Unset limit and sort order take their
// defaults.
func (s *SearchService) Search(ctx context.Context, params search.SearchParams) (*search.SearchResult, error) {
	if !s.Enabled() {
		return &search.SearchResult{Query: params.Query, Hits: []search.SearchHit{}}, nil
	}
	defaults := search.DefaultSearchParams()
	if params.Limit <= 0 {
		params.Limit = defaults.Limit
	}
	if params.SortBy == "" {
		params.SortBy = defaults.SortBy
	}
	return s.index.Search(ctx, params)
}

// IndexAuthor indexes a single author.
func (s *SearchService) IndexAuthor(_ context.Context, a *domain.Author) {
	if !s.Enabled() {
		return
	}
	if err := s.index.IndexDocument(search.AuthorToSearchDocument(a)); err != nil {
		s.logger.Warn("failed to index author", "id", a.ID, "error", err)
	}
}

// IndexGenre indexes a single genre.
func (s *SearchService) IndexGenre(_ context.Context, g *domain.Genre) {
	if !s.Enabled() {
		return
	}
	if err := s.index.IndexDocument(search.GenreToSearchDocument(g)); err != nil {
		s.logger.Warn("failed to index genre", "id", g.ID, "error", err)
	}
}

// IndexBooks indexes books with their author and genre names denormalized.
func (s *SearchService) IndexBooks(ctx context.Context, books ...*domain.Book) {
	if !s.Enabled() || len(books) == 0 {
		return
	}
	docs, err := s.bookDocuments(ctx, books)
	if err == nil {
		err = s.index.IndexDocuments(docs)
	}
	if err != nil {
		s.logger.Warn("failed to index books", "count", len(books), "error", err)
		return
	}
	s.logger.Debug("indexed books", "count", len(books))
}

// Remove drops a document from the index.
func (s *SearchService) Remove(_ context.Context, id string) {
	if !s.Enabled() {
		return
	}
	if err := s.index.DeleteDocument(id); err != nil {
		s.logger.Warn("failed to remove search document", "id", id, "error", err)
	}
}

// Reindex rebuilds the index from the store.
func (s *SearchService) Reindex(ctx context.Context) error {
	if !s.Enabled() {
		return nil
	}

	authors, err := s.store.ListAuthors(ctx)
	if err != nil {
		return fmt.Errorf("list authors: %w", err)
	}
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return fmt.Errorf("list genres: %w", err)
	}
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return fmt.Errorf("list books: %w", err)
	}

	docs, err := s.bookDocuments(ctx, books)
	if err != nil {
		return err
	}
	docs = append(docs, lo.Map(authors, func(a *domain.Author, _ int) *search.SearchDocument {
		return search.AuthorToSearchDocument(a)
	})...)
	docs = append(docs, lo.Map(genres, func(g *domain.Genre, _ int) *search.SearchDocument {
		return search.GenreToSearchDocument(g)
	})...)

	if err := s.index.Rebuild(); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	if err := s.index.IndexDocuments(docs); err != nil {
		return fmt.Errorf("index documents: %w", err)
	}

	s.logger.Info("search index rebuilt", "documents", len(docs))
	return nil
}

func (s *SearchService) bookDocuments(ctx context.Context, books []*domain.Book) ([]*search.SearchDocument, error) {
	enriched, err := s.enricher.EnrichBooks(ctx, books)
	if err != nil {
		return nil, fmt.Errorf("enrich books: %w", err)
	}
	return lo.Map(enriched, func(b *dto.Book, _ int) *search.SearchDocument {
		names := lo.Map(b.Genres, func(g *domain.Genre, _ int) string { return g.Name })
		return search.BookToSearchDocument(b.Book, b.AuthorName(), names)
	}), nil
}
