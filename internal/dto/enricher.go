package dto

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"github.com/locallibrary/catalog/internal/domain"
)

// Store defines the interface for fetching related entities during enrichment.
// This allows Enricher to remain testable and independent of concrete store implementation.
type Store interface {
	GetAuthorsByIDs(ctx context.Context, ids []string) ([]*domain.Author, error)
	GetGenresByIDs(ctx context.Context, ids []string) ([]*domain.Genre, error)
	GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error)
}

// Enricher populates references: one batch read per related kind, never one
// per document. Missing references leave the field empty.
type Enricher struct {
	store Store
}

// NewEnricher creates a new enricher.
func NewEnricher(store Store) *Enricher {
	return &Enricher{store: store}
}

// EnrichBook populates a single book.
func (e *Enricher) EnrichBook(ctx context.Context, book *domain.Book) (*Book, error) {
	out, err := e.EnrichBooks(ctx, []*domain.Book{book})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// EnrichBooks populates the author and genres of every book.
func (e *Enricher) EnrichBooks(ctx context.Context, books []*domain.Book) ([]*Book, error) {
	authorIDs := lo.Uniq(lo.Map(books, func(b *domain.Book, _ int) string { return b.AuthorID }))
	genreIDs := lo.Uniq(lo.FlatMap(books, func(b *domain.Book, _ int) []string { return b.GenreIDs }))

	authors, err := e.store.GetAuthorsByIDs(ctx, authorIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch authors: %w", err)
	}
	authorMap := lo.KeyBy(authors, func(a *domain.Author) string { return a.ID })

	var genreMap map[string]*domain.Genre
	if len(genreIDs) > 0 {
		genres, err := e.store.GetGenresByIDs(ctx, genreIDs)
		if err != nil {
			return nil, fmt.Errorf("fetch genres: %w", err)
		}
		genreMap = lo.KeyBy(genres, func(g *domain.Genre) string { return g.ID })
	}

	return lo.Map(books, func(b *domain.Book, _ int) *Book {
		return &Book{
			Book:   b,
			Author: authorMap[b.AuthorID],
			Genres: lo.FilterMap(b.GenreIDs, func(id string, _ int) (*domain.Genre, bool) {
				g, ok := genreMap[id]
				return g, ok
			}),
		}
	}), nil
}

// EnrichBookInstances populates the book of every copy.
func (e *Enricher) EnrichBookInstances(ctx context.Context, instances []*domain.BookInstance) ([]*BookInstance, error) {
	bookIDs := lo.Uniq(lo.Map(instances, func(bi *domain.BookInstance, _ int) string { return bi.BookID }))

	books, err := e.store.GetBooksByIDs(ctx, bookIDs)
	if err != nil {
		return nil, fmt.Errorf("fetch books: %w", err)
	}
	bookMap := lo.KeyBy(books, func(b *domain.Book) string { return b.ID })

	return lo.Map(instances, func(bi *domain.BookInstance, _ int) *BookInstance {
		return &BookInstance{BookInstance: bi, Book: bookMap[bi.BookID]}
	}), nil
}
