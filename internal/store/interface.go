// Package store defines the persistence interface for the catalog and its
// default Badger implementation.
package store

import (
	"context"

	"github.com/locallibrary/catalog/internal/domain"
)

// Store defines the interface for all persistence operations.
//
// Writes that name a related document fail with ErrInvalidReference when it
// does not exist. Deletes of a document that others still reference fail with
// ErrReferenced; the check and the delete are atomic. Deleting a missing
// document is a no-op.
type Store interface {
	// Lifecycle
	Close() error

	// Authors
	CreateAuthor(ctx context.Context, a *domain.Author) error
	GetAuthor(ctx context.Context, id string) (*domain.Author, error)
	GetAuthorsByIDs(ctx context.Context, ids []string) ([]*domain.Author, error)
	ListAuthors(ctx context.Context) ([]*domain.Author, error)
	UpdateAuthor(ctx context.Context, a *domain.Author) error
	DeleteAuthor(ctx context.Context, id string) error
	CountAuthors(ctx context.Context) (int, error)

	// Books
	CreateBook(ctx context.Context, b *domain.Book) error
	GetBook(ctx context.Context, id string) (*domain.Book, error)
	GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error)
	ListBooks(ctx context.Context) ([]*domain.Book, error)
	ListBooksByAuthor(ctx context.Context, authorID string) ([]*domain.Book, error)
	ListBooksByGenre(ctx context.Context, genreID string) ([]*domain.Book, error)
	UpdateBook(ctx context.Context, b *domain.Book) error
	DeleteBook(ctx context.Context, id string) error
	CountBooks(ctx context.Context) (int, error)

	// Genres
	CreateGenre(ctx context.Context, g *domain.Genre) error
	GetGenre(ctx context.Context, id string) (*domain.Genre, error)
	GetGenreByName(ctx context.Context, name string) (*domain.Genre, error)
	GetGenresByIDs(ctx context.Context, ids []string) ([]*domain.Genre, error)
	ListGenres(ctx context.Context) ([]*domain.Genre, error)
	UpdateGenre(ctx context.Context, g *domain.Genre) error
	DeleteGenre(ctx context.Context, id string) error
	CountGenres(ctx context.Context) (int, error)

	// Book instances
	CreateBookInstance(ctx context.Context, bi *domain.BookInstance) error
	GetBookInstance(ctx context.Context, id string) (*domain.BookInstance, error)
	ListBookInstances(ctx context.Context) ([]*domain.BookInstance, error)
	ListBookInstancesByBook(ctx context.Context, bookID string) ([]*domain.BookInstance, error)
	UpdateBookInstance(ctx context.Context, bi *domain.BookInstance) error
	DeleteBookInstance(ctx context.Context, id string) error
	CountBookInstances(ctx context.Context) (int, error)
	CountBookInstancesByStatus(ctx context.Context, status domain.Status) (int, error)
}

// Compile-time check that the Badger store satisfies Store.
var _ Store = (*Badger)(nil)
