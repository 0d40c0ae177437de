package store

import (
	"context"
	"slices"

	"github.com/locallibrary/catalog/internal/domain"
)

// CreateBook stores a new book. The author and every genre must exist.
func (s *Badger) CreateBook(ctx context.Context, b *domain.Book) error {
	return s.books.Create(ctx, b.ID, b)
}

// GetBook retrieves a book by ID.
func (s *Badger) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	return s.books.Get(ctx, id)
}

// GetBooksByIDs retrieves the books that exist among ids.
func (s *Badger) GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error) {
	return s.books.GetMany(ctx, ids)
}

// ListBooks returns every book sorted by title.
func (s *Badger) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	books, err := s.books.All(ctx)
	if err != nil {
		return nil, err
	}
	return sortBooks(books), nil
}

// ListBooksByAuthor returns the author's books sorted by title.
func (s *Badger) ListBooksByAuthor(ctx context.Context, authorID string) ([]*domain.Book, error) {
	books, err := s.books.ListByIndex(ctx, indexAuthor, authorID)
	if err != nil {
		return nil, err
	}
	return sortBooks(books), nil
}

// ListBooksByGenre returns the books tagged with the genre sorted by title.
func (s *Badger) ListBooksByGenre(ctx context.Context, genreID string) ([]*domain.Book, error) {
	books, err := s.books.ListByIndex(ctx, indexGenre, genreID)
	if err != nil {
		return nil, err
	}
	return sortBooks(books), nil
}

// UpdateBook replaces a stored book.
func (s *Badger) UpdateBook(ctx context.Context, b *domain.Book) error {
	return s.books.Update(ctx, b.ID, b)
}

// DeleteBook removes a book. It fails with ErrReferenced while copies of the
// book exist.
func (s *Badger) DeleteBook(ctx context.Context, id string) error {
	return s.books.Delete(ctx, id)
}

// CountBooks returns the number of books.
func (s *Badger) CountBooks(ctx context.Context) (int, error) {
	return s.books.Count(ctx)
}

func sortBooks(books []*domain.Book) []*domain.Book {
	slices.SortFunc(books, func(a, b *domain.Book) int {
		if c := compareFold(a.Title, b.Title); c != 0 {
			return c
		}
		return compareFold(a.ID, b.ID)
	})
	return books
}
