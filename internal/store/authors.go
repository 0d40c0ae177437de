package store

import (
	"context"
	"slices"

	"github.com/locallibrary/catalog/internal/domain"
)

// CreateAuthor stores a new author.
func (s *Badger) CreateAuthor(ctx context.Context, a *domain.Author) error {
	return s.authors.Create(ctx, a.ID, a)
}

// GetAuthor retrieves an author by ID.
func (s *Badger) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	return s.authors.Get(ctx, id)
}

// GetAuthorsByIDs retrieves the authors that exist among ids.
func (s *Badger) GetAuthorsByIDs(ctx context.Context, ids []string) ([]*domain.Author, error) {
	return s.authors.GetMany(ctx, ids)
}

// ListAuthors returns every author sorted by family name, then first name.
func (s *Badger) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	authors, err := s.authors.All(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(authors, compareAuthors)
	return authors, nil
}

// UpdateAuthor replaces a stored author.
func (s *Badger) UpdateAuthor(ctx context.Context, a *domain.Author) error {
	return s.authors.Update(ctx, a.ID, a)
}

// DeleteAuthor removes an author. It fails with ErrReferenced while any book
// names the author.
func (s *Badger) DeleteAuthor(ctx context.Context, id string) error {
	return s.authors.Delete(ctx, id)
}

// CountAuthors returns the number of authors.
func (s *Badger) CountAuthors(ctx context.Context) (int, error) {
	return s.authors.Count(ctx)
}

func compareAuthors(a, b *domain.Author) int {
	if c := compareFold(a.FamilyName, b.FamilyName); c != 0 {
		return c
	}
	if c := compareFold(a.FirstName, b.FirstName); c != 0 {
		return c
	}
	return compareFold(a.ID, b.ID)
}
