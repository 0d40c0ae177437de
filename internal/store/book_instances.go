package store

import (
	"context"
	"slices"

	"github.com/locallibrary/catalog/internal/domain"
)

// CreateBookInstance stores a new copy. The book must exist.
func (s *Badger) CreateBookInstance(ctx context.Context, bi *domain.BookInstance) error {
	return s.instances.Create(ctx, bi.ID, bi)
}

// GetBookInstance retrieves a copy by ID.
func (s *Badger) GetBookInstance(ctx context.Context, id string) (*domain.BookInstance, error) {
	return s.instances.Get(ctx, id)
}

// ListBookInstances returns every copy in creation order.
func (s *Badger) ListBookInstances(ctx context.Context) ([]*domain.BookInstance, error) {
	instances, err := s.instances.All(ctx)
	if err != nil {
		return nil, err
	}
	return sortInstances(instances), nil
}

// ListBookInstancesByBook returns the copies of a book in creation order.
func (s *Badger) ListBookInstancesByBook(ctx context.Context, bookID string) ([]*domain.BookInstance, error) {
	instances, err := s.instances.ListByIndex(ctx, indexBook, bookID)
	if err != nil {
		return nil, err
	}
	return sortInstances(instances), nil
}

// UpdateBookInstance replaces a stored copy.
func (s *Badger) UpdateBookInstance(ctx context.Context, bi *domain.BookInstance) error {
	return s.instances.Update(ctx, bi.ID, bi)
}

// DeleteBookInstance removes a copy.
func (s *Badger) DeleteBookInstance(ctx context.Context, id string) error {
	return s.instances.Delete(ctx, id)
}

// CountBookInstances returns the number of copies.
func (s *Badger) CountBookInstances(ctx context.Context) (int, error) {
	return s.instances.Count(ctx)
}

// CountBookInstancesByStatus returns the number of copies with status.
func (s *Badger) CountBookInstancesByStatus(ctx context.Context, status domain.Status) (int, error) {
	return s.instances.CountByIndex(ctx, indexStatus, string(status))
}

func sortInstances(instances []*domain.BookInstance) []*domain.BookInstance {
	slices.SortFunc(instances, func(a, b *domain.BookInstance) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		return compareFold(a.ID, b.ID)
	})
	return instances
}
