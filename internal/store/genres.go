package store

import (
	"context"
	"slices"

	"github.com/locallibrary/catalog/internal/domain"
)

// CreateGenre stores a new genre. Names are unique: a second genre with the
// same name fails with ErrAlreadyExists.
func (s *Badger) CreateGenre(ctx context.Context, g *domain.Genre) error {
	return s.genres.Create(ctx, g.ID, g)
}

// GetGenre retrieves a genre by ID.
func (s *Badger) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	return s.genres.Get(ctx, id)
}

// GetGenreByName retrieves a genre by its exact name.
func (s *Badger) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	return s.genres.GetByIndex(ctx, indexName, name)
}

// GetGenresByIDs retrieves the genres that exist among ids.
func (s *Badger) GetGenresByIDs(ctx context.Context, ids []string) ([]*domain.Genre, error) {
	return s.genres.GetMany(ctx, ids)
}

// ListGenres returns every genre sorted by name.
func (s *Badger) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	genres, err := s.genres.All(ctx)
	if err != nil {
		return nil, err
	}
	slices.SortFunc(genres, func(a, b *domain.Genre) int {
		return compareFold(a.Name, b.Name)
	})
	return genres, nil
}

// UpdateGenre replaces a stored genre, keeping names unique.
func (s *Badger) UpdateGenre(ctx context.Context, g *domain.Genre) error {
	return s.genres.Update(ctx, g.ID, g)
}

// DeleteGenre removes a genre. It fails with ErrReferenced while any book is
// tagged with it.
func (s *Badger) DeleteGenre(ctx context.Context, id string) error {
	return s.genres.Delete(ctx, id)
}

// CountGenres returns the number of genres.
func (s *Badger) CountGenres(ctx context.Context) (int, error) {
	return s.genres.Count(ctx)
}
