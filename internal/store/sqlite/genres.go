package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/locallibrary/catalog/internal/domain"
)

// genreColumns is the ordered list of columns selected in genre queries.
// Must match the scan order in scanGenre.
var genreColumns = []string{"id", "created_at", "updated_at", "name"}

func scanGenre(row scanner) (*domain.Genre, error) {
	var (
		g                    domain.Genre
		createdAt, updatedAt string
	)
	if err := row.Scan(&g.ID, &createdAt, &updatedAt, &g.Name); err != nil {
		return nil, err
	}

	var err error
	if g.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if g.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &g, nil
}

func (s *Store) queryGenres(ctx context.Context, b sq.SelectBuilder) ([]*domain.Genre, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var genres []*domain.Genre
	for rows.Next() {
		g, err := scanGenre(rows)
		if err != nil {
			return nil, err
		}
		genres = append(genres, g)
	}
	return genres, rows.Err()
}

func (s *Store) getGenre(ctx context.Context, where sq.Eq) (*domain.Genre, error) {
	query, args, err := sq.Select(genreColumns...).From("genres").Where(where).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	g, err := scanGenre(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return g, nil
}

// CreateGenre inserts a new genre.
// Returns store.ErrAlreadyExists if the ID or name is taken.
func (s *Store) CreateGenre(ctx context.Context, g *domain.Genre) error {
	_, err := s.exec(ctx, s.db, sq.Insert("genres").
		Columns(genreColumns...).
		Values(g.ID, formatTime(g.CreatedAt), formatTime(g.UpdatedAt), g.Name))
	return writeError(err)
}

// GetGenre retrieves a genre by ID.
func (s *Store) GetGenre(ctx context.Context, id string) (*domain.Genre, error) {
	return s.getGenre(ctx, sq.Eq{"id": id})
}

// GetGenreByName retrieves a genre by its exact name.
func (s *Store) GetGenreByName(ctx context.Context, name string) (*domain.Genre, error) {
	return s.getGenre(ctx, sq.Eq{"name": name})
}

// GetGenresByIDs retrieves the genres that exist among ids.
func (s *Store) GetGenresByIDs(ctx context.Context, ids []string) ([]*domain.Genre, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.queryGenres(ctx, sq.Select(genreColumns...).From("genres").Where(sq.Eq{"id": ids}))
}

// ListGenres returns every genre sorted by name.
func (s *Store) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	return s.queryGenres(ctx, sq.Select(genreColumns...).From("genres").
		OrderBy("name COLLATE NOCASE", "name"))
}

// UpdateGenre replaces a stored genre, keeping names unique.
func (s *Store) UpdateGenre(ctx context.Context, g *domain.Genre) error {
	res, err := s.exec(ctx, s.db, sq.Update("genres").
		Set("updated_at", formatTime(g.UpdatedAt)).
		Set("name", g.Name).
		Where(sq.Eq{"id": g.ID}))
	if err != nil {
		return writeError(err)
	}
	return requireAffected(res)
}

// DeleteGenre removes a genre. The book_genres foreign key rejects the
// delete while any book is tagged with it.
func (s *Store) DeleteGenre(ctx context.Context, id string) error {
	_, err := s.exec(ctx, s.db, sq.Delete("genres").Where(sq.Eq{"id": id}))
	return deleteError(err)
}

// CountGenres returns the number of genres.
func (s *Store) CountGenres(ctx context.Context) (int, error) {
	return s.count(ctx, sq.Select("COUNT(*)").From("genres"))
}
