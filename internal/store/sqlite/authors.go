package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/locallibrary/catalog/internal/domain"
)

// authorColumns is the ordered list of columns selected in author queries.
// Must match the scan order in scanAuthor.
var authorColumns = []string{
	"id", "created_at", "updated_at", "first_name", "family_name", "date_of_birth", "date_of_death",
}

func scanAuthor(row scanner) (*domain.Author, error) {
	var (
		a                    domain.Author
		createdAt, updatedAt string
		dob, dod             sql.NullString
	)
	if err := row.Scan(&a.ID, &createdAt, &updatedAt, &a.FirstName, &a.FamilyName, &dob, &dod); err != nil {
		return nil, err
	}

	var err error
	if a.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if a.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if a.DateOfBirth, err = parseNullableTime(dob); err != nil {
		return nil, err
	}
	if a.DateOfDeath, err = parseNullableTime(dod); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) queryAuthors(ctx context.Context, b sq.SelectBuilder) ([]*domain.Author, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var authors []*domain.Author
	for rows.Next() {
		a, err := scanAuthor(rows)
		if err != nil {
			return nil, err
		}
		authors = append(authors, a)
	}
	return authors, rows.Err()
}

// CreateAuthor inserts a new author.
func (s *Store) CreateAuthor(ctx context.Context, a *domain.Author) error {
	_, err := s.exec(ctx, s.db, sq.Insert("authors").
		Columns(authorColumns...).
		Values(a.ID, formatTime(a.CreatedAt), formatTime(a.UpdatedAt), a.FirstName, a.FamilyName,
			nullTimeString(a.DateOfBirth), nullTimeString(a.DateOfDeath)))
	return writeError(err)
}

// GetAuthor retrieves an author by ID.
func (s *Store) GetAuthor(ctx context.Context, id string) (*domain.Author, error) {
	query, args, err := sq.Select(authorColumns...).From("authors").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	a, err := scanAuthor(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return a, nil
}

// GetAuthorsByIDs retrieves the authors that exist among ids.
func (s *Store) GetAuthorsByIDs(ctx context.Context, ids []string) ([]*domain.Author, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.queryAuthors(ctx, sq.Select(authorColumns...).From("authors").Where(sq.Eq{"id": ids}))
}

// ListAuthors returns every author sorted by family name, then first name.
func (s *Store) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	return s.queryAuthors(ctx, sq.Select(authorColumns...).From("authors").
		OrderBy("family_name COLLATE NOCASE", "first_name COLLATE NOCASE", "id"))
}

// UpdateAuthor replaces a stored author.
func (s *Store) UpdateAuthor(ctx context.Context, a *domain.Author) error {
	res, err := s.exec(ctx, s.db, sq.Update("authors").
		Set("updated_at", formatTime(a.UpdatedAt)).
		Set("first_name", a.FirstName).
		Set("family_name", a.FamilyName).
		Set("date_of_birth", nullTimeString(a.DateOfBirth)).
		Set("date_of_death", nullTimeString(a.DateOfDeath)).
		Where(sq.Eq{"id": a.ID}))
	if err != nil {
		return writeError(err)
	}
	return requireAffected(res)
}

// DeleteAuthor removes an author. The books foreign key rejects the delete
// while any book names the author.
func (s *Store) DeleteAuthor(ctx context.Context, id string) error {
	_, err := s.exec(ctx, s.db, sq.Delete("authors").Where(sq.Eq{"id": id}))
	return deleteError(err)
}

// CountAuthors returns the number of authors.
func (s *Store) CountAuthors(ctx context.Context) (int, error) {
	return s.count(ctx, sq.Select("COUNT(*)").From("authors"))
}
