package sqlite

import (
	"context"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"github.com/locallibrary/catalog/internal/domain"
)

// bookInstanceColumns is the ordered list of columns selected in copy
// queries. Must match the scan order in scanBookInstance.
var bookInstanceColumns = []string{
	"id", "created_at", "updated_at", "book_id", "imprint", "status", "due_back",
}

func scanBookInstance(row scanner) (*domain.BookInstance, error) {
	var (
		bi                            domain.BookInstance
		createdAt, updatedAt, dueBack string
		status                        string
	)
	if err := row.Scan(&bi.ID, &createdAt, &updatedAt, &bi.BookID, &bi.Imprint, &status, &dueBack); err != nil {
		return nil, err
	}
	bi.Status = domain.Status(status)

	var err error
	if bi.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if bi.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if bi.DueBack, err = parseTime(dueBack); err != nil {
		return nil, err
	}
	return &bi, nil
}

func (s *Store) queryBookInstances(ctx context.Context, b sq.SelectBuilder) ([]*domain.BookInstance, error) {
	query, args, err := b.OrderBy("created_at", "id").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var instances []*domain.BookInstance
	for rows.Next() {
		bi, err := scanBookInstance(rows)
		if err != nil {
			return nil, err
		}
		instances = append(instances, bi)
	}
	return instances, rows.Err()
}

// CreateBookInstance inserts a new copy. The book must exist.
func (s *Store) CreateBookInstance(ctx context.Context, bi *domain.BookInstance) error {
	_, err := s.exec(ctx, s.db, sq.Insert("book_instances").
		Columns(bookInstanceColumns...).
		Values(bi.ID, formatTime(bi.CreatedAt), formatTime(bi.UpdatedAt), bi.BookID, bi.Imprint,
			string(bi.Status), formatTime(bi.DueBack)))
	return writeError(err)
}

// GetBookInstance retrieves a copy by ID.
func (s *Store) GetBookInstance(ctx context.Context, id string) (*domain.BookInstance, error) {
	query, args, err := sq.Select(bookInstanceColumns...).From("book_instances").Where(sq.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	bi, err := scanBookInstance(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	return bi, nil
}

// ListBookInstances returns every copy in creation order.
func (s *Store) ListBookInstances(ctx context.Context) ([]*domain.BookInstance, error) {
	return s.queryBookInstances(ctx, sq.Select(bookInstanceColumns...).From("book_instances"))
}

// ListBookInstancesByBook returns the copies of a book in creation order.
func (s *Store) ListBookInstancesByBook(ctx context.Context, bookID string) ([]*domain.BookInstance, error) {
	return s.queryBookInstances(ctx, sq.Select(bookInstanceColumns...).From("book_instances").
		Where(sq.Eq{"book_id": bookID}))
}

// UpdateBookInstance replaces a stored copy.
func (s *Store) UpdateBookInstance(ctx context.Context, bi *domain.BookInstance) error {
	res, err := s.exec(ctx, s.db, sq.Update("book_instances").
		Set("updated_at", formatTime(bi.UpdatedAt)).
		Set("book_id", bi.BookID).
		Set("imprint", bi.Imprint).
		Set("status", string(bi.Status)).
		Set("due_back", formatTime(bi.DueBack)).
		Where(sq.Eq{"id": bi.ID}))
	if err != nil {
		return writeError(err)
	}
	return requireAffected(res)
}

// DeleteBookInstance removes a copy.
func (s *Store) DeleteBookInstance(ctx context.Context, id string) error {
	_, err := s.exec(ctx, s.db, sq.Delete("book_instances").Where(sq.Eq{"id": id}))
	return err
}

// CountBookInstances returns the number of copies.
func (s *Store) CountBookInstances(ctx context.Context) (int, error) {
	return s.count(ctx, sq.Select("COUNT(*)").From("book_instances"))
}

// CountBookInstancesByStatus returns the number of copies with status.
func (s *Store) CountBookInstancesByStatus(ctx context.Context, status domain.Status) (int, error) {
	return s.count(ctx, sq.Select("COUNT(*)").From("book_instances").Where(sq.Eq{"status": string(status)}))
}
