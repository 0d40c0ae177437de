package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/samber/lo"

	"github.com/locallibrary/catalog/internal/domain"
)

// bookColumns is the ordered list of columns selected in book queries.
// Must match the scan order in scanBook.
var bookColumns = []string{
	"books.id", "books.created_at", "books.updated_at", "books.title", "books.author_id", "books.summary", "books.isbn",
}

var bookOrder = []string{"books.title COLLATE NOCASE", "books.title", "books.id"}

func scanBook(row scanner) (*domain.Book, error) {
	var (
		b                    domain.Book
		createdAt, updatedAt string
	)
	if err := row.Scan(&b.ID, &createdAt, &updatedAt, &b.Title, &b.AuthorID, &b.Summary, &b.ISBN); err != nil {
		return nil, err
	}

	var err error
	if b.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if b.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &b, nil
}

// queryBooks runs a book select and attaches each book's genre IDs.
func (s *Store) queryBooks(ctx context.Context, b sq.SelectBuilder) ([]*domain.Book, error) {
	query, args, err := b.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var books []*domain.Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := s.attachGenres(ctx, books); err != nil {
		return nil, err
	}
	return books, nil
}

// attachGenres loads the genre IDs of books in one query.
func (s *Store) attachGenres(ctx context.Context, books []*domain.Book) error {
	if len(books) == 0 {
		return nil
	}

	byID := lo.KeyBy(books, func(b *domain.Book) string { return b.ID })
	query, args, err := sq.Select("book_id", "genre_id").From("book_genres").
		Where(sq.Eq{"book_id": lo.Keys(byID)}).
		OrderBy("book_id", "position").
		ToSql()
	if err != nil {
		return fmt.Errorf("build query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return err
	}
	defer rows.Close()

	for rows.Next() {
		var bookID, genreID string
		if err := rows.Scan(&bookID, &genreID); err != nil {
			return err
		}
		if b, ok := byID[bookID]; ok {
			b.GenreIDs = append(b.GenreIDs, genreID)
		}
	}
	return rows.Err()
}

// setGenres replaces the genre rows of a book inside tx.
func (s *Store) setGenres(ctx context.Context, tx *sql.Tx, b *domain.Book) error {
	if _, err := s.exec(ctx, tx, sq.Delete("book_genres").Where(sq.Eq{"book_id": b.ID})); err != nil {
		return err
	}

	genreIDs := lo.Uniq(b.GenreIDs)
	if len(genreIDs) == 0 {
		return nil
	}

	insert := sq.Insert("book_genres").Columns("book_id", "genre_id", "position")
	for i, genreID := range genreIDs {
		insert = insert.Values(b.ID, genreID, i)
	}
	_, err := s.exec(ctx, tx, insert)
	return err
}

// CreateBook inserts a new book and its genre rows.
func (s *Store) CreateBook(ctx context.Context, b *domain.Book) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.exec(ctx, tx, sq.Insert("books").
			Columns("id", "created_at", "updated_at", "title", "author_id", "summary", "isbn").
			Values(b.ID, formatTime(b.CreatedAt), formatTime(b.UpdatedAt), b.Title, b.AuthorID, b.Summary, b.ISBN)); err != nil {
			return err
		}
		return s.setGenres(ctx, tx, b)
	})
	return writeError(err)
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*domain.Book, error) {
	query, args, err := sq.Select(bookColumns...).From("books").Where(sq.Eq{"books.id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}
	b, err := scanBook(s.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		return nil, notFound(err)
	}
	if err := s.attachGenres(ctx, []*domain.Book{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// GetBooksByIDs retrieves the books that exist among ids.
func (s *Store) GetBooksByIDs(ctx context.Context, ids []string) ([]*domain.Book, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	return s.queryBooks(ctx, sq.Select(bookColumns...).From("books").Where(sq.Eq{"books.id": ids}))
}

// ListBooks returns every book sorted by title.
func (s *Store) ListBooks(ctx context.Context) ([]*domain.Book, error) {
	return s.queryBooks(ctx, sq.Select(bookColumns...).From("books").OrderBy(bookOrder...))
}

// ListBooksByAuthor returns the author's books sorted by title.
func (s *Store) ListBooksByAuthor(ctx context.Context, authorID string) ([]*domain.Book, error) {
	return s.queryBooks(ctx, sq.Select(bookColumns...).From("books").
		Where(sq.Eq{"books.author_id": authorID}).
		OrderBy(bookOrder...))
}

// ListBooksByGenre returns the books tagged with the genre sorted by title.
func (s *Store) ListBooksByGenre(ctx context.Context, genreID string) ([]*domain.Book, error) {
	return s.queryBooks(ctx, sq.Select(bookColumns...).From("books").
		Join("book_genres ON book_genres.book_id = books.id").
		Where(sq.Eq{"book_genres.genre_id": genreID}).
		OrderBy(bookOrder...))
}

// UpdateBook replaces a stored book and its genre rows.
func (s *Store) UpdateBook(ctx context.Context, b *domain.Book) error {
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := s.exec(ctx, tx, sq.Update("books").
			Set("updated_at", formatTime(b.UpdatedAt)).
			Set("title", b.Title).
			Set("author_id", b.AuthorID).
			Set("summary", b.Summary).
			Set("isbn", b.ISBN).
			Where(sq.Eq{"id": b.ID}))
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		return s.setGenres(ctx, tx, b)
	})
	return writeError(err)
}

// DeleteBook removes a book. Its genre rows cascade; the book_instances
// foreign key rejects the delete while copies exist.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	_, err := s.exec(ctx, s.db, sq.Delete("books").Where(sq.Eq{"id": id}))
	return deleteError(err)
}

// CountBooks returns the number of books.
func (s *Store) CountBooks(ctx context.Context) (int, error) {
	return s.count(ctx, sq.Select("COUNT(*)").From("books"))
}
