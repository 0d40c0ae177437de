package store

import (
	"cmp"
	"fmt"
	"log/slog"
	"strings"

	"github.com/dgraph-io/badger/v4"

	"github.com/locallibrary/catalog/internal/domain"
)

// Key prefixes for catalog documents.
const (
	authorPrefix       = "author:"
	bookPrefix         = "book:"
	genrePrefix        = "genre:"
	bookInstancePrefix = "bookinstance:"
)

// Index names.
const (
	indexAuthor = "author"
	indexGenre  = "genre"
	indexBook   = "book"
	indexStatus = "status"
	indexName   = "name"
)

// Badger is the Badger-backed Store.
type Badger struct {
	db     *badger.DB
	logger *slog.Logger

	authors   *Entity[domain.Author]
	books     *Entity[domain.Book]
	genres    *Entity[domain.Genre]
	instances *Entity[domain.BookInstance]
}

// New creates a new Badger store at the given database path.
func New(path string, logger *slog.Logger) (*Badger, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil            // Disable Badger's internal logging
	opts.SyncWrites = true       // Ensure writes are synced to disk to prevent corruption on crashes
	opts.CompactL0OnClose = true // Compact L0 tables on close for faster startup

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	s := &Badger{db: db, logger: logger}
	s.initEntities()

	if logger != nil {
		logger.Info("Badger database opened successfully", "path", path)
	}

	return s, nil
}

// initEntities declares the catalog documents, their indexes and the
// referential guards between them.
func (s *Badger) initEntities() {
	s.authors = NewEntity[domain.Author](s.db, authorPrefix)
	s.genres = NewEntity[domain.Genre](s.db, genrePrefix).
		WithUniqueIndex(indexName, func(g *domain.Genre) []string {
			return []string{g.Name}
		})
	s.books = NewEntity[domain.Book](s.db, bookPrefix).
		WithIndex(indexAuthor, func(b *domain.Book) []string {
			return []string{b.AuthorID}
		}).
		WithIndex(indexGenre, func(b *domain.Book) []string {
			return b.GenreIDs
		})
	s.instances = NewEntity[domain.BookInstance](s.db, bookInstancePrefix).
		WithIndex(indexBook, func(bi *domain.BookInstance) []string {
			return []string{bi.BookID}
		}).
		WithIndex(indexStatus, func(bi *domain.BookInstance) []string {
			return []string{string(bi.Status)}
		})

	s.books.
		WithWriteGuard(RequireExisting(s.authors, "author", func(b *domain.Book) []string {
			return []string{b.AuthorID}
		})).
		WithWriteGuard(RequireExisting(s.genres, "genre", func(b *domain.Book) []string {
			return b.GenreIDs
		})).
		WithDeleteGuard(RejectReferenced(s.books, s.instances, indexBook, "book instances"))
	s.instances.
		WithWriteGuard(RequireExisting(s.books, "book", func(bi *domain.BookInstance) []string {
			return []string{bi.BookID}
		}))
	s.authors.WithDeleteGuard(RejectReferenced(s.authors, s.books, indexAuthor, "books"))
	s.genres.WithDeleteGuard(RejectReferenced(s.genres, s.books, indexGenre, "books"))
}

// Close gracefully closes the database connection.
func (s *Badger) Close() error {
	if s.logger != nil {
		s.logger.Info("Closing database connection")
	}
	return s.db.Close()
}

// compareFold orders strings case-insensitively, falling back to a
// byte-wise comparison for a stable order.
func compareFold(a, b string) int {
	return cmp.Or(strings.Compare(strings.ToLower(a), strings.ToLower(b)), strings.Compare(a, b))
}
