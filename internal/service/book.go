package service

import (
	"context"
	"log/slog"

	"github.com/samber/lo"
	"golang.org/x/sync/errgroup"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/dto"
	"github.com/locallibrary/catalog/internal/id"
	"github.com/locallibrary/catalog/internal/store"
	"github.com/locallibrary/catalog/internal/validation"
)

// BookService orchestrates book operations.
type BookService struct {
	store     store.Store
	enricher  *dto.Enricher
	search    *SearchService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewBookService creates a new book service.
func NewBookService(store store.Store, search *SearchService, logger *slog.Logger) *BookService {
	return &BookService{
		store:     store,
		enricher:  dto.NewEnricher(store),
		search:    search,
		logger:    logger,
		validator: validation.New(),
	}
}

// BookInput contains the editable fields of a book.
type BookInput struct {
	Title    string
	AuthorID string
	Summary  string
	ISBN     string
	GenreIDs []string
}

// BookDetail is a populated book with its copies.
type BookDetail struct {
	Book      *dto.Book
	Instances []*domain.BookInstance
}

// BookFormData holds the choices offered by the book form.
type BookFormData struct {
	Authors []*domain.Author
	Genres  []*domain.Genre
}

// ListBooks returns every book sorted by title, with authors populated.
func (s *BookService) ListBooks(ctx context.Context) ([]*dto.Book, error) {
	books, err := s.store.ListBooks(ctx)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichBooks(ctx, books)
}

// GetBook returns a single book.
func (s *BookService) GetBook(ctx context.Context, bookID string) (*domain.Book, error) {
	b, err := s.store.GetBook(ctx, bookID)
	if err != nil {
		return nil, lookupError(err, "Book not found")
	}
	return b, nil
}

// GetBookDetail reads the book and its copies concurrently, then populates
// the book's author and genres.
func (s *BookService) GetBookDetail(ctx context.Context, bookID string) (*BookDetail, error) {
	var (
		book      *domain.Book
		instances []*domain.BookInstance
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		book, err = s.GetBook(gctx, bookID)
		return err
	})
	g.Go(func() (err error) {
		instances, err = s.store.ListBookInstancesByBook(gctx, bookID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	populated, err := s.enricher.EnrichBook(ctx, book)
	if err != nil {
		return nil, err
	}
	return &BookDetail{Book: populated, Instances: instances}, nil
}

// GetBookFormData reads all authors and genres concurrently.
func (s *BookService) GetBookFormData(ctx context.Context) (*BookFormData, error) {
	var d BookFormData
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Authors, err = s.store.ListAuthors(gctx)
		return err
	})
	g.Go(func() (err error) {
		d.Genres, err = s.store.ListGenres(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateBook creates a new book. The author and every genre must exist.
func (s *BookService) CreateBook(ctx context.Context, in BookInput) (*domain.Book, error) {
	bookID, err := id.Generate(id.PrefixBook)
	if err != nil {
		return nil, err
	}

	b := &domain.Book{Document: domain.Document{ID: bookID}}
	in.apply(b)
	b.InitTimestamps()

	if err := s.validator.Validate(b); err != nil {
		return nil, err
	}
	if err := s.store.CreateBook(ctx, b); err != nil {
		return nil, writeError(err, "author or genre")
	}

	s.search.IndexBooks(ctx, b)
	s.logger.Info("book created", "id", b.ID, "title", b.Title, "author", b.AuthorID)
	return b, nil
}

// UpdateBook replaces the editable fields of a book.
func (s *BookService) UpdateBook(ctx context.Context, bookID string, in BookInput) (*domain.Book, error) {
	b, err := s.GetBook(ctx, bookID)
	if err != nil {
		return nil, err
	}

	in.apply(b)
	b.Touch()

	if err := s.validator.Validate(b); err != nil {
		return nil, err
	}
	if err := s.store.UpdateBook(ctx, b); err != nil {
		return nil, writeError(err, "author or genre")
	}

	s.search.IndexBooks(ctx, b)
	s.logger.Info("book updated", "id", b.ID)
	return b, nil
}

// DeleteBook removes a book. It fails with a conflict while copies of it
// exist.
func (s *BookService) DeleteBook(ctx context.Context, bookID string) error {
	if err := s.store.DeleteBook(ctx, bookID); err != nil {
		return deleteError(err, "book")
	}

	s.search.Remove(ctx, bookID)
	s.logger.Info("book deleted", "id", bookID)
	return nil
}

func (in BookInput) apply(b *domain.Book) {
	b.Title = in.Title
	b.AuthorID = in.AuthorID
	b.Summary = in.Summary
	b.ISBN = in.ISBN
	b.GenreIDs = lo.Uniq(lo.Compact(in.GenreIDs))
}
