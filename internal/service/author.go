package service

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/id"
	"github.com/locallibrary/catalog/internal/store"
	"github.com/locallibrary/catalog/internal/validation"
)

// AuthorService orchestrates author operations.
type AuthorService struct {
	store     store.Store
	search    *SearchService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewAuthorService creates a new author service.
func NewAuthorService(store store.Store, search *SearchService, logger *slog.Logger) *AuthorService {
	return &AuthorService{
		store:     store,
		search:    search,
		logger:    logger,
		validator: validation.New(),
	}
}

// AuthorInput contains the editable fields of an author.
type AuthorInput struct {
	FirstName   string
	FamilyName  string
	DateOfBirth *time.Time
	DateOfDeath *time.Time
}

// AuthorDetail is an author with the books credited to them.
type AuthorDetail struct {
	Author *domain.Author
	Books  []*domain.Book
}

// ListAuthors returns every author sorted by family name.
func (s *AuthorService) ListAuthors(ctx context.Context) ([]*domain.Author, error) {
	return s.store.ListAuthors(ctx)
}

// GetAuthor returns a single author.
func (s *AuthorService) GetAuthor(ctx context.Context, authorID string) (*domain.Author, error) {
	a, err := s.store.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, lookupError(err, "Author not found")
	}
	return a, nil
}

// GetAuthorDetail reads the author and their books concurrently.
func (s *AuthorService) GetAuthorDetail(ctx context.Context, authorID string) (*AuthorDetail, error) {
	var d AuthorDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Author, err = s.GetAuthor(gctx, authorID)
		return err
	})
	g.Go(func() (err error) {
		d.Books, err = s.store.ListBooksByAuthor(gctx, authorID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateAuthor creates a new author.
func (s *AuthorService) CreateAuthor(ctx context.Context, in AuthorInput) (*domain.Author, error) {
	authorID, err := id.Generate(id.PrefixAuthor)
	if err != nil {
		return nil, err
	}

	a := &domain.Author{Document: domain.Document{ID: authorID}}
	in.apply(a)
	a.InitTimestamps()

	if err := s.validator.Validate(a); err != nil {
		return nil, err
	}
	if err := s.store.CreateAuthor(ctx, a); err != nil {
		return nil, writeError(err, "author")
	}

	s.search.IndexAuthor(ctx, a)
	s.logger.Info("author created", "id", a.ID, "name", a.Name())
	return a, nil
}

// UpdateAuthor replaces the editable fields of an author.
func (s *AuthorService) UpdateAuthor(ctx context.Context, authorID string, in AuthorInput) (*domain.Author, error) {
	a, err := s.GetAuthor(ctx, authorID)
	if err != nil {
		return nil, err
	}

	in.apply(a)
	a.Touch()

	if err := s.validator.Validate(a); err != nil {
		return nil, err
	}
	if err := s.store.UpdateAuthor(ctx, a); err != nil {
		return nil, writeError(err, "author")
	}

	s.search.IndexAuthor(ctx, a)
	if s.search.Enabled() {
		// Book documents carry the author's name.
		if books, err := s.store.ListBooksByAuthor(ctx, a.ID); err == nil {
			s.search.IndexBooks(ctx, books...)
		}
	}
	s.logger.Info("author updated", "id", a.ID)
	return a, nil
}

// DeleteAuthor removes an author. It fails with a conflict while books are
// still credited to them; deleting a missing author succeeds.
func (s *AuthorService) DeleteAuthor(ctx context.Context, authorID string) error {
	if err := s.store.DeleteAuthor(ctx, authorID); err != nil {
		return deleteError(err, "author")
	}

	s.search.Remove(ctx, authorID)
	s.logger.Info("author deleted", "id", authorID)
	return nil
}

func (in AuthorInput) apply(a *domain.Author) {
	a.FirstName = in.FirstName
	a.FamilyName = in.FamilyName
	a.DateOfBirth = in.DateOfBirth
	a.DateOfDeath = in.DateOfDeath
}
