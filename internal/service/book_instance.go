package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/dto"
	"github.com/locallibrary/catalog/internal/id"
	"github.com/locallibrary/catalog/internal/store"
	"github.com/locallibrary/catalog/internal/validation"
)

// BookInstanceService orchestrates operations on physical copies.
type BookInstanceService struct {
	store     store.Store
	enricher  *dto.Enricher
	logger    *slog.Logger
	validator *validation.Validator
}

// NewBookInstanceService creates a new book instance service.
func NewBookInstanceService(store store.Store, logger *slog.Logger) *BookInstanceService {
	return &BookInstanceService{
		store:     store,
		enricher:  dto.NewEnricher(store),
		logger:    logger,
		validator: validation.New(),
	}
}

// BookInstanceInput contains the editable fields of a copy. An empty Status
// or nil DueBack take the schema defaults.
type BookInstanceInput struct {
	BookID  string
	Imprint string
	Status  domain.Status
	DueBack *time.Time
}

// ListBookInstances returns every copy in creation order, with books
// populated.
func (s *BookInstanceService) ListBookInstances(ctx context.Context) ([]*dto.BookInstance, error) {
	instances, err := s.store.ListBookInstances(ctx)
	if err != nil {
		return nil, err
	}
	return s.enricher.EnrichBookInstances(ctx, instances)
}

// GetBookInstance returns a single copy with its book populated.
func (s *BookInstanceService) GetBookInstance(ctx context.Context, instanceID string) (*dto.BookInstance, error) {
	bi, err := s.store.GetBookInstance(ctx, instanceID)
	if err != nil {
		return nil, lookupError(err, "Book copy not found")
	}
	out, err := s.enricher.EnrichBookInstances(ctx, []*domain.BookInstance{bi})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// ListBookChoices returns the books offered by the copy form, sorted by title.
func (s *BookInstanceService) ListBookChoices(ctx context.Context) ([]*domain.Book, error) {
	return s.store.ListBooks(ctx)
}

// CreateBookInstance creates a new copy of an existing book.
func (s *BookInstanceService) CreateBookInstance(ctx context.Context, in BookInstanceInput) (*domain.BookInstance, error) {
	instanceID, err := id.Generate(id.PrefixBookInstance)
	if err != nil {
		return nil, err
	}

	bi := &domain.BookInstance{Document: domain.Document{ID: instanceID}}
	in.apply(bi)
	bi.InitTimestamps()

	if err := s.validator.Validate(bi); err != nil {
		return nil, err
	}
	if err := s.store.CreateBookInstance(ctx, bi); err != nil {
		return nil, writeError(err, "book")
	}

	s.logger.Info("book instance created", "id", bi.ID, "book", bi.BookID, "status", bi.Status)
	return bi, nil
}

// UpdateBookInstance replaces the editable fields of a copy.
func (s *BookInstanceService) UpdateBookInstance(ctx context.Context, instanceID string, in BookInstanceInput) (*domain.BookInstance, error) {
	bi, err := s.store.GetBookInstance(ctx, instanceID)
	if err != nil {
		return nil, lookupError(err, "Book copy not found")
	}

	in.apply(bi)
	bi.Touch()

	if err := s.validator.Validate(bi); err != nil {
		return nil, err
	}
	if err := s.store.UpdateBookInstance(ctx, bi); err != nil {
		return nil, writeError(err, "book")
	}

	s.logger.Info("book instance updated", "id", bi.ID, "status", bi.Status)
	return bi, nil
}

// DeleteBookInstance removes a copy.
func (s *BookInstanceService) DeleteBookInstance(ctx context.Context, instanceID string) error {
	if err := s.store.DeleteBookInstance(ctx, instanceID); err != nil {
		return deleteError(err, "book instance")
	}
	s.logger.Info("book instance deleted", "id", instanceID)
	return nil
}

func (in BookInstanceInput) apply(bi *domain.BookInstance) {
	bi.BookID = in.BookID
	bi.Imprint = in.Imprint
	bi.Status = in.Status
	bi.DueBack = time.Time{}
	if in.DueBack != nil {
		bi.DueBack = *in.DueBack
	}
	bi.ApplyDefaults()
}
