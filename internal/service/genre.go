package service

import (
	"context"
	"errors"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/locallibrary/catalog/internal/domain"
	domainerrors "github.com/locallibrary/catalog/internal/errors"
	"github.com/locallibrary/catalog/internal/id"
	"github.com/locallibrary/catalog/internal/store"
	"github.com/locallibrary/catalog/internal/validation"
)

// GenreService orchestrates genre operations.
type GenreService struct {
	store     store.Store
	search    *SearchService
	logger    *slog.Logger
	validator *validation.Validator
}

// NewGenreService creates a new genre service.
func NewGenreService(store store.Store, search *SearchService, logger *slog.Logger) *GenreService {
	return &GenreService{
		store:     store,
		search:    search,
		logger:    logger,
		validator: validation.New(),
	}
}

// GenreDetail is a genre with the books filed under it.
type GenreDetail struct {
	Genre *domain.Genre
	Books []*domain.Book
}

// ListGenres returns every genre sorted by name.
func (s *GenreService) ListGenres(ctx context.Context) ([]*domain.Genre, error) {
	return s.store.ListGenres(ctx)
}

// GetGenre returns a single genre.
func (s *GenreService) GetGenre(ctx context.Context, genreID string) (*domain.Genre, error) {
	g, err := s.store.GetGenre(ctx, genreID)
	if err != nil {
		return nil, lookupError(err, "Genre not found")
	}
	return g, nil
}

// GetGenreDetail reads the genre and its books concurrently.
func (s *GenreService) GetGenreDetail(ctx context.Context, genreID string) (*GenreDetail, error) {
	var d GenreDetail
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		d.Genre, err = s.GetGenre(gctx, genreID)
		return err
	})
	g.Go(func() (err error) {
		d.Books, err = s.store.ListBooksByGenre(gctx, genreID)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}

// CreateGenre creates a genre unless one with exactly this name exists, in
// which case that genre is returned with created == false. The name is
// unique in the store, so concurrent submissions of one name yield one genre.
func (s *GenreService) CreateGenre(ctx context.Context, name string) (g *domain.Genre, created bool, err error) {
	genreID, err := id.Generate(id.PrefixGenre)
	if err != nil {
		return nil, false, err
	}

	g = &domain.Genre{Document: domain.Document{ID: genreID}, Name: name}
	g.InitTimestamps()

	if err := s.validator.Validate(g); err != nil {
		return nil, false, err
	}

	err = s.store.CreateGenre(ctx, g)
	if errors.Is(err, store.ErrAlreadyExists) {
		existing, getErr := s.store.GetGenreByName(ctx, name)
		if getErr != nil {
			return nil, false, lookupError(getErr, "Genre not found")
		}
		s.logger.Debug("genre already exists", "id", existing.ID, "name", name)
		return existing, false, nil
	}
	if err != nil {
		return nil, false, writeError(err, "genre")
	}

	s.search.IndexGenre(ctx, g)
	s.logger.Info("genre created", "id", g.ID, "name", g.Name)
	return g, true, nil
}

// UpdateGenre renames a genre. Taking another genre's name is a validation
// failure.
func (s *GenreService) UpdateGenre(ctx context.Context, genreID, name string) (*domain.Genre, error) {
	g, err := s.GetGenre(ctx, genreID)
	if err != nil {
		return nil, err
	}

	g.Name = name
	g.Touch()

	if err := s.validator.Validate(g); err != nil {
		return nil, err
	}
	err = s.store.UpdateGenre(ctx, g)
	if errors.Is(err, store.ErrAlreadyExists) {
		return nil, domainerrors.ValidationWithDetails("genre name already in use", map[string]string{
			"name": "Another genre is already named " + validation.Unescape(name),
		}).WithCause(err)
	}
	if err != nil {
		return nil, writeError(err, "genre")
	}

	s.search.IndexGenre(ctx, g)
	if s.search.Enabled() {
		// Book documents carry genre names.
		if books, err := s.store.ListBooksByGenre(ctx, g.ID); err == nil {
			s.search.IndexBooks(ctx, books...)
		}
	}
	s.logger.Info("genre updated", "id", g.ID, "name", g.Name)
	return g, nil
}

// DeleteGenre removes a genre. It fails with a conflict while books are still
// filed under it.
func (s *GenreService) DeleteGenre(ctx context.Context, genreID string) error {
	if err := s.store.DeleteGenre(ctx, genreID); err != nil {
		return deleteError(err, "genre")
	}

	s.search.Remove(ctx, genreID)
	s.logger.Info("genre deleted", "id", genreID)
	return nil
}
