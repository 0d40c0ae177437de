package service

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/store"
)

// CatalogCounts are the figures on the catalog home page.
type CatalogCounts struct {
	Books              int
	BookInstances      int
	AvailableInstances int
	Authors            int
	Genres             int
}

// CatalogService serves the catalog home page.
type CatalogService struct {
	store  store.Store
	logger *slog.Logger
}

// NewCatalogService creates a new catalog service.
func NewCatalogService(store store.Store, logger *slog.Logger) *CatalogService {
	return &CatalogService{store: store, logger: logger}
}

// Counts runs the five counts concurrently. Any failure fails the whole read.
func (s *CatalogService) Counts(ctx context.Context) (*CatalogCounts, error) {
	var c CatalogCounts
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		c.Books, err = s.store.CountBooks(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.BookInstances, err = s.store.CountBookInstances(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.AvailableInstances, err = s.store.CountBookInstancesByStatus(ctx, domain.StatusAvailable)
		return err
	})
	g.Go(func() (err error) {
		c.Authors, err = s.store.CountAuthors(ctx)
		return err
	})
	g.Go(func() (err error) {
		c.Genres, err = s.store.CountGenres(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &c, nil
}
