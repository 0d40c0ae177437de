package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog/internal/domain"
)

func TestCatalogService_Counts(t *testing.T) {
	svc := setupTestServices(t)
	f := newBookFixture(t, svc)
	ctx := context.Background()

	b, err := svc.books.CreateBook(ctx, BookInput{Title: "Earthsea", AuthorID: f.author.ID, Summary: "S", ISBN: "I"})
	require.NoError(t, err)
	for _, status := range []domain.Status{domain.StatusAvailable, domain.StatusAvailable, domain.StatusLoaned} {
		_, err := svc.instances.CreateBookInstance(ctx, BookInstanceInput{BookID: b.ID, Imprint: "X", Status: status})
		require.NoError(t, err)
	}

	c, err := svc.catalog.Counts(ctx)
	require.NoError(t, err)
	assert.Equal(t, CatalogCounts{Books: 1, BookInstances: 3, AvailableInstances: 2, Authors: 1, Genres: 2}, *c)
}

func TestCatalogService_CountsFailWithContext(t *testing.T) {
	svc := setupTestServices(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.catalog.Counts(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}
