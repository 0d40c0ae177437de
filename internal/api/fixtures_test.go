package api

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/service"
)

type bookFixture struct {
	author  *domain.Author
	fantasy *domain.Genre
	scifi   *domain.Genre
	book    *domain.Book
}

// seedBook stores an author, two genres and one book filed under the first.
func seedBook(t *testing.T, ts *testServer) *bookFixture {
	t.Helper()
	ctx := context.Background()

	author, err := ts.services.Author.CreateAuthor(ctx, service.AuthorInput{
		FirstName:   "Ursula",
		FamilyName:  "LeGuin",
		DateOfBirth: timePtr(time.Date(1929, time.October, 21, 0, 0, 0, 0, time.UTC)),
	})
	require.NoError(t, err)

	fantasy, _, err := ts.services.Genre.CreateGenre(ctx, "Fantasy")
	require.NoError(t, err)
	scifi, _, err := ts.services.Genre.CreateGenre(ctx, "Science Fiction")
	require.NoError(t, err)

	book, err := ts.services.Book.CreateBook(ctx, service.BookInput{
		Title:    "A Wizard of Earthsea",
		AuthorID: author.ID,
		Summary:  "A young wizard learns the cost of power.",
		ISBN:     "9780547773742",
		GenreIDs: []string{fantasy.ID},
	})
	require.NoError(t, err)

	return &bookFixture{author: author, fantasy: fantasy, scifi: scifi, book: book}
}

func createInstance(t *testing.T, ts *testServer, bookID string, status domain.Status) *domain.BookInstance {
	t.Helper()
	bi, err := ts.services.BookInstance.CreateBookInstance(context.Background(), service.BookInstanceInput{
		BookID:  bookID,
		Imprint: "Parnassus Press, 1968",
		Status:  status,
	})
	require.NoError(t, err)
	return bi
}

func timePtr(t time.Time) *time.Time {
	return &t
}
