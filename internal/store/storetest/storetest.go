// Package storetest holds the behavioral tests every store.Store
// implementation must pass.
package storetest

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/id"
	"github.com/locallibrary/catalog/internal/store"
)

// Factory opens an empty store for one test.
type Factory func(t *testing.T) store.Store

// Run runs the conformance suite against stores produced by newStore.
func Run(t *testing.T, newStore Factory) {
	tests := []struct {
		name string
		fn   func(t *testing.T, s store.Store)
	}{
		{"AuthorCRUD", testAuthorCRUD},
		{"AuthorsSorted", testAuthorsSorted},
		{"AuthorDeleteGuard", testAuthorDeleteGuard},
		{"BookReferences", testBookReferences},
		{"BooksByAuthorAndGenre", testBooksByAuthorAndGenre},
		{"BookUpdateMovesIndexes", testBookUpdateMovesIndexes},
		{"BookDeleteGuard", testBookDeleteGuard},
		{"GenreUniqueName", testGenreUniqueName},
		{"GenreUniqueNameConcurrent", testGenreUniqueNameConcurrent},
		{"GenreDeleteGuard", testGenreDeleteGuard},
		{"BookInstances", testBookInstances},
		{"DeleteMissingIsNoop", testDeleteMissingIsNoop},
		{"GetByIDsSkipsMissing", testGetByIDsSkipsMissing},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.fn(t, newStore(t))
		})
	}
}

// NewAuthor returns an unsaved author with an ID and timestamps.
func NewAuthor(first, family string) *domain.Author {
	a := &domain.Author{FirstName: first, FamilyName: family}
	a.ID = id.MustGenerate(id.PrefixAuthor)
	a.InitTimestamps()
	return a
}

// NewGenre returns an unsaved genre.
func NewGenre(name string) *domain.Genre {
	g := &domain.Genre{Name: name}
	g.ID = id.MustGenerate(id.PrefixGenre)
	g.InitTimestamps()
	return g
}

// NewBook returns an unsaved book by author.
func NewBook(title, authorID string, genreIDs ...string) *domain.Book {
	b := &domain.Book{
		Title:    title,
		AuthorID: authorID,
		Summary:  "Summary of " + title,
		ISBN:     "978000000000" + title[:1],
		GenreIDs: genreIDs,
	}
	b.ID = id.MustGenerate(id.PrefixBook)
	b.InitTimestamps()
	return b
}

// NewBookInstance returns an unsaved copy of a book.
func NewBookInstance(bookID string, status domain.Status) *domain.BookInstance {
	bi := domain.NewBookInstance(bookID, "Test Imprint")
	bi.Status = status
	bi.ID = id.MustGenerate(id.PrefixBookInstance)
	bi.InitTimestamps()
	return bi
}

func testAuthorCRUD(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewAuthor("Ursula", "Le Guin")
	dob := time.Date(1929, 10, 21, 0, 0, 0, 0, time.UTC)
	a.DateOfBirth = &dob
	require.NoError(t, s.CreateAuthor(ctx, a))

	require.ErrorIs(t, s.CreateAuthor(ctx, a), store.ErrAlreadyExists)

	got, err := s.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Le Guin, Ursula", got.Name())
	require.NotNil(t, got.DateOfBirth)
	assert.True(t, dob.Equal(*got.DateOfBirth))
	assert.Nil(t, got.DateOfDeath)

	dod := time.Date(2018, 1, 22, 0, 0, 0, 0, time.UTC)
	got.DateOfDeath = &dod
	got.FirstName = "Ursula K."
	require.NoError(t, s.UpdateAuthor(ctx, got))

	got, err = s.GetAuthor(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ursula K.", got.FirstName)
	assert.Equal(t, "1929 - 2018", got.Lifespan())

	missing := NewAuthor("No", "Body")
	require.ErrorIs(t, s.UpdateAuthor(ctx, missing), store.ErrNotFound)

	n, err := s.CountAuthors(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.NoError(t, s.DeleteAuthor(ctx, a.ID))
	_, err = s.GetAuthor(ctx, a.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func testAuthorsSorted(t *testing.T, s store.Store) {
	ctx := context.Background()

	for _, a := range []*domain.Author{
		NewAuthor("Patrick", "Rothfuss"),
		NewAuthor("Isaac", "Asimov"),
		NewAuthor("Ben", "Bova"),
		NewAuthor("Bob", "Billings"),
		NewAuthor("Jim", "Jones"),
	} {
		require.NoError(t, s.CreateAuthor(ctx, a))
	}

	authors, err := s.ListAuthors(ctx)
	require.NoError(t, err)

	var names []string
	for _, a := range authors {
		names = append(names, a.FamilyName)
	}
	assert.Equal(t, []string{"Asimov", "Billings", "Bova", "Jones", "Rothfuss"}, names)
}

func testAuthorDeleteGuard(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewAuthor("Frank", "Herbert")
	require.NoError(t, s.CreateAuthor(ctx, a))
	b := NewBook("Dune", a.ID)
	require.NoError(t, s.CreateBook(ctx, b))

	require.ErrorIs(t, s.DeleteAuthor(ctx, a.ID), store.ErrReferenced)
	_, err := s.GetAuthor(ctx, a.ID)
	require.NoError(t, err, "author must survive a blocked delete")

	require.NoError(t, s.DeleteBook(ctx, b.ID))
	require.NoError(t, s.DeleteAuthor(ctx, a.ID))
}

func testBookReferences(t *testing.T, s store.Store) {
	ctx := context.Background()

	err := s.CreateBook(ctx, NewBook("Orphan", "author-missing"))
	require.ErrorIs(t, err, store.ErrInvalidReference)

	a := NewAuthor("Frank", "Herbert")
	require.NoError(t, s.CreateAuthor(ctx, a))

	err = s.CreateBook(ctx, NewBook("Dune", a.ID, "genre-missing"))
	require.ErrorIs(t, err, store.ErrInvalidReference)

	books, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Empty(t, books, "rejected writes must not leave documents behind")
}

func testBooksByAuthorAndGenre(t *testing.T, s store.Store) {
	ctx := context.Background()

	herbert := NewAuthor("Frank", "Herbert")
	asimov := NewAuthor("Isaac", "Asimov")
	require.NoError(t, s.CreateAuthor(ctx, herbert))
	require.NoError(t, s.CreateAuthor(ctx, asimov))

	scifi := NewGenre("Science Fiction")
	classic := NewGenre("Classic")
	require.NoError(t, s.CreateGenre(ctx, scifi))
	require.NoError(t, s.CreateGenre(ctx, classic))

	require.NoError(t, s.CreateBook(ctx, NewBook("Dune", herbert.ID, scifi.ID, classic.ID)))
	require.NoError(t, s.CreateBook(ctx, NewBook("Children of Dune", herbert.ID, scifi.ID)))
	require.NoError(t, s.CreateBook(ctx, NewBook("Foundation", asimov.ID, classic.ID)))

	byHerbert, err := s.ListBooksByAuthor(ctx, herbert.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Children of Dune", "Dune"}, titles(byHerbert))

	classics, err := s.ListBooksByGenre(ctx, classic.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune", "Foundation"}, titles(classics))

	all, err := s.ListBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Children of Dune", "Dune", "Foundation"}, titles(all))

	n, err := s.CountBooks(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func testBookUpdateMovesIndexes(t *testing.T, s store.Store) {
	ctx := context.Background()

	herbert := NewAuthor("Frank", "Herbert")
	asimov := NewAuthor("Isaac", "Asimov")
	require.NoError(t, s.CreateAuthor(ctx, herbert))
	require.NoError(t, s.CreateAuthor(ctx, asimov))
	scifi := NewGenre("Science Fiction")
	require.NoError(t, s.CreateGenre(ctx, scifi))

	b := NewBook("Foundation", herbert.ID, scifi.ID)
	require.NoError(t, s.CreateBook(ctx, b))

	b.AuthorID = asimov.ID
	b.GenreIDs = nil
	require.NoError(t, s.UpdateBook(ctx, b))

	byHerbert, err := s.ListBooksByAuthor(ctx, herbert.ID)
	require.NoError(t, err)
	assert.Empty(t, byHerbert)

	byAsimov, err := s.ListBooksByAuthor(ctx, asimov.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Foundation"}, titles(byAsimov))

	inGenre, err := s.ListBooksByGenre(ctx, scifi.ID)
	require.NoError(t, err)
	assert.Empty(t, inGenre)

	// The old author and genre are free to go.
	require.NoError(t, s.DeleteAuthor(ctx, herbert.ID))
	require.NoError(t, s.DeleteGenre(ctx, scifi.ID))

	b.AuthorID = herbert.ID
	require.ErrorIs(t, s.UpdateBook(ctx, b), store.ErrInvalidReference)
}

func testBookDeleteGuard(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewAuthor("Frank", "Herbert")
	require.NoError(t, s.CreateAuthor(ctx, a))
	b := NewBook("Dune", a.ID)
	require.NoError(t, s.CreateBook(ctx, b))
	bi := NewBookInstance(b.ID, domain.StatusAvailable)
	require.NoError(t, s.CreateBookInstance(ctx, bi))

	require.ErrorIs(t, s.DeleteBook(ctx, b.ID), store.ErrReferenced)

	require.NoError(t, s.DeleteBookInstance(ctx, bi.ID))
	require.NoError(t, s.DeleteBook(ctx, b.ID))
}

func testGenreUniqueName(t *testing.T, s store.Store) {
	ctx := context.Background()

	fantasy := NewGenre("Fantasy")
	require.NoError(t, s.CreateGenre(ctx, fantasy))

	err := s.CreateGenre(ctx, NewGenre("Fantasy"))
	require.ErrorIs(t, err, store.ErrAlreadyExists)

	// Matching is exact.
	require.NoError(t, s.CreateGenre(ctx, NewGenre("fantasy")))

	got, err := s.GetGenreByName(ctx, "Fantasy")
	require.NoError(t, err)
	assert.Equal(t, fantasy.ID, got.ID)

	_, err = s.GetGenreByName(ctx, "Horror")
	require.ErrorIs(t, err, store.ErrNotFound)

	poetry := NewGenre("Poetry")
	require.NoError(t, s.CreateGenre(ctx, poetry))
	poetry.Name = "Fantasy"
	require.ErrorIs(t, s.UpdateGenre(ctx, poetry), store.ErrAlreadyExists)

	poetry.Name = "Verse"
	require.NoError(t, s.UpdateGenre(ctx, poetry))
	got, err = s.GetGenreByName(ctx, "Verse")
	require.NoError(t, err)
	assert.Equal(t, poetry.ID, got.ID)
	_, err = s.GetGenreByName(ctx, "Poetry")
	require.ErrorIs(t, err, store.ErrNotFound)

	genres, err := s.ListGenres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 3)
}

func testGenreUniqueNameConcurrent(t *testing.T, s store.Store) {
	ctx := context.Background()

	const writers = 8
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
		dupes   int
	)
	for range writers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			err := s.CreateGenre(ctx, NewGenre("Horror"))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, store.ErrAlreadyExists):
				dupes++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, writers-1, dupes)

	n, err := s.CountGenres(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

func testGenreDeleteGuard(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewAuthor("Frank", "Herbert")
	require.NoError(t, s.CreateAuthor(ctx, a))
	g := NewGenre("Science Fiction")
	require.NoError(t, s.CreateGenre(ctx, g))
	b := NewBook("Dune", a.ID, g.ID)
	require.NoError(t, s.CreateBook(ctx, b))

	require.ErrorIs(t, s.DeleteGenre(ctx, g.ID), store.ErrReferenced)

	b.GenreIDs = nil
	require.NoError(t, s.UpdateBook(ctx, b))
	require.NoError(t, s.DeleteGenre(ctx, g.ID))
}

func testBookInstances(t *testing.T, s store.Store) {
	ctx := context.Background()

	err := s.CreateBookInstance(ctx, NewBookInstance("book-missing", domain.StatusAvailable))
	require.ErrorIs(t, err, store.ErrInvalidReference)

	a := NewAuthor("Frank", "Herbert")
	require.NoError(t, s.CreateAuthor(ctx, a))
	dune := NewBook("Dune", a.ID)
	messiah := NewBook("Dune Messiah", a.ID)
	require.NoError(t, s.CreateBook(ctx, dune))
	require.NoError(t, s.CreateBook(ctx, messiah))

	first := NewBookInstance(dune.ID, domain.StatusAvailable)
	second := NewBookInstance(dune.ID, domain.StatusLoaned)
	second.CreatedAt = first.CreatedAt.Add(time.Second)
	third := NewBookInstance(messiah.ID, domain.StatusAvailable)
	third.CreatedAt = first.CreatedAt.Add(2 * time.Second)
	for _, bi := range []*domain.BookInstance{third, second, first} {
		require.NoError(t, s.CreateBookInstance(ctx, bi))
	}

	all, err := s.ListBookInstances(ctx)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, []string{first.ID, second.ID, third.ID}, []string{all[0].ID, all[1].ID, all[2].ID})

	ofDune, err := s.ListBookInstancesByBook(ctx, dune.ID)
	require.NoError(t, err)
	assert.Len(t, ofDune, 2)

	available, err := s.CountBookInstancesByStatus(ctx, domain.StatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, 2, available)

	second.Status = domain.StatusAvailable
	second.Imprint = "Chilton, 1965"
	require.NoError(t, s.UpdateBookInstance(ctx, second))

	available, err = s.CountBookInstancesByStatus(ctx, domain.StatusAvailable)
	require.NoError(t, err)
	assert.Equal(t, 3, available)
	loaned, err := s.CountBookInstancesByStatus(ctx, domain.StatusLoaned)
	require.NoError(t, err)
	assert.Equal(t, 0, loaned)

	got, err := s.GetBookInstance(ctx, second.ID)
	require.NoError(t, err)
	assert.Equal(t, "Chilton, 1965", got.Imprint)
	assert.WithinDuration(t, second.DueBack, got.DueBack, time.Millisecond)

	total, err := s.CountBookInstances(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, total)
}

func testDeleteMissingIsNoop(t *testing.T, s store.Store) {
	ctx := context.Background()

	assert.NoError(t, s.DeleteAuthor(ctx, "author-missing"))
	assert.NoError(t, s.DeleteBook(ctx, "book-missing"))
	assert.NoError(t, s.DeleteGenre(ctx, "genre-missing"))
	assert.NoError(t, s.DeleteBookInstance(ctx, "copy-missing"))
}

func testGetByIDsSkipsMissing(t *testing.T, s store.Store) {
	ctx := context.Background()

	a := NewAuthor("Frank", "Herbert")
	b := NewAuthor("Isaac", "Asimov")
	require.NoError(t, s.CreateAuthor(ctx, a))
	require.NoError(t, s.CreateAuthor(ctx, b))

	got, err := s.GetAuthorsByIDs(ctx, []string{a.ID, "author-missing", b.ID})
	require.NoError(t, err)
	assert.Len(t, got, 2)

	g := NewGenre("Classic")
	require.NoError(t, s.CreateGenre(ctx, g))
	genres, err := s.GetGenresByIDs(ctx, []string{g.ID, "genre-missing"})
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "Classic", genres[0].Name)

	book := NewBook("Dune", a.ID)
	require.NoError(t, s.CreateBook(ctx, book))
	books, err := s.GetBooksByIDs(ctx, []string{book.ID})
	require.NoError(t, err)
	assert.Equal(t, []string{"Dune"}, titles(books))

	empty, err := s.GetBooksByIDs(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func titles(books []*domain.Book) []string {
	out := make([]string, len(books))
	for i, b := range books {
		out[i] = b.Title
	}
	return out
}
