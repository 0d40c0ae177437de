// Package main populates an empty catalog with sample authors, genres, books
// and copies.
//
// It accepts the same flags and environment as the server, so it writes to
// whichever store the server would open:
//
//	go run ./cmd/seed --data-path ./data --store sqlite
package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/samber/do/v2"

	"github.com/locallibrary/catalog/internal/di/providers"
	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/service"
)

type sampleBook struct {
	title   string
	author  int
	summary string
	isbn    string
	genres  []int
	copies  []sampleCopy
}

type sampleCopy struct {
	imprint string
	status  domain.Status
	dueIn   time.Duration
}

var (
	sampleAuthors = []service.AuthorInput{
		{FirstName: "Patrick", FamilyName: "Rothfuss", DateOfBirth: date(1973, 6, 6)},
		{FirstName: "Ben", FamilyName: "Bova", DateOfBirth: date(1932, 11, 8), DateOfDeath: date(2020, 11, 29)},
		{FirstName: "Isaac", FamilyName: "Asimov", DateOfBirth: date(1920, 1, 2), DateOfDeath: date(1992, 4, 6)},
		{FirstName: "Bob", FamilyName: "Billings"},
		{FirstName: "Jim", FamilyName: "Jones", DateOfBirth: date(1971, 12, 16)},
	}

	sampleGenres = []string{"Fantasy", "Science Fiction", "French Poetry"}

	sampleBooks = []sampleBook{
		{
			title:   "The Name of the Wind",
			author:  0,
			summary: "I have stolen princesses back from sleeping barrow kings.",
			isbn:    "9781473211896",
			genres:  []int{0},
			copies: []sampleCopy{
				{imprint: "London Gollancz, 2014.", status: domain.StatusAvailable},
				{imprint: "Gollancz, 2011.", status: domain.StatusLoaned, dueIn: 14 * 24 * time.Hour},
			},
		},
		{
			title:   "The Wise Man's Fear",
			author:  0,
			summary: "Picking up the tale of Kvothe Kingkiller once again.",
			isbn:    "9788401352836",
			genres:  []int{0},
			copies: []sampleCopy{
				{imprint: "Gollancz, 2011.", status: domain.StatusMaintenance},
			},
		},
		{
			title:   "Apes and Angels",
			author:  1,
			summary: "Humankind's first venture outside our solar system.",
			isbn:    "9780765379528",
			genres:  []int{1},
			copies: []sampleCopy{
				{imprint: "New York Tom Doherty Associates, 2016.", status: domain.StatusReserved},
			},
		},
		{
			title:   "Death Wave",
			author:  1,
			summary: "In Ben Bova's previous novel an alien intelligence destroyed a civilization.",
			isbn:    "9780765379504",
			genres:  []int{1},
		},
		{
			title:   "Test Book 1",
			author:  4,
			summary: "Summary of test book 1",
			isbn:    "ISBN111111",
			genres:  []int{0, 1},
			copies: []sampleCopy{
				{imprint: "Imprint XXX2", status: domain.StatusAvailable},
			},
		},
	}
)

func date(y int, m time.Month, d int) *time.Time {
	t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return &t
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("Seeding failed: %v", err)
	}
}

func run() error {
	injector := do.New()
	do.Provide(injector, providers.ProvideConfig)
	do.Provide(injector, providers.ProvideLogger)
	do.Provide(injector, providers.ProvideStore)
	do.Provide(injector, providers.ProvideSearchIndex)
	do.Provide(injector, providers.ProvideSearchService)
	do.Provide(injector, providers.ProvideCatalogService)
	do.Provide(injector, providers.ProvideAuthorService)
	do.Provide(injector, providers.ProvideBookService)
	do.Provide(injector, providers.ProvideGenreService)
	do.Provide(injector, providers.ProvideBookInstanceService)

	err := seed(context.Background(), injector)
	if shutdownErr := injector.Shutdown(); shutdownErr != nil {
		log.Printf("Shutdown error: %v", shutdownErr)
	}
	return err
}

func seed(ctx context.Context, i do.Injector) error {
	catalog, err := do.Invoke[*service.CatalogService](i)
	if err != nil {
		return err
	}

	counts, err := catalog.Counts(ctx)
	if err != nil {
		return err
	}
	if counts.Books > 0 || counts.Authors > 0 {
		fmt.Printf("Catalog already holds %d books and %d authors, nothing to do\n", counts.Books, counts.Authors)
		return nil
	}

	authors := do.MustInvoke[*service.AuthorService](i)
	genres := do.MustInvoke[*service.GenreService](i)
	books := do.MustInvoke[*service.BookService](i)
	instances := do.MustInvoke[*service.BookInstanceService](i)

	authorIDs := make([]string, len(sampleAuthors))
	for n, in := range sampleAuthors {
		a, err := authors.CreateAuthor(ctx, in)
		if err != nil {
			return fmt.Errorf("create author %s: %w", in.FamilyName, err)
		}
		authorIDs[n] = a.ID
		fmt.Printf("  author %s\n", a.Name())
	}

	genreIDs := make([]string, len(sampleGenres))
	for n, name := range sampleGenres {
		g, _, err := genres.CreateGenre(ctx, name)
		if err != nil {
			return fmt.Errorf("create genre %s: %w", name, err)
		}
		genreIDs[n] = g.ID
		fmt.Printf("  genre %s\n", g.Name)
	}

	var copies int
	for _, sb := range sampleBooks {
		in := service.BookInput{
			Title:    sb.title,
			AuthorID: authorIDs[sb.author],
			Summary:  sb.summary,
			ISBN:     sb.isbn,
		}
		for _, g := range sb.genres {
			in.GenreIDs = append(in.GenreIDs, genreIDs[g])
		}

		b, err := books.CreateBook(ctx, in)
		if err != nil {
			return fmt.Errorf("create book %s: %w", sb.title, err)
		}
		fmt.Printf("  book %s\n", b.Title)

		for _, c := range sb.copies {
			ci := service.BookInstanceInput{BookID: b.ID, Imprint: c.imprint, Status: c.status}
			if c.dueIn > 0 {
				due := time.Now().Add(c.dueIn)
				ci.DueBack = &due
			}
			if _, err := instances.CreateBookInstance(ctx, ci); err != nil {
				return fmt.Errorf("create copy of %s: %w", sb.title, err)
			}
			copies++
		}
	}

	fmt.Printf("Seeded %d authors, %d genres, %d books and %d copies\n",
		len(authorIDs), len(genreIDs), len(sampleBooks), copies)
	return nil
}
