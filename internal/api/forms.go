package api

import (
	"github.com/samber/lo"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/service"
	"github.com/locallibrary/catalog/internal/validation"
)

var formValidator = validation.New()

// Form pipelines, one per entity, shared by the create and update routes.
var (
	authorForm = formValidator.Pipeline(
		validation.Field("first_name").Trim().
			Length(1, 0, "First name must be specified.").
			Escape().
			Alphanumeric("First name has non-alphanumeric characters."),
		validation.Field("family_name").Trim().
			Length(1, 0, "Family name must be specified.").
			Escape().
			Alphanumeric("Family name has non-alphanumeric characters."),
		validation.Field("date_of_birth").Optional().ISO8601("Invalid date of birth").ToDate(),
		validation.Field("date_of_death").Optional().ISO8601("Invalid date of death").ToDate(),
	)

	bookForm = formValidator.Pipeline(
		validation.Field("title").Trim().Normalize().NotEmpty("Title must not be empty.").Escape(),
		validation.Field("author").Trim().NotEmpty("Author must not be empty.").Escape(),
		validation.Field("summary").Trim().NotEmpty("Summary must not be empty.").Escape(),
		validation.Field("isbn").Trim().NotEmpty("ISBN must not be empty").Escape(),
		validation.Field("genre").Each().Escape(),
	)

	genreForm = formValidator.Pipeline(
		validation.Field("name").Trim().Normalize().
			Length(3, 100, "Genre name must contain between 3 and 100 characters").
			Escape(),
	)

	bookInstanceForm = formValidator.Pipeline(
		validation.Field("book").Trim().NotEmpty("Book must be specified").Escape(),
		validation.Field("imprint").Trim().NotEmpty("Imprint must be specified").Escape(),
		validation.Field("status").Trim().Optional().
			OneOf("Invalid status", lo.Map(domain.Statuses, func(s domain.Status, _ int) string {
				return s.String()
			})...),
		validation.Field("due_back").Optional().ISO8601("Invalid date").ToDate(),
	)
)

func authorInput(v validation.Values) service.AuthorInput {
	return service.AuthorInput{
		FirstName:   v.Get("first_name"),
		FamilyName:  v.Get("family_name"),
		DateOfBirth: v.Time("date_of_birth"),
		DateOfDeath: v.Time("date_of_death"),
	}
}

func authorValues(a *domain.Author) validation.Values {
	v := validation.Values{}
	v.Set("first_name", a.FirstName)
	v.Set("family_name", a.FamilyName)
	v.Set("date_of_birth", domain.InputDate(a.DateOfBirth))
	v.Set("date_of_death", domain.InputDate(a.DateOfDeath))
	return v
}

func bookInput(v validation.Values) service.BookInput {
	return service.BookInput{
		Title:    v.Get("title"),
		AuthorID: v.Get("author"),
		Summary:  v.Get("summary"),
		ISBN:     v.Get("isbn"),
		GenreIDs: v.List("genre"),
	}
}

func bookValues(b *domain.Book) validation.Values {
	v := validation.Values{}
	v.Set("title", b.Title)
	v.Set("author", b.AuthorID)
	v.Set("summary", b.Summary)
	v.Set("isbn", b.ISBN)
	v.SetList("genre", b.GenreIDs...)
	return v
}

func genreValues(g *domain.Genre) validation.Values {
	v := validation.Values{}
	v.Set("name", g.Name)
	return v
}

func bookInstanceInput(v validation.Values) service.BookInstanceInput {
	return service.BookInstanceInput{
		BookID:  v.Get("book"),
		Imprint: v.Get("imprint"),
		Status:  domain.Status(v.Get("status")),
		DueBack: v.Time("due_back"),
	}
}

func bookInstanceValues(bi *domain.BookInstance) validation.Values {
	v := validation.Values{}
	v.Set("book", bi.BookID)
	v.Set("imprint", bi.Imprint)
	v.Set("status", bi.Status.String())
	v.Set("due_back", domain.InputDate(&bi.DueBack))
	return v
}

// formPage contains data for the create and update forms. Only the option
// lists the form needs are set.
type formPage struct {
	Title   string
	Form    validation.Values
	Errors  validation.Violations
	Authors []*domain.Author
	Genres  []*domain.Genre
	Books   []*domain.Book
}
