package api

import (
	"net/http"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/id"
	"github.com/locallibrary/catalog/internal/validation"
)

const genreNotFound = "Genre not found"

// genreListPage contains data for the genre list.
type genreListPage struct {
	Title  string
	Genres []*domain.Genre
}

// genrePage contains data for the genre detail and delete pages.
type genrePage struct {
	Title string
	Genre *domain.Genre
	Books []*domain.Book
}

// handleListGenres lists every genre sorted by name.
// GET /catalog/genres
func (s *Server) handleListGenres(w http.ResponseWriter, r *http.Request) error {
	genres, err := s.services.Genre.ListGenres(r.Context())
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "genre_list", genreListPage{
		Title:  "Genre List",
		Genres: genres,
	})
}

// handleGetGenre shows a genre with its books.
// GET /catalog/genre/{id}
func (s *Server) handleGetGenre(w http.ResponseWriter, r *http.Request) error {
	genreID, err := pathID(r, id.PrefixGenre, genreNotFound)
	if err != nil {
		return err
	}

	detail, err := s.services.Genre.GetGenreDetail(r.Context(), genreID)
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "genre_detail", genrePage{
		Title: "Genre: " + detail.Genre.Name,
		Genre: detail.Genre,
		Books: detail.Books,
	})
}

// handleGenreCreateForm shows an empty genre form.
// GET /catalog/genre/create
func (s *Server) handleGenreCreateForm(w http.ResponseWriter, _ *http.Request) error {
	return s.renderGenreForm(w, "Create Genre", validation.Values{}, nil)
}

// handleCreateGenre creates a genre, or redirects to the genre already using
// the submitted name.
// POST /catalog/genre/create
func (s *Server) handleCreateGenre(w http.ResponseWriter, r *http.Request) error {
	const title = "Create Genre"

	vals, violations, err := genreForm.Bind(r)
	if err != nil {
		return err
	}
	if !violations.Empty() {
		return s.renderGenreForm(w, title, vals, violations)
	}

	genre, _, err := s.services.Genre.CreateGenre(r.Context(), vals.Get("name"))
	if vs, ok := serviceViolations(err); ok {
		return s.renderGenreForm(w, title, vals, vs)
	}
	if err != nil {
		return err
	}
	return redirect(w, r, genre.URL())
}

// handleGenreUpdateForm shows the genre form filled with the stored name.
// GET /catalog/genre/{id}/update
func (s *Server) handleGenreUpdateForm(w http.ResponseWriter, r *http.Request) error {
	genreID, err := pathID(r, id.PrefixGenre, genreNotFound)
	if err != nil {
		return err
	}

	genre, err := s.services.Genre.GetGenre(r.Context(), genreID)
	if err != nil {
		return err
	}
	return s.renderGenreForm(w, "Update Genre", genreValues(genre), nil)
}

// handleUpdateGenre renames a genre.
// POST /catalog/genre/{id}/update
func (s *Server) handleUpdateGenre(w http.ResponseWriter, r *http.Request) error {
	const title = "Update Genre"

	genreID, err := pathID(r, id.PrefixGenre, genreNotFound)
	if err != nil {
		return err
	}

	vals, violations, err := genreForm.Bind(r)
	if err != nil {
		return err
	}
	if !violations.Empty() {
		return s.renderGenreForm(w, title, vals, violations)
	}

	genre, err := s.services.Genre.UpdateGenre(r.Context(), genreID, vals.Get("name"))
	if vs, ok := serviceViolations(err); ok {
		return s.renderGenreForm(w, title, vals, vs)
	}
	if err != nil {
		return err
	}
	return redirect(w, r, genre.URL())
}

// handleGenreDeleteForm asks for confirmation, listing the books that block
// the delete.
// GET /catalog/genre/{id}/delete
func (s *Server) handleGenreDeleteForm(w http.ResponseWriter, r *http.Request) error {
	genreID, err := pathID(r, id.PrefixGenre, genreNotFound)
	if err != nil {
		return redirect(w, r, "/catalog/genres")
	}

	detail, err := s.services.Genre.GetGenreDetail(r.Context(), genreID)
	if isNotFound(err) {
		return redirect(w, r, "/catalog/genres")
	}
	if err != nil {
		return err
	}
	return s.renderGenreDelete(w, detail.Genre, detail.Books)
}

// handleDeleteGenre removes a genre no book is filed under.
// POST /catalog/genre/{id}/delete
func (s *Server) handleDeleteGenre(w http.ResponseWriter, r *http.Request) error {
	genreID, err := pathID(r, id.PrefixGenre, genreNotFound)
	if err != nil {
		return redirect(w, r, "/catalog/genres")
	}

	err = s.services.Genre.DeleteGenre(r.Context(), genreID)
	if isConflict(err) {
		detail, err := s.services.Genre.GetGenreDetail(r.Context(), genreID)
		if err != nil {
			return err
		}
		return s.renderGenreDelete(w, detail.Genre, detail.Books)
	}
	if err != nil {
		return err
	}
	return redirect(w, r, "/catalog/genres")
}

func (s *Server) renderGenreForm(w http.ResponseWriter, title string, vals validation.Values, errs validation.Violations) error {
	return s.views.Render(w, http.StatusOK, "genre_form", formPage{
		Title:  title,
		Form:   vals,
		Errors: errs,
	})
}

func (s *Server) renderGenreDelete(w http.ResponseWriter, genre *domain.Genre, books []*domain.Book) error {
	return s.views.Render(w, http.StatusOK, "genre_delete", genrePage{
		Title: "Delete Genre",
		Genre: genre,
		Books: books,
	})
}
