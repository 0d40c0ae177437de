package api

import (
	"net/http"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/id"
	"github.com/locallibrary/catalog/internal/validation"
)

const authorNotFound = "Author not found"

// authorListPage contains data for the author list.
type authorListPage struct {
	Title   string
	Authors []*domain.Author
}

// authorPage contains data for the author detail and delete pages.
type authorPage struct {
	Title  string
	Author *domain.Author
	Books  []*domain.Book
}

// handleListAuthors lists every author sorted by family name.
// GET /catalog/authors
func (s *Server) handleListAuthors(w http.ResponseWriter, r *http.Request) error {
	authors, err := s.services.Author.ListAuthors(r.Context())
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "author_list", authorListPage{
		Title:   "Author List",
		Authors: authors,
	})
}

// handleGetAuthor shows an author with their books.
// GET /catalog/author/{id}
func (s *Server) handleGetAuthor(w http.ResponseWriter, r *http.Request) error {
	authorID, err := pathID(r, id.PrefixAuthor, authorNotFound)
	if err != nil {
		return err
	}

	detail, err := s.services.Author.GetAuthorDetail(r.Context(), authorID)
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "author_detail", authorPage{
		Title:  "Author: " + detail.Author.Name(),
		Author: detail.Author,
		Books:  detail.Books,
	})
}

// handleAuthorCreateForm shows an empty author form.
// GET /catalog/author/create
func (s *Server) handleAuthorCreateForm(w http.ResponseWriter, _ *http.Request) error {
	return s.renderAuthorForm(w, "Create Author", validation.Values{}, nil)
}

// handleCreateAuthor validates and creates an author.
// POST /catalog/author/create
func (s *Server) handleCreateAuthor(w http.ResponseWriter, r *http.Request) error {
	const title = "Create Author"

	vals, violations, err := authorForm.Bind(r)
	if err != nil {
		return err
	}
	if !violations.Empty() {
		return s.renderAuthorForm(w, title, vals, violations)
	}

	author, err := s.services.Author.CreateAuthor(r.Context(), authorInput(vals))
	if vs, ok := serviceViolations(err); ok {
		return s.renderAuthorForm(w, title, vals, vs)
	}
	if err != nil {
		return err
	}
	return redirect(w, r, author.URL())
}

// handleAuthorUpdateForm shows the author form filled with the stored values.
// GET /catalog/author/{id}/update
func (s *Server) handleAuthorUpdateForm(w http.ResponseWriter, r *http.Request) error {
	authorID, err := pathID(r, id.PrefixAuthor, authorNotFound)
	if err != nil {
		return err
	}

	author, err := s.services.Author.GetAuthor(r.Context(), authorID)
	if err != nil {
		return err
	}
	return s.renderAuthorForm(w, "Update Author", authorValues(author), nil)
}

// handleUpdateAuthor validates and replaces an author's fields.
// POST /catalog/author/{id}/update
func (s *Server) handleUpdateAuthor(w http.ResponseWriter, r *http.Request) error {
	const title = "Update Author"

	authorID, err := pathID(r, id.PrefixAuthor, authorNotFound)
	if err != nil {
		return err
	}

	vals, violations, err := authorForm.Bind(r)
	if err != nil {
		return err
	}
	if !violations.Empty() {
		return s.renderAuthorForm(w, title, vals, violations)
	}

	author, err := s.services.Author.UpdateAuthor(r.Context(), authorID, authorInput(vals))
	if vs, ok := serviceViolations(err); ok {
		return s.renderAuthorForm(w, title, vals, vs)
	}
	if err != nil {
		return err
	}
	return redirect(w, r, author.URL())
}

// handleAuthorDeleteForm asks for confirmation, listing the books that block
// the delete. A missing author sends the client back to the list.
// GET /catalog/author/{id}/delete
func (s *Server) handleAuthorDeleteForm(w http.ResponseWriter, r *http.Request) error {
	authorID, err := pathID(r, id.PrefixAuthor, authorNotFound)
	if err != nil {
		return redirect(w, r, "/catalog/authors")
	}

	detail, err := s.services.Author.GetAuthorDetail(r.Context(), authorID)
	if isNotFound(err) {
		return redirect(w, r, "/catalog/authors")
	}
	if err != nil {
		return err
	}
	return s.renderAuthorDelete(w, detail.Author, detail.Books)
}

// handleDeleteAuthor removes an author with no books. While books remain the
// confirmation page is shown again with them.
// POST /catalog/author/{id}/delete
func (s *Server) handleDeleteAuthor(w http.ResponseWriter, r *http.Request) error {
	authorID, err := pathID(r, id.PrefixAuthor, authorNotFound)
	if err != nil {
		return redirect(w, r, "/catalog/authors")
	}

	err = s.services.Author.DeleteAuthor(r.Context(), authorID)
	if isConflict(err) {
		detail, err := s.services.Author.GetAuthorDetail(r.Context(), authorID)
		if err != nil {
			return err
		}
		return s.renderAuthorDelete(w, detail.Author, detail.Books)
	}
	if err != nil {
		return err
	}
	return redirect(w, r, "/catalog/authors")
}

func (s *Server) renderAuthorForm(w http.ResponseWriter, title string, vals validation.Values, errs validation.Violations) error {
	return s.views.Render(w, http.StatusOK, "author_form", formPage{
		Title:  title,
		Form:   vals,
		Errors: errs,
	})
}

func (s *Server) renderAuthorDelete(w http.ResponseWriter, author *domain.Author, books []*domain.Book) error {
	return s.views.Render(w, http.StatusOK, "author_delete", authorPage{
		Title:  "Delete Author",
		Author: author,
		Books:  books,
	})
}
