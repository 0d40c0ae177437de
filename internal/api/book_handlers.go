package api

import (
	"net/http"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/dto"
	"github.com/locallibrary/catalog/internal/id"
	"github.com/locallibrary/catalog/internal/validation"
)

const bookNotFound = "Book not found"

// bookListPage contains data for the book list.
type bookListPage struct {
	Title string
	Books []*dto.Book
}

// bookPage contains data for the book detail and delete pages.
type bookPage struct {
	Title     string
	Book      *dto.Book
	Instances []*domain.BookInstance
}

// handleListBooks lists every book sorted by title, with its author.
// GET /catalog/books
func (s *Server) handleListBooks(w http.ResponseWriter, r *http.Request) error {
	books, err := s.services.Book.ListBooks(r.Context())
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "book_list", bookListPage{
		Title: "Book List",
		Books: books,
	})
}

// handleGetBook shows a book with its author, genres and copies.
// GET /catalog/book/{id}
func (s *Server) handleGetBook(w http.ResponseWriter, r *http.Request) error {
	bookID, err := pathID(r, id.PrefixBook, bookNotFound)
	if err != nil {
		return err
	}

	detail, err := s.services.Book.GetBookDetail(r.Context(), bookID)
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "book_detail", bookPage{
		Title:     "Title: " + detail.Book.Title,
		Book:      detail.Book,
		Instances: detail.Instances,
	})
}

// handleBookCreateForm shows an empty book form with every author and genre.
// GET /catalog/book/create
func (s *Server) handleBookCreateForm(w http.ResponseWriter, r *http.Request) error {
	return s.renderBookForm(w, r, "Create Book", validation.Values{}, nil)
}

// handleCreateBook validates and creates a book.
// POST /catalog/book/create
func (s *Server) handleCreateBook(w http.ResponseWriter, r *http.Request) error {
	const title = "Create Book"

	vals, violations, err := bookForm.Bind(r)
	if err != nil {
		return err
	}
	if !violations.Empty() {
		return s.renderBookForm(w, r, title, vals, violations)
	}

	book, err := s.services.Book.CreateBook(r.Context(), bookInput(vals))
	if vs, ok := serviceViolations(err); ok {
		return s.renderBookForm(w, r, title, vals, vs)
	}
	if err != nil {
		return err
	}
	return redirect(w, r, book.URL())
}

// handleBookUpdateForm shows the book form filled with the stored values and
// the book's genres checked.
// GET /catalog/book/{id}/update
func (s *Server) handleBookUpdateForm(w http.ResponseWriter, r *http.Request) error {
	bookID, err := pathID(r, id.PrefixBook, bookNotFound)
	if err != nil {
		return err
	}

	book, err := s.services.Book.GetBook(r.Context(), bookID)
	if err != nil {
		return err
	}
	return s.renderBookForm(w, r, "Update Book", bookValues(book), nil)
}

// handleUpdateBook validates and replaces a book's fields.
// POST /catalog/book/{id}/update
func (s *Server) handleUpdateBook(w http.ResponseWriter, r *http.Request) error {
	const title = "Update Book"

	bookID, err := pathID(r, id.PrefixBook, bookNotFound)
	if err != nil {
		return err
	}

	vals, violations, err := bookForm.Bind(r)
	if err != nil {
		return err
	}
	if !violations.Empty() {
		return s.renderBookForm(w, r, title, vals, violations)
	}

	book, err := s.services.Book.UpdateBook(r.Context(), bookID, bookInput(vals))
	if vs, ok := serviceViolations(err); ok {
		return s.renderBookForm(w, r, title, vals, vs)
	}
	if err != nil {
		return err
	}
	return redirect(w, r, book.URL())
}

// handleBookDeleteForm asks for confirmation, listing the copies that block
// the delete.
// GET /catalog/book/{id}/delete
func (s *Server) handleBookDeleteForm(w http.ResponseWriter, r *http.Request) error {
	bookID, err := pathID(r, id.PrefixBook, bookNotFound)
	if err != nil {
		return redirect(w, r, "/catalog/books")
	}

	detail, err := s.services.Book.GetBookDetail(r.Context(), bookID)
	if isNotFound(err) {
		return redirect(w, r, "/catalog/books")
	}
	if err != nil {
		return err
	}
	return s.renderBookDelete(w, detail.Book, detail.Instances)
}

// handleDeleteBook removes a book with no copies.
// POST /catalog/book/{id}/delete
func (s *Server) handleDeleteBook(w http.ResponseWriter, r *http.Request) error {
	bookID, err := pathID(r, id.PrefixBook, bookNotFound)
	if err != nil {
		return redirect(w, r, "/catalog/books")
	}

	err = s.services.Book.DeleteBook(r.Context(), bookID)
	if isConflict(err) {
		detail, err := s.services.Book.GetBookDetail(r.Context(), bookID)
		if err != nil {
			return err
		}
		return s.renderBookDelete(w, detail.Book, detail.Instances)
	}
	if err != nil {
		return err
	}
	return redirect(w, r, "/catalog/books")
}

func (s *Server) renderBookForm(w http.ResponseWriter, r *http.Request, title string, vals validation.Values, errs validation.Violations) error {
	data, err := s.services.Book.GetBookFormData(r.Context())
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "book_form", formPage{
		Title:   title,
		Form:    vals,
		Errors:  errs,
		Authors: data.Authors,
		Genres:  data.Genres,
	})
}

func (s *Server) renderBookDelete(w http.ResponseWriter, book *dto.Book, instances []*domain.BookInstance) error {
	return s.views.Render(w, http.StatusOK, "book_delete", bookPage{
		Title:     "Delete Book",
		Book:      book,
		Instances: instances,
	})
}
