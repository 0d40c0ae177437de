package api

import (
	"net/http"

	"github.com/locallibrary/catalog/internal/dto"
	"github.com/locallibrary/catalog/internal/id"
	"github.com/locallibrary/catalog/internal/validation"
)

const bookInstanceNotFound = "Book copy not found"

// bookInstanceListPage contains data for the copy list.
type bookInstanceListPage struct {
	Title     string
	Instances []*dto.BookInstance
}

// bookInstancePage contains data for the copy detail and delete pages.
type bookInstancePage struct {
	Title    string
	Instance *dto.BookInstance
}

// handleListBookInstances lists every copy with its book title.
// GET /catalog/bookinstances
func (s *Server) handleListBookInstances(w http.ResponseWriter, r *http.Request) error {
	instances, err := s.services.BookInstance.ListBookInstances(r.Context())
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "bookinstance_list", bookInstanceListPage{
		Title:     "Book Instance List",
		Instances: instances,
	})
}

// handleGetBookInstance shows a copy.
// GET /catalog/bookinstance/{id}
func (s *Server) handleGetBookInstance(w http.ResponseWriter, r *http.Request) error {
	instanceID, err := pathID(r, id.PrefixBookInstance, bookInstanceNotFound)
	if err != nil {
		return err
	}

	bi, err := s.services.BookInstance.GetBookInstance(r.Context(), instanceID)
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "bookinstance_detail", bookInstancePage{
		Title:    "Copy: " + bi.BookTitle(),
		Instance: bi,
	})
}

// handleBookInstanceCreateForm shows an empty copy form with every book.
// GET /catalog/bookinstance/create
func (s *Server) handleBookInstanceCreateForm(w http.ResponseWriter, r *http.Request) error {
	return s.renderBookInstanceForm(w, r, "Create BookInstance", validation.Values{}, nil)
}

// handleCreateBookInstance validates and creates a copy.
// POST /catalog/bookinstance/create
func (s *Server) handleCreateBookInstance(w http.ResponseWriter, r *http.Request) error {
	const title = "Create BookInstance"

	vals, violations, err := bookInstanceForm.Bind(r)
	if err != nil {
		return err
	}
	if !violations.Empty() {
		return s.renderBookInstanceForm(w, r, title, vals, violations)
	}

	bi, err := s.services.BookInstance.CreateBookInstance(r.Context(), bookInstanceInput(vals))
	if vs, ok := serviceViolations(err); ok {
		return s.renderBookInstanceForm(w, r, title, vals, vs)
	}
	if err != nil {
		return err
	}
	return redirect(w, r, bi.URL())
}

// handleBookInstanceUpdateForm shows the copy form filled with the stored
// values.
// GET /catalog/bookinstance/{id}/update
func (s *Server) handleBookInstanceUpdateForm(w http.ResponseWriter, r *http.Request) error {
	instanceID, err := pathID(r, id.PrefixBookInstance, bookInstanceNotFound)
	if err != nil {
		return err
	}

	bi, err := s.services.BookInstance.GetBookInstance(r.Context(), instanceID)
	if err != nil {
		return err
	}
	return s.renderBookInstanceForm(w, r, "Update BookInstance", bookInstanceValues(bi.BookInstance), nil)
}

// handleUpdateBookInstance validates and replaces a copy's fields.
// POST /catalog/bookinstance/{id}/update
func (s *Server) handleUpdateBookInstance(w http.ResponseWriter, r *http.Request) error {
	const title = "Update BookInstance"

	instanceID, err := pathID(r, id.PrefixBookInstance, bookInstanceNotFound)
	if err != nil {
		return err
	}

	vals, violations, err := bookInstanceForm.Bind(r)
	if err != nil {
		return err
	}
	if !violations.Empty() {
		return s.renderBookInstanceForm(w, r, title, vals, violations)
	}

	bi, err := s.services.BookInstance.UpdateBookInstance(r.Context(), instanceID, bookInstanceInput(vals))
	if vs, ok := serviceViolations(err); ok {
		return s.renderBookInstanceForm(w, r, title, vals, vs)
	}
	if err != nil {
		return err
	}
	return redirect(w, r, bi.URL())
}

// handleBookInstanceDeleteForm asks for confirmation.
// GET /catalog/bookinstance/{id}/delete
func (s *Server) handleBookInstanceDeleteForm(w http.ResponseWriter, r *http.Request) error {
	instanceID, err := pathID(r, id.PrefixBookInstance, bookInstanceNotFound)
	if err != nil {
		return redirect(w, r, "/catalog/bookinstances")
	}

	bi, err := s.services.BookInstance.GetBookInstance(r.Context(), instanceID)
	if isNotFound(err) {
		return redirect(w, r, "/catalog/bookinstances")
	}
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "bookinstance_delete", bookInstancePage{
		Title:    "Delete BookInstance",
		Instance: bi,
	})
}

// handleDeleteBookInstance removes a copy.
// POST /catalog/bookinstance/{id}/delete
func (s *Server) handleDeleteBookInstance(w http.ResponseWriter, r *http.Request) error {
	instanceID, err := pathID(r, id.PrefixBookInstance, bookInstanceNotFound)
	if err != nil {
		return redirect(w, r, "/catalog/bookinstances")
	}

	if err := s.services.BookInstance.DeleteBookInstance(r.Context(), instanceID); err != nil {
		return err
	}
	return redirect(w, r, "/catalog/bookinstances")
}

func (s *Server) renderBookInstanceForm(w http.ResponseWriter, r *http.Request, title string, vals validation.Values, errs validation.Violations) error {
	books, err := s.services.BookInstance.ListBookChoices(r.Context())
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "bookinstance_form", formPage{
		Title:  title,
		Form:   vals,
		Errors: errs,
		Books:  books,
	})
}
