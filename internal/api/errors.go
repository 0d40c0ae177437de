package api

import (
	"errors"
	"net/http"
	"slices"
	"unicode"
	"unicode/utf8"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/samber/lo"

	domainerrors "github.com/locallibrary/catalog/internal/errors"
	"github.com/locallibrary/catalog/internal/validation"
)

// handlerFunc is a page handler. A returned error has not been written yet;
// handle renders it.
type handlerFunc func(w http.ResponseWriter, r *http.Request) error

// handle adapts a handlerFunc, mapping its error to a failure page.
func (s *Server) handle(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := h(w, r); err != nil {
			s.handleError(w, r, err)
		}
	}
}

// errorPage contains data for the failure page.
type errorPage struct {
	Title   string
	Message string
	// Detail is the underlying error, shown in development only.
	Detail string
}

// handleError renders the failure page for err. Domain errors keep their
// status and message; anything else is a generic 500.
func (s *Server) handleError(w http.ResponseWriter, r *http.Request, err error) {
	code := domainerrors.CodeOf(err)
	status := code.HTTPStatus()

	page := errorPage{
		Title:   http.StatusText(status),
		Message: domainerrors.MessageOf(err, "Something went wrong."),
	}

	if code == domainerrors.CodeInternal {
		s.logger.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"request_id", middleware.GetReqID(r.Context()),
			"error", err,
		)
		page.Title = "Error"
		page.Message = "Something went wrong."
		if s.dev {
			page.Detail = err.Error()
		}
	}

	s.renderStatus(w, status, page)
}

// renderStatus writes the failure page, falling back to plain text when the
// page itself cannot be rendered.
func (s *Server) renderStatus(w http.ResponseWriter, status int, page errorPage) {
	if err := s.views.Render(w, status, "error", page); err != nil {
		s.logger.Error("Failed to render error page", "status", status, "error", err)
		http.Error(w, page.Message, status)
	}
}

// handleNotFound renders the 404 page for unrouted paths.
func (s *Server) handleNotFound(_ http.ResponseWriter, _ *http.Request) error {
	return domainerrors.NotFound("Page not found")
}

// serviceViolations turns a validation error returned by a service into form
// violations. It reports false for any other error.
func serviceViolations(err error) (validation.Violations, bool) {
	var de *domainerrors.Error
	if !errors.As(err, &de) || de.Code != domainerrors.CodeValidation {
		return nil, false
	}

	details, _ := de.Details.(map[string]string)
	if len(details) == 0 {
		return validation.Violations{{Message: de.Message}}, true
	}

	fields := lo.Keys(details)
	slices.Sort(fields)
	return lo.Map(fields, func(field string, _ int) validation.Violation {
		msg := details[field]
		// Schema messages are fragments such as "is required".
		if r, _ := utf8.DecodeRuneInString(msg); unicode.IsLower(r) {
			msg = field + " " + msg
		}
		return validation.Violation{Field: field, Message: msg}
	}), true
}
