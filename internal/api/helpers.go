package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	domainerrors "github.com/locallibrary/catalog/internal/errors"
	"github.com/locallibrary/catalog/internal/id"
)

// pathID returns the {id} URL parameter. An ID that could never have been
// generated for prefix is answered as not found without a store lookup.
func pathID(r *http.Request, prefix, notFound string) (string, error) {
	v := chi.URLParam(r, "id")
	if !id.Valid(prefix, v) {
		return "", domainerrors.NotFound(notFound)
	}
	return v, nil
}

// redirect sends the client to target after a successful write.
func redirect(w http.ResponseWriter, r *http.Request, target string) error {
	http.Redirect(w, r, target, http.StatusFound)
	return nil
}

func isNotFound(err error) bool {
	return domainerrors.CodeOf(err) == domainerrors.CodeNotFound
}

func isConflict(err error) bool {
	return domainerrors.CodeOf(err) == domainerrors.CodeConflict
}
