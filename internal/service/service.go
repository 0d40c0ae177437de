// Package service holds the catalog's business logic between the HTTP
// handlers and the store.
package service

import (
	"errors"
	"fmt"

	domainerrors "github.com/locallibrary/catalog/internal/errors"
	"github.com/locallibrary/catalog/internal/store"
)

// lookupError maps a store miss to a not-found domain error carrying msg.
func lookupError(err error, msg string) error {
	if errors.Is(err, store.ErrNotFound) {
		return domainerrors.NotFound(msg).WithCause(err)
	}
	return err
}

// writeError maps store write failures to domain errors a form can show.
func writeError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrInvalidReference):
		return domainerrors.ValidationWithDetails("referenced resource does not exist", map[string]string{
			"reference": "The selected " + what + " no longer exists",
		}).WithCause(err)
	case errors.Is(err, store.ErrNotFound):
		return domainerrors.NotFound(what + " not found").WithCause(err)
	default:
		return fmt.Errorf("save %s: %w", what, err)
	}
}

// deleteError maps a guarded delete to a conflict.
func deleteError(err error, what string) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrReferenced):
		return domainerrors.Conflictf("%s is still referenced", what).WithCause(err)
	default:
		return fmt.Errorf("delete %s: %w", what, err)
	}
}
