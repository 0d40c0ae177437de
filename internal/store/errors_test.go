package store_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/locallibrary/catalog/internal/store"
)

func TestError_ErrorWithCause(t *testing.T) {
	cause := errors.New("underlying error")
	err := store.ErrReferenced.WithCause(cause)

	assert.Contains(t, err.Error(), "still referenced")
	assert.Contains(t, err.Error(), "underlying error")
	assert.Equal(t, cause, err.Unwrap())
}

func TestError_IsSurvivesWrapping(t *testing.T) {
	err := fmt.Errorf("delete author: %w", store.ErrReferenced.WithCause(errors.New("FOREIGN KEY constraint failed")))

	assert.ErrorIs(t, err, store.ErrReferenced)
	assert.NotErrorIs(t, err, store.ErrAlreadyExists)
}

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name     string
		err      *store.Error
		wantCode int
	}{
		{"not found", store.ErrNotFound, http.StatusNotFound},
		{"already exists", store.ErrAlreadyExists, http.StatusConflict},
		{"referenced", store.ErrReferenced, http.StatusConflict},
		{"invalid reference", store.ErrInvalidReference, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, tt.err.HTTPCode())
			assert.NotEmpty(t, tt.err.Message)
		})
	}
}
