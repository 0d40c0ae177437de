package errors_test

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/locallibrary/catalog/internal/errors"
	"github.com/stretchr/testify/assert"
)

func TestError_IsMatchesByCode(t *testing.T) {
	err := errors.NotFound("Author not found")

	assert.ErrorIs(t, err, errors.ErrNotFound)
	assert.NotErrorIs(t, err, errors.ErrValidation)
	assert.Equal(t, "Author not found", err.Error())
}

func TestError_WrappedChain(t *testing.T) {
	cause := stderrors.New("disk on fire")
	err := fmt.Errorf("load genre: %w", errors.Wrap(cause, errors.CodeInternal, "storage failure"))

	assert.ErrorIs(t, err, errors.ErrInternal)
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, errors.CodeInternal, errors.CodeOf(err))
	assert.Equal(t, "storage failure", errors.MessageOf(err, "fallback"))
}

func TestCodeOf_PlainError(t *testing.T) {
	err := stderrors.New("boom")

	assert.Equal(t, errors.CodeInternal, errors.CodeOf(err))
	assert.Equal(t, "fallback", errors.MessageOf(err, "fallback"))
}

func TestCode_HTTPStatus(t *testing.T) {
	tests := []struct {
		code errors.Code
		want int
	}{
		{errors.CodeNotFound, http.StatusNotFound},
		{errors.CodeAlreadyExists, http.StatusConflict},
		{errors.CodeConflict, http.StatusConflict},
		{errors.CodeValidation, http.StatusBadRequest},
		{errors.CodeInternal, http.StatusInternalServerError},
		{errors.Code("SOMETHING_ELSE"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, tt.code.HTTPStatus())
		})
	}
}

func TestError_WithDetailsKeepsCause(t *testing.T) {
	cause := stderrors.New("root")
	err := errors.ErrValidation.WithCause(cause).WithDetails(map[string]string{"name": "is required"})

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, map[string]string{"name": "is required"}, err.Details)
}
