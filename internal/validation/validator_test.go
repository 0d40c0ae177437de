package validation_test

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog/internal/domain"
	domainerrors "github.com/locallibrary/catalog/internal/errors"
	"github.com/locallibrary/catalog/internal/validation"
)

func TestValidator_ValidateSuccess(t *testing.T) {
	v := validation.New()

	author := &domain.Author{FirstName: "Ursula", FamilyName: "Le Guin"}
	assert.NoError(t, v.Validate(author))

	genre := &domain.Genre{Name: "Fantasy"}
	assert.NoError(t, v.Validate(genre))

	instance := domain.NewBookInstance("book-1", "Ace, 1969")
	assert.NoError(t, v.Validate(instance))
}

func TestValidator_TextLengthIgnoresEntities(t *testing.T) {
	v := validation.New()

	// Escaped "R&B" plus 97 letters is 100 characters as entered.
	assert.NoError(t, v.Validate(&domain.Genre{Name: "R&amp;B" + strings.Repeat("a", 97)}))

	err := v.Validate(&domain.Genre{Name: "R&amp;B" + strings.Repeat("a", 98)})
	require.Error(t, err)
	var domainErr *domainerrors.Error
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, map[string]string{"name": "must not exceed 100 characters"}, domainErr.Details)

	err = v.Validate(&domain.Genre{Name: "&amp;&lt;"})
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, map[string]string{"name": "must be at least 3 characters"}, domainErr.Details)
}

func TestValidator_ValidateErrors(t *testing.T) {
	v := validation.New()

	tests := []struct {
		name      string
		doc       any
		wantField string
		wantMsg   string
	}{
		{
			name:      "missing family name",
			doc:       &domain.Author{FirstName: "Ursula"},
			wantField: "family_name",
			wantMsg:   "is required",
		},
		{
			name:      "short genre name",
			doc:       &domain.Genre{Name: "ab"},
			wantField: "name",
			wantMsg:   "must be at least 3 characters",
		},
		{
			name:      "book without author",
			doc:       &domain.Book{Title: "Dune", Summary: "Spice.", ISBN: "9780441013593"},
			wantField: "author",
			wantMsg:   "is required",
		},
		{
			name:      "unknown status",
			doc:       &domain.BookInstance{BookID: "book-1", Imprint: "Ace", Status: "lost"},
			wantField: "status",
			wantMsg:   "must be one of: available maintenance loaned reserved",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.doc)
			require.Error(t, err)

			var domainErr *domainerrors.Error
			require.ErrorAs(t, err, &domainErr)
			assert.Equal(t, http.StatusBadRequest, domainErr.HTTPStatus())

			details, ok := domainErr.Details.(map[string]string)
			require.True(t, ok)
			assert.Equal(t, tt.wantMsg, details[tt.wantField])
		})
	}
}

func TestValidator_Var(t *testing.T) {
	v := validation.New()

	assert.True(t, v.Var("John123", "alphanum"))
	assert.False(t, v.Var("John 123", "alphanum"))
	assert.True(t, v.Var("1973-06-01", "iso8601"))
	assert.False(t, v.Var("June 1st", "iso8601"))
	assert.False(t, v.Var("", "required"))
}

func TestParseISO8601(t *testing.T) {
	tests := []struct {
		in   string
		ok   bool
		want time.Time
	}{
		{"1973", true, time.Date(1973, 1, 1, 0, 0, 0, 0, time.UTC)},
		{"1973-06", true, time.Date(1973, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"1973-06-01", true, time.Date(1973, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"19730601", true, time.Date(1973, 6, 1, 0, 0, 0, 0, time.UTC)},
		{"1973-06-01T10:30:00Z", true, time.Date(1973, 6, 1, 10, 30, 0, 0, time.UTC)},
		{"1973-13-01", false, time.Time{}},
		{"", false, time.Time{}},
		{"yesterday", false, time.Time{}},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := validation.ParseISO8601(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.True(t, tt.want.Equal(got), "got %s", got)
			}
		})
	}
}
