package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/locallibrary/catalog/internal/id"
)

func TestCreateGenre_DuplicateRedirectsToExisting(t *testing.T) {
	ts := setupTestServer(t, Options{})

	first := ts.post(t, "/catalog/genre/create", url.Values{"name": {"Fantasy"}})
	require.Equal(t, http.StatusFound, first.Code)
	location := first.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/catalog/genre/genre-"), location)

	second := ts.post(t, "/catalog/genre/create", url.Values{"name": {" Fantasy "}})
	require.Equal(t, http.StatusFound, second.Code)
	assert.Equal(t, location, second.Header().Get("Location"))

	// Names are compared exactly.
	other := ts.post(t, "/catalog/genre/create", url.Values{"name": {"fantasy"}})
	require.Equal(t, http.StatusFound, other.Code)
	assert.NotEqual(t, location, other.Header().Get("Location"))

	count, err := ts.store.CountGenres(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCreateGenre_TooShort(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.post(t, "/catalog/genre/create", url.Values{"name": {"  ab  "}})
	require.Equal(t, http.StatusOK, w.Code)

	doc := parsePage(t, w)
	assert.Equal(t, []string{"Genre name must contain between 3 and 100 characters"}, formErrors(doc)["name"])
	assert.Equal(t, "ab", fieldValue(doc, "name"), "trimmed value is echoed")
}

func TestCreateGenre_EscapesStoredName(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.post(t, "/catalog/genre/create", url.Values{"name": {"Sword & Sorcery"}})
	require.Equal(t, http.StatusFound, w.Code)

	genres, err := ts.services.Genre.ListGenres(context.Background())
	require.NoError(t, err)
	require.Len(t, genres, 1)
	assert.Equal(t, "Sword &amp; Sorcery", genres[0].Name)

	// Stored entities are escaped once on the way out.
	list := ts.get(t, "/catalog/genres")
	assert.Equal(t, []string{"Sword & Sorcery"}, listLinks(parsePage(t, list)))
	assert.NotContains(t, list.Body.String(), "&amp;amp;")
}

func TestGetGenre(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)

	w := ts.get(t, f.fantasy.URL())
	require.Equal(t, http.StatusOK, w.Code)
	doc := parsePage(t, w)
	assert.Equal(t, "Genre: Fantasy", heading(doc))
	assert.Contains(t, textOf(elementByID(doc, "books")), "A Wizard of Earthsea")

	missing := ts.get(t, "/catalog/genre/"+id.MustGenerate(id.PrefixGenre))
	assert.Equal(t, http.StatusNotFound, missing.Code)
	assert.Equal(t, "Genre not found", textOf(elementByID(parsePage(t, missing), "message")))
}

func TestUpdateGenre(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)

	form := ts.get(t, f.scifi.URL()+"/update")
	require.Equal(t, http.StatusOK, form.Code)
	assert.Equal(t, "Science Fiction", fieldValue(parsePage(t, form), "name"))

	w := ts.post(t, f.scifi.URL()+"/update", url.Values{"name": {"SF"}})
	require.Equal(t, http.StatusOK, w.Code, "too short")

	w = ts.post(t, f.scifi.URL()+"/update", url.Values{"name": {"Fantasy"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Another genre is already named Fantasy"}, formErrors(parsePage(t, w))["name"])

	w = ts.post(t, f.scifi.URL()+"/update", url.Values{"name": {"Speculative Fiction"}})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, f.scifi.URL(), w.Header().Get("Location"))

	g, err := ts.services.Genre.GetGenre(context.Background(), f.scifi.ID)
	require.NoError(t, err)
	assert.Equal(t, "Speculative Fiction", g.Name)
}

func TestDeleteGenre(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)

	blocked := ts.post(t, f.fantasy.URL()+"/delete", nil)
	require.Equal(t, http.StatusOK, blocked.Code)
	assert.NotNil(t, elementByID(parsePage(t, blocked), "blocked"))

	w := ts.post(t, f.scifi.URL()+"/delete", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/catalog/genres", w.Header().Get("Location"))

	list := ts.get(t, "/catalog/genres")
	assert.Equal(t, []string{"Fantasy"}, listLinks(parsePage(t, list)))
}

func TestCreateGenre_NormalizesUnicode(t *testing.T) {
	ts := setupTestServer(t, Options{})

	composed := ts.post(t, "/catalog/genre/create", url.Values{"name": {"M\u00fasica"}})
	require.Equal(t, http.StatusFound, composed.Code)

	decomposed := ts.post(t, "/catalog/genre/create", url.Values{"name": {"Mu\u0301sica"}})
	require.Equal(t, http.StatusFound, decomposed.Code)
	assert.Equal(t, composed.Header().Get("Location"), decomposed.Header().Get("Location"))
}

func TestCreateGenre_LengthCountsEnteredCharacters(t *testing.T) {
	ts := setupTestServer(t, Options{})

	name := "R&B" + strings.Repeat("a", 97)
	w := ts.post(t, "/catalog/genre/create", url.Values{"name": {name}})
	require.Equal(t, http.StatusFound, w.Code, w.Body.String())

	g, err := ts.services.Genre.GetGenre(context.Background(), strings.TrimPrefix(w.Header().Get("Location"), "/catalog/genre/"))
	require.NoError(t, err)
	assert.Equal(t, "R&amp;B"+strings.Repeat("a", 97), g.Name)

	tooLong := ts.post(t, "/catalog/genre/create", url.Values{"name": {name + "a"}})
	require.Equal(t, http.StatusOK, tooLong.Code)
	assert.Equal(t, []string{"Genre name must contain between 3 and 100 characters"}, formErrors(parsePage(t, tooLong))["name"])
}

func TestUpdateGenre_DuplicateMessageShowsEnteredName(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)

	require.Equal(t, http.StatusFound, ts.post(t, "/catalog/genre/create", url.Values{"name": {"R&B"}}).Code)

	w := ts.post(t, f.scifi.URL()+"/update", url.Values{"name": {"R&B"}})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"Another genre is already named R&B"}, formErrors(parsePage(t, w))["name"])
	assert.NotContains(t, w.Body.String(), "&amp;amp;")
}
