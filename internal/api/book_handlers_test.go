package api

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/id"
)

// checkedGenres returns the values of the checked genre boxes.
func checkedGenres(doc *html.Node) []string {
	var out []string
	for _, n := range findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "input" && attr(n, "name") == "genre"
	}) {
		if hasAttr(n, "checked") {
			out = append(out, attr(n, "value"))
		}
	}
	return out
}

func selectedOption(doc *html.Node, selectName string) string {
	for _, sel := range findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "select" && attr(n, "name") == selectName
	}) {
		for _, opt := range findAll(sel, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "option" && hasAttr(n, "selected")
		}) {
			return attr(opt, "value")
		}
	}
	return ""
}

func TestBookCreateForm_ListsAuthorsAndGenres(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)

	w := ts.get(t, "/catalog/book/create")
	require.Equal(t, http.StatusOK, w.Code)

	body := w.Body.String()
	assert.Contains(t, body, `value="`+f.author.ID+`"`)
	assert.Contains(t, body, `value="`+f.fantasy.ID+`"`)
	assert.Contains(t, body, `value="`+f.scifi.ID+`"`)
	assert.Empty(t, checkedGenres(parsePage(t, w)))
}

func TestCreateBook_Success(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)

	w := ts.post(t, "/catalog/book/create", url.Values{
		"title":   {"The Dispossessed"},
		"author":  {f.author.ID},
		"summary": {"An ambiguous utopia."},
		"isbn":    {"9780061054884"},
		"genre":   {f.scifi.ID},
	})
	require.Equal(t, http.StatusFound, w.Code)
	location := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(location, "/catalog/book/book-"), location)

	detail := ts.get(t, location)
	require.Equal(t, http.StatusOK, detail.Code)
	doc := parsePage(t, detail)
	assert.Equal(t, "Title: The Dispossessed", heading(doc))
	assert.Contains(t, detail.Body.String(), f.author.URL())
	assert.Contains(t, detail.Body.String(), f.scifi.URL())
	assert.Contains(t, textOf(elementByID(doc, "copies")), "There are no copies of this book in the library.")
}

func TestCreateBook_MultipleGenres(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)

	w := ts.post(t, "/catalog/book/create", url.Values{
		"title":   {"The Lathe of Heaven"},
		"author":  {f.author.ID},
		"summary": {"Dreams that change the world."},
		"isbn":    {"9781416556961"},
		"genre":   {f.fantasy.ID, f.scifi.ID},
	})
	require.Equal(t, http.StatusFound, w.Code)

	books, err := ts.store.ListBooksByGenre(context.Background(), f.scifi.ID)
	require.NoError(t, err)
	require.Len(t, books, 1)
	assert.ElementsMatch(t, []string{f.fantasy.ID, f.scifi.ID}, books[0].GenreIDs)
}

func TestCreateBook_RerenderKeepsSelections(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)

	w := ts.post(t, "/catalog/book/create", url.Values{
		"title":   {"<i>The Word for World Is Forest</i>"},
		"author":  {f.author.ID},
		"summary": {"   "},
		"isbn":    {"9780765324641"},
		"genre":   {f.scifi.ID},
	})
	require.Equal(t, http.StatusOK, w.Code)

	doc := parsePage(t, w)
	errs := formErrors(doc)
	assert.Equal(t, []string{"Summary must not be empty."}, errs["summary"])
	assert.Len(t, errs, 1)

	assert.Equal(t, "<i>The Word for World Is Forest</i>", fieldValue(doc, "title"))
	assert.Equal(t, f.author.ID, selectedOption(doc, "author"))
	assert.Equal(t, []string{f.scifi.ID}, checkedGenres(doc))

	count, err := ts.store.CountBooks(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestCreateBook_UnknownAuthor(t *testing.T) {
	ts := setupTestServer(t, Options{})
	seedBook(t, ts)

	w := ts.post(t, "/catalog/book/create", url.Values{
		"title":   {"Orphan"},
		"author":  {id.MustGenerate(id.PrefixAuthor)},
		"summary": {"No author."},
		"isbn":    {"0000000000"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, []string{"The selected author or genre no longer exists"}, formErrors(parsePage(t, w))["reference"])
}

func TestGetBook_NotFound(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.get(t, "/catalog/book/"+id.MustGenerate(id.PrefixBook))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Book not found", textOf(elementByID(parsePage(t, w), "message")))
}

func TestListBooks_EscapesOnce(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)

	w := ts.post(t, "/catalog/book/create", url.Values{
		"title":   {"Tom & Jerry"},
		"author":  {f.author.ID},
		"summary": {"Cat and mouse."},
		"isbn":    {"123"},
	})
	require.Equal(t, http.StatusFound, w.Code)

	list := ts.get(t, "/catalog/books")
	require.Equal(t, http.StatusOK, list.Code)
	assert.Equal(t, []string{"A Wizard of Earthsea", "Tom & Jerry"}, listLinks(parsePage(t, list)))
	assert.Contains(t, list.Body.String(), "Tom &amp; Jerry")
	assert.NotContains(t, list.Body.String(), "&amp;amp;")
}

func TestUpdateBook(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)

	form := ts.get(t, f.book.URL()+"/update")
	require.Equal(t, http.StatusOK, form.Code)
	doc := parsePage(t, form)
	assert.Equal(t, "A Wizard of Earthsea", fieldValue(doc, "title"))
	assert.Equal(t, f.author.ID, selectedOption(doc, "author"))
	assert.Equal(t, []string{f.fantasy.ID}, checkedGenres(doc))

	w := ts.post(t, f.book.URL()+"/update", url.Values{
		"title":   {"A Wizard of Earthsea"},
		"author":  {f.author.ID},
		"summary": {"Ged names his shadow."},
		"isbn":    {"9780547773742"},
		"genre":   {f.fantasy.ID, f.scifi.ID},
	})
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, f.book.URL(), w.Header().Get("Location"))

	b, err := ts.services.Book.GetBook(context.Background(), f.book.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ged names his shadow.", b.Summary)
	assert.ElementsMatch(t, []string{f.fantasy.ID, f.scifi.ID}, b.GenreIDs)
}

func TestDeleteBook(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)
	bi := createInstance(t, ts, f.book.ID, domain.StatusAvailable)

	blocked := ts.post(t, f.book.URL()+"/delete", nil)
	require.Equal(t, http.StatusOK, blocked.Code)
	doc := parsePage(t, blocked)
	require.NotNil(t, elementByID(doc, "blocked"))
	assert.Contains(t, blocked.Body.String(), bi.URL())

	require.Equal(t, http.StatusFound, ts.post(t, bi.URL()+"/delete", nil).Code)

	w := ts.post(t, f.book.URL()+"/delete", nil)
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/catalog/books", w.Header().Get("Location"))
	assert.Equal(t, http.StatusNotFound, ts.get(t, f.book.URL()).Code)
}
