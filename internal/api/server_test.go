package api

import (
	"context"
	"encoding/json/v2"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/html"

	"github.com/locallibrary/catalog/internal/api/view"
	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/http/response"
	"github.com/locallibrary/catalog/internal/ratelimit"
	"github.com/locallibrary/catalog/internal/search"
	"github.com/locallibrary/catalog/internal/service"
	"github.com/locallibrary/catalog/internal/store"
)

type testServer struct {
	server   *Server
	services *Services
	store    store.Store
}

// setupTestServer wires a server over a temporary Badger store, an in-memory
// search index and the embedded templates.
func setupTestServer(t *testing.T, opts Options) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	s, err := store.New(t.TempDir(), logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })

	return setupTestServerWithStore(t, s, opts)
}

func setupTestServerWithStore(t *testing.T, s store.Store, opts Options) *testServer {
	t.Helper()

	logger := slog.New(slog.DiscardHandler)

	index, err := search.NewSearchIndex(search.Options{Logger: logger})
	require.NoError(t, err)
	t.Cleanup(func() { _ = index.Close() })

	views, err := view.New(view.Options{Logger: logger})
	require.NoError(t, err)

	searchSvc := service.NewSearchService(index, s, logger)
	services := &Services{
		Catalog:      service.NewCatalogService(s, logger),
		Author:       service.NewAuthorService(s, searchSvc, logger),
		Book:         service.NewBookService(s, searchSvc, logger),
		Genre:        service.NewGenreService(s, searchSvc, logger),
		BookInstance: service.NewBookInstanceService(s, logger),
		Search:       searchSvc,
	}

	return &testServer{
		server:   NewServer(services, views, logger, opts),
		services: services,
		store:    s,
	}
}

func (ts *testServer) get(t *testing.T, path string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	ts.server.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func (ts *testServer) post(t *testing.T, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	ts.server.ServeHTTP(w, req)
	return w
}

// parsePage parses a rendered page.
func parsePage(t *testing.T, w *httptest.ResponseRecorder) *html.Node {
	t.Helper()
	doc, err := html.Parse(strings.NewReader(w.Body.String()))
	require.NoError(t, err)
	return doc
}

func findAll(n *html.Node, match func(*html.Node) bool) []*html.Node {
	var out []*html.Node
	if match(n) {
		out = append(out, n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		out = append(out, findAll(c, match)...)
	}
	return out
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func hasAttr(n *html.Node, key string) bool {
	for _, a := range n.Attr {
		if a.Key == key {
			return true
		}
	}
	return false
}

// textOf returns the decoded text under n with whitespace collapsed.
func textOf(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(sb.String()), " ")
}

func elementByID(doc *html.Node, id string) *html.Node {
	nodes := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && attr(n, "id") == id
	})
	if len(nodes) == 0 {
		return nil
	}
	return nodes[0]
}

func heading(doc *html.Node) string {
	nodes := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "h1"
	})
	if len(nodes) == 0 {
		return ""
	}
	return textOf(nodes[0])
}

// formErrors maps each field to the messages listed for it.
func formErrors(doc *html.Node) map[string][]string {
	out := map[string][]string{}
	for _, ul := range findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "ul" && attr(n, "class") == "errors"
	}) {
		for li := ul.FirstChild; li != nil; li = li.NextSibling {
			if li.Type == html.ElementNode && li.Data == "li" {
				out[attr(li, "data-field")] = append(out[attr(li, "data-field")], textOf(li))
			}
		}
	}
	return out
}

// fieldValue returns the submitted value an input or textarea was rendered with.
func fieldValue(doc *html.Node, name string) string {
	nodes := findAll(doc, func(n *html.Node) bool {
		return n.Type == html.ElementNode && (n.Data == "input" || n.Data == "textarea") && attr(n, "name") == name
	})
	if len(nodes) == 0 {
		return ""
	}
	if nodes[0].Data == "textarea" {
		return textOf(nodes[0])
	}
	return attr(nodes[0], "value")
}

// listLinks returns the text of every link in the #list element.
func listLinks(doc *html.Node) []string {
	list := elementByID(doc, "list")
	if list == nil {
		return nil
	}
	var out []string
	for _, a := range findAll(list, func(n *html.Node) bool {
		return n.Type == html.ElementNode && n.Data == "a"
	}) {
		out = append(out, textOf(a))
	}
	return out
}

func TestRoot_RedirectsToCatalog(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.get(t, "/")
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/catalog", w.Header().Get("Location"))
}

func TestHealthCheck_Success(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.get(t, "/health")
	require.Equal(t, http.StatusOK, w.Code)

	var env struct {
		Success bool           `json:"success"`
		Data    HealthResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.True(t, env.Success)
	assert.Equal(t, "healthy", env.Data.Status)
	assert.Equal(t, "healthy", env.Data.Components["database"].Status)
	assert.Equal(t, "healthy", env.Data.Components["search"].Status)
}

// failingStore fails every read the index page and the author list make.
type failingStore struct {
	store.Store
}

var errDiskOnFire = errors.New("disk on fire")

func (failingStore) ListAuthors(context.Context) ([]*domain.Author, error) {
	return nil, errDiskOnFire
}

func (failingStore) CountAuthors(context.Context) (int, error) { return 0, errDiskOnFire }
func (failingStore) CountBooks(context.Context) (int, error)   { return 0, errDiskOnFire }
func (failingStore) CountGenres(context.Context) (int, error)  { return 0, errDiskOnFire }
func (failingStore) CountBookInstances(context.Context) (int, error) {
	return 0, errDiskOnFire
}

func (failingStore) CountBookInstancesByStatus(context.Context, domain.Status) (int, error) {
	return 0, errDiskOnFire
}

func TestHealthCheck_DatabaseDown(t *testing.T) {
	ts := setupTestServerWithStore(t, failingStore{}, Options{})

	w := ts.get(t, "/health")
	require.Equal(t, http.StatusServiceUnavailable, w.Code)

	var env response.Envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	assert.False(t, env.Success)
}

func TestNotFound_UnknownPath(t *testing.T) {
	ts := setupTestServer(t, Options{})

	w := ts.get(t, "/catalog/nowhere")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Page not found", textOf(elementByID(parsePage(t, w), "message")))
}

func TestStoreFailure_RendersGenericErrorPage(t *testing.T) {
	t.Run("production hides detail", func(t *testing.T) {
		ts := setupTestServerWithStore(t, failingStore{}, Options{})

		w := ts.get(t, "/catalog/authors")
		require.Equal(t, http.StatusInternalServerError, w.Code)

		doc := parsePage(t, w)
		assert.Equal(t, "Something went wrong.", textOf(elementByID(doc, "message")))
		assert.Nil(t, elementByID(doc, "detail"))
		assert.NotContains(t, w.Body.String(), "disk on fire")
	})

	t.Run("development shows detail", func(t *testing.T) {
		ts := setupTestServerWithStore(t, failingStore{}, Options{Development: true})

		w := ts.get(t, "/catalog/authors")
		require.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Contains(t, textOf(elementByID(parsePage(t, w), "detail")), "disk on fire")
	})
}

func TestIndex_ShowsCounts(t *testing.T) {
	ts := setupTestServer(t, Options{})
	f := seedBook(t, ts)
	createInstance(t, ts, f.book.ID, domain.StatusAvailable)
	createInstance(t, ts, f.book.ID, domain.StatusLoaned)

	w := ts.get(t, "/catalog")
	require.Equal(t, http.StatusOK, w.Code)

	doc := parsePage(t, w)
	assert.Equal(t, "1", textOf(elementByID(doc, "count-books")))
	assert.Equal(t, "2", textOf(elementByID(doc, "count-copies")))
	assert.Equal(t, "1", textOf(elementByID(doc, "count-available")))
	assert.Equal(t, "1", textOf(elementByID(doc, "count-authors")))
	assert.Equal(t, "2", textOf(elementByID(doc, "count-genres")))
}

func TestSearch(t *testing.T) {
	ts := setupTestServer(t, Options{})
	seedBook(t, ts)

	t.Run("empty query renders the form only", func(t *testing.T) {
		w := ts.get(t, "/catalog/search")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Nil(t, elementByID(parsePage(t, w), "results"))
	})

	t.Run("matches books by title", func(t *testing.T) {
		w := ts.get(t, "/catalog/search?q=earthsea")
		require.Equal(t, http.StatusOK, w.Code)

		results := elementByID(parsePage(t, w), "results")
		require.NotNil(t, results)
		assert.Contains(t, textOf(results), "A Wizard of Earthsea")
	})

	t.Run("filters by type and keeps the chosen options", func(t *testing.T) {
		w := ts.get(t, "/catalog/search?q=leguin&type=author&type=copy&sort=name")
		require.Equal(t, http.StatusOK, w.Code)

		doc := parsePage(t, w)
		results := textOf(elementByID(doc, "results"))
		assert.Contains(t, results, "LeGuin, Ursula")
		assert.NotContains(t, results, "Earthsea")

		assert.Equal(t, "name", selectedOption(doc, "sort"))
		var checked []string
		for _, n := range findAll(doc, func(n *html.Node) bool {
			return n.Type == html.ElementNode && n.Data == "input" && attr(n, "name") == "type" && hasAttr(n, "checked")
		}) {
			checked = append(checked, attr(n, "value"))
		}
		assert.Equal(t, []string{"author"}, checked)
	})

	t.Run("unknown sort falls back to relevance", func(t *testing.T) {
		w := ts.get(t, "/catalog/search?q=earthsea&sort=random")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "relevance", selectedOption(parsePage(t, w), "sort"))
	})
}

func TestWriteRateLimit(t *testing.T) {
	limiter := ratelimit.New(0.001, 1)
	t.Cleanup(limiter.Stop)
	ts := setupTestServer(t, Options{WriteLimiter: limiter})

	w := ts.post(t, "/catalog/genre/create", url.Values{"name": {"Poetry"}})
	assert.Equal(t, http.StatusFound, w.Code)

	w = ts.post(t, "/catalog/genre/create", url.Values{"name": {"Drama"}})
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Contains(t, textOf(elementByID(parsePage(t, w), "message")), "Too many requests")

	// Reads are never limited.
	assert.Equal(t, http.StatusOK, ts.get(t, "/catalog/genres").Code)
}
