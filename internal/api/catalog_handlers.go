package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/samber/lo"

	"github.com/locallibrary/catalog/internal/http/response"
	"github.com/locallibrary/catalog/internal/search"
	"github.com/locallibrary/catalog/internal/service"
)

// indexPage contains data for the catalog home page.
type indexPage struct {
	Title  string
	Counts *service.CatalogCounts
}

// handleIndex renders the home page with the record counts.
// GET /catalog
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) error {
	counts, err := s.services.Catalog.Counts(r.Context())
	if err != nil {
		return err
	}
	return s.views.Render(w, http.StatusOK, "index", indexPage{
		Title:  "Local Library Home",
		Counts: counts,
	})
}

// searchPage contains data for the search results page.
type searchPage struct {
	Title   string
	Query   string
	Types   []string // selected type filters
	Sort    string
	Enabled bool
	Result  *search.SearchResult
}

// handleSearch runs a catalog-wide query. An empty query renders the page
// without results. Unknown types are ignored and an unknown sort order falls
// back to relevance.
// GET /catalog/search?q=&type=&sort=
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) error {
	query := r.URL.Query()
	params := search.SearchParams{
		Query:  strings.TrimSpace(query.Get("q")),
		SortBy: search.SortRelevance,
	}
	for _, t := range query["type"] {
		if typ, ok := search.ParseDocType(t); ok && !lo.Contains(params.Types, typ) {
			params.Types = append(params.Types, typ)
		}
	}
	if sortBy := query.Get("sort"); lo.Contains(search.SortOrders, sortBy) {
		params.SortBy = sortBy
	}

	page := searchPage{
		Title:   "Search",
		Query:   params.Query,
		Types:   lo.Map(params.Types, func(t search.DocType, _ int) string { return string(t) }),
		Sort:    params.SortBy,
		Enabled: s.services.Search.Enabled(),
	}

	if params.Query != "" && page.Enabled {
		result, err := s.services.Search.Search(r.Context(), params)
		if err != nil {
			return err
		}
		page.Result = result
	}
	return s.views.Render(w, http.StatusOK, "search", page)
}

// ComponentHealth describes the health of a single component.
type ComponentHealth struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
	Message string `json:"message,omitempty"`
}

// HealthResponse contains health check data.
type HealthResponse struct {
	Status     string                     `json:"status"`
	Components map[string]ComponentHealth `json:"components"`
}

// handleHealthCheck reports store and search health.
// GET /health
func (s *Server) handleHealthCheck(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	resp := HealthResponse{
		Status: "healthy",
		Components: map[string]ComponentHealth{
			"database": s.checkDatabase(ctx),
			"search":   s.checkSearchIndex(),
		},
	}

	switch {
	case resp.Components["database"].Status != "healthy":
		resp.Status = "unhealthy"
	case resp.Components["search"].Status != "healthy":
		resp.Status = "degraded"
	}

	if resp.Status == "unhealthy" {
		response.JSON(w, http.StatusServiceUnavailable, resp, s.logger)
		return
	}
	response.Success(w, resp, s.logger)
}

func (s *Server) checkDatabase(ctx context.Context) ComponentHealth {
	start := time.Now()
	if _, err := s.services.Catalog.Counts(ctx); err != nil {
		return ComponentHealth{Status: "unhealthy", Message: err.Error()}
	}
	return ComponentHealth{Status: "healthy", Latency: time.Since(start).String()}
}

func (s *Server) checkSearchIndex() ComponentHealth {
	if !s.services.Search.Enabled() {
		return ComponentHealth{Status: "healthy", Message: "disabled"}
	}
	if _, err := s.services.Search.DocumentCount(); err != nil {
		return ComponentHealth{Status: "degraded", Message: err.Error()}
	}
	return ComponentHealth{Status: "healthy"}
}
