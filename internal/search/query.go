package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Sort orders for search results.
const (
	SortRelevance = "relevance"
	SortName      = "name"
	SortRecent    = "recent"
)

// SortOrders lists the accepted sort orders, default first.
var SortOrders = []string{SortRelevance, SortName, SortRecent}

// SearchParams configures a search query.
type SearchParams struct {
	Query string    // User's search query
	Types []DocType // Document types to include (empty = all)
	Limit int

	// SortRelevance (default), SortName or SortRecent
	SortBy string
}

// DefaultSearchParams returns sensible defaults.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:  25,
		SortBy: SortRelevance,
	}
}

// SearchResult represents the search results.
type SearchResult struct {
	Query  string       `json:"query"`
	Total  uint64       `json:"total"`
	TookMs int64        `json:"took_ms"`
	Hits   []SearchHit  `json:"hits"`
	Types  []FacetCount `json:"types,omitempty"`
}

// SearchHit represents a single search result.
type SearchHit struct {
	ID       string  `json:"id"`
	Type     DocType `json:"type"`
	Score    float64 `json:"score"`
	Name     string  `json:"name"`
	Author   string  `json:"author,omitempty"`
	ISBN     string  `json:"isbn,omitempty"`
	Lifespan string  `json:"lifespan,omitempty"`
	URL      string  `json:"url"`
}

// FacetCount represents a facet value and its count.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search executes a search query. An empty query matches nothing.
func (s *SearchIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	result := &SearchResult{Query: params.Query, Hits: []SearchHit{}}
	if strings.TrimSpace(params.Query) == "" {
		return result, nil
	}
	if params.Limit <= 0 {
		params.Limit = DefaultSearchParams().Limit
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	req := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, 0, false)
	addSorting(req, params.SortBy)
	req.AddFacet("type", bleve.NewFacetRequest("type", 3))
	req.Fields = []string{"type", "name", "author", "isbn", "lifespan", "url"}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result.Total = res.Total
	result.TookMs = res.Took.Milliseconds()
	for _, hit := range res.Hits {
		result.Hits = append(result.Hits, SearchHit{
			ID:       hit.ID,
			Score:    hit.Score,
			Type:     DocType(stringField(hit.Fields, "type")),
			Name:     stringField(hit.Fields, "name"),
			Author:   stringField(hit.Fields, "author"),
			ISBN:     stringField(hit.Fields, "isbn"),
			Lifespan: stringField(hit.Fields, "lifespan"),
			URL:      stringField(hit.Fields, "url"),
		})
	}

	if facet, ok := res.Facets["type"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			result.Types = append(result.Types, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

func stringField(fields map[string]any, name string) string {
	v, _ := fields[name].(string)
	return v
}

// buildSearchQuery constructs the Bleve query from params.
//
// Names are boosted over summaries and denormalized fields, so a search for
// an author's name ranks the author above each of their books.
func buildSearchQuery(params SearchParams) query.Query {
	q := params.Query

	nameMatch := bleve.NewMatchQuery(q)
	nameMatch.SetField("name")
	nameMatch.SetBoost(3.0)

	authorMatch := bleve.NewMatchQuery(q)
	authorMatch.SetField("author")
	authorMatch.SetBoost(1.5)

	genreMatch := bleve.NewMatchQuery(q)
	genreMatch.SetField("genres")

	summaryMatch := bleve.NewMatchQuery(q)
	summaryMatch.SetField("summary")
	summaryMatch.SetBoost(0.5)

	isbnMatch := bleve.NewTermQuery(q)
	isbnMatch.SetField("isbn")
	isbnMatch.SetBoost(3.0)

	// Typo tolerance on names
	fuzzy := bleve.NewFuzzyQuery(strings.ToLower(q))
	fuzzy.SetFuzziness(1)
	fuzzy.SetField("name")
	fuzzy.SetBoost(0.8)

	textQueries := []query.Query{nameMatch, authorMatch, genreMatch, summaryMatch, isbnMatch, fuzzy}

	// Prefix query for partial words (minimum 2 chars)
	if len(q) >= 2 && !strings.ContainsAny(q, " \t") {
		prefix := bleve.NewPrefixQuery(strings.ToLower(q))
		prefix.SetField("name")
		prefix.SetBoost(0.5)
		textQueries = append(textQueries, prefix)
	}

	text := bleve.NewDisjunctionQuery(textQueries...)
	if len(params.Types) == 0 {
		return text
	}

	typeQueries := make([]query.Query, len(params.Types))
	for i, t := range params.Types {
		tq := bleve.NewTermQuery(string(t))
		tq.SetField("type")
		typeQueries[i] = tq
	}
	return bleve.NewConjunctionQuery(text, bleve.NewDisjunctionQuery(typeQueries...))
}

// addSorting configures sort order.
func addSorting(req *bleve.SearchRequest, sortBy string) {
	switch sortBy {
	case SortName:
		req.SortBy([]string{"sort_name", "-_score"})
	case SortRecent:
		req.SortBy([]string{"-created_at", "-_score"})
	default:
		req.SortBy([]string{"-_score"})
	}
}
