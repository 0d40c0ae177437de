// Package search provides full-text catalog search using Bleve.
// Books, authors and genres share one index with type discrimination.
package search

import (
	"strings"

	"github.com/locallibrary/catalog/internal/domain"
	"github.com/locallibrary/catalog/internal/validation"
)

// DocType represents the type of document in the unified index.
type DocType string

// Document types for the search index.
const (
	DocTypeBook   DocType = "book"
	DocTypeAuthor DocType = "author"
	DocTypeGenre  DocType = "genre"
)

// DocTypes lists every document type in display order.
var DocTypes = []DocType{DocTypeBook, DocTypeAuthor, DocTypeGenre}

// ParseDocType returns the document type named s.
func ParseDocType(s string) (DocType, bool) {
	for _, t := range DocTypes {
		if string(t) == s {
			return t, true
		}
	}
	return "", false
}

// SearchDocument is the unified document structure for the Bleve index.
//
// Stored catalog text is HTML-escaped; documents hold the decoded text so
// queries match what users type.
type SearchDocument struct {
	ID   string  `json:"id"`
	Type DocType `json:"type"`

	// Book: title, Author: "Family, First", Genre: name
	Name string `json:"name"`

	// Book-specific fields
	Summary string   `json:"summary,omitempty"`
	Author  string   `json:"author,omitempty"` // Denormalized for search
	ISBN    string   `json:"isbn,omitempty"`
	Genres  []string `json:"genres,omitempty"` // Denormalized genre names

	// Author-specific fields
	Lifespan string `json:"lifespan,omitempty"`

	// Canonical path, stored for rendering hits without a store read
	URL string `json:"url"`

	CreatedAt int64 `json:"created_at"` // Unix millis
	UpdatedAt int64 `json:"updated_at"` // Unix millis
}

// ToMap converts the document to a map with lowercase field names.
// This ensures field names match the Bleve index mapping.
func (d *SearchDocument) ToMap() map[string]any {
	m := map[string]any{
		"id":         d.ID,
		"type":       string(d.Type),
		"name":       d.Name,
		"sort_name":  strings.ToLower(d.Name),
		"url":        d.URL,
		"created_at": d.CreatedAt,
		"updated_at": d.UpdatedAt,
	}

	if d.Summary != "" {
		m["summary"] = d.Summary
	}
	if d.Author != "" {
		m["author"] = d.Author
	}
	if d.ISBN != "" {
		m["isbn"] = d.ISBN
	}
	if len(d.Genres) > 0 {
		m["genres"] = d.Genres
	}
	if d.Lifespan != "" {
		m["lifespan"] = d.Lifespan
	}

	return m
}

// BookToSearchDocument converts a Book to a SearchDocument.
// The author name and genre names are denormalized by the caller, as the
// search package doesn't depend on the store.
func BookToSearchDocument(book *domain.Book, author string, genres []string) *SearchDocument {
	names := make([]string, 0, len(genres))
	for _, g := range genres {
		names = append(names, validation.Unescape(g))
	}
	return &SearchDocument{
		ID:        book.ID,
		Type:      DocTypeBook,
		Name:      validation.Unescape(book.Title),
		Summary:   validation.Unescape(book.Summary),
		Author:    validation.Unescape(author),
		ISBN:      validation.Unescape(book.ISBN),
		Genres:    names,
		URL:       book.URL(),
		CreatedAt: book.CreatedAt.UnixMilli(),
		UpdatedAt: book.UpdatedAt.UnixMilli(),
	}
}

// AuthorToSearchDocument converts an Author to a SearchDocument.
func AuthorToSearchDocument(a *domain.Author) *SearchDocument {
	return &SearchDocument{
		ID:        a.ID,
		Type:      DocTypeAuthor,
		Name:      validation.Unescape(a.Name()),
		Lifespan:  a.Lifespan(),
		URL:       a.URL(),
		CreatedAt: a.CreatedAt.UnixMilli(),
		UpdatedAt: a.UpdatedAt.UnixMilli(),
	}
}

// GenreToSearchDocument converts a Genre to a SearchDocument.
func GenreToSearchDocument(g *domain.Genre) *SearchDocument {
	return &SearchDocument{
		ID:        g.ID,
		Type:      DocTypeGenre,
		Name:      validation.Unescape(g.Name),
		URL:       g.URL(),
		CreatedAt: g.CreatedAt.UnixMilli(),
		UpdatedAt: g.UpdatedAt.UnixMilli(),
	}
}
