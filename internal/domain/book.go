// Package domain contains the catalog documents and their derived display fields.
package domain

// Book is a title held by the library. Physical copies are BookInstances.
type Book struct {
	Document
	Title    string   `json:"title" validate:"required"`
	AuthorID string   `json:"author" validate:"required"`
	Summary  string   `json:"summary" validate:"required"`
	ISBN     string   `json:"isbn" validate:"required"`
	GenreIDs []string `json:"genre,omitempty"`
}

// URL returns the canonical path of the book.
func (b *Book) URL() string {
	return "/catalog/book/" + b.ID
}

// HasGenre reports whether the book is filed under genreID.
func (b *Book) HasGenre(genreID string) bool {
	for _, g := range b.GenreIDs {
		if g == genreID {
			return true
		}
	}
	return false
}
