// Package dto holds catalog documents with their references expanded for
// rendering.
package dto

import "github.com/locallibrary/catalog/internal/domain"

// Book is a book with its author and genres populated.
// Author is nil when the referenced author is missing.
type Book struct {
	*domain.Book
	Author *domain.Author
	Genres []*domain.Genre
}

// AuthorName returns the populated author's name, or "".
func (b *Book) AuthorName() string {
	if b.Author == nil {
		return ""
	}
	return b.Author.Name()
}

// BookInstance is a copy with its book populated.
// Book is nil when the referenced book is missing.
type BookInstance struct {
	*domain.BookInstance
	Book *domain.Book
}

// BookTitle returns the populated book's title, or "".
func (bi *BookInstance) BookTitle() string {
	if bi.Book == nil {
		return ""
	}
	return bi.Book.Title
}
