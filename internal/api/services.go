package api

import "github.com/locallibrary/catalog/internal/service"

// Services groups the catalog services used by the HTTP server.
type Services struct {
	Catalog      *service.CatalogService
	Author       *service.AuthorService
	Book         *service.BookService
	Genre        *service.GenreService
	BookInstance *service.BookInstanceService
	Search       *service.SearchService
}
