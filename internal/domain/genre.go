package domain

// Genre is a category books can be filed under.
// Names are unique, compared exactly.
type Genre struct {
	Document
	Name string `json:"name" validate:"required,textmin=3,textmax=100"`
}

// URL returns the canonical path of the genre.
func (g *Genre) URL() string {
	return "/catalog/genre/" + g.ID
}
