package domain

import (
	"strconv"
	"time"
)

// Author is a person credited with one or more books.
type Author struct {
	Document
	FirstName   string     `json:"first_name" validate:"required,textmax=100"`
	FamilyName  string     `json:"family_name" validate:"required,textmax=100"`
	DateOfBirth *time.Time `json:"date_of_birth,omitempty"`
	DateOfDeath *time.Time `json:"date_of_death,omitempty"`
}

// Name returns "Family, First", or the empty string when either part is missing.
func (a *Author) Name() string {
	if a.FirstName == "" || a.FamilyName == "" {
		return ""
	}
	return a.FamilyName + ", " + a.FirstName
}

// Lifespan returns the birth and death years, e.g. "1920 - 1992".
func (a *Author) Lifespan() string {
	if a.DateOfBirth == nil && a.DateOfDeath == nil {
		return ""
	}
	var s string
	if a.DateOfBirth != nil {
		s = strconv.Itoa(a.DateOfBirth.Year())
	}
	s += " - "
	if a.DateOfDeath != nil {
		s += strconv.Itoa(a.DateOfDeath.Year())
	}
	return s
}

// DateOfBirthFormatted returns the birth date for display.
func (a *Author) DateOfBirthFormatted() string { return FormatDate(a.DateOfBirth) }

// DateOfDeathFormatted returns the death date for display.
func (a *Author) DateOfDeathFormatted() string { return FormatDate(a.DateOfDeath) }

// URL returns the canonical path of the author.
func (a *Author) URL() string {
	return "/catalog/author/" + a.ID
}
