package domain

import (
	"fmt"
	"time"
)

// Document holds the fields every stored catalog record carries.
type Document struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// InitTimestamps sets both CreatedAt and UpdatedAt to now.
// Call this when creating a new document.
func (d *Document) InitTimestamps() {
	now := time.Now()
	d.CreatedAt = now
	d.UpdatedAt = now
}

// Touch updates the UpdatedAt timestamp to the current time.
func (d *Document) Touch() {
	d.UpdatedAt = time.Now()
}

// FormatDate renders t the way catalog pages show dates: "October 14th, 2026".
// A nil or zero time renders as the empty string.
func FormatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	day := t.Day()
	return fmt.Sprintf("%s %d%s, %d", t.Month(), day, ordinalSuffix(day), t.Year())
}

// InputDate renders t for an <input type="date"> value.
func InputDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(time.DateOnly)
}

func ordinalSuffix(day int) string {
	if day%100 >= 11 && day%100 <= 13 {
		return "th"
	}
	switch day % 10 {
	case 1:
		return "st"
	case 2:
		return "nd"
	case 3:
		return "rd"
	default:
		return "th"
	}
}
