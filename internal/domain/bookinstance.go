package domain

import "time"

// Status is the circulation state of a BookInstance.
type Status string

// Circulation states.
const (
	StatusAvailable   Status = "available"
	StatusMaintenance Status = "maintenance"
	StatusLoaned      Status = "loaned"
	StatusReserved    Status = "reserved"
)

// DefaultStatus is assigned to copies created without a status.
const DefaultStatus = StatusMaintenance

// Statuses lists every status in display order.
var Statuses = []Status{StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved}

// String returns the stored value.
func (s Status) String() string {
	return string(s)
}

// Label returns the human-readable status.
func (s Status) Label() string {
	switch s {
	case StatusAvailable:
		return "Available"
	case StatusMaintenance:
		return "Maintenance"
	case StatusLoaned:
		return "Loaned"
	case StatusReserved:
		return "Reserved"
	default:
		return string(s)
	}
}

// IsValid reports whether s is a recognized status.
func (s Status) IsValid() bool {
	switch s {
	case StatusAvailable, StatusMaintenance, StatusLoaned, StatusReserved:
		return true
	default:
		return false
	}
}

// BookInstance is a physical copy of a Book.
type BookInstance struct {
	Document
	BookID  string    `json:"book" validate:"required"`
	Imprint string    `json:"imprint" validate:"required"`
	Status  Status    `json:"status" validate:"required,oneof=available maintenance loaned reserved"`
	DueBack time.Time `json:"due_back"`
}

// NewBookInstance returns a copy with the schema defaults applied.
func NewBookInstance(bookID, imprint string) *BookInstance {
	return &BookInstance{
		BookID:  bookID,
		Imprint: imprint,
		Status:  DefaultStatus,
		DueBack: time.Now(),
	}
}

// ApplyDefaults fills the status and due date when they were left empty.
func (bi *BookInstance) ApplyDefaults() {
	if bi.Status == "" {
		bi.Status = DefaultStatus
	}
	if bi.DueBack.IsZero() {
		bi.DueBack = time.Now()
	}
}

// DueBackFormatted returns the due date for display.
func (bi *BookInstance) DueBackFormatted() string {
	return FormatDate(&bi.DueBack)
}

// URL returns the canonical path of the copy.
func (bi *BookInstance) URL() string {
	return "/catalog/bookinstance/" + bi.ID
}
