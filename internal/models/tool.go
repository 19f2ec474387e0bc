package models

import (
	"time"
)

// ToolStatus is the canonical lifecycle status of a tool. External string
// representations (UI labels, legacy values) are a presentation concern and
// must never be stored or compared against anything else.
type ToolStatus string

const (
	ToolStatusAvailable ToolStatus = "available"
	ToolStatusLent      ToolStatus = "lent"
	ToolStatusDefective ToolStatus = "defective"
)

// Valid reports whether s is one of the known tool statuses.
func (s ToolStatus) Valid() bool {
	switch s {
	case ToolStatusAvailable, ToolStatusLent, ToolStatusDefective:
		return true
	}
	return false
}

type Tool struct {
	Barcode     string     `json:"barcode" db:"barcode"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	Category    *string    `json:"category" db:"category"`
	Location    *string    `json:"location" db:"location"`
	Status      ToolStatus `json:"status" db:"status"`
	Deleted     bool       `json:"deleted" db:"deleted"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ModifiedAt  time.Time  `json:"modified_at" db:"modified_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// ToolWithBorrower is the tool list read model: the tool plus the worker
// holding it, when an open lending exists.
type ToolWithBorrower struct {
	Tool
	BorrowerBarcode *string    `json:"borrower_barcode,omitempty"`
	BorrowerName    *string    `json:"borrower_name,omitempty"`
	LentAt          *time.Time `json:"lent_at,omitempty"`
}
