package models

import (
	"time"

	"github.com/google/uuid"
)

// Lending is one check-out event in the lending ledger. A row with a null
// ReturnedAt is an open lending; the storage layer guarantees at most one
// open lending per tool barcode.
type Lending struct {
	ID            uuid.UUID  `json:"id" db:"id"`
	ToolBarcode   string     `json:"tool_barcode" db:"tool_barcode"`
	WorkerBarcode string     `json:"worker_barcode" db:"worker_barcode"`
	LentAt        time.Time  `json:"lent_at" db:"lent_at"`
	ReturnedAt    *time.Time `json:"returned_at,omitempty" db:"returned_at"`
}

// Open reports whether the tool is still checked out on this entry.
func (l *Lending) Open() bool {
	return l.ReturnedAt == nil
}
