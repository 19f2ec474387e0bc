package models

import (
	"time"

	"github.com/google/uuid"
)

// ConsumableUsage is one withdrawal in the consumption ledger. Entries are
// append-only and are written in the same transaction as the stock decrement
// they account for. WorkerBarcode is nil for administrative withdrawals.
type ConsumableUsage struct {
	ID                uuid.UUID `json:"id" db:"id"`
	ConsumableBarcode string    `json:"consumable_barcode" db:"consumable_barcode"`
	WorkerBarcode     *string   `json:"worker_barcode,omitempty" db:"worker_barcode"`
	Quantity          int       `json:"quantity" db:"quantity"`
	UsedAt            time.Time `json:"used_at" db:"used_at"`
}
