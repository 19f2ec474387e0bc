package models

import (
	"time"
)

// StockStatus is derived from quantity and the minimum threshold. It is
// computed on read and never persisted.
type StockStatus string

const (
	StockStatusCritical   StockStatus = "critical"
	StockStatusLow        StockStatus = "low"
	StockStatusSufficient StockStatus = "sufficient"
)

type Consumable struct {
	Barcode     string     `json:"barcode" db:"barcode"`
	Name        string     `json:"name" db:"name"`
	Description *string    `json:"description" db:"description"`
	Category    *string    `json:"category" db:"category"`
	Location    *string    `json:"location" db:"location"`
	Quantity    int        `json:"quantity" db:"quantity"`
	MinQuantity int        `json:"min_quantity" db:"min_quantity"`
	Deleted     bool       `json:"deleted" db:"deleted"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	ModifiedAt  time.Time  `json:"modified_at" db:"modified_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty" db:"deleted_at"`
}

// StockStatus classifies the current quantity against the minimum threshold:
// critical at or below the minimum, low at or below twice the minimum,
// sufficient above that.
func (c *Consumable) StockStatus() StockStatus {
	switch {
	case c.Quantity <= c.MinQuantity:
		return StockStatusCritical
	case c.Quantity <= 2*c.MinQuantity:
		return StockStatusLow
	default:
		return StockStatusSufficient
	}
}
