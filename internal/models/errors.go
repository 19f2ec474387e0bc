package models

import (
	"errors"
	"fmt"
)

// Domain errors returned by the registries and the inventory core service.
// Callers branch on these with errors.Is / errors.As; raw storage errors never
// cross the service boundary.
var (
	ErrToolNotFound       = errors.New("tool not found")
	ErrConsumableNotFound = errors.New("consumable not found")
	ErrWorkerNotFound     = errors.New("worker not found")
	ErrDuplicateBarcode   = errors.New("barcode already in use")
	ErrNotCurrentlyLent   = errors.New("tool is not currently lent")
	ErrToolDefective      = errors.New("tool is marked defective")
	ErrToolCurrentlyLent  = errors.New("tool is currently lent")
	ErrInvalidQuantity    = errors.New("quantity must be a positive integer")
	ErrHasOpenLending     = errors.New("record has an open lending")
	ErrBarcodeInUse       = errors.New("new barcode collides with an active record")
	ErrSnapshotNotFound   = errors.New("snapshot not found")
)

// AlreadyLentError is returned when a lend request targets a tool that
// already has an open lending. It carries the current holder so callers can
// surface who has the tool.
type AlreadyLentError struct {
	ToolBarcode   string
	HolderBarcode string
}

func (e *AlreadyLentError) Error() string {
	return fmt.Sprintf("tool %s is already lent to worker %s", e.ToolBarcode, e.HolderBarcode)
}

// WrongHolderError is returned when a return names an expected holder that
// does not match the open lending.
type WrongHolderError struct {
	ToolBarcode   string
	ActualHolder  string
	ClaimedHolder string
}

func (e *WrongHolderError) Error() string {
	return fmt.Sprintf("tool %s is held by worker %s, not %s", e.ToolBarcode, e.ActualHolder, e.ClaimedHolder)
}

// InsufficientStockError is returned when a withdrawal would drive a
// consumable's quantity below zero. Available is the stock at the time the
// conditional decrement failed.
type InsufficientStockError struct {
	ConsumableBarcode string
	Requested         int
	Available         int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, available %d", e.ConsumableBarcode, e.Requested, e.Available)
}
