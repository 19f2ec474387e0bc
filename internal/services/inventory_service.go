package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"toolkeeper/internal/caching"
	"toolkeeper/internal/models"
	"toolkeeper/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// InventoryService is the single entry point for every mutation of lending
// and consumption state. Each operation runs in exactly one transaction;
// registries and ledgers are never written to directly by callers.
type InventoryService interface {
	LendTool(ctx context.Context, toolBarcode, workerBarcode string) (*models.Lending, error)
	ReturnTool(ctx context.Context, toolBarcode string, expectedWorkerBarcode *string) (*models.Lending, error)
	MarkDefective(ctx context.Context, toolBarcode string) (*models.Tool, error)
	MarkAvailable(ctx context.Context, toolBarcode string) (*models.Tool, error)
	WithdrawConsumable(ctx context.Context, consumableBarcode string, workerBarcode *string, quantity int) (*models.ConsumableUsage, error)
	UpdateBarcode(ctx context.Context, oldBarcode, newBarcode string, itemType models.ItemType) error
}

type inventoryService struct {
	db             repositories.Pool
	toolRepo       repositories.ToolRepository
	consumableRepo repositories.ConsumableRepository
	workerRepo     repositories.WorkerRepository
	lendingRepo    repositories.LendingRepository
	usageRepo      repositories.UsageRepository
	cacheSvc       caching.CacheService
}

func NewInventoryService(db repositories.Pool, toolRepo repositories.ToolRepository,
	consumableRepo repositories.ConsumableRepository, workerRepo repositories.WorkerRepository,
	lendingRepo repositories.LendingRepository, usageRepo repositories.UsageRepository,
	cacheSvc caching.CacheService) InventoryService {
	return &inventoryService{
		db:             db,
		toolRepo:       toolRepo,
		consumableRepo: consumableRepo,
		workerRepo:     workerRepo,
		lendingRepo:    lendingRepo,
		usageRepo:      usageRepo,
		cacheSvc:       cacheSvc,
	}
}

func (s *inventoryService) LendTool(ctx context.Context, toolBarcode, workerBarcode string) (*models.Lending, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin lend transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tools := s.toolRepo.WithTx(tx)
	tool, err := tools.GetByBarcodeForUpdate(ctx, toolBarcode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrToolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load tool %s: %w", toolBarcode, err)
	}
	if tool.Status == models.ToolStatusDefective {
		return nil, models.ErrToolDefective
	}

	lendings := s.lendingRepo.WithTx(tx)
	if open, err := lendings.GetOpen(ctx, toolBarcode); err != nil {
		return nil, fmt.Errorf("check open lending for %s: %w", toolBarcode, err)
	} else if open != nil {
		return nil, &models.AlreadyLentError{ToolBarcode: toolBarcode, HolderBarcode: open.WorkerBarcode}
	}

	workers := s.workerRepo.WithTx(tx)
	if _, err := workers.GetByBarcode(ctx, workerBarcode); errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrWorkerNotFound
	} else if err != nil {
		return nil, fmt.Errorf("load worker %s: %w", workerBarcode, err)
	}

	lending := &models.Lending{
		ID:            uuid.New(),
		ToolBarcode:   toolBarcode,
		WorkerBarcode: workerBarcode,
		LentAt:        time.Now().UTC(),
	}
	if err := lendings.Create(ctx, lending); err != nil {
		// The partial unique index is the real guard; the in-transaction
		// check above lost only if another lend committed concurrently.
		if repositories.IsUniqueViolation(err, "lendings_one_open_per_tool") {
			holder := ""
			if open, lookupErr := s.lendingRepo.GetOpen(ctx, toolBarcode); lookupErr == nil && open != nil {
				holder = open.WorkerBarcode
			}
			return nil, &models.AlreadyLentError{ToolBarcode: toolBarcode, HolderBarcode: holder}
		}
		return nil, fmt.Errorf("create lending for %s: %w", toolBarcode, err)
	}

	if err := tools.UpdateStatus(ctx, toolBarcode, models.ToolStatusLent); err != nil {
		return nil, fmt.Errorf("update tool status for %s: %w", toolBarcode, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit lend transaction: %w", err)
	}

	s.invalidateToolCache(ctx, toolBarcode)
	return lending, nil
}

func (s *inventoryService) ReturnTool(ctx context.Context, toolBarcode string, expectedWorkerBarcode *string) (*models.Lending, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin return transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tools := s.toolRepo.WithTx(tx)
	tool, err := tools.GetByBarcodeForUpdate(ctx, toolBarcode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrToolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load tool %s: %w", toolBarcode, err)
	}

	lendings := s.lendingRepo.WithTx(tx)
	open, err := lendings.GetOpen(ctx, toolBarcode)
	if err != nil {
		return nil, fmt.Errorf("check open lending for %s: %w", toolBarcode, err)
	}
	if open == nil {
		return nil, models.ErrNotCurrentlyLent
	}
	if expectedWorkerBarcode != nil && *expectedWorkerBarcode != open.WorkerBarcode {
		return nil, &models.WrongHolderError{
			ToolBarcode:   toolBarcode,
			ActualHolder:  open.WorkerBarcode,
			ClaimedHolder: *expectedWorkerBarcode,
		}
	}

	returnedAt := time.Now().UTC()
	if err := lendings.MarkReturned(ctx, open.ID, returnedAt); err != nil {
		return nil, fmt.Errorf("close lending %s: %w", open.ID, err)
	}

	// A defect flag set while the tool was out survives the return.
	if tool.Status != models.ToolStatusDefective {
		if err := tools.UpdateStatus(ctx, toolBarcode, models.ToolStatusAvailable); err != nil {
			return nil, fmt.Errorf("update tool status for %s: %w", toolBarcode, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit return transaction: %w", err)
	}

	s.invalidateToolCache(ctx, toolBarcode)
	open.ReturnedAt = &returnedAt
	return open, nil
}

func (s *inventoryService) MarkDefective(ctx context.Context, toolBarcode string) (*models.Tool, error) {
	return s.setToolCondition(ctx, toolBarcode, models.ToolStatusDefective)
}

func (s *inventoryService) MarkAvailable(ctx context.Context, toolBarcode string) (*models.Tool, error) {
	return s.setToolCondition(ctx, toolBarcode, models.ToolStatusAvailable)
}

// setToolCondition flips a tool between available and defective. A tool with
// an open lending must be returned first so the holder is never silently
// erased.
func (s *inventoryService) setToolCondition(ctx context.Context, toolBarcode string, status models.ToolStatus) (*models.Tool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin status transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tools := s.toolRepo.WithTx(tx)
	tool, err := tools.GetByBarcodeForUpdate(ctx, toolBarcode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrToolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load tool %s: %w", toolBarcode, err)
	}

	lendings := s.lendingRepo.WithTx(tx)
	open, err := lendings.GetOpen(ctx, toolBarcode)
	if err != nil {
		return nil, fmt.Errorf("check open lending for %s: %w", toolBarcode, err)
	}
	if open != nil {
		return nil, models.ErrToolCurrentlyLent
	}

	if err := tools.UpdateStatus(ctx, toolBarcode, status); err != nil {
		return nil, fmt.Errorf("update tool status for %s: %w", toolBarcode, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit status transaction: %w", err)
	}

	s.invalidateToolCache(ctx, toolBarcode)
	tool.Status = status
	return tool, nil
}

func (s *inventoryService) WithdrawConsumable(ctx context.Context, consumableBarcode string, workerBarcode *string, quantity int) (*models.ConsumableUsage, error) {
	if quantity <= 0 {
		return nil, models.ErrInvalidQuantity
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin withdraw transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	// Lock the row so the insufficient-stock re-read below sees a settled
	// quantity; the conditional decrement stays the actual guard.
	consumables := s.consumableRepo.WithTx(tx)
	consumable, err := consumables.GetByBarcodeForUpdate(ctx, consumableBarcode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrConsumableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load consumable %s: %w", consumableBarcode, err)
	}

	if workerBarcode != nil {
		workers := s.workerRepo.WithTx(tx)
		if _, err := workers.GetByBarcode(ctx, *workerBarcode); errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrWorkerNotFound
		} else if err != nil {
			return nil, fmt.Errorf("load worker %s: %w", *workerBarcode, err)
		}
	}

	// The WHERE clause re-asserts quantity >= requested, so the check and
	// the write are one statement and concurrent withdrawals cannot both
	// pass it.
	ok, err := consumables.DecrementQuantity(ctx, consumableBarcode, quantity)
	if err != nil {
		return nil, fmt.Errorf("decrement stock for %s: %w", consumableBarcode, err)
	}
	if !ok {
		available := consumable.Quantity
		if current, readErr := consumables.GetByBarcode(ctx, consumableBarcode); readErr == nil {
			available = current.Quantity
		}
		return nil, &models.InsufficientStockError{
			ConsumableBarcode: consumableBarcode,
			Requested:         quantity,
			Available:         available,
		}
	}

	usage := &models.ConsumableUsage{
		ID:                uuid.New(),
		ConsumableBarcode: consumableBarcode,
		WorkerBarcode:     workerBarcode,
		Quantity:          quantity,
		UsedAt:            time.Now().UTC(),
	}
	usages := s.usageRepo.WithTx(tx)
	if err := usages.Create(ctx, usage); err != nil {
		return nil, fmt.Errorf("record usage for %s: %w", consumableBarcode, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit withdraw transaction: %w", err)
	}

	s.invalidateConsumableCache(ctx, consumableBarcode)
	return usage, nil
}

func (s *inventoryService) UpdateBarcode(ctx context.Context, oldBarcode, newBarcode string, itemType models.ItemType) error {
	if !itemType.Valid() {
		return fmt.Errorf("unknown item type %q", itemType)
	}
	if newBarcode == "" || newBarcode == oldBarcode {
		return models.ErrBarcodeInUse
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin rename transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	tools := s.toolRepo.WithTx(tx)
	consumables := s.consumableRepo.WithTx(tx)
	workers := s.workerRepo.WithTx(tx)

	switch itemType {
	case models.ItemTypeTool, models.ItemTypeConsumable:
		for _, check := range []func(context.Context, string) (bool, error){tools.ExistsActive, consumables.ExistsActive} {
			taken, err := check(ctx, newBarcode)
			if err != nil {
				return fmt.Errorf("check barcode %s: %w", newBarcode, err)
			}
			if taken {
				return models.ErrBarcodeInUse
			}
		}
	case models.ItemTypeWorker:
		taken, err := workers.ExistsActive(ctx, newBarcode)
		if err != nil {
			return fmt.Errorf("check barcode %s: %w", newBarcode, err)
		}
		if taken {
			return models.ErrBarcodeInUse
		}
	}

	// The primary key rewrite cascades to ledger rows via the foreign keys,
	// all inside this transaction.
	switch itemType {
	case models.ItemTypeTool:
		exists, err := tools.ExistsActive(ctx, oldBarcode)
		if err != nil {
			return fmt.Errorf("check tool %s: %w", oldBarcode, err)
		}
		if !exists {
			return models.ErrToolNotFound
		}
		err = tools.UpdateBarcode(ctx, oldBarcode, newBarcode)
		if repositories.IsUniqueViolation(err, "") {
			return models.ErrBarcodeInUse
		}
		if err != nil {
			return fmt.Errorf("rename tool %s: %w", oldBarcode, err)
		}
	case models.ItemTypeConsumable:
		exists, err := consumables.ExistsActive(ctx, oldBarcode)
		if err != nil {
			return fmt.Errorf("check consumable %s: %w", oldBarcode, err)
		}
		if !exists {
			return models.ErrConsumableNotFound
		}
		err = consumables.UpdateBarcode(ctx, oldBarcode, newBarcode)
		if repositories.IsUniqueViolation(err, "") {
			return models.ErrBarcodeInUse
		}
		if err != nil {
			return fmt.Errorf("rename consumable %s: %w", oldBarcode, err)
		}
	case models.ItemTypeWorker:
		exists, err := workers.ExistsActive(ctx, oldBarcode)
		if err != nil {
			return fmt.Errorf("check worker %s: %w", oldBarcode, err)
		}
		if !exists {
			return models.ErrWorkerNotFound
		}
		err = workers.UpdateBarcode(ctx, oldBarcode, newBarcode)
		if repositories.IsUniqueViolation(err, "") {
			return models.ErrBarcodeInUse
		}
		if err != nil {
			return fmt.Errorf("rename worker %s: %w", oldBarcode, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit rename transaction: %w", err)
	}

	switch itemType {
	case models.ItemTypeTool:
		s.invalidateToolCache(ctx, oldBarcode)
	case models.ItemTypeConsumable:
		s.invalidateConsumableCache(ctx, oldBarcode)
	case models.ItemTypeWorker:
		if cacheErr := s.cacheSvc.DeleteWorker(ctx, oldBarcode); cacheErr != nil {
			log.Printf("Failed to invalidate cache for worker %s: %v", oldBarcode, cacheErr)
		}
	}
	return nil
}

func (s *inventoryService) invalidateToolCache(ctx context.Context, barcode string) {
	if cacheErr := s.cacheSvc.DeleteTool(ctx, barcode); cacheErr != nil {
		log.Printf("Failed to invalidate cache for tool %s: %v", barcode, cacheErr)
	}
}

func (s *inventoryService) invalidateConsumableCache(ctx context.Context, barcode string) {
	if cacheErr := s.cacheSvc.DeleteConsumable(ctx, barcode); cacheErr != nil {
		log.Printf("Failed to invalidate cache for consumable %s: %v", barcode, cacheErr)
	}
}
