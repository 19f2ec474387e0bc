package services

import (
	"context"
	"errors"
	"fmt"
	"log"

	"toolkeeper/internal/caching"
	"toolkeeper/internal/models"
	"toolkeeper/internal/repositories"

	"github.com/jackc/pgx/v5"
)

type ConsumableService interface {
	CreateConsumable(ctx context.Context, consumable *models.Consumable) error
	GetConsumable(ctx context.Context, barcode string) (*models.Consumable, error)
	ListConsumables(ctx context.Context, limit, offset int) ([]*models.Consumable, error)
	ListBelowMinimum(ctx context.Context) ([]*models.Consumable, error)
	UpdateConsumable(ctx context.Context, consumable *models.Consumable) error
	RestockConsumable(ctx context.Context, barcode string, quantity int) error
	DeleteConsumable(ctx context.Context, barcode string) error
	RestoreConsumable(ctx context.Context, barcode string) error
	ListTrashedConsumables(ctx context.Context, limit, offset int) ([]*models.Consumable, error)
	GetUsageHistory(ctx context.Context, barcode string, limit, offset int) ([]*models.ConsumableUsage, error)
}

type consumableService struct {
	consumableRepo repositories.ConsumableRepository
	usageRepo      repositories.UsageRepository
	cacheSvc       caching.CacheService
}

func NewConsumableService(consumableRepo repositories.ConsumableRepository, usageRepo repositories.UsageRepository, cacheSvc caching.CacheService) ConsumableService {
	return &consumableService{consumableRepo: consumableRepo, usageRepo: usageRepo, cacheSvc: cacheSvc}
}

func (s *consumableService) CreateConsumable(ctx context.Context, consumable *models.Consumable) error {
	if consumable.Barcode == "" || consumable.Name == "" {
		return fmt.Errorf("barcode and name are required")
	}
	if consumable.Quantity < 0 || consumable.MinQuantity < 0 {
		return models.ErrInvalidQuantity
	}
	consumable.Deleted = false
	if err := s.consumableRepo.Create(ctx, consumable); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return models.ErrDuplicateBarcode
		}
		return fmt.Errorf("create consumable %s: %w", consumable.Barcode, err)
	}
	return nil
}

func (s *consumableService) GetConsumable(ctx context.Context, barcode string) (*models.Consumable, error) {
	if cached, err := s.cacheSvc.GetConsumable(ctx, barcode); err != nil {
		log.Printf("Cache lookup failed for consumable %s: %v", barcode, err)
	} else if cached != nil {
		return cached, nil
	}

	consumable, err := s.consumableRepo.GetByBarcode(ctx, barcode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrConsumableNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get consumable %s: %w", barcode, err)
	}
	if consumable.Deleted {
		return nil, models.ErrConsumableNotFound
	}

	if err := s.cacheSvc.SetConsumable(ctx, consumable, cacheTTL); err != nil {
		log.Printf("Failed to cache consumable %s: %v", barcode, err)
	}
	return consumable, nil
}

func (s *consumableService) ListConsumables(ctx context.Context, limit, offset int) ([]*models.Consumable, error) {
	return s.consumableRepo.List(ctx, false, limit, offset)
}

func (s *consumableService) ListBelowMinimum(ctx context.Context) ([]*models.Consumable, error) {
	return s.consumableRepo.ListBelowMinimum(ctx)
}

// UpdateConsumable edits descriptive fields and the minimum threshold.
// Quantity is not touched here; stock only moves through withdrawals and
// restocks so the usage ledger stays accountable.
func (s *consumableService) UpdateConsumable(ctx context.Context, consumable *models.Consumable) error {
	if consumable.MinQuantity < 0 {
		return models.ErrInvalidQuantity
	}
	exists, err := s.consumableRepo.ExistsActive(ctx, consumable.Barcode)
	if err != nil {
		return fmt.Errorf("check consumable %s: %w", consumable.Barcode, err)
	}
	if !exists {
		return models.ErrConsumableNotFound
	}
	if err := s.consumableRepo.Update(ctx, consumable); err != nil {
		return fmt.Errorf("update consumable %s: %w", consumable.Barcode, err)
	}
	s.invalidate(ctx, consumable.Barcode)
	return nil
}

func (s *consumableService) RestockConsumable(ctx context.Context, barcode string, quantity int) error {
	if quantity <= 0 {
		return models.ErrInvalidQuantity
	}
	exists, err := s.consumableRepo.ExistsActive(ctx, barcode)
	if err != nil {
		return fmt.Errorf("check consumable %s: %w", barcode, err)
	}
	if !exists {
		return models.ErrConsumableNotFound
	}
	if err := s.consumableRepo.AdjustQuantity(ctx, barcode, quantity); err != nil {
		return fmt.Errorf("restock consumable %s: %w", barcode, err)
	}
	s.invalidate(ctx, barcode)
	return nil
}

func (s *consumableService) DeleteConsumable(ctx context.Context, barcode string) error {
	exists, err := s.consumableRepo.ExistsActive(ctx, barcode)
	if err != nil {
		return fmt.Errorf("check consumable %s: %w", barcode, err)
	}
	if !exists {
		return models.ErrConsumableNotFound
	}
	if err := s.consumableRepo.SoftDelete(ctx, barcode); err != nil {
		return fmt.Errorf("delete consumable %s: %w", barcode, err)
	}
	s.invalidate(ctx, barcode)
	return nil
}

func (s *consumableService) RestoreConsumable(ctx context.Context, barcode string) error {
	// The restore UPDATE is guarded on deleted = TRUE, so zero affected
	// rows means the barcode is unknown or not in the trash.
	restored, err := s.consumableRepo.Restore(ctx, barcode)
	if err != nil {
		return fmt.Errorf("restore consumable %s: %w", barcode, err)
	}
	if !restored {
		return models.ErrConsumableNotFound
	}
	s.invalidate(ctx, barcode)
	return nil
}

func (s *consumableService) ListTrashedConsumables(ctx context.Context, limit, offset int) ([]*models.Consumable, error) {
	return s.consumableRepo.ListDeleted(ctx, limit, offset)
}

func (s *consumableService) GetUsageHistory(ctx context.Context, barcode string, limit, offset int) ([]*models.ConsumableUsage, error) {
	exists, err := s.consumableRepo.ExistsActive(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("check consumable %s: %w", barcode, err)
	}
	if !exists {
		return nil, models.ErrConsumableNotFound
	}
	return s.usageRepo.GetHistory(ctx, barcode, limit, offset)
}

func (s *consumableService) invalidate(ctx context.Context, barcode string) {
	if err := s.cacheSvc.DeleteConsumable(ctx, barcode); err != nil {
		log.Printf("Failed to invalidate cache for consumable %s: %v", barcode, err)
	}
}
