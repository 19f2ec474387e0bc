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

	"github.com/jackc/pgx/v5"
)

const cacheTTL = 10 * time.Minute

type ToolService interface {
	CreateTool(ctx context.Context, tool *models.Tool) error
	GetTool(ctx context.Context, barcode string) (*models.Tool, error)
	ListTools(ctx context.Context, limit, offset int) ([]*models.ToolWithBorrower, error)
	UpdateTool(ctx context.Context, tool *models.Tool) error
	DeleteTool(ctx context.Context, barcode string) error
	RestoreTool(ctx context.Context, barcode string) error
	ListTrashedTools(ctx context.Context, limit, offset int) ([]*models.Tool, error)
	GetLendingHistory(ctx context.Context, barcode string, limit, offset int) ([]*models.Lending, error)
}

type toolService struct {
	toolRepo    repositories.ToolRepository
	lendingRepo repositories.LendingRepository
	cacheSvc    caching.CacheService
}

func NewToolService(toolRepo repositories.ToolRepository, lendingRepo repositories.LendingRepository, cacheSvc caching.CacheService) ToolService {
	return &toolService{toolRepo: toolRepo, lendingRepo: lendingRepo, cacheSvc: cacheSvc}
}

func (s *toolService) CreateTool(ctx context.Context, tool *models.Tool) error {
	if tool.Barcode == "" || tool.Name == "" {
		return fmt.Errorf("barcode and name are required")
	}
	tool.Status = models.ToolStatusAvailable
	tool.Deleted = false
	if err := s.toolRepo.Create(ctx, tool); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return models.ErrDuplicateBarcode
		}
		return fmt.Errorf("create tool %s: %w", tool.Barcode, err)
	}
	return nil
}

func (s *toolService) GetTool(ctx context.Context, barcode string) (*models.Tool, error) {
	if cached, err := s.cacheSvc.GetTool(ctx, barcode); err != nil {
		log.Printf("Cache lookup failed for tool %s: %v", barcode, err)
	} else if cached != nil {
		return cached, nil
	}

	tool, err := s.toolRepo.GetByBarcode(ctx, barcode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrToolNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get tool %s: %w", barcode, err)
	}
	if tool.Deleted {
		return nil, models.ErrToolNotFound
	}

	if err := s.cacheSvc.SetTool(ctx, tool, cacheTTL); err != nil {
		log.Printf("Failed to cache tool %s: %v", barcode, err)
	}
	return tool, nil
}

func (s *toolService) ListTools(ctx context.Context, limit, offset int) ([]*models.ToolWithBorrower, error) {
	return s.toolRepo.ListWithBorrower(ctx, limit, offset)
}

func (s *toolService) UpdateTool(ctx context.Context, tool *models.Tool) error {
	exists, err := s.toolRepo.ExistsActive(ctx, tool.Barcode)
	if err != nil {
		return fmt.Errorf("check tool %s: %w", tool.Barcode, err)
	}
	if !exists {
		return models.ErrToolNotFound
	}
	if err := s.toolRepo.Update(ctx, tool); err != nil {
		return fmt.Errorf("update tool %s: %w", tool.Barcode, err)
	}
	s.invalidate(ctx, tool.Barcode)
	return nil
}

// DeleteTool moves a tool to the trash. A tool with an open lending cannot
// be trashed; it has to come back first.
func (s *toolService) DeleteTool(ctx context.Context, barcode string) error {
	exists, err := s.toolRepo.ExistsActive(ctx, barcode)
	if err != nil {
		return fmt.Errorf("check tool %s: %w", barcode, err)
	}
	if !exists {
		return models.ErrToolNotFound
	}

	open, err := s.lendingRepo.GetOpen(ctx, barcode)
	if err != nil {
		return fmt.Errorf("check open lending for %s: %w", barcode, err)
	}
	if open != nil {
		return models.ErrHasOpenLending
	}

	if err := s.toolRepo.SoftDelete(ctx, barcode); err != nil {
		return fmt.Errorf("delete tool %s: %w", barcode, err)
	}
	s.invalidate(ctx, barcode)
	return nil
}

func (s *toolService) RestoreTool(ctx context.Context, barcode string) error {
	// The restore UPDATE is guarded on deleted = TRUE, so zero affected
	// rows means the barcode is unknown or not in the trash.
	restored, err := s.toolRepo.Restore(ctx, barcode)
	if err != nil {
		return fmt.Errorf("restore tool %s: %w", barcode, err)
	}
	if !restored {
		return models.ErrToolNotFound
	}
	s.invalidate(ctx, barcode)
	return nil
}

func (s *toolService) ListTrashedTools(ctx context.Context, limit, offset int) ([]*models.Tool, error) {
	return s.toolRepo.ListDeleted(ctx, limit, offset)
}

func (s *toolService) GetLendingHistory(ctx context.Context, barcode string, limit, offset int) ([]*models.Lending, error) {
	exists, err := s.toolRepo.ExistsActive(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("check tool %s: %w", barcode, err)
	}
	if !exists {
		return nil, models.ErrToolNotFound
	}
	return s.lendingRepo.GetHistory(ctx, barcode, limit, offset)
}

func (s *toolService) invalidate(ctx context.Context, barcode string) {
	if err := s.cacheSvc.DeleteTool(ctx, barcode); err != nil {
		log.Printf("Failed to invalidate cache for tool %s: %v", barcode, err)
	}
}
