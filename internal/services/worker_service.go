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

type WorkerService interface {
	CreateWorker(ctx context.Context, worker *models.Worker) error
	GetWorker(ctx context.Context, barcode string) (*models.Worker, error)
	GetWorkerDetail(ctx context.Context, barcode string) (*models.WorkerDetail, error)
	ListWorkers(ctx context.Context, limit, offset int) ([]*models.WorkerWithLendings, error)
	UpdateWorker(ctx context.Context, worker *models.Worker) error
	DeleteWorker(ctx context.Context, barcode string) error
	RestoreWorker(ctx context.Context, barcode string) error
	ListTrashedWorkers(ctx context.Context, limit, offset int) ([]*models.Worker, error)
	GetOpenLendings(ctx context.Context, barcode string) ([]*models.Lending, error)
}

type workerService struct {
	workerRepo  repositories.WorkerRepository
	lendingRepo repositories.LendingRepository
	usageRepo   repositories.UsageRepository
	cacheSvc    caching.CacheService
}

func NewWorkerService(workerRepo repositories.WorkerRepository, lendingRepo repositories.LendingRepository,
	usageRepo repositories.UsageRepository, cacheSvc caching.CacheService) WorkerService {
	return &workerService{workerRepo: workerRepo, lendingRepo: lendingRepo, usageRepo: usageRepo, cacheSvc: cacheSvc}
}

func (s *workerService) CreateWorker(ctx context.Context, worker *models.Worker) error {
	if worker.Barcode == "" || worker.FirstName == "" || worker.LastName == "" {
		return fmt.Errorf("barcode, first name and last name are required")
	}
	worker.Deleted = false
	if err := s.workerRepo.Create(ctx, worker); err != nil {
		if repositories.IsUniqueViolation(err, "") {
			return models.ErrDuplicateBarcode
		}
		return fmt.Errorf("create worker %s: %w", worker.Barcode, err)
	}
	return nil
}

func (s *workerService) GetWorker(ctx context.Context, barcode string) (*models.Worker, error) {
	if cached, err := s.cacheSvc.GetWorker(ctx, barcode); err != nil {
		log.Printf("Cache lookup failed for worker %s: %v", barcode, err)
	} else if cached != nil {
		return cached, nil
	}

	worker, err := s.workerRepo.GetByBarcode(ctx, barcode)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, models.ErrWorkerNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get worker %s: %w", barcode, err)
	}
	if worker.Deleted {
		return nil, models.ErrWorkerNotFound
	}

	if err := s.cacheSvc.SetWorker(ctx, worker, cacheTTL); err != nil {
		log.Printf("Failed to cache worker %s: %v", barcode, err)
	}
	return worker, nil
}

// GetWorkerDetail decorates the worker with counts from both ledgers.
func (s *workerService) GetWorkerDetail(ctx context.Context, barcode string) (*models.WorkerDetail, error) {
	worker, err := s.GetWorker(ctx, barcode)
	if err != nil {
		return nil, err
	}
	open, err := s.lendingRepo.CountOpenForWorker(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("count open lendings for %s: %w", barcode, err)
	}
	withdrawals, err := s.usageRepo.CountForWorker(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("count withdrawals for %s: %w", barcode, err)
	}
	return &models.WorkerDetail{Worker: *worker, OpenLendings: open, Withdrawals: withdrawals}, nil
}

func (s *workerService) ListWorkers(ctx context.Context, limit, offset int) ([]*models.WorkerWithLendings, error) {
	return s.workerRepo.ListWithLendings(ctx, limit, offset)
}

func (s *workerService) UpdateWorker(ctx context.Context, worker *models.Worker) error {
	exists, err := s.workerRepo.ExistsActive(ctx, worker.Barcode)
	if err != nil {
		return fmt.Errorf("check worker %s: %w", worker.Barcode, err)
	}
	if !exists {
		return models.ErrWorkerNotFound
	}
	if err := s.workerRepo.Update(ctx, worker); err != nil {
		return fmt.Errorf("update worker %s: %w", worker.Barcode, err)
	}
	s.invalidate(ctx, worker.Barcode)
	return nil
}

// DeleteWorker moves a worker to the trash. Workers still holding tools
// cannot be trashed; past (closed) lendings are no obstacle.
func (s *workerService) DeleteWorker(ctx context.Context, barcode string) error {
	exists, err := s.workerRepo.ExistsActive(ctx, barcode)
	if err != nil {
		return fmt.Errorf("check worker %s: %w", barcode, err)
	}
	if !exists {
		return models.ErrWorkerNotFound
	}

	openCount, err := s.lendingRepo.CountOpenForWorker(ctx, barcode)
	if err != nil {
		return fmt.Errorf("count open lendings for %s: %w", barcode, err)
	}
	if openCount > 0 {
		return models.ErrHasOpenLending
	}

	if err := s.workerRepo.SoftDelete(ctx, barcode); err != nil {
		return fmt.Errorf("delete worker %s: %w", barcode, err)
	}
	s.invalidate(ctx, barcode)
	return nil
}

func (s *workerService) RestoreWorker(ctx context.Context, barcode string) error {
	// The restore UPDATE is guarded on deleted = TRUE, so zero affected
	// rows means the barcode is unknown or not in the trash.
	restored, err := s.workerRepo.Restore(ctx, barcode)
	if err != nil {
		return fmt.Errorf("restore worker %s: %w", barcode, err)
	}
	if !restored {
		return models.ErrWorkerNotFound
	}
	s.invalidate(ctx, barcode)
	return nil
}

func (s *workerService) ListTrashedWorkers(ctx context.Context, limit, offset int) ([]*models.Worker, error) {
	return s.workerRepo.ListDeleted(ctx, limit, offset)
}

func (s *workerService) GetOpenLendings(ctx context.Context, barcode string) ([]*models.Lending, error) {
	exists, err := s.workerRepo.ExistsActive(ctx, barcode)
	if err != nil {
		return nil, fmt.Errorf("check worker %s: %w", barcode, err)
	}
	if !exists {
		return nil, models.ErrWorkerNotFound
	}
	return s.lendingRepo.GetOpenForWorker(ctx, barcode)
}

func (s *workerService) invalidate(ctx context.Context, barcode string) {
	if err := s.cacheSvc.DeleteWorker(ctx, barcode); err != nil {
		log.Printf("Failed to invalidate cache for worker %s: %v", barcode, err)
	}
}
