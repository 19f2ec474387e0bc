package services

import (
	"context"
	"time"

	"toolkeeper/internal/models"
	"toolkeeper/internal/repositories"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockToolRepository mocks the ToolRepository interface for testing
type MockToolRepository struct {
	mock.Mock
}

func (m *MockToolRepository) Create(ctx context.Context, tool *models.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}

func (m *MockToolRepository) GetByBarcode(ctx context.Context, barcode string) (*models.Tool, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tool), args.Error(1)
}

func (m *MockToolRepository) GetByBarcodeForUpdate(ctx context.Context, barcode string) (*models.Tool, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tool), args.Error(1)
}

func (m *MockToolRepository) List(ctx context.Context, includeDeleted bool, limit, offset int) ([]*models.Tool, error) {
	args := m.Called(ctx, includeDeleted, limit, offset)
	return args.Get(0).([]*models.Tool), args.Error(1)
}

func (m *MockToolRepository) ListWithBorrower(ctx context.Context, limit, offset int) ([]*models.ToolWithBorrower, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.ToolWithBorrower), args.Error(1)
}

func (m *MockToolRepository) ListDeleted(ctx context.Context, limit, offset int) ([]*models.Tool, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Tool), args.Error(1)
}

func (m *MockToolRepository) Update(ctx context.Context, tool *models.Tool) error {
	args := m.Called(ctx, tool)
	return args.Error(0)
}

func (m *MockToolRepository) UpdateStatus(ctx context.Context, barcode string, status models.ToolStatus) error {
	args := m.Called(ctx, barcode, status)
	return args.Error(0)
}

func (m *MockToolRepository) UpdateBarcode(ctx context.Context, oldBarcode, newBarcode string) error {
	args := m.Called(ctx, oldBarcode, newBarcode)
	return args.Error(0)
}

func (m *MockToolRepository) SoftDelete(ctx context.Context, barcode string) error {
	args := m.Called(ctx, barcode)
	return args.Error(0)
}

func (m *MockToolRepository) Restore(ctx context.Context, barcode string) (bool, error) {
	args := m.Called(ctx, barcode)
	return args.Bool(0), args.Error(1)
}

func (m *MockToolRepository) ExistsActive(ctx context.Context, barcode string) (bool, error) {
	args := m.Called(ctx, barcode)
	return args.Bool(0), args.Error(1)
}

func (m *MockToolRepository) WithTx(tx repositories.DB) repositories.ToolRepository {
	return m
}

// MockConsumableRepository mocks the ConsumableRepository interface for testing
type MockConsumableRepository struct {
	mock.Mock
}

func (m *MockConsumableRepository) Create(ctx context.Context, consumable *models.Consumable) error {
	args := m.Called(ctx, consumable)
	return args.Error(0)
}

func (m *MockConsumableRepository) GetByBarcode(ctx context.Context, barcode string) (*models.Consumable, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Consumable), args.Error(1)
}

func (m *MockConsumableRepository) GetByBarcodeForUpdate(ctx context.Context, barcode string) (*models.Consumable, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Consumable), args.Error(1)
}

func (m *MockConsumableRepository) List(ctx context.Context, includeDeleted bool, limit, offset int) ([]*models.Consumable, error) {
	args := m.Called(ctx, includeDeleted, limit, offset)
	return args.Get(0).([]*models.Consumable), args.Error(1)
}

func (m *MockConsumableRepository) ListDeleted(ctx context.Context, limit, offset int) ([]*models.Consumable, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Consumable), args.Error(1)
}

func (m *MockConsumableRepository) ListBelowMinimum(ctx context.Context) ([]*models.Consumable, error) {
	args := m.Called(ctx)
	return args.Get(0).([]*models.Consumable), args.Error(1)
}

func (m *MockConsumableRepository) Update(ctx context.Context, consumable *models.Consumable) error {
	args := m.Called(ctx, consumable)
	return args.Error(0)
}

func (m *MockConsumableRepository) UpdateBarcode(ctx context.Context, oldBarcode, newBarcode string) error {
	args := m.Called(ctx, oldBarcode, newBarcode)
	return args.Error(0)
}

func (m *MockConsumableRepository) AdjustQuantity(ctx context.Context, barcode string, quantity int) error {
	args := m.Called(ctx, barcode, quantity)
	return args.Error(0)
}

func (m *MockConsumableRepository) DecrementQuantity(ctx context.Context, barcode string, quantity int) (bool, error) {
	args := m.Called(ctx, barcode, quantity)
	return args.Bool(0), args.Error(1)
}

func (m *MockConsumableRepository) SoftDelete(ctx context.Context, barcode string) error {
	args := m.Called(ctx, barcode)
	return args.Error(0)
}

func (m *MockConsumableRepository) Restore(ctx context.Context, barcode string) (bool, error) {
	args := m.Called(ctx, barcode)
	return args.Bool(0), args.Error(1)
}

func (m *MockConsumableRepository) ExistsActive(ctx context.Context, barcode string) (bool, error) {
	args := m.Called(ctx, barcode)
	return args.Bool(0), args.Error(1)
}

func (m *MockConsumableRepository) WithTx(tx repositories.DB) repositories.ConsumableRepository {
	return m
}

// MockWorkerRepository mocks the WorkerRepository interface for testing
type MockWorkerRepository struct {
	mock.Mock
}

func (m *MockWorkerRepository) Create(ctx context.Context, worker *models.Worker) error {
	args := m.Called(ctx, worker)
	return args.Error(0)
}

func (m *MockWorkerRepository) GetByBarcode(ctx context.Context, barcode string) (*models.Worker, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Worker), args.Error(1)
}

func (m *MockWorkerRepository) List(ctx context.Context, includeDeleted bool, limit, offset int) ([]*models.Worker, error) {
	args := m.Called(ctx, includeDeleted, limit, offset)
	return args.Get(0).([]*models.Worker), args.Error(1)
}

func (m *MockWorkerRepository) ListWithLendings(ctx context.Context, limit, offset int) ([]*models.WorkerWithLendings, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.WorkerWithLendings), args.Error(1)
}

func (m *MockWorkerRepository) ListDeleted(ctx context.Context, limit, offset int) ([]*models.Worker, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]*models.Worker), args.Error(1)
}

func (m *MockWorkerRepository) Update(ctx context.Context, worker *models.Worker) error {
	args := m.Called(ctx, worker)
	return args.Error(0)
}

func (m *MockWorkerRepository) UpdateBarcode(ctx context.Context, oldBarcode, newBarcode string) error {
	args := m.Called(ctx, oldBarcode, newBarcode)
	return args.Error(0)
}

func (m *MockWorkerRepository) SoftDelete(ctx context.Context, barcode string) error {
	args := m.Called(ctx, barcode)
	return args.Error(0)
}

func (m *MockWorkerRepository) Restore(ctx context.Context, barcode string) (bool, error) {
	args := m.Called(ctx, barcode)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkerRepository) ExistsActive(ctx context.Context, barcode string) (bool, error) {
	args := m.Called(ctx, barcode)
	return args.Bool(0), args.Error(1)
}

func (m *MockWorkerRepository) WithTx(tx repositories.DB) repositories.WorkerRepository {
	return m
}

// MockLendingRepository mocks the LendingRepository interface for testing
type MockLendingRepository struct {
	mock.Mock
}

func (m *MockLendingRepository) Create(ctx context.Context, lending *models.Lending) error {
	args := m.Called(ctx, lending)
	return args.Error(0)
}

func (m *MockLendingRepository) GetOpen(ctx context.Context, toolBarcode string) (*models.Lending, error) {
	args := m.Called(ctx, toolBarcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Lending), args.Error(1)
}

func (m *MockLendingRepository) GetHistory(ctx context.Context, toolBarcode string, limit, offset int) ([]*models.Lending, error) {
	args := m.Called(ctx, toolBarcode, limit, offset)
	return args.Get(0).([]*models.Lending), args.Error(1)
}

func (m *MockLendingRepository) GetOpenForWorker(ctx context.Context, workerBarcode string) ([]*models.Lending, error) {
	args := m.Called(ctx, workerBarcode)
	return args.Get(0).([]*models.Lending), args.Error(1)
}

func (m *MockLendingRepository) CountOpenForWorker(ctx context.Context, workerBarcode string) (int, error) {
	args := m.Called(ctx, workerBarcode)
	return args.Int(0), args.Error(1)
}

func (m *MockLendingRepository) MarkReturned(ctx context.Context, id uuid.UUID, returnedAt time.Time) error {
	args := m.Called(ctx, id, returnedAt)
	return args.Error(0)
}

func (m *MockLendingRepository) WithTx(tx repositories.DB) repositories.LendingRepository {
	return m
}

// MockUsageRepository mocks the UsageRepository interface for testing
type MockUsageRepository struct {
	mock.Mock
}

func (m *MockUsageRepository) Create(ctx context.Context, usage *models.ConsumableUsage) error {
	args := m.Called(ctx, usage)
	return args.Error(0)
}

func (m *MockUsageRepository) GetHistory(ctx context.Context, consumableBarcode string, limit, offset int) ([]*models.ConsumableUsage, error) {
	args := m.Called(ctx, consumableBarcode, limit, offset)
	return args.Get(0).([]*models.ConsumableUsage), args.Error(1)
}

func (m *MockUsageRepository) GetUsageInWindow(ctx context.Context, consumableBarcode string, since time.Time) ([]*models.ConsumableUsage, error) {
	args := m.Called(ctx, consumableBarcode, since)
	return args.Get(0).([]*models.ConsumableUsage), args.Error(1)
}

func (m *MockUsageRepository) CountForWorker(ctx context.Context, workerBarcode string) (int, error) {
	args := m.Called(ctx, workerBarcode)
	return args.Int(0), args.Error(1)
}

func (m *MockUsageRepository) WithTx(tx repositories.DB) repositories.UsageRepository {
	return m
}
