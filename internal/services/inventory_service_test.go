package services

import (
	"context"
	"testing"
	"time"

	"toolkeeper/internal/models"
	"toolkeeper/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// MockCacheService mocks the CacheService interface for testing
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) GetTool(ctx context.Context, barcode string) (*models.Tool, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tool), args.Error(1)
}

func (m *MockCacheService) SetTool(ctx context.Context, tool *models.Tool, ttl time.Duration) error {
	args := m.Called(ctx, tool, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteTool(ctx context.Context, barcode string) error {
	args := m.Called(ctx, barcode)
	return args.Error(0)
}

func (m *MockCacheService) GetConsumable(ctx context.Context, barcode string) (*models.Consumable, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Consumable), args.Error(1)
}

func (m *MockCacheService) SetConsumable(ctx context.Context, consumable *models.Consumable, ttl time.Duration) error {
	args := m.Called(ctx, consumable, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteConsumable(ctx context.Context, barcode string) error {
	args := m.Called(ctx, barcode)
	return args.Error(0)
}

func (m *MockCacheService) GetWorker(ctx context.Context, barcode string) (*models.Worker, error) {
	args := m.Called(ctx, barcode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Worker), args.Error(1)
}

func (m *MockCacheService) SetWorker(ctx context.Context, worker *models.Worker, ttl time.Duration) error {
	args := m.Called(ctx, worker, ttl)
	return args.Error(0)
}

func (m *MockCacheService) DeleteWorker(ctx context.Context, barcode string) error {
	args := m.Called(ctx, barcode)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateAll(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type InventoryServiceTestSuite struct {
	suite.Suite
	mock      pgxmock.PgxPoolIface
	cacheSvc  *MockCacheService
	service   InventoryService
	context   context.Context
	now       time.Time
	lendingID uuid.UUID
}

func (suite *InventoryServiceTestSuite) SetupTest() {
	mock, err := pgxmock.NewPool()
	assert.NoError(suite.T(), err)
	suite.mock = mock
	suite.cacheSvc = new(MockCacheService)

	toolRepo := repositories.NewToolRepo(mock)
	consumableRepo := repositories.NewConsumableRepo(mock)
	workerRepo := repositories.NewWorkerRepo(mock)
	lendingRepo := repositories.NewLendingRepo(mock)
	usageRepo := repositories.NewUsageRepo(mock)

	suite.service = NewInventoryService(mock, toolRepo, consumableRepo, workerRepo, lendingRepo, usageRepo, suite.cacheSvc)
	suite.context = context.Background()
	suite.now = time.Now().UTC()
	suite.lendingID = uuid.New()
}

func (suite *InventoryServiceTestSuite) TearDownTest() {
	assert.NoError(suite.T(), suite.mock.ExpectationsWereMet())
	suite.mock.Close()
}

func TestInventoryServiceTestSuite(t *testing.T) {
	suite.Run(t, new(InventoryServiceTestSuite))
}

var toolRowColumns = []string{"barcode", "name", "description", "category", "location", "status", "deleted", "created_at", "modified_at", "deleted_at"}

func (suite *InventoryServiceTestSuite) toolRow(barcode string, status models.ToolStatus) *pgxmock.Rows {
	return pgxmock.NewRows(toolRowColumns).
		AddRow(barcode, "Cordless drill", nil, nil, nil, status, false, suite.now, suite.now, nil)
}

var lendingRowColumns = []string{"id", "tool_barcode", "worker_barcode", "lent_at", "returned_at"}

func (suite *InventoryServiceTestSuite) openLendingRow(toolBarcode, workerBarcode string) *pgxmock.Rows {
	return pgxmock.NewRows(lendingRowColumns).
		AddRow(suite.lendingID, toolBarcode, workerBarcode, suite.now, nil)
}

var workerRowColumns = []string{"barcode", "first_name", "last_name", "department", "email", "deleted", "created_at", "modified_at", "deleted_at"}

func (suite *InventoryServiceTestSuite) workerRow(barcode string) *pgxmock.Rows {
	return pgxmock.NewRows(workerRowColumns).
		AddRow(barcode, "Ada", "Lovelace", nil, nil, false, suite.now, suite.now, nil)
}

var consumableRowColumns = []string{"barcode", "name", "description", "category", "location", "quantity", "min_quantity", "deleted", "created_at", "modified_at", "deleted_at"}

func (suite *InventoryServiceTestSuite) consumableRow(barcode string, quantity, minQuantity int) *pgxmock.Rows {
	return pgxmock.NewRows(consumableRowColumns).
		AddRow(barcode, "Sanding discs", nil, nil, nil, quantity, minQuantity, false, suite.now, suite.now, nil)
}

func (suite *InventoryServiceTestSuite) expectToolForUpdate(barcode string, rows *pgxmock.Rows) {
	suite.mock.ExpectQuery(`SELECT (.+) FROM tools\s+WHERE barcode = \$1 AND deleted = FALSE\s+FOR UPDATE`).
		WithArgs(barcode).
		WillReturnRows(rows)
}

func (suite *InventoryServiceTestSuite) expectOpenLending(barcode string, rows *pgxmock.Rows) {
	suite.mock.ExpectQuery(`SELECT (.+) FROM lendings\s+WHERE tool_barcode = \$1 AND returned_at IS NULL`).
		WithArgs(barcode).
		WillReturnRows(rows)
}

func (suite *InventoryServiceTestSuite) TestLendTool_Success() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusAvailable))
	suite.expectOpenLending("T100", pgxmock.NewRows(lendingRowColumns))
	suite.mock.ExpectQuery(`SELECT (.+) FROM workers\s+WHERE barcode = \$1 AND deleted = FALSE`).
		WithArgs("W200").
		WillReturnRows(suite.workerRow("W200"))
	suite.mock.ExpectExec(`INSERT INTO lendings`).
		WithArgs(pgxmock.AnyArg(), "T100", "W200", pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectExec(`UPDATE tools\s+SET status = \$1`).
		WithArgs(models.ToolStatusLent, "T100").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()
	suite.cacheSvc.On("DeleteTool", mock.Anything, "T100").Return(nil)

	lending, err := suite.service.LendTool(suite.context, "T100", "W200")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "T100", lending.ToolBarcode)
	assert.Equal(suite.T(), "W200", lending.WorkerBarcode)
	assert.Nil(suite.T(), lending.ReturnedAt)
	suite.cacheSvc.AssertExpectations(suite.T())
}

func (suite *InventoryServiceTestSuite) TestLendTool_ToolNotFound() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T404", pgxmock.NewRows(toolRowColumns))
	suite.mock.ExpectRollback()

	_, err := suite.service.LendTool(suite.context, "T404", "W200")
	assert.ErrorIs(suite.T(), err, models.ErrToolNotFound)
}

func (suite *InventoryServiceTestSuite) TestLendTool_DefectiveTool() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusDefective))
	suite.mock.ExpectRollback()

	_, err := suite.service.LendTool(suite.context, "T100", "W200")
	assert.ErrorIs(suite.T(), err, models.ErrToolDefective)
}

func (suite *InventoryServiceTestSuite) TestLendTool_AlreadyLent() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusLent))
	suite.expectOpenLending("T100", suite.openLendingRow("T100", "W555"))
	suite.mock.ExpectRollback()

	_, err := suite.service.LendTool(suite.context, "T100", "W200")

	var alreadyLent *models.AlreadyLentError
	assert.ErrorAs(suite.T(), err, &alreadyLent)
	assert.Equal(suite.T(), "W555", alreadyLent.HolderBarcode)
}

func (suite *InventoryServiceTestSuite) TestLendTool_WorkerNotFound() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusAvailable))
	suite.expectOpenLending("T100", pgxmock.NewRows(lendingRowColumns))
	suite.mock.ExpectQuery(`SELECT (.+) FROM workers\s+WHERE barcode = \$1 AND deleted = FALSE`).
		WithArgs("W404").
		WillReturnRows(pgxmock.NewRows(workerRowColumns))
	suite.mock.ExpectRollback()

	_, err := suite.service.LendTool(suite.context, "T100", "W404")
	assert.ErrorIs(suite.T(), err, models.ErrWorkerNotFound)
}

// Two lends race: the in-transaction check passes but the insert trips the
// one-open-lending-per-tool index, so the loser still gets a conflict with
// the winning holder attached.
func (suite *InventoryServiceTestSuite) TestLendTool_LosesInsertRace() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusAvailable))
	suite.expectOpenLending("T100", pgxmock.NewRows(lendingRowColumns))
	suite.mock.ExpectQuery(`SELECT (.+) FROM workers\s+WHERE barcode = \$1 AND deleted = FALSE`).
		WithArgs("W200").
		WillReturnRows(suite.workerRow("W200"))
	suite.mock.ExpectExec(`INSERT INTO lendings`).
		WithArgs(pgxmock.AnyArg(), "T100", "W200", pgxmock.AnyArg()).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "lendings_one_open_per_tool"})
	suite.expectOpenLending("T100", suite.openLendingRow("T100", "W777"))
	suite.mock.ExpectRollback()

	_, err := suite.service.LendTool(suite.context, "T100", "W200")

	var alreadyLent *models.AlreadyLentError
	assert.ErrorAs(suite.T(), err, &alreadyLent)
	assert.Equal(suite.T(), "W777", alreadyLent.HolderBarcode)
}

func (suite *InventoryServiceTestSuite) TestReturnTool_Success() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusLent))
	suite.expectOpenLending("T100", suite.openLendingRow("T100", "W200"))
	suite.mock.ExpectExec(`UPDATE lendings\s+SET returned_at = \$1\s+WHERE id = \$2 AND returned_at IS NULL`).
		WithArgs(pgxmock.AnyArg(), suite.lendingID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`UPDATE tools\s+SET status = \$1`).
		WithArgs(models.ToolStatusAvailable, "T100").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()
	suite.cacheSvc.On("DeleteTool", mock.Anything, "T100").Return(nil)

	lending, err := suite.service.ReturnTool(suite.context, "T100", nil)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), lending.ReturnedAt)
	assert.Equal(suite.T(), "W200", lending.WorkerBarcode)
}

func (suite *InventoryServiceTestSuite) TestReturnTool_NotCurrentlyLent() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusAvailable))
	suite.expectOpenLending("T100", pgxmock.NewRows(lendingRowColumns))
	suite.mock.ExpectRollback()

	_, err := suite.service.ReturnTool(suite.context, "T100", nil)
	assert.ErrorIs(suite.T(), err, models.ErrNotCurrentlyLent)
}

func (suite *InventoryServiceTestSuite) TestReturnTool_WrongHolder() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusLent))
	suite.expectOpenLending("T100", suite.openLendingRow("T100", "W200"))
	suite.mock.ExpectRollback()

	claimed := "W999"
	_, err := suite.service.ReturnTool(suite.context, "T100", &claimed)

	var wrongHolder *models.WrongHolderError
	assert.ErrorAs(suite.T(), err, &wrongHolder)
	assert.Equal(suite.T(), "W200", wrongHolder.ActualHolder)
	assert.Equal(suite.T(), "W999", wrongHolder.ClaimedHolder)
}

// A tool flagged defective while out stays defective after the return; only
// the lending row is closed.
func (suite *InventoryServiceTestSuite) TestReturnTool_KeepsDefectiveFlag() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusDefective))
	suite.expectOpenLending("T100", suite.openLendingRow("T100", "W200"))
	suite.mock.ExpectExec(`UPDATE lendings\s+SET returned_at = \$1\s+WHERE id = \$2 AND returned_at IS NULL`).
		WithArgs(pgxmock.AnyArg(), suite.lendingID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()
	suite.cacheSvc.On("DeleteTool", mock.Anything, "T100").Return(nil)

	lending, err := suite.service.ReturnTool(suite.context, "T100", nil)
	assert.NoError(suite.T(), err)
	assert.NotNil(suite.T(), lending.ReturnedAt)
}

func (suite *InventoryServiceTestSuite) TestMarkDefective_Success() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusAvailable))
	suite.expectOpenLending("T100", pgxmock.NewRows(lendingRowColumns))
	suite.mock.ExpectExec(`UPDATE tools\s+SET status = \$1`).
		WithArgs(models.ToolStatusDefective, "T100").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()
	suite.cacheSvc.On("DeleteTool", mock.Anything, "T100").Return(nil)

	tool, err := suite.service.MarkDefective(suite.context, "T100")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ToolStatusDefective, tool.Status)
}

func (suite *InventoryServiceTestSuite) TestMarkDefective_WhileLent() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusLent))
	suite.expectOpenLending("T100", suite.openLendingRow("T100", "W200"))
	suite.mock.ExpectRollback()

	_, err := suite.service.MarkDefective(suite.context, "T100")
	assert.ErrorIs(suite.T(), err, models.ErrToolCurrentlyLent)
}

func (suite *InventoryServiceTestSuite) TestMarkAvailable_Success() {
	suite.mock.ExpectBegin()
	suite.expectToolForUpdate("T100", suite.toolRow("T100", models.ToolStatusDefective))
	suite.expectOpenLending("T100", pgxmock.NewRows(lendingRowColumns))
	suite.mock.ExpectExec(`UPDATE tools\s+SET status = \$1`).
		WithArgs(models.ToolStatusAvailable, "T100").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()
	suite.cacheSvc.On("DeleteTool", mock.Anything, "T100").Return(nil)

	tool, err := suite.service.MarkAvailable(suite.context, "T100")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), models.ToolStatusAvailable, tool.Status)
}

func (suite *InventoryServiceTestSuite) TestWithdrawConsumable_Success() {
	worker := "W200"
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT (.+) FROM consumables\s+WHERE barcode = \$1 AND deleted = FALSE\s+FOR UPDATE`).
		WithArgs("C300").
		WillReturnRows(suite.consumableRow("C300", 40, 10))
	suite.mock.ExpectQuery(`SELECT (.+) FROM workers\s+WHERE barcode = \$1 AND deleted = FALSE`).
		WithArgs(worker).
		WillReturnRows(suite.workerRow(worker))
	suite.mock.ExpectExec(`UPDATE consumables\s+SET quantity = quantity - \$1, modified_at = NOW\(\)\s+WHERE barcode = \$2 AND deleted = FALSE AND quantity >= \$1`).
		WithArgs(5, "C300").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO consumable_usages`).
		WithArgs(pgxmock.AnyArg(), "C300", &worker, 5, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()
	suite.cacheSvc.On("DeleteConsumable", mock.Anything, "C300").Return(nil)

	usage, err := suite.service.WithdrawConsumable(suite.context, "C300", &worker, 5)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 5, usage.Quantity)
	assert.Equal(suite.T(), "W200", *usage.WorkerBarcode)
}

func (suite *InventoryServiceTestSuite) TestWithdrawConsumable_AnonymousWithdrawal() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT (.+) FROM consumables\s+WHERE barcode = \$1 AND deleted = FALSE\s+FOR UPDATE`).
		WithArgs("C300").
		WillReturnRows(suite.consumableRow("C300", 40, 10))
	suite.mock.ExpectExec(`UPDATE consumables\s+SET quantity = quantity - \$1`).
		WithArgs(3, "C300").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectExec(`INSERT INTO consumable_usages`).
		WithArgs(pgxmock.AnyArg(), "C300", (*string)(nil), 3, pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	suite.mock.ExpectCommit()
	suite.cacheSvc.On("DeleteConsumable", mock.Anything, "C300").Return(nil)

	usage, err := suite.service.WithdrawConsumable(suite.context, "C300", nil, 3)
	assert.NoError(suite.T(), err)
	assert.Nil(suite.T(), usage.WorkerBarcode)
}

func (suite *InventoryServiceTestSuite) TestWithdrawConsumable_InvalidQuantity() {
	_, err := suite.service.WithdrawConsumable(suite.context, "C300", nil, 0)
	assert.ErrorIs(suite.T(), err, models.ErrInvalidQuantity)

	_, err = suite.service.WithdrawConsumable(suite.context, "C300", nil, -4)
	assert.ErrorIs(suite.T(), err, models.ErrInvalidQuantity)
}

func (suite *InventoryServiceTestSuite) TestWithdrawConsumable_InsufficientStock() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT (.+) FROM consumables\s+WHERE barcode = \$1 AND deleted = FALSE\s+FOR UPDATE`).
		WithArgs("C300").
		WillReturnRows(suite.consumableRow("C300", 2, 10))
	suite.mock.ExpectExec(`UPDATE consumables\s+SET quantity = quantity - \$1`).
		WithArgs(5, "C300").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))
	suite.mock.ExpectQuery(`SELECT (.+) FROM consumables\s+WHERE barcode = \$1 AND deleted = FALSE`).
		WithArgs("C300").
		WillReturnRows(suite.consumableRow("C300", 2, 10))
	suite.mock.ExpectRollback()

	_, err := suite.service.WithdrawConsumable(suite.context, "C300", nil, 5)

	var insufficient *models.InsufficientStockError
	assert.ErrorAs(suite.T(), err, &insufficient)
	assert.Equal(suite.T(), 5, insufficient.Requested)
	assert.Equal(suite.T(), 2, insufficient.Available)
}

func (suite *InventoryServiceTestSuite) TestUpdateBarcode_ToolSuccess() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM tools`).
		WithArgs("T-NEW").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	suite.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM consumables`).
		WithArgs("T-NEW").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	suite.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM tools`).
		WithArgs("T-OLD").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	suite.mock.ExpectExec(`UPDATE tools\s+SET barcode = \$1`).
		WithArgs("T-NEW", "T-OLD").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))
	suite.mock.ExpectCommit()
	suite.cacheSvc.On("DeleteTool", mock.Anything, "T-OLD").Return(nil)

	err := suite.service.UpdateBarcode(suite.context, "T-OLD", "T-NEW", models.ItemTypeTool)
	assert.NoError(suite.T(), err)
}

func (suite *InventoryServiceTestSuite) TestUpdateBarcode_Collision() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM tools`).
		WithArgs("T-NEW").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))
	suite.mock.ExpectRollback()

	err := suite.service.UpdateBarcode(suite.context, "T-OLD", "T-NEW", models.ItemTypeTool)
	assert.ErrorIs(suite.T(), err, models.ErrBarcodeInUse)
}

func (suite *InventoryServiceTestSuite) TestUpdateBarcode_WorkerNotFound() {
	suite.mock.ExpectBegin()
	suite.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM workers`).
		WithArgs("W-NEW").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	suite.mock.ExpectQuery(`SELECT EXISTS \(SELECT 1 FROM workers`).
		WithArgs("W-OLD").
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(false))
	suite.mock.ExpectRollback()

	err := suite.service.UpdateBarcode(suite.context, "W-OLD", "W-NEW", models.ItemTypeWorker)
	assert.ErrorIs(suite.T(), err, models.ErrWorkerNotFound)
}

func (suite *InventoryServiceTestSuite) TestUpdateBarcode_SameBarcodeRejected() {
	err := suite.service.UpdateBarcode(suite.context, "T-OLD", "T-OLD", models.ItemTypeTool)
	assert.ErrorIs(suite.T(), err, models.ErrBarcodeInUse)
}
