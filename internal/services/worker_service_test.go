package services

import (
	"context"
	"testing"

	"toolkeeper/internal/models"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type WorkerServiceTestSuite struct {
	suite.Suite
	workerRepo  *MockWorkerRepository
	lendingRepo *MockLendingRepository
	usageRepo   *MockUsageRepository
	cacheSvc    *MockCacheService
	service     WorkerService
	context     context.Context
}

func (suite *WorkerServiceTestSuite) SetupTest() {
	suite.workerRepo = new(MockWorkerRepository)
	suite.lendingRepo = new(MockLendingRepository)
	suite.usageRepo = new(MockUsageRepository)
	suite.cacheSvc = new(MockCacheService)
	suite.service = NewWorkerService(suite.workerRepo, suite.lendingRepo, suite.usageRepo, suite.cacheSvc)
	suite.context = context.Background()
}

func (suite *WorkerServiceTestSuite) TearDownTest() {
	suite.workerRepo.AssertExpectations(suite.T())
	suite.lendingRepo.AssertExpectations(suite.T())
	suite.usageRepo.AssertExpectations(suite.T())
	suite.cacheSvc.AssertExpectations(suite.T())
}

func TestWorkerServiceTestSuite(t *testing.T) {
	suite.Run(t, new(WorkerServiceTestSuite))
}

func (suite *WorkerServiceTestSuite) TestCreateWorker_Success() {
	worker := &models.Worker{Barcode: "W200", FirstName: "Ada", LastName: "Lovelace"}
	suite.workerRepo.On("Create", mock.Anything, worker).Return(nil)

	err := suite.service.CreateWorker(suite.context, worker)
	assert.NoError(suite.T(), err)
}

func (suite *WorkerServiceTestSuite) TestCreateWorker_NameRequired() {
	err := suite.service.CreateWorker(suite.context, &models.Worker{Barcode: "W200", FirstName: "Ada"})
	assert.Error(suite.T(), err)
}

// A worker still holding tools cannot be trashed; the holder of every open
// lending must stay resolvable.
func (suite *WorkerServiceTestSuite) TestDeleteWorker_BlockedByOpenLendings() {
	suite.workerRepo.On("ExistsActive", mock.Anything, "W200").Return(true, nil)
	suite.lendingRepo.On("CountOpenForWorker", mock.Anything, "W200").Return(2, nil)

	err := suite.service.DeleteWorker(suite.context, "W200")
	assert.ErrorIs(suite.T(), err, models.ErrHasOpenLending)
	suite.workerRepo.AssertNotCalled(suite.T(), "SoftDelete")
}

// Closed lendings in the history are no obstacle to trashing a worker.
func (suite *WorkerServiceTestSuite) TestDeleteWorker_PastLendingsAllowed() {
	suite.workerRepo.On("ExistsActive", mock.Anything, "W200").Return(true, nil)
	suite.lendingRepo.On("CountOpenForWorker", mock.Anything, "W200").Return(0, nil)
	suite.workerRepo.On("SoftDelete", mock.Anything, "W200").Return(nil)
	suite.cacheSvc.On("DeleteWorker", mock.Anything, "W200").Return(nil)

	err := suite.service.DeleteWorker(suite.context, "W200")
	assert.NoError(suite.T(), err)
}

func (suite *WorkerServiceTestSuite) TestListWorkers_IncludesLendingCounts() {
	workers := []*models.WorkerWithLendings{
		{Worker: models.Worker{Barcode: "W200", FirstName: "Ada", LastName: "Lovelace"}, ActiveLendings: 2},
		{Worker: models.Worker{Barcode: "W201", FirstName: "Alan", LastName: "Turing"}, ActiveLendings: 0},
	}
	suite.workerRepo.On("ListWithLendings", mock.Anything, 50, 0).Return(workers, nil)

	got, err := suite.service.ListWorkers(suite.context, 50, 0)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), got, 2)
	assert.Equal(suite.T(), 2, got[0].ActiveLendings)
	assert.Equal(suite.T(), "Ada Lovelace", got[0].FullName())
}

func (suite *WorkerServiceTestSuite) TestGetWorkerDetail_CountsBothLedgers() {
	worker := &models.Worker{Barcode: "W200", FirstName: "Ada", LastName: "Lovelace"}
	suite.cacheSvc.On("GetWorker", mock.Anything, "W200").Return(nil, nil)
	suite.workerRepo.On("GetByBarcode", mock.Anything, "W200").Return(worker, nil)
	suite.cacheSvc.On("SetWorker", mock.Anything, worker, cacheTTL).Return(nil)
	suite.lendingRepo.On("CountOpenForWorker", mock.Anything, "W200").Return(1, nil)
	suite.usageRepo.On("CountForWorker", mock.Anything, "W200").Return(4, nil)

	detail, err := suite.service.GetWorkerDetail(suite.context, "W200")
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), "Ada Lovelace", detail.FullName())
	assert.Equal(suite.T(), 1, detail.OpenLendings)
	assert.Equal(suite.T(), 4, detail.Withdrawals)
}

func (suite *WorkerServiceTestSuite) TestGetWorkerDetail_UnknownWorker() {
	suite.cacheSvc.On("GetWorker", mock.Anything, "W404").Return(nil, nil)
	suite.workerRepo.On("GetByBarcode", mock.Anything, "W404").Return(nil, pgx.ErrNoRows)

	_, err := suite.service.GetWorkerDetail(suite.context, "W404")
	assert.ErrorIs(suite.T(), err, models.ErrWorkerNotFound)
	suite.usageRepo.AssertNotCalled(suite.T(), "CountForWorker")
}

func (suite *WorkerServiceTestSuite) TestGetOpenLendings_UnknownWorker() {
	suite.workerRepo.On("ExistsActive", mock.Anything, "W404").Return(false, nil)

	_, err := suite.service.GetOpenLendings(suite.context, "W404")
	assert.ErrorIs(suite.T(), err, models.ErrWorkerNotFound)
}
