package testutil

import (
	"context"
	"time"

	"github.com/stretchr/testify/suite"

	"github.com/solobooks/solobooks/internal/config"
	clientdomain "github.com/solobooks/solobooks/internal/domain/client"
	"github.com/solobooks/solobooks/internal/domain/document"
	"github.com/solobooks/solobooks/internal/domain/expense"
	"github.com/solobooks/solobooks/internal/domain/payment"
	"github.com/solobooks/solobooks/internal/domain/project"
	"github.com/solobooks/solobooks/internal/logger"
	"github.com/solobooks/solobooks/internal/postgres"
	"github.com/solobooks/solobooks/internal/types"
	"github.com/solobooks/solobooks/internal/validator"
)

// Stores holds all the repository interfaces for testing
type Stores struct {
	DocumentRepo document.Repository
	SequenceRepo document.NumberSequenceRepository
	PaymentRepo  payment.Repository
	ExpenseRepo  expense.Repository
	ClientRepo   clientdomain.Repository
	ProjectRepo  project.Repository
}

// BaseServiceTestSuite provides common functionality for all service test
// suites
type BaseServiceTestSuite struct {
	suite.Suite
	ctx    context.Context
	stores Stores
	db     postgres.IClient
	logger *logger.Logger
	config *config.Configuration
	now    time.Time
}

// SetupSuite is called once before running the tests in the suite
func (s *BaseServiceTestSuite) SetupSuite() {
	validator.NewValidator()

	cfg := config.GetDefaultConfig()
	s.config = cfg

	var err error
	s.logger, err = logger.NewLogger(cfg)
	if err != nil {
		s.T().Fatalf("failed to create logger: %v", err)
	}
}

// SetupTest is called before each test
func (s *BaseServiceTestSuite) SetupTest() {
	s.setupContext()
	s.setupStores()
	s.now = time.Now().UTC()
}

// TearDownTest is called after each test
func (s *BaseServiceTestSuite) TearDownTest() {
	s.clearStores()
}

func (s *BaseServiceTestSuite) setupContext() {
	s.ctx = context.Background()
	s.ctx = context.WithValue(s.ctx, types.CtxTenantID, types.DefaultTenantID)
	s.ctx = context.WithValue(s.ctx, types.CtxUserID, types.DefaultUserID)
	s.ctx = context.WithValue(s.ctx, types.CtxRequestID, types.GenerateUUID())
}

func (s *BaseServiceTestSuite) setupStores() {
	s.stores = Stores{
		DocumentRepo: NewInMemoryDocumentStore(),
		SequenceRepo: NewInMemoryNumberSequenceStore(),
		PaymentRepo:  NewInMemoryPaymentStore(),
		ExpenseRepo:  NewInMemoryExpenseStore(),
		ClientRepo:   NewInMemoryClientStore(),
		ProjectRepo:  NewInMemoryProjectStore(),
	}
	s.db = NewMockPostgresClient(s.logger)
}

func (s *BaseServiceTestSuite) clearStores() {
	s.stores.DocumentRepo.(*InMemoryDocumentStore).Clear()
	s.stores.SequenceRepo.(*InMemoryNumberSequenceStore).Clear()
	s.stores.PaymentRepo.(*InMemoryPaymentStore).Clear()
	s.stores.ExpenseRepo.(*InMemoryExpenseStore).Clear()
	s.stores.ClientRepo.(*InMemoryClientStore).Clear()
	s.stores.ProjectRepo.(*InMemoryProjectStore).Clear()
}

func (s *BaseServiceTestSuite) ClearStores() {
	s.clearStores()
}

// GetContext returns the test context
func (s *BaseServiceTestSuite) GetContext() context.Context {
	return s.ctx
}

// GetConfig returns the test configuration
func (s *BaseServiceTestSuite) GetConfig() *config.Configuration {
	return s.config
}

// GetStores returns all test repositories
func (s *BaseServiceTestSuite) GetStores() Stores {
	return s.stores
}

// GetDB returns the test database client
func (s *BaseServiceTestSuite) GetDB() postgres.IClient {
	return s.db
}

// GetLogger returns the test logger
func (s *BaseServiceTestSuite) GetLogger() *logger.Logger {
	return s.logger
}

// GetNow returns the current test time
func (s *BaseServiceTestSuite) GetNow() time.Time {
	return s.now
}
