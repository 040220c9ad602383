package service

import (
	"github.com/solobooks/solobooks/internal/config"
	clientdomain "github.com/solobooks/solobooks/internal/domain/client"
	"github.com/solobooks/solobooks/internal/domain/document"
	"github.com/solobooks/solobooks/internal/domain/expense"
	"github.com/solobooks/solobooks/internal/domain/payment"
	"github.com/solobooks/solobooks/internal/domain/project"
	"github.com/solobooks/solobooks/internal/logger"
	"github.com/solobooks/solobooks/internal/postgres"
)

// ServiceParams holds common dependencies for services
type ServiceParams struct {
	Logger *logger.Logger
	Config *config.Configuration
	DB     postgres.IClient

	// Repositories
	DocumentRepo document.Repository
	SequenceRepo document.NumberSequenceRepository
	PaymentRepo  payment.Repository
	ExpenseRepo  expense.Repository
	ClientRepo   clientdomain.Repository
	ProjectRepo  project.Repository
}
