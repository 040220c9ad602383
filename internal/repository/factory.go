package repository

import (
	clientdomain "github.com/solobooks/solobooks/internal/domain/client"
	"github.com/solobooks/solobooks/internal/domain/document"
	"github.com/solobooks/solobooks/internal/domain/expense"
	"github.com/solobooks/solobooks/internal/domain/payment"
	"github.com/solobooks/solobooks/internal/domain/project"
	"github.com/solobooks/solobooks/internal/logger"
	"github.com/solobooks/solobooks/internal/postgres"
	pgrepo "github.com/solobooks/solobooks/internal/repository/postgres"
)

// Repositories bundles the storage collaborators the engine consumes
type Repositories struct {
	Document document.Repository
	Sequence document.NumberSequenceRepository
	Payment  payment.Repository
	Expense  expense.Repository
	Client   clientdomain.Repository
	Project  project.Repository
}

// NewRepositories wires the postgres implementations
func NewRepositories(client postgres.IClient, logger *logger.Logger) *Repositories {
	return &Repositories{
		Document: pgrepo.NewDocumentRepository(client, logger),
		Sequence: pgrepo.NewNumberSequenceRepository(client, logger),
		Payment:  pgrepo.NewPaymentRepository(client, logger),
		Expense:  pgrepo.NewExpenseRepository(client, logger),
		Client:   pgrepo.NewClientRepository(client, logger),
		Project:  pgrepo.NewProjectRepository(client, logger),
	}
}
