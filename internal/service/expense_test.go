package service

import (
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/solobooks/solobooks/internal/api/dto"
	clientdomain "github.com/solobooks/solobooks/internal/domain/client"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/testutil"
	"github.com/solobooks/solobooks/internal/types"
)

type ExpenseServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     ExpenseService
	documentSvc DocumentService
	testData    struct {
		client *clientdomain.Client
	}
}

func TestExpenseService(t *testing.T) {
	suite.Run(t, new(ExpenseServiceSuite))
}

func (s *ExpenseServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()

	params := ServiceParams{
		Logger:       s.GetLogger(),
		Config:       s.GetConfig(),
		DB:           s.GetDB(),
		DocumentRepo: s.GetStores().DocumentRepo,
		SequenceRepo: s.GetStores().SequenceRepo,
		PaymentRepo:  s.GetStores().PaymentRepo,
		ExpenseRepo:  s.GetStores().ExpenseRepo,
		ClientRepo:   s.GetStores().ClientRepo,
		ProjectRepo:  s.GetStores().ProjectRepo,
	}
	s.service = NewExpenseService(params)
	s.documentSvc = NewDocumentService(params)

	s.testData.client = &clientdomain.Client{
		ID:        "client_test",
		Name:      "Acme Consulting",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ClientRepo.Create(s.GetContext(), s.testData.client))
}

func (s *ExpenseServiceSuite) createExpense(description string, amountCents int64, billable bool) *dto.ExpenseResponse {
	resp, err := s.service.CreateExpense(s.GetContext(), dto.CreateExpenseRequest{
		Description:      description,
		ExpenseDate:      time.Now().UTC(),
		TotalAmountCents: amountCents,
		Billable:         billable,
	})
	s.NoError(err)
	return resp
}

func (s *ExpenseServiceSuite) draftInvoice() *dto.DocumentResponse {
	invoice, err := s.documentSvc.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: types.DocumentTypeInvoice,
		ClientID:     s.testData.client.ID,
		LineItems: []dto.LineItemRequest{
			{Description: "Consulting", Quantity: decimal.NewFromInt(1), UnitPriceCents: 50000},
		},
	})
	s.NoError(err)
	return invoice
}

func (s *ExpenseServiceSuite) TestCreateExpense() {
	resp := s.createExpense("Rail ticket", 4500, true)
	s.Equal(types.ExpenseBillingStatusUnbilled, resp.BillingStatus)
	s.Nil(resp.LinkedInvoiceID)

	_, err := s.service.CreateExpense(s.GetContext(), dto.CreateExpenseRequest{
		Description:      "bad",
		ExpenseDate:      time.Now().UTC(),
		TotalAmountCents: 0,
	})
	s.True(ierr.IsValidation(err))
}

func (s *ExpenseServiceSuite) TestAddExpensesToInvoice() {
	invoice := s.draftInvoice()
	travel := s.createExpense("Rail ticket", 4500, true)
	hotel := s.createExpense("Hotel", 22000, true)

	resp, err := s.service.AddExpensesToInvoice(s.GetContext(), dto.AddExpensesToInvoiceRequest{
		InvoiceID:  invoice.ID,
		ExpenseIDs: []string{travel.ID, hotel.ID},
	})
	s.NoError(err)
	s.Empty(resp.Conflicts)
	s.ElementsMatch([]string{travel.ID, hotel.ID}, resp.LinkedExpenseIDs)

	// one quantity-one line per expense, appended after the existing line
	s.Require().Len(resp.Invoice.LineItems, 3)
	line := resp.Invoice.LineItems[1]
	s.Equal("Rail ticket", line.Description)
	s.True(line.Quantity.Equal(decimal.NewFromInt(1)))
	s.Equal(int64(4500), line.UnitPriceCents)
	s.Require().NotNil(line.ExpenseID)
	s.Equal(travel.ID, *line.ExpenseID)
	s.Equal(2, line.Position)

	s.Equal(int64(50000+4500+22000), resp.Invoice.TotalCents)

	got, err := s.service.GetExpense(s.GetContext(), travel.ID)
	s.NoError(err)
	s.Equal(types.ExpenseBillingStatusBilled, got.BillingStatus)
	s.Require().NotNil(got.LinkedInvoiceID)
	s.Equal(invoice.ID, *got.LinkedInvoiceID)
}

func (s *ExpenseServiceSuite) TestAddExpensesReportsPerItemConflicts() {
	invoice := s.draftInvoice()
	ok := s.createExpense("Rail ticket", 4500, true)
	personal := s.createExpense("Lunch", 1500, false)

	settled := s.createExpense("Parking", 800, true)
	_, err := s.service.MarkExpenseUserPaid(s.GetContext(), settled.ID)
	s.NoError(err)

	resp, err := s.service.AddExpensesToInvoice(s.GetContext(), dto.AddExpensesToInvoiceRequest{
		InvoiceID:  invoice.ID,
		ExpenseIDs: []string{ok.ID, personal.ID, "exp_missing", settled.ID},
	})
	s.NoError(err)

	// the eligible subset committed, the rest came back as conflicts
	s.Equal([]string{ok.ID}, resp.LinkedExpenseIDs)
	s.Len(resp.Conflicts, 3)
	reasons := lo.SliceToMap(resp.Conflicts, func(c dto.ExpenseConflict) (string, string) {
		return c.ExpenseID, c.Reason
	})
	s.Contains(reasons[personal.ID], "not billable")
	s.Contains(reasons["exp_missing"], "not found")
	s.Contains(reasons[settled.ID], "paid by the user")

	s.Equal(int64(50000+4500), resp.Invoice.TotalCents)
}

func (s *ExpenseServiceSuite) TestRebillingIsAConflict() {
	first := s.draftInvoice()
	second := s.draftInvoice()
	travel := s.createExpense("Rail ticket", 4500, true)

	_, err := s.service.AddExpensesToInvoice(s.GetContext(), dto.AddExpensesToInvoiceRequest{
		InvoiceID:  first.ID,
		ExpenseIDs: []string{travel.ID},
	})
	s.NoError(err)

	resp, err := s.service.AddExpensesToInvoice(s.GetContext(), dto.AddExpensesToInvoiceRequest{
		InvoiceID:  second.ID,
		ExpenseIDs: []string{travel.ID},
	})
	s.NoError(err)
	s.Empty(resp.LinkedExpenseIDs)
	s.Require().Len(resp.Conflicts, 1)
	s.Contains(resp.Conflicts[0].Reason, "already billed")
}

func (s *ExpenseServiceSuite) TestDuplicateExpenseIDInBatchBillsOnce() {
	invoice := s.draftInvoice()
	travel := s.createExpense("Rail ticket", 10000, true)

	resp, err := s.service.AddExpensesToInvoice(s.GetContext(), dto.AddExpensesToInvoiceRequest{
		InvoiceID:  invoice.ID,
		ExpenseIDs: []string{travel.ID, travel.ID},
	})
	s.NoError(err)

	// billed exactly once, the repeat surfaces as a conflict
	s.Equal([]string{travel.ID}, resp.LinkedExpenseIDs)
	s.Require().Len(resp.Conflicts, 1)
	s.Equal(travel.ID, resp.Conflicts[0].ExpenseID)
	s.Contains(resp.Conflicts[0].Reason, "already billed")

	s.Require().Len(resp.Invoice.LineItems, 2)
	s.Equal(int64(50000+10000), resp.Invoice.TotalCents)
}

func (s *ExpenseServiceSuite) TestAddExpensesRequiresDraftInvoice() {
	invoice := s.draftInvoice()
	_, err := s.documentSvc.FinalizeDocument(s.GetContext(), invoice.ID)
	s.NoError(err)
	_, err = s.documentSvc.SendDocument(s.GetContext(), invoice.ID)
	s.NoError(err)

	travel := s.createExpense("Rail ticket", 4500, true)
	_, err = s.service.AddExpensesToInvoice(s.GetContext(), dto.AddExpensesToInvoiceRequest{
		InvoiceID:  invoice.ID,
		ExpenseIDs: []string{travel.ID},
	})
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ExpenseServiceSuite) TestAddExpensesToQuoteRejected() {
	quote, err := s.documentSvc.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: types.DocumentTypeQuote,
		ClientID:     s.testData.client.ID,
	})
	s.NoError(err)

	travel := s.createExpense("Rail ticket", 4500, true)
	_, err = s.service.AddExpensesToInvoice(s.GetContext(), dto.AddExpensesToInvoiceRequest{
		InvoiceID:  quote.ID,
		ExpenseIDs: []string{travel.ID},
	})
	s.True(ierr.IsValidation(err))
}

func (s *ExpenseServiceSuite) TestMarkExpenseUserPaid() {
	exp := s.createExpense("Parking", 800, true)

	resp, err := s.service.MarkExpenseUserPaid(s.GetContext(), exp.ID)
	s.NoError(err)
	s.Equal(types.ExpenseBillingStatusUserPaid, resp.BillingStatus)

	// a billed expense cannot be marked user paid
	invoice := s.draftInvoice()
	travel := s.createExpense("Rail ticket", 4500, true)
	_, err = s.service.AddExpensesToInvoice(s.GetContext(), dto.AddExpensesToInvoiceRequest{
		InvoiceID:  invoice.ID,
		ExpenseIDs: []string{travel.ID},
	})
	s.NoError(err)

	_, err = s.service.MarkExpenseUserPaid(s.GetContext(), travel.ID)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ExpenseServiceSuite) TestUnlinkExpense() {
	invoice := s.draftInvoice()
	travel := s.createExpense("Rail ticket", 4500, true)

	_, err := s.service.AddExpensesToInvoice(s.GetContext(), dto.AddExpensesToInvoiceRequest{
		InvoiceID:  invoice.ID,
		ExpenseIDs: []string{travel.ID},
	})
	s.NoError(err)

	resp, err := s.service.UnlinkExpense(s.GetContext(), travel.ID)
	s.NoError(err)
	s.Equal(types.ExpenseBillingStatusUnbilled, resp.BillingStatus)
	s.Nil(resp.LinkedInvoiceID)

	got, err := s.documentSvc.GetDocument(s.GetContext(), invoice.ID)
	s.NoError(err)
	s.Len(got.LineItems, 1)
	s.Equal(int64(50000), got.TotalCents)

	// unlinking twice fails
	_, err = s.service.UnlinkExpense(s.GetContext(), travel.ID)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *ExpenseServiceSuite) TestListExpensesByBillingStatus() {
	s.createExpense("Rail ticket", 4500, true)
	s.createExpense("Hotel", 22000, true)
	settled := s.createExpense("Parking", 800, true)
	_, err := s.service.MarkExpenseUserPaid(s.GetContext(), settled.ID)
	s.NoError(err)

	resp, err := s.service.ListExpenses(s.GetContext(), &types.ExpenseFilter{
		BillingStatus: types.ExpenseBillingStatusUnbilled,
	})
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total)

	resp, err = s.service.ListExpenses(s.GetContext(), &types.ExpenseFilter{
		BillingStatus: types.ExpenseBillingStatusUserPaid,
	})
	s.NoError(err)
	s.Equal(1, resp.Pagination.Total)
}
