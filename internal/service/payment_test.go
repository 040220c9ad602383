package service

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/solobooks/solobooks/internal/api/dto"
	clientdomain "github.com/solobooks/solobooks/internal/domain/client"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/testutil"
	"github.com/solobooks/solobooks/internal/types"
)

type PaymentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service     PaymentService
	documentSvc DocumentService
	testData    struct {
		client *clientdomain.Client
	}
}

func TestPaymentService(t *testing.T) {
	suite.Run(t, new(PaymentServiceSuite))
}

func (s *PaymentServiceSuite) SetupTest() {
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
	s.service = NewPaymentService(params)
	s.documentSvc = NewDocumentService(params)

	s.testData.client = &clientdomain.Client{
		ID:        "client_test",
		Name:      "Acme Consulting",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ClientRepo.Create(s.GetContext(), s.testData.client))
}

// sentInvoice creates and sends an invoice of 100000 subtotal plus 8% tax,
// total 108000 cents
func (s *PaymentServiceSuite) sentInvoice() *dto.DocumentResponse {
	rate := decimal.NewFromInt(8)
	created, err := s.documentSvc.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: types.DocumentTypeInvoice,
		ClientID:     s.testData.client.ID,
		LineItems: []dto.LineItemRequest{
			{
				Description:    "Development sprint",
				Quantity:       decimal.NewFromInt(8),
				UnitPriceCents: 12500,
				TaxRatePercent: &rate,
			},
		},
	})
	s.NoError(err)
	s.Equal(int64(108000), created.TotalCents)

	_, err = s.documentSvc.FinalizeDocument(s.GetContext(), created.ID)
	s.NoError(err)
	sent, err := s.documentSvc.SendDocument(s.GetContext(), created.ID)
	s.NoError(err)
	return sent
}

func (s *PaymentServiceSuite) record(invoiceID string, amountCents int64) (*dto.RecordPaymentResponse, error) {
	return s.service.RecordPayment(s.GetContext(), dto.RecordPaymentRequest{
		InvoiceID:   invoiceID,
		PaymentDate: time.Now().UTC(),
		AmountCents: amountCents,
	})
}

func (s *PaymentServiceSuite) TestPaymentsDriveInvoiceStatus() {
	inv := s.sentInvoice()

	resp, err := s.record(inv.ID, 50000)
	s.NoError(err)
	s.Equal(types.DocumentStatusPartiallyPaid, resp.Invoice.DocumentStatus)
	s.Equal(int64(50000), resp.Invoice.AmountPaidCents)
	s.Equal(int64(58000), resp.Invoice.BalanceDueCents)
	s.Nil(resp.Invoice.PaidAt)

	resp, err = s.record(inv.ID, 58000)
	s.NoError(err)
	s.Equal(types.DocumentStatusPaid, resp.Invoice.DocumentStatus)
	s.Equal(int64(0), resp.Invoice.BalanceDueCents)
	s.NotNil(resp.Invoice.PaidAt)

	// fully settled, so voiding is allowed
	voided, err := s.documentSvc.VoidInvoice(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.DocumentStatusVoided, voided.DocumentStatus)
}

func (s *PaymentServiceSuite) TestVoidWithOutstandingBalanceFails() {
	inv := s.sentInvoice()

	_, err := s.record(inv.ID, 98000)
	s.NoError(err)

	_, err = s.documentSvc.VoidInvoice(s.GetContext(), inv.ID)
	s.True(ierr.IsInvalidOperation(err))

	got, err := s.documentSvc.GetDocument(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.DocumentStatusPartiallyPaid, got.DocumentStatus)
}

func (s *PaymentServiceSuite) TestOverpaymentRejected() {
	inv := s.sentInvoice()

	_, err := s.record(inv.ID, 108001)
	s.True(ierr.IsValidation(err))

	_, err = s.record(inv.ID, 100000)
	s.NoError(err)

	// second payment would exceed the remaining balance
	_, err = s.record(inv.ID, 8001)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentServiceSuite) TestPaymentAgainstQuoteRejected() {
	rate := decimal.NewFromInt(8)
	quote, err := s.documentSvc.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: types.DocumentTypeQuote,
		ClientID:     s.testData.client.ID,
		LineItems: []dto.LineItemRequest{
			{Description: "work", Quantity: decimal.NewFromInt(1), UnitPriceCents: 10000, TaxRatePercent: &rate},
		},
	})
	s.NoError(err)

	_, err = s.record(quote.ID, 1000)
	s.True(ierr.IsValidation(err))
}

func (s *PaymentServiceSuite) TestPaymentAgainstVoidedInvoiceRejected() {
	inv := s.sentInvoice()
	_, err := s.record(inv.ID, 108000)
	s.NoError(err)
	_, err = s.documentSvc.VoidInvoice(s.GetContext(), inv.ID)
	s.NoError(err)

	_, err = s.record(inv.ID, 1)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PaymentServiceSuite) TestPaymentNeverOverridesDraftStatus() {
	rate := decimal.NewFromInt(8)
	draft, err := s.documentSvc.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: types.DocumentTypeInvoice,
		ClientID:     s.testData.client.ID,
		LineItems: []dto.LineItemRequest{
			{Description: "work", Quantity: decimal.NewFromInt(1), UnitPriceCents: 10000, TaxRatePercent: &rate},
		},
	})
	s.NoError(err)

	resp, err := s.record(draft.ID, 5000)
	s.NoError(err)
	s.Equal(types.DocumentStatusDraft, resp.Invoice.DocumentStatus)
	s.Equal(int64(5000), resp.Invoice.AmountPaidCents)
}

func (s *PaymentServiceSuite) TestRemovePaymentRecomputesInvoice() {
	inv := s.sentInvoice()

	full, err := s.record(inv.ID, 108000)
	s.NoError(err)
	s.Equal(types.DocumentStatusPaid, full.Invoice.DocumentStatus)

	updated, err := s.service.RemovePayment(s.GetContext(), full.Payment.ID)
	s.NoError(err)
	s.Equal(types.DocumentStatusUnpaid, updated.DocumentStatus)
	s.Equal(int64(0), updated.AmountPaidCents)
	s.Equal(int64(108000), updated.BalanceDueCents)
	s.Nil(updated.PaidAt)

	// a removed payment is gone from the ledger
	_, err = s.service.RemovePayment(s.GetContext(), full.Payment.ID)
	s.True(ierr.IsNotFound(err))
}

func (s *PaymentServiceSuite) TestRemovePaymentOnVoidedInvoiceRejected() {
	inv := s.sentInvoice()
	full, err := s.record(inv.ID, 108000)
	s.NoError(err)
	_, err = s.documentSvc.VoidInvoice(s.GetContext(), inv.ID)
	s.NoError(err)

	_, err = s.service.RemovePayment(s.GetContext(), full.Payment.ID)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *PaymentServiceSuite) TestRemovePaymentOnArchivedInvoiceRejected() {
	inv := s.sentInvoice()
	full, err := s.record(inv.ID, 108000)
	s.NoError(err)
	_, err = s.documentSvc.ArchiveDocument(s.GetContext(), inv.ID)
	s.NoError(err)

	// the ledger is frozen, otherwise the archived invoice would fall back
	// to unpaid
	_, err = s.service.RemovePayment(s.GetContext(), full.Payment.ID)
	s.True(ierr.IsInvalidOperation(err))

	got, err := s.documentSvc.GetDocument(s.GetContext(), inv.ID)
	s.NoError(err)
	s.Equal(types.DocumentStatusPaid, got.DocumentStatus)
	s.NotNil(got.ArchivedAt)
}

func (s *PaymentServiceSuite) TestListPaymentsByInvoice() {
	inv := s.sentInvoice()
	other := s.sentInvoice()

	_, err := s.record(inv.ID, 10000)
	s.NoError(err)
	_, err = s.record(inv.ID, 20000)
	s.NoError(err)
	_, err = s.record(other.ID, 5000)
	s.NoError(err)

	resp, err := s.service.ListPayments(s.GetContext(), &types.PaymentFilter{InvoiceID: inv.ID})
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total)
	s.Len(resp.Items, 2)

	_, err = s.service.GetPayment(s.GetContext(), resp.Items[0].ID)
	s.NoError(err)
}
