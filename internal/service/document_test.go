package service

import (
	"sync"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/suite"

	"github.com/solobooks/solobooks/internal/api/dto"
	clientdomain "github.com/solobooks/solobooks/internal/domain/client"
	"github.com/solobooks/solobooks/internal/domain/project"
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/solobooks/solobooks/internal/testutil"
	"github.com/solobooks/solobooks/internal/types"
)

type DocumentServiceSuite struct {
	testutil.BaseServiceTestSuite
	service  DocumentService
	testData struct {
		client  *clientdomain.Client
		project *project.Project
	}
}

func TestDocumentService(t *testing.T) {
	suite.Run(t, new(DocumentServiceSuite))
}

func (s *DocumentServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewDocumentService(s.params())
	s.setupTestData()
}

func (s *DocumentServiceSuite) params() ServiceParams {
	return ServiceParams{
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
}

func (s *DocumentServiceSuite) setupTestData() {
	s.testData.client = &clientdomain.Client{
		ID:        "client_test",
		Name:      "Acme Consulting",
		Email:     "billing@acme.test",
		BaseModel: types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ClientRepo.Create(s.GetContext(), s.testData.client))

	s.testData.project = &project.Project{
		ID:              "proj_test",
		ClientID:        s.testData.client.ID,
		Name:            "Website Rebuild",
		DefaultPONumber: lo.ToPtr("PO-7781"),
		BaseModel:       types.GetDefaultBaseModel(s.GetContext()),
	}
	s.NoError(s.GetStores().ProjectRepo.Create(s.GetContext(), s.testData.project))
}

func (s *DocumentServiceSuite) createDocument(docType types.DocumentType, lines ...dto.LineItemRequest) *dto.DocumentResponse {
	resp, err := s.service.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: docType,
		ClientID:     s.testData.client.ID,
		LineItems:    lines,
	})
	s.NoError(err)
	return resp
}

func consultingLine() dto.LineItemRequest {
	rate := decimal.NewFromFloat(8.25)
	return dto.LineItemRequest{
		Description:    "Consulting hours",
		Quantity:       decimal.NewFromInt(10),
		UnitPriceCents: 15000,
		TaxRatePercent: &rate,
	}
}

func (s *DocumentServiceSuite) TestCreateDocumentComputesTotals() {
	resp := s.createDocument(types.DocumentTypeInvoice, consultingLine())

	s.Equal(types.DocumentStatusDraft, resp.DocumentStatus)
	s.Nil(resp.DocumentNumber)
	s.Equal(int64(150000), resp.SubtotalCents)
	s.Equal(int64(12375), resp.TaxTotalCents)
	s.Equal(int64(162375), resp.TotalCents)
	s.Equal(int64(162375), resp.BalanceDueCents)
	s.Len(resp.LineItems, 1)
	s.Equal(1, resp.LineItems[0].Position)
}

func (s *DocumentServiceSuite) TestCreateDocumentSnapshotsProjectPO() {
	resp, err := s.service.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: types.DocumentTypeQuote,
		ClientID:     s.testData.client.ID,
		ProjectID:    lo.ToPtr(s.testData.project.ID),
	})
	s.NoError(err)
	s.NotNil(resp.PONumber)
	s.Equal("PO-7781", *resp.PONumber)

	// an explicit PO number wins over the project default
	resp, err = s.service.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: types.DocumentTypeQuote,
		ClientID:     s.testData.client.ID,
		ProjectID:    lo.ToPtr(s.testData.project.ID),
		PONumber:     lo.ToPtr("PO-CUSTOM"),
	})
	s.NoError(err)
	s.Equal("PO-CUSTOM", *resp.PONumber)
}

func (s *DocumentServiceSuite) TestCreateDocumentUnknownClient() {
	_, err := s.service.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: types.DocumentTypeInvoice,
		ClientID:     "client_missing",
	})
	s.True(ierr.IsNotFound(err))
}

func (s *DocumentServiceSuite) TestCreateQuoteRejectsDueDate() {
	_, err := s.service.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: types.DocumentTypeQuote,
		ClientID:     s.testData.client.ID,
		DueDate:      lo.ToPtr(time.Now().UTC()),
	})
	s.True(ierr.IsValidation(err))
}

func (s *DocumentServiceSuite) TestFinalizeInvoice() {
	created := s.createDocument(types.DocumentTypeInvoice, consultingLine())

	resp, err := s.service.FinalizeDocument(s.GetContext(), created.ID)
	s.NoError(err)
	s.NotNil(resp.DocumentNumber)
	s.Equal("INV-0001", *resp.DocumentNumber)
	s.NotNil(resp.FinalizedAt)
	s.NotNil(resp.IssueDate)
	s.NotNil(resp.DueDate)
	s.Equal(
		resp.IssueDate.AddDate(0, 0, s.GetConfig().Billing.PaymentTermsDays),
		*resp.DueDate,
	)
	// finalize does not send
	s.Equal(types.DocumentStatusDraft, resp.DocumentStatus)
}

func (s *DocumentServiceSuite) TestFinalizeQuoteUsesQuotePrefix() {
	created := s.createDocument(types.DocumentTypeQuote, consultingLine())

	resp, err := s.service.FinalizeDocument(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal("QTE-0001", *resp.DocumentNumber)
}

func (s *DocumentServiceSuite) TestFinalizeTwiceFails() {
	created := s.createDocument(types.DocumentTypeInvoice, consultingLine())

	first, err := s.service.FinalizeDocument(s.GetContext(), created.ID)
	s.NoError(err)

	_, err = s.service.FinalizeDocument(s.GetContext(), created.ID)
	s.True(ierr.IsInvalidOperation(err))

	// the assigned number is untouched by the failed attempt
	got, err := s.service.GetDocument(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(*first.DocumentNumber, *got.DocumentNumber)
}

func (s *DocumentServiceSuite) TestFinalizeWithoutLineItemsFails() {
	created := s.createDocument(types.DocumentTypeInvoice)

	_, err := s.service.FinalizeDocument(s.GetContext(), created.ID)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *DocumentServiceSuite) TestConcurrentFinalizeAssignsDistinctNumbers() {
	const n = 8
	ids := make([]string, n)
	for i := 0; i < n; i++ {
		ids[i] = s.createDocument(types.DocumentTypeInvoice, consultingLine()).ID
	}

	var wg sync.WaitGroup
	numbers := make([]string, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			resp, err := s.service.FinalizeDocument(s.GetContext(), ids[i])
			if err == nil {
				numbers[i] = *resp.DocumentNumber
			}
		}(i)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, number := range numbers {
		s.NotEmpty(number)
		s.False(seen[number], "number %s assigned twice", number)
		seen[number] = true
	}
}

func (s *DocumentServiceSuite) TestSendRequiresFinalize() {
	created := s.createDocument(types.DocumentTypeInvoice, consultingLine())

	_, err := s.service.SendDocument(s.GetContext(), created.ID)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *DocumentServiceSuite) TestSendDocument() {
	created := s.createDocument(types.DocumentTypeInvoice, consultingLine())
	_, err := s.service.FinalizeDocument(s.GetContext(), created.ID)
	s.NoError(err)

	sent, err := s.service.SendDocument(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.DocumentStatusSent, sent.DocumentStatus)
	s.NotNil(sent.SentAt)

	// sending again is a no-op
	again, err := s.service.SendDocument(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(sent.SentAt.Unix(), again.SentAt.Unix())
}

func (s *DocumentServiceSuite) TestAcceptQuote() {
	created := s.createDocument(types.DocumentTypeQuote, consultingLine())

	resp, err := s.service.AcceptQuote(s.GetContext(), created.ID)
	s.NoError(err)
	s.Equal(types.DocumentStatusAccepted, resp.DocumentStatus)
	s.NotNil(resp.AcceptedAt)

	// accepted is terminal
	_, err = s.service.AcceptQuote(s.GetContext(), created.ID)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *DocumentServiceSuite) TestAcceptInvoiceFails() {
	created := s.createDocument(types.DocumentTypeInvoice, consultingLine())

	_, err := s.service.AcceptQuote(s.GetContext(), created.ID)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *DocumentServiceSuite) TestQuoteExpiresLazilyOnRead() {
	resp, err := s.service.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: types.DocumentTypeQuote,
		ClientID:     s.testData.client.ID,
		ExpiryDate:   lo.ToPtr(time.Now().UTC().AddDate(0, 0, -1)),
		LineItems:    []dto.LineItemRequest{consultingLine()},
	})
	s.NoError(err)
	s.Equal(types.DocumentStatusDraft, resp.DocumentStatus)

	got, err := s.service.GetDocument(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.DocumentStatusExpired, got.DocumentStatus)

	// and an expired quote cannot be accepted
	_, err = s.service.AcceptQuote(s.GetContext(), resp.ID)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *DocumentServiceSuite) TestAcceptedQuoteNeverExpires() {
	resp, err := s.service.CreateDocument(s.GetContext(), dto.CreateDocumentRequest{
		DocumentType: types.DocumentTypeQuote,
		ClientID:     s.testData.client.ID,
		ExpiryDate:   lo.ToPtr(time.Now().UTC().AddDate(0, 0, 1)),
		LineItems:    []dto.LineItemRequest{consultingLine()},
	})
	s.NoError(err)

	accepted, err := s.service.AcceptQuote(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.DocumentStatusAccepted, accepted.DocumentStatus)

	// expiry passing no longer changes anything
	got, err := s.service.GetDocument(s.GetContext(), resp.ID)
	s.NoError(err)
	s.Equal(types.DocumentStatusAccepted, got.DocumentStatus)
}

func (s *DocumentServiceSuite) TestArchiveQuote() {
	created := s.createDocument(types.DocumentTypeQuote, consultingLine())

	resp, err := s.service.ArchiveDocument(s.GetContext(), created.ID)
	s.NoError(err)
	s.NotNil(resp.ArchivedAt)

	_, err = s.service.ArchiveDocument(s.GetContext(), created.ID)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *DocumentServiceSuite) TestArchiveUnpaidInvoiceFails() {
	created := s.createDocument(types.DocumentTypeInvoice, consultingLine())

	_, err := s.service.ArchiveDocument(s.GetContext(), created.ID)
	s.True(ierr.IsInvalidOperation(err))
}

func (s *DocumentServiceSuite) TestUpdateDraftReplacesLineItems() {
	created := s.createDocument(types.DocumentTypeInvoice, consultingLine())

	resp, err := s.service.UpdateDocument(s.GetContext(), created.ID, dto.UpdateDocumentRequest{
		LineItems: &[]dto.LineItemRequest{
			{
				Description:    "Fixed fee",
				Quantity:       decimal.NewFromInt(1),
				UnitPriceCents: 50000,
			},
		},
	})
	s.NoError(err)
	s.Len(resp.LineItems, 1)
	s.Equal("Fixed fee", resp.LineItems[0].Description)
	s.Equal(int64(50000), resp.TotalCents)
	s.Equal(int64(0), resp.TaxTotalCents)
}

func (s *DocumentServiceSuite) TestUpdateLineItemsOutsideDraftFails() {
	created := s.createDocument(types.DocumentTypeInvoice, consultingLine())
	_, err := s.service.FinalizeDocument(s.GetContext(), created.ID)
	s.NoError(err)
	_, err = s.service.SendDocument(s.GetContext(), created.ID)
	s.NoError(err)

	_, err = s.service.UpdateDocument(s.GetContext(), created.ID, dto.UpdateDocumentRequest{
		LineItems: &[]dto.LineItemRequest{consultingLine()},
	})
	s.True(ierr.IsInvalidOperation(err))

	// notes stay editable after sending
	resp, err := s.service.UpdateDocument(s.GetContext(), created.ID, dto.UpdateDocumentRequest{
		Notes: lo.ToPtr("followed up by phone"),
	})
	s.NoError(err)
	s.Equal("followed up by phone", resp.Notes)
}

func (s *DocumentServiceSuite) TestListDocumentsFilters() {
	s.createDocument(types.DocumentTypeInvoice, consultingLine())
	s.createDocument(types.DocumentTypeInvoice, consultingLine())
	s.createDocument(types.DocumentTypeQuote, consultingLine())

	resp, err := s.service.ListDocuments(s.GetContext(), &types.DocumentFilter{
		DocumentType: types.DocumentTypeInvoice,
	})
	s.NoError(err)
	s.Equal(2, resp.Pagination.Total)
	s.Len(resp.Items, 2)

	resp, err = s.service.ListDocuments(s.GetContext(), &types.DocumentFilter{
		DocumentStatus: []types.DocumentStatus{types.DocumentStatusDraft},
	})
	s.NoError(err)
	s.Equal(3, resp.Pagination.Total)
}

func (s *DocumentServiceSuite) TestComputeTotalsIsPure() {
	rate := decimal.NewFromInt(10)
	resp, err := s.service.ComputeTotals(s.GetContext(), dto.ComputeTotalsRequest{
		LineItems: []dto.LineItemRequest{
			{Description: "a", Quantity: decimal.NewFromInt(1), UnitPriceCents: 3333, TaxRatePercent: &rate},
			{Description: "b", Quantity: decimal.NewFromInt(1), UnitPriceCents: 3333, TaxRatePercent: &rate},
			{Description: "c", Quantity: decimal.NewFromInt(1), UnitPriceCents: 3333, TaxRatePercent: &rate},
		},
	})
	s.NoError(err)
	s.Equal(int64(9999), resp.SubtotalCents)
	s.Equal(int64(999), resp.TaxTotalCents)
	s.Equal(int64(10998), resp.TotalCents)
	s.Len(resp.LineAmounts, 3)

	// nothing was persisted
	list, err := s.service.ListDocuments(s.GetContext(), nil)
	s.NoError(err)
	s.Equal(0, list.Pagination.Total)
}
