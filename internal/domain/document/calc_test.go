package document

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	ierr "github.com/solobooks/solobooks/internal/errors"
)

func TestComputeLineItem(t *testing.T) {
	rate := decimal.NewFromFloat(8.25)

	amounts, err := ComputeLineItem(decimal.NewFromInt(10), 15000, &rate)
	require.NoError(t, err)
	assert.Equal(t, int64(150000), amounts.SubtotalCents)
	assert.Equal(t, int64(12375), amounts.TaxCents)
	assert.Equal(t, int64(162375), amounts.TotalCents)
}

func TestComputeLineItemNoTax(t *testing.T) {
	amounts, err := ComputeLineItem(decimal.NewFromFloat(2.5), 1000, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2500), amounts.SubtotalCents)
	assert.Equal(t, int64(0), amounts.TaxCents)
	assert.Equal(t, int64(2500), amounts.TotalCents)
}

func TestComputeLineItemRoundsHalfUp(t *testing.T) {
	// 1.5 * 1 cent = 1.5 cents, rounds to 2
	amounts, err := ComputeLineItem(decimal.NewFromFloat(1.5), 1, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(2), amounts.SubtotalCents)

	// tax of 0.5 cents rounds up as well: 10 cents at 5% = 0.5
	rate := decimal.NewFromInt(5)
	amounts, err = ComputeLineItem(decimal.NewFromInt(1), 10, &rate)
	require.NoError(t, err)
	assert.Equal(t, int64(1), amounts.TaxCents)
}

func TestComputeLineItemQuantityPrecision(t *testing.T) {
	// quantity beyond 4 decimals is rounded before multiplying
	amounts, err := ComputeLineItem(decimal.NewFromFloat(0.33335), 100000, nil)
	require.NoError(t, err)
	assert.Equal(t, int64(33340), amounts.SubtotalCents)
}

func TestComputeLineItemValidation(t *testing.T) {
	bad := decimal.NewFromInt(-1)
	over := decimal.NewFromInt(101)

	_, err := ComputeLineItem(decimal.NewFromInt(-1), 100, nil)
	assert.True(t, ierr.IsValidation(err))

	_, err = ComputeLineItem(decimal.NewFromInt(1), -100, nil)
	assert.True(t, ierr.IsValidation(err))

	_, err = ComputeLineItem(decimal.NewFromInt(1), 100, &bad)
	assert.True(t, ierr.IsValidation(err))

	_, err = ComputeLineItem(decimal.NewFromInt(1), 100, &over)
	assert.True(t, ierr.IsValidation(err))
}

func TestComputeDocumentTotalsSumsPerLine(t *testing.T) {
	// three identical lines whose tax rounds per line: 3333 * 10% = 333.3,
	// so the document tax is 3x333=999, not round(9999*10%)=1000
	rate := decimal.NewFromInt(10)
	var items []*LineItem
	for i := 0; i < 3; i++ {
		li := &LineItem{
			Position:       i + 1,
			Description:    "consulting",
			Quantity:       decimal.NewFromInt(1),
			UnitPriceCents: 3333,
			TaxRatePercent: &rate,
		}
		require.NoError(t, li.ApplyAmounts())
		items = append(items, li)
	}

	totals := ComputeDocumentTotals(items)
	assert.Equal(t, int64(9999), totals.SubtotalCents)
	assert.Equal(t, int64(999), totals.TaxTotalCents)
	assert.Equal(t, int64(10998), totals.TotalCents)
}

func TestComputeDocumentTotalsEmpty(t *testing.T) {
	totals := ComputeDocumentTotals(nil)
	assert.Equal(t, int64(0), totals.SubtotalCents)
	assert.Equal(t, int64(0), totals.TaxTotalCents)
	assert.Equal(t, int64(0), totals.TotalCents)
}

func TestApplyTotalsDerivesBalance(t *testing.T) {
	doc := &Document{AmountPaidCents: 500}
	li := &LineItem{
		Position:       1,
		Description:    "work",
		Quantity:       decimal.NewFromInt(1),
		UnitPriceCents: 2000,
	}
	require.NoError(t, li.ApplyAmounts())
	doc.LineItems = []*LineItem{li}

	doc.ApplyTotals()
	assert.Equal(t, int64(2000), doc.TotalCents)
	assert.Equal(t, int64(1500), doc.BalanceDueCents)
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "INV-0001", FormatNumber("INV-", 4, 1))
	assert.Equal(t, "QTE-0042", FormatNumber("QTE-", 4, 42))
	assert.Equal(t, "INV-12345", FormatNumber("INV-", 4, 12345))
	assert.Equal(t, "X-01", FormatNumber("X-", 2, 1))
}
