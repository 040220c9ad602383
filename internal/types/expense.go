package types

import (
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/samber/lo"
)

// ExpenseBillingStatus tracks whether an expense has been passed through to a
// client invoice
type ExpenseBillingStatus string

const (
	// ExpenseBillingStatusUnbilled means the expense has not been put on any invoice
	ExpenseBillingStatusUnbilled ExpenseBillingStatus = "unbilled"
	// ExpenseBillingStatusBilled means the expense is linked to an invoice line item
	ExpenseBillingStatusBilled ExpenseBillingStatus = "billed"
	// ExpenseBillingStatusUserPaid means the consultant absorbed the cost themselves
	ExpenseBillingStatusUserPaid ExpenseBillingStatus = "user_paid"
)

func (s ExpenseBillingStatus) String() string {
	return string(s)
}

func (s ExpenseBillingStatus) Validate() error {
	allowed := []ExpenseBillingStatus{
		ExpenseBillingStatusUnbilled,
		ExpenseBillingStatusBilled,
		ExpenseBillingStatusUserPaid,
	}
	if !lo.Contains(allowed, s) {
		return ierr.NewError("invalid expense billing status").
			WithHint("Please provide a valid billing status").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
