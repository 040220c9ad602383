package types

import (
	ierr "github.com/solobooks/solobooks/internal/errors"
	"github.com/samber/lo"
)

// PaymentMethod records how a payment was received. Purely informational;
// the ledger treats all methods the same.
type PaymentMethod string

const (
	PaymentMethodBankTransfer PaymentMethod = "bank_transfer"
	PaymentMethodCard         PaymentMethod = "card"
	PaymentMethodCash         PaymentMethod = "cash"
	PaymentMethodCheque       PaymentMethod = "cheque"
	PaymentMethodOther        PaymentMethod = "other"
)

func (m PaymentMethod) String() string {
	return string(m)
}

func (m PaymentMethod) Validate() error {
	allowed := []PaymentMethod{
		PaymentMethodBankTransfer,
		PaymentMethodCard,
		PaymentMethodCash,
		PaymentMethodCheque,
		PaymentMethodOther,
	}
	if !lo.Contains(allowed, m) {
		return ierr.NewError("invalid payment method").
			WithHint("Please provide a valid payment method").
			WithReportableDetails(map[string]any{
				"allowed": allowed,
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}
