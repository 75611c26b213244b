package types

import (
	"strings"

	ierr "github.com/flexprice/invoicegen/internal/errors"
	"github.com/samber/lo"
)

// PaymentMethod is the closed set of ways an invoice can be settled
type PaymentMethod string

const (
	PaymentMethodCash       PaymentMethod = "Cash"
	PaymentMethodNetBanking PaymentMethod = "Net Banking"
	PaymentMethodUPI        PaymentMethod = "UPI"
	PaymentMethodCheque     PaymentMethod = "Cheque"
	PaymentMethodCreditCard PaymentMethod = "Credit Card"

	DefaultPaymentMethod = PaymentMethodNetBanking
)

var paymentMethods = []PaymentMethod{
	PaymentMethodCash,
	PaymentMethodNetBanking,
	PaymentMethodUPI,
	PaymentMethodCheque,
	PaymentMethodCreditCard,
}

func (p PaymentMethod) String() string {
	return string(p)
}

func (p PaymentMethod) Validate() error {
	if !lo.Contains(paymentMethods, p) {
		return ierr.NewErrorf("invalid payment method: %q", string(p)).
			WithHintf("Payment method must be one of: %s", strings.Join(lo.Map(paymentMethods, func(m PaymentMethod, _ int) string {
				return string(m)
			}), ", ")).
			WithReportableDetails(map[string]any{
				"paymentMethod": string(p),
			}).
			Mark(ierr.ErrValidation)
	}
	return nil
}

// ParsePaymentMethod resolves user input to a PaymentMethod. Matching ignores
// case and whitespace so "net banking" and "NetBanking" both resolve.
// An empty input resolves to the default.
func ParsePaymentMethod(raw string) (PaymentMethod, error) {
	if strings.TrimSpace(raw) == "" {
		return DefaultPaymentMethod, nil
	}

	normalized := normalizePaymentMethod(raw)
	for _, m := range paymentMethods {
		if normalizePaymentMethod(string(m)) == normalized {
			return m, nil
		}
	}

	return "", PaymentMethod(raw).Validate()
}

func normalizePaymentMethod(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}
