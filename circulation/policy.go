package circulation

import (
	"github.com/shopspring/decimal"
)

// Policy holds the configurable business rules of the library.
type Policy struct {
	// DebtLimit blocks issuing to members whose outstanding debt has reached it (inclusive).
	DebtLimit decimal.Decimal

	// Fees is the overdue fee schedule applied on return.
	Fees FeeSchedule

	// AllowCreditBalance lets payments exceed the outstanding debt, leaving a negative balance.
	// When false such payments are rejected with ErrPaymentExceedsDebt.
	AllowCreditBalance bool

	// ClampStockShrink lets total stock drop below the number of issued copies, clamping the
	// available stock at zero. When false such updates are rejected with ErrStockBelowIssued.
	ClampStockShrink bool
}

// DefaultPolicy returns a debt limit of 500.00, the default fee schedule, no credit balances and
// no silent clamping of stock.
func DefaultPolicy() Policy {
	return Policy{
		DebtLimit: decimal.NewFromInt(500),
		Fees:      DefaultFeeSchedule(),
	}
}

// Validate checks that the policy is usable.
func (p Policy) Validate() error {
	if p.DebtLimit.IsNegative() {
		return ErrInvalidPolicy
	}

	return p.Fees.Validate()
}
