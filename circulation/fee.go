package circulation

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	defaultLoanPeriod = 7 * 24 * time.Hour
	defaultFeeUnit    = 24 * time.Hour
)

// FeeSchedule describes how overdue fees accrue.
//
// A loan is overdue once more than LoanPeriod has elapsed since issue. The fee is the overdue time
// measured in Units, multiplied by Rate, rounded to cents. With WholeUnitsOnly the unit count is
// floored first, so a partially elapsed unit costs nothing.
type FeeSchedule struct {
	LoanPeriod     time.Duration
	Unit           time.Duration
	Rate           decimal.Decimal
	WholeUnitsOnly bool
}

// DefaultFeeSchedule is a seven day loan period followed by 5.00 per day, prorated.
func DefaultFeeSchedule() FeeSchedule {
	return FeeSchedule{
		LoanPeriod: defaultLoanPeriod,
		Unit:       defaultFeeUnit,
		Rate:       decimal.NewFromInt(5),
	}
}

// Validate rejects schedules that cannot produce a meaningful fee.
func (fs FeeSchedule) Validate() error {
	if fs.LoanPeriod < 0 || fs.Unit <= 0 || fs.Rate.IsNegative() {
		return ErrInvalidPolicy
	}

	return nil
}

// Fee returns the fee owed for a loan issued at issuedAt and returned at returnedAt.
// Returning at or before the end of the loan period costs exactly zero.
func (fs FeeSchedule) Fee(issuedAt, returnedAt time.Time) decimal.Decimal {
	elapsed := NormalizeTime(returnedAt).Sub(NormalizeTime(issuedAt))
	if elapsed <= fs.LoanPeriod {
		return decimal.Zero
	}

	overdue := elapsed - fs.LoanPeriod

	var units decimal.Decimal
	if fs.WholeUnitsOnly {
		units = decimal.NewFromInt(int64(overdue / fs.Unit))
	} else {
		units = decimal.NewFromInt(int64(overdue)).Div(decimal.NewFromInt(int64(fs.Unit)))
	}

	return RoundMoney(units.Mul(fs.Rate))
}

// DueDate is the last instant a loan issued at issuedAt can be returned without a fee.
func (fs FeeSchedule) DueDate(issuedAt time.Time) time.Time {
	return NormalizeTime(issuedAt).Add(fs.LoanPeriod)
}
