package circulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PaymentCommand asks to reduce a member's outstanding debt.
type PaymentCommand struct {
	PaymentID  uuid.UUID
	MemberID   uuid.UUID
	Amount     decimal.Decimal
	OccurredAt time.Time
}

// BuildPaymentCommand creates a PaymentCommand with a fresh payment id.
func BuildPaymentCommand(memberID uuid.UUID, amount decimal.Decimal, occurredAt time.Time) PaymentCommand {
	return PaymentCommand{
		PaymentID:  uuid.Must(uuid.NewV7()),
		MemberID:   memberID,
		Amount:     amount,
		OccurredAt: NormalizeTime(occurredAt),
	}
}

// PaymentOutcome is the state to persist after a successful payment.
type PaymentOutcome struct {
	Member  Member
	Receipt PaymentReceipt
}

// DecidePayment applies a payment to the locked member row.
//
//	ERROR: ErrInvalidAmount if the amount, rounded to cents, is not positive (checked first)
//	ERROR: ErrMemberNotFound if the member does not exist
//	ERROR: ErrPaymentExceedsDebt if it would leave a credit balance and the policy forbids that
func DecidePayment(member *Member, command PaymentCommand, policy Policy) (PaymentOutcome, error) {
	amount := RoundMoney(command.Amount)
	if !amount.IsPositive() {
		return PaymentOutcome{}, ErrInvalidAmount
	}

	if member == nil {
		return PaymentOutcome{}, ErrMemberNotFound
	}

	if amount.GreaterThan(member.OutstandingDebt) && !policy.AllowCreditBalance {
		return PaymentOutcome{}, ErrPaymentExceedsDebt
	}

	updated := *member
	updated.OutstandingDebt = RoundMoney(member.OutstandingDebt.Sub(amount))

	return PaymentOutcome{
		Member: updated,
		Receipt: PaymentReceipt{
			PaymentID:  command.PaymentID,
			MemberID:   member.ID,
			Amount:     amount,
			DebtBefore: member.OutstandingDebt,
			DebtAfter:  updated.OutstandingDebt,
			PaidAt:     NormalizeTime(command.OccurredAt),
		},
	}, nil
}
