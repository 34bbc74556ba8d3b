package circulation

import (
	"time"

	"github.com/google/uuid"
)

// ReturnCommand asks to close an open transaction.
type ReturnCommand struct {
	TransactionID uuid.UUID
	OccurredAt    time.Time
}

// BuildReturnCommand creates a ReturnCommand.
func BuildReturnCommand(transactionID uuid.UUID, occurredAt time.Time) ReturnCommand {
	return ReturnCommand{
		TransactionID: transactionID,
		OccurredAt:    NormalizeTime(occurredAt),
	}
}

// ReturnOutcome is the state to persist after a successful return.
type ReturnOutcome struct {
	Transaction Transaction
	Book        Book
	Member      Member
	Receipt     ReturnReceipt
}

// DecideReturn closes a transaction, charging the overdue fee to the member and putting the copy
// back on the shelf.
//
//	ERROR: ErrTransactionNotFound if the transaction does not exist
//	ERROR: ErrAlreadyReturned if it was returned before
//	ERROR: ErrBookNotFound / ErrMemberNotFound if a referenced row vanished
//
// Available stock never rises above total stock.
func DecideReturn(
	transaction *Transaction,
	book *Book,
	member *Member,
	command ReturnCommand,
	fees FeeSchedule,
) (ReturnOutcome, error) {

	if transaction == nil {
		return ReturnOutcome{}, ErrTransactionNotFound
	}

	if transaction.IsReturned {
		return ReturnOutcome{}, ErrAlreadyReturned
	}

	if book == nil {
		return ReturnOutcome{}, ErrBookNotFound
	}

	if member == nil {
		return ReturnOutcome{}, ErrMemberNotFound
	}

	returnedAt := NormalizeTime(command.OccurredAt)
	fee := fees.Fee(transaction.IssueDate, returnedAt)

	closed := *transaction
	closed.ReturnDate = &returnedAt
	closed.FeeCharged = fee
	closed.IsReturned = true
	closed.Status = StatusReturned

	updatedBook := *book
	updatedBook.AvailableStock = min(updatedBook.AvailableStock+1, updatedBook.TotalStock)

	updatedMember := *member
	updatedMember.OutstandingDebt = RoundMoney(member.OutstandingDebt.Add(fee))

	return ReturnOutcome{
		Transaction: closed,
		Book:        updatedBook,
		Member:      updatedMember,
		Receipt: ReturnReceipt{
			TransactionID: closed.ID,
			BookID:        closed.BookID,
			MemberID:      closed.MemberID,
			IssueDate:     closed.IssueDate,
			ReturnDate:    returnedAt,
			Fee:           fee,
			DebtAfter:     updatedMember.OutstandingDebt,
		},
	}, nil
}
