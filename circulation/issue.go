package circulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// IssueCommand asks to lend one copy of a book to a member.
type IssueCommand struct {
	TransactionID uuid.UUID
	BookID        uuid.UUID
	MemberID      uuid.UUID
	OccurredAt    time.Time
}

// BuildIssueCommand creates an IssueCommand with a fresh transaction id.
func BuildIssueCommand(bookID, memberID uuid.UUID, occurredAt time.Time) IssueCommand {
	return IssueCommand{
		TransactionID: uuid.Must(uuid.NewV7()),
		BookID:        bookID,
		MemberID:      memberID,
		OccurredAt:    NormalizeTime(occurredAt),
	}
}

// IssueOutcome is the state to persist after a successful issue.
type IssueOutcome struct {
	Book        Book
	Transaction Transaction
}

// DecideIssue decides whether a copy may be lent, based on the locked book and member rows.
// Nil pointers mean the row does not exist. The first failing rule wins:
//
//	ERROR: ErrBookUnavailable if the book does not exist (also ErrBookNotFound)
//	ERROR: ErrBookUnavailable if no copy is available (also ErrBookOutOfStock)
//	ERROR: ErrMemberNotFound if the member does not exist
//	ERROR: ErrDebtLimitExceeded if the member's debt is at or above the debt limit
func DecideIssue(book *Book, member *Member, command IssueCommand, policy Policy) (IssueOutcome, error) {
	if book == nil {
		return IssueOutcome{}, errBookNotFoundForIssue
	}

	if book.AvailableStock <= 0 {
		return IssueOutcome{}, ErrBookOutOfStock
	}

	if member == nil {
		return IssueOutcome{}, ErrMemberNotFound
	}

	if member.OutstandingDebt.GreaterThanOrEqual(policy.DebtLimit) {
		return IssueOutcome{}, ErrDebtLimitExceeded
	}

	updatedBook := *book
	updatedBook.AvailableStock--

	return IssueOutcome{
		Book: updatedBook,
		Transaction: Transaction{
			ID:         command.TransactionID,
			BookID:     book.ID,
			MemberID:   member.ID,
			IssueDate:  NormalizeTime(command.OccurredAt),
			FeeCharged: decimal.Zero,
			Status:     StatusIssued,
		},
	}, nil
}
