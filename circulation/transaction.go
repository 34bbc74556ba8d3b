package circulation

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionStatus is the lifecycle state of a loan. It only ever moves from Issued to Returned.
type TransactionStatus string

const (
	StatusIssued   TransactionStatus = "Issued"
	StatusReturned TransactionStatus = "Returned"
)

// Transaction records one copy of a book lent to one member.
// Transactions are never deleted, they are the financial history of the library.
type Transaction struct {
	ID         uuid.UUID
	BookID     uuid.UUID
	MemberID   uuid.UUID
	IssueDate  time.Time
	ReturnDate *time.Time
	FeeCharged decimal.Decimal
	IsReturned bool
	Status     TransactionStatus
}

// IsOpen reports whether the copy is still out.
func (t Transaction) IsOpen() bool {
	return !t.IsReturned
}

// TransactionDetails is a transaction joined with the names a report needs.
type TransactionDetails struct {
	Transaction
	BookTitle  string
	MemberName string
}

// TransactionQuery narrows a transaction listing. The zero value lists everything.
type TransactionQuery struct {
	MemberID *uuid.UUID
	BookID   *uuid.UUID
	OpenOnly bool
}

// TransactionsOfMember lists all transactions of one member.
func TransactionsOfMember(memberID uuid.UUID) TransactionQuery {
	return TransactionQuery{MemberID: &memberID}
}

// OpenTransactionsOfMember lists the books a member currently holds.
func OpenTransactionsOfMember(memberID uuid.UUID) TransactionQuery {
	return TransactionQuery{MemberID: &memberID, OpenOnly: true}
}

// ReturnReceipt summarizes a completed return.
type ReturnReceipt struct {
	TransactionID uuid.UUID
	BookID        uuid.UUID
	MemberID      uuid.UUID
	IssueDate     time.Time
	ReturnDate    time.Time
	Fee           decimal.Decimal
	DebtAfter     decimal.Decimal
}

// PaymentReceipt summarizes a recorded payment.
type PaymentReceipt struct {
	PaymentID  uuid.UUID
	MemberID   uuid.UUID
	Amount     decimal.Decimal
	DebtBefore decimal.Decimal
	DebtAfter  decimal.Decimal
	PaidAt     time.Time
}
