package circulation

import (
	"errors"
)

// ErrorKind is the closed classification every error returned by the library belongs to.
// Callers switch on the kind (or match sentinels with errors.Is), never on message text.
type ErrorKind int

const (
	// KindNone is reported for a nil error.
	KindNone ErrorKind = iota

	// KindNotFound means a referenced book, member, or transaction does not exist.
	KindNotFound

	// KindConflict means the request is well-formed but the current state forbids it.
	KindConflict

	// KindInvalidInput means the request itself is malformed.
	KindInvalidInput

	// KindStorageFailure means the persistence layer failed. Nothing was changed.
	KindStorageFailure
)

// String returns the kind's name for logs and metric labels.
func (k ErrorKind) String() string {
	switch k {
	case KindNone:
		return "none"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindInvalidInput:
		return "invalid_input"
	case KindStorageFailure:
		return "storage_failure"
	default:
		return "unknown"
	}
}

// Error is the concrete error type behind all sentinels of this package.
// An Error may have parents, so one failure can match several sentinels with errors.Is.
type Error struct {
	kind    ErrorKind
	msg     string
	parents []error
}

func newError(kind ErrorKind, msg string, parents ...error) *Error {
	return &Error{kind: kind, msg: msg, parents: parents}
}

// Error implements the error interface.
func (e *Error) Error() string {
	return e.msg
}

// Kind returns the classification of the error.
func (e *Error) Kind() ErrorKind {
	return e.kind
}

// Unwrap exposes the parent sentinels to errors.Is and errors.As.
func (e *Error) Unwrap() []error {
	return e.parents
}

// KindOf classifies any error returned by this library.
// Errors that carry no *Error at all (e.g., a canceled context surfacing from a driver) are
// reported as KindStorageFailure.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindNone
	}

	var circulationErr *Error
	if errors.As(err, &circulationErr) {
		return circulationErr.kind
	}

	return KindStorageFailure
}

// Business rule violations.
var (
	ErrBookUnavailable     = newError(KindConflict, "book is unavailable")
	ErrBookNotFound        = newError(KindNotFound, "book not found")
	ErrBookOutOfStock      = newError(KindConflict, "book is out of stock", ErrBookUnavailable)
	ErrMemberNotFound      = newError(KindNotFound, "member not found")
	ErrDebtLimitExceeded   = newError(KindConflict, "member outstanding debt has reached the debt limit")
	ErrTransactionNotFound = newError(KindNotFound, "transaction not found")
	ErrAlreadyReturned     = newError(KindConflict, "transaction is already returned")
	ErrPaymentExceedsDebt  = newError(KindConflict, "payment exceeds outstanding debt")
	ErrHasOpenTransactions = newError(KindConflict, "open transactions reference this record")
	ErrHasOutstandingDebt  = newError(KindConflict, "member has outstanding debt")
	ErrHasCreditBalance    = newError(KindConflict, "member has a credit balance")
	ErrStockBelowIssued    = newError(KindConflict, "total stock cannot drop below the number of issued copies")
	ErrDuplicateISBN       = newError(KindConflict, "a book with this isbn already exists")
	ErrDuplicateEmail      = newError(KindConflict, "a member with this email already exists")

	// errBookNotFoundForIssue is what issuing a missing book reports: not found, and unavailable.
	errBookNotFoundForIssue = newError(KindNotFound, "book not found", ErrBookNotFound, ErrBookUnavailable)
)

// Input validation failures.
var (
	ErrInvalidAmount    = newError(KindInvalidInput, "payment amount must be positive")
	ErrInvalidStock     = newError(KindInvalidInput, "stock must not be negative")
	ErrMissingTitle     = newError(KindInvalidInput, "title must not be empty")
	ErrMissingAuthor    = newError(KindInvalidInput, "author must not be empty")
	ErrMissingName      = newError(KindInvalidInput, "name must not be empty")
	ErrInvalidISBN      = newError(KindInvalidInput, "isbn must have 10 or 13 digits")
	ErrInvalidEmail     = newError(KindInvalidInput, "email address is not valid")
	ErrNothingToUpdate  = newError(KindInvalidInput, "update contains no changes")
	ErrInvalidPolicy    = newError(KindInvalidInput, "invalid circulation policy")
	ErrInvalidFilter    = newError(KindInvalidInput, "invalid journal filter")
	ErrInvalidPayload   = newError(KindInvalidInput, "journal payload json is not valid")
	ErrInvalidMetadata  = newError(KindInvalidInput, "journal metadata json is not valid")
	ErrEmptyEntryType   = newError(KindInvalidInput, "journal entry type must not be empty")
	ErrInvalidIsolation = newError(KindInvalidInput, "unsupported transaction isolation level")
)

// Storage failures. They are joined with the underlying driver error.
var (
	ErrNilDatabaseConnection = newError(KindStorageFailure, "database connection must not be nil")
	ErrBuildingQueryFailed   = newError(KindStorageFailure, "building the sql query failed")
	ErrBeginTxFailed         = newError(KindStorageFailure, "beginning the database transaction failed")
	ErrQueryFailed           = newError(KindStorageFailure, "database query failed")
	ErrExecFailed            = newError(KindStorageFailure, "database statement execution failed")
	ErrScanFailed            = newError(KindStorageFailure, "scanning a database row failed")
	ErrCommitFailed          = newError(KindStorageFailure, "committing the database transaction failed")
	ErrConcurrencyConflict   = newError(KindStorageFailure, "concurrent modification detected, the operation may be retried")
	ErrMarshalingFailed      = newError(KindStorageFailure, "marshaling a journal entry failed")
	ErrUnexpectedRowCount    = newError(KindStorageFailure, "statement affected an unexpected number of rows")
)
