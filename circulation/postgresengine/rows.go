package postgresengine

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine/internal/adapters"
)

// The select builders cast ids and amounts to text, so the scanners read the same Go types from
// pgx and from database/sql.

func scanBook(rows adapters.DBRows) (circulation.Book, error) {
	var (
		book circulation.Book
		id   string
	)

	if err := rows.Scan(
		&id,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.TotalStock,
		&book.AvailableStock,
		&book.RegisteredAt,
	); err != nil {
		return circulation.Book{}, errors.Join(circulation.ErrScanFailed, err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return circulation.Book{}, errors.Join(circulation.ErrScanFailed, err)
	}

	book.ID = parsedID
	book.RegisteredAt = circulation.NormalizeTime(book.RegisteredAt)

	return book, nil
}

func scanMember(rows adapters.DBRows) (circulation.Member, error) {
	var (
		member circulation.Member
		id     string
		debt   string
	)

	if err := rows.Scan(
		&id,
		&member.Name,
		&member.Email,
		&member.Phone,
		&debt,
		&member.RegisteredAt,
	); err != nil {
		return circulation.Member{}, errors.Join(circulation.ErrScanFailed, err)
	}

	parsedID, err := uuid.Parse(id)
	if err != nil {
		return circulation.Member{}, errors.Join(circulation.ErrScanFailed, err)
	}

	outstandingDebt, err := decimal.NewFromString(debt)
	if err != nil {
		return circulation.Member{}, errors.Join(circulation.ErrScanFailed, err)
	}

	member.ID = parsedID
	member.OutstandingDebt = outstandingDebt
	member.RegisteredAt = circulation.NormalizeTime(member.RegisteredAt)

	return member, nil
}

// transactionRow holds the raw columns of transactionColumns.
type transactionRow struct {
	id         string
	bookID     string
	memberID   string
	issueDate  time.Time
	returnDate *time.Time
	feeCharged string
	isReturned bool
	status     string
}

func (r *transactionRow) destinations() []any {
	return []any{&r.id, &r.bookID, &r.memberID, &r.issueDate, &r.returnDate, &r.feeCharged, &r.isReturned, &r.status}
}

func (r *transactionRow) toTransaction() (circulation.Transaction, error) {
	id, idErr := uuid.Parse(r.id)
	bookID, bookIDErr := uuid.Parse(r.bookID)
	memberID, memberIDErr := uuid.Parse(r.memberID)
	fee, feeErr := decimal.NewFromString(r.feeCharged)

	if err := errors.Join(idErr, bookIDErr, memberIDErr, feeErr); err != nil {
		return circulation.Transaction{}, errors.Join(circulation.ErrScanFailed, err)
	}

	transaction := circulation.Transaction{
		ID:         id,
		BookID:     bookID,
		MemberID:   memberID,
		IssueDate:  circulation.NormalizeTime(r.issueDate),
		FeeCharged: fee,
		IsReturned: r.isReturned,
		Status:     circulation.TransactionStatus(r.status),
	}

	if r.returnDate != nil {
		returnDate := circulation.NormalizeTime(*r.returnDate)
		transaction.ReturnDate = &returnDate
	}

	return transaction, nil
}

func scanTransaction(rows adapters.DBRows) (circulation.Transaction, error) {
	var row transactionRow

	if err := rows.Scan(row.destinations()...); err != nil {
		return circulation.Transaction{}, errors.Join(circulation.ErrScanFailed, err)
	}

	return row.toTransaction()
}

func scanTransactionDetails(rows adapters.DBRows) (circulation.TransactionDetails, error) {
	var (
		row     transactionRow
		details circulation.TransactionDetails
	)

	destinations := append(row.destinations(), &details.BookTitle, &details.MemberName)
	if err := rows.Scan(destinations...); err != nil {
		return circulation.TransactionDetails{}, errors.Join(circulation.ErrScanFailed, err)
	}

	transaction, err := row.toTransaction()
	if err != nil {
		return circulation.TransactionDetails{}, err
	}

	details.Transaction = transaction

	return details, nil
}

func scanCount(rows adapters.DBRows) (int, error) {
	var count int

	if err := rows.Scan(&count); err != nil {
		return 0, errors.Join(circulation.ErrScanFailed, err)
	}

	return count, nil
}

func scanJournalEntry(rows adapters.DBRows) (circulation.JournalEntry, error) {
	var (
		entry    circulation.JournalEntry
		payload  string
		metadata string
	)

	if err := rows.Scan(&entry.SequenceNumber, &entry.EntryType, &entry.OccurredAt, &payload, &metadata); err != nil {
		return circulation.JournalEntry{}, errors.Join(circulation.ErrScanFailed, err)
	}

	entry.OccurredAt = circulation.NormalizeTime(entry.OccurredAt)
	entry.PayloadJSON = []byte(payload)
	entry.MetadataJSON = []byte(metadata)

	return entry, nil
}
