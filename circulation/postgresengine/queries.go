package postgresengine

import (
	"errors"
	"strings"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres" // driver import
	"github.com/doug-martin/goqu/v9/exp"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

const (
	dialectPostgres = "postgres"

	tableBooks        = "books"
	tableMembers      = "members"
	tableTransactions = "transactions"
	tableJournal      = "circulation_journal"

	aliasTransaction = "t"
	aliasBook        = "b"
	aliasMember      = "m"

	colID              = "id"
	colTitle           = "title"
	colAuthor          = "author"
	colISBN            = "isbn"
	colTotalStock      = "total_stock"
	colAvailableStock  = "available_stock"
	colRegisteredAt    = "registered_at"
	colRemovedAt       = "removed_at"
	colName            = "name"
	colEmail           = "email"
	colPhone           = "phone"
	colOutstandingDebt = "outstanding_debt"
	colBookID          = "book_id"
	colMemberID        = "member_id"
	colIssueDate       = "issue_date"
	colReturnDate      = "return_date"
	colFeeCharged      = "fee_charged"
	colIsReturned      = "is_returned"
	colStatus          = "status"
	colSequenceNumber  = "sequence_number"
	colEntryType       = "entry_type"
	colOccurredAt      = "occurred_at"
	colPayload         = "payload"
	colMetadata        = "metadata"

	typeText      = "TEXT"
	castJsonb     = "?::jsonb"
	jsonbContains = "? @> ?::jsonb"
	likeWildcard  = "%"
)

// Log actions for executed SQL.
const (
	logActionSelectBook         = "select book"
	logActionSelectBooks        = "select books"
	logActionInsertBook         = "insert book"
	logActionUpdateBook         = "update book"
	logActionRemoveBook         = "remove book"
	logActionSelectMember       = "select member"
	logActionSelectMembers      = "select members"
	logActionInsertMember       = "insert member"
	logActionUpdateMember       = "update member"
	logActionRemoveMember       = "remove member"
	logActionSelectTransaction  = "select transaction"
	logActionSelectTransactions = "select transactions"
	logActionInsertTransaction  = "insert transaction"
	logActionCloseTransaction   = "close transaction"
	logActionCountOpen          = "count open transactions"
	logActionAppendJournal      = "append journal entry"
	logActionQueryJournal       = "query journal"
	logActionCreateSchema       = "create schema"
)

var builder = goqu.Dialect(dialectPostgres)

var errMissingReturnDate = errors.New("closing a transaction requires a return date")

var predicateJSON = jsoniter.ConfigFastest

// rowLookup says how a single row is read.
type rowLookup struct {
	forUpdate      bool
	includeRemoved bool
}

var (
	readActive = rowLookup{}
	lockActive = rowLookup{forUpdate: true}
	lockAny    = rowLookup{forUpdate: true, includeRemoved: true}
)

func (rl rowLookup) apply(stmt *goqu.SelectDataset) *goqu.SelectDataset {
	if !rl.includeRemoved {
		stmt = stmt.Where(goqu.C(colRemovedAt).IsNull())
	}

	if rl.forUpdate {
		stmt = stmt.ForUpdate(exp.Wait)
	}

	return stmt
}

func toSQL(stmt interface{ ToSQL() (string, []any, error) }) (string, error) {
	sqlQuery, _, toSQLErr := stmt.ToSQL()
	if toSQLErr != nil {
		return "", errors.Join(circulation.ErrBuildingQueryFailed, toSQLErr)
	}

	return sqlQuery, nil
}

// nullIfEmpty stores an empty optional text column as NULL.
func nullIfEmpty(s string) any {
	if s == "" {
		return nil
	}

	return s
}

// escapeLike escapes the LIKE wildcards in a user supplied search term.
func escapeLike(term string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(term)
}

// === Books ===

func bookColumns() []any {
	return []any{
		goqu.Cast(goqu.C(colID), typeText),
		goqu.C(colTitle),
		goqu.C(colAuthor),
		goqu.COALESCE(goqu.C(colISBN), ""),
		goqu.C(colTotalStock),
		goqu.C(colAvailableStock),
		goqu.C(colRegisteredAt),
	}
}

func buildSelectBookQuery(id uuid.UUID, lookup rowLookup) (string, error) {
	stmt := builder.
		From(tableBooks).
		Select(bookColumns()...).
		Where(goqu.Ex{colID: id.String()})

	return toSQL(lookup.apply(stmt))
}

// buildSelectBooksQuery lists active books by title. A non-empty term keeps the books whose title
// or author contains it, ignoring case.
func buildSelectBooksQuery(term string) (string, error) {
	stmt := builder.
		From(tableBooks).
		Select(bookColumns()...).
		Where(goqu.C(colRemovedAt).IsNull()).
		Order(goqu.C(colTitle).Asc(), goqu.C(colID).Asc())

	if term = strings.TrimSpace(term); term != "" {
		pattern := likeWildcard + escapeLike(term) + likeWildcard
		stmt = stmt.Where(goqu.Or(
			goqu.C(colTitle).ILike(pattern),
			goqu.C(colAuthor).ILike(pattern),
		))
	}

	return toSQL(stmt)
}

func buildInsertBookQuery(book circulation.Book) (string, error) {
	stmt := builder.
		Insert(tableBooks).
		Rows(goqu.Record{
			colID:             book.ID.String(),
			colTitle:          book.Title,
			colAuthor:         book.Author,
			colISBN:           nullIfEmpty(book.ISBN),
			colTotalStock:     book.TotalStock,
			colAvailableStock: book.AvailableStock,
			colRegisteredAt:   book.RegisteredAt,
		})

	return toSQL(stmt)
}

func buildUpdateBookQuery(book circulation.Book) (string, error) {
	stmt := builder.
		Update(tableBooks).
		Set(goqu.Record{
			colTitle:          book.Title,
			colAuthor:         book.Author,
			colISBN:           nullIfEmpty(book.ISBN),
			colTotalStock:     book.TotalStock,
			colAvailableStock: book.AvailableStock,
		}).
		Where(goqu.Ex{colID: book.ID.String()})

	return toSQL(stmt)
}

// buildUpdateBookStockQuery writes only the available stock, as issue and return do.
func buildUpdateBookStockQuery(book circulation.Book) (string, error) {
	stmt := builder.
		Update(tableBooks).
		Set(goqu.Record{colAvailableStock: book.AvailableStock}).
		Where(goqu.Ex{colID: book.ID.String()})

	return toSQL(stmt)
}

func buildRemoveBookQuery(id uuid.UUID, removedAt time.Time) (string, error) {
	stmt := builder.
		Update(tableBooks).
		Set(goqu.Record{colRemovedAt: removedAt}).
		Where(goqu.Ex{colID: id.String()}, goqu.C(colRemovedAt).IsNull())

	return toSQL(stmt)
}

// === Members ===

func memberColumns() []any {
	return []any{
		goqu.Cast(goqu.C(colID), typeText),
		goqu.C(colName),
		goqu.COALESCE(goqu.C(colEmail), ""),
		goqu.COALESCE(goqu.C(colPhone), ""),
		goqu.Cast(goqu.C(colOutstandingDebt), typeText),
		goqu.C(colRegisteredAt),
	}
}

func buildSelectMemberQuery(id uuid.UUID, lookup rowLookup) (string, error) {
	stmt := builder.
		From(tableMembers).
		Select(memberColumns()...).
		Where(goqu.Ex{colID: id.String()})

	return toSQL(lookup.apply(stmt))
}

func buildSelectMembersQuery() (string, error) {
	stmt := builder.
		From(tableMembers).
		Select(memberColumns()...).
		Where(goqu.C(colRemovedAt).IsNull()).
		Order(goqu.C(colName).Asc(), goqu.C(colID).Asc())

	return toSQL(stmt)
}

func buildInsertMemberQuery(member circulation.Member) (string, error) {
	stmt := builder.
		Insert(tableMembers).
		Rows(goqu.Record{
			colID:              member.ID.String(),
			colName:            member.Name,
			colEmail:           nullIfEmpty(member.Email),
			colPhone:           nullIfEmpty(member.Phone),
			colOutstandingDebt: circulation.FormatMoney(member.OutstandingDebt),
			colRegisteredAt:    member.RegisteredAt,
		})

	return toSQL(stmt)
}

func buildUpdateMemberQuery(member circulation.Member) (string, error) {
	stmt := builder.
		Update(tableMembers).
		Set(goqu.Record{
			colName:  member.Name,
			colEmail: nullIfEmpty(member.Email),
			colPhone: nullIfEmpty(member.Phone),
		}).
		Where(goqu.Ex{colID: member.ID.String()})

	return toSQL(stmt)
}

// buildUpdateMemberDebtQuery writes only the outstanding debt, as return and payment do.
func buildUpdateMemberDebtQuery(member circulation.Member) (string, error) {
	stmt := builder.
		Update(tableMembers).
		Set(goqu.Record{colOutstandingDebt: circulation.FormatMoney(member.OutstandingDebt)}).
		Where(goqu.Ex{colID: member.ID.String()})

	return toSQL(stmt)
}

func buildRemoveMemberQuery(id uuid.UUID, removedAt time.Time) (string, error) {
	stmt := builder.
		Update(tableMembers).
		Set(goqu.Record{colRemovedAt: removedAt}).
		Where(goqu.Ex{colID: id.String()}, goqu.C(colRemovedAt).IsNull())

	return toSQL(stmt)
}

// === Transactions ===

func transactionColumns(table string) []any {
	col := func(name string) exp.IdentifierExpression {
		if table == "" {
			return goqu.C(name)
		}

		return goqu.T(table).Col(name)
	}

	return []any{
		goqu.Cast(col(colID), typeText),
		goqu.Cast(col(colBookID), typeText),
		goqu.Cast(col(colMemberID), typeText),
		col(colIssueDate),
		col(colReturnDate),
		goqu.Cast(col(colFeeCharged), typeText),
		col(colIsReturned),
		col(colStatus),
	}
}

func buildSelectTransactionForUpdateQuery(id uuid.UUID) (string, error) {
	stmt := builder.
		From(tableTransactions).
		Select(transactionColumns("")...).
		Where(goqu.Ex{colID: id.String()}).
		ForUpdate(exp.Wait)

	return toSQL(stmt)
}

func buildInsertTransactionQuery(transaction circulation.Transaction) (string, error) {
	stmt := builder.
		Insert(tableTransactions).
		Rows(goqu.Record{
			colID:         transaction.ID.String(),
			colBookID:     transaction.BookID.String(),
			colMemberID:   transaction.MemberID.String(),
			colIssueDate:  transaction.IssueDate,
			colFeeCharged: circulation.FormatMoney(transaction.FeeCharged),
			colIsReturned: transaction.IsReturned,
			colStatus:     string(transaction.Status),
		})

	return toSQL(stmt)
}

// buildCloseTransactionQuery marks an open transaction as returned. The is_returned condition
// makes a second close affect no rows.
func buildCloseTransactionQuery(transaction circulation.Transaction) (string, error) {
	if transaction.ReturnDate == nil {
		return "", errors.Join(circulation.ErrBuildingQueryFailed, errMissingReturnDate)
	}

	stmt := builder.
		Update(tableTransactions).
		Set(goqu.Record{
			colReturnDate: *transaction.ReturnDate,
			colFeeCharged: circulation.FormatMoney(transaction.FeeCharged),
			colIsReturned: true,
			colStatus:     string(circulation.StatusReturned),
		}).
		Where(goqu.Ex{colID: transaction.ID.String(), colIsReturned: false})

	return toSQL(stmt)
}

// buildCountOpenTransactionsQuery counts the open transactions whose column (book_id or
// member_id) references id.
func buildCountOpenTransactionsQuery(column string, id uuid.UUID) (string, error) {
	stmt := builder.
		From(tableTransactions).
		Select(goqu.COUNT(goqu.Star())).
		Where(goqu.Ex{column: id.String(), colIsReturned: false})

	return toSQL(stmt)
}

func transactionDetailsStatement() *goqu.SelectDataset {
	columns := transactionColumns(aliasTransaction)
	columns = append(columns, goqu.T(aliasBook).Col(colTitle), goqu.T(aliasMember).Col(colName))

	return builder.
		From(goqu.T(tableTransactions).As(aliasTransaction)).
		Join(
			goqu.T(tableBooks).As(aliasBook),
			goqu.On(goqu.T(aliasBook).Col(colID).Eq(goqu.T(aliasTransaction).Col(colBookID))),
		).
		Join(
			goqu.T(tableMembers).As(aliasMember),
			goqu.On(goqu.T(aliasMember).Col(colID).Eq(goqu.T(aliasTransaction).Col(colMemberID))),
		).
		Select(columns...)
}

func buildSelectTransactionDetailsQuery(id uuid.UUID) (string, error) {
	stmt := transactionDetailsStatement().
		Where(goqu.T(aliasTransaction).Col(colID).Eq(id.String()))

	return toSQL(stmt)
}

// buildSelectTransactionsQuery lists transactions newest first. Transactions of removed books
// and members are included, reports keep showing their titles and names.
func buildSelectTransactionsQuery(query circulation.TransactionQuery) (string, error) {
	stmt := transactionDetailsStatement().
		Order(goqu.T(aliasTransaction).Col(colIssueDate).Desc(), goqu.T(aliasTransaction).Col(colID).Desc())

	if query.MemberID != nil {
		stmt = stmt.Where(goqu.T(aliasTransaction).Col(colMemberID).Eq(query.MemberID.String()))
	}

	if query.BookID != nil {
		stmt = stmt.Where(goqu.T(aliasTransaction).Col(colBookID).Eq(query.BookID.String()))
	}

	if query.OpenOnly {
		stmt = stmt.Where(goqu.T(aliasTransaction).Col(colIsReturned).IsFalse())
	}

	return toSQL(stmt)
}

// === Journal ===

func buildInsertJournalEntryQuery(entry circulation.JournalEntry) (string, error) {
	stmt := builder.
		Insert(tableJournal).
		Rows(goqu.Record{
			colEntryType:  entry.EntryType,
			colOccurredAt: entry.OccurredAt,
			colPayload:    goqu.L(castJsonb, string(entry.PayloadJSON)),
			colMetadata:   goqu.L(castJsonb, string(entry.MetadataJSON)),
		})

	return toSQL(stmt)
}

func buildSelectJournalQuery(filter circulation.JournalFilter) (string, error) {
	stmt := builder.
		From(tableJournal).
		Select(
			goqu.C(colSequenceNumber),
			goqu.C(colEntryType),
			goqu.C(colOccurredAt),
			goqu.Cast(goqu.C(colPayload), typeText),
			goqu.Cast(goqu.C(colMetadata), typeText),
		).
		Order(goqu.C(colSequenceNumber).Asc())

	whereClause, err := journalWhereClause(filter)
	if err != nil {
		return "", err
	}

	return toSQL(stmt.Where(whereClause))
}

// journalWhereClause ORs the filter items. Within an item the entry types are ORed, the
// predicates are ANDed or ORed as the item says, and both groups must match.
// Predicates are JSONB containment checks with the value passed as an escaped literal.
func journalWhereClause(filter circulation.JournalFilter) (exp.Expression, error) {
	itemsExpressions := make([]goqu.Expression, 0, len(filter.Items()))

	for _, item := range filter.Items() {
		entryTypeExpressions := make([]goqu.Expression, 0, len(item.EntryTypes()))
		for _, entryType := range item.EntryTypes() {
			entryTypeExpressions = append(entryTypeExpressions, goqu.Ex{colEntryType: entryType})
		}

		predicateExpressions := make([]goqu.Expression, 0, len(item.Predicates()))
		for _, predicate := range item.Predicates() {
			containedJSON, marshalErr := predicateJSON.Marshal(map[string]string{predicate.Key(): predicate.Val()})
			if marshalErr != nil {
				return nil, errors.Join(circulation.ErrBuildingQueryFailed, marshalErr)
			}

			predicateExpressions = append(
				predicateExpressions,
				goqu.L(jsonbContains, goqu.C(colPayload), string(containedJSON)),
			)
		}

		var predicatesExpressionList exp.ExpressionList
		if item.AllPredicatesMustMatch() {
			predicatesExpressionList = goqu.And(predicateExpressions...)
		} else {
			predicatesExpressionList = goqu.Or(predicateExpressions...)
		}

		itemsExpressions = append(
			itemsExpressions,
			goqu.And(goqu.Or(entryTypeExpressions...), predicatesExpressionList),
		)
	}

	occurredAtExpressions := make([]goqu.Expression, 0, 2)

	if !filter.OccurredFrom().IsZero() {
		occurredAtExpressions = append(occurredAtExpressions, goqu.C(colOccurredAt).Gte(filter.OccurredFrom()))
	}

	if !filter.OccurredUntil().IsZero() {
		occurredAtExpressions = append(occurredAtExpressions, goqu.C(colOccurredAt).Lte(filter.OccurredUntil()))
	}

	return goqu.And(
		goqu.Or(itemsExpressions...),
		goqu.And(occurredAtExpressions...),
	), nil
}
