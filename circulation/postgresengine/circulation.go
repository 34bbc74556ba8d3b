package postgresengine

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine/internal/adapters"
)

// IssueBook lends one copy of a book to a member.
//
// Book and member are locked in this order, then circulation.DecideIssue checks availability and
// the debt limit. On success the available stock drops by one and an open transaction is
// recorded, dated with the library clock.
func (l *Library) IssueBook(ctx context.Context, bookID, memberID uuid.UUID) (circulation.Transaction, error) {
	ctx, observer := l.startOperation(ctx, operationIssueBook, map[string]string{
		spanAttrBookID:   bookID.String(),
		spanAttrMemberID: memberID.String(),
	})

	var outcome circulation.IssueOutcome
	err := l.inTx(ctx, func(tx adapters.DBTx) error {
		book, err := l.loadBook(ctx, tx, bookID, lockActive)
		if err != nil {
			return err
		}

		member, err := l.loadMember(ctx, tx, memberID, lockActive)
		if err != nil {
			return err
		}

		command := circulation.BuildIssueCommand(bookID, memberID, l.now())
		if outcome, err = circulation.DecideIssue(book, member, command, l.policy); err != nil {
			return err
		}

		sqlQuery, err := buildInsertTransactionQuery(outcome.Transaction)
		if err != nil {
			l.logError(ctx, logMsgBuildQueryFailed, err)
			return err
		}

		if err = l.execExpectingOne(ctx, tx, logActionInsertTransaction, sqlQuery); err != nil {
			return err
		}

		if err = l.updateBookStock(ctx, tx, outcome.Book); err != nil {
			return err
		}

		return l.appendJournal(ctx, tx, circulation.EntryBookIssued, outcome.Transaction.IssueDate,
			circulation.BookIssuedPayloadFrom(outcome.Transaction))
	})

	observer.finish(err, map[string]string{spanAttrTransactionID: outcome.Transaction.ID.String()})
	if err != nil {
		return circulation.Transaction{}, err
	}

	return outcome.Transaction, nil
}

// ReturnBook closes an open transaction.
//
// Transaction, book, and member are locked in this order. The overdue fee is computed with the
// policy's fee schedule, charged to the member, and stored on the transaction. The copy goes back
// on the shelf, never beyond the total stock.
func (l *Library) ReturnBook(ctx context.Context, transactionID uuid.UUID) (circulation.ReturnReceipt, error) {
	ctx, observer := l.startOperation(ctx, operationReturnBook, map[string]string{
		spanAttrTransactionID: transactionID.String(),
	})

	var outcome circulation.ReturnOutcome
	err := l.inTx(ctx, func(tx adapters.DBTx) error {
		transaction, err := l.lockTransaction(ctx, tx, transactionID)
		if err != nil {
			return err
		}

		var (
			book   *circulation.Book
			member *circulation.Member
		)

		if transaction != nil && transaction.IsOpen() {
			if book, err = l.loadBook(ctx, tx, transaction.BookID, lockAny); err != nil {
				return err
			}

			if member, err = l.loadMember(ctx, tx, transaction.MemberID, lockAny); err != nil {
				return err
			}
		}

		command := circulation.BuildReturnCommand(transactionID, l.now())
		if outcome, err = circulation.DecideReturn(transaction, book, member, command, l.policy.Fees); err != nil {
			return err
		}

		sqlQuery, err := buildCloseTransactionQuery(outcome.Transaction)
		if err != nil {
			l.logError(ctx, logMsgBuildQueryFailed, err)
			return err
		}

		if err = l.execExpectingOne(ctx, tx, logActionCloseTransaction, sqlQuery); err != nil {
			return err
		}

		if err = l.updateBookStock(ctx, tx, outcome.Book); err != nil {
			return err
		}

		if err = l.updateMemberDebt(ctx, tx, outcome.Member); err != nil {
			return err
		}

		return l.appendJournal(ctx, tx, circulation.EntryBookReturned, outcome.Receipt.ReturnDate,
			circulation.BookReturnedPayloadFrom(outcome.Receipt))
	})

	resultAttrs := map[string]string{}
	if err == nil {
		resultAttrs[spanAttrFee] = circulation.FormatMoney(outcome.Receipt.Fee)
		resultAttrs[spanAttrDebtAfter] = circulation.FormatMoney(outcome.Receipt.DebtAfter)
		l.recordFee(ctx, outcome.Receipt.Fee.InexactFloat64())
	}

	observer.finish(err, resultAttrs)
	if err != nil {
		return circulation.ReturnReceipt{}, err
	}

	return outcome.Receipt, nil
}

// RecordPayment reduces a member's outstanding debt by amount, rounded to cents.
// Overpayments are rejected unless the policy allows credit balances.
func (l *Library) RecordPayment(ctx context.Context, memberID uuid.UUID, amount decimal.Decimal) (circulation.PaymentReceipt, error) {
	ctx, observer := l.startOperation(ctx, operationRecordPayment, map[string]string{
		spanAttrMemberID: memberID.String(),
	})

	command := circulation.BuildPaymentCommand(memberID, amount, l.now())

	var outcome circulation.PaymentOutcome
	err := l.inTx(ctx, func(tx adapters.DBTx) error {
		member, err := l.loadMember(ctx, tx, memberID, lockActive)
		if err != nil {
			return err
		}

		if outcome, err = circulation.DecidePayment(member, command, l.policy); err != nil {
			return err
		}

		if err = l.updateMemberDebt(ctx, tx, outcome.Member); err != nil {
			return err
		}

		return l.appendJournal(ctx, tx, circulation.EntryPaymentRecorded, outcome.Receipt.PaidAt,
			circulation.PaymentRecordedPayloadFrom(outcome.Receipt))
	})

	resultAttrs := map[string]string{spanAttrPaymentID: command.PaymentID.String()}
	if err == nil {
		resultAttrs[spanAttrDebtAfter] = circulation.FormatMoney(outcome.Receipt.DebtAfter)
	}

	observer.finish(err, resultAttrs)
	if err != nil {
		return circulation.PaymentReceipt{}, err
	}

	return outcome.Receipt, nil
}

// lockTransaction reads and locks one transaction row, nil if it does not exist.
func (l *Library) lockTransaction(ctx context.Context, tx adapters.DBTx, id uuid.UUID) (*circulation.Transaction, error) {
	sqlQuery, err := buildSelectTransactionForUpdateQuery(id)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
		return nil, err
	}

	return queryOne(ctx, l, tx, logActionSelectTransaction, sqlQuery, scanTransaction)
}
