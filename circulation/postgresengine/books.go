package postgresengine

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine/internal/adapters"
)

// CreateBook registers a book with all copies available.
func (l *Library) CreateBook(ctx context.Context, input circulation.NewBook) (circulation.Book, error) {
	id := uuid.Must(uuid.NewV7())
	ctx, observer := l.startOperation(ctx, operationCreateBook, map[string]string{spanAttrBookID: id.String()})

	book, err := circulation.RegisterBook(input, id, l.now())
	if err == nil {
		err = l.inTx(ctx, func(tx adapters.DBTx) error {
			if insertErr := l.insertBook(ctx, tx, book); insertErr != nil {
				return insertErr
			}

			return l.appendJournal(ctx, tx, circulation.EntryBookRegistered, book.RegisteredAt,
				circulation.BookRegisteredPayloadFrom(book))
		})
	}

	observer.finish(err, nil)
	if err != nil {
		return circulation.Book{}, err
	}

	return book, nil
}

// UpdateBook applies a partial update. A change of total stock moves the available stock by the
// same delta, see circulation.ResizeStock for the rules when copies are issued.
func (l *Library) UpdateBook(ctx context.Context, id uuid.UUID, update circulation.BookUpdate) (circulation.Book, error) {
	ctx, observer := l.startOperation(ctx, operationUpdateBook, map[string]string{spanAttrBookID: id.String()})

	var updated circulation.Book
	err := l.inTx(ctx, func(tx adapters.DBTx) error {
		book, lockErr := l.loadBook(ctx, tx, id, lockActive)
		if lockErr != nil {
			return lockErr
		}

		var decideErr error
		if updated, decideErr = circulation.DecideBookUpdate(book, update, l.policy); decideErr != nil {
			return decideErr
		}

		sqlQuery, buildErr := buildUpdateBookQuery(updated)
		if buildErr != nil {
			l.logError(ctx, logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		if execErr := l.execExpectingOne(ctx, tx, logActionUpdateBook, sqlQuery); execErr != nil {
			return execErr
		}

		return l.appendJournal(ctx, tx, circulation.EntryBookUpdated, l.now(), circulation.BookUpdatedPayloadFrom(updated))
	})

	observer.finish(err, nil)
	if err != nil {
		return circulation.Book{}, err
	}

	return updated, nil
}

// DeleteBook removes a book that no open transaction references. The book row stays in place
// for the transaction history but behaves as absent from then on.
func (l *Library) DeleteBook(ctx context.Context, id uuid.UUID) error {
	ctx, observer := l.startOperation(ctx, operationDeleteBook, map[string]string{spanAttrBookID: id.String()})

	err := l.inTx(ctx, func(tx adapters.DBTx) error {
		book, lockErr := l.loadBook(ctx, tx, id, lockActive)
		if lockErr != nil {
			return lockErr
		}

		openTransactions := 0
		if book != nil {
			var countErr error
			if openTransactions, countErr = l.countOpenTransactions(ctx, tx, colBookID, id); countErr != nil {
				return countErr
			}
		}

		if decideErr := circulation.DecideBookRemoval(book, openTransactions); decideErr != nil {
			return decideErr
		}

		removedAt := l.now()
		sqlQuery, buildErr := buildRemoveBookQuery(id, removedAt)
		if buildErr != nil {
			l.logError(ctx, logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		if execErr := l.execExpectingOne(ctx, tx, logActionRemoveBook, sqlQuery); execErr != nil {
			return execErr
		}

		return l.appendJournal(ctx, tx, circulation.EntryBookRemoved, removedAt,
			circulation.BookRemovedPayload{BookID: id.String()})
	})

	observer.finish(err, nil)

	return err
}

// GetBook returns an active book, ErrBookNotFound if there is none.
func (l *Library) GetBook(ctx context.Context, id uuid.UUID) (circulation.Book, error) {
	ctx, observer := l.startOperation(ctx, operationGetBook, readAttrs(ctx, spanAttrBookID, id.String()))

	book, err := l.loadBook(ctx, l.db, id, readActive)
	if err == nil && book == nil {
		err = circulation.ErrBookNotFound
	}

	observer.finish(err, nil)
	if err != nil {
		return circulation.Book{}, err
	}

	return *book, nil
}

// ListBooks returns all active books ordered by title.
func (l *Library) ListBooks(ctx context.Context) ([]circulation.Book, error) {
	return l.selectBooks(ctx, operationListBooks, "")
}

// SearchBooks returns the active books whose title or author contains term, ignoring case.
// An empty term matches every book.
func (l *Library) SearchBooks(ctx context.Context, term string) ([]circulation.Book, error) {
	return l.selectBooks(ctx, operationSearchBooks, term)
}

func (l *Library) selectBooks(ctx context.Context, operation string, term string) ([]circulation.Book, error) {
	ctx, observer := l.startOperation(ctx, operation, readAttrs(ctx))

	var books []circulation.Book
	sqlQuery, err := buildSelectBooksQuery(term)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
	} else {
		books, err = queryRows(ctx, l, l.db, logActionSelectBooks, sqlQuery, scanBook)
	}

	observer.finish(err, map[string]string{spanAttrResultCount: strconv.Itoa(len(books))})
	if err != nil {
		return nil, err
	}

	return books, nil
}

// loadBook reads one book row, nil if it does not exist (or is removed, unless lookup includes
// removed rows).
func (l *Library) loadBook(ctx context.Context, q adapters.DBQuerier, id uuid.UUID, lookup rowLookup) (*circulation.Book, error) {
	sqlQuery, err := buildSelectBookQuery(id, lookup)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
		return nil, err
	}

	return queryOne(ctx, l, q, logActionSelectBook, sqlQuery, scanBook)
}

func (l *Library) insertBook(ctx context.Context, tx adapters.DBTx, book circulation.Book) error {
	sqlQuery, err := buildInsertBookQuery(book)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
		return err
	}

	return l.execExpectingOne(ctx, tx, logActionInsertBook, sqlQuery)
}

func (l *Library) updateBookStock(ctx context.Context, tx adapters.DBTx, book circulation.Book) error {
	sqlQuery, err := buildUpdateBookStockQuery(book)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
		return err
	}

	return l.execExpectingOne(ctx, tx, logActionUpdateBook, sqlQuery)
}

// countOpenTransactions counts the open transactions referencing id through column.
func (l *Library) countOpenTransactions(ctx context.Context, tx adapters.DBTx, column string, id uuid.UUID) (int, error) {
	sqlQuery, err := buildCountOpenTransactionsQuery(column, id)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
		return 0, err
	}

	count, err := queryOne(ctx, l, tx, logActionCountOpen, sqlQuery, scanCount)
	if err != nil || count == nil {
		return 0, err
	}

	return *count, nil
}

// readAttrs builds span attributes for a read-only operation.
func readAttrs(ctx context.Context, keyValues ...string) map[string]string {
	attrs := map[string]string{spanAttrReadConsistency: circulation.GetReadConsistency(ctx).String()}
	for i := 0; i+1 < len(keyValues); i += 2 {
		attrs[keyValues[i]] = keyValues[i+1]
	}

	return attrs
}
