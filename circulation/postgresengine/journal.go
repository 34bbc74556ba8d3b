package postgresengine

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine/internal/adapters"
)

// appendJournal writes one journal entry inside tx, so it commits or rolls back with the mutation
// it describes.
func (l *Library) appendJournal(
	ctx context.Context,
	tx adapters.DBTx,
	entryType string,
	occurredAt time.Time,
	payload any,
) error {

	entry, err := circulation.NewJournalEntry(ctx, entryType, occurredAt, payload)
	if err != nil {
		l.logError(ctx, logMsgJournalEntryFailed, err, spanAttrEntryType, entryType)
		return errors.Join(circulation.ErrMarshalingFailed, err)
	}

	sqlQuery, err := buildInsertJournalEntryQuery(entry)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err, spanAttrEntryType, entryType)
		return err
	}

	return l.execExpectingOne(ctx, tx, logActionAppendJournal, sqlQuery)
}

// QueryJournal returns the journal entries matching filter in sequence order.
//
//	filter := circulation.BuildJournalFilter().
//		Matching().
//		AnyEntryTypeOf(circulation.EntryBookIssued, circulation.EntryBookReturned).
//		AndAnyPredicateOf(circulation.P(circulation.PayloadKeyMemberID, memberID.String())).
//		Finalize()
func (l *Library) QueryJournal(ctx context.Context, filter circulation.JournalFilter) (circulation.JournalEntries, error) {
	ctx, observer := l.startOperation(ctx, operationQueryJournal, readAttrs(ctx))

	var entries circulation.JournalEntries
	sqlQuery, err := buildSelectJournalQuery(filter)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
	} else {
		entries, err = queryRows(ctx, l, l.db, logActionQueryJournal, sqlQuery, scanJournalEntry)
	}

	observer.finish(err, map[string]string{spanAttrResultCount: strconv.Itoa(len(entries))})
	if err != nil {
		return nil, err
	}

	return entries, nil
}
