package postgresengine

import (
	"context"
	"strconv"

	"github.com/google/uuid"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

// GetTransaction returns one transaction with the title of its book and the name of its member.
func (l *Library) GetTransaction(ctx context.Context, id uuid.UUID) (circulation.TransactionDetails, error) {
	ctx, observer := l.startOperation(ctx, operationGetTransaction, readAttrs(ctx, spanAttrTransactionID, id.String()))

	var details *circulation.TransactionDetails
	sqlQuery, err := buildSelectTransactionDetailsQuery(id)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
	} else {
		details, err = queryOne(ctx, l, l.db, logActionSelectTransaction, sqlQuery, scanTransactionDetails)
	}

	if err == nil && details == nil {
		err = circulation.ErrTransactionNotFound
	}

	observer.finish(err, nil)
	if err != nil {
		return circulation.TransactionDetails{}, err
	}

	return *details, nil
}

// ListTransactions lists transactions newest first, narrowed by query.
//
//	library.ListTransactions(ctx, circulation.OpenTransactionsOfMember(memberID))
func (l *Library) ListTransactions(
	ctx context.Context,
	query circulation.TransactionQuery,
) ([]circulation.TransactionDetails, error) {

	ctx, observer := l.startOperation(ctx, operationListTransactions, readAttrs(ctx))

	var transactions []circulation.TransactionDetails
	sqlQuery, err := buildSelectTransactionsQuery(query)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
	} else {
		transactions, err = queryRows(ctx, l, l.db, logActionSelectTransactions, sqlQuery, scanTransactionDetails)
	}

	observer.finish(err, map[string]string{spanAttrResultCount: strconv.Itoa(len(transactions))})
	if err != nil {
		return nil, err
	}

	return transactions, nil
}
