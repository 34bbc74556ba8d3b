package postgresengine

import (
	"context"
	"strconv"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine/internal/adapters"
)

// CreateMember registers a member without debt.
func (l *Library) CreateMember(ctx context.Context, input circulation.NewMember) (circulation.Member, error) {
	id := uuid.Must(uuid.NewV7())
	ctx, observer := l.startOperation(ctx, operationCreateMember, map[string]string{spanAttrMemberID: id.String()})

	member, err := circulation.RegisterMember(input, id, l.now())
	if err == nil {
		err = l.inTx(ctx, func(tx adapters.DBTx) error {
			sqlQuery, buildErr := buildInsertMemberQuery(member)
			if buildErr != nil {
				l.logError(ctx, logMsgBuildQueryFailed, buildErr)
				return buildErr
			}

			if execErr := l.execExpectingOne(ctx, tx, logActionInsertMember, sqlQuery); execErr != nil {
				return execErr
			}

			return l.appendJournal(ctx, tx, circulation.EntryMemberRegistered, member.RegisteredAt,
				circulation.MemberRegisteredPayloadFrom(member))
		})
	}

	observer.finish(err, nil)
	if err != nil {
		return circulation.Member{}, err
	}

	return member, nil
}

// UpdateMember changes name, email, or phone. The outstanding debt is never touched here.
func (l *Library) UpdateMember(ctx context.Context, id uuid.UUID, update circulation.MemberUpdate) (circulation.Member, error) {
	ctx, observer := l.startOperation(ctx, operationUpdateMember, map[string]string{spanAttrMemberID: id.String()})

	var updated circulation.Member
	err := l.inTx(ctx, func(tx adapters.DBTx) error {
		member, lockErr := l.loadMember(ctx, tx, id, lockActive)
		if lockErr != nil {
			return lockErr
		}

		var decideErr error
		if updated, decideErr = circulation.DecideMemberUpdate(member, update); decideErr != nil {
			return decideErr
		}

		sqlQuery, buildErr := buildUpdateMemberQuery(updated)
		if buildErr != nil {
			l.logError(ctx, logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		if execErr := l.execExpectingOne(ctx, tx, logActionUpdateMember, sqlQuery); execErr != nil {
			return execErr
		}

		return l.appendJournal(ctx, tx, circulation.EntryMemberUpdated, l.now(), circulation.MemberUpdatedPayloadFrom(updated))
	})

	observer.finish(err, nil)
	if err != nil {
		return circulation.Member{}, err
	}

	return updated, nil
}

// DeleteMember removes a member without debt, credit, or open transactions.
// The checks run under the member's row lock, which issue takes as well.
func (l *Library) DeleteMember(ctx context.Context, id uuid.UUID) error {
	ctx, observer := l.startOperation(ctx, operationDeleteMember, map[string]string{spanAttrMemberID: id.String()})

	err := l.inTx(ctx, func(tx adapters.DBTx) error {
		member, lockErr := l.loadMember(ctx, tx, id, lockActive)
		if lockErr != nil {
			return lockErr
		}

		openTransactions := 0
		if member != nil {
			var countErr error
			if openTransactions, countErr = l.countOpenTransactions(ctx, tx, colMemberID, id); countErr != nil {
				return countErr
			}
		}

		if decideErr := circulation.DecideMemberRemoval(member, openTransactions); decideErr != nil {
			return decideErr
		}

		removedAt := l.now()
		sqlQuery, buildErr := buildRemoveMemberQuery(id, removedAt)
		if buildErr != nil {
			l.logError(ctx, logMsgBuildQueryFailed, buildErr)
			return buildErr
		}

		if execErr := l.execExpectingOne(ctx, tx, logActionRemoveMember, sqlQuery); execErr != nil {
			return execErr
		}

		return l.appendJournal(ctx, tx, circulation.EntryMemberRemoved, removedAt,
			circulation.MemberRemovedPayload{MemberID: id.String()})
	})

	observer.finish(err, nil)

	return err
}

// GetMember returns an active member, ErrMemberNotFound if there is none.
func (l *Library) GetMember(ctx context.Context, id uuid.UUID) (circulation.Member, error) {
	return l.getMember(ctx, operationGetMember, id)
}

// MemberDebt returns the outstanding debt of an active member. It is negative only for members
// with a credit balance.
func (l *Library) MemberDebt(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	member, err := l.getMember(ctx, operationMemberDebt, id)
	if err != nil {
		return decimal.Zero, err
	}

	return member.OutstandingDebt, nil
}

func (l *Library) getMember(ctx context.Context, operation string, id uuid.UUID) (circulation.Member, error) {
	ctx, observer := l.startOperation(ctx, operation, readAttrs(ctx, spanAttrMemberID, id.String()))

	member, err := l.loadMember(ctx, l.db, id, readActive)
	if err == nil && member == nil {
		err = circulation.ErrMemberNotFound
	}

	observer.finish(err, nil)
	if err != nil {
		return circulation.Member{}, err
	}

	return *member, nil
}

// ListMembers returns all active members ordered by name.
func (l *Library) ListMembers(ctx context.Context) ([]circulation.Member, error) {
	ctx, observer := l.startOperation(ctx, operationListMembers, readAttrs(ctx))

	var members []circulation.Member
	sqlQuery, err := buildSelectMembersQuery()
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
	} else {
		members, err = queryRows(ctx, l, l.db, logActionSelectMembers, sqlQuery, scanMember)
	}

	observer.finish(err, map[string]string{spanAttrResultCount: strconv.Itoa(len(members))})
	if err != nil {
		return nil, err
	}

	return members, nil
}

func (l *Library) loadMember(ctx context.Context, q adapters.DBQuerier, id uuid.UUID, lookup rowLookup) (*circulation.Member, error) {
	sqlQuery, err := buildSelectMemberQuery(id, lookup)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
		return nil, err
	}

	return queryOne(ctx, l, q, logActionSelectMember, sqlQuery, scanMember)
}

func (l *Library) updateMemberDebt(ctx context.Context, tx adapters.DBTx, member circulation.Member) error {
	sqlQuery, err := buildUpdateMemberDebtQuery(member)
	if err != nil {
		l.logError(ctx, logMsgBuildQueryFailed, err)
		return err
	}

	return l.execExpectingOne(ctx, tx, logActionUpdateMember, sqlQuery)
}
