package postgresengine_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine"
	. "github.com/AntonStoeckl/library-circulation-go/testutil/postgresengine/helper"                 //nolint:revive
	. "github.com/AntonStoeckl/library-circulation-go/testutil/postgresengine/helper/postgreswrapper" //nolint:revive
)

func Test_QueryJournal_OneEntryPerCommittedMutation(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := NewAdjustableClock(FixtureStartTime())
	wrapper := CreateWrapperWithTestConfig(t, postgresengine.WithClock(clock))
	defer wrapper.Close()
	library := wrapper.Library()

	// arrange
	CleanUp(t, wrapper)
	book := GivenBookWasCreated(t, ctxWithTimeout, library, 1)
	member := GivenMemberWasCreated(t, ctxWithTimeout, library)
	transaction := GivenBookWasIssued(t, ctxWithTimeout, library, book.ID, member.ID)
	_, rejectedErr := library.IssueBook(ctxWithTimeout, book.ID, member.ID)
	require.ErrorIs(t, rejectedErr, circulation.ErrBookOutOfStock)
	clock.Advance(8 * 24 * time.Hour)
	GivenBookWasReturned(t, ctxWithTimeout, library, transaction.ID)
	_, err := library.RecordPayment(ctxWithTimeout, member.ID, decimal.NewFromInt(5))
	require.NoError(t, err)

	// act
	entries, err := library.QueryJournal(ctxWithTimeout, circulation.BuildJournalFilter().MatchingAnyEntry())

	// assert
	require.NoError(t, err)
	require.Len(t, entries, 5)
	assert.Equal(t,
		[]string{
			circulation.EntryBookRegistered,
			circulation.EntryMemberRegistered,
			circulation.EntryBookIssued,
			circulation.EntryBookReturned,
			circulation.EntryPaymentRecorded,
		},
		entryTypes(entries),
	)

	for i := 1; i < len(entries); i++ {
		assert.Greater(t, entries[i].SequenceNumber, entries[i-1].SequenceNumber)
	}

	var returned circulation.BookReturnedPayload
	require.NoError(t, entries[3].DecodePayload(&returned))
	assert.Equal(t, transaction.ID.String(), returned.TransactionID)
	assert.Equal(t, "5.00", returned.Fee)
	assert.Equal(t, "5.00", returned.DebtAfter)
	assert.True(t, entries[3].OccurredAt.Equal(clock.Now()))
}

func Test_QueryJournal_WithPredicatesAndTimeRange(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := NewAdjustableClock(FixtureStartTime())
	wrapper := CreateWrapperWithTestConfig(t, postgresengine.WithClock(clock))
	defer wrapper.Close()
	library := wrapper.Library()

	// arrange
	CleanUp(t, wrapper)
	book := GivenBookWasCreated(t, ctxWithTimeout, library, 2)
	ada := GivenMemberWasCreated(t, ctxWithTimeout, library)
	grace := GivenMemberWasCreated(t, ctxWithTimeout, library)
	adasLoan := GivenBookWasIssued(t, ctxWithTimeout, library, book.ID, ada.ID)
	clock.Advance(time.Hour)
	GivenBookWasIssued(t, ctxWithTimeout, library, book.ID, grace.ID)
	clock.Advance(time.Hour)
	GivenBookWasReturned(t, ctxWithTimeout, library, adasLoan.ID)

	adasCirculation := circulation.BuildJournalFilter().
		Matching().
		AnyEntryTypeOf(circulation.EntryBookIssued, circulation.EntryBookReturned).
		AndAnyPredicateOf(circulation.P(circulation.PayloadKeyMemberID, ada.ID.String())).
		Finalize()

	firstHour, err := circulation.BuildJournalFilter().
		Matching().
		AnyEntryTypeOf(circulation.EntryBookIssued).
		Finalize().
		OccurredBetween(FixtureStartTime(), FixtureStartTime().Add(30*time.Minute))
	require.NoError(t, err)

	// act
	ofAda, ofAdaErr := library.QueryJournal(ctxWithTimeout, adasCirculation)
	inFirstHour, inFirstHourErr := library.QueryJournal(ctxWithTimeout, firstHour)

	// assert
	require.NoError(t, ofAdaErr)
	require.NoError(t, inFirstHourErr)
	assert.Equal(t, []string{circulation.EntryBookIssued, circulation.EntryBookReturned}, entryTypes(ofAda))
	require.Len(t, inFirstHour, 1)

	var issued circulation.BookIssuedPayload
	require.NoError(t, inFirstHour[0].DecodePayload(&issued))
	assert.Equal(t, ada.ID.String(), issued.MemberID)
}

func Test_QueryJournal_CarriesCorrelationID(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	library := wrapper.Library()

	// arrange
	CleanUp(t, wrapper)
	correlatedCtx := circulation.WithCorrelationID(ctxWithTimeout, "checkout-desk-7")

	// act
	book := GivenBookWasCreated(t, correlatedCtx, library, 1)
	GivenMemberWasCreated(t, ctxWithTimeout, library)

	// assert
	entries, err := library.QueryJournal(ctxWithTimeout, circulation.BuildJournalFilter().MatchingAnyEntry())
	require.NoError(t, err)
	require.Len(t, entries, 2)

	correlated, err := entries[0].Metadata()
	require.NoError(t, err)
	assert.Equal(t, "checkout-desk-7", correlated.CorrelationID)
	assert.NotEqual(t, correlated.CorrelationID, correlated.MessageID)

	var registered circulation.BookRegisteredPayload
	require.NoError(t, entries[0].DecodePayload(&registered))
	assert.Equal(t, book.ID.String(), registered.BookID)

	uncorrelated, err := entries[1].Metadata()
	require.NoError(t, err)
	assert.Equal(t, uncorrelated.MessageID, uncorrelated.CorrelationID)
}

func entryTypes(entries circulation.JournalEntries) []string {
	types := make([]string, 0, len(entries))
	for _, entry := range entries {
		types = append(types, entry.EntryType)
	}

	return types
}
