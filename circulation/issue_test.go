package circulation_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

func Test_DecideIssue_Success_WhenAllPreconditionsMet(t *testing.T) {
	// arrange
	now := time.Date(2025, 5, 10, 9, 30, 0, 0, time.UTC)
	book := givenBook(3, 3)
	member := givenMember("12.50")
	command := circulation.BuildIssueCommand(book.ID, member.ID, now)

	// act
	outcome, err := circulation.DecideIssue(&book, &member, command, circulation.DefaultPolicy())

	// assert
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Book.AvailableStock)
	assert.Equal(t, 3, outcome.Book.TotalStock)
	assert.Equal(t, command.TransactionID, outcome.Transaction.ID)
	assert.Equal(t, book.ID, outcome.Transaction.BookID)
	assert.Equal(t, member.ID, outcome.Transaction.MemberID)
	assert.Equal(t, now, outcome.Transaction.IssueDate)
	assert.Equal(t, circulation.StatusIssued, outcome.Transaction.Status)
	assert.False(t, outcome.Transaction.IsReturned)
	assert.Nil(t, outcome.Transaction.ReturnDate)
	assert.True(t, outcome.Transaction.FeeCharged.IsZero())
	assert.Equal(t, 3, book.AvailableStock, "input must not be mutated")
}

func Test_DecideIssue_Errors(t *testing.T) {
	inStock := givenBook(2, 1)
	outOfStock := givenBook(2, 0)
	debtFree := givenMember("0")
	atLimit := givenMember("500.00")
	justBelowLimit := givenMember("499.99")
	aboveLimit := givenMember("620.00")

	tests := []struct {
		name         string
		book         *circulation.Book
		member       *circulation.Member
		expectedErrs []error
		expectedKind circulation.ErrorKind
	}{
		{
			name:         "book does not exist",
			book:         nil,
			member:       &debtFree,
			expectedErrs: []error{circulation.ErrBookUnavailable, circulation.ErrBookNotFound},
			expectedKind: circulation.KindNotFound,
		},
		{
			name:         "book is out of stock",
			book:         &outOfStock,
			member:       &debtFree,
			expectedErrs: []error{circulation.ErrBookUnavailable, circulation.ErrBookOutOfStock},
			expectedKind: circulation.KindConflict,
		},
		{
			name:         "out of stock wins over missing member",
			book:         &outOfStock,
			member:       nil,
			expectedErrs: []error{circulation.ErrBookUnavailable},
			expectedKind: circulation.KindConflict,
		},
		{
			name:         "out of stock wins over debt limit",
			book:         &outOfStock,
			member:       &aboveLimit,
			expectedErrs: []error{circulation.ErrBookUnavailable},
			expectedKind: circulation.KindConflict,
		},
		{
			name:         "member does not exist",
			book:         &inStock,
			member:       nil,
			expectedErrs: []error{circulation.ErrMemberNotFound},
			expectedKind: circulation.KindNotFound,
		},
		{
			name:         "debt exactly at the limit",
			book:         &inStock,
			member:       &atLimit,
			expectedErrs: []error{circulation.ErrDebtLimitExceeded},
			expectedKind: circulation.KindConflict,
		},
		{
			name:         "debt above the limit",
			book:         &inStock,
			member:       &aboveLimit,
			expectedErrs: []error{circulation.ErrDebtLimitExceeded},
			expectedKind: circulation.KindConflict,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// arrange
			command := circulation.BuildIssueCommand(uuid.New(), uuid.New(), time.Now())

			// act
			_, err := circulation.DecideIssue(tt.book, tt.member, command, circulation.DefaultPolicy())

			// assert
			for _, expectedErr := range tt.expectedErrs {
				assert.ErrorIs(t, err, expectedErr)
			}
			assert.Equal(t, tt.expectedKind, circulation.KindOf(err))
		})
	}

	t.Run("debt just below the limit is allowed", func(t *testing.T) {
		command := circulation.BuildIssueCommand(inStock.ID, justBelowLimit.ID, time.Now())

		_, err := circulation.DecideIssue(&inStock, &justBelowLimit, command, circulation.DefaultPolicy())

		assert.NoError(t, err)
	})
}

func Test_DecideIssue_IssuingAllCopies_ThenOneMoreFails(t *testing.T) {
	// arrange
	book := givenBook(3, 3)
	member := givenMember("0")
	policy := circulation.DefaultPolicy()

	// act
	for range 3 {
		outcome, err := circulation.DecideIssue(&book, &member, circulation.BuildIssueCommand(book.ID, member.ID, time.Now()), policy)
		require.NoError(t, err)
		book = outcome.Book
	}

	_, err := circulation.DecideIssue(&book, &member, circulation.BuildIssueCommand(book.ID, member.ID, time.Now()), policy)

	// assert
	assert.Equal(t, 0, book.AvailableStock)
	assert.ErrorIs(t, err, circulation.ErrBookUnavailable)
}

func Test_DecideIssue_UsesConfiguredDebtLimit(t *testing.T) {
	// arrange
	book := givenBook(1, 1)
	member := givenMember("20.00")
	policy := circulation.DefaultPolicy()
	policy.DebtLimit = decimal.NewFromInt(20)

	// act
	_, err := circulation.DecideIssue(&book, &member, circulation.BuildIssueCommand(book.ID, member.ID, time.Now()), policy)

	// assert
	assert.ErrorIs(t, err, circulation.ErrDebtLimitExceeded)
}

func Test_BuildIssueCommand_NormalizesTimeAndCreatesUniqueIDs(t *testing.T) {
	local := time.Date(2025, 5, 10, 11, 30, 0, 123456789, time.FixedZone("CEST", 2*60*60))

	first := circulation.BuildIssueCommand(uuid.New(), uuid.New(), local)
	second := circulation.BuildIssueCommand(uuid.New(), uuid.New(), local)

	assert.NotEqual(t, first.TransactionID, second.TransactionID)
	assert.Equal(t, time.UTC, first.OccurredAt.Location())
	assert.Equal(t, 123456000, first.OccurredAt.Nanosecond())
	assert.True(t, local.Truncate(time.Microsecond).Equal(first.OccurredAt))
}

func givenBook(total, available int) circulation.Book {
	return circulation.Book{
		ID:             uuid.New(),
		Title:          "The Left Hand of Darkness",
		Author:         "Ursula K. Le Guin",
		TotalStock:     total,
		AvailableStock: available,
	}
}

func givenMember(debt string) circulation.Member {
	return circulation.Member{
		ID:              uuid.New(),
		Name:            "Ada Reader",
		OutstandingDebt: decimal.RequireFromString(debt),
	}
}
