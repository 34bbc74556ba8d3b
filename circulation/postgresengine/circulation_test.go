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

func Test_IssueBook_DecrementsAvailableStock(t *testing.T) {
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
	member := GivenMemberWasCreated(t, ctxWithTimeout, library)

	// act
	transaction, err := library.IssueBook(ctxWithTimeout, book.ID, member.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, book.ID, transaction.BookID)
	assert.Equal(t, member.ID, transaction.MemberID)
	assert.Equal(t, circulation.StatusIssued, transaction.Status)
	assert.False(t, transaction.IsReturned)
	assert.Nil(t, transaction.ReturnDate)
	assert.True(t, transaction.IssueDate.Equal(FixtureStartTime()))

	stored, err := library.GetBook(ctxWithTimeout, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AvailableStock)
	assert.Equal(t, 2, stored.TotalStock)

	details, err := library.GetTransaction(ctxWithTimeout, transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, book.Title, details.BookTitle)
	assert.Equal(t, member.Name, details.MemberName)
	assert.True(t, details.IsOpen())
	assert.True(t, details.FeeCharged.IsZero())
}

func Test_IssueBook_Rejections(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	library := wrapper.Library()

	// arrange
	CleanUp(t, wrapper)
	member := GivenMemberWasCreated(t, ctxWithTimeout, library)
	outOfStock := GivenBookWasCreated(t, ctxWithTimeout, library, 0)
	available := GivenBookWasCreated(t, ctxWithTimeout, library, 1)

	// act
	_, outOfStockErr := library.IssueBook(ctxWithTimeout, outOfStock.ID, member.ID)
	_, unknownBookErr := library.IssueBook(ctxWithTimeout, GivenUniqueID(t), member.ID)
	_, unknownMemberErr := library.IssueBook(ctxWithTimeout, available.ID, GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, outOfStockErr, circulation.ErrBookUnavailable)
	assert.ErrorIs(t, outOfStockErr, circulation.ErrBookOutOfStock)
	assert.ErrorIs(t, unknownBookErr, circulation.ErrBookUnavailable)
	assert.ErrorIs(t, unknownBookErr, circulation.ErrBookNotFound)
	assert.ErrorIs(t, unknownMemberErr, circulation.ErrMemberNotFound)

	stored, err := library.GetBook(ctxWithTimeout, available.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AvailableStock, "a rejected issue changes nothing")

	transactions, err := library.ListTransactions(ctxWithTimeout, circulation.TransactionQuery{})
	require.NoError(t, err)
	assert.Empty(t, transactions)
}

func Test_IssueBook_BlockedAtDebtLimit(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	clock := NewAdjustableClock(FixtureStartTime())
	policy := circulation.DefaultPolicy()
	policy.DebtLimit = decimal.NewFromInt(10)
	wrapper := CreateWrapperWithTestConfig(t, postgresengine.WithClock(clock), postgresengine.WithPolicy(policy))
	defer wrapper.Close()
	library := wrapper.Library()

	// arrange
	CleanUp(t, wrapper)
	book := GivenBookWasCreated(t, ctxWithTimeout, library, 1)
	member := GivenMemberWasCreated(t, ctxWithTimeout, library)
	transaction := GivenBookWasIssued(t, ctxWithTimeout, library, book.ID, member.ID)
	clock.Advance(9 * 24 * time.Hour)
	receipt := GivenBookWasReturned(t, ctxWithTimeout, library, transaction.ID)
	require.Equal(t, "10.00", circulation.FormatMoney(receipt.DebtAfter))

	// act
	_, blockedErr := library.IssueBook(ctxWithTimeout, book.ID, member.ID)
	_, paymentErr := library.RecordPayment(ctxWithTimeout, member.ID, decimal.RequireFromString("0.01"))
	_, allowedErr := library.IssueBook(ctxWithTimeout, book.ID, member.ID)

	// assert
	assert.ErrorIs(t, blockedErr, circulation.ErrDebtLimitExceeded, "the limit is inclusive")
	assert.NoError(t, paymentErr)
	assert.NoError(t, allowedErr)
}

func Test_ReturnBook_OnTime_ChargesNothing(t *testing.T) {
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
	clock.Advance(7 * 24 * time.Hour)

	// act
	receipt, err := library.ReturnBook(ctxWithTimeout, transaction.ID)

	// assert
	require.NoError(t, err)
	assert.True(t, receipt.Fee.IsZero())
	assert.True(t, receipt.DebtAfter.IsZero())

	stored, err := library.GetBook(ctxWithTimeout, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.AvailableStock)
}

func Test_ReturnBook_Late_ChargesProratedFee(t *testing.T) {
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
	clock.Advance(10*24*time.Hour + 12*time.Hour)

	// act
	receipt, err := library.ReturnBook(ctxWithTimeout, transaction.ID)

	// assert
	require.NoError(t, err)
	assert.Equal(t, "17.50", circulation.FormatMoney(receipt.Fee))
	assert.Equal(t, "17.50", circulation.FormatMoney(receipt.DebtAfter))
	assert.True(t, receipt.ReturnDate.Equal(clock.Now()))

	debt, err := library.MemberDebt(ctxWithTimeout, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "17.50", circulation.FormatMoney(debt))

	details, err := library.GetTransaction(ctxWithTimeout, transaction.ID)
	require.NoError(t, err)
	assert.Equal(t, circulation.StatusReturned, details.Status)
	assert.True(t, details.IsReturned)
	require.NotNil(t, details.ReturnDate)
	assert.True(t, details.ReturnDate.Equal(clock.Now()))
	assert.Equal(t, "17.50", circulation.FormatMoney(details.FeeCharged))
}

func Test_ReturnBook_Twice(t *testing.T) {
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
	clock.Advance(8 * 24 * time.Hour)
	GivenBookWasReturned(t, ctxWithTimeout, library, transaction.ID)
	clock.Advance(8 * 24 * time.Hour)

	// act
	_, err := library.ReturnBook(ctxWithTimeout, transaction.ID)

	// assert
	assert.ErrorIs(t, err, circulation.ErrAlreadyReturned)

	debt, debtErr := library.MemberDebt(ctxWithTimeout, member.ID)
	require.NoError(t, debtErr)
	assert.Equal(t, "5.00", circulation.FormatMoney(debt), "the fee is charged once")

	stored, getErr := library.GetBook(ctxWithTimeout, book.ID)
	require.NoError(t, getErr)
	assert.Equal(t, 1, stored.AvailableStock)
}

func Test_ReturnBook_UnknownTransaction(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	library := wrapper.Library()

	// arrange
	CleanUp(t, wrapper)

	// act
	_, err := library.ReturnBook(ctxWithTimeout, GivenUniqueID(t))

	// assert
	assert.ErrorIs(t, err, circulation.ErrTransactionNotFound)
	assert.Equal(t, circulation.KindNotFound, circulation.KindOf(err))
}

func Test_ReturnBook_AfterStockShrankWithClamping(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	policy := circulation.DefaultPolicy()
	policy.ClampStockShrink = true
	wrapper := CreateWrapperWithTestConfig(t, postgresengine.WithPolicy(policy))
	defer wrapper.Close()
	library := wrapper.Library()

	// arrange
	CleanUp(t, wrapper)
	book := GivenBookWasCreated(t, ctxWithTimeout, library, 2)
	member := GivenMemberWasCreated(t, ctxWithTimeout, library)
	first := GivenBookWasIssued(t, ctxWithTimeout, library, book.ID, member.ID)
	second := GivenBookWasIssued(t, ctxWithTimeout, library, book.ID, member.ID)
	newTotal := 1
	_, err := library.UpdateBook(ctxWithTimeout, book.ID, circulation.BookUpdate{TotalStock: &newTotal})
	require.NoError(t, err)

	// act
	GivenBookWasReturned(t, ctxWithTimeout, library, first.ID)
	GivenBookWasReturned(t, ctxWithTimeout, library, second.ID)

	// assert
	stored, err := library.GetBook(ctxWithTimeout, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, stored.TotalStock)
	assert.Equal(t, 1, stored.AvailableStock, "available stock never exceeds total stock")
}

func Test_RecordPayment_ReducesDebt(t *testing.T) {
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
	clock.Advance(11 * 24 * time.Hour)
	GivenBookWasReturned(t, ctxWithTimeout, library, transaction.ID)

	// act
	receipt, err := library.RecordPayment(ctxWithTimeout, member.ID, decimal.RequireFromString("7.555"))

	// assert
	require.NoError(t, err)
	assert.Equal(t, "20.00", circulation.FormatMoney(receipt.DebtBefore))
	assert.Equal(t, "7.56", circulation.FormatMoney(receipt.Amount))
	assert.Equal(t, "12.44", circulation.FormatMoney(receipt.DebtAfter))

	debt, err := library.MemberDebt(ctxWithTimeout, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "12.44", circulation.FormatMoney(debt))
}

func Test_RecordPayment_Rejections(t *testing.T) {
	// setup
	ctxWithTimeout, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	wrapper := CreateWrapperWithTestConfig(t)
	defer wrapper.Close()
	library := wrapper.Library()

	// arrange
	CleanUp(t, wrapper)
	member := GivenMemberWasCreated(t, ctxWithTimeout, library)

	// act
	_, zeroErr := library.RecordPayment(ctxWithTimeout, member.ID, decimal.Zero)
	_, negativeErr := library.RecordPayment(ctxWithTimeout, member.ID, decimal.NewFromInt(-5))
	_, tinyErr := library.RecordPayment(ctxWithTimeout, member.ID, decimal.RequireFromString("0.004"))
	_, overpaymentErr := library.RecordPayment(ctxWithTimeout, member.ID, decimal.NewFromInt(1))
	_, unknownErr := library.RecordPayment(ctxWithTimeout, GivenUniqueID(t), decimal.NewFromInt(1))

	// assert
	assert.ErrorIs(t, zeroErr, circulation.ErrInvalidAmount)
	assert.ErrorIs(t, negativeErr, circulation.ErrInvalidAmount)
	assert.ErrorIs(t, tinyErr, circulation.ErrInvalidAmount)
	assert.ErrorIs(t, overpaymentErr, circulation.ErrPaymentExceedsDebt)
	assert.ErrorIs(t, unknownErr, circulation.ErrMemberNotFound)

	debt, err := library.MemberDebt(ctxWithTimeout, member.ID)
	require.NoError(t, err)
	assert.True(t, debt.IsZero())
}
