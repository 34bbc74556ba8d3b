package helper

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/circulation/postgresengine"
)

// FixtureStartTime is the instant adjustable test clocks start at.
func FixtureStartTime() time.Time {
	return time.Date(2025, time.March, 3, 10, 0, 0, 0, time.UTC)
}

// GivenUniqueID generates a unique UUID for testing.
func GivenUniqueID(t testing.TB) uuid.UUID {
	id, err := uuid.NewV7()
	assert.NoError(t, err, "error in arranging test data")

	return id
}

// GivenUniqueISBN generates a random ISBN-13 shaped string.
func GivenUniqueISBN() string {
	return fmt.Sprintf("978%010d", rand.Int64N(10_000_000_000))
}

// GivenUniqueEmail generates a random email address.
func GivenUniqueEmail() string {
	return fmt.Sprintf("reader-%d@example.org", rand.Int64())
}

// FixtureNewBook returns the input for a book with the given number of copies.
func FixtureNewBook(totalStock int) circulation.NewBook {
	return circulation.NewBook{
		Title:      "Learning Domain-Driven Design",
		Author:     "Vlad Khononov",
		ISBN:       GivenUniqueISBN(),
		TotalStock: totalStock,
	}
}

// FixtureNewMember returns the input for a member with a unique email.
func FixtureNewMember() circulation.NewMember {
	return circulation.NewMember{
		Name:  "Ada Reader",
		Email: GivenUniqueEmail(),
		Phone: "+49 30 1234567",
	}
}

// GivenBookWasCreated registers a book with totalStock copies.
func GivenBookWasCreated(t testing.TB, ctx context.Context, library *postgresengine.Library, totalStock int) circulation.Book {
	book, err := library.CreateBook(ctx, FixtureNewBook(totalStock))
	require.NoError(t, err, "error in arranging test data")

	return book
}

// GivenMemberWasCreated registers a member without debt.
func GivenMemberWasCreated(t testing.TB, ctx context.Context, library *postgresengine.Library) circulation.Member {
	member, err := library.CreateMember(ctx, FixtureNewMember())
	require.NoError(t, err, "error in arranging test data")

	return member
}

// GivenBookWasIssued issues bookID to memberID.
func GivenBookWasIssued(
	t testing.TB,
	ctx context.Context,
	library *postgresengine.Library,
	bookID uuid.UUID,
	memberID uuid.UUID,
) circulation.Transaction {

	transaction, err := library.IssueBook(ctx, bookID, memberID)
	require.NoError(t, err, "error in arranging test data")

	return transaction
}

// GivenBookWasReturned returns an open transaction.
func GivenBookWasReturned(
	t testing.TB,
	ctx context.Context,
	library *postgresengine.Library,
	transactionID uuid.UUID,
) circulation.ReturnReceipt {

	receipt, err := library.ReturnBook(ctx, transactionID)
	require.NoError(t, err, "error in arranging test data")

	return receipt
}
