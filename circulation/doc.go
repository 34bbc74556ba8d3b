// Package circulation holds the domain model and business rules of a lending library:
// books with stock counters, members with outstanding debt, and the transactions that lend a copy
// of a book to a member and take it back.
//
// All rules are pure functions over the rows a storage engine has locked:
//   - DecideIssue: availability and debt limit gating
//   - DecideReturn: closing a transaction and charging the overdue fee
//   - DecidePayment: reducing a member's debt
//   - DecideBookUpdate / ResizeStock: administrative stock changes
//   - DecideBookRemoval / DecideMemberRemoval: deletion guards
//
// The package also defines the error taxonomy (ErrorKind, KindOf and the Err* sentinels),
// the injected Clock, the configurable Policy and FeeSchedule, the append-only journal entry
// format with its fluent JournalFilter, and the dependency-free observability interfaces.
//
// A storage engine, see package postgresengine, runs each decision inside one database
// transaction:
//
//	book, member := lockBook(bookID), lockMember(memberID)
//	outcome, err := circulation.DecideIssue(book, member, command, policy)
//	if err != nil {
//		// roll back, nothing was changed
//	}
//	// persist outcome.Book and outcome.Transaction, append a journal entry, commit
package circulation
