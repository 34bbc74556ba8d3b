package circulation

// DecideBookRemoval guards the removal of a locked book.
// openTransactions is the number of unreturned transactions referencing it.
func DecideBookRemoval(book *Book, openTransactions int) error {
	if book == nil {
		return ErrBookNotFound
	}

	if openTransactions > 0 {
		return ErrHasOpenTransactions
	}

	return nil
}

// DecideMemberRemoval guards the removal of a locked member. Debt is checked before open loans.
func DecideMemberRemoval(member *Member, openTransactions int) error {
	if member == nil {
		return ErrMemberNotFound
	}

	if member.OutstandingDebt.IsPositive() {
		return ErrHasOutstandingDebt
	}

	if member.OutstandingDebt.IsNegative() {
		return ErrHasCreditBalance
	}

	if openTransactions > 0 {
		return ErrHasOpenTransactions
	}

	return nil
}
