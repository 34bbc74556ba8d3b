package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

var (
	transactionsMember string
	transactionsBook   string
	transactionsOpen   bool
)

var issueCmd = &cobra.Command{
	Use:   "issue <book-id> <member-id>",
	Short: "Lend one copy of a book to a member",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := parseID(args[0], "book")
		if err != nil {
			return err
		}

		memberID, err := parseID(args[1], "member")
		if err != nil {
			return err
		}

		var transaction circulation.Transaction
		err = mutate(cmd, "issue", func(ctx context.Context) error {
			var err error
			transaction, err = current.library.IssueBook(ctx, bookID, memberID)
			return err
		})
		if err != nil {
			return err
		}

		due := current.library.Policy().Fees.DueDate(transaction.IssueDate)
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Issued as transaction %s, due %s.\n", transaction.ID, when(due))

		return nil
	},
}

var returnCmd = &cobra.Command{
	Use:   "return <transaction-id>",
	Short: "Take a copy back and charge any overdue fee",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		transactionID, err := parseID(args[0], "transaction")
		if err != nil {
			return err
		}

		var receipt circulation.ReturnReceipt
		err = mutate(cmd, "return", func(ctx context.Context) error {
			var err error
			receipt, err = current.library.ReturnBook(ctx, transactionID)
			return err
		})
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "Returned %s, lent %s.\n", receipt.TransactionID, when(receipt.IssueDate))
		_, _ = fmt.Fprintf(out, "Fee charged: %s, outstanding debt: %s.\n", money(receipt.Fee), money(receipt.DebtAfter))

		return nil
	},
}

var transactionsCmd = &cobra.Command{
	Use:   "transactions [transaction-id]",
	Short: "List transactions newest first, or show one",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := readContext(cmd)

		if len(args) == 1 {
			id, err := parseID(args[0], "transaction")
			if err != nil {
				return err
			}

			details, err := current.library.GetTransaction(ctx, id)
			if err != nil {
				return err
			}

			printTransactions(cmd.OutOrStdout(), []circulation.TransactionDetails{details})

			return nil
		}

		query := circulation.TransactionQuery{OpenOnly: transactionsOpen}
		if transactionsMember != "" {
			memberID, err := parseID(transactionsMember, "member")
			if err != nil {
				return err
			}

			query.MemberID = &memberID
		}

		if transactionsBook != "" {
			bookID, err := parseID(transactionsBook, "book")
			if err != nil {
				return err
			}

			query.BookID = &bookID
		}

		transactions, err := current.library.ListTransactions(ctx, query)
		if err != nil {
			return err
		}

		printTransactions(cmd.OutOrStdout(), transactions)

		return nil
	},
}

func init() {
	addRetriesFlag(issueCmd)
	addRetriesFlag(returnCmd)

	transactionsCmd.Flags().StringVar(&transactionsMember, "member", "", "Only transactions of this member")
	transactionsCmd.Flags().StringVar(&transactionsBook, "book", "", "Only transactions of this book")
	transactionsCmd.Flags().BoolVar(&transactionsOpen, "open", false, "Only copies that are still out")
	addEventualFlag(transactionsCmd)

	rootCmd.AddCommand(issueCmd, returnCmd, transactionsCmd)
}
