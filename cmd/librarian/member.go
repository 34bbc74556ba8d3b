package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

var (
	memberName  string
	memberEmail string
	memberPhone string
)

var memberCmd = &cobra.Command{
	Use:   "member",
	Short: "Manage members, their debt and payments",
}

var memberAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a member",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input := circulation.NewMember{Name: memberName, Email: memberEmail, Phone: memberPhone}

		var member circulation.Member
		err := mutate(cmd, "member_add", func(ctx context.Context) error {
			var err error
			member, err = current.library.CreateMember(ctx, input)
			return err
		})
		if err != nil {
			return err
		}

		printMember(cmd.OutOrStdout(), member)

		return nil
	},
}

var memberUpdateCmd = &cobra.Command{
	Use:   "update <member-id>",
	Short: "Change name, email or phone of a member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "member")
		if err != nil {
			return err
		}

		update := circulation.MemberUpdate{}
		flags := cmd.Flags()
		if flags.Changed("name") {
			update.Name = &memberName
		}

		if flags.Changed("email") {
			update.Email = &memberEmail
		}

		if flags.Changed("phone") {
			update.Phone = &memberPhone
		}

		var member circulation.Member
		err = mutate(cmd, "member_update", func(ctx context.Context) error {
			var err error
			member, err = current.library.UpdateMember(ctx, id, update)
			return err
		})
		if err != nil {
			return err
		}

		printMember(cmd.OutOrStdout(), member)

		return nil
	},
}

var memberRemoveCmd = &cobra.Command{
	Use:   "remove <member-id>",
	Short: "Remove a member without debt or open loans",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "member")
		if err != nil {
			return err
		}

		err = mutate(cmd, "member_remove", func(ctx context.Context) error {
			return current.library.DeleteMember(ctx, id)
		})
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed member %s.\n", id)

		return nil
	},
}

var memberShowCmd = &cobra.Command{
	Use:   "show <member-id>",
	Short: "Show one member and the books they hold",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "member")
		if err != nil {
			return err
		}

		ctx := readContext(cmd)
		member, err := current.library.GetMember(ctx, id)
		if err != nil {
			return err
		}

		holding, err := current.library.ListTransactions(ctx, circulation.OpenTransactionsOfMember(id))
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		printMember(out, member)
		if len(holding) > 0 {
			_, _ = fmt.Fprintln(out)
			printTransactions(out, holding)
		}

		return nil
	},
}

var memberListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all members by name",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		members, err := current.library.ListMembers(readContext(cmd))
		if err != nil {
			return err
		}

		printMembers(cmd.OutOrStdout(), members)

		return nil
	},
}

var memberDebtCmd = &cobra.Command{
	Use:   "debt <member-id>",
	Short: "Show the outstanding debt of a member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "member")
		if err != nil {
			return err
		}

		debt, err := current.library.MemberDebt(readContext(cmd), id)
		if err != nil {
			return err
		}

		limit := current.library.Policy().DebtLimit
		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Outstanding debt: %s (limit %s)\n", money(debt), money(limit))
		if debt.GreaterThanOrEqual(limit) {
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), "The member cannot borrow until the debt drops below the limit.")
		}

		return nil
	},
}

var memberPayCmd = &cobra.Command{
	Use:   "pay <member-id> <amount>",
	Short: "Record a payment against the outstanding debt",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "member")
		if err != nil {
			return err
		}

		amount, err := circulation.ParseMoney(args[1])
		if err != nil {
			return err
		}

		var receipt circulation.PaymentReceipt
		err = mutate(cmd, "member_pay", func(ctx context.Context) error {
			var err error
			receipt, err = current.library.RecordPayment(ctx, id, amount)
			return err
		})
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Payment %s of %s recorded, debt %s -> %s.\n",
			receipt.PaymentID, money(receipt.Amount), money(receipt.DebtBefore), money(receipt.DebtAfter))

		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{memberAddCmd, memberUpdateCmd} {
		cmd.Flags().StringVar(&memberName, "name", "", "Full name")
		cmd.Flags().StringVar(&memberEmail, "email", "", "Email address, empty to clear on update")
		cmd.Flags().StringVar(&memberPhone, "phone", "", "Phone number, empty to clear on update")
		addRetriesFlag(cmd)
	}

	_ = memberAddCmd.MarkFlagRequired("name")
	addRetriesFlag(memberRemoveCmd)
	addRetriesFlag(memberPayCmd)

	for _, cmd := range []*cobra.Command{memberShowCmd, memberListCmd, memberDebtCmd} {
		addEventualFlag(cmd)
	}

	memberCmd.AddCommand(memberAddCmd, memberUpdateCmd, memberRemoveCmd, memberShowCmd, memberListCmd, memberDebtCmd, memberPayCmd)
	rootCmd.AddCommand(memberCmd)
}
