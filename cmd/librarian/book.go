package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

var (
	bookTitle  string
	bookAuthor string
	bookISBN   string
	bookStock  int
)

var bookCmd = &cobra.Command{
	Use:   "book",
	Short: "Manage the book catalog",
}

var bookAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Register a book with all copies available",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		input := circulation.NewBook{Title: bookTitle, Author: bookAuthor, ISBN: bookISBN, TotalStock: bookStock}

		var book circulation.Book
		err := mutate(cmd, "book_add", func(ctx context.Context) error {
			var err error
			book, err = current.library.CreateBook(ctx, input)
			return err
		})
		if err != nil {
			return err
		}

		printBook(cmd.OutOrStdout(), book)

		return nil
	},
}

var bookUpdateCmd = &cobra.Command{
	Use:   "update <book-id>",
	Short: "Change title, author, ISBN or total stock of a book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "book")
		if err != nil {
			return err
		}

		update := circulation.BookUpdate{}
		flags := cmd.Flags()
		if flags.Changed("title") {
			update.Title = &bookTitle
		}

		if flags.Changed("author") {
			update.Author = &bookAuthor
		}

		if flags.Changed("isbn") {
			if bookISBN == "" {
				update.ClearISBN = true
			} else {
				update.ISBN = &bookISBN
			}
		}

		if flags.Changed("stock") {
			update.TotalStock = &bookStock
		}

		var book circulation.Book
		err = mutate(cmd, "book_update", func(ctx context.Context) error {
			var err error
			book, err = current.library.UpdateBook(ctx, id, update)
			return err
		})
		if err != nil {
			return err
		}

		printBook(cmd.OutOrStdout(), book)

		return nil
	},
}

var bookRemoveCmd = &cobra.Command{
	Use:   "remove <book-id>",
	Short: "Remove a book that has no copies out",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "book")
		if err != nil {
			return err
		}

		err = mutate(cmd, "book_remove", func(ctx context.Context) error {
			return current.library.DeleteBook(ctx, id)
		})
		if err != nil {
			return err
		}

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Removed book %s.\n", id)

		return nil
	},
}

var bookShowCmd = &cobra.Command{
	Use:   "show <book-id>",
	Short: "Show one book",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := parseID(args[0], "book")
		if err != nil {
			return err
		}

		book, err := current.library.GetBook(readContext(cmd), id)
		if err != nil {
			return err
		}

		printBook(cmd.OutOrStdout(), book)

		return nil
	},
}

var bookListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all books by title",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		books, err := current.library.ListBooks(readContext(cmd))
		if err != nil {
			return err
		}

		printBooks(cmd.OutOrStdout(), books)

		return nil
	},
}

var bookSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Find books whose title or author contains term",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		books, err := current.library.SearchBooks(readContext(cmd), args[0])
		if err != nil {
			return err
		}

		printBooks(cmd.OutOrStdout(), books)

		return nil
	},
}

func init() {
	for _, cmd := range []*cobra.Command{bookAddCmd, bookUpdateCmd} {
		cmd.Flags().StringVar(&bookTitle, "title", "", "Title")
		cmd.Flags().StringVar(&bookAuthor, "author", "", "Author")
		cmd.Flags().StringVar(&bookISBN, "isbn", "", "ISBN-10 or ISBN-13, empty to clear on update")
		cmd.Flags().IntVar(&bookStock, "stock", 1, "Total number of copies")
		addRetriesFlag(cmd)
	}

	_ = bookAddCmd.MarkFlagRequired("title")
	_ = bookAddCmd.MarkFlagRequired("author")
	addRetriesFlag(bookRemoveCmd)

	for _, cmd := range []*cobra.Command{bookShowCmd, bookListCmd, bookSearchCmd} {
		addEventualFlag(cmd)
	}

	bookCmd.AddCommand(bookAddCmd, bookUpdateCmd, bookRemoveCmd, bookShowCmd, bookListCmd, bookSearchCmd)
	rootCmd.AddCommand(bookCmd)
}
