package main

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
	"github.com/AntonStoeckl/library-circulation-go/shell"
)

var contenders int

// contentionTally counts the outcomes of concurrent issue attempts.
type contentionTally struct {
	issued     atomic.Int64
	outOfStock atomic.Int64
	conflicts  atomic.Int64
	rejected   atomic.Int64
}

func (t *contentionTally) count(err error) {
	switch {
	case err == nil:
		t.issued.Add(1)
	case errors.Is(err, circulation.ErrBookOutOfStock):
		t.outOfStock.Add(1)
	case errors.Is(err, circulation.ErrConcurrencyConflict):
		t.conflicts.Add(1)
	default:
		t.rejected.Add(1)
	}
}

var contentionCmd = &cobra.Command{
	Use:   "contention <book-id> <member-id>...",
	Short: "Fire concurrent issue requests for one book and report who got a copy",
	Long: `Contention starts --contenders concurrent issue requests for the same book, spread
round-robin over the given members. The stock never goes negative: exactly as many requests
succeed as there were copies available (or members below the debt limit).`,
	Args: cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		bookID, err := parseID(args[0], "book")
		if err != nil {
			return err
		}

		memberIDs := make([]uuid.UUID, 0, len(args)-1)
		for _, arg := range args[1:] {
			memberID, err := parseID(arg, "member")
			if err != nil {
				return err
			}

			memberIDs = append(memberIDs, memberID)
		}

		tally := &contentionTally{}
		start := time.Now()
		g, ctx := errgroup.WithContext(commandContext(cmd))

		for i := range contenders {
			memberID := memberIDs[i%len(memberIDs)]

			g.Go(func() error {
				_, err := shell.RetryWithExponentialBackoff(ctx, func(ctx context.Context) error {
					_, err := current.library.IssueBook(ctx, bookID, memberID)
					return err
				}, shell.WithMaxAttempts(retries+1))

				if circulation.KindOf(err) == circulation.KindStorageFailure && !errors.Is(err, circulation.ErrConcurrencyConflict) {
					return err
				}

				tally.count(err)

				return nil
			})
		}

		if err = g.Wait(); err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(out, "%s contenders finished in %s\n", humanize.Comma(int64(contenders)), time.Since(start).Round(time.Millisecond))
		_, _ = fmt.Fprintf(out, "  issued:        %d\n", tally.issued.Load())
		_, _ = fmt.Fprintf(out, "  out of stock:  %d\n", tally.outOfStock.Load())
		_, _ = fmt.Fprintf(out, "  conflicts:     %d\n", tally.conflicts.Load())
		_, _ = fmt.Fprintf(out, "  other:         %d\n", tally.rejected.Load())

		return nil
	},
}

func init() {
	contentionCmd.Flags().IntVarP(&contenders, "contenders", "n", 10, "Number of concurrent issue requests")
	addRetriesFlag(contentionCmd)

	rootCmd.AddCommand(contentionCmd)
}
