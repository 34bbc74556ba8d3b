package main

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

var (
	journalTypes       []string
	journalMember      string
	journalBook        string
	journalTransaction string
	journalSince       time.Duration
)

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Read the circulation journal in sequence order",
	Example: `  librarian journal --type BookIssued --type BookReturned --member 0190c1d2-...
  librarian journal --since 24h`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		filter, err := journalFilter(time.Now())
		if err != nil {
			return err
		}

		entries, err := current.library.QueryJournal(readContext(cmd), filter)
		if err != nil {
			return err
		}

		printJournal(cmd.OutOrStdout(), entries)

		return nil
	},
}

// journalFilter builds the filter for the journal flags. Predicates are AND-ed.
func journalFilter(now time.Time) (circulation.JournalFilter, error) {
	var predicates []circulation.Predicate
	for key, value := range map[string]string{
		circulation.PayloadKeyMemberID:      journalMember,
		circulation.PayloadKeyBookID:        journalBook,
		circulation.PayloadKeyTransactionID: journalTransaction,
	} {
		if value != "" {
			predicates = append(predicates, circulation.P(key, value))
		}
	}

	var filter circulation.JournalFilter
	switch {
	case len(journalTypes) > 0 && len(predicates) > 0:
		filter = circulation.BuildJournalFilter().
			Matching().
			AnyEntryTypeOf(journalTypes[0], journalTypes[1:]...).
			AndAllPredicatesOf(predicates[0], predicates[1:]...).
			Finalize()

	case len(journalTypes) > 0:
		filter = circulation.BuildJournalFilter().
			Matching().
			AnyEntryTypeOf(journalTypes[0], journalTypes[1:]...).
			Finalize()

	case len(predicates) > 0:
		filter = circulation.BuildJournalFilter().
			Matching().
			AllPredicatesOf(predicates[0], predicates[1:]...).
			Finalize()

	default:
		filter = circulation.BuildJournalFilter().MatchingAnyEntry()
	}

	if journalSince <= 0 {
		return filter, nil
	}

	return filter.OccurredBetween(now.Add(-journalSince), time.Time{})
}

func init() {
	journalCmd.Flags().StringArrayVar(&journalTypes, "type", nil, "Entry type, repeatable (e.g. BookIssued)")
	journalCmd.Flags().StringVar(&journalMember, "member", "", "Only entries about this member id")
	journalCmd.Flags().StringVar(&journalBook, "book", "", "Only entries about this book id")
	journalCmd.Flags().StringVar(&journalTransaction, "transaction", "", "Only entries about this transaction id")
	journalCmd.Flags().DurationVar(&journalSince, "since", 0, "Only entries from the last duration, e.g. 72h")
	addEventualFlag(journalCmd)

	rootCmd.AddCommand(journalCmd)
}
