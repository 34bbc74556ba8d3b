package main

import (
	"fmt"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

var (
	seedBooks       int
	seedMembers     int
	seedMaxCopies   int
	seedConcurrency int
)

var (
	seedAdjectives = []string{"Silent", "Crimson", "Hidden", "Last", "Broken", "Golden", "Distant", "Frozen"}
	seedNouns      = []string{"Harbor", "Garden", "Empire", "River", "Library", "Signal", "Orchard", "Frontier"}
	seedFirstNames = []string{"Ada", "Grace", "Alan", "Edsger", "Barbara", "Ken", "Radia", "Donald"}
	seedLastNames  = []string{"Lovelace", "Hopper", "Turing", "Dijkstra", "Liskov", "Thompson", "Perlman", "Knuth"}
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill the catalog with generated books and members",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		start := time.Now()
		var books, members atomic.Int64

		g, ctx := errgroup.WithContext(commandContext(cmd))
		g.SetLimit(seedConcurrency)

		for i := range seedBooks {
			g.Go(func() error {
				if _, err := current.library.CreateBook(ctx, generatedBook(i)); err != nil {
					return err
				}

				books.Add(1)

				return nil
			})
		}

		for i := range seedMembers {
			g.Go(func() error {
				if _, err := current.library.CreateMember(ctx, generatedMember(i)); err != nil {
					return err
				}

				members.Add(1)

				return nil
			})
		}

		err := g.Wait()

		_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Created %s books and %s members in %s.\n",
			humanize.Comma(books.Load()), humanize.Comma(members.Load()), time.Since(start).Round(time.Millisecond))

		return err
	},
}

func generatedBook(i int) circulation.NewBook {
	return circulation.NewBook{
		Title:      fmt.Sprintf("The %s %s, Vol. %d", pick(seedAdjectives), pick(seedNouns), i+1),
		Author:     pick(seedFirstNames) + " " + pick(seedLastNames),
		TotalStock: 1 + rand.IntN(max(seedMaxCopies, 1)), //nolint:gosec
	}
}

func generatedMember(i int) circulation.NewMember {
	first, last := pick(seedFirstNames), pick(seedLastNames)

	return circulation.NewMember{
		Name:  first + " " + last,
		Email: fmt.Sprintf("%s.%s.%d@example.org", first, last, i+1),
	}
}

func pick(values []string) string {
	return values[rand.IntN(len(values))] //nolint:gosec
}

func init() {
	seedCmd.Flags().IntVar(&seedBooks, "books", 100, "Number of books to create")
	seedCmd.Flags().IntVar(&seedMembers, "members", 50, "Number of members to create")
	seedCmd.Flags().IntVar(&seedMaxCopies, "max-copies", 3, "Upper bound of copies per book")
	seedCmd.Flags().IntVar(&seedConcurrency, "concurrency", 8, "Concurrent inserts")

	rootCmd.AddCommand(seedCmd)
}

