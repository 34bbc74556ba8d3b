package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/AntonStoeckl/library-circulation-go/circulation"
)

func newTable(w io.Writer, header string) *tabwriter.Writer {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	_, _ = fmt.Fprintln(tw, header)

	return tw
}

// money renders an amount with thousands separators, e.g. 1,234.50.
func money(amount decimal.Decimal) string {
	return humanize.FormatFloat("#,###.##", circulation.RoundMoney(amount).InexactFloat64())
}

func when(t time.Time) string {
	return fmt.Sprintf("%s (%s)", t.Format(time.DateTime), humanize.Time(t))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}

	return s
}

func printBooks(w io.Writer, books []circulation.Book) {
	tw := newTable(w, "ID\tTITLE\tAUTHOR\tISBN\tAVAILABLE\tTOTAL")
	for _, b := range books {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			b.ID, b.Title, b.Author, orDash(b.ISBN), humanize.Comma(int64(b.AvailableStock)), humanize.Comma(int64(b.TotalStock)))
	}

	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "%s book(s)\n", humanize.Comma(int64(len(books))))
}

func printBook(w io.Writer, b circulation.Book) {
	_, _ = fmt.Fprintf(w, "ID:          %s\n", b.ID)
	_, _ = fmt.Fprintf(w, "Title:       %s\n", b.Title)
	_, _ = fmt.Fprintf(w, "Author:      %s\n", b.Author)
	_, _ = fmt.Fprintf(w, "ISBN:        %s\n", orDash(b.ISBN))
	_, _ = fmt.Fprintf(w, "Stock:       %d of %d available, %d issued\n", b.AvailableStock, b.TotalStock, b.IssuedCopies())
	_, _ = fmt.Fprintf(w, "Registered:  %s\n", when(b.RegisteredAt))
}

func printMembers(w io.Writer, members []circulation.Member) {
	tw := newTable(w, "ID\tNAME\tEMAIL\tPHONE\tDEBT")
	for _, m := range members {
		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
			m.ID, m.Name, orDash(m.Email), orDash(m.Phone), money(m.OutstandingDebt))
	}

	_ = tw.Flush()
	_, _ = fmt.Fprintf(w, "%s member(s)\n", humanize.Comma(int64(len(members))))
}

func printMember(w io.Writer, m circulation.Member) {
	_, _ = fmt.Fprintf(w, "ID:          %s\n", m.ID)
	_, _ = fmt.Fprintf(w, "Name:        %s\n", m.Name)
	_, _ = fmt.Fprintf(w, "Email:       %s\n", orDash(m.Email))
	_, _ = fmt.Fprintf(w, "Phone:       %s\n", orDash(m.Phone))
	_, _ = fmt.Fprintf(w, "Debt:        %s\n", money(m.OutstandingDebt))
	_, _ = fmt.Fprintf(w, "Registered:  %s\n", when(m.RegisteredAt))
}

func printTransactions(w io.Writer, transactions []circulation.TransactionDetails) {
	tw := newTable(w, "ID\tBOOK\tMEMBER\tISSUED\tRETURNED\tFEE\tSTATUS")
	for _, t := range transactions {
		returned := "-"
		if t.ReturnDate != nil {
			returned = humanize.Time(*t.ReturnDate)
		}

		_, _ = fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			t.ID, t.BookTitle, t.MemberName, humanize.Time(t.IssueDate), returned, money(t.FeeCharged), t.Status)
	}

	_ = tw.Flush()
}

func printJournal(w io.Writer, entries circulation.JournalEntries) {
	tw := newTable(w, "SEQ\tTYPE\tOCCURRED\tCORRELATION\tPAYLOAD")
	for _, e := range entries {
		correlation := "-"
		if metadata, err := e.Metadata(); err == nil && metadata.CorrelationID != "" {
			correlation = metadata.CorrelationID
		}

		_, _ = fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			e.SequenceNumber, e.EntryType, e.OccurredAt.Format(time.RFC3339), correlation, e.PayloadJSON)
	}

	_ = tw.Flush()
}

func parseID(raw, what string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid %s id %q: %w", what, raw, err)
	}

	return id, nil
}
