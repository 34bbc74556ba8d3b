package circulation

import (
	"cmp"
	"slices"
	"time"
)

/***** JournalFilter *****/

// JournalFilter selects journal entries. Items are OR-ed; the time bounds apply to all items.
// The zero value matches every entry.
type JournalFilter struct {
	items         []JournalFilterItem
	occurredFrom  time.Time
	occurredUntil time.Time
}

func (f JournalFilter) Items() []JournalFilterItem {
	return f.items
}

func (f JournalFilter) OccurredFrom() time.Time {
	return f.occurredFrom
}

func (f JournalFilter) OccurredUntil() time.Time {
	return f.occurredUntil
}

// OccurredBetween returns a copy of the filter bounded in time. A zero bound is open.
func (f JournalFilter) OccurredBetween(from, until time.Time) (JournalFilter, error) {
	if !from.IsZero() && !until.IsZero() && until.Before(from) {
		return JournalFilter{}, ErrInvalidFilter
	}

	f.items = slices.Clone(f.items)
	f.occurredFrom = from
	f.occurredUntil = until

	return f, nil
}

/***** JournalFilterItem *****/

// JournalFilterItem matches entries of any of its types whose payload satisfies its predicates.
type JournalFilterItem struct {
	entryTypes             []string
	predicates             []Predicate
	allPredicatesMustMatch bool
}

func (fi JournalFilterItem) EntryTypes() []string {
	return fi.entryTypes
}

func (fi JournalFilterItem) Predicates() []Predicate {
	return fi.predicates
}

func (fi JournalFilterItem) AllPredicatesMustMatch() bool {
	return fi.allPredicatesMustMatch
}

/***** Predicate *****/

// Predicate matches a top-level string field of the payload.
type Predicate struct {
	key string
	val string
}

// P builds a Predicate, e.g. P(PayloadKeyMemberID, memberID.String()).
func P(key, val string) Predicate {
	return Predicate{key: key, val: val}
}

func (p Predicate) Key() string {
	return p.key
}

func (p Predicate) Val() string {
	return p.val
}

/***** Builder *****/

// JournalFilterBuilder only allows combinations that are useful for reading the journal:
//
//   - any entry
//   - (entryType OR entryType...)
//   - (predicate OR predicate...) or (predicate AND predicate...)
//   - (entryType OR entryType...) AND (predicates, ANY or ALL)
//   - several of the above, OR-ed
type JournalFilterBuilder interface {
	Matching() EmptyJournalFilterItemBuilder
	MatchingAnyEntry() JournalFilter
}

type EmptyJournalFilterItemBuilder interface {
	AnyEntryTypeOf(entryType string, entryTypes ...string) JournalFilterItemBuilderLackingPredicates
	AnyPredicateOf(predicate Predicate, predicates ...Predicate) JournalFilterItemBuilderLackingEntryTypes
	AllPredicatesOf(predicate Predicate, predicates ...Predicate) JournalFilterItemBuilderLackingEntryTypes
}

type JournalFilterItemBuilderLackingPredicates interface {
	AndAnyPredicateOf(predicate Predicate, predicates ...Predicate) CompletedJournalFilterItemBuilder
	AndAllPredicatesOf(predicate Predicate, predicates ...Predicate) CompletedJournalFilterItemBuilder
	CompletedJournalFilterItemBuilder
}

type JournalFilterItemBuilderLackingEntryTypes interface {
	AndAnyEntryTypeOf(entryType string, entryTypes ...string) CompletedJournalFilterItemBuilder
	CompletedJournalFilterItemBuilder
}

type CompletedJournalFilterItemBuilder interface {
	// OrMatching closes the current item and starts a new one.
	OrMatching() EmptyJournalFilterItemBuilder

	// Finalize closes the current item and returns the filter.
	Finalize() JournalFilter
}

type journalFilterBuilder struct {
	filter  JournalFilter
	current JournalFilterItem
}

// BuildJournalFilter starts a filter. Finish it with Finalize or MatchingAnyEntry.
//
//	filter := circulation.BuildJournalFilter().
//		Matching().
//		AnyEntryTypeOf(circulation.EntryBookIssued, circulation.EntryBookReturned).
//		AndAnyPredicateOf(circulation.P(circulation.PayloadKeyMemberID, memberID.String())).
//		Finalize()
func BuildJournalFilter() JournalFilterBuilder {
	return journalFilterBuilder{}
}

func (fb journalFilterBuilder) Matching() EmptyJournalFilterItemBuilder {
	fb.current = JournalFilterItem{}

	return fb
}

// AnyEntryTypeOf adds entry types; empty and duplicate values are dropped and the rest sorted.
func (fb journalFilterBuilder) AnyEntryTypeOf(entryType string, entryTypes ...string) JournalFilterItemBuilderLackingPredicates {
	fb.current.entryTypes = sanitizeEntryTypes(append(fb.current.entryTypes, append([]string{entryType}, entryTypes...)...))

	return fb
}

func (fb journalFilterBuilder) AndAnyEntryTypeOf(entryType string, entryTypes ...string) CompletedJournalFilterItemBuilder {
	return fb.AnyEntryTypeOf(entryType, entryTypes...)
}

// AnyPredicateOf adds predicates of which at least one must match.
// Partial predicates (empty key or value) and duplicates are dropped.
func (fb journalFilterBuilder) AnyPredicateOf(predicate Predicate, predicates ...Predicate) JournalFilterItemBuilderLackingEntryTypes {
	fb.current.predicates = sanitizePredicates(append(fb.current.predicates, append([]Predicate{predicate}, predicates...)...))

	return fb
}

func (fb journalFilterBuilder) AndAnyPredicateOf(predicate Predicate, predicates ...Predicate) CompletedJournalFilterItemBuilder {
	return fb.AnyPredicateOf(predicate, predicates...)
}

// AllPredicatesOf adds predicates which must all match.
func (fb journalFilterBuilder) AllPredicatesOf(predicate Predicate, predicates ...Predicate) JournalFilterItemBuilderLackingEntryTypes {
	fb.current.allPredicatesMustMatch = true

	return fb.AnyPredicateOf(predicate, predicates...)
}

func (fb journalFilterBuilder) AndAllPredicatesOf(predicate Predicate, predicates ...Predicate) CompletedJournalFilterItemBuilder {
	return fb.AllPredicatesOf(predicate, predicates...)
}

func (fb journalFilterBuilder) OrMatching() EmptyJournalFilterItemBuilder {
	fb.filter.items = append(slices.Clone(fb.filter.items), fb.current)
	fb.current = JournalFilterItem{}

	return fb
}

func (fb journalFilterBuilder) MatchingAnyEntry() JournalFilter {
	return fb.filter
}

func (fb journalFilterBuilder) Finalize() JournalFilter {
	fb.filter.items = append(slices.Clone(fb.filter.items), fb.current)

	return fb.filter
}

func sanitizeEntryTypes(entryTypes []string) []string {
	entryTypes = slices.DeleteFunc(entryTypes, func(e string) bool { return e == "" })
	slices.Sort(entryTypes)

	return slices.Clip(slices.Compact(entryTypes))
}

func sanitizePredicates(predicates []Predicate) []Predicate {
	predicates = slices.DeleteFunc(predicates, func(p Predicate) bool { return p.key == "" || p.val == "" })
	slices.SortFunc(predicates, func(a, b Predicate) int {
		if c := cmp.Compare(a.key, b.key); c != 0 {
			return c
		}
		return cmp.Compare(a.val, b.val)
	})

	return slices.Clip(slices.Compact(predicates))
}
