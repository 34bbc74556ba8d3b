package circulation

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Book is a title held by the library together with its stock counters.
// Invariant: 0 <= AvailableStock <= TotalStock.
type Book struct {
	ID             uuid.UUID
	Title          string
	Author         string
	ISBN           string // empty when unknown
	TotalStock     int
	AvailableStock int
	RegisteredAt   time.Time
}

// IssuedCopies is the number of copies currently lent out.
func (b Book) IssuedCopies() int {
	return b.TotalStock - b.AvailableStock
}

// NewBook carries the input for registering a book.
type NewBook struct {
	Title      string
	Author     string
	ISBN       string
	TotalStock int
}

// BookUpdate is a partial update. Nil fields are left unchanged.
type BookUpdate struct {
	Title      *string
	Author     *string
	ISBN       *string
	ClearISBN  bool
	TotalStock *int
}

// IsEmpty reports whether the update changes nothing.
func (u BookUpdate) IsEmpty() bool {
	return u.Title == nil && u.Author == nil && u.ISBN == nil && !u.ClearISBN && u.TotalStock == nil
}

// RegisterBook validates the input and builds a new Book with all copies available.
func RegisterBook(input NewBook, id uuid.UUID, registeredAt time.Time) (Book, error) {
	title, err := requireText(input.Title, ErrMissingTitle)
	if err != nil {
		return Book{}, err
	}

	author, err := requireText(input.Author, ErrMissingAuthor)
	if err != nil {
		return Book{}, err
	}

	isbn, err := NormalizeISBN(input.ISBN)
	if err != nil {
		return Book{}, err
	}

	if input.TotalStock < 0 {
		return Book{}, ErrInvalidStock
	}

	return Book{
		ID:             id,
		Title:          title,
		Author:         author,
		ISBN:           isbn,
		TotalStock:     input.TotalStock,
		AvailableStock: input.TotalStock,
		RegisteredAt:   NormalizeTime(registeredAt),
	}, nil
}

// DecideBookUpdate applies a partial update to a locked book.
// A nil book means it does not exist.
func DecideBookUpdate(book *Book, update BookUpdate, policy Policy) (Book, error) {
	if book == nil {
		return Book{}, ErrBookNotFound
	}

	if update.IsEmpty() {
		return Book{}, ErrNothingToUpdate
	}

	updated := *book

	if update.Title != nil {
		title, err := requireText(*update.Title, ErrMissingTitle)
		if err != nil {
			return Book{}, err
		}
		updated.Title = title
	}

	if update.Author != nil {
		author, err := requireText(*update.Author, ErrMissingAuthor)
		if err != nil {
			return Book{}, err
		}
		updated.Author = author
	}

	switch {
	case update.ClearISBN:
		updated.ISBN = ""
	case update.ISBN != nil:
		isbn, err := NormalizeISBN(*update.ISBN)
		if err != nil {
			return Book{}, err
		}
		updated.ISBN = isbn
	}

	if update.TotalStock != nil {
		available, err := ResizeStock(book.TotalStock, book.AvailableStock, *update.TotalStock, policy.ClampStockShrink)
		if err != nil {
			return Book{}, err
		}
		updated.TotalStock = *update.TotalStock
		updated.AvailableStock = available
	}

	return updated, nil
}

// ResizeStock computes the available stock after total stock changes from total to newTotal.
// Available stock moves by the same delta and is clamped to [0, newTotal]. Unless clamp is set,
// shrinking below the number of issued copies is refused.
func ResizeStock(total, available, newTotal int, clamp bool) (int, error) {
	if newTotal < 0 {
		return 0, ErrInvalidStock
	}

	issued := total - available
	if newTotal < issued && !clamp {
		return 0, ErrStockBelowIssued
	}

	newAvailable := available + (newTotal - total)

	return max(0, min(newAvailable, newTotal)), nil
}

// NormalizeISBN strips hyphens and spaces and checks the length. An empty input is valid and means
// "no isbn". ISBN-10 may end in X.
func NormalizeISBN(raw string) (string, error) {
	isbn := strings.Map(func(r rune) rune {
		if r == '-' || r == ' ' {
			return -1
		}
		return r
	}, strings.TrimSpace(raw))

	if isbn == "" {
		return "", nil
	}

	isbn = strings.ToUpper(isbn)

	switch len(isbn) {
	case 10:
		if !allDigits(isbn[:9]) || !(allDigits(isbn[9:]) || isbn[9] == 'X') {
			return "", ErrInvalidISBN
		}
	case 13:
		if !allDigits(isbn) {
			return "", ErrInvalidISBN
		}
	default:
		return "", ErrInvalidISBN
	}

	return isbn, nil
}

func allDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}

	return true
}

func requireText(s string, errIfEmpty error) (string, error) {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", errIfEmpty
	}

	return trimmed, nil
}
