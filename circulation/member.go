package circulation

import (
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Member is a registered borrower. OutstandingDebt grows with overdue fees and shrinks with payments.
type Member struct {
	ID              uuid.UUID
	Name            string
	Email           string // empty when unknown
	Phone           string // empty when unknown
	OutstandingDebt decimal.Decimal
	RegisteredAt    time.Time
}

// NewMember carries the input for registering a member.
type NewMember struct {
	Name  string
	Email string
	Phone string
}

// MemberUpdate is a partial update. Nil fields are left unchanged, a pointer to "" clears
// email or phone.
type MemberUpdate struct {
	Name  *string
	Email *string
	Phone *string
}

// IsEmpty reports whether the update changes nothing.
func (u MemberUpdate) IsEmpty() bool {
	return u.Name == nil && u.Email == nil && u.Phone == nil
}

// RegisterMember validates the input and builds a Member without debt.
func RegisterMember(input NewMember, id uuid.UUID, registeredAt time.Time) (Member, error) {
	name, err := requireText(input.Name, ErrMissingName)
	if err != nil {
		return Member{}, err
	}

	email, err := NormalizeEmail(input.Email)
	if err != nil {
		return Member{}, err
	}

	return Member{
		ID:              id,
		Name:            name,
		Email:           email,
		Phone:           strings.TrimSpace(input.Phone),
		OutstandingDebt: decimal.Zero,
		RegisteredAt:    NormalizeTime(registeredAt),
	}, nil
}

// DecideMemberUpdate applies a partial update to a locked member.
func DecideMemberUpdate(member *Member, update MemberUpdate) (Member, error) {
	if member == nil {
		return Member{}, ErrMemberNotFound
	}

	if update.IsEmpty() {
		return Member{}, ErrNothingToUpdate
	}

	updated := *member

	if update.Name != nil {
		name, err := requireText(*update.Name, ErrMissingName)
		if err != nil {
			return Member{}, err
		}
		updated.Name = name
	}

	if update.Email != nil {
		email, err := NormalizeEmail(*update.Email)
		if err != nil {
			return Member{}, err
		}
		updated.Email = email
	}

	if update.Phone != nil {
		updated.Phone = strings.TrimSpace(*update.Phone)
	}

	return updated, nil
}

// NormalizeEmail accepts a bare address ("a@b.org") and rejects display-name forms.
// An empty input is valid and means "no email".
func NormalizeEmail(raw string) (string, error) {
	email := strings.TrimSpace(raw)
	if email == "" {
		return "", nil
	}

	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}

	return email, nil
}
