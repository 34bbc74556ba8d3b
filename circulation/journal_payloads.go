package circulation

import (
	"time"
)

// Payload keys usable in journal filter predicates.
const (
	PayloadKeyBookID        = "BookID"
	PayloadKeyMemberID      = "MemberID"
	PayloadKeyTransactionID = "TransactionID"
	PayloadKeyPaymentID     = "PaymentID"
)

type BookRegisteredPayload struct {
	BookID     string
	Title      string
	Author     string
	ISBN       string `json:",omitempty"`
	TotalStock int
}

type BookUpdatedPayload struct {
	BookID         string
	Title          string
	Author         string
	ISBN           string `json:",omitempty"`
	TotalStock     int
	AvailableStock int
}

type BookRemovedPayload struct {
	BookID string
}

type MemberRegisteredPayload struct {
	MemberID string
	Name     string
	Email    string `json:",omitempty"`
	Phone    string `json:",omitempty"`
}

type MemberUpdatedPayload struct {
	MemberID string
	Name     string
	Email    string `json:",omitempty"`
	Phone    string `json:",omitempty"`
}

type MemberRemovedPayload struct {
	MemberID string
}

type BookIssuedPayload struct {
	TransactionID string
	BookID        string
	MemberID      string
	IssueDate     time.Time
}

// BookReturnedPayload carries amounts as fixed two-decimal strings.
type BookReturnedPayload struct {
	TransactionID string
	BookID        string
	MemberID      string
	ReturnDate    time.Time
	Fee           string
	DebtAfter     string
}

type PaymentRecordedPayload struct {
	PaymentID string
	MemberID  string
	Amount    string
	DebtAfter string
}

func BookRegisteredPayloadFrom(b Book) BookRegisteredPayload {
	return BookRegisteredPayload{
		BookID:     b.ID.String(),
		Title:      b.Title,
		Author:     b.Author,
		ISBN:       b.ISBN,
		TotalStock: b.TotalStock,
	}
}

func BookUpdatedPayloadFrom(b Book) BookUpdatedPayload {
	return BookUpdatedPayload{
		BookID:         b.ID.String(),
		Title:          b.Title,
		Author:         b.Author,
		ISBN:           b.ISBN,
		TotalStock:     b.TotalStock,
		AvailableStock: b.AvailableStock,
	}
}

func MemberRegisteredPayloadFrom(m Member) MemberRegisteredPayload {
	return MemberRegisteredPayload{MemberID: m.ID.String(), Name: m.Name, Email: m.Email, Phone: m.Phone}
}

func MemberUpdatedPayloadFrom(m Member) MemberUpdatedPayload {
	return MemberUpdatedPayload{MemberID: m.ID.String(), Name: m.Name, Email: m.Email, Phone: m.Phone}
}

func BookIssuedPayloadFrom(t Transaction) BookIssuedPayload {
	return BookIssuedPayload{
		TransactionID: t.ID.String(),
		BookID:        t.BookID.String(),
		MemberID:      t.MemberID.String(),
		IssueDate:     t.IssueDate,
	}
}

func BookReturnedPayloadFrom(r ReturnReceipt) BookReturnedPayload {
	return BookReturnedPayload{
		TransactionID: r.TransactionID.String(),
		BookID:        r.BookID.String(),
		MemberID:      r.MemberID.String(),
		ReturnDate:    r.ReturnDate,
		Fee:           FormatMoney(r.Fee),
		DebtAfter:     FormatMoney(r.DebtAfter),
	}
}

func PaymentRecordedPayloadFrom(r PaymentReceipt) PaymentRecordedPayload {
	return PaymentRecordedPayload{
		PaymentID: r.PaymentID.String(),
		MemberID:  r.MemberID.String(),
		Amount:    FormatMoney(r.Amount),
		DebtAfter: FormatMoney(r.DebtAfter),
	}
}
