package circulation

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"
)

var journalJSON = jsoniter.ConfigFastest

// Journal entry types. Every committed mutation appends exactly one entry.
const (
	EntryBookRegistered   = "BookRegistered"
	EntryBookUpdated      = "BookUpdated"
	EntryBookRemoved      = "BookRemoved"
	EntryMemberRegistered = "MemberRegistered"
	EntryMemberUpdated    = "MemberUpdated"
	EntryMemberRemoved    = "MemberRemoved"
	EntryBookIssued       = "BookIssued"
	EntryBookReturned     = "BookReturned"
	EntryPaymentRecorded  = "PaymentRecorded"
)

// JournalEntries is a slice of JournalEntry in sequence order.
type JournalEntries = []JournalEntry

// JournalEntry is one record of the append-only circulation journal.
//
// It is built on scalars so it can be stored and read back without knowing the payload type.
// Construct it with BuildJournalEntry or NewJournalEntry. SequenceNumber is assigned by the
// database and is zero before the entry is stored.
type JournalEntry struct {
	SequenceNumber uint64
	EntryType      string
	OccurredAt     time.Time
	PayloadJSON    []byte
	MetadataJSON   []byte
}

// JournalMetadata is stored next to each payload.
type JournalMetadata struct {
	MessageID     string
	CorrelationID string
}

// BuildJournalEntry populates a JournalEntry from raw JSON, validating both documents.
func BuildJournalEntry(entryType string, occurredAt time.Time, payloadJSON, metadataJSON []byte) (JournalEntry, error) {
	if entryType == "" {
		return JournalEntry{}, ErrEmptyEntryType
	}

	if len(payloadJSON) == 0 || !journalJSON.Valid(payloadJSON) {
		return JournalEntry{}, ErrInvalidPayload
	}

	if len(metadataJSON) == 0 || !journalJSON.Valid(metadataJSON) {
		return JournalEntry{}, ErrInvalidMetadata
	}

	return JournalEntry{
		EntryType:    entryType,
		OccurredAt:   NormalizeTime(occurredAt),
		PayloadJSON:  payloadJSON,
		MetadataJSON: metadataJSON,
	}, nil
}

// NewJournalEntry marshals payload and builds the metadata from ctx: a fresh message id, and the
// correlation id from WithCorrelationID, falling back to the message id.
func NewJournalEntry(ctx context.Context, entryType string, occurredAt time.Time, payload any) (JournalEntry, error) {
	payloadJSON, err := journalJSON.Marshal(payload)
	if err != nil {
		return JournalEntry{}, errors.Join(ErrMarshalingFailed, err)
	}

	messageID := uuid.Must(uuid.NewV7()).String()
	correlationID, ok := CorrelationIDFrom(ctx)
	if !ok {
		correlationID = messageID
	}

	metadataJSON, err := journalJSON.Marshal(JournalMetadata{MessageID: messageID, CorrelationID: correlationID})
	if err != nil {
		return JournalEntry{}, errors.Join(ErrMarshalingFailed, err)
	}

	return BuildJournalEntry(entryType, occurredAt, payloadJSON, metadataJSON)
}

// DecodePayload unmarshals the payload into target.
func (e JournalEntry) DecodePayload(target any) error {
	if err := journalJSON.Unmarshal(e.PayloadJSON, target); err != nil {
		return errors.Join(ErrInvalidPayload, err)
	}

	return nil
}

// Metadata unmarshals the metadata.
func (e JournalEntry) Metadata() (JournalMetadata, error) {
	var metadata JournalMetadata
	if err := journalJSON.Unmarshal(e.MetadataJSON, &metadata); err != nil {
		return JournalMetadata{}, errors.Join(ErrInvalidMetadata, err)
	}

	return metadata, nil
}
