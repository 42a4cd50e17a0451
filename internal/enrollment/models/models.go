package models

import (
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
)

// Audit event actions
const (
	AuditActionEnrollmentSubmitted = "enrollment_submitted"
	AuditActionEnrollmentRejected  = "enrollment_rejected"
)

// Audit event decisions
const (
	AuditDecisionAccepted = "accepted"
	AuditDecisionRejected = "rejected"
)

// RecordID is the opaque identifier assigned to a stored enrollment.
type RecordID string

func (id RecordID) String() string { return string(id) }

// NewRecordID returns a fresh random identifier.
func NewRecordID() RecordID {
	return RecordID(uuid.NewString())
}

// Fields are the submitted enrollment values. The JSON names are the ones the
// form posts, so submissions and admin listings share one vocabulary.
//
// Field order matches the order validation messages are reported in.
type Fields struct {
	FirstName  string `json:"nombres" validate:"required"`
	LastName   string `json:"apellidos" validate:"required"`
	DocumentID string `json:"documento" validate:"required"`
	Email      string `json:"email" validate:"simpleemail"`
	Phone      string `json:"telefono"`
	Program    string `json:"programa" validate:"required"`
	Modality   string `json:"modalidad"`
	StartDate  string `json:"inicio"`
}

// isFieldSpace matches ASCII control whitespace, every Unicode separator
// (NBSP, U+2000-U+200A, U+2028, U+3000...) and the byte order mark.
func isFieldSpace(r rune) bool {
	switch r {
	case '\t', '\n', '\v', '\f', '\r', '\uFEFF':
		return true
	}
	return unicode.Is(unicode.Z, r)
}

func trimField(s string) string {
	return strings.TrimFunc(s, isFieldSpace)
}

// Normalize trims surrounding whitespace from every field.
func (f Fields) Normalize() Fields {
	return Fields{
		FirstName:  trimField(f.FirstName),
		LastName:   trimField(f.LastName),
		DocumentID: trimField(f.DocumentID),
		Email:      trimField(f.Email),
		Phone:      trimField(f.Phone),
		Program:    trimField(f.Program),
		Modality:   trimField(f.Modality),
		StartDate:  trimField(f.StartDate),
	}
}

// FullName is the student name as shown on the receipt.
func (f Fields) FullName() string {
	return strings.TrimSpace(f.FirstName + " " + f.LastName)
}

// Record is a stored enrollment. Records are immutable once created.
type Record struct {
	ID        RecordID  `json:"id"`
	CreatedAt time.Time `json:"ts"`
	Fields
}

// NewRecord stamps normalized fields with an identifier and creation time.
func NewRecord(id RecordID, fields Fields, now time.Time) *Record {
	return &Record{
		ID:        id,
		CreatedAt: now.UTC(),
		Fields:    fields,
	}
}

// Listing is the admin view of the store: a count plus every record in
// insertion order.
type Listing struct {
	Total int      `json:"total"`
	Items []Record `json:"items"`
}

// NewListing builds a listing; Items is never nil so it encodes as [].
func NewListing(records []Record) *Listing {
	if records == nil {
		records = []Record{}
	}
	return &Listing{Total: len(records), Items: records}
}
