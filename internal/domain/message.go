package domain

import (
	"errors"
	"time"
)

// SenderKind identifies which side of the conversation authored a message.
type SenderKind string

const (
	SenderKindStaff   SenderKind = "STAFF"
	SenderKindStudent SenderKind = "STUDENT"
)

// Sender is the tagged identity of a message author: exactly one of a staff
// account or a student account. Persisted as two nullable columns, but code
// only ever sees the tagged form so the mutual exclusion cannot be violated
// after construction.
type Sender struct {
	Kind SenderKind
	ID   string
}

// StaffSender builds a staff-authored sender.
func StaffSender(userID string) Sender {
	return Sender{Kind: SenderKindStaff, ID: userID}
}

// StudentSender builds a student-authored sender.
func StudentSender(studentID string) Sender {
	return Sender{Kind: SenderKindStudent, ID: studentID}
}

// ErrAmbiguousSender is returned when neither or both sender ids are supplied.
var ErrAmbiguousSender = errors.New("exactly one of sender_user_id or sender_student_id must be set")

// SenderFromIDs collapses the wire-level pair of nullable ids into a Sender.
func SenderFromIDs(userID, studentID *string) (Sender, error) {
	switch {
	case userID != nil && studentID == nil && *userID != "":
		return StaffSender(*userID), nil
	case studentID != nil && userID == nil && *studentID != "":
		return StudentSender(*studentID), nil
	default:
		return Sender{}, ErrAmbiguousSender
	}
}

// UserID returns the staff account id when the sender is staff, else nil.
func (s Sender) UserID() *string {
	if s.Kind == SenderKindStaff {
		id := s.ID
		return &id
	}
	return nil
}

// StudentID returns the student id when the sender is a student, else nil.
func (s Sender) StudentID() *string {
	if s.Kind == SenderKindStudent {
		id := s.ID
		return &id
	}
	return nil
}

// Valid reports whether the sender carries a known kind and a non-empty id.
func (s Sender) Valid() bool {
	return (s.Kind == SenderKindStaff || s.Kind == SenderKindStudent) && s.ID != ""
}

// Message is one entry in a ticket's chat thread. Immutable once created;
// thread order is created_at ascending.
type Message struct {
	ID        string
	TicketID  string
	Sender    Sender
	Body      string
	CreatedAt time.Time

	// SenderName is the resolved display name of the author, populated on reads.
	SenderName string
}
