package events

import (
	"time"

	"github.com/campus-hub/support-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventTicketCreated  EventType = "ticket_created"
	EventTicketUpdated  EventType = "ticket_updated"
	EventTicketReopened EventType = "ticket_reopened"
	EventTicketDeleted  EventType = "ticket_deleted"
	EventMessageAdded   EventType = "message_added"
)

// Actor encapsulates actor metadata for an event.
type Actor struct {
	Type      domain.SubjectType `json:"type"`
	UserID    *string            `json:"user_id,omitempty"`
	StudentID *string            `json:"student_id,omitempty"`
}

// Tag renders the actor as a short audit label.
func (a Actor) Tag() string {
	switch {
	case a.UserID != nil:
		return "staff:" + *a.UserID
	case a.StudentID != nil:
		return "student:" + *a.StudentID
	default:
		return "system"
	}
}

// StudentActor builds an actor for a student subject.
func StudentActor(studentID string) Actor {
	return Actor{Type: domain.SubjectTypeStudent, StudentID: &studentID}
}

// StaffActor builds an actor for a staff subject.
func StaffActor(userID string) Actor {
	return Actor{Type: domain.SubjectTypeStaff, UserID: &userID}
}

// Event represents a domain event emitted by services.
type Event struct {
	ID          string    `json:"id"`
	Type        EventType `json:"type"`
	TicketID    string    `json:"ticket_id"`
	Actor       Actor     `json:"actor"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	Timestamp   time.Time `json:"timestamp"`
}
