package domain

import "time"

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "Open"
	TicketStatusInProgress TicketStatus = "In Progress"
	TicketStatusResolved   TicketStatus = "Resolved"
)

// StatusFilterAll is the sentinel meaning "no status filter" on listings.
const StatusFilterAll = "All"

// TicketPriority enumerates urgency levels.
type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "Low"
	TicketPriorityMedium TicketPriority = "Medium"
	TicketPriorityHigh   TicketPriority = "High"
)

// TicketCategory classifies the subject of a support request.
type TicketCategory string

const (
	TicketCategoryFee            TicketCategory = "Fee"
	TicketCategoryPlacement      TicketCategory = "Placement"
	TicketCategoryCertificate    TicketCategory = "Certificate"
	TicketCategoryInfrastructure TicketCategory = "Infrastructure"
	TicketCategoryFaculty        TicketCategory = "Faculty"
	TicketCategoryOther          TicketCategory = "Other"
)

// Defaults applied once at creation, never re-derived per handler.
const (
	DefaultPriority = TicketPriorityLow
	DefaultCategory = TicketCategoryOther
)

// Ticket is the aggregate for student support requests.
type Ticket struct {
	ID          string
	StudentID   string
	AssigneeID  *string
	Title       string
	Description string
	Status      TicketStatus
	Priority    TicketPriority
	Category    TicketCategory
	CreatedAt   time.Time
	UpdatedAt   time.Time

	// Resolved display names, populated by joined reads only.
	StudentName  string
	AssigneeName *string
}

var allowedTransitions = map[TicketStatus][]TicketStatus{
	TicketStatusOpen:       {TicketStatusInProgress, TicketStatusResolved},
	TicketStatusInProgress: {TicketStatusResolved},
	// Resolved -> Open happens only through the explicit reopen action.
	TicketStatusResolved: {},
}

// CanTransition reports whether a staff status update from current to next is legal.
func CanTransition(current, next TicketStatus) bool {
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// ValidStatus reports whether the value is a known lifecycle state.
func ValidStatus(s TicketStatus) bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusResolved:
		return true
	}
	return false
}

// ValidPriority reports whether the value is a known priority.
func ValidPriority(p TicketPriority) bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh:
		return true
	}
	return false
}

// ValidCategory reports whether the value is a known category.
func ValidCategory(c TicketCategory) bool {
	switch c {
	case TicketCategoryFee, TicketCategoryPlacement, TicketCategoryCertificate,
		TicketCategoryInfrastructure, TicketCategoryFaculty, TicketCategoryOther:
		return true
	}
	return false
}
