package dto

import (
	"time"

	"github.com/campus-hub/support-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	StudentID   string `json:"student_id"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
}

// UpdateTicketRequest payload. Absent fields stay unchanged.
type UpdateTicketRequest struct {
	AssigneeID *string `json:"assignee_id"`
	Status     *string `json:"status"`
}

// TicketResponse is the canonical ticket representation.
type TicketResponse struct {
	ID           string                `json:"id"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	Category     domain.TicketCategory `json:"category"`
	StudentID    string                `json:"student_id"`
	AssigneeID   *string               `json:"assignee_id"`
	StudentName  string                `json:"student_name,omitempty"`
	AssigneeName *string               `json:"assignee_name,omitempty"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketListResponse is one page of tickets plus the total matching count.
type TicketListResponse struct {
	Items []TicketResponse `json:"items"`
	Total int              `json:"total"`
	Page  int              `json:"page"`
	Limit int              `json:"limit"`
}

// TicketFromDomain maps a domain ticket onto the wire shape.
func TicketFromDomain(ticket *domain.Ticket) TicketResponse {
	return TicketResponse{
		ID:           ticket.ID,
		Title:        ticket.Title,
		Description:  ticket.Description,
		Status:       ticket.Status,
		Priority:     ticket.Priority,
		Category:     ticket.Category,
		StudentID:    ticket.StudentID,
		AssigneeID:   ticket.AssigneeID,
		StudentName:  ticket.StudentName,
		AssigneeName: ticket.AssigneeName,
		CreatedAt:    ticket.CreatedAt,
		UpdatedAt:    ticket.UpdatedAt,
	}
}
