package dto

import (
	"time"

	"github.com/campus-hub/support-service/internal/domain"
)

// SendMessageRequest payload. Exactly one sender id must be set.
type SendMessageRequest struct {
	Message         string  `json:"message"`
	SenderUserID    *string `json:"sender_user_id"`
	SenderStudentID *string `json:"sender_student_id"`
}

// MessageResponse represents one thread entry. Only the XOR id pair and the
// resolved sender_name are exposed, never the raw relation rows.
type MessageResponse struct {
	ID              string    `json:"id"`
	TicketID        string    `json:"ticket_id"`
	Message         string    `json:"message"`
	SenderUserID    *string   `json:"sender_user_id"`
	SenderStudentID *string   `json:"sender_student_id"`
	SenderName      string    `json:"sender_name"`
	CreatedAt       time.Time `json:"created_at"`
}

// MessageFromDomain maps a domain message onto the wire shape.
func MessageFromDomain(msg *domain.Message) MessageResponse {
	return MessageResponse{
		ID:              msg.ID,
		TicketID:        msg.TicketID,
		Message:         msg.Body,
		SenderUserID:    msg.Sender.UserID(),
		SenderStudentID: msg.Sender.StudentID(),
		SenderName:      msg.SenderName,
		CreatedAt:       msg.CreatedAt,
	}
}
