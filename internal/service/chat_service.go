package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/support-service/internal/domain"
	"github.com/campus-hub/support-service/internal/events"
	"github.com/campus-hub/support-service/internal/repository"
	apperrors "github.com/campus-hub/support-service/pkg/util/errorutil"
)

// ChatService owns the per-ticket message thread and its send guard.
type ChatService struct {
	messages   repository.MessageRepository
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
}

// NewChatService constructs the service.
func NewChatService(messages repository.MessageRepository, tickets repository.TicketRepository, dispatcher events.Dispatcher) *ChatService {
	return &ChatService{messages: messages, tickets: tickets, dispatcher: dispatcher}
}

// SendInput describes a message send. At most one sender id may be set.
type SendInput struct {
	Body            string
	SenderUserID    *string
	SenderStudentID *string
}

// Send appends a message to an unresolved ticket's thread.
func (s *ChatService) Send(ctx context.Context, ticketID string, input SendInput) (*domain.Message, error) {
	body := strings.TrimSpace(input.Body)
	if body == "" {
		return nil, apperrors.NewValidationError("message is required")
	}
	sender, err := domain.SenderFromIDs(input.SenderUserID, input.SenderStudentID)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error())
	}

	msg := &domain.Message{
		TicketID: ticketID,
		Sender:   sender,
		Body:     body,
	}
	if err := s.messages.CreateGuarded(ctx, msg); err != nil {
		switch {
		case errors.Is(err, repository.ErrTicketResolved):
			return nil, apperrors.NewConflict("ticket is resolved")
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("ticket")
		default:
			return nil, apperrors.MapError(err)
		}
	}

	if s.dispatcher != nil {
		actor := events.StaffActor(sender.ID)
		if sender.Kind == domain.SenderKindStudent {
			actor = events.StudentActor(sender.ID)
		}
		_ = s.dispatcher.Publish(ctx, events.Event{
			ID:          uuid.NewString(),
			Type:        events.EventMessageAdded,
			TicketID:    ticketID,
			Actor:       actor,
			Action:      "Message",
			Description: fmt.Sprintf("Message added to ticket %s", ticketID),
			Timestamp:   time.Now(),
		})
	}
	return msg, nil
}

// ListByTicket returns the full thread, oldest first, with sender names
// resolved.
func (s *ChatService) ListByTicket(ctx context.Context, ticketID string) ([]domain.Message, error) {
	if _, err := s.tickets.GetByID(ctx, ticketID); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.MapError(err)
	}

	msgs, err := s.messages.ListByTicket(ctx, ticketID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if msgs == nil {
		msgs = []domain.Message{}
	}
	return msgs, nil
}
