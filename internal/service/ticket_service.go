package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/support-service/internal/domain"
	"github.com/campus-hub/support-service/internal/events"
	"github.com/campus-hub/support-service/internal/repository"
	apperrors "github.com/campus-hub/support-service/pkg/util/errorutil"
)

// TicketService owns the ticket lifecycle: creation, listing, partial updates,
// the reopen action and deletion.
type TicketService struct {
	tickets    repository.TicketRepository
	dispatcher events.Dispatcher
	validate   *validator.Validate
}

// NewTicketService constructs the service.
func NewTicketService(tickets repository.TicketRepository, dispatcher events.Dispatcher, validate *validator.Validate) *TicketService {
	return &TicketService{tickets: tickets, dispatcher: dispatcher, validate: validate}
}

// TicketCreateInput describes ticket creation payload.
type TicketCreateInput struct {
	Title       string `validate:"required"`
	Description string `validate:"required"`
	StudentID   string `validate:"required"`
	Priority    string
	Category    string
}

// TicketListInput describes listing filters.
type TicketListInput struct {
	Status string
	Search string
	Page   int
	Limit  int
}

// TicketPage is one page of a ticket listing plus the total matching count.
type TicketPage struct {
	Items []domain.Ticket
	Total int
	Page  int
	Limit int
}

// TicketUpdateInput describes the PATCH payload. Nil means "leave unchanged".
type TicketUpdateInput struct {
	AssigneeID *string
	Status     *string
}

// Create validates input, applies defaults and persists a new Open ticket.
func (s *TicketService) Create(ctx context.Context, input TicketCreateInput) (*domain.Ticket, error) {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	if err := s.validate.Struct(input); err != nil {
		return nil, apperrors.NewValidationError("title, description and student_id are required")
	}

	priority := domain.DefaultPriority
	if input.Priority != "" {
		priority = domain.TicketPriority(input.Priority)
		if !domain.ValidPriority(priority) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown priority %q", input.Priority))
		}
	}
	category := domain.DefaultCategory
	if input.Category != "" {
		category = domain.TicketCategory(input.Category)
		if !domain.ValidCategory(category) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown category %q", input.Category))
		}
	}

	ticket := &domain.Ticket{
		StudentID:   input.StudentID,
		Title:       input.Title,
		Description: input.Description,
		Status:      domain.TicketStatusOpen,
		Priority:    priority,
		Category:    category,
	}
	if err := s.tickets.Create(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketCreated,
		TicketID:    ticket.ID,
		Actor:       events.StudentActor(ticket.StudentID),
		Action:      "Created",
		Description: fmt.Sprintf("Ticket %q created", ticket.Title),
	})
	return ticket, nil
}

// List returns one page of tickets ordered by creation time descending.
func (s *TicketService) List(ctx context.Context, input TicketListInput) (*TicketPage, error) {
	page := input.Page
	if page <= 0 {
		page = 1
	}
	limit := input.Limit
	if limit <= 0 {
		limit = 15
	}

	filter := repository.TicketFilter{
		Limit:  limit,
		Offset: (page - 1) * limit,
	}
	if input.Status != "" && input.Status != domain.StatusFilterAll {
		status := domain.TicketStatus(input.Status)
		if !domain.ValidStatus(status) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", input.Status))
		}
		filter.Status = &status
	}
	if strings.TrimSpace(input.Search) != "" {
		search := input.Search
		filter.Search = &search
	}

	items, total, err := s.tickets.List(ctx, filter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	if items == nil {
		items = []domain.Ticket{}
	}
	return &TicketPage{Items: items, Total: total, Page: page, Limit: limit}, nil
}

// GetByID fetches a single ticket with resolved display names.
func (s *TicketService) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.MapError(err)
	}
	return ticket, nil
}

// Update applies a partial update of assignee and/or status.
func (s *TicketService) Update(ctx context.Context, actor events.Actor, id string, input TicketUpdateInput) (*domain.Ticket, error) {
	if input.AssigneeID == nil && input.Status == nil {
		return nil, apperrors.NewValidationError("no fields to update")
	}

	ticket, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var changes []string
	if input.Status != nil {
		next := domain.TicketStatus(*input.Status)
		if !domain.ValidStatus(next) {
			return nil, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", *input.Status))
		}
		if next != ticket.Status {
			if !domain.CanTransition(ticket.Status, next) {
				return nil, apperrors.NewConflict(fmt.Sprintf("cannot move ticket from %s to %s", ticket.Status, next))
			}
			ticket.Status = next
			changes = append(changes, fmt.Sprintf("status=%s", next))
		}
	}
	if input.AssigneeID != nil {
		if *input.AssigneeID == "" {
			ticket.AssigneeID = nil
			changes = append(changes, "unassigned")
		} else {
			assignee := *input.AssigneeID
			ticket.AssigneeID = &assignee
			changes = append(changes, fmt.Sprintf("assignee=%s", assignee))
		}
	}

	if err := s.tickets.Update(ctx, ticket); err != nil {
		switch {
		case errors.Is(err, repository.ErrInvalidAssignee):
			return nil, apperrors.NewAssigneeError(*input.AssigneeID)
		case errors.Is(err, pgx.ErrNoRows):
			return nil, apperrors.NewNotFound("ticket")
		default:
			return nil, apperrors.MapError(err)
		}
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketUpdated,
		TicketID:    ticket.ID,
		Actor:       actor,
		Action:      "Updated",
		Description: fmt.Sprintf("Ticket %q updated: %s", ticket.Title, strings.Join(changes, ", ")),
	})
	return ticket, nil
}

// Reopen moves a Resolved ticket back to Open. Any other current state is a
// conflict.
func (s *TicketService) Reopen(ctx context.Context, actor events.Actor, id string) (*domain.Ticket, error) {
	ticket, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket.Status != domain.TicketStatusResolved {
		return nil, apperrors.NewConflict(fmt.Sprintf("only resolved tickets can be reopened (current status: %s)", ticket.Status))
	}

	ticket.Status = domain.TicketStatusOpen
	if err := s.tickets.Update(ctx, ticket); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket")
		}
		return nil, apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketReopened,
		TicketID:    ticket.ID,
		Actor:       actor,
		Action:      "Reopened",
		Description: fmt.Sprintf("Ticket %q reopened", ticket.Title),
	})
	return ticket, nil
}

// Delete removes a ticket permanently. A second delete of the same id is a
// not-found, never a silent success.
func (s *TicketService) Delete(ctx context.Context, actor events.Actor, id string) error {
	if err := s.tickets.Delete(ctx, id); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("ticket")
		}
		return apperrors.MapError(err)
	}

	s.publishEvent(ctx, events.Event{
		Type:        events.EventTicketDeleted,
		TicketID:    id,
		Actor:       actor,
		Action:      "Deleted",
		Description: fmt.Sprintf("Ticket %s deleted", id),
	})
	return nil
}

func (s *TicketService) publishEvent(ctx context.Context, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	_ = s.dispatcher.Publish(ctx, event)
}
