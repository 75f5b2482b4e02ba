package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/campus-hub/support-service/internal/domain"
	"github.com/campus-hub/support-service/internal/events"
	"github.com/campus-hub/support-service/internal/repository"
)

type fakeTicketRepo struct {
	mu      sync.Mutex
	tickets map[string]domain.Ticket
	seq     int
	clock   time.Time

	validAssignees map[string]bool
	err            error
}

func newFakeTicketRepo() *fakeTicketRepo {
	return &fakeTicketRepo{
		tickets:        make(map[string]domain.Ticket),
		clock:          time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		validAssignees: make(map[string]bool),
	}
}

func (f *fakeTicketRepo) tick() time.Time {
	f.clock = f.clock.Add(time.Second)
	return f.clock
}

func (f *fakeTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.seq++
	ticket.ID = fmt.Sprintf("ticket-%d", f.seq)
	ticket.CreatedAt = f.tick()
	ticket.UpdatedAt = ticket.CreatedAt
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	if ticket.AssigneeID != nil && !f.validAssignees[*ticket.AssigneeID] {
		return repository.ErrInvalidAssignee
	}
	ticket.UpdatedAt = f.tick()
	f.tickets[ticket.ID] = *ticket
	return nil
}

func (f *fakeTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	ticket, ok := f.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (f *fakeTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, 0, f.err
	}

	var matched []domain.Ticket
	for _, ticket := range f.tickets {
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Search != nil {
			needle := strings.ToLower(strings.TrimSpace(*filter.Search))
			if !strings.Contains(strings.ToLower(ticket.Title), needle) &&
				!strings.Contains(strings.ToLower(ticket.Description), needle) {
				continue
			}
		}
		matched = append(matched, ticket)
	}
	sort.Slice(matched, func(i, j int) bool {
		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	total := len(matched)
	if filter.Offset >= len(matched) {
		return nil, total, nil
	}
	matched = matched[filter.Offset:]
	if filter.Limit > 0 && len(matched) > filter.Limit {
		matched = matched[:filter.Limit]
	}
	return matched, total, nil
}

func (f *fakeTicketRepo) Delete(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	if _, ok := f.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(f.tickets, id)
	return nil
}

type fakeMessageRepo struct {
	mu       sync.Mutex
	tickets  *fakeTicketRepo
	messages map[string][]domain.Message
	seq      int

	staffNames   map[string]string
	studentNames map[string]string
}

func newFakeMessageRepo(tickets *fakeTicketRepo) *fakeMessageRepo {
	return &fakeMessageRepo{
		tickets:      tickets,
		messages:     make(map[string][]domain.Message),
		staffNames:   make(map[string]string),
		studentNames: make(map[string]string),
	}
}

func (f *fakeMessageRepo) CreateGuarded(ctx context.Context, msg *domain.Message) error {
	ticket, err := f.tickets.GetByID(ctx, msg.TicketID)
	if err != nil {
		return err
	}
	if ticket.Status == domain.TicketStatusResolved {
		return repository.ErrTicketResolved
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++
	msg.ID = fmt.Sprintf("msg-%d", f.seq)
	msg.CreatedAt = f.tickets.tick()
	if msg.Sender.Kind == domain.SenderKindStaff {
		msg.SenderName = f.staffNames[msg.Sender.ID]
	} else {
		msg.SenderName = f.studentNames[msg.Sender.ID]
	}
	f.messages[msg.TicketID] = append(f.messages[msg.TicketID], *msg)
	return nil
}

func (f *fakeMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msgs := append([]domain.Message{}, f.messages[ticketID]...)
	sort.Slice(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})
	return msgs, nil
}

type fakeUserRepo struct {
	users map[string]domain.User // keyed by id
}

func newFakeUserRepo(users ...domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{users: make(map[string]domain.User)}
	for _, user := range users {
		repo.users[user.ID] = user
	}
	return repo
}

func (f *fakeUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := f.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (f *fakeUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) List(_ context.Context, role *domain.UserRole) ([]domain.User, error) {
	var result []domain.User
	for _, user := range f.users {
		if role != nil && user.Role != *role {
			continue
		}
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

type fakeStudentRepo struct {
	students map[string]domain.Student
}

func newFakeStudentRepo(students ...domain.Student) *fakeStudentRepo {
	repo := &fakeStudentRepo{students: make(map[string]domain.Student)}
	for _, student := range students {
		repo.students[student.ID] = student
	}
	return repo
}

func (f *fakeStudentRepo) GetByID(_ context.Context, id string) (*domain.Student, error) {
	student, ok := f.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &student, nil
}

func (f *fakeStudentRepo) GetByEmail(_ context.Context, email string) (*domain.Student, error) {
	for _, student := range f.students {
		if student.Email == email {
			s := student
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// eventSink collects every event published through a dispatcher.
type eventSink struct {
	mu     sync.Mutex
	events []events.Event
}

func newEventSink(dispatcher events.Dispatcher) *eventSink {
	sink := &eventSink{}
	for _, eventType := range []events.EventType{
		events.EventTicketCreated,
		events.EventTicketUpdated,
		events.EventTicketReopened,
		events.EventTicketDeleted,
		events.EventMessageAdded,
	} {
		dispatcher.Subscribe(eventType, sink.record)
	}
	return sink
}

func (s *eventSink) record(_ context.Context, event events.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
	return nil
}

func (s *eventSink) actions() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	actions := make([]string, 0, len(s.events))
	for _, event := range s.events {
		actions = append(actions, event.Action)
	}
	return actions
}
