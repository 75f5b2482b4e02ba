package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	httptransport "github.com/campus-hub/support-service/internal/api/http"
	"github.com/campus-hub/support-service/internal/api/http/handlers"
	"github.com/campus-hub/support-service/internal/auth"
	"github.com/campus-hub/support-service/internal/domain"
	"github.com/campus-hub/support-service/internal/events"
	"github.com/campus-hub/support-service/internal/observability"
	"github.com/campus-hub/support-service/internal/repository"
	"github.com/campus-hub/support-service/internal/service"
)

type memTicketRepo struct {
	tickets map[string]domain.Ticket
	seq     int
	clock   time.Time
	staff   map[string]string // id -> username, doubles as valid assignees
}

func newMemTicketRepo(staff map[string]string) *memTicketRepo {
	return &memTicketRepo{
		tickets: make(map[string]domain.Ticket),
		clock:   time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC),
		staff:   staff,
	}
}

func (m *memTicketRepo) tick() time.Time {
	m.clock = m.clock.Add(time.Second)
	return m.clock
}

func (m *memTicketRepo) Create(_ context.Context, ticket *domain.Ticket) error {
	m.seq++
	ticket.ID = fmt.Sprintf("T%d", m.seq)
	ticket.CreatedAt = m.tick()
	ticket.UpdatedAt = ticket.CreatedAt
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *memTicketRepo) Update(_ context.Context, ticket *domain.Ticket) error {
	if _, ok := m.tickets[ticket.ID]; !ok {
		return pgx.ErrNoRows
	}
	if ticket.AssigneeID != nil {
		if _, ok := m.staff[*ticket.AssigneeID]; !ok {
			return repository.ErrInvalidAssignee
		}
	}
	ticket.UpdatedAt = m.tick()
	m.tickets[ticket.ID] = *ticket
	return nil
}

func (m *memTicketRepo) GetByID(_ context.Context, id string) (*domain.Ticket, error) {
	ticket, ok := m.tickets[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &ticket, nil
}

func (m *memTicketRepo) List(_ context.Context, filter repository.TicketFilter) ([]domain.Ticket, int, error) {
	var matched []domain.Ticket
	for _, ticket := range m.tickets {
		if filter.Status != nil && ticket.Status != *filter.Status {
			continue
		}
		if filter.Search != nil {
			needle := strings.ToLower(*filter.Search)
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

func (m *memTicketRepo) Delete(_ context.Context, id string) error {
	if _, ok := m.tickets[id]; !ok {
		return pgx.ErrNoRows
	}
	delete(m.tickets, id)
	return nil
}

type memMessageRepo struct {
	tickets  *memTicketRepo
	messages map[string][]domain.Message
	seq      int
	students map[string]string
}

func (m *memMessageRepo) CreateGuarded(ctx context.Context, msg *domain.Message) error {
	ticket, err := m.tickets.GetByID(ctx, msg.TicketID)
	if err != nil {
		return err
	}
	if ticket.Status == domain.TicketStatusResolved {
		return repository.ErrTicketResolved
	}
	m.seq++
	msg.ID = fmt.Sprintf("M%d", m.seq)
	msg.CreatedAt = m.tickets.tick()
	if msg.Sender.Kind == domain.SenderKindStaff {
		msg.SenderName = m.tickets.staff[msg.Sender.ID]
	} else {
		msg.SenderName = m.students[msg.Sender.ID]
	}
	m.messages[msg.TicketID] = append(m.messages[msg.TicketID], *msg)
	return nil
}

func (m *memMessageRepo) ListByTicket(_ context.Context, ticketID string) ([]domain.Message, error) {
	return append([]domain.Message{}, m.messages[ticketID]...), nil
}

type memUserRepo struct {
	users map[string]domain.User
}

func (m *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	user, ok := m.users[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &user, nil
}

func (m *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	for _, user := range m.users {
		if user.Email == email {
			u := user
			return &u, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (m *memUserRepo) List(_ context.Context, role *domain.UserRole) ([]domain.User, error) {
	var result []domain.User
	for _, user := range m.users {
		if role != nil && user.Role != *role {
			continue
		}
		result = append(result, user)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Username < result[j].Username })
	return result, nil
}

type memStudentRepo struct {
	students map[string]domain.Student
}

func (m *memStudentRepo) GetByID(_ context.Context, id string) (*domain.Student, error) {
	student, ok := m.students[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return &student, nil
}

func (m *memStudentRepo) GetByEmail(_ context.Context, email string) (*domain.Student, error) {
	for _, student := range m.students {
		if student.Email == email {
			s := student
			return &s, nil
		}
	}
	return nil, pgx.ErrNoRows
}

type fixture struct {
	app    *fiber.App
	tokens *auth.TokenManager
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	ticketRepo := newMemTicketRepo(map[string]string{"U1": "admin.one"})
	messageRepo := &memMessageRepo{
		tickets:  ticketRepo,
		messages: make(map[string][]domain.Message),
		students: map[string]string{"S1": "Priya Sharma"},
	}
	userRepo := &memUserRepo{users: map[string]domain.User{
		"U1": {ID: "U1", Username: "admin.one", Email: "admin@campus.test", Role: domain.UserRoleAdmin},
		"U2": {ID: "U2", Username: "agent.two", Email: "agent@campus.test", Role: domain.UserRoleAgent},
	}}
	studentRepo := &memStudentRepo{students: map[string]domain.Student{
		"S1": {ID: "S1", Name: "Priya Sharma", Email: "priya@campus.test"},
	}}

	logger := zap.NewNop()
	dispatcher := events.NewInMemoryDispatcher()
	tokens := auth.NewTokenManager("test-secret", 5)

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, observability.NewMetrics(), 0)
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler("test", "dev", nil, nil),
		Tickets:        handlers.NewTicketsHandler(service.NewTicketService(ticketRepo, dispatcher, validator.New())),
		Chat:           handlers.NewChatHandler(service.NewChatService(messageRepo, ticketRepo, dispatcher)),
		Users:          handlers.NewUsersHandler(service.NewDirectoryService(userRepo, nil, 0, logger)),
		Auth:           handlers.NewAuthHandler(nil),
		AuthMiddleware: auth.NewMiddleware(tokens, userRepo, studentRepo),
	})
	return &fixture{app: app, tokens: tokens}
}

func (f *fixture) do(t *testing.T, method, path string, body any, headers map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	if len(raw) > 0 && raw[0] == '{' {
		require.NoError(t, json.Unmarshal(raw, &decoded))
	}
	return resp, decoded
}

func (f *fixture) doList(t *testing.T, path string) (*http.Response, []map[string]any) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	resp, err := f.app.Test(req, -1)
	require.NoError(t, err)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp, decoded
}

func TestTicketResolveReopenChatFlow(t *testing.T) {
	f := newFixture(t)

	resp, ticket := f.do(t, http.MethodPost, "/tickets", map[string]any{
		"title":       "Wifi down",
		"description": "Cannot connect to campus wifi in lab 3",
		"student_id":  "S1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "Open", ticket["status"])
	assert.Equal(t, "Low", ticket["priority"])
	ticketID := ticket["id"].(string)

	resp, body := f.do(t, http.MethodPatch, "/tickets/"+ticketID, map[string]any{
		"status": "Resolved",
	}, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Resolved", body["status"])

	// A resolved ticket takes no new messages.
	resp, body = f.do(t, http.MethodPost, "/tickets/"+ticketID+"/chat", map[string]any{
		"message":           "hello?",
		"sender_student_id": "S1",
	}, nil)
	require.Equal(t, http.StatusConflict, resp.StatusCode)
	assert.Equal(t, "ticket is resolved", body["error"])

	resp, body = f.do(t, http.MethodPost, "/tickets/"+ticketID+"/reopen", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Open", body["status"])

	resp, msg := f.do(t, http.MethodPost, "/tickets/"+ticketID+"/chat", map[string]any{
		"message":           "still failing after reopen",
		"sender_student_id": "S1",
	}, nil)
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.Equal(t, "S1", msg["sender_student_id"])
	assert.Nil(t, msg["sender_user_id"])
	assert.Equal(t, "Priya Sharma", msg["sender_name"])

	resp, thread := f.doList(t, "/tickets/"+ticketID+"/chat")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, thread, 1)
	assert.Equal(t, "still failing after reopen", thread[0]["message"])
}

func TestCreateTicketValidation(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodPost, "/tickets", map[string]any{
		"title": "no description or student",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.NotEmpty(t, body["error"])
}

func TestUpdateTicketRequiresFields(t *testing.T) {
	f := newFixture(t)

	_, ticket := f.do(t, http.MethodPost, "/tickets", map[string]any{
		"title": "t", "description": "d", "student_id": "S1",
	}, nil)
	ticketID := ticket["id"].(string)

	resp, body := f.do(t, http.MethodPatch, "/tickets/"+ticketID, map[string]any{}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "no fields to update", body["error"])
}

func TestUpdateTicketBadAssignee(t *testing.T) {
	f := newFixture(t)

	_, ticket := f.do(t, http.MethodPost, "/tickets", map[string]any{
		"title": "t", "description": "d", "student_id": "S1",
	}, nil)
	ticketID := ticket["id"].(string)

	resp, body := f.do(t, http.MethodPatch, "/tickets/"+ticketID, map[string]any{
		"assignee_id": "ghost",
	}, nil)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "assignee must be an existing staff account", body["error"])
	assert.Equal(t, "ghost", body["details"])
}

func TestReopenOpenTicketConflicts(t *testing.T) {
	f := newFixture(t)

	_, ticket := f.do(t, http.MethodPost, "/tickets", map[string]any{
		"title": "t", "description": "d", "student_id": "S1",
	}, nil)
	ticketID := ticket["id"].(string)

	resp, _ := f.do(t, http.MethodPost, "/tickets/"+ticketID+"/reopen", nil, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
}

func TestDeleteRequiresAdminToken(t *testing.T) {
	f := newFixture(t)

	_, ticket := f.do(t, http.MethodPost, "/tickets", map[string]any{
		"title": "t", "description": "d", "student_id": "S1",
	}, nil)
	ticketID := ticket["id"].(string)

	resp, _ := f.do(t, http.MethodDelete, "/tickets/"+ticketID, nil, nil)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	agentRole := domain.UserRoleAgent
	agentToken, _, err := f.tokens.GenerateToken("U2", domain.SubjectTypeStaff, &agentRole)
	require.NoError(t, err)
	resp, _ = f.do(t, http.MethodDelete, "/tickets/"+ticketID, nil, map[string]string{
		"Authorization": "Bearer " + agentToken,
	})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	role := domain.UserRoleAdmin
	token, _, err := f.tokens.GenerateToken("U1", domain.SubjectTypeStaff, &role)
	require.NoError(t, err)
	headers := map[string]string{"Authorization": "Bearer " + token}

	resp, _ = f.do(t, http.MethodDelete, "/tickets/"+ticketID, nil, headers)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, _ = f.do(t, http.MethodDelete, "/tickets/"+ticketID, nil, headers)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestListTicketsShape(t *testing.T) {
	f := newFixture(t)

	for i := 0; i < 3; i++ {
		f.do(t, http.MethodPost, "/tickets", map[string]any{
			"title": fmt.Sprintf("wifi issue %d", i), "description": "d", "student_id": "S1",
		}, nil)
	}
	f.do(t, http.MethodPost, "/tickets", map[string]any{
		"title": "fee receipt", "description": "d", "student_id": "S1",
	}, nil)

	resp, body := f.do(t, http.MethodGet, "/tickets?status=Open&search=wifi&page=1&limit=2", nil, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, float64(3), body["total"])
	assert.Equal(t, float64(1), body["page"])
	assert.Equal(t, float64(2), body["limit"])
	items := body["items"].([]any)
	assert.Len(t, items, 2)
}

func TestGetTicketNotFound(t *testing.T) {
	f := newFixture(t)

	resp, body := f.do(t, http.MethodGet, "/tickets/missing", nil, nil)
	require.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "ticket not found", body["error"])
}

func TestListStaffDirectory(t *testing.T) {
	f := newFixture(t)

	resp, staff := f.doList(t, "/users?role=admin")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Len(t, staff, 1)
	assert.Equal(t, "U1", staff[0]["id"])
	assert.Equal(t, "admin.one", staff[0]["username"])
}
