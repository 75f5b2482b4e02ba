package handlers

import (
	"net/http"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-hub/support-service/internal/api/dto"
	"github.com/campus-hub/support-service/internal/auth"
	"github.com/campus-hub/support-service/internal/events"
	"github.com/campus-hub/support-service/internal/service"
	apperrors "github.com/campus-hub/support-service/pkg/util/errorutil"
)

// TicketsHandler manages ticket lifecycle endpoints.
type TicketsHandler struct {
	service *service.TicketService
}

// NewTicketsHandler constructs handler.
func NewTicketsHandler(ticketService *service.TicketService) *TicketsHandler {
	return &TicketsHandler{service: ticketService}
}

// Create handles POST /tickets.
func (h *TicketsHandler) Create(c *fiber.Ctx) error {
	var req dto.CreateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	ticket, err := h.service.Create(c.Context(), service.TicketCreateInput{
		Title:       req.Title,
		Description: req.Description,
		StudentID:   req.StudentID,
		Priority:    req.Priority,
		Category:    req.Category,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.TicketFromDomain(ticket))
}

// List handles GET /tickets.
func (h *TicketsHandler) List(c *fiber.Ctx) error {
	page, err := h.service.List(c.Context(), service.TicketListInput{
		Status: c.Query("status"),
		Search: c.Query("search"),
		Page:   parseInt(c.Query("page"), 1),
		Limit:  parseInt(c.Query("limit"), 15),
	})
	if err != nil {
		return err
	}

	items := make([]dto.TicketResponse, 0, len(page.Items))
	for i := range page.Items {
		items = append(items, dto.TicketFromDomain(&page.Items[i]))
	}
	return c.JSON(dto.TicketListResponse{
		Items: items,
		Total: page.Total,
		Page:  page.Page,
		Limit: page.Limit,
	})
}

// Get handles GET /tickets/:id.
func (h *TicketsHandler) Get(c *fiber.Ctx) error {
	ticket, err := h.service.GetByID(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketFromDomain(ticket))
}

// Update handles PATCH /tickets/:id.
func (h *TicketsHandler) Update(c *fiber.Ctx) error {
	var req dto.UpdateTicketRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	ticket, err := h.service.Update(c.Context(), actorFromPrincipal(c), c.Params("id"), service.TicketUpdateInput{
		AssigneeID: req.AssigneeID,
		Status:     req.Status,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketFromDomain(ticket))
}

// Reopen handles POST /tickets/:id/reopen.
func (h *TicketsHandler) Reopen(c *fiber.Ctx) error {
	ticket, err := h.service.Reopen(c.Context(), actorFromPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(dto.TicketFromDomain(ticket))
}

// Delete handles DELETE /tickets/:id.
func (h *TicketsHandler) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.Context(), actorFromPrincipal(c), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

func actorFromPrincipal(c *fiber.Ctx) events.Actor {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok {
		return events.Actor{}
	}
	switch {
	case principal.User != nil:
		return events.StaffActor(principal.User.ID)
	case principal.Student != nil:
		return events.StudentActor(principal.Student.ID)
	default:
		return events.Actor{}
	}
}

func parseInt(val string, def int) int {
	if val == "" {
		return def
	}
	parsed, err := strconv.Atoi(val)
	if err != nil || parsed <= 0 {
		return def
	}
	return parsed
}
