package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/campus-hub/support-service/internal/api/dto"
	"github.com/campus-hub/support-service/internal/service"
	apperrors "github.com/campus-hub/support-service/pkg/util/errorutil"
)

// ChatHandler manages the per-ticket message thread endpoints.
type ChatHandler struct {
	service *service.ChatService
}

// NewChatHandler constructs handler.
func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{service: chatService}
}

// List handles GET /tickets/:id/chat.
func (h *ChatHandler) List(c *fiber.Ctx) error {
	msgs, err := h.service.ListByTicket(c.Context(), c.Params("id"))
	if err != nil {
		return err
	}

	items := make([]dto.MessageResponse, 0, len(msgs))
	for i := range msgs {
		items = append(items, dto.MessageFromDomain(&msgs[i]))
	}
	return c.JSON(items)
}

// Send handles POST /tickets/:id/chat.
func (h *ChatHandler) Send(c *fiber.Ctx) error {
	var req dto.SendMessageRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}

	msg, err := h.service.Send(c.Context(), c.Params("id"), service.SendInput{
		Body:            req.Message,
		SenderUserID:    req.SenderUserID,
		SenderStudentID: req.SenderStudentID,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(dto.MessageFromDomain(msg))
}
