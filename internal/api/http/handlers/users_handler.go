package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-hub/support-service/internal/api/dto"
	"github.com/campus-hub/support-service/internal/domain"
	"github.com/campus-hub/support-service/internal/service"
)

// UsersHandler exposes the staff directory for the assignment UI.
type UsersHandler struct {
	directory *service.DirectoryService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(directory *service.DirectoryService) *UsersHandler {
	return &UsersHandler{directory: directory}
}

// List handles GET /users?role=admin.
func (h *UsersHandler) List(c *fiber.Ctx) error {
	var role *domain.UserRole
	if roleStr := c.Query("role"); roleStr != "" {
		r := domain.UserRole(roleStr)
		role = &r
	}

	entries, err := h.directory.ListStaff(c.Context(), role)
	if err != nil {
		return err
	}

	items := make([]dto.StaffResponse, 0, len(entries))
	for _, entry := range entries {
		items = append(items, dto.StaffResponse{ID: entry.ID, Username: entry.Username})
	}
	return c.JSON(items)
}
