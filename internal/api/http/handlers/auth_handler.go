package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/campus-hub/support-service/internal/api/dto"
	"github.com/campus-hub/support-service/internal/service"
	apperrors "github.com/campus-hub/support-service/pkg/util/errorutil"
)

// AuthHandler exposes login endpoints for staff and students.
type AuthHandler struct {
	auth *service.AuthService
}

// NewAuthHandler constructs handler.
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{auth: authService}
}

// StaffLogin handles POST /auth/login.
func (h *AuthHandler) StaffLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required")
	}

	user, token, exp, err := h.auth.LoginStaff(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"user": fiber.Map{
			"id":       user.ID,
			"username": user.Username,
			"role":     user.Role,
		},
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}

// StudentLogin handles POST /auth/students/login.
func (h *AuthHandler) StudentLogin(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload")
	}
	if req.Email == "" || req.Password == "" {
		return apperrors.NewValidationError("email and password required")
	}

	student, token, exp, err := h.auth.LoginStudent(c.Context(), req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{
		"student": fiber.Map{
			"id":   student.ID,
			"name": student.Name,
		},
		"auth": dto.AuthResponse{Token: token, ExpiresAt: exp},
	})
}
