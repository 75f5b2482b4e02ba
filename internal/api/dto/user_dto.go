package dto

import "time"

// LoginRequest payload for staff and student logins.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// AuthResponse carries an issued token.
type AuthResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
}

// StaffResponse is the directory entry for the assignment UI.
type StaffResponse struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}
