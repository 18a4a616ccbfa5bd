package dto

import (
	"github.com/carelinkhq/carelink-backend/internal/rbac"
	"github.com/google/uuid"
)

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SelectRoleRequest struct {
	Role string `json:"role"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type UserResponse struct {
	ID               uuid.UUID `json:"id"`
	Email            string    `json:"email"`
	FullName         string    `json:"full_name"`
	Role             rbac.Role `json:"role,omitempty"`
	ProfileCompleted bool      `json:"profile_completed"`
	IsVerified       bool      `json:"is_verified"`
	IsActive         bool      `json:"is_active"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type AccessDeniedResponse struct {
	Error      bool   `json:"error"`
	Message    string `json:"message"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

type UnauthorizedResponse struct {
	Message          string `json:"message"`
	RedirectTo       string `json:"redirect_to"`
	CountdownSeconds int    `json:"countdown_seconds"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
}

type SetActiveRequest struct {
	Active bool `json:"active"`
}

type VerificationActionRequest struct {
	Approve bool   `json:"approve"`
	Note    string `json:"note,omitempty"`
}
