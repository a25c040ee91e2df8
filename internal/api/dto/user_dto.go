package dto

import (
	"strings"
	"time"
)

// UserRegisterRequest payload for new dashboard accounts.
type UserRegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Role     string `json:"role" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Normalize trims the identity fields. Passwords are kept verbatim.
func (r *UserRegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.TrimSpace(r.Email)
	r.Role = strings.TrimSpace(r.Role)
}

// UserLoginRequest payload for login. Dashboards send the email in the
// username field; email is accepted as well.
type UserLoginRequest struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// Identity returns the login email.
func (r UserLoginRequest) Identity() string {
	if r.Username != "" {
		return r.Username
	}
	return r.Email
}

// AuthResponse standard response for login.
type AuthResponse struct {
	Token     string    `json:"token"`
	Role      string    `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// UserCreatedResponse acknowledges a registration.
type UserCreatedResponse struct {
	Message string `json:"message"`
	UserID  string `json:"user_id"`
}
