package handlers

import (
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// UsersHandler exposes login and account management.
type UsersHandler struct {
	auth     *service.AuthService
	validate *validator.Validate
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, validate *validator.Validate) *UsersHandler {
	return &UsersHandler{auth: authService, validate: validate}
}

// Login handles POST /api/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	res, err := h.auth.Login(c.UserContext(), req.Identity(), req.Password)
	if err != nil {
		return err
	}
	return c.JSON(dto.AuthResponse{Token: res.Token, Role: res.Role, ExpiresAt: res.ExpiresAt})
}

// Register handles POST /api/users.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	req.Normalize()
	if err := validateRequest(h.validate, &req); err != nil {
		return err
	}

	user, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Role:     req.Role,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(dto.UserCreatedResponse{Message: "User added successfully", UserID: user.ID})
}
