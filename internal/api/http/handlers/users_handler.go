package handlers

import (
	"net/http"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/skilllink/marketplace/internal/api/dto"
	"github.com/skilllink/marketplace/internal/auth"
	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/service"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

// UsersHandler exposes auth endpoints for seekers and workers.
type UsersHandler struct {
	auth *service.AuthService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService) *UsersHandler {
	return &UsersHandler{auth: authService}
}

// Signup handles POST /auth/signup.
func (h *UsersHandler) Signup(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	res, err := h.auth.Signup(c.UserContext(), service.SignupInput{
		Name:       strings.TrimSpace(req.Name),
		Email:      strings.TrimSpace(req.Email),
		Password:   req.Password,
		Role:       req.Role,
		Category:   req.Category,
		HourlyRate: req.HourlyRate,
		Bio:        req.Bio,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": sessionResponse(res)})
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Email == "" || !req.Role.Valid() {
		return apperrors.NewValidationError("email and role required", map[string]any{"role": req.Role})
	}
	res, err := h.auth.Login(c.UserContext(), strings.TrimSpace(req.Email), req.Password, req.Role)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": sessionResponse(res)})
}

// Logout handles POST /auth/logout. Tokens stay valid until they expire.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.UserContext()); err != nil {
		return err
	}
	return c.SendStatus(http.StatusNoContent)
}

// Session handles GET /auth/session.
func (h *UsersHandler) Session(c *fiber.Ctx) error {
	principal, err := principalFrom(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.SessionResponse{
		Session: principal.Session,
		User:    principal.User.Public(),
	}})
}

func sessionResponse(res *service.AuthResult) dto.SessionResponse {
	return dto.SessionResponse{
		Session: res.Session,
		User:    res.User.Public(),
		Auth:    &dto.AuthResponse{Token: res.Token.Value, ExpiresAt: res.Token.ExpiresAt},
	}
}

func principalFrom(c *fiber.Ctx) (*auth.Principal, error) {
	principal, ok := auth.PrincipalFromContext(c)
	if !ok || principal.User == nil {
		return nil, apperrors.NewUnauthorized("user required")
	}
	return principal, nil
}

func sessionFrom(c *fiber.Ctx) (domain.Session, error) {
	principal, err := principalFrom(c)
	if err != nil {
		return domain.Session{}, err
	}
	return principal.Session, nil
}
