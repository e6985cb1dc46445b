package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/skilllink/marketplace/internal/api/dto"
	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/service"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

// WorkersHandler serves worker discovery and availability.
type WorkersHandler struct {
	jobs *service.JobService
}

// NewWorkersHandler constructs handler.
func NewWorkersHandler(jobService *service.JobService) *WorkersHandler {
	return &WorkersHandler{jobs: jobService}
}

// List GET /workers?category=.
func (h *WorkersHandler) List(c *fiber.Ctx) error {
	workers, err := h.jobs.AvailableWorkers(c.UserContext(), c.Query("category", domain.CategoryAll))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": workers})
}

// SetAvailability PATCH /workers/me/availability.
func (h *WorkersHandler) SetAvailability(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	var req dto.AvailabilityRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}

	var user *domain.User
	switch {
	case req.Toggle:
		user, err = h.jobs.ToggleAvailability(c.UserContext(), session)
	case req.IsAvailable != nil:
		user, err = h.jobs.SetAvailability(c.UserContext(), session, *req.IsAvailable)
	default:
		return apperrors.NewValidationError("isAvailable or toggle required", nil)
	}
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": user.Public()})
}

// Categories GET /categories.
func Categories(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"data": domain.Categories()})
}
