package handlers

import (
	"context"
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/skilllink/marketplace/internal/api/dto"
	"github.com/skilllink/marketplace/internal/domain"
	"github.com/skilllink/marketplace/internal/service"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

// JobsHandler manages hire, lifecycle and settlement endpoints.
type JobsHandler struct {
	jobs       *service.JobService
	settlement *service.SettlementService
}

// NewJobsHandler constructs handler.
func NewJobsHandler(jobService *service.JobService, settlement *service.SettlementService) *JobsHandler {
	return &JobsHandler{jobs: jobService, settlement: settlement}
}

// CreateJob POST /jobs.
func (h *JobsHandler) CreateJob(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	var req dto.CreateJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.WorkerID == "" {
		return apperrors.NewValidationError("workerId required", nil)
	}
	job, err := h.jobs.CreateJob(c.UserContext(), session, service.CreateJobInput{
		WorkerID:    req.WorkerID,
		Description: req.Description,
	})
	if err != nil {
		return err
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"data": job})
}

// ListJobs GET /jobs. Seekers get their active jobs, workers their dashboard.
func (h *JobsHandler) ListJobs(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	if session.Role == domain.RoleWorker {
		dash, err := h.jobs.WorkerDashboard(c.UserContext(), session)
		if err != nil {
			return err
		}
		return c.JSON(fiber.Map{"data": dash})
	}
	jobs, err := h.jobs.SeekerActiveJobs(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": jobs})
}

// GetJob GET /jobs/:id.
func (h *JobsHandler) GetJob(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	job, err := h.jobs.GetJob(c.UserContext(), session, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": job})
}

// Accept POST /jobs/:id/accept.
func (h *JobsHandler) Accept(c *fiber.Ctx) error {
	return h.transition(c, h.jobs.AcceptJob)
}

// Decline POST /jobs/:id/decline.
func (h *JobsHandler) Decline(c *fiber.Ctx) error {
	return h.transition(c, h.jobs.DeclineJob)
}

// Complete POST /jobs/:id/complete.
func (h *JobsHandler) Complete(c *fiber.Ctx) error {
	return h.transition(c, h.jobs.CompleteJob)
}

type transitionFunc func(ctx context.Context, session domain.Session, jobID string) (*domain.Job, error)

func (h *JobsHandler) transition(c *fiber.Ctx, apply transitionFunc) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	job, err := apply(c.UserContext(), session, c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": job})
}

// UpdateStatus PATCH /jobs/:id/status.
func (h *JobsHandler) UpdateStatus(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	var req dto.UpdateJobStatusRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	job, err := h.jobs.UpdateJobStatus(c.UserContext(), session, c.Params("id"), req.Status)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": job})
}

// Settle POST /jobs/:id/settle.
func (h *JobsHandler) Settle(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	var req dto.SettleJobRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	res, err := h.settlement.Settle(c.UserContext(), session, c.Params("id"), req.Rating, req.Comment)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": res})
}

// Ledger GET /ledger.
func (h *JobsHandler) Ledger(c *fiber.Ctx) error {
	session, err := sessionFrom(c)
	if err != nil {
		return err
	}
	entries, err := h.settlement.Ledger(c.UserContext(), session)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": entries})
}
