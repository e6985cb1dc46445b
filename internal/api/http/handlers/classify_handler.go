package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/skilllink/marketplace/internal/api/dto"
	"github.com/skilllink/marketplace/internal/classifier"
	apperrors "github.com/skilllink/marketplace/pkg/util/errorutil"
)

// ClassifyHandler suggests a category and price for a free-text need.
type ClassifyHandler struct {
	classifier *classifier.Classifier
}

// NewClassifyHandler constructs handler.
func NewClassifyHandler(c *classifier.Classifier) *ClassifyHandler {
	return &ClassifyHandler{classifier: c}
}

// Classify POST /classify. Failures degrade to an "Other" suggestion.
func (h *ClassifyHandler) Classify(c *fiber.Ctx) error {
	var req dto.ClassifyRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	query := strings.TrimSpace(req.Query)
	if query == "" {
		return apperrors.NewValidationError("query required", nil)
	}
	return c.JSON(fiber.Map{"data": h.classifier.Analyze(c.UserContext(), query)})
}
