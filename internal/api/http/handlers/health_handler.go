package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/skilllink/marketplace/internal/classifier"
	"github.com/skilllink/marketplace/internal/persistence"
)

// HealthHandler responds to liveness and readiness probes.
type HealthHandler struct {
	serviceName string
	version     string
	backend     string
	store       *persistence.Store
	redis       *persistence.Redis
	classifier  *classifier.Classifier
}

// NewHealthHandler returns a new handler instance. redis may be nil when no
// component uses it.
func NewHealthHandler(serviceName, version, backend string, store *persistence.Store, redis *persistence.Redis, c *classifier.Classifier) *HealthHandler {
	return &HealthHandler{serviceName: serviceName, version: version, backend: backend, store: store, redis: redis, classifier: c}
}

// Live reports service liveness.
func (h *HealthHandler) Live(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "alive",
		"service": h.serviceName,
		"version": h.version,
	})
}

// Ready reports service readiness by checking dependencies.
func (h *HealthHandler) Ready(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
	defer cancel()

	depStatus := fiber.Map{}
	ready := true

	if err := h.store.Ping(ctx); err != nil {
		depStatus["store"] = err.Error()
		ready = false
	} else {
		depStatus["store"] = "ok"
	}
	depStatus["backend"] = h.backend

	if h.redis != nil {
		if err := h.redis.Ping(ctx); err != nil {
			depStatus["redis"] = err.Error()
			ready = false
		} else {
			depStatus["redis"] = "ok"
		}
	}

	// The classifier degrades instead of failing, so it never blocks readiness.
	if h.classifier != nil {
		if h.classifier.Available() {
			depStatus["classifier"] = "ok"
		} else {
			depStatus["classifier"] = "unavailable"
		}
	}

	if ready {
		return c.JSON(fiber.Map{
			"status":       "ready",
			"dependencies": depStatus,
		})
	}

	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": fiber.Map{
			"code":    "DEPENDENCY_UNAVAILABLE",
			"message": "one or more dependencies unavailable",
			"details": depStatus,
		},
	})
}
