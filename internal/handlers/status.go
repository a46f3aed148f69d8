package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/mobisense-org/cognitive-workflow/internal/queue"
)

// StatusHandler serves job status snapshots
type StatusHandler struct {
	orchestrator *queue.Orchestrator
}

// NewStatusHandler creates a new status handler
func NewStatusHandler(orchestrator *queue.Orchestrator) *StatusHandler {
	return &StatusHandler{
		orchestrator: orchestrator,
	}
}

// Handle processes a GET /job/:id request
func (h *StatusHandler) Handle(c *fiber.Ctx) error {
	jobID := c.Params("id")

	job, ok := h.orchestrator.Get(jobID)
	if !ok {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Job not found",
			"code":  "ERR_JOB_NOT_FOUND",
		})
	}

	return c.JSON(job)
}
