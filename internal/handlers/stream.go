package handlers

import (
	"log"
	"time"

	"github.com/gofiber/websocket/v2"

	"github.com/mobisense-org/cognitive-workflow/internal/queue"
)

// ProgressHandler streams job progress over a WebSocket connection
type ProgressHandler struct {
	orchestrator *queue.Orchestrator
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(orchestrator *queue.Orchestrator) *ProgressHandler {
	return &ProgressHandler{
		orchestrator: orchestrator,
	}
}

type progressUpdate struct {
	JobID    string `json:"job_id"`
	Status   string `json:"status"`
	Progress string `json:"progress,omitempty"`
	Error    string `json:"error,omitempty"`
}

// Handle pushes status snapshots for one job until it reaches a terminal
// state or the client disconnects.
func (h *ProgressHandler) Handle(c *websocket.Conn) {
	defer c.Close()

	jobID := c.Params("id")
	log.Printf("Progress stream opened for job %s", jobID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	var lastSent progressUpdate
	for {
		job, ok := h.orchestrator.Get(jobID)
		if !ok {
			c.WriteJSON(progressUpdate{JobID: jobID, Error: "Job not found"})
			return
		}

		update := progressUpdate{
			JobID:    job.ID,
			Status:   job.Status,
			Progress: job.Progress,
			Error:    job.Error,
		}
		if update != lastSent {
			if err := c.WriteJSON(update); err != nil {
				log.Printf("Progress stream write error for job %s: %v", jobID, err)
				return
			}
			lastSent = update
		}

		if job.Terminal() {
			return
		}
		<-ticker.C
	}
}
