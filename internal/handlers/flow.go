package handlers

import (
	"fmt"
	"log"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/mobisense-org/cognitive-workflow/internal/queue"
	"github.com/mobisense-org/cognitive-workflow/internal/transcription"
)

// FlowHandler accepts audio uploads and submits them to the orchestrator
type FlowHandler struct {
	orchestrator *queue.Orchestrator
	tempDir      string
	maxSizeMB    int
}

// NewFlowHandler creates a new flow handler
func NewFlowHandler(orchestrator *queue.Orchestrator, tempDir string, maxSizeMB int) *FlowHandler {
	return &FlowHandler{
		orchestrator: orchestrator,
		tempDir:      tempDir,
		maxSizeMB:    maxSizeMB,
	}
}

// Handle processes a POST /flow upload
func (h *FlowHandler) Handle(c *fiber.Ctx) error {
	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No file uploaded",
			"code":  "ERR_NO_FILE",
		})
	}

	maxSize := int64(h.maxSizeMB) * 1024 * 1024
	if file.Size > maxSize {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": fmt.Sprintf("File too large (max %dMB)", h.maxSizeMB),
			"code":  "ERR_FILE_TOO_LARGE",
		})
	}

	if !transcription.ValidateAudioFormat(file.Filename) {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported audio format",
			"code":  "ERR_INVALID_FORMAT",
		})
	}

	tempPath := filepath.Join(h.tempDir, fmt.Sprintf("upload_%s%s", uuid.New().String(), filepath.Ext(file.Filename)))
	if err := c.SaveFile(file, tempPath); err != nil {
		log.Printf("Failed to save uploaded file: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to save file",
			"code":  "ERR_SAVE_FAILED",
		})
	}

	jobID, err := h.orchestrator.Submit(file.Filename, tempPath)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
			"code":  "ERR_SUBMIT",
		})
	}

	return c.JSON(fiber.Map{
		"job_id":         jobID,
		"status":         "queued",
		"message":        "Audio file submitted for processing",
		"audio_filename": file.Filename,
	})
}
