package storage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mobisense-org/cognitive-workflow/internal/types"
)

// LocalStore writes workflow outputs to the local filesystem
type LocalStore struct {
	outputDir string
}

// NewLocalStore creates a local store rooted at outputDir
func NewLocalStore(outputDir string) *LocalStore {
	return &LocalStore{
		outputDir: outputDir,
	}
}

// SaveWorkflow writes transcript.txt, summary.txt and judgment.json for a
// completed workflow into a dated run directory and returns the run path.
func (ls *LocalStore) SaveWorkflow(result *types.WorkflowResult) (string, error) {
	// Run directory structure: outputs/2025/01/23/143022_meeting_recording/
	now := time.Now()
	runDir := filepath.Join(ls.outputDir,
		fmt.Sprintf("%d", now.Year()),
		fmt.Sprintf("%02d", now.Month()),
		fmt.Sprintf("%02d", now.Day()),
		fmt.Sprintf("%s_%s", now.Format("150405"), sanitizeFilename(result.AudioFilename)))

	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory: %v", err)
	}

	transcriptPath := filepath.Join(runDir, "transcript.txt")
	if err := os.WriteFile(transcriptPath, []byte(result.Transcript), 0644); err != nil {
		return "", fmt.Errorf("failed to save transcript: %v", err)
	}

	summaryPath := filepath.Join(runDir, "summary.txt")
	if err := os.WriteFile(summaryPath, []byte(result.Summary), 0644); err != nil {
		return "", fmt.Errorf("failed to save summary: %v", err)
	}

	judgmentJSON, err := json.MarshalIndent(result.Judgment, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal judgment: %v", err)
	}
	judgmentPath := filepath.Join(runDir, "judgment.json")
	if err := os.WriteFile(judgmentPath, judgmentJSON, 0644); err != nil {
		return "", fmt.Errorf("failed to save judgment: %v", err)
	}

	return runDir, nil
}

// sanitizeFilename removes invalid characters from filename
func sanitizeFilename(name string) string {
	invalid := []string{"/", "\\", ":", "*", "?", "\"", "<", ">", "|", " "}
	result := name
	for _, ch := range invalid {
		result = strings.ReplaceAll(result, ch, "_")
	}
	if result == "" {
		result = "untitled"
	}
	return result
}
