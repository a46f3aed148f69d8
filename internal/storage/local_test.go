package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mobisense-org/cognitive-workflow/internal/types"
)

// TestSaveWorkflowWritesRunFiles verifies the three output files land in the
// dated run directory.
func TestSaveWorkflowWritesRunFiles(t *testing.T) {
	store := NewLocalStore(t.TempDir())

	result := &types.WorkflowResult{
		JobID:         "job-1",
		AudioFilename: "team meeting.wav",
		Transcript:    "[00:00] Speaker 1: hello",
		Summary:       "a short meeting",
		Judgment:      &types.Verdict{Severity: "LOW", PrimaryAction: "NO_ACTION"},
		CompletedAt:   time.Now(),
	}

	runDir, err := store.SaveWorkflow(result)
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	for _, name := range []string{"transcript.txt", "summary.txt", "judgment.json"} {
		if _, err := os.Stat(filepath.Join(runDir, name)); err != nil {
			t.Fatalf("missing %s: %v", name, err)
		}
	}

	transcript, err := os.ReadFile(filepath.Join(runDir, "transcript.txt"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}
	if string(transcript) != result.Transcript {
		t.Fatalf("transcript = %q", transcript)
	}
}

// TestSanitizeFilename checks separator and wildcard characters are replaced.
func TestSanitizeFilename(t *testing.T) {
	if got := sanitizeFilename("a/b:c*d?.wav"); got != "a_b_c_d_.wav" {
		t.Fatalf("sanitized = %q", got)
	}
	if got := sanitizeFilename(""); got != "untitled" {
		t.Fatalf("empty name = %q", got)
	}
}
