package queue

import (
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/mobisense-org/cognitive-workflow/internal/types"
)

// ErrInvalidSubmission is returned when a submission is missing its source
// name or audio path.
var ErrInvalidSubmission = errors.New("submission requires a source name and an audio path")

// Job represents one audio-processing request and its lifecycle state
type Job struct {
	ID         string                `json:"job_id"`
	SourceName string                `json:"audio_filename"`
	FilePath   string                `json:"-"`
	Status     string                `json:"status"`
	Progress   string                `json:"progress,omitempty"`
	CreatedAt  time.Time             `json:"created_at"`
	Result     *types.WorkflowResult `json:"result,omitempty"`
	Error      string                `json:"error,omitempty"`
}

// Terminal reports whether the job has finished, successfully or not
func (j *Job) Terminal() bool {
	return j.Status == types.StatusCompleted || j.Status == types.StatusFailed
}

// Submit creates a job in QUEUED state and hands it to the worker pool.
// It returns the new job id immediately; processing happens asynchronously.
func (o *Orchestrator) Submit(sourceName, audioPath string) (string, error) {
	if sourceName == "" || audioPath == "" {
		return "", ErrInvalidSubmission
	}

	job := &Job{
		ID:         uuid.New().String(),
		SourceName: sourceName,
		FilePath:   audioPath,
		Status:     types.StatusQueued,
		Progress:   "Job submitted, waiting to start processing...",
		CreatedAt:  time.Now(),
	}

	o.mu.Lock()
	o.jobs[job.ID] = job
	o.mu.Unlock()

	o.jobQueue <- job
	log.Printf("Job %s submitted for audio file: %s", job.ID, sourceName)
	return job.ID, nil
}

// Get returns a snapshot copy of the job, or false if the id is unknown.
// The copy is taken under the table lock so readers never observe a
// partially-updated record.
func (o *Orchestrator) Get(jobID string) (Job, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()

	job, ok := o.jobs[jobID]
	if !ok {
		return Job{}, false
	}
	return *job, true
}

// Sweep removes terminal jobs created before now minus maxAge and returns how
// many were deleted. Jobs still queued or processing are never touched.
func (o *Orchestrator) Sweep(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	o.mu.Lock()
	defer o.mu.Unlock()

	removed := 0
	for id, job := range o.jobs {
		if job.Terminal() && job.CreatedAt.Before(cutoff) {
			delete(o.jobs, id)
			removed++
			log.Printf("Cleaned up old job: %s", id)
		}
	}
	return removed
}

// setProgress overwrites the human-readable stage description of a live job
func (o *Orchestrator) setProgress(jobID, progress string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if job, ok := o.jobs[jobID]; ok && !job.Terminal() {
		job.Progress = progress
	}
}

// markProcessing moves a queued job into PROCESSING
func (o *Orchestrator) markProcessing(jobID string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if job, ok := o.jobs[jobID]; ok && job.Status == types.StatusQueued {
		job.Status = types.StatusProcessing
		job.Progress = "Initializing workflow components..."
	}
}

// complete moves a job to COMPLETED with its result payload
func (o *Orchestrator) complete(jobID string, result *types.WorkflowResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if job, ok := o.jobs[jobID]; ok && !job.Terminal() {
		job.Status = types.StatusCompleted
		job.Result = result
		job.Progress = "Processing completed successfully"
	}
}

// fail moves a job to FAILED with the triggering stage's message
func (o *Orchestrator) fail(jobID, message string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if job, ok := o.jobs[jobID]; ok && !job.Terminal() {
		job.Status = types.StatusFailed
		job.Error = message
		job.Progress = "Processing failed: " + message
	}
}
