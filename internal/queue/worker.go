package queue

import (
	"fmt"
	"log"
	"os"
	"runtime/debug"
	"sync"
	"time"

	"github.com/mobisense-org/cognitive-workflow/internal/attribution"
	"github.com/mobisense-org/cognitive-workflow/internal/metrics"
	"github.com/mobisense-org/cognitive-workflow/internal/storage"
	"github.com/mobisense-org/cognitive-workflow/internal/types"
)

// Transcriber converts an audio file into a timestamped transcript
type Transcriber interface {
	Transcribe(audioPath string) (*types.Transcription, error)
}

// Diarizer partitions an audio file into per-speaker time intervals.
// An error here is not fatal to the job: the attribution engine has a
// transcript-level fallback.
type Diarizer interface {
	Diarize(audioPath string) ([]types.SpeakerInterval, error)
}

// Summarizer condenses a speaker-labeled transcript into a summary
type Summarizer interface {
	Summarize(transcript string) (string, error)
}

// Judge analyzes a summary and returns a structured verdict
type Judge interface {
	Judge(summary string) (*types.Verdict, error)
}

// Components bundles the workflow collaborators built by a ComponentFactory
type Components struct {
	Transcriber Transcriber
	Diarizer    Diarizer
	Summarizer  Summarizer
	Judge       Judge
}

// ComponentFactory builds the workflow collaborators. Construction is heavy
// (model clients, API handshakes), so the orchestrator defers it until the
// first job and runs it at most once.
type ComponentFactory func() (*Components, error)

// Archive holds optional persistence hooks for completed workflows. Any nil
// field is skipped; archive failures never fail the job.
type Archive struct {
	Local *storage.LocalStore
	Drive *storage.DriveClient
	DB    *storage.WorkflowDB
}

// Orchestrator owns the in-memory job table and the worker pool that drains
// it. All job mutations go through its table lock; the lock is never held
// across a collaborator call.
type Orchestrator struct {
	mu   sync.Mutex
	jobs map[string]*Job

	jobQueue    chan *Job
	workerCount int

	factory    ComponentFactory
	initMu     sync.Mutex
	components *Components

	archive   *Archive
	evaluator *metrics.Evaluator
}

// NewOrchestrator creates an orchestrator with a fixed-size worker pool.
// Call Start to launch the workers.
func NewOrchestrator(workerCount int, factory ComponentFactory, archive *Archive, evaluator *metrics.Evaluator) *Orchestrator {
	if workerCount < 1 {
		workerCount = 1
	}
	return &Orchestrator{
		jobs:        make(map[string]*Job),
		jobQueue:    make(chan *Job, 100), // Buffer of 100 jobs
		workerCount: workerCount,
		factory:     factory,
		archive:     archive,
		evaluator:   evaluator,
	}
}

// Start launches the worker goroutines
func (o *Orchestrator) Start() {
	log.Printf("Starting worker pool with %d workers", o.workerCount)
	for i := 0; i < o.workerCount; i++ {
		go o.worker(i)
	}
}

// worker drains the job queue. Each job is handled by exactly one worker for
// its entire lifetime.
func (o *Orchestrator) worker(id int) {
	log.Printf("Worker %d started", id)

	for job := range o.jobQueue {
		func() {
			defer func() {
				if r := recover(); r != nil {
					log.Printf("Worker %d: PANIC processing job %s: %v\n%s",
						id, job.ID, r, string(debug.Stack()))
					o.fail(job.ID, fmt.Sprintf("Worker panic: %v", r))
					o.cleanupTempFile(job.FilePath)
				}
			}()

			o.processJob(id, job)
		}()
	}
}

// ensureComponents lazily builds the collaborators, at most once for the
// orchestrator's lifetime. A failed build is returned to the caller but not
// cached, so the next job retries initialization.
func (o *Orchestrator) ensureComponents() (*Components, error) {
	o.initMu.Lock()
	defer o.initMu.Unlock()

	if o.components != nil {
		return o.components, nil
	}

	log.Println("Initializing workflow components...")
	comps, err := o.factory()
	if err != nil {
		return nil, err
	}
	o.components = comps
	log.Println("Workflow components initialized successfully")
	return comps, nil
}

// processJob runs the three-stage pipeline for one job. The first stage
// failure is terminal; there are no retries and no partial results.
func (o *Orchestrator) processJob(workerID int, job *Job) {
	log.Printf("Worker %d: Processing job %s", workerID, job.ID)
	o.markProcessing(job.ID)
	defer o.cleanupTempFile(job.FilePath)

	comps, err := o.ensureComponents()
	if err != nil {
		log.Printf("Worker %d: Component initialization failed for job %s: %v", workerID, job.ID, err)
		o.fail(job.ID, fmt.Sprintf("Component initialization failed: %v", err))
		return
	}

	// Stage 1: transcription + speaker attribution
	o.setProgress(job.ID, "Transcribing audio...")
	stageStart := time.Now()
	transcription, err := comps.Transcriber.Transcribe(job.FilePath)
	if err != nil {
		log.Printf("Worker %d: Transcription failed for job %s: %v", workerID, job.ID, err)
		o.fail(job.ID, fmt.Sprintf("Transcription failed: %v", err))
		return
	}
	if transcription == nil || len(transcription.Segments) == 0 {
		o.fail(job.ID, "Transcription failed: no speech recognized")
		return
	}
	o.evaluator.TrackStage(job.ID, "transcription", time.Since(stageStart))

	var intervals []types.SpeakerInterval
	if comps.Diarizer != nil {
		intervals, err = comps.Diarizer.Diarize(job.FilePath)
		if err != nil {
			log.Printf("Worker %d: Diarization unavailable for job %s: %v", workerID, job.ID, err)
			intervals = nil
		}
	}
	labeled := attribution.Attribute(transcription.Segments, intervals)

	// Stage 2: summarization
	o.setProgress(job.ID, "Generating summary...")
	stageStart = time.Now()
	summary, err := comps.Summarizer.Summarize(labeled)
	if err != nil {
		log.Printf("Worker %d: Summarization failed for job %s: %v", workerID, job.ID, err)
		o.fail(job.ID, fmt.Sprintf("Summarization failed: %v", err))
		return
	}
	o.evaluator.TrackStage(job.ID, "summarization", time.Since(stageStart))

	// Stage 3: judgment
	o.setProgress(job.ID, "Analyzing situation...")
	stageStart = time.Now()
	verdict, err := comps.Judge.Judge(summary)
	if err != nil {
		log.Printf("Worker %d: Judgment failed for job %s: %v", workerID, job.ID, err)
		o.fail(job.ID, fmt.Sprintf("Judgment analysis failed: %v", err))
		return
	}
	o.evaluator.TrackStage(job.ID, "judgment", time.Since(stageStart))

	result := &types.WorkflowResult{
		JobID:             job.ID,
		AudioFilename:     job.SourceName,
		Transcript:        labeled,
		Summary:           summary,
		Judgment:          verdict,
		CompletedAt:       time.Now(),
		ProcessingSeconds: time.Since(job.CreatedAt).Seconds(),
	}
	o.archiveResult(workerID, result)

	o.complete(job.ID, result)
	log.Printf("Worker %d: Job %s completed successfully", workerID, job.ID)
}

// archiveResult persists a completed workflow through the configured hooks.
// Failures are logged and skipped: archiving is a side channel, not a stage.
func (o *Orchestrator) archiveResult(workerID int, result *types.WorkflowResult) {
	if o.archive == nil {
		return
	}

	if o.archive.Local != nil {
		localPath, err := o.archive.Local.SaveWorkflow(result)
		if err != nil {
			log.Printf("Worker %d: Local save failed for job %s: %v", workerID, result.JobID, err)
		} else {
			result.LocalPath = localPath
		}
	}

	if o.archive.Drive != nil {
		var (
			driveURL string
			err      error
		)
		for attempt := 1; attempt <= 3; attempt++ {
			driveURL, err = o.archive.Drive.UploadReport(result)
			if err == nil {
				result.DriveURL = driveURL
				break
			}
			log.Printf("Worker %d: Drive upload attempt %d/3 failed: %v", workerID, attempt, err)
			if attempt < 3 {
				time.Sleep(time.Duration(attempt*attempt) * time.Second) // Exponential backoff
			}
		}
	}

	if o.archive.DB != nil {
		if err := o.archive.DB.SaveWorkflow(result); err != nil {
			log.Printf("Worker %d: Database save failed for job %s: %v", workerID, result.JobID, err)
		}
	}
}

// cleanupTempFile removes the uploaded audio file once the job is terminal
func (o *Orchestrator) cleanupTempFile(filePath string) {
	if filePath == "" {
		return
	}
	if err := os.Remove(filePath); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to cleanup temp file %s: %v", filePath, err)
	}
}
