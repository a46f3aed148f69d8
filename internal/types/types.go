package types

import "time"

// Job status constants
const (
	StatusQueued     = "QUEUED"
	StatusProcessing = "PROCESSING"
	StatusCompleted  = "COMPLETED"
	StatusFailed     = "FAILED"
)

// Segment represents a timestamped unit of transcribed text
type Segment struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}

// SpeakerInterval represents one diarization turn: who spoke, and when
type SpeakerInterval struct {
	Start   float64 `json:"start"`
	End     float64 `json:"end"`
	Speaker string  `json:"speaker"`
}

// Transcription represents the raw output of the transcription engine
type Transcription struct {
	Text     string    `json:"text"`
	Language string    `json:"language"`
	Duration float64   `json:"duration"`
	Segments []Segment `json:"segments"`
}

// Verdict is the structured judgment returned by the judge model.
// The schema is owned by the model contract; fields it omits stay zero.
type Verdict struct {
	Severity          string   `json:"severity"`
	ConfidenceScore   float64  `json:"confidence_score"`
	PrimaryAction     string   `json:"primary_action"`
	SecondaryActions  []string `json:"secondary_actions,omitempty"`
	Reasoning         string   `json:"reasoning,omitempty"`
	SuggestedTimeline string   `json:"suggested_timeline,omitempty"`
	Stakeholders      []string `json:"stakeholders,omitempty"`
	BusinessImpact    string   `json:"business_impact,omitempty"`
	Keywords          []string `json:"keywords,omitempty"`
	Timestamp         string   `json:"timestamp,omitempty"`
}

// WorkflowResult is the final payload of a completed job
type WorkflowResult struct {
	JobID             string    `json:"job_id"`
	AudioFilename     string    `json:"audio_filename"`
	Transcript        string    `json:"transcription"`
	Summary           string    `json:"summary"`
	Judgment          *Verdict  `json:"judgment"`
	CompletedAt       time.Time `json:"completed_at"`
	ProcessingSeconds float64   `json:"processing_time_seconds"`
	LocalPath         string    `json:"local_path,omitempty"`
	DriveURL          string    `json:"drive_url,omitempty"`
}
