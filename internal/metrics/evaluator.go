package metrics

import (
	"sync"
	"time"
)

// StageSample records one pipeline stage execution
type StageSample struct {
	JobID    string    `json:"job_id"`
	Stage    string    `json:"stage"`
	Seconds  float64   `json:"seconds"`
	Recorded time.Time `json:"recorded_at"`
}

// LLMSample records one model call with a rough chars/4 token estimate
type LLMSample struct {
	Step         string    `json:"step"`
	Model        string    `json:"model"`
	InputTokens  int       `json:"input_tokens_est"`
	OutputTokens int       `json:"output_tokens_est"`
	Seconds      float64   `json:"seconds"`
	TokensPerSec float64   `json:"tokens_per_second"`
	Recorded     time.Time `json:"recorded_at"`
}

// Report aggregates everything tracked so far
type Report struct {
	Stages      []StageSample      `json:"stages"`
	LLMCalls    []LLMSample        `json:"llm_calls"`
	StageTotals map[string]float64 `json:"stage_totals_seconds"`
}

// Evaluator accumulates per-stage timings and model-call throughput.
// A nil Evaluator is valid and drops everything, so callers that do not
// care about metrics can pass nil.
type Evaluator struct {
	mu     sync.Mutex
	stages []StageSample
	llm    []LLMSample
}

func NewEvaluator() *Evaluator {
	return &Evaluator{}
}

// TrackStage records the wall-clock duration of one pipeline stage
func (e *Evaluator) TrackStage(jobID, stage string, d time.Duration) {
	if e == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.stages = append(e.stages, StageSample{
		JobID:    jobID,
		Stage:    stage,
		Seconds:  d.Seconds(),
		Recorded: time.Now(),
	})
}

// TrackLLMCall records one model call. Token counts are estimated as
// len(text)/4, matching what the model endpoints bill in practice closely
// enough for throughput trends.
func (e *Evaluator) TrackLLMCall(step, model, input, output string, d time.Duration) {
	if e == nil {
		return
	}
	inTokens := len(input) / 4
	outTokens := len(output) / 4
	tps := 0.0
	if secs := d.Seconds(); secs > 0 {
		tps = float64(outTokens) / secs
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	e.llm = append(e.llm, LLMSample{
		Step:         step,
		Model:        model,
		InputTokens:  inTokens,
		OutputTokens: outTokens,
		Seconds:      d.Seconds(),
		TokensPerSec: tps,
		Recorded:     time.Now(),
	})
}

// Report returns a snapshot of all tracked samples with per-stage totals
func (e *Evaluator) Report() Report {
	if e == nil {
		return Report{StageTotals: map[string]float64{}}
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	report := Report{
		Stages:      append([]StageSample(nil), e.stages...),
		LLMCalls:    append([]LLMSample(nil), e.llm...),
		StageTotals: make(map[string]float64),
	}
	for _, s := range e.stages {
		report.StageTotals[s.Stage] += s.Seconds
	}
	return report
}
