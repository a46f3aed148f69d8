package llm

import (
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mobisense-org/cognitive-workflow/internal/metrics"
	"github.com/mobisense-org/cognitive-workflow/internal/types"
)

// Judge analyzes conversation summaries and produces structured verdicts
type Judge struct {
	client      *Client
	model       string
	maxTokens   int
	temperature float64
	evaluator   *metrics.Evaluator
}

// NewJudge creates a judge bound to one model
func NewJudge(client *Client, model string, maxTokens int, temperature float64, evaluator *metrics.Evaluator) *Judge {
	return &Judge{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		evaluator:   evaluator,
	}
}

// Judge analyzes a summary and returns the model's structured verdict,
// stamped with the analysis time.
func (j *Judge) Judge(summary string) (*types.Verdict, error) {
	if strings.TrimSpace(summary) == "" {
		return nil, fmt.Errorf("empty summary text provided")
	}

	log.Println("Starting situation analysis...")
	prompt := JudgmentPrompt(summary)

	start := time.Now()
	response, err := j.client.Chat(j.model,
		"You are a senior incident analyst and decision support system. Always respond with valid JSON.",
		prompt, j.maxTokens, j.temperature)
	if err != nil {
		return nil, err
	}
	j.evaluator.TrackLLMCall("judgment", j.model, prompt, response, time.Since(start))

	response = strings.TrimSpace(response)
	if response == "" {
		return nil, fmt.Errorf("received empty response from model")
	}

	verdict, err := ParseVerdict(response)
	if err != nil {
		return nil, err
	}

	verdict.Timestamp = time.Now().Format(time.RFC3339)
	log.Println("Situation analysis completed successfully")
	return verdict, nil
}

// ParseVerdict decodes a verdict from model output. Models sometimes wrap the
// JSON in prose or code fences, so on a decode failure it retries on the
// substring between the first '{' and the last '}'.
func ParseVerdict(text string) (*types.Verdict, error) {
	var verdict types.Verdict
	if err := json.Unmarshal([]byte(text), &verdict); err == nil {
		return &verdict, nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start == -1 || end <= start {
		return nil, fmt.Errorf("no JSON object found in model response")
	}

	if err := json.Unmarshal([]byte(text[start:end+1]), &verdict); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %v", err)
	}
	return &verdict, nil
}
