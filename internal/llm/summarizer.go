package llm

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/mobisense-org/cognitive-workflow/internal/metrics"
)

// Summarizer condenses speaker-labeled transcripts using a chat model
type Summarizer struct {
	client      *Client
	model       string
	maxTokens   int
	temperature float64
	evaluator   *metrics.Evaluator
}

// NewSummarizer creates a summarizer bound to one model
func NewSummarizer(client *Client, model string, maxTokens int, temperature float64, evaluator *metrics.Evaluator) *Summarizer {
	return &Summarizer{
		client:      client,
		model:       model,
		maxTokens:   maxTokens,
		temperature: temperature,
		evaluator:   evaluator,
	}
}

// Summarize turns a transcript into a single-paragraph summary
func (s *Summarizer) Summarize(transcript string) (string, error) {
	if strings.TrimSpace(transcript) == "" {
		return "", fmt.Errorf("empty transcription text provided")
	}

	log.Println("Starting text summarization...")
	prompt := SummarizationPrompt(transcript)

	start := time.Now()
	summary, err := s.client.Chat(s.model,
		"You are an expert conversation analyst and summarizer.",
		prompt, s.maxTokens, s.temperature)
	if err != nil {
		return "", err
	}
	s.evaluator.TrackLLMCall("summarization", s.model, prompt, summary, time.Since(start))

	summary = strings.TrimSpace(summary)
	if summary == "" {
		return "", fmt.Errorf("received empty summary from model")
	}

	log.Println("Summarization completed successfully")
	return summary, nil
}
