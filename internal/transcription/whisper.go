package transcription

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/mobisense-org/cognitive-workflow/internal/types"
)

// WhisperTranscriber wraps Python's OpenAI Whisper for transcription
type WhisperTranscriber struct {
	modelName string
	tempDir   string
	mu        sync.Mutex // One transcription at a time per model
}

// NewWhisperTranscriber creates a transcriber that shells out to
// `python -m whisper`. Whisper availability is verified on first use.
func NewWhisperTranscriber(modelName, tempDir string) (*WhisperTranscriber, error) {
	switch modelName {
	case "tiny", "base", "small", "medium", "large":
	case "":
		modelName = "base"
	default:
		return nil, fmt.Errorf("unknown whisper model: %s", modelName)
	}

	log.Printf("Initializing Python Whisper with model: %s", modelName)

	return &WhisperTranscriber{
		modelName: modelName,
		tempDir:   tempDir,
	}, nil
}

// Transcribe normalizes and transcribes an audio file
func (wt *WhisperTranscriber) Transcribe(audioPath string) (*types.Transcription, error) {
	wt.mu.Lock()
	defer wt.mu.Unlock()

	normalizedPath, err := NormalizeAudio(audioPath, wt.tempDir)
	if err != nil {
		return nil, fmt.Errorf("audio normalization failed: %v", err)
	}
	defer os.Remove(normalizedPath)

	log.Printf("Transcribing with Python Whisper: %s", audioPath)

	outputDir, err := os.MkdirTemp(wt.tempDir, "whisper_output_")
	if err != nil {
		return nil, fmt.Errorf("failed to create whisper output dir: %v", err)
	}
	defer os.RemoveAll(outputDir)

	absAudioPath, err := filepath.Abs(normalizedPath)
	if err != nil {
		return nil, fmt.Errorf("failed to get absolute path: %v", err)
	}

	cmd := exec.Command("python", "-m", "whisper",
		absAudioPath,
		"--model", wt.modelName,
		"--output_dir", outputDir,
		"--output_format", "json", // JSON for segment timestamps
		"--fp16", "False", // CPU compatibility
	)

	output, err := cmd.CombinedOutput()
	if err != nil {
		return nil, fmt.Errorf("whisper transcription failed: %v\nOutput: %s", err, string(output))
	}

	baseName := strings.TrimSuffix(filepath.Base(normalizedPath), filepath.Ext(normalizedPath))
	jsonPath := filepath.Join(outputDir, baseName+".json")

	jsonData, err := os.ReadFile(jsonPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read whisper output: %v", err)
	}

	var parsed whisperOutput
	if err := json.Unmarshal(jsonData, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse whisper JSON: %v", err)
	}

	segments := make([]types.Segment, len(parsed.Segments))
	for i, seg := range parsed.Segments {
		segments[i] = types.Segment{
			Start: seg.Start,
			End:   seg.End,
			Text:  strings.TrimSpace(seg.Text),
		}
	}

	var duration float64
	if len(segments) > 0 {
		duration = segments[len(segments)-1].End
	}

	result := &types.Transcription{
		Text:     strings.TrimSpace(parsed.Text),
		Language: parsed.Language,
		Duration: duration,
		Segments: segments,
	}

	log.Printf("Transcription completed: %d segments, %.2fs duration", len(segments), duration)
	return result, nil
}

// whisperOutput matches Python Whisper's JSON output format
type whisperOutput struct {
	Text     string           `json:"text"`
	Language string           `json:"language"`
	Segments []whisperSegment `json:"segments"`
}

type whisperSegment struct {
	ID    int     `json:"id"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Text  string  `json:"text"`
}
