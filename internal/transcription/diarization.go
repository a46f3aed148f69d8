package transcription

import (
	"encoding/json"
	"fmt"
	"log"
	"os/exec"
	"strconv"

	"github.com/mobisense-org/cognitive-workflow/internal/types"
)

// Diarizer partitions audio into per-speaker time intervals
type Diarizer interface {
	Diarize(audioPath string) ([]types.SpeakerInterval, error)
}

// NewDiarizer builds the diarization backend selected by configuration.
// Supported backends are "pyannote" and "nemo"; both run as Python helper
// processes emitting interval JSON on stdout.
func NewDiarizer(backend, scriptDir string, minSpeakers, maxSpeakers int) (Diarizer, error) {
	switch backend {
	case "pyannote":
		return &PyannoteDiarizer{
			scriptDir:   scriptDir,
			minSpeakers: minSpeakers,
			maxSpeakers: maxSpeakers,
		}, nil
	case "nemo":
		return &NemoDiarizer{
			scriptDir:   scriptDir,
			maxSpeakers: maxSpeakers,
		}, nil
	default:
		return nil, fmt.Errorf("unknown diarization backend: %s", backend)
	}
}

// PyannoteDiarizer runs the pyannote speaker-diarization pipeline
type PyannoteDiarizer struct {
	scriptDir   string
	minSpeakers int
	maxSpeakers int
}

// Diarize runs the pyannote helper and parses its interval output
func (d *PyannoteDiarizer) Diarize(audioPath string) ([]types.SpeakerInterval, error) {
	log.Printf("Starting pyannote diarization for: %s", audioPath)
	return runDiarizationScript(d.scriptDir+"/diarize_pyannote.py",
		audioPath,
		"--min-speakers", strconv.Itoa(d.minSpeakers),
		"--max-speakers", strconv.Itoa(d.maxSpeakers),
	)
}

// NemoDiarizer runs the NVIDIA NeMo clustering diarizer
type NemoDiarizer struct {
	scriptDir   string
	maxSpeakers int
}

// Diarize runs the NeMo helper and parses its interval output
func (d *NemoDiarizer) Diarize(audioPath string) ([]types.SpeakerInterval, error) {
	log.Printf("Starting NeMo diarization for: %s", audioPath)
	return runDiarizationScript(d.scriptDir+"/diarize_nemo.py",
		audioPath,
		"--max-speakers", strconv.Itoa(d.maxSpeakers),
	)
}

// diarizationOutput is the JSON contract shared by both helper scripts
type diarizationOutput struct {
	Intervals []types.SpeakerInterval `json:"intervals"`
}

func runDiarizationScript(script, audioPath string, extraArgs ...string) ([]types.SpeakerInterval, error) {
	args := append([]string{script, audioPath}, extraArgs...)
	cmd := exec.Command("python", args...)

	output, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("diarization failed: %v", err)
	}

	var parsed diarizationOutput
	if err := json.Unmarshal(output, &parsed); err != nil {
		return nil, fmt.Errorf("failed to parse diarization output: %v", err)
	}

	log.Printf("Diarization completed: %d intervals", len(parsed.Intervals))
	return parsed.Intervals, nil
}
