package attribution

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/mobisense-org/cognitive-workflow/internal/types"
)

// UnknownSpeaker is the display label for segments no diarization interval covers
const UnknownSpeaker = "Unknown Speaker"

// MinSpeakerDuration is the minimum total speech time (seconds) a diarized
// label needs before it counts as a real participant rather than noise.
const MinSpeakerDuration = 2.0

// fillerWords are conversational markers used to detect a multi-party
// exchange that diarization collapsed into a single speaker.
var fillerWords = []string{"hey", "hi", "yeah", "okay", "alright", "sure", "thanks"}

// FilterSpeakers returns the labels whose accumulated interval duration is at
// least minDuration, in first-seen interval order. If the filter would discard
// every label, the unfiltered label set is returned instead.
func FilterSpeakers(intervals []types.SpeakerInterval, minDuration float64) []string {
	durations := make(map[string]float64)
	var order []string

	for _, iv := range intervals {
		if _, seen := durations[iv.Speaker]; !seen {
			order = append(order, iv.Speaker)
		}
		durations[iv.Speaker] += iv.End - iv.Start
	}

	var valid []string
	for _, label := range order {
		if durations[label] >= minDuration {
			valid = append(valid, label)
		}
	}

	if len(valid) == 0 {
		return order
	}
	return valid
}

// DominantSpeaker returns the display label of the speaker whose intervals
// overlap the [start, end) window the most, by total overlapping duration.
// Ties go to the first label reaching the maximum in interval order; a window
// with no overlap at all yields UnknownSpeaker.
func DominantSpeaker(intervals []types.SpeakerInterval, start, end float64) string {
	durations := make(map[string]float64)
	var order []string

	for _, iv := range intervals {
		overlapStart := start
		if iv.Start > overlapStart {
			overlapStart = iv.Start
		}
		overlapEnd := end
		if iv.End < overlapEnd {
			overlapEnd = iv.End
		}
		if overlapStart >= overlapEnd {
			continue
		}
		if _, seen := durations[iv.Speaker]; !seen {
			order = append(order, iv.Speaker)
		}
		durations[iv.Speaker] += overlapEnd - overlapStart
	}

	if len(order) == 0 {
		return UnknownSpeaker
	}

	dominant := order[0]
	for _, label := range order[1:] {
		if durations[label] > durations[dominant] {
			dominant = label
		}
	}
	return displayLabel(dominant)
}

// displayLabel converts a raw diarization label to its display form.
// The canonical SPEAKER_<n> form becomes "Speaker <n+1>"; anything else is
// rendered verbatim after the "Speaker" prefix.
func displayLabel(label string) string {
	if rest, ok := strings.CutPrefix(label, "SPEAKER_"); ok {
		if n, err := strconv.Atoi(rest); err == nil {
			return fmt.Sprintf("Speaker %d", n+1)
		}
	}
	return fmt.Sprintf("Speaker %s", label)
}

// ShouldUseHeuristic reports whether transcript-level conversation patterns
// suggest multiple speakers even though diarization found at most one. With
// fewer than 3 segments there is too little signal and it always returns false.
func ShouldUseHeuristic(segments []types.Segment) bool {
	if len(segments) < 3 {
		return false
	}

	questions := 0
	fillers := 0
	for _, seg := range segments {
		text := strings.ToLower(strings.TrimSpace(seg.Text))
		if strings.Contains(text, "?") {
			questions++
		}
		for _, word := range fillerWords {
			if strings.Contains(text, word) {
				fillers++
				break
			}
		}
	}

	fillerRatio := float64(fillers) / float64(len(segments))
	questionRatio := float64(questions) / float64(len(segments))
	return fillerRatio > 0.2 || questionRatio > 0.15
}

// HeuristicAssign assigns a speaker index in {1, 2} to every segment by
// flipping the active speaker whenever the gap to the previous segment exceeds
// 1.5s, or the previous segment ends with a question mark and the current one
// does not. This is a two-party round-robin estimate, not true diarization.
func HeuristicAssign(segments []types.Segment) []int {
	if len(segments) == 0 {
		return nil
	}

	assignments := make([]int, len(segments))
	current := 1
	assignments[0] = current

	for i := 1; i < len(segments); i++ {
		prev := segments[i-1]
		curr := segments[i]

		flip := false
		if curr.Start-prev.End > 1.5 {
			flip = true
		}
		prevText := strings.TrimSpace(prev.Text)
		currText := strings.TrimSpace(curr.Text)
		if strings.HasSuffix(prevText, "?") && !strings.HasSuffix(currText, "?") {
			flip = true
		}

		if flip {
			if current == 1 {
				current = 2
			} else {
				current = 1
			}
		}
		assignments[i] = current
	}

	return assignments
}

// Attribute produces the speaker-labeled transcript for the given segments.
// Diarization drives the labeling when it found more than one valid speaker;
// otherwise the transcript itself decides between keeping the single-speaker
// labeling and the two-party heuristic. Attribute never fails: with no usable
// diarization it degrades to the heuristic path.
func Attribute(segments []types.Segment, intervals []types.SpeakerInterval) string {
	valid := FilterSpeakers(intervals, MinSpeakerDuration)

	switch {
	case len(valid) > 1:
		return formatWithDiarization(segments, restrict(intervals, valid))
	case len(valid) == 1 && !ShouldUseHeuristic(segments):
		return formatWithDiarization(segments, restrict(intervals, valid))
	default:
		return formatWithHeuristic(segments)
	}
}

// restrict keeps only intervals attributed to one of the given labels
func restrict(intervals []types.SpeakerInterval, labels []string) []types.SpeakerInterval {
	keep := make(map[string]bool, len(labels))
	for _, label := range labels {
		keep[label] = true
	}

	var out []types.SpeakerInterval
	for _, iv := range intervals {
		if keep[iv.Speaker] {
			out = append(out, iv)
		}
	}
	return out
}

func formatWithDiarization(segments []types.Segment, intervals []types.SpeakerInterval) string {
	lines := make([]string, 0, len(segments))
	for _, seg := range segments {
		speaker := DominantSpeaker(intervals, seg.Start, seg.End)
		lines = append(lines, formatLine(seg.Start, speaker, seg.Text))
	}
	return strings.Join(lines, "\n")
}

func formatWithHeuristic(segments []types.Segment) string {
	assignments := HeuristicAssign(segments)
	lines := make([]string, 0, len(segments))
	for i, seg := range segments {
		speaker := fmt.Sprintf("Speaker %d", assignments[i])
		lines = append(lines, formatLine(seg.Start, speaker, seg.Text))
	}
	return strings.Join(lines, "\n")
}

func formatLine(start float64, speaker, text string) string {
	return fmt.Sprintf("[%s] %s: %s", FormatTimestamp(start), speaker, strings.TrimSpace(text))
}

// FormatTimestamp converts seconds to a zero-padded MM:SS string
func FormatTimestamp(seconds float64) string {
	m := int(seconds) / 60
	s := int(seconds) % 60
	return fmt.Sprintf("%02d:%02d", m, s)
}
