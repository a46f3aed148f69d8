package attribution

import (
	"strings"
	"testing"

	"github.com/mobisense-org/cognitive-workflow/internal/types"
)

// TestFilterSpeakersDropsShortLabels verifies that labels below the minimum
// total duration are treated as noise.
func TestFilterSpeakersDropsShortLabels(t *testing.T) {
	intervals := []types.SpeakerInterval{
		{Start: 0, End: 5, Speaker: "SPEAKER_00"},
		{Start: 5, End: 6, Speaker: "SPEAKER_01"},
	}

	valid := FilterSpeakers(intervals, 2.0)
	if len(valid) != 1 || valid[0] != "SPEAKER_00" {
		t.Fatalf("valid = %v, want [SPEAKER_00]", valid)
	}
}

// TestFilterSpeakersKeepsAllWhenNoneSurvive checks the fallback to the
// unfiltered label set when filtering would discard everything.
func TestFilterSpeakersKeepsAllWhenNoneSurvive(t *testing.T) {
	intervals := []types.SpeakerInterval{
		{Start: 0, End: 0.5, Speaker: "SPEAKER_00"},
		{Start: 1, End: 1.3, Speaker: "SPEAKER_01"},
	}

	valid := FilterSpeakers(intervals, 2.0)
	if len(valid) != 2 {
		t.Fatalf("valid = %v, want both labels retained", valid)
	}
}

// TestFilterSpeakersIdempotent verifies that filtering an already-filtered
// interval set yields the same labels.
func TestFilterSpeakersIdempotent(t *testing.T) {
	intervals := []types.SpeakerInterval{
		{Start: 0, End: 5, Speaker: "SPEAKER_00"},
		{Start: 5, End: 6, Speaker: "SPEAKER_01"},
		{Start: 6, End: 9, Speaker: "SPEAKER_02"},
	}

	first := FilterSpeakers(intervals, 2.0)
	second := FilterSpeakers(restrict(intervals, first), 2.0)

	if len(first) != len(second) {
		t.Fatalf("second pass = %v, want %v", second, first)
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("second pass = %v, want %v", second, first)
		}
	}
}

// TestDominantSpeakerPicksLargestOverlap exercises the overlap accumulation
// and the SPEAKER_<n> display normalization.
func TestDominantSpeakerPicksLargestOverlap(t *testing.T) {
	intervals := []types.SpeakerInterval{
		{Start: 0, End: 3, Speaker: "SPEAKER_00"},
		{Start: 3, End: 10, Speaker: "SPEAKER_01"},
	}

	if got := DominantSpeaker(intervals, 2, 8); got != "Speaker 2" {
		t.Fatalf("dominant = %q, want Speaker 2", got)
	}
	if got := DominantSpeaker(intervals, 0, 3); got != "Speaker 1" {
		t.Fatalf("dominant = %q, want Speaker 1", got)
	}
}

// TestDominantSpeakerDeterministic verifies repeated calls on the same input
// return the same label, including the first-seen tie-break.
func TestDominantSpeakerDeterministic(t *testing.T) {
	intervals := []types.SpeakerInterval{
		{Start: 0, End: 2, Speaker: "SPEAKER_01"},
		{Start: 2, End: 4, Speaker: "SPEAKER_00"},
	}

	// Exact tie in overlap: first label in interval order wins.
	want := DominantSpeaker(intervals, 0, 4)
	if want != "Speaker 2" {
		t.Fatalf("tie-break = %q, want Speaker 2 (first in interval order)", want)
	}
	for i := 0; i < 50; i++ {
		if got := DominantSpeaker(intervals, 0, 4); got != want {
			t.Fatalf("call %d = %q, want %q", i, got, want)
		}
	}
}

// TestDominantSpeakerNoOverlap checks the unknown-speaker sentinel.
func TestDominantSpeakerNoOverlap(t *testing.T) {
	intervals := []types.SpeakerInterval{{Start: 0, End: 1, Speaker: "SPEAKER_00"}}
	if got := DominantSpeaker(intervals, 5, 6); got != UnknownSpeaker {
		t.Fatalf("dominant = %q, want %q", got, UnknownSpeaker)
	}
}

// TestDisplayLabelNonNumeric verifies non-canonical labels render verbatim.
func TestDisplayLabelNonNumeric(t *testing.T) {
	intervals := []types.SpeakerInterval{{Start: 0, End: 4, Speaker: "alice"}}
	if got := DominantSpeaker(intervals, 0, 4); got != "Speaker alice" {
		t.Fatalf("dominant = %q, want Speaker alice", got)
	}
}

// TestShouldUseHeuristicThresholds exercises the filler-word and question
// ratio thresholds and the minimum segment count.
func TestShouldUseHeuristicThresholds(t *testing.T) {
	conversational := []types.Segment{
		{Start: 0, End: 2, Text: "Hey there"},
		{Start: 2, End: 4, Text: "Yeah, I think so"},
		{Start: 4, End: 6, Text: "Okay, thanks"},
		{Start: 6, End: 8, Text: "Sure thing"},
	}
	if !ShouldUseHeuristic(conversational) {
		t.Fatal("expected heuristic for filler-heavy transcript")
	}

	monologue := []types.Segment{
		{Start: 0, End: 2, Text: "The quarterly report shows growth"},
		{Start: 2, End: 4, Text: "Revenue increased in all regions"},
		{Start: 4, End: 6, Text: "We anticipate more growth next year"},
	}
	if ShouldUseHeuristic(monologue) {
		t.Fatal("expected no heuristic for a monologue")
	}

	tooFew := []types.Segment{
		{Start: 0, End: 2, Text: "Hey?"},
		{Start: 2, End: 4, Text: "Yeah?"},
	}
	if ShouldUseHeuristic(tooFew) {
		t.Fatal("expected no heuristic below 3 segments")
	}
}

// TestHeuristicAssignFlipRules covers the gap and question-answer flip rules
// with the expected assignment [1, 1, 2].
func TestHeuristicAssignFlipRules(t *testing.T) {
	segments := []types.Segment{
		{Start: 0, End: 2, Text: "Hi there"},
		{Start: 2, End: 4, Text: "Hello, how are you?"},
		{Start: 6, End: 8, Text: "Good, thanks"},
	}

	got := HeuristicAssign(segments)
	want := []int{1, 1, 2}
	if len(got) != len(want) {
		t.Fatalf("assignments = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("assignments = %v, want %v", got, want)
		}
	}
}

// TestHeuristicAssignTwoSpeakersMax verifies the heuristic never emits more
// than two distinct speaker indices.
func TestHeuristicAssignTwoSpeakersMax(t *testing.T) {
	var segments []types.Segment
	for i := 0; i < 20; i++ {
		text := "statement"
		if i%2 == 0 {
			text = "really?"
		}
		segments = append(segments, types.Segment{
			Start: float64(i * 4),
			End:   float64(i*4 + 1),
			Text:  text,
		})
	}

	seen := make(map[int]bool)
	for _, idx := range HeuristicAssign(segments) {
		seen[idx] = true
	}
	if len(seen) > 2 {
		t.Fatalf("heuristic produced %d speakers, want at most 2", len(seen))
	}
	for idx := range seen {
		if idx != 1 && idx != 2 {
			t.Fatalf("unexpected speaker index %d", idx)
		}
	}
}

// TestAttributeUsesDiarizationForTwoSpeakers checks the diarized path end to
// end, including line formatting.
func TestAttributeUsesDiarizationForTwoSpeakers(t *testing.T) {
	segments := []types.Segment{
		{Start: 0, End: 3, Text: " We should ship on Friday "},
		{Start: 65, End: 68, Text: "Agreed, pending review"},
	}
	intervals := []types.SpeakerInterval{
		{Start: 0, End: 30, Speaker: "SPEAKER_00"},
		{Start: 60, End: 90, Speaker: "SPEAKER_01"},
	}

	got := Attribute(segments, intervals)
	want := "[00:00] Speaker 1: We should ship on Friday\n[01:05] Speaker 2: Agreed, pending review"
	if got != want {
		t.Fatalf("attribute =\n%s\nwant\n%s", got, want)
	}
}

// TestAttributeFallsBackToHeuristic verifies the fallback when filtering
// leaves fewer than two valid labels and conversation patterns are present.
func TestAttributeFallsBackToHeuristic(t *testing.T) {
	segments := []types.Segment{
		{Start: 0, End: 2, Text: "Hi there"},
		{Start: 2, End: 4, Text: "Hello, how are you?"},
		{Start: 6, End: 8, Text: "Good, thanks"},
	}
	intervals := []types.SpeakerInterval{
		{Start: 0, End: 5, Speaker: "SPEAKER_00"},
		{Start: 5, End: 6, Speaker: "SPEAKER_01"},
	}

	got := Attribute(segments, intervals)
	if !strings.Contains(got, "Speaker 2: Good, thanks") {
		t.Fatalf("expected heuristic two-party labeling, got:\n%s", got)
	}
}

// TestAttributeKeepsSingleSpeaker verifies a legitimate single-speaker
// recording is not rewritten by the heuristic.
func TestAttributeKeepsSingleSpeaker(t *testing.T) {
	segments := []types.Segment{
		{Start: 0, End: 2, Text: "The deployment finished at noon"},
		{Start: 2, End: 4, Text: "All services reported healthy"},
		{Start: 4, End: 6, Text: "No further incidents were logged"},
	}
	intervals := []types.SpeakerInterval{
		{Start: 0, End: 6, Speaker: "SPEAKER_00"},
	}

	got := Attribute(segments, intervals)
	if strings.Contains(got, "Speaker 2") {
		t.Fatalf("expected single-speaker labeling, got:\n%s", got)
	}
	if !strings.Contains(got, "Speaker 1:") {
		t.Fatalf("expected Speaker 1 labels, got:\n%s", got)
	}
}

// TestAttributeNoDiarization checks the heuristic path is always used when
// diarization produced nothing.
func TestAttributeNoDiarization(t *testing.T) {
	segments := []types.Segment{
		{Start: 0, End: 2, Text: "Status update"},
		{Start: 2, End: 4, Text: "Everything is on track"},
	}

	got := Attribute(segments, nil)
	if !strings.HasPrefix(got, "[00:00] Speaker 1: Status update") {
		t.Fatalf("unexpected output:\n%s", got)
	}
}

// TestFormatTimestamp checks zero-padded MM:SS rendering.
func TestFormatTimestamp(t *testing.T) {
	cases := map[float64]string{
		0:     "00:00",
		59.9:  "00:59",
		65:    "01:05",
		600:   "10:00",
		3725:  "62:05",
		125.4: "02:05",
	}
	for in, want := range cases {
		if got := FormatTimestamp(in); got != want {
			t.Fatalf("FormatTimestamp(%v) = %q, want %q", in, got, want)
		}
	}
}
