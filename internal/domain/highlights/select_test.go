package highlights

import (
	"context"
	"testing"

	"github.com/rs/zerolog"

	"github.com/forPelevin/hlextract/internal/types"
)

// scriptedClassifier answers from a fixed verdict list, in call order.
type scriptedClassifier struct {
	verdicts []bool
	texts    []string
}

func (s *scriptedClassifier) Classifies(_ context.Context, text string) bool {
	i := len(s.texts)
	s.texts = append(s.texts, text)
	return i < len(s.verdicts) && s.verdicts[i]
}

func TestSelect_OneHighlightPerPositiveChunk(t *testing.T) {
	segs := makeSegments(8)
	chunks := Chunk(segs, 3) // [0..2] [3..5] [6..7]
	cls := &scriptedClassifier{verdicts: []bool{true, false, true}}

	got := NewSelector(cls, "Momento relevante detectado", zerolog.Nop()).Select(context.Background(), chunks)

	if len(cls.texts) != 3 {
		t.Fatalf("expected 3 classifier calls, got %d", len(cls.texts))
	}
	if cls.texts[0] != "s0 s1 s2" {
		t.Fatalf("unexpected chunk text: %q", cls.texts[0])
	}
	want := []types.Highlight{
		{StartTime: segs[0].Start, EndTime: segs[2].End, Reason: "Momento relevante detectado"},
		{StartTime: segs[6].Start, EndTime: segs[7].End, Reason: "Momento relevante detectado"},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d highlights, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("highlight %d: got %+v, want %+v", i, got[i], want[i])
		}
	}
}

func TestSelect_AdjacentPositivesStaySeparate(t *testing.T) {
	chunks := Chunk(makeSegments(4), 2)
	cls := &scriptedClassifier{verdicts: []bool{true, true}}

	got := NewSelector(cls, "r", zerolog.Nop()).Select(context.Background(), chunks)
	if len(got) != 2 {
		t.Fatalf("expected adjacent positives to stay separate, got %+v", got)
	}
	if got[0].EndTime > got[1].StartTime {
		t.Fatalf("expected ordered, non-overlapping highlights: %+v", got)
	}
}

func TestSelect_BoundsAndLengthProperties(t *testing.T) {
	patterns := [][]bool{
		nil,
		{false, false, false, false},
		{true, true, true, true},
		{false, true, false, true},
	}
	for _, p := range patterns {
		chunks := Chunk(makeSegments(10), 3)
		cls := &scriptedClassifier{verdicts: p}
		got := NewSelector(cls, "r", zerolog.Nop()).Select(context.Background(), chunks)

		if len(got) > len(chunks) {
			t.Fatalf("more highlights (%d) than chunks (%d)", len(got), len(chunks))
		}
		j := 0
		for i, c := range chunks {
			if i >= len(p) || !p[i] {
				continue
			}
			if got[j].StartTime != c[0].Start || got[j].EndTime != c[len(c)-1].End {
				t.Fatalf("highlight %d does not match chunk %d bounds: %+v", j, i, got[j])
			}
			if got[j].StartTime > got[j].EndTime {
				t.Fatalf("highlight %d has start after end: %+v", j, got[j])
			}
			j++
		}
		if j != len(got) {
			t.Fatalf("expected %d highlights, got %d", j, len(got))
		}
	}
}

func TestSelect_NoChunks(t *testing.T) {
	cls := &scriptedClassifier{}
	got := NewSelector(cls, "r", zerolog.Nop()).Select(context.Background(), nil)
	if len(got) != 0 || len(cls.texts) != 0 {
		t.Fatalf("expected no work for empty chunk list, got %+v", got)
	}
}

func TestSelect_WithFailingBackendContinues(t *testing.T) {
	backend := &flakyCompleter{fail: map[int]bool{0: true}}
	cls := NewLLMClassifier(backend, "sim", "não", zerolog.Nop())
	chunks := Chunk(makeSegments(6), 2)

	got := NewSelector(cls, "r", zerolog.Nop()).Select(context.Background(), chunks)
	if backend.calls != 3 {
		t.Fatalf("expected all 3 chunks to be tried, got %d calls", backend.calls)
	}
	if len(got) != 2 {
		t.Fatalf("expected the two healthy chunks to be highlights, got %+v", got)
	}
	if got[0].StartTime != chunks[1][0].Start {
		t.Fatalf("expected first highlight from second chunk, got %+v", got[0])
	}
}

type flakyCompleter struct {
	fail  map[int]bool
	calls int
}

func (f *flakyCompleter) Complete(context.Context, string) (string, error) {
	i := f.calls
	f.calls++
	if f.fail[i] {
		return "", context.DeadlineExceeded
	}
	return "SIM", nil
}
