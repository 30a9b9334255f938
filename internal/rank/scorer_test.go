package rank

import (
	"context"
	"testing"

	"github.com/dgallion1/docmark/internal/doctree"
)

func scoredList(importances ...float64) []Scored {
	out := make([]Scored, len(importances))
	for i, imp := range importances {
		out[i] = Scored{Index: i, Text: string(rune('a' + i)), Importance: imp}
	}
	return out
}

func TestClassify_Levels(t *testing.T) {
	scored := scoredList(0.5, 0.9, 0.4, 0.7, 0.8, 0.6)
	got := Classify(scored, 1)

	want := []doctree.Sentence{
		{Text: "b", Level: doctree.LevelHigh},
		{Text: "e", Level: doctree.LevelHigh},
		{Text: "d", Level: doctree.LevelMedium},
		{Text: "f", Level: doctree.LevelMedium},
		{Text: "a", Level: doctree.LevelLow},
		{Text: "c", Level: doctree.LevelLow},
	}
	if len(got) != len(want) {
		t.Fatalf("expected %d sentences, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sentence[%d]: expected %+v, got %+v", i, want[i], got[i])
		}
	}
}

func TestClassify_TopFraction(t *testing.T) {
	scored := make([]Scored, 20)
	for i := range scored {
		scored[i] = Scored{Index: i, Text: "s", Importance: float64(i) / 20}
	}
	if got := Classify(scored, DefaultTopFraction); len(got) != 4 {
		t.Fatalf("expected 4 kept sentences, got %d", len(got))
	}
	// Out-of-range fractions fall back to the default.
	if got := Classify(scored, 0); len(got) != 4 {
		t.Fatalf("expected default fraction for 0, got %d", len(got))
	}
}

func TestClassify_TooFewSentences(t *testing.T) {
	got := Classify(scoredList(0.1, 0.2, 0.3, 0.4), DefaultTopFraction)
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result, got %#v", got)
	}
	if got := Classify(nil, DefaultTopFraction); got == nil || len(got) != 0 {
		t.Errorf("expected empty non-nil result for no input, got %#v", got)
	}
}

func TestClassify_SmallKeptListIsLow(t *testing.T) {
	// With fewer than three kept sentences both thresholds equal the top
	// importance, so nothing is strictly above them.
	got := Classify(scoredList(0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9, 1.0), DefaultTopFraction)
	if len(got) != 2 {
		t.Fatalf("expected 2 sentences, got %d", len(got))
	}
	for _, s := range got {
		if s.Level != doctree.LevelLow {
			t.Errorf("expected low level, got %q", s.Level)
		}
	}
}

func TestClassify_DoesNotReorderInput(t *testing.T) {
	scored := scoredList(0.1, 0.9)
	Classify(scored, 1)
	if scored[0].Importance != 0.1 {
		t.Error("expected input slice to be left untouched")
	}
}

func TestLocalScorer(t *testing.T) {
	text := "Solar panels convert sunlight into power. Solar panels need sunlight to produce power. My cat sleeps all day."
	scored, err := LocalScorer{}.Score(context.Background(), text)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(scored) != 3 {
		t.Fatalf("expected 3 scored sentences, got %d", len(scored))
	}
	for i, s := range scored {
		if s.Index != i {
			t.Errorf("entry %d: expected index %d, got %d", i, i, s.Index)
		}
		if s.Importance < 0 || s.Importance > 1 {
			t.Errorf("entry %d: importance %f out of range", i, s.Importance)
		}
	}
	if scored[2].Importance >= scored[0].Importance {
		t.Errorf("expected unrelated sentence to score lower: %+v", scored)
	}
}

func TestLocalScorer_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := (LocalScorer{}).Score(ctx, "Some text here."); err == nil {
		t.Error("expected error for canceled context")
	}
}

func TestValidateScores(t *testing.T) {
	raw := []batchScore{
		{Index: 0, Importance: 0.4},
		{Index: 1, Importance: 1.7},
		{Index: 2, Importance: -0.2},
		{Index: 0, Importance: 0.9},
		{Index: 7, Importance: 0.5},
	}
	got := validateScores(raw, 4)
	want := []float64{0.4, 1, 0, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("score[%d]: expected %f, got %f", i, want[i], got[i])
		}
	}
}
