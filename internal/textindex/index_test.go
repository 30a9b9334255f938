package textindex

import (
	"strings"
	"testing"
)

func sampleLeaves() []Leaf {
	return []Leaf{
		{Handle: 0, Text: "The Quick "},
		{Handle: 1, Text: ""},
		{Handle: 2, Text: "brown fox"},
		{Handle: 3, Text: " JUMPS"},
	}
}

func TestBuild_PreservesOrderAndFolds(t *testing.T) {
	ix := Build(sampleLeaves())

	want := "the quick brown fox jumps"
	if ix.Content() != want {
		t.Fatalf("expected content %q, got %q", want, ix.Content())
	}
	if ix.Len() != len(want) {
		t.Errorf("expected length %d, got %d", len(want), ix.Len())
	}
}

func TestBuild_SkipsEmptyLeaves(t *testing.T) {
	ix := Build(sampleLeaves())

	spans := ix.Spans()
	if len(spans) != 3 {
		t.Fatalf("expected 3 spans, got %d", len(spans))
	}
	handles := []int{0, 2, 3}
	for i, h := range handles {
		if spans[i].Leaf.Handle != h {
			t.Errorf("span[%d]: expected handle %d, got %d", i, h, spans[i].Leaf.Handle)
		}
	}
	for i := 1; i < len(spans); i++ {
		if spans[i].Start < spans[i-1].End {
			t.Errorf("span[%d] starts at %d before previous end %d", i, spans[i].Start, spans[i-1].End)
		}
	}
}

func TestBuild_DuplicateHandleIndexedOnce(t *testing.T) {
	ix := Build([]Leaf{{Handle: 7, Text: "abc"}, {Handle: 7, Text: "def"}})
	if ix.Content() != "abc" {
		t.Errorf("expected content %q, got %q", "abc", ix.Content())
	}
}

func TestBuild_Empty(t *testing.T) {
	ix := Build(nil)
	if ix.Len() != 0 {
		t.Errorf("expected empty buffer, got %d bytes", ix.Len())
	}
	if _, ok := ix.LeafAt(0); ok {
		t.Error("expected no leaf in empty index")
	}
}

func TestLeafAt_CoversEveryOffset(t *testing.T) {
	ix := Build(sampleLeaves())

	for o := 0; o < ix.Len(); o++ {
		span, ok := ix.LeafAt(o)
		if !ok {
			t.Fatalf("offset %d: expected a leaf", o)
		}
		if o < span.Start || o >= span.End {
			t.Errorf("offset %d: span [%d,%d) does not contain it", o, span.Start, span.End)
		}
		count := 0
		for _, s := range ix.Spans() {
			if o >= s.Start && o < s.End {
				count++
			}
		}
		if count != 1 {
			t.Errorf("offset %d: covered by %d spans", o, count)
		}
	}
}

func TestLeafAt_OutOfRange(t *testing.T) {
	ix := Build(sampleLeaves())

	for _, o := range []int{-1, -100, ix.Len(), ix.Len() + 5} {
		if _, ok := ix.LeafAt(o); ok {
			t.Errorf("offset %d: expected not found", o)
		}
	}
}

func TestLeafAt_Boundaries(t *testing.T) {
	ix := Build(sampleLeaves())

	// "the quick " is 10 bytes, so offset 10 starts handle 2.
	span, ok := ix.LeafAt(10)
	if !ok || span.Leaf.Handle != 2 {
		t.Fatalf("expected handle 2 at offset 10, got %+v ok=%v", span, ok)
	}
	span, ok = ix.LeafAt(9)
	if !ok || span.Leaf.Handle != 0 {
		t.Fatalf("expected handle 0 at offset 9, got %+v ok=%v", span, ok)
	}
}

func TestLeafEndingAt(t *testing.T) {
	ix := Build(sampleLeaves())

	span, ok := ix.LeafEndingAt(ix.Len())
	if !ok || span.Leaf.Handle != 3 {
		t.Fatalf("expected last leaf at buffer end, got %+v ok=%v", span, ok)
	}
	span, ok = ix.LeafEndingAt(10)
	if !ok || span.Leaf.Handle != 0 {
		t.Fatalf("expected handle 0 to end at 10, got %+v ok=%v", span, ok)
	}
	if _, ok := ix.LeafEndingAt(0); ok {
		t.Error("expected nothing to end at offset 0")
	}
	if _, ok := ix.LeafEndingAt(ix.Len() + 1); ok {
		t.Error("expected nothing past the buffer end")
	}
}

func TestFold_PreservesByteLength(t *testing.T) {
	inputs := []string{
		"Hello World",
		"Water boils at 100°C.",
		"ÀÉÎÕÜ straße",
		"İstanbul", // U+0130 lowers to a 1-byte 'i' + combining dot in some mappings
		"Ⱥ",        // U+023A lowers to a 3-byte rune
		"\xff broken utf8",
	}
	for _, in := range inputs {
		out := Fold(in)
		if len(out) != len(in) {
			t.Errorf("Fold(%q) changed length %d -> %d", in, len(in), len(out))
		}
	}
	if got := Fold("ÀB"); got != "àb" {
		t.Errorf("expected %q, got %q", "àb", got)
	}
}

func TestBuild_LocalOffsetsMatchOriginal(t *testing.T) {
	leaves := []Leaf{{Handle: 0, Text: "Café "}, {Handle: 1, Text: "NOIR"}}
	ix := Build(leaves)

	i := strings.Index(ix.Content(), "noir")
	span, ok := ix.LeafAt(i)
	if !ok {
		t.Fatal("expected leaf for match start")
	}
	local := i - span.Start
	if span.Leaf.Text[local:] != "NOIR" {
		t.Errorf("expected local offset to address %q, got %q", "NOIR", span.Leaf.Text[local:])
	}
}
