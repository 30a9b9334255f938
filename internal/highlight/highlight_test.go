package highlight

import (
	"errors"
	"io"
	"log/slog"
	"strings"
	"testing"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/parser"
	"github.com/dgallion1/docmark/internal/relocate"
	"github.com/dgallion1/docmark/internal/textindex"
)

func parseHTML(t *testing.T, src string) *doctree.Page {
	t.Helper()
	page, err := (&parser.HTMLParser{}).Parse(strings.NewReader(src), "page.html")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return page
}

func rng(sl, so, el, eo int) relocate.Range {
	return relocate.Range{
		Start: relocate.Position{Leaf: sl, Offset: so},
		End:   relocate.Position{Leaf: el, Offset: eo},
	}
}

func TestApply_AcrossElements(t *testing.T) {
	page := parseHTML(t, "<html><head></head><body><p>Hello <b>world</b>. Another sentence.</p></body></html>")

	r := relocate.New(textindex.Build(page.Leaves), relocate.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
	groups := r.LocateAll([]doctree.Sentence{{Text: "hello world.", Level: doctree.LevelHigh}})

	marks, err := Apply(page, groups, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marks != 3 {
		t.Errorf("expected 3 marks, got %d", marks)
	}

	out, err := RenderString(page)
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	open := `<mark class="docmark-high" data-docmark-level="high">`
	want := "<html><head></head><body><p>" +
		open + "Hello </mark><b>" + open + "world</mark></b>" + open + ".</mark> Another sentence.</p></body></html>"
	if out != want {
		t.Errorf("expected render:\n%s\ngot:\n%s", want, out)
	}
}

func TestApply_OverlapPrefersHigherLevel(t *testing.T) {
	page := parseHTML(t, "<body><p>Hello <b>world</b>. Another sentence.</p></body>")
	groups := relocate.Groups{
		doctree.LevelMedium: {rng(2, 2, 2, 19)},
		doctree.LevelHigh:   {rng(2, 10, 2, 18)},
	}

	got := Annotate(page, groups, BracketMarker{})
	want := "Hello world. [[medium:Another ]][[high:sentence]][[medium:.]]"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	marks, err := Apply(page, groups, "hl")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marks != 3 {
		t.Errorf("expected 3 marks, got %d", marks)
	}
	out, _ := RenderString(page)
	if !strings.Contains(out, `<mark class="hl-high" data-hl-level="high">sentence</mark>`) {
		t.Errorf("expected custom prefix in output, got %s", out)
	}
}

func TestApply_SkipsWhitespaceRuns(t *testing.T) {
	page := parseHTML(t, "<body><ul><li>one</li>\n<li>two</li></ul></body>")
	groups := relocate.Groups{doctree.LevelLow: {rng(0, 0, 2, 3)}}

	marks, err := Apply(page, groups, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marks != 2 {
		t.Errorf("expected 2 marks, got %d", marks)
	}
	out, _ := RenderString(page)
	if !strings.Contains(out, "</mark></li>\n<li><mark") {
		t.Errorf("expected whitespace between list items to stay unwrapped, got %s", out)
	}
}

func TestApply_IgnoresInvalidRanges(t *testing.T) {
	page := parseHTML(t, "<body><p>text</p></body>")
	groups := relocate.Groups{
		doctree.LevelHigh: {rng(0, 0, 9, 1), rng(0, 3, 0, 1), rng(0, 0, 0, 99), rng(0, 2, 0, 2)},
	}
	marks, err := Apply(page, groups, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if marks != 0 {
		t.Errorf("expected no marks, got %d", marks)
	}
}

func TestApply_NotMarkable(t *testing.T) {
	text, err := (&parser.TextParser{}).Parse(strings.NewReader("plain"), "a.txt")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := Apply(text, relocate.Groups{}, ""); !errors.Is(err, ErrNotMarkable) {
		t.Errorf("expected ErrNotMarkable for text page, got %v", err)
	}

	page := parseHTML(t, "<body><p>once</p></body>")
	groups := relocate.Groups{doctree.LevelHigh: {rng(0, 0, 0, 4)}}
	if _, err := Apply(page, groups, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := Apply(page, groups, ""); !errors.Is(err, ErrNotMarkable) {
		t.Errorf("expected ErrNotMarkable on second apply, got %v", err)
	}
}

func TestAnnotate_PlainText(t *testing.T) {
	page, err := (&parser.TextParser{}).Parse(strings.NewReader("alpha beta\ngamma delta\n"), "a.txt")
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	r := relocate.New(textindex.Build(page.Leaves))
	groups := r.LocateAll([]doctree.Sentence{{Text: "beta gamma", Level: doctree.LevelMedium}})

	got := Annotate(page, groups, BracketMarker{})
	want := "alpha [[medium:beta\n]][[medium:gamma]] delta\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
	if strings.Contains(Annotate(page, groups, ANSIMarker{}), "[[") {
		t.Error("expected ANSI marker output")
	}
}
