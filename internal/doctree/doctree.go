package doctree

import (
	"fmt"

	"github.com/dgallion1/docmark/internal/textindex"
	"golang.org/x/net/html"
)

// Page is a parsed document ready for relocation.
type Page struct {
	Title    string           // Document title (from metadata or filename)
	Format   string           // Source format, e.g. "html", "markdown"
	Leaves   []textindex.Leaf // Text leaves in document order; Leaves[i].Handle == i
	Article  string           // Readable text handed to the ranking step
	Readable bool             // Whether Article is worth ranking

	// HTML pages only. TextNodes[h] is the text node behind leaf handle h.
	Root      *html.Node
	TextNodes []*html.Node
}

// AddLeaf appends a leaf and returns its handle.
func (p *Page) AddLeaf(text string) int {
	h := len(p.Leaves)
	p.Leaves = append(p.Leaves, textindex.Leaf{Handle: h, Text: text})
	return h
}

// Level is the importance class attached to a sentence.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// Levels lists every level from most to least important.
var Levels = []Level{LevelHigh, LevelMedium, LevelLow}

// ParseLevel validates a level name.
func ParseLevel(s string) (Level, error) {
	switch l := Level(s); l {
	case LevelHigh, LevelMedium, LevelLow:
		return l, nil
	}
	return "", fmt.Errorf("unknown importance level: %q", s)
}

// Rank orders levels for overlap resolution; higher wins.
func (l Level) Rank() int {
	switch l {
	case LevelHigh:
		return 3
	case LevelMedium:
		return 2
	case LevelLow:
		return 1
	}
	return 0
}

// Sentence is a ranked sentence to mark on the page.
type Sentence struct {
	Text  string `json:"txt"`
	Level Level  `json:"level"`
}
