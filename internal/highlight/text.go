package highlight

import (
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/relocate"
)

// Marker wraps marked runs when rendering plain text.
type Marker interface {
	Open(level doctree.Level) string
	Close(level doctree.Level) string
}

// BracketMarker renders runs as "[[level:text]]".
type BracketMarker struct{}

func (BracketMarker) Open(level doctree.Level) string { return "[[" + string(level) + ":" }
func (BracketMarker) Close(doctree.Level) string { return "]]" }

// ANSIMarker colors runs for a terminal.
type ANSIMarker struct{}

var ansiColors = map[doctree.Level]string{
	doctree.LevelHigh:   "\x1b[1;30;43m",
	doctree.LevelMedium: "\x1b[30;46m",
	doctree.LevelLow:    "\x1b[4m",
}

func (ANSIMarker) Open(level doctree.Level) string { return ansiColors[level] }
func (ANSIMarker) Close(doctree.Level) string { return "\x1b[0m" }

// Annotate renders the page's leaves with marked runs wrapped by m. It works
// for every format and leaves the page untouched.
func Annotate(page *doctree.Page, groups relocate.Groups, m Marker) string {
	levels := paint(page.Leaves, groups)

	var sb strings.Builder
	for h, leaf := range page.Leaves {
		if levels[h] == nil {
			sb.WriteString(leaf.Text)
			continue
		}
		for _, seg := range segments(leaf.Text, levels[h]) {
			if seg.Level == "" {
				sb.WriteString(seg.Text)
				continue
			}
			sb.WriteString(m.Open(seg.Level))
			sb.WriteString(seg.Text)
			sb.WriteString(m.Close(seg.Level))
		}
	}
	return sb.String()
}
