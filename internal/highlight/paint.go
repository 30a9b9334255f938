// Package highlight marks located ranges on a parsed page.
package highlight

import (
	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/relocate"
	"github.com/dgallion1/docmark/internal/textindex"
)

// paint records the winning level for every byte of every leaf. Where ranges
// overlap the more important level wins. Ranges that point outside the
// leaves are ignored.
func paint(leaves []textindex.Leaf, groups relocate.Groups) [][]doctree.Level {
	levels := make([][]doctree.Level, len(leaves))
	for _, level := range doctree.Levels {
		for _, r := range groups[level] {
			if !valid(leaves, r) {
				continue
			}
			for h := r.Start.Leaf; h <= r.End.Leaf; h++ {
				from, to := 0, len(leaves[h].Text)
				if h == r.Start.Leaf {
					from = r.Start.Offset
				}
				if h == r.End.Leaf {
					to = r.End.Offset
				}
				if from >= to {
					continue
				}
				if levels[h] == nil {
					levels[h] = make([]doctree.Level, len(leaves[h].Text))
				}
				for i := from; i < to; i++ {
					if level.Rank() > levels[h][i].Rank() {
						levels[h][i] = level
					}
				}
			}
		}
	}
	return levels
}

func valid(leaves []textindex.Leaf, r relocate.Range) bool {
	s, e := r.Start, r.End
	if s.Leaf < 0 || e.Leaf >= len(leaves) || s.Leaf > e.Leaf {
		return false
	}
	if s.Offset < 0 || s.Offset > len(leaves[s.Leaf].Text) {
		return false
	}
	if e.Offset < 0 || e.Offset > len(leaves[e.Leaf].Text) {
		return false
	}
	return s.Leaf < e.Leaf || s.Offset < e.Offset
}

// segment is a run of bytes sharing one level; Level is empty when unmarked.
type segment struct {
	Text  string
	Level doctree.Level
}

func segments(text string, levels []doctree.Level) []segment {
	var out []segment
	start := 0
	for i := 1; i <= len(text); i++ {
		if i < len(text) && levels[i] == levels[start] {
			continue
		}
		out = append(out, segment{Text: text[start:i], Level: levels[start]})
		start = i
	}
	return out
}
