// Package rank scores sentences of a page's readable text and sorts them
// into importance levels.
package rank

import (
	"context"
	"sort"

	"github.com/dgallion1/docmark/internal/doctree"
)

// DefaultTopFraction is the share of scored sentences kept for highlighting.
const DefaultTopFraction = 0.2

// Scored is one sentence with its importance in [0, 1].
type Scored struct {
	Index      int     `json:"index"`
	Text       string  `json:"text"`
	Importance float64 `json:"importance"`
}

// Scorer assigns an importance to every sentence of a text. Results are in
// sentence order with Index set to the sentence position.
type Scorer interface {
	Score(ctx context.Context, text string) ([]Scored, error)
}

// Classify keeps the top fraction of scored sentences by importance and
// splits them into three levels. Thresholds are the importances found one
// third and two thirds of the way down the kept list; a sentence must be
// strictly above a threshold to earn that level. Output stays in descending
// importance order.
func Classify(scored []Scored, top float64) []doctree.Sentence {
	if top <= 0 || top > 1 {
		top = DefaultTopFraction
	}

	sorted := make([]Scored, len(scored))
	copy(sorted, scored)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Importance > sorted[j].Importance
	})

	kept := sorted[:int(float64(len(sorted))*top)]
	if len(kept) == 0 {
		return []doctree.Sentence{}
	}

	k := len(kept) / 3
	high := kept[k].Importance
	medium := kept[2*k].Importance

	out := make([]doctree.Sentence, 0, len(kept))
	for _, s := range kept {
		level := doctree.LevelLow
		switch {
		case s.Importance > high:
			level = doctree.LevelHigh
		case s.Importance > medium:
			level = doctree.LevelMedium
		}
		out = append(out, doctree.Sentence{Text: s.Text, Level: level})
	}
	return out
}
