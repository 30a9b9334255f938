package rank

import (
	"context"
	"math"
	"strings"
	"unicode"

	"github.com/dgallion1/docmark/internal/chunker"
)

// LocalScorer ranks sentences without a model: a sentence is important when
// its content words are frequent across the whole text.
type LocalScorer struct {
	Chunk chunker.Config
}

var stopWords = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true, "be": true,
	"but": true, "by": true, "can": true, "for": true, "from": true, "had": true, "has": true,
	"have": true, "he": true, "her": true, "his": true, "in": true, "into": true, "is": true,
	"it": true, "its": true, "not": true, "of": true, "on": true, "or": true, "she": true,
	"that": true, "the": true, "their": true, "them": true, "there": true, "they": true,
	"this": true, "to": true, "was": true, "we": true, "were": true, "which": true, "who": true,
	"will": true, "with": true, "would": true, "you": true,
}

func (s LocalScorer) Score(ctx context.Context, text string) ([]Scored, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	sentences := chunker.Sentences(text, s.Chunk)

	words := make([][]string, len(sentences))
	freq := map[string]int{}
	for i, sent := range sentences {
		words[i] = contentWords(sent)
		for _, w := range words[i] {
			freq[w]++
		}
	}

	raw := make([]float64, len(sentences))
	best := 0.0
	for i, ws := range words {
		if len(ws) == 0 {
			continue
		}
		sum := 0
		for _, w := range ws {
			sum += freq[w]
		}
		// Damp long sentences so they do not win on length alone.
		raw[i] = float64(sum) / math.Sqrt(float64(len(ws)))
		best = math.Max(best, raw[i])
	}

	out := make([]Scored, len(sentences))
	for i, sent := range sentences {
		imp := 0.0
		if best > 0 {
			imp = raw[i] / best
		}
		out[i] = Scored{Index: i, Text: sent, Importance: imp}
	}
	return out, nil
}

func contentWords(sentence string) []string {
	fields := strings.FieldsFunc(strings.ToLower(sentence), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 2 && !stopWords[f] {
			out = append(out, f)
		}
	}
	return out
}
