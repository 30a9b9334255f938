// Package relocate maps extracted sentences back onto the leaves they were
// taken from.
package relocate

import (
	"log/slog"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/fuzzy"
	"github.com/dgallion1/docmark/internal/textindex"
)

// Position is a point inside one leaf's original text.
type Position struct {
	Leaf   int `json:"leaf"`   // Leaf handle
	Offset int `json:"offset"` // Byte offset into the leaf text
}

// Range is one located occurrence.
type Range struct {
	Start     Position `json:"start"`
	End       Position `json:"end"`
	Collapsed bool     `json:"collapsed"`
}

// Groups holds ranges per importance level in the order they were found.
type Groups map[doctree.Level][]Range

// Count returns the total number of ranges.
func (g Groups) Count() int {
	n := 0
	for _, rs := range g {
		n += len(rs)
	}
	return n
}

// Relocator runs locates against one index. It only reads the index, so a
// single Relocator may serve concurrent Locate calls.
type Relocator struct {
	index        *textindex.Index
	locator      fuzzy.Locator
	inclusiveEnd bool
	log          *slog.Logger
}

// Option configures a Relocator.
type Option func(*Relocator)

// WithMaxErrors overrides fuzzy.MaxErrorDistance.
func WithMaxErrors(n int) Option {
	return func(r *Relocator) { r.locator.MaxErrors = n }
}

// WithInclusiveEnd lets a match that ends exactly at the end of the buffer
// resolve its end to the last leaf instead of being dropped.
func WithInclusiveEnd(on bool) Option {
	return func(r *Relocator) { r.inclusiveEnd = on }
}

// WithLogger sets the logger used for mapping warnings.
func WithLogger(log *slog.Logger) Option {
	return func(r *Relocator) {
		if log != nil {
			r.log = log
		}
	}
}

// New creates a Relocator over index, configured by opts.
func New(index *textindex.Index, opts ...Option) *Relocator {
	r := &Relocator{
		index: index,
		log:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Locate returns every non-overlapping occurrence of sentence. Occurrences
// that cannot be mapped to leaves are logged and skipped.
func (r *Relocator) Locate(sentence string) []Range {
	query := Normalize(sentence)
	if query == "" {
		return nil
	}
	query = textindex.Fold(query)
	content := r.index.Content()

	var results []Range
	cursor := 0
	for {
		m := r.locator.Find(query, content, cursor)
		if !m.Found() {
			break
		}

		if rng, ok := r.MapRange(m); ok {
			results = append(results, rng)
		} else {
			r.log.Warn("could not map match to leaves",
				"start", m.Start,
				"length", m.Length,
				"sentence", sentence,
			)
		}

		cursor = m.End()
	}
	return results
}

// MapRange converts buffer offsets into leaf-relative positions.
func (r *Relocator) MapRange(m fuzzy.Match) (Range, bool) {
	startSpan, ok := r.index.LeafAt(m.Start)
	if !ok {
		return Range{}, false
	}

	endOffset := m.End()
	endSpan, ok := r.index.LeafAt(endOffset)
	if !ok && r.inclusiveEnd && endOffset == r.index.Len() {
		endSpan, ok = r.index.LeafEndingAt(endOffset)
	}
	if !ok {
		return Range{}, false
	}

	start := Position{Leaf: startSpan.Leaf.Handle, Offset: m.Start - startSpan.Start}
	end := Position{Leaf: endSpan.Leaf.Handle, Offset: endOffset - endSpan.Start}
	return Range{
		Start:     start,
		End:       end,
		Collapsed: start == end,
	}, true
}

// LocateAll locates a batch of sentences and groups the ranges by level.
// The standard levels are always present, possibly empty.
func (r *Relocator) LocateAll(sentences []doctree.Sentence) Groups {
	groups := make(Groups, len(doctree.Levels))
	for _, l := range doctree.Levels {
		groups[l] = []Range{}
	}
	for _, s := range sentences {
		groups[s.Level] = append(groups[s.Level], r.Locate(s.Text)...)
	}
	return groups
}
