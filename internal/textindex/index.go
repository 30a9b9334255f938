// Package textindex flattens an ordered list of text leaves into one
// case-folded buffer and maps buffer offsets back to the leaf they came from.
package textindex

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Leaf is one unit of original text content. Handle is an opaque, stable
// reference chosen by whoever traversed the document.
type Leaf struct {
	Handle int    `json:"handle"`
	Text   string `json:"text"`
}

// Span records where a leaf's text lives in the flattened buffer.
type Span struct {
	Start int // inclusive
	End   int // exclusive
	Leaf  Leaf
}

// Index is a read-only view over a snapshot of leaves. It must be rebuilt if
// any leaf text changes.
type Index struct {
	content string
	spans   []Span
}

// Build walks leaves in order and appends each non-empty leaf's folded text.
// A handle seen twice is only indexed the first time.
func Build(leaves []Leaf) *Index {
	var sb strings.Builder
	spans := make([]Span, 0, len(leaves))
	seen := make(map[int]bool, len(leaves))

	for _, leaf := range leaves {
		if leaf.Text == "" || seen[leaf.Handle] {
			continue
		}
		seen[leaf.Handle] = true

		start := sb.Len()
		sb.WriteString(Fold(leaf.Text))
		spans = append(spans, Span{Start: start, End: sb.Len(), Leaf: leaf})
	}

	return &Index{content: sb.String(), spans: spans}
}

// Content returns the flattened, folded buffer.
func (ix *Index) Content() string { return ix.content }

// Len returns the buffer length in bytes.
func (ix *Index) Len() int { return len(ix.content) }

// Spans returns the offset table in buffer order.
func (ix *Index) Spans() []Span { return ix.spans }

// LeafAt returns the span whose [Start, End) contains offset.
func (ix *Index) LeafAt(offset int) (Span, bool) {
	// Rightmost span with Start <= offset.
	i := sort.Search(len(ix.spans), func(i int) bool {
		return ix.spans[i].Start > offset
	}) - 1
	if i >= 0 && offset < ix.spans[i].End {
		return ix.spans[i], true
	}
	return Span{}, false
}

// LeafEndingAt returns the span whose (Start, End] contains offset. It is the
// lookup for exclusive end boundaries, which may sit exactly at a leaf's end.
func (ix *Index) LeafEndingAt(offset int) (Span, bool) {
	i := sort.Search(len(ix.spans), func(i int) bool {
		return ix.spans[i].End >= offset
	})
	if i < len(ix.spans) && ix.spans[i].Start < offset {
		return ix.spans[i], true
	}
	return Span{}, false
}

// Fold lowercases s rune by rune. A rune whose lowercase form encodes to a
// different number of bytes is kept as is, so len(Fold(s)) == len(s) and
// byte offsets stay valid against the original text.
func Fold(s string) string {
	ascii := true
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			ascii = false
			break
		}
	}
	if ascii {
		return strings.ToLower(s)
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		if r == utf8.RuneError && size == 1 {
			sb.WriteByte(s[i])
			i++
			continue
		}
		lr := unicode.ToLower(r)
		if utf8.RuneLen(lr) != size {
			lr = r
		}
		sb.WriteRune(lr)
		i += size
	}
	return sb.String()
}
