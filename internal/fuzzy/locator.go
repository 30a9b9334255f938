// Package fuzzy finds approximate occurrences of a short query in a long
// buffer in a single left-to-right pass.
//
// An attempt starts at a rune equal to the first query rune and extends while
// runes keep matching. A mismatch opens a tolerance window of at most
// MaxErrors runes; the window closes on the next exact match, and may resolve
// as an inserted buffer rune or a substituted rune. A missing buffer rune is
// charged the same way and stays charged until the next exact match. An attempt
// whose window overflows is abandoned and the current position is considered
// again as a fresh start. There is no backtracking to earlier starts.
package fuzzy

import (
	"unicode"
	"unicode/utf8"
)

// MaxErrorDistance is the default number of consecutive mismatches tolerated
// since the last exact match.
const MaxErrorDistance = 1

// Match is a hit in the buffer, in bytes.
type Match struct {
	Start  int
	Length int
}

// NoMatch is returned when no occurrence completes before the buffer ends.
var NoMatch = Match{Start: -1, Length: 0}

// Found reports whether m is a real occurrence.
func (m Match) Found() bool { return m.Start >= 0 }

// End returns the exclusive end offset of the match.
func (m Match) End() int { return m.Start + m.Length }

// Locator carries per-call tuning. The zero value uses MaxErrorDistance.
type Locator struct {
	// MaxErrors overrides MaxErrorDistance when positive. Use a negative
	// value for exact matching only.
	MaxErrors int
}

// Find runs the default Locator.
func Find(q, content string, offset int) Match {
	return Locator{}.Find(q, content, offset)
}

type state int

const (
	seeking    state = iota // no attempt in progress
	extending               // attempt in progress, last comparison matched
	tolerating              // attempt in progress, errors pending
)

// Find returns the next occurrence of q in content at or after offset. The
// comparison is case-insensitive. An empty q never matches, nor does a q with
// more runes than the rest of content.
func (l Locator) Find(q, content string, offset int) Match {
	query := []rune(q)
	if len(query) == 0 || offset < 0 || offset >= len(content) {
		return NoMatch
	}
	if utf8.RuneCountInString(content[offset:]) < len(query) {
		return NoMatch
	}
	budget := l.budget()

	var (
		st      = seeking
		matched int // query runes consumed by the current attempt
		errs    int // mismatches since the last exact match
		start   = -1
		end     int
	)
	reset := func() {
		st, matched, errs, start, end = seeking, 0, 0, -1, 0
	}

	for pos := offset; pos < len(content); {
		c, size := utf8.DecodeRuneInString(content[pos:])

		switch st {
		case seeking:
			if sameLetter(c, query[0]) {
				st, matched, start, end = extending, 1, pos, pos+size
			}

		case extending:
			switch {
			case sameLetter(c, query[matched]):
				matched++
				errs = 0
				end = pos + size
			case isZeroWidth(c):
				end = pos + size
			case unicode.IsSpace(c) && unicode.IsSpace(query[matched-1]):
				// Collapsed whitespace on the query side.
				end = pos + size
			case errs >= budget:
				reset()
				continue
			case matched+1 < len(query) && sameLetter(c, query[matched+1]):
				// The buffer lacks query[matched]; c already matches what follows.
				// The missing rune stays charged until the next exact match.
				matched += 2
				errs++
				end = pos + size
			default:
				st = tolerating
				errs++
				end = pos + size
			}

		case tolerating:
			if k, ok := recovery(query, matched, errs, c); ok {
				st, errs = extending, 0
				matched += k + 1
				end = pos + size
				break
			}
			switch {
			case isZeroWidth(c):
				end = pos + size
			case errs < budget:
				errs++
				end = pos + size
			case len(query)-matched <= errs:
				// The pending mismatches stand in for the rest of the query.
				return Match{Start: start, Length: end - start}
			default:
				reset()
				continue
			}
		}

		if matched == len(query) {
			return Match{Start: start, Length: end - start}
		}
		pos += size
	}

	if st == tolerating && len(query)-matched <= errs {
		return Match{Start: start, Length: end - start}
	}
	return NoMatch
}

func (l Locator) budget() int {
	switch {
	case l.MaxErrors > 0:
		return l.MaxErrors
	case l.MaxErrors < 0:
		return 0
	}
	return MaxErrorDistance
}

// recovery checks whether c resumes the attempt after errs pending
// mismatches. k query runes are treated as substituted, errs-k buffer runes as
// inserted. The smallest k wins.
func recovery(query []rune, matched, errs int, c rune) (int, bool) {
	for k := 0; k <= errs && matched+k < len(query); k++ {
		if sameLetter(c, query[matched+k]) {
			return k, true
		}
	}
	return 0, false
}

// sameLetter compares case-insensitively. Any two whitespace runes are equal.
func sameLetter(a, b rune) bool {
	if a == b || unicode.ToLower(a) == unicode.ToLower(b) {
		return true
	}
	return unicode.IsSpace(a) && unicode.IsSpace(b)
}

// isZeroWidth reports layout-only invisible runes.
func isZeroWidth(r rune) bool {
	switch r {
	case '\u200B', '\u200C', '\u200D', '\u2060', '\uFEFF', '\u00AD':
		return true
	}
	return false
}
