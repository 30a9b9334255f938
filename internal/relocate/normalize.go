package relocate

import (
	"regexp"
	"strings"
)

// citationPattern matches one leading "[12]" marker or one trailing marker,
// whose closing bracket may have been lost during extraction.
var citationPattern = regexp.MustCompile(`^\s*\[\d+\]\s*|\s*\[\d+\]?\s*$`)

// Normalize trims a sentence and strips bracketed citation markers from its
// ends. An empty result means there is nothing to search for.
func Normalize(sentence string) string {
	s := strings.TrimSpace(sentence)
	s = citationPattern.ReplaceAllString(s, "")
	return strings.TrimSpace(s)
}
