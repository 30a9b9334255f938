package chunker

import (
	"strings"
	"unicode"
)

// Config controls sentence splitting and batching.
type Config struct {
	BatchTokens int // Target batch size in tokens.
	MinWords    int // Sentences with fewer words are dropped.
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		BatchTokens: 1500,
		MinWords:    3,
	}
}

// Batch is a run of consecutive sentences scored in one request.
type Batch struct {
	Index     int      // Batch number, starting at 0.
	Offset    int      // Position of Sentences[0] in the full sentence list.
	Sentences []string // Sentence text.
}

// Sentences splits article text into sentences. Paragraphs are separated by
// blank lines; whitespace inside a sentence is collapsed.
func Sentences(article string, cfg Config) []string {
	if cfg.MinWords <= 0 {
		cfg.MinWords = 1
	}

	var out []string
	for _, para := range splitByParagraphs(article) {
		for _, sent := range splitSentences(para) {
			sent = strings.Join(strings.Fields(sent), " ")
			if len(strings.Fields(sent)) >= cfg.MinWords {
				out = append(out, sent)
			}
		}
	}
	return out
}

// BatchSentences groups sentences into batches of roughly cfg.BatchTokens.
// A sentence larger than the budget gets a batch of its own.
func BatchSentences(sentences []string, cfg Config) []Batch {
	if cfg.BatchTokens <= 0 {
		cfg.BatchTokens = 1500
	}

	var batches []Batch
	current := Batch{}
	currentTokens := 0

	flush := func(next int) {
		if len(current.Sentences) > 0 {
			current.Index = len(batches)
			batches = append(batches, current)
		}
		current = Batch{Offset: next}
		currentTokens = 0
	}

	for i, sent := range sentences {
		tokens := EstimateTokens(sent)
		if currentTokens+tokens > cfg.BatchTokens && currentTokens > 0 {
			flush(i)
		}
		current.Sentences = append(current.Sentences, sent)
		currentTokens += tokens
	}
	flush(len(sentences))

	return batches
}

// splitByParagraphs splits on double-newlines.
func splitByParagraphs(text string) []string {
	parts := strings.Split(text, "\n\n")
	var result []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}

// splitSentences breaks a paragraph after sentence terminators that are
// followed by whitespace. Closing quotes, brackets and citation markers such
// as "[12]" stay with the sentence they close.
func splitSentences(text string) []string {
	var sentences []string
	runes := []rune(text)
	start := 0

	for i := 0; i < len(runes); i++ {
		if !isTerminator(runes[i]) {
			continue
		}
		end := i + 1
		for end < len(runes) && (isTerminator(runes[end]) || isCloser(runes[end])) {
			end++
		}
		end = skipCitations(runes, end)
		if end < len(runes) && !unicode.IsSpace(runes[end]) {
			i = end - 1
			continue
		}
		if s := strings.TrimSpace(string(runes[start:end])); s != "" {
			sentences = append(sentences, s)
		}
		start = end
		i = end - 1
	}
	if s := strings.TrimSpace(string(runes[start:])); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// skipCitations advances past bracketed numeric markers starting at i.
func skipCitations(runes []rune, i int) int {
	for i < len(runes) && runes[i] == '[' {
		j := i + 1
		for j < len(runes) && unicode.IsDigit(runes[j]) {
			j++
		}
		if j == i+1 || j >= len(runes) || runes[j] != ']' {
			return i
		}
		i = j + 1
	}
	return i
}

func isTerminator(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	switch r {
	case '"', '\'', ')', '”', '’':
		return true
	}
	return false
}
