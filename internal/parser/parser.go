package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/textindex"
)

var (
	ErrNotReadable = errors.New("document is not readable")
	ErrNoContent   = errors.New("no text content found in the document")
)

// Parser converts raw document bytes into a Page of text leaves.
type Parser interface {
	Parse(r io.Reader, filename string) (*doctree.Page, error)
}

// Options tunes parser construction.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".csv":      true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".csv":
		return &CSVParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	default:
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// CheckReadable reports whether a page can be handed to the ranking step.
func CheckReadable(p *doctree.Page) error {
	if !p.Readable {
		return ErrNotReadable
	}
	if strings.TrimSpace(p.Article) == "" {
		return ErrNoContent
	}
	return nil
}

// articleFromLeaves joins leaf text into paragraphs separated by blank lines,
// collapsing whitespace inside each paragraph.
func articleFromLeaves(leaves []textindex.Leaf) string {
	var sb strings.Builder
	for _, l := range leaves {
		sb.WriteString(l.Text)
	}
	return collapseParagraphs(sb.String())
}

func collapseParagraphs(s string) string {
	var out []string
	for _, para := range strings.Split(s, "\n\n") {
		if p := collapseSpace(para); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n\n")
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
