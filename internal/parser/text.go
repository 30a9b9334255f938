package parser

import (
	"bufio"
	"io"
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
)

// TextParser handles plain text files. Every line becomes a leaf, newline
// included, so the flattened text reads like the file.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (*doctree.Page, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	page := &doctree.Page{
		Title:  strings.TrimSuffix(filename, ".txt"),
		Format: "text",
	}

	for scanner.Scan() {
		page.AddLeaf(scanner.Text() + "\n")
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	page.Article = articleFromLeaves(page.Leaves)
	page.Readable = true
	return page, nil
}
