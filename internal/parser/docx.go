package parser

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/fumiama/go-docx"
)

// DOCXParser handles .docx files. Each text run is a leaf and paragraphs are
// separated by blank-line leaves.
type DOCXParser struct{}

func (p *DOCXParser) Parse(r io.Reader, filename string) (*doctree.Page, error) {
	// go-docx needs a ReadSeeker+size, so write to temp file.
	tmp, err := os.CreateTemp("", "docmark-docx-*.docx")
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	size, err := io.Copy(tmp, r)
	if err != nil {
		tmp.Close()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("seek temp file: %w", err)
	}

	doc, err := docx.Parse(tmp, int64(size))
	tmp.Close()
	if err != nil {
		return nil, fmt.Errorf("parse docx: %w", err)
	}

	page := &doctree.Page{
		Title:  strings.TrimSuffix(filename, ".docx"),
		Format: "docx",
	}

	first := true
	for _, item := range doc.Document.Body.Items {
		para, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		runs := docxRunTexts(para)
		if len(runs) == 0 {
			continue
		}
		if docxHeadingLevel(para) == 1 && first {
			page.Title = strings.TrimSpace(strings.Join(runs, ""))
		}
		if !first {
			page.AddLeaf("\n\n")
		}
		first = false
		for _, t := range runs {
			page.AddLeaf(t)
		}
	}

	page.Article = articleFromLeaves(page.Leaves)
	page.Readable = true
	return page, nil
}

func docxHeadingLevel(para *docx.Paragraph) int {
	if para.Properties == nil || para.Properties.Style == nil {
		return 0
	}
	style := para.Properties.Style.Val
	switch {
	case strings.EqualFold(style, "Heading1") || strings.EqualFold(style, "heading 1"):
		return 1
	case strings.EqualFold(style, "Heading2") || strings.EqualFold(style, "heading 2"):
		return 2
	case strings.EqualFold(style, "Heading3") || strings.EqualFold(style, "heading 3"):
		return 3
	}
	return 0
}

// docxRunTexts returns the non-empty text of each run in paragraph order.
func docxRunTexts(para *docx.Paragraph) []string {
	var out []string
	for _, child := range para.Children {
		run, ok := child.(*docx.Run)
		if !ok {
			continue
		}
		var buf strings.Builder
		for _, rc := range run.Children {
			if t, ok := rc.(*docx.Text); ok {
				buf.WriteString(t.Text)
			}
		}
		if buf.Len() > 0 {
			out = append(out, buf.String())
		}
	}
	return out
}
