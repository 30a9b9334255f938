package parser

import (
	"io"
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownParser handles Markdown files using goldmark. Inline text segments
// become leaves; line and block breaks become separator leaves.
type MarkdownParser struct{}

func (p *MarkdownParser) Parse(r io.Reader, filename string) (*doctree.Page, error) {
	src, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}

	md := goldmark.New()
	doc := md.Parser().Parse(text.NewReader(src))

	page := &doctree.Page{
		Title:  strings.TrimSuffix(strings.TrimSuffix(filename, ".md"), ".markdown"),
		Format: "markdown",
	}

	breakBlock := func() {
		if n := len(page.Leaves); n > 0 && !strings.HasSuffix(page.Leaves[n-1].Text, "\n\n") {
			page.AddLeaf("\n\n")
		}
	}

	err = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch node := n.(type) {
		case *ast.Text:
			if entering {
				page.AddLeaf(string(node.Segment.Value(src)))
				if node.SoftLineBreak() || node.HardLineBreak() {
					page.AddLeaf("\n")
				}
			}
			return ast.WalkContinue, nil
		case *ast.String:
			if entering {
				page.AddLeaf(string(node.Value))
			}
			return ast.WalkContinue, nil
		case *ast.AutoLink:
			if entering {
				page.AddLeaf(string(node.Label(src)))
			}
			return ast.WalkSkipChildren, nil
		case *ast.CodeBlock, *ast.FencedCodeBlock:
			if entering {
				lines := n.Lines()
				for i := 0; i < lines.Len(); i++ {
					line := lines.At(i)
					page.AddLeaf(string(line.Value(src)))
				}
				breakBlock()
			}
			return ast.WalkSkipChildren, nil
		case *ast.HTMLBlock, *ast.RawHTML:
			return ast.WalkSkipChildren, nil
		}

		if !entering && n.Type() == ast.TypeBlock && n.Kind() != ast.KindDocument {
			breakBlock()
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, err
	}

	page.Article = articleFromLeaves(page.Leaves)
	page.Readable = true
	return page, nil
}
