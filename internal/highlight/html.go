package highlight

import (
	"errors"
	"io"
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
	"github.com/dgallion1/docmark/internal/relocate"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// DefaultPrefix is the class prefix used for mark elements.
const DefaultPrefix = "docmark"

// ErrNotMarkable is returned for pages without a tree that matches their leaves.
var ErrNotMarkable = errors.New("page cannot be highlighted")

// Apply wraps every marked run of leaf text in a <mark> element whose class is
// "<prefix>-<level>". It returns the number of elements inserted. The page's
// leaves no longer describe its tree afterwards, so a page can be marked once.
func Apply(page *doctree.Page, groups relocate.Groups, prefix string) (int, error) {
	if page.Root == nil || len(page.TextNodes) != len(page.Leaves) {
		return 0, ErrNotMarkable
	}
	if prefix == "" {
		prefix = DefaultPrefix
	}

	// Compute everything before touching the tree.
	levels := paint(page.Leaves, groups)

	marks := 0
	for h, lv := range levels {
		if lv == nil {
			continue
		}
		node := page.TextNodes[h]
		parent := node.Parent
		if parent == nil {
			continue
		}
		for _, seg := range segments(page.Leaves[h].Text, lv) {
			text := &html.Node{Type: html.TextNode, Data: seg.Text}
			if seg.Level == "" || strings.TrimSpace(seg.Text) == "" {
				parent.InsertBefore(text, node)
				continue
			}
			mark := &html.Node{
				Type:     html.ElementNode,
				Data:     "mark",
				DataAtom: atom.Mark,
				Attr: []html.Attribute{
					{Key: "class", Val: prefix + "-" + string(seg.Level)},
					{Key: "data-" + prefix + "-level", Val: string(seg.Level)},
				},
			}
			mark.AppendChild(text)
			parent.InsertBefore(mark, node)
			marks++
		}
		parent.RemoveChild(node)
	}
	page.TextNodes = nil
	return marks, nil
}

// Render writes the page's tree as HTML.
func Render(w io.Writer, page *doctree.Page) error {
	if page.Root == nil {
		return ErrNotMarkable
	}
	return html.Render(w, page.Root)
}

// RenderString is Render into a string.
func RenderString(page *doctree.Page) (string, error) {
	var sb strings.Builder
	if err := Render(&sb, page); err != nil {
		return "", err
	}
	return sb.String(), nil
}
