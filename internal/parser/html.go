package parser

import (
	"bytes"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/dgallion1/docmark/internal/doctree"
	readability "github.com/go-shiori/go-readability"
	"golang.org/x/net/html"
)

// HTMLParser handles HTML pages. Every visible text node becomes a leaf, and
// the page keeps the parsed tree so highlights can be applied to it. The
// readable article and the readability gate come from go-readability, which
// works on its own copy of the markup.
type HTMLParser struct{}

func (p *HTMLParser) Parse(r io.Reader, filename string) (*doctree.Page, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read html: %w", err)
	}
	doc, err := html.Parse(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	page := &doctree.Page{
		Title:  strings.TrimSuffix(strings.TrimSuffix(filename, ".html"), ".htm"),
		Format: "html",
		Root:   doc,
	}
	if title := findTitle(doc); title != "" {
		page.Title = title
	}

	body := findBody(doc)
	if body == nil {
		body = doc
	}

	collectLeaves(page, body)
	page.Readable = readability.Check(bytes.NewReader(data))
	page.Article = readableArticle(data, filename)
	return page, nil
}

// readableArticle extracts the main content and flattens it into paragraphs.
// Pages readability cannot extract from have no article.
func readableArticle(data []byte, filename string) string {
	pageURL := &url.URL{Scheme: "file", Path: "/" + filename}
	article, err := readability.FromReader(bytes.NewReader(data), pageURL)
	if err != nil || strings.TrimSpace(article.Content) == "" {
		return ""
	}
	content, err := html.Parse(strings.NewReader(article.Content))
	if err != nil {
		return collapseSpace(article.TextContent)
	}
	if text := articleText(content); text != "" {
		return text
	}
	// Content without block elements reads as one paragraph.
	return collapseSpace(textContent(content))
}

// leafRejected lists elements whose text is never marked.
var leafRejected = map[string]bool{
	"script": true, "style": true, "noscript": true, "meta": true, "svg": true,
	"nav": true, "footer": true, "link": true, "head": true, "template": true,
	"iframe": true, "canvas": true, "textarea": true, "select": true,
}

// articleStripped lists elements removed before extracting readable text.
var articleStripped = map[string]bool{
	"script": true, "style": true, "noscript": true, "svg": true, "img": true,
	"video": true, "audio": true, "iframe": true, "canvas": true,
	"nav": true, "footer": true, "header": true, "template": true,
}

// articleBlocks are elements whose text forms one paragraph of the article.
var articleBlocks = map[string]bool{
	"p": true, "li": true, "td": true, "th": true, "blockquote": true, "pre": true,
	"h1": true, "h2": true, "h3": true, "h4": true, "h5": true, "h6": true,
	"figcaption": true, "dt": true, "dd": true, "caption": true,
}

func collectLeaves(page *doctree.Page, n *html.Node) {
	switch n.Type {
	case html.TextNode:
		if n.Data != "" {
			page.AddLeaf(n.Data)
			page.TextNodes = append(page.TextNodes, n)
		}
		return
	case html.ElementNode:
		if leafRejected[n.Data] || hidden(n) {
			return
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		collectLeaves(page, c)
	}
}

func articleText(body *html.Node) string {
	var paras []string
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			if articleStripped[n.Data] || hidden(n) {
				return
			}
			if articleBlocks[n.Data] {
				if t := collapseSpace(textContent(n)); t != "" {
					paras = append(paras, t)
				}
				return
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(body)
	return strings.Join(paras, "\n\n")
}

// hidden approximates the browser visibility check for static markup.
func hidden(n *html.Node) bool {
	for _, a := range n.Attr {
		switch a.Key {
		case "hidden":
			return true
		case "aria-hidden":
			if a.Val == "true" {
				return true
			}
		case "style":
			style := strings.ReplaceAll(strings.ToLower(a.Val), " ", "")
			if strings.Contains(style, "display:none") || strings.Contains(style, "visibility:hidden") {
				return true
			}
		}
	}
	return false
}

func textContent(n *html.Node) string {
	var buf strings.Builder
	var extract func(*html.Node)
	extract = func(n *html.Node) {
		if n.Type == html.TextNode {
			buf.WriteString(n.Data)
		}
		if n.Type == html.ElementNode && articleStripped[n.Data] {
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			extract(c)
		}
	}
	extract(n)
	return strings.TrimSpace(buf.String())
}

func findTitle(n *html.Node) string {
	if n.Type == html.ElementNode && n.Data == "title" {
		return textContent(n)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if t := findTitle(c); t != "" {
			return t
		}
	}
	return ""
}

func findBody(n *html.Node) *html.Node {
	if n.Type == html.ElementNode && n.Data == "body" {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if b := findBody(c); b != nil {
			return b
		}
	}
	return nil
}
