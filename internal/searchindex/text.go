package searchindex

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
	"golang.org/x/net/html"
)

var spacePattern = regexp.MustCompile(`\s+`)

// PlainText strips Markdown or HTML markup from a record body and collapses
// whitespace. Bodies starting with a tag are treated as HTML, everything else
// as Markdown, where images and raw HTML are dropped.
func PlainText(body string) string {
	if strings.TrimSpace(body) == "" {
		return ""
	}
	var out string
	if strings.HasPrefix(strings.TrimSpace(body), "<") {
		out = htmlText(body)
	} else {
		out = markdownText([]byte(body))
	}
	return strings.TrimSpace(spacePattern.ReplaceAllString(out, " "))
}

func markdownText(source []byte) string {
	root := goldmark.New().Parser().Parse(text.NewReader(source))

	var b strings.Builder
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		switch node := n.(type) {
		case *gmast.Image, *gmast.HTMLBlock, *gmast.RawHTML:
			return gmast.WalkSkipChildren, nil
		case *gmast.Text:
			if entering {
				b.Write(node.Segment.Value(source))
				if node.SoftLineBreak() || node.HardLineBreak() {
					b.WriteByte(' ')
				}
			}
		case *gmast.String:
			if entering {
				b.Write(node.Value)
			}
		case *gmast.CodeBlock, *gmast.FencedCodeBlock:
			if entering {
				lines := node.Lines()
				for i := 0; i < lines.Len(); i++ {
					seg := lines.At(i)
					b.Write(seg.Value(source))
				}
			}
		}
		if !entering && n.Type() == gmast.TypeBlock {
			b.WriteByte(' ')
		}
		return gmast.WalkContinue, nil
	})
	return b.String()
}

func htmlText(body string) string {
	z := html.NewTokenizer(strings.NewReader(body))
	var b strings.Builder
	skip := 0
	for {
		switch z.Next() {
		case html.ErrorToken:
			return b.String()
		case html.StartTagToken:
			name, _ := z.TagName()
			if isInvisibleTag(string(name)) {
				skip++
			}
			b.WriteByte(' ')
		case html.EndTagToken:
			name, _ := z.TagName()
			if isInvisibleTag(string(name)) && skip > 0 {
				skip--
			}
			b.WriteByte(' ')
		case html.TextToken:
			if skip == 0 {
				b.Write(z.Text())
			}
		}
	}
}

func isInvisibleTag(name string) bool {
	return name == "script" || name == "style" || name == "template"
}

// Excerpt shortens s to at most maxRunes runes, cutting at a word boundary
// and appending an ellipsis when anything was removed.
func Excerpt(s string, maxRunes int) string {
	s = strings.TrimSpace(s)
	if maxRunes <= 0 || utf8.RuneCountInString(s) <= maxRunes {
		return s
	}
	runes := []rune(s)
	cut := string(runes[:maxRunes-1])
	if runes[maxRunes-1] != ' ' {
		if i := strings.LastIndexByte(cut, ' '); i > len(cut)/2 {
			cut = cut[:i]
		}
	}
	return strings.TrimRight(cut, " ,;:.-") + "…"
}

// Summary is the text shown for a page outside the site: its description,
// or an excerpt of its body.
func (r Record) Summary(maxRunes int) string {
	if d := strings.TrimSpace(r.Description); d != "" {
		return Excerpt(PlainText(d), maxRunes)
	}
	return Excerpt(PlainText(r.Body()), maxRunes)
}
