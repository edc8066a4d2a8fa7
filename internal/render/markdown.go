// Package render turns backend payloads into display values: styled advice
// HTML, server badges and formatted timestamps, coordinates and file names.
package render

import (
	"bytes"
	"fmt"
	"html/template"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// StyleMap assigns a CSS class to each rendered element kind
// ("h1", "p", "ul", "strong", "blockquote", "code", ...).
type StyleMap map[string]string

// DefaultStyles is the advice card styling.
var DefaultStyles = StyleMap{
	"h1":         "advice-h1",
	"h2":         "advice-h2",
	"h3":         "advice-h3",
	"p":          "advice-p",
	"ul":         "advice-ul",
	"ol":         "advice-ol",
	"li":         "advice-li",
	"strong":     "advice-strong",
	"em":         "advice-em",
	"blockquote": "advice-quote",
	"code":       "advice-code",
}

// Markdown renders advice markdown to HTML. Raw HTML in the source is
// omitted from the output.
type Markdown struct {
	md goldmark.Markdown
}

// NewMarkdown creates a renderer that styles elements with styles.
// A nil map renders unstyled HTML.
func NewMarkdown(styles StyleMap) *Markdown {
	md := goldmark.New(
		goldmark.WithParserOptions(
			parser.WithASTTransformers(util.Prioritized(classTransformer{styles: styles}, 100)),
		),
	)
	return &Markdown{md: md}
}

// Render converts src to HTML safe for direct embedding in a template.
func (m *Markdown) Render(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	//nolint:gosec // goldmark output with raw HTML disabled.
	return template.HTML(buf.String()), nil
}

type classTransformer struct {
	styles StyleMap
}

func (t classTransformer) Transform(doc *ast.Document, _ text.Reader, _ parser.Context) {
	if len(t.styles) == 0 {
		return
	}
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if class := t.styles[elementKind(n)]; class != "" {
			n.SetAttributeString("class", []byte(class))
		}
		return ast.WalkContinue, nil
	})
}

// elementKind maps a node to the HTML element it renders as.
func elementKind(n ast.Node) string {
	switch node := n.(type) {
	case *ast.Heading:
		return fmt.Sprintf("h%d", node.Level)
	case *ast.Paragraph:
		return "p"
	case *ast.List:
		if node.IsOrdered() {
			return "ol"
		}
		return "ul"
	case *ast.ListItem:
		return "li"
	case *ast.Emphasis:
		if node.Level == 2 {
			return "strong"
		}
		return "em"
	case *ast.Blockquote:
		return "blockquote"
	case *ast.CodeSpan:
		return "code"
	}
	return ""
}
