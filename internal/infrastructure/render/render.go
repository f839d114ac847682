package render

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"FormatConverter/internal/ports"
)

var paragraphBreak = regexp.MustCompile(`\n[ \t]*\n`)

// blockSelector lists elements whose presence marks text as already structured HTML.
const blockSelector = "p, div, h1, h2, h3, h4, h5, h6, ul, ol, blockquote, table, pre, article, section, figure, hr"

// Markdown renders article bodies through goldmark and wraps generated text.
// Raw HTML passes through untouched so stored HTML bodies render as-is.
type Markdown struct {
	md goldmark.Markdown
}

var _ ports.ContentRenderer = (*Markdown)(nil)
var _ ports.HTMLFormatter = (*Markdown)(nil)

// NewMarkdown builds a renderer with GitHub-flavoured extensions and hard wraps.
func NewMarkdown() *Markdown {
	return &Markdown{
		md: goldmark.New(
			goldmark.WithExtensions(extension.GFM),
			goldmark.WithRendererOptions(
				html.WithUnsafe(),
				html.WithHardWraps(),
				html.WithXHTML(),
			),
		),
	}
}

// Render converts a stored body into display HTML.
func (m *Markdown) Render(ctx context.Context, body string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if IsBlockHTML(body) {
		return body, nil
	}
	return m.convert(body)
}

// EnsureHTML returns block HTML unchanged and wraps anything else in paragraphs.
// Blank lines separate paragraphs and single newlines become line breaks; the
// text itself is never reinterpreted as markup.
func (m *Markdown) EnsureHTML(text string) (string, error) {
	text = strings.TrimSpace(strings.ReplaceAll(text, "\r\n", "\n"))
	if text == "" || IsBlockHTML(text) {
		return text, nil
	}

	var paragraphs []string
	for _, block := range paragraphBreak.Split(text, -1) {
		lines := strings.Split(block, "\n")
		kept := lines[:0]
		for _, line := range lines {
			if line = strings.TrimSpace(line); line != "" {
				kept = append(kept, line)
			}
		}
		if len(kept) == 0 {
			continue
		}
		paragraphs = append(paragraphs, "<p>"+strings.Join(kept, "<br />\n")+"</p>")
	}
	return strings.Join(paragraphs, "\n"), nil
}

func (m *Markdown) convert(source string) (string, error) {
	var buf bytes.Buffer
	if err := m.md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return buf.String(), nil
}

// IsBlockHTML reports whether text contains at least one block-level element.
func IsBlockHTML(text string) bool {
	if !strings.Contains(text, "<") {
		return false
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(text))
	if err != nil {
		return false
	}
	return doc.Find("body").Find(blockSelector).Length() > 0
}
