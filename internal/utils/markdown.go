package utils

import (
	"bytes"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/renderer/html"
)

var (
	mdParser = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithParserOptions(
			parser.WithAutoHeadingID(),
		),
		goldmark.WithRendererOptions(
			html.WithHardWraps(),
			html.WithXHTML(),
		),
	)
	policy = bluemonday.UGCPolicy()
)

func init() {
	policy.AllowImages()
	policy.AddTargetBlankToFullyQualifiedLinks(true)
	policy.RequireNoReferrerOnLinks(true)
}

// RenderMarkdown converts markdown to sanitized HTML.
func RenderMarkdown(source string) string {
	var buf bytes.Buffer
	if err := mdParser.Convert([]byte(source), &buf); err != nil {
		return SanitizeRichText(source)
	}
	return string(policy.SanitizeBytes(buf.Bytes()))
}

// SanitizeRichText strips scripts, handlers and unknown tags from editor HTML.
func SanitizeRichText(htmlStr string) string {
	return policy.Sanitize(htmlStr)
}

// RichText normalizes stored content: markdown is rendered, anything else is treated as HTML.
func RichText(content, format string) string {
	if format == "markdown" {
		return RenderMarkdown(content)
	}
	return SanitizeRichText(content)
}
