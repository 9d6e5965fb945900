package utils

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Excerpt returns the first maxRunes characters of the visible text in htmlStr,
// with whitespace collapsed. An ellipsis marks truncation.
func Excerpt(htmlStr string, maxRunes int) string {
	if htmlStr == "" {
		return ""
	}

	text := htmlStr
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlStr))
	if err == nil {
		// block elements would otherwise glue adjacent words together
		doc.Find("p, br, li, h1, h2, h3, h4, h5, h6, blockquote, pre").Each(func(i int, s *goquery.Selection) {
			s.AppendHtml(" ")
		})
		text = doc.Text()
	}

	text = strings.Join(strings.Fields(text), " ")
	runes := []rune(text)
	if maxRunes > 0 && len(runes) > maxRunes {
		return strings.TrimSpace(string(runes[:maxRunes])) + "..."
	}
	return text
}
