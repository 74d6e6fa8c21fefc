package util

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// HTMLToText strips markup from a job description so only prose reaches the
// classifier. Falls back to the raw string when the fragment won't parse.
func HTMLToText(html string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return CleanText(html)
	}
	doc.Find("script, style").Remove()

	var sb strings.Builder
	doc.Find("p, li, h1, h2, h3, h4, br, div").Each(func(_ int, s *goquery.Selection) {
		s.AppendHtml("\n")
	})
	sb.WriteString(doc.Text())

	lines := strings.Split(sb.String(), "\n")
	var out []string
	for _, l := range lines {
		if l = CleanText(l); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}
