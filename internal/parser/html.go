package parser

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"scholar-chat/internal/models"
)

var htmlTagRe = regexp.MustCompile(models.HTMLTagRegex)

// extractHTML strips anything shaped like a tag; malformed markup still yields text.
func extractHTML(data []byte) (*extraction, error) {
	text := decodeUTF8(data)
	ext := &extraction{pages: []string{htmlTagRe.ReplaceAllString(text, "")}}

	if doc, err := goquery.NewDocumentFromReader(strings.NewReader(text)); err == nil {
		ext.title = strings.TrimSpace(doc.Find("title").First().Text())
	}
	return ext, nil
}
