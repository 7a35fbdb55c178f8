// Package parser extracts CRO signals from rendered HTML.
package parser

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"github.com/chynybekuuludastan/cro_optimizer/internal/models"
)

var ctaClassPattern = regexp.MustCompile(`(?i)(btn|button|cta)`)

// ExtractSignals parses an HTML document into page signals. title is the
// document title as reported by the browser; when it is empty the <title>
// element is used instead.
func ExtractSignals(html, title string) (models.PageSignals, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return models.PageSignals{}, fmt.Errorf("parse html: %w", err)
	}

	// Remove script and style elements
	doc.Find("script, style").Remove()

	if strings.TrimSpace(title) == "" {
		title = strings.TrimSpace(doc.Find("title").First().Text())
	}

	text := NormalizeText(doc.Text())
	signals := models.PageSignals{
		H1Tags:        extractH1(doc),
		CTATexts:      extractCTAs(doc),
		HasForms:      doc.Find("form").Length() > 0,
		ContentLength: utf8.RuneCountInString(text),
		Text:          truncateRunes(text, models.MaxTextLength),
	}
	if title != "" {
		signals.Title = models.StringPtr(title)
	}
	if content, ok := doc.Find(`meta[name="description"]`).First().Attr("content"); ok && content != "" {
		signals.MetaDescription = models.StringPtr(content)
	}

	return signals, nil
}

func extractH1(doc *goquery.Document) []string {
	h1 := []string{}
	doc.Find("h1").Each(func(_ int, s *goquery.Selection) {
		h1 = append(h1, strings.TrimSpace(s.Text()))
	})
	return h1
}

// extractCTAs returns the texts of the first buttons and links whose class
// looks like a call to action, in document order.
func extractCTAs(doc *goquery.Document) []string {
	ctas := []string{}
	doc.Find("button, a").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		class, _ := s.Attr("class")
		if ctaClassPattern.MatchString(class) {
			ctas = append(ctas, strings.TrimSpace(s.Text()))
		}
		return len(ctas) < models.MaxCTATexts
	})
	return ctas
}

// NormalizeText collapses raw document text: every line is trimmed, split on
// double spaces, and the non-empty pieces are joined with single spaces.
func NormalizeText(raw string) string {
	var chunks []string
	for _, line := range splitLines(raw) {
		for _, phrase := range strings.Split(strings.TrimSpace(line), "  ") {
			if phrase = strings.TrimSpace(phrase); phrase != "" {
				chunks = append(chunks, phrase)
			}
		}
	}
	return strings.Join(chunks, " ")
}

func splitLines(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		switch r {
		case '\n', '\r', '\v', '\f', '\x1c', '\x1d', '\x1e', '\u0085', '\u2028', '\u2029':
			return true
		}
		return false
	})
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}
