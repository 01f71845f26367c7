// Package htmltext converts HTML fragments into plain text.
package htmltext

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

// PlainText strips markup and collapses whitespace. Input without tags is returned collapsed.
func PlainText(fragment string) string {
	if !strings.ContainsAny(fragment, "<&") {
		return Collapse(fragment)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return Collapse(fragment)
	}
	doc.Find("script, style").Remove()
	return Collapse(doc.Text())
}

// Collapse folds every whitespace run into a single space.
func Collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// Truncate cuts s to at most max runes, appending "..." when shortened.
func Truncate(s string, max int) string {
	if max <= 0 || utf8.RuneCountInString(s) <= max {
		return s
	}
	runes := []rune(s)
	cut := strings.TrimSpace(string(runes[:max]))
	return cut + "..."
}
