// Package textnorm normalises titles for slugs and duplicate checks.
package textnorm

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

const maxSlugRunes = 80

// Slugify lowercases s, folds accents to ASCII where possible and joins word runs with '-'.
func Slugify(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	dash := false
	n := 0
	for _, r := range strings.ToLower(folded) {
		if n >= maxSlugRunes {
			break
		}
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
			dash = false
			n++
			continue
		}
		if !dash && b.Len() > 0 {
			b.WriteByte('-')
			dash = true
			n++
		}
	}
	slug := strings.Trim(b.String(), "-")
	if slug == "" {
		return "article"
	}
	return slug
}

// TitleFragment returns the first n runes of the NFC-normalised, whitespace-collapsed title.
func TitleFragment(title string, n int) string {
	title = strings.Join(strings.Fields(norm.NFC.String(title)), " ")
	if n <= 0 {
		return title
	}
	r := []rune(title)
	if len(r) <= n {
		return title
	}
	return strings.TrimSpace(string(r[:n]))
}

// EscapeLike escapes LIKE wildcards so s matches literally.
func EscapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
