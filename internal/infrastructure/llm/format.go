package llm

import (
	"regexp"
	"strings"
	"unicode"
)

const sentencesPerParagraph = 3

var (
	paragraphTag = regexp.MustCompile(`(?i)<p[\s>]`)
	blankLines   = regexp.MustCompile(`\n\s*\n`)
	blockTag     = regexp.MustCompile(`(?i)^<(h[1-6]|ul|ol|table|blockquote|div|figure|pre|section|hr)[\s>/]`)
)

// EnsureParagraphs wraps unformatted text in <p> tags. Content that already has paragraph
// markup is returned untouched. Blank lines separate paragraphs; a single unbroken block is
// regrouped every three sentences. No text is dropped.
func EnsureParagraphs(content string) string {
	content = strings.TrimSpace(strings.ReplaceAll(content, "\r\n", "\n"))
	if content == "" || paragraphTag.MatchString(content) {
		return content
	}

	var blocks []string
	for _, block := range blankLines.Split(content, -1) {
		if block = strings.TrimSpace(block); block != "" {
			blocks = append(blocks, block)
		}
	}

	if len(blocks) == 1 && !isMarkup(blocks[0]) {
		blocks = groupSentences(splitSentences(blocks[0]), sentencesPerParagraph)
	}

	var b strings.Builder
	for i, block := range blocks {
		if i > 0 {
			b.WriteString("\n")
		}
		if isMarkup(block) {
			b.WriteString(block)
			continue
		}
		b.WriteString("<p>")
		b.WriteString(strings.Join(strings.Fields(block), " "))
		b.WriteString("</p>")
	}
	return b.String()
}

// isMarkup reports blocks that open with a block-level element. Inline tags such as
// <strong> or <a> are paragraph text.
func isMarkup(block string) bool {
	return blockTag.MatchString(block)
}

// splitSentences cuts after terminal punctuation followed by whitespace.
func splitSentences(text string) []string {
	runes := []rune(strings.Join(strings.Fields(text), " "))
	var (
		sentences []string
		start     int
	)
	for i := 0; i < len(runes); i++ {
		if !isTerminal(runes[i]) {
			continue
		}
		j := i + 1
		for j < len(runes) && (isTerminal(runes[j]) || isCloser(runes[j])) {
			j++
		}
		if j < len(runes) && unicode.IsSpace(runes[j]) {
			sentences = append(sentences, strings.TrimSpace(string(runes[start:j])))
			start = j + 1
			i = j
		}
	}
	if rest := strings.TrimSpace(string(runes[start:])); rest != "" {
		sentences = append(sentences, rest)
	}
	return sentences
}

func groupSentences(sentences []string, size int) []string {
	var groups []string
	for i := 0; i < len(sentences); i += size {
		end := i + size
		if end > len(sentences) {
			end = len(sentences)
		}
		groups = append(groups, strings.Join(sentences[i:end], " "))
	}
	return groups
}

func isTerminal(r rune) bool {
	return r == '.' || r == '!' || r == '?'
}

func isCloser(r rune) bool {
	return r == '"' || r == '\'' || r == ')' || r == ']' || r == '”' || r == '’'
}
