package llm

import (
	"encoding/json"
	"regexp"
	"strings"

	"NewsPipeline/internal/infrastructure/htmltext"
)

const excerptRunes = 160

// ParseKind records which strategy produced a Parsed value.
type ParseKind int

const (
	ParsedTags ParseKind = iota
	ParsedLegacyJSON
	ParsedRaw
)

func (k ParseKind) String() string {
	switch k {
	case ParsedTags:
		return "tags"
	case ParsedLegacyJSON:
		return "legacy_json"
	default:
		return "raw"
	}
}

// Parsed is the structured reading of an LLM reply.
type Parsed struct {
	Kind    ParseKind
	Title   string
	Excerpt string
	Content string
}

var (
	titleTag   = regexp.MustCompile(`(?is)\[TITLE\](.*?)\[/TITLE\]`)
	excerptTag = regexp.MustCompile(`(?is)\[EXCERPT\](.*?)\[/EXCERPT\]`)
	contentTag = regexp.MustCompile(`(?is)\[CONTENT\](.*?)\[/CONTENT\]`)
	// An unterminated [CONTENT] block is common when the model runs out of tokens.
	openContentTag = regexp.MustCompile(`(?is)\[CONTENT\](.*)$`)
	jsonFence      = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	codeFence      = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
)

// ParseResponse tries tags, then a legacy JSON block, then the raw text. It always succeeds
// and always yields a non-empty title and content.
func ParseResponse(raw, fallbackTitle string) Parsed {
	fallbackTitle = strings.TrimSpace(fallbackTitle)
	if fallbackTitle == "" {
		fallbackTitle = "Untitled"
	}

	if p, ok := parseTags(raw); ok {
		return p.complete(fallbackTitle)
	}
	if p, ok := parseLegacyJSON(raw); ok {
		return p.complete(fallbackTitle)
	}

	content := strings.TrimSpace(raw)
	if m := codeFence.FindStringSubmatch(content); m != nil {
		content = strings.TrimSpace(m[1])
	}
	if content == "" {
		content = fallbackTitle
	}
	return Parsed{
		Kind:    ParsedRaw,
		Title:   fallbackTitle,
		Excerpt: htmltext.Truncate(fallbackTitle, excerptRunes),
		Content: content,
	}
}

func parseTags(raw string) (Parsed, bool) {
	title := firstGroup(titleTag, raw)
	content := firstGroup(contentTag, raw)
	if content == "" {
		content = firstGroup(openContentTag, raw)
	}
	if title == "" || content == "" {
		return Parsed{}, false
	}
	return Parsed{
		Kind:    ParsedTags,
		Title:   title,
		Excerpt: firstGroup(excerptTag, raw),
		Content: content,
	}, true
}

func parseLegacyJSON(raw string) (Parsed, bool) {
	candidate := ""
	if m := jsonFence.FindStringSubmatch(raw); m != nil {
		candidate = m[1]
	} else if start, end := strings.Index(raw, "{"), strings.LastIndex(raw, "}"); start >= 0 && end > start {
		candidate = raw[start : end+1]
	}
	if candidate == "" {
		return Parsed{}, false
	}

	var payload struct {
		Title   string `json:"title"`
		Excerpt string `json:"excerpt"`
		Content string `json:"content"`
	}
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return Parsed{}, false
	}
	if strings.TrimSpace(payload.Title) == "" || strings.TrimSpace(payload.Content) == "" {
		return Parsed{}, false
	}
	return Parsed{
		Kind:    ParsedLegacyJSON,
		Title:   strings.TrimSpace(payload.Title),
		Excerpt: strings.TrimSpace(payload.Excerpt),
		Content: strings.TrimSpace(payload.Content),
	}, true
}

func (p Parsed) complete(fallbackTitle string) Parsed {
	p.Title = cleanTitle(p.Title)
	if p.Title == "" {
		p.Title = fallbackTitle
	}
	if p.Excerpt == "" {
		p.Excerpt = htmltext.Truncate(htmltext.PlainText(p.Content), excerptRunes)
	}
	p.Excerpt = htmltext.PlainText(p.Excerpt)
	return p
}

func cleanTitle(title string) string {
	title = htmltext.PlainText(title)
	title = strings.Trim(title, `"'*# `)
	return strings.TrimSpace(title)
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}
