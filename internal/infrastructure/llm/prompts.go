package llm

import (
	"fmt"
	"strings"

	"NewsPipeline/internal/domain"
	"NewsPipeline/internal/infrastructure/htmltext"
	"NewsPipeline/internal/ports"
)

const (
	maxSourceRunes    = 6000
	maxSynthesisRunes = 3500
	// MaxSynthesisSources caps how many documents one synthesis call merges.
	MaxSynthesisSources = 5
)

var writingStyles = map[string]string{
	"professional":  "Use a formal, objective and authoritative newsroom tone.",
	"casual":        "Use a relaxed, conversational tone that stays accurate and respectful.",
	"investigative": "Use a probing, evidence-driven tone; highlight causes, actors and open questions.",
	"educational":   "Use a clear explanatory tone; define terms and give background a general reader needs.",
}

var articleModels = map[string]string{
	"straight news": "Structure: inverted pyramid. Lead with the 5W1H in the first paragraph, then supporting details in descending importance.",
	"feature":       "Structure: feature story. Open with a vivid scene or human angle, develop context in the body, close with a reflective ending.",
	"opinion":       "Structure: opinion column. State a clear thesis early, argue it with the sourced facts, acknowledge a counterpoint, conclude firmly.",
	"deep analysis": "Structure: deep analysis. Use <h2> subheadings for background, key facts, implications and outlook.",
}

var languageNames = map[string]string{
	"id": "Indonesian",
	"en": "English",
}

func styleInstruction(style string) string {
	if s, ok := writingStyles[strings.ToLower(strings.TrimSpace(style))]; ok {
		return s
	}
	return writingStyles["professional"]
}

func modelInstruction(model string) string {
	if s, ok := articleModels[strings.ToLower(strings.TrimSpace(model))]; ok {
		return s
	}
	return articleModels["straight news"]
}

// LanguageName expands ISO codes; other values are used verbatim.
func LanguageName(lang string) string {
	lang = strings.TrimSpace(lang)
	if name, ok := languageNames[strings.ToLower(lang)]; ok {
		return name
	}
	if lang == "" {
		return languageNames["id"]
	}
	return lang
}

const outputContract = `Reply ONLY in this exact format, with no commentary before or after:
[TITLE]the new headline[/TITLE]
[EXCERPT]one or two sentence summary, plain text[/EXCERPT]
[CONTENT]the article body as HTML using <p>, <h2>, <ul>/<li> and <strong> only[/CONTENT]`

func rewritePrompts(doc domain.SourceDocument, opts ports.RewriteOptions) (string, string) {
	lang := LanguageName(opts.Language)
	system := strings.Join([]string{
		"You are a senior news editor who restructures wire copy into original articles.",
		fmt.Sprintf("Detect the source language automatically and write the result in %s.", lang),
		styleInstruction(opts.WritingStyle),
		modelInstruction(opts.ArticleModel),
		"Restructure the story rather than rewording sentence by sentence. Keep every fact, name, number and quote accurate; never invent facts.",
		outputContract,
	}, "\n\n")

	var user strings.Builder
	fmt.Fprintf(&user, "Source: %s\n", doc.SourceName)
	fmt.Fprintf(&user, "Original title: %s\n", doc.Title)
	if opts.Keyword != "" {
		fmt.Fprintf(&user, "Focus keyword: %s\n", opts.Keyword)
	}
	fmt.Fprintf(&user, "\nOriginal article:\n%s", htmltext.Truncate(htmltext.PlainText(doc.Content), maxSourceRunes))
	return system, user.String()
}

func synthesisPrompts(docs []domain.SourceDocument, opts ports.RewriteOptions) (string, string) {
	lang := LanguageName(opts.Language)
	system := strings.Join([]string{
		"You are a senior news editor who merges several reports about the same topic into one denser, original article.",
		fmt.Sprintf("Sources may be in different languages; write the result in %s.", lang),
		styleInstruction(opts.WritingStyle),
		modelInstruction(opts.ArticleModel),
		"Combine the facts of all sources, remove repetition and resolve overlaps. Preserve exact numbers, prices, dates, specifications and technical data points exactly as written in the sources. Never invent facts.",
		`When the sources contain structured specifications or prices, add a section <h2>Key Specs &amp; Prices</h2> followed by a <ul> listing each data point.`,
		outputContract,
	}, "\n\n")

	var user strings.Builder
	if opts.Keyword != "" {
		fmt.Fprintf(&user, "Topic: %s\n\n", opts.Keyword)
	}
	for i, doc := range docs {
		fmt.Fprintf(&user, "--- Source %d: %s ---\nTitle: %s\n%s\n\n",
			i+1, doc.SourceName, doc.Title,
			htmltext.Truncate(htmltext.PlainText(doc.Content), maxSynthesisRunes))
	}
	return system, strings.TrimSpace(user.String())
}

const imagePromptSystem = `You write prompts for a text-to-image model that illustrates news articles.
Reply with a single prompt of 20 to 40 words describing a photorealistic editorial photograph:
subject, setting, lighting and camera angle. No text, logos, captions or quotation marks.`

func imagePromptUser(title, content string) string {
	return fmt.Sprintf("Headline: %s\n\nArticle:\n%s", title, htmltext.Truncate(htmltext.PlainText(content), 1200))
}
