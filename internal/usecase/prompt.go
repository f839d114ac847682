package usecase

import "strings"

const apPromptTemplate = `You are an expert AP style editor for Digital Commerce 360 Pakistan. Convert this article to Associated Press format with these requirements:

STRUCTURE:
- Lead paragraph: Maximum 35 words, answers who/what/when/where/why
- Inverted pyramid structure
- Short paragraphs (1-3 sentences)
- Include dateline if location-specific: KARACHI, Pakistan - 

STYLE:
- Third person voice only
- Use 'said' for attribution
- Numbers: Spell out one-nine, numerals for 10+
- Dates: Month Day, Year format
- Attribution required for all claims
- No editorial language

PAKISTAN E-COMMERCE FOCUS:
- Currency: PKR format
- Company names: Full legal names first reference
- Government sources: Proper titles
- Industry terminology: Clear definitions

Original Article:
Title: {{title}}
Content: {{content}}

Return ONLY the converted article content in proper HTML format with paragraphs.`

// BuildAPPrompt substitutes the article into the fixed AP style template.
// The result depends only on title and body.
func BuildAPPrompt(title, body string) string {
	// Single pass so placeholders inside the article text are left alone.
	return strings.NewReplacer(
		"{{title}}", title,
		"{{content}}", body,
	).Replace(apPromptTemplate)
}
