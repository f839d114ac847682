package usecase

import (
	"strings"
	"testing"
)

func TestBuildAPPrompt(t *testing.T) {
	t.Parallel()

	prompt := BuildAPPrompt("Shop Opens", "<p>A new shop opened today in the city.</p>")

	for _, want := range []string{
		"Title: Shop Opens",
		"Content: <p>A new shop opened today in the city.</p>",
		"Lead paragraph: Maximum 35 words",
		"- Include dateline if location-specific: KARACHI, Pakistan - \n",
		"Inverted pyramid structure",
		"Short paragraphs (1-3 sentences)",
		"Attribution required for all claims",
		"Numbers: Spell out one-nine, numerals for 10+",
		"Currency: PKR format",
		"Return ONLY the converted article content in proper HTML format with paragraphs.",
	} {
		if !strings.Contains(prompt, want) {
			t.Fatalf("prompt is missing %q", want)
		}
	}

	if again := BuildAPPrompt("Shop Opens", "<p>A new shop opened today in the city.</p>"); again != prompt {
		t.Fatalf("prompt is not deterministic")
	}
}

func TestBuildAPPromptLeavesArticlePlaceholdersAlone(t *testing.T) {
	t.Parallel()

	prompt := BuildAPPrompt("{{content}}", "body mentions {{title}}")
	if !strings.Contains(prompt, "Title: {{content}}") {
		t.Fatalf("title was rewritten: %s", prompt)
	}
	if !strings.Contains(prompt, "Content: body mentions {{title}}") {
		t.Fatalf("body was rewritten: %s", prompt)
	}
}
