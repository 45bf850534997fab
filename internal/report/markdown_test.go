package report

import (
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
)

func TestMarkdown(t *testing.T) {
	item := models.VaultItem{
		Title:          "Fallback",
		SourceLanguage: "Hindi",
		TargetLanguage: "English",
		Result: models.StructuredResult{
			Title:          "Sale Deed",
			TranslatedText: "The seller agrees.",
			Entities:       &models.Entities{Persons: []string{"Ram | Lal"}, Dates: []string{"1952"}},
			Sections:       []models.Section{{Heading: "Parties", Content: "Ram Lal"}},
		},
	}

	got := Markdown(item)
	for _, want := range []string{"# Sale Deed", "## Parties", "| Persons | Ram \\| Lal |", "| Dates | 1952 |", "## " + TranslationHeading, "Not Visited"} {
		if !strings.Contains(got, want) {
			t.Errorf("Expected markdown to contain %q, got:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Organizations") {
		t.Errorf("Expected empty categories to be skipped")
	}
}

func TestMarkdownDegraded(t *testing.T) {
	item := models.VaultItem{Title: "Analysis 10:00:00", Result: models.StructuredResult{RawFallbackText: "raw words"}}
	got := Markdown(item)
	if !strings.Contains(got, "# Analysis 10:00:00") || !strings.Contains(got, "raw words") {
		t.Errorf("Expected fallback title and raw text, got:\n%s", got)
	}
}

func TestHTML(t *testing.T) {
	item := models.VaultItem{
		Result: models.StructuredResult{
			Title:    "Deed",
			Entities: &models.Entities{Persons: []string{"Ram"}},
		},
	}
	html, err := HTML(item)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	out := string(html)
	if !strings.Contains(out, "<h1>Deed</h1>") {
		t.Errorf("Expected h1 heading, got %s", out)
	}
	if !strings.Contains(out, "<table>") {
		t.Errorf("Expected GFM table for entities, got %s", out)
	}
}
