package analysis

import (
	"fmt"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
)

// BuildPrompt returns the instruction for mode. Source and target are language
// display names and appear verbatim in every non-empty instruction.
// The reserved layout mode yields an empty string; an undeclared mode panics.
func BuildPrompt(mode models.AnalysisMode, sourceLanguage, targetLanguage string) string {
	preamble := fmt.Sprintf(`You are a world-class OCR and Document Intelligence system. The source document language is %s. Any follow-up translation targets %s.`, sourceLanguage, targetLanguage)

	switch mode {
	case models.ModeBase:
		return fmt.Sprintf(`%s
Extract all text from the image.
- Ignore noise, artifacts, and stamps.
- Maintain paragraph structure.
- Output ONLY the extracted text in %s.`, preamble, sourceLanguage)

	case models.ModeHandwritten:
		return fmt.Sprintf(`%s
Specialized Task: Recognize handwritten text in %s script.
- Handle cursive and overlapping text.
- If a word is unreadable, use [?].
- Output ONLY the recognized text.`, preamble, sourceLanguage)

	case models.ModeTranslation:
		return fmt.Sprintf(`%s
1. Extract text from the image in %s.
2. Translate the text into %s.
Output JSON format:
{
  "source_text": "extracted text",
  "translated_text": "translation"
}`, preamble, sourceLanguage, targetLanguage)

	case models.ModeEntity:
		return fmt.Sprintf(`%s
Extract key entities from the %s text.
Output JSON format:
{
  "entities": {
    "persons": [],
    "locations": [],
    "dates": [],
    "organizations": [],
    "identifiers": []
  }
}`, preamble, sourceLanguage)

	case models.ModeMaster:
		return fmt.Sprintf(`You are a document reconstruction and text normalization system.
Input: A scanned document image in %[1]s.

Strict Reconstruction Rules:
1. Remove all OCR noise characters (random symbols, control characters).
2. Restore correct %[1]s and English words by normalizing broken Unicode.
3. Preserve original document meaning exactly.
4. Reconstruct content into clean, human-readable paragraphs.
5. Maintain logical structure: Headings, numbered sections, tables, and bullet points.
6. If text is unreadable, replace with [UNCLEAR].
7. Do NOT invent content. Do NOT change facts.
8. Translate the final reconstructed text to %[2]s.

Output MUST be valid JSON:
{
  "title": "Normalized document title",
  "source_text": "Verbatim %[1]s text as it appears in the image",
  "clean_source_text": "Reconstructed %[1]s text following all rules",
  "entities": { "persons": [], "locations": [], "dates": [], "organizations": [], "identifiers": [] },
  "translated_text": "Translation to %[2]s",
  "sections": [{"heading": "Normalized Heading", "content": "Reconstructed content"}]
}`, sourceLanguage, targetLanguage)

	case models.ModeLayout:
		return ""
	}

	panic(fmt.Sprintf("analysis: no prompt for mode %q", mode))
}
