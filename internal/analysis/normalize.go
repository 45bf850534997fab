package analysis

import (
	"encoding/json"
	"log/slog"
	"strings"
	"unicode"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
)

// Outcome is the result of normalizing one inference response.
// It is either Parsed or Degraded.
type Outcome interface {
	outcome()
}

// Parsed holds a response that decoded into at least one structured field
type Parsed struct {
	Result models.StructuredResult
}

// Degraded keeps the original, unmodified response text
type Degraded struct {
	RawText string
}

func (Parsed) outcome()   {}
func (Degraded) outcome() {}

// Normalize coerces raw model output into a structured result.
// It never fails: anything that is not a JSON object carrying a known field degrades.
func Normalize(raw string) Outcome {
	body := stripFences(raw)
	if !strings.HasPrefix(body, "{") {
		return Degraded{RawText: raw}
	}

	var result models.StructuredResult
	if err := json.Unmarshal([]byte(body), &result); err != nil {
		slog.Warn("Failed to parse structured response, keeping raw text", "error", err, "length", len(raw))
		return Degraded{RawText: raw}
	}
	result.RawFallbackText = ""

	if !result.HasStructure() {
		return Degraded{RawText: raw}
	}
	return Parsed{Result: result.Compact()}
}

// Flatten converts an outcome into the persisted result shape
func Flatten(o Outcome) models.StructuredResult {
	switch v := o.(type) {
	case Parsed:
		return v.Result
	case Degraded:
		return models.StructuredResult{RawFallbackText: v.RawText}
	}
	return models.StructuredResult{}
}

// stripFences removes a leading ``` line (with optional language tag) and a trailing ```
func stripFences(raw string) string {
	s := strings.TrimSpace(raw)
	if rest, ok := strings.CutPrefix(s, "```"); ok {
		if i := strings.IndexByte(rest, '\n'); i >= 0 {
			rest = rest[i+1:]
		} else {
			rest = strings.TrimLeftFunc(rest, unicode.IsLetter)
		}
		s = strings.TrimSpace(rest)
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}
