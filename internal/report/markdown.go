package report

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var md = goldmark.New(goldmark.WithExtensions(extension.GFM))

// Markdown renders a vault item as a markdown document with the same block
// order as the PDF report. The extracted text is included so degraded results stay readable.
func Markdown(item models.VaultItem) string {
	r := item.Result
	var b strings.Builder

	title := r.Title
	if title == "" {
		title = item.Title
	}
	fmt.Fprintf(&b, "# %s\n\n", title)
	fmt.Fprintf(&b, "_%s → %s · %s_\n\n", item.SourceLanguage, item.TargetLanguage, item.Status.Normalize().Label())

	for _, sec := range r.Sections {
		if sec.Heading != "" {
			fmt.Fprintf(&b, "## %s\n\n", sec.Heading)
		}
		if sec.Content != "" {
			fmt.Fprintf(&b, "%s\n\n", sec.Content)
		}
	}

	if len(r.Sections) == 0 {
		if text := r.DisplayText(); text != "" {
			fmt.Fprintf(&b, "## Extracted Text\n\n%s\n\n", text)
		}
	}

	if !r.Entities.Empty() {
		b.WriteString("## Entities\n\n| Category | Values |\n| --- | --- |\n")
		rows := []struct {
			name   string
			values []string
		}{
			{"Persons", r.Entities.Persons},
			{"Locations", r.Entities.Locations},
			{"Dates", r.Entities.Dates},
			{"Organizations", r.Entities.Organizations},
			{"Identifiers", r.Entities.Identifiers},
		}
		for _, row := range rows {
			if len(row.values) == 0 {
				continue
			}
			fmt.Fprintf(&b, "| %s | %s |\n", row.name, escapeCell(strings.Join(row.values, ", ")))
		}
		b.WriteString("\n")
	}

	if r.TranslatedText != "" {
		fmt.Fprintf(&b, "## %s\n\n%s\n", TranslationHeading, r.TranslatedText)
	}

	return b.String()
}

// HTML converts the markdown rendering of item to an HTML fragment
func HTML(item models.VaultItem) ([]byte, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(Markdown(item)), &buf); err != nil {
		return nil, fmt.Errorf("failed to render markdown: %w", err)
	}
	return buf.Bytes(), nil
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
