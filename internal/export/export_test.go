package export

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleItems() []models.VaultItem {
	return []models.VaultItem{
		{
			ID:             "01J0000000000000000000000B",
			OwnerID:        "owner-1",
			CreatedAt:      1767225600000,
			Title:          "भूमि विक्रय",
			SourceLanguage: "Hindi",
			TargetLanguage: "English",
			Status:         models.StatusInProgress,
			SourceImage:    models.SourceImage{EncodedBytes: "aW1n", MIMEType: "image/png"},
			Result: models.StructuredResult{
				Title:          "भूमि विक्रय",
				SourceText:     "साफ पाठ",
				TranslatedText: "Clean text",
				Entities:       &models.Entities{Persons: []string{"Ram Lal"}},
				Sections:       []models.Section{{Heading: "Parties", Content: "Ram Lal"}},
			},
		},
		{
			ID:             "01J0000000000000000000000A",
			OwnerID:        "owner-1",
			CreatedAt:      1764547200000,
			Title:          "Analysis 10:00:00",
			SourceLanguage: "Tamil",
			TargetLanguage: "French",
			Status:         models.StatusNotVisited,
			Result:         models.StructuredResult{RawFallbackText: "raw text"},
		},
	}
}

func TestYAMLExport(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteYAML(&buf, models.Owner{ID: "owner-1", Name: "Asha"}, sampleItems()))
	assert.Contains(t, buf.String(), "exportedat:")

	items, err := ReadYAML(&buf)
	require.NoError(t, err)
	assert.Equal(t, sampleItems(), items)
}

func TestParquetExport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vault.parquet")
	require.NoError(t, WriteParquet(path, sampleItems()))

	items, err := ReadParquet(path)
	require.NoError(t, err)
	assert.Equal(t, sampleItems(), items)
}

func TestFileDispatch(t *testing.T) {
	dir := t.TempDir()
	owner := models.Owner{ID: "owner-1"}

	for _, name := range []string{"vault.yaml", "vault.parquet"} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(dir, name)
			format, err := FormatFromPath(path)
			require.NoError(t, err)
			require.NoError(t, WriteFile(path, format, owner, sampleItems()))

			items, err := ReadFile(path)
			require.NoError(t, err)
			assert.Len(t, items, 2)
		})
	}

	_, err := FormatFromPath("vault.csv")
	assert.Error(t, err)
}
