package report

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/pdfcpu/pdfcpu/pkg/api"
)

func TestMain(m *testing.M) {
	api.DisableConfigDir()
	os.Exit(m.Run())
}

func TestRenderProducesValidPDF(t *testing.T) {
	tests := []struct {
		name   string
		result models.StructuredResult
	}{
		{name: "empty", result: models.StructuredResult{}},
		{name: "raw fallback", result: models.StructuredResult{RawFallbackText: "plain text"}},
		{
			name: "master",
			result: models.StructuredResult{
				Title:          "Agreement of Sale",
				TranslatedText: strings.Repeat("The seller agrees to transfer the plot. ", 300),
				Sections: []models.Section{
					{Heading: "Parties", Content: strings.Repeat("Ram Lal of Varanasi and Shyam Das. ", 120)},
					{Heading: "Consideration", Content: "Rs. 5000 paid in full."},
				},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := RenderBytes(tt.result, meta, Options{})
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if !bytes.HasPrefix(data, []byte("%PDF-")) {
				t.Fatalf("Expected PDF header")
			}

			info, err := Inspect(data)
			if err != nil {
				t.Fatalf("Expected valid PDF, got %v", err)
			}

			want := Layout(newPDFCanvas(""), tt.result, meta)
			if info.Pages != want {
				t.Errorf("Expected %d pages, got %d", want, info.Pages)
			}
		})
	}
}

func TestInspectRejectsGarbage(t *testing.T) {
	if _, err := Inspect([]byte("not a pdf")); err == nil {
		t.Errorf("Expected error for invalid PDF")
	}
}
