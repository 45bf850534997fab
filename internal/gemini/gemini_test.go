package gemini

import (
	"context"
	"strings"
	"testing"

	"github.com/lehigh-university-libraries/lekhan/internal/providers"
)

func TestExtractTextRequiresAPIKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")

	_, err := New("").ExtractText(context.Background(), providers.Config{Model: "gemini-2.5-flash", Prompt: "hi"})
	if err == nil || !strings.Contains(err.Error(), "GEMINI_API_KEY") {
		t.Errorf("Expected missing key error, got %v", err)
	}
}
