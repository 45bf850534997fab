package analysis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/lehigh-university-libraries/lekhan/internal/gemini"
	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/ollama"
	"github.com/lehigh-university-libraries/lekhan/internal/openai"
	"github.com/lehigh-university-libraries/lekhan/internal/providers"
)

// ErrReservedMode is returned when the reserved layout mode is requested
var ErrReservedMode = errors.New("analysis mode is reserved and not available")

// ProviderSettings carries the connection details for the supported backends
type ProviderSettings struct {
	Name         string
	Model        string
	Temperature  float64
	GeminiAPIKey string
	OpenAIAPIKey string
	OllamaURL    string
}

// Request is one document submitted for analysis
type Request struct {
	Image          []byte
	MIMEType       string
	Mode           models.AnalysisMode
	SourceLanguage models.Language
	TargetLanguage models.Language
}

// Analysis is the normalized outcome of a request
type Analysis struct {
	Outcome  Outcome
	Result   models.StructuredResult
	Raw      string
	Provider string
	Model    string
}

type Service struct {
	provider     providers.Provider
	providerName string
	model        string
	temperature  float64
}

// NewService builds a service backed by the named provider
func NewService(settings ProviderSettings) (*Service, error) {
	provider, err := NewProvider(settings)
	if err != nil {
		return nil, err
	}
	model := settings.Model
	if model == "" {
		model = DefaultModel(settings.Name)
	}
	return &Service{
		provider:     provider,
		providerName: settings.Name,
		model:        model,
		temperature:  settings.Temperature,
	}, nil
}

// NewServiceWithProvider wires an already constructed provider
func NewServiceWithProvider(name string, provider providers.Provider, model string, temperature float64) *Service {
	return &Service{
		provider:     provider,
		providerName: name,
		model:        model,
		temperature:  temperature,
	}
}

// NewProvider resolves a provider by name
func NewProvider(settings ProviderSettings) (providers.Provider, error) {
	switch settings.Name {
	case "gemini":
		return gemini.New(settings.GeminiAPIKey), nil
	case "openai":
		return openai.New(settings.OpenAIAPIKey), nil
	case "ollama":
		return ollama.New(settings.OllamaURL), nil
	default:
		return nil, fmt.Errorf("unsupported provider: %s", settings.Name)
	}
}

// DefaultModel returns the built-in model for a provider
func DefaultModel(provider string) string {
	switch provider {
	case "gemini":
		return "gemini-2.5-flash"
	case "openai":
		return "gpt-4o"
	case "ollama":
		return "mistral-small3.2:24b"
	default:
		return ""
	}
}

func (s *Service) ProviderName() string { return s.providerName }

func (s *Service) Model() string { return s.model }

// Analyze sends the image with the mode's instruction and normalizes the answer.
// Inference failures are returned as errors; malformed answers degrade.
func (s *Service) Analyze(ctx context.Context, req Request) (*Analysis, error) {
	if req.Mode == models.ModeLayout {
		return nil, ErrReservedMode
	}
	if !req.Mode.Known() {
		return nil, fmt.Errorf("%w: %q", models.ErrUnknownMode, req.Mode)
	}
	if len(req.Image) == 0 {
		return nil, fmt.Errorf("no image data provided")
	}

	prompt := BuildPrompt(req.Mode, req.SourceLanguage.Name, req.TargetLanguage.Name)

	start := time.Now()
	slog.Info("Starting analysis", "mode", req.Mode, "provider", s.providerName, "model", s.model, "source", req.SourceLanguage.Name, "target", req.TargetLanguage.Name)

	raw, err := s.provider.ExtractText(ctx, providers.Config{
		Model:       s.model,
		Temperature: s.temperature,
		Prompt:      prompt,
		Image:       req.Image,
		MIMEType:    req.MIMEType,
		JSON:        req.Mode.WantsJSON(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to analyze document with %s: %w", s.providerName, err)
	}

	outcome := Normalize(raw)
	if _, degraded := outcome.(Degraded); degraded {
		slog.Warn("Analysis response kept as raw text", "mode", req.Mode, "length", len(raw))
	}

	slog.Info("Analysis complete", "mode", req.Mode, "provider", s.providerName, "length", len(raw), "duration", time.Since(start))

	return &Analysis{
		Outcome:  outcome,
		Result:   Flatten(outcome),
		Raw:      raw,
		Provider: s.providerName,
		Model:    s.model,
	}, nil
}
