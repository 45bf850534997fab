package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/lehigh-university-libraries/lekhan/internal/analysis"
	"github.com/lehigh-university-libraries/lekhan/internal/models"
	"github.com/lehigh-university-libraries/lekhan/internal/storage"
	"gopkg.in/yaml.v3"
)

const FileName = "lekhan.yaml"

// S3 holds object storage settings for the s3 store
type S3 struct {
	Bucket    string `yaml:"bucket,omitempty"`
	Region    string `yaml:"region,omitempty"`
	Endpoint  string `yaml:"endpoint,omitempty"`
	AccessKey string `yaml:"access_key,omitempty"`
	SecretKey string `yaml:"secret_key,omitempty"`
	Prefix    string `yaml:"prefix,omitempty"`
}

// Config holds application configuration
type Config struct {
	// Provider is one of gemini, openai or ollama
	Provider    string  `yaml:"provider,omitempty"`
	Model       string  `yaml:"model,omitempty"`
	Temperature float64 `yaml:"temperature,omitempty"`

	GeminiAPIKey string `yaml:"gemini_api_key,omitempty"`
	OpenAIAPIKey string `yaml:"openai_api_key,omitempty"`
	OllamaURL    string `yaml:"ollama_url,omitempty"`

	// Store is one of memory, bolt, sqlite or s3
	Store   string `yaml:"store,omitempty"`
	DataDir string `yaml:"data_dir,omitempty"`
	S3      S3     `yaml:"s3,omitempty"`

	Owner models.Owner `yaml:"owner,omitempty"`

	// FontPath is a TTF font for reports in non-Latin scripts
	FontPath string `yaml:"font_path,omitempty"`
	Port     string `yaml:"port,omitempty"`
}

// Default returns the built-in configuration
func Default() *Config {
	dataDir := ".lekhan"
	if home, err := os.UserHomeDir(); err == nil {
		dataDir = filepath.Join(home, ".lekhan")
	}
	name := os.Getenv("USER")
	if name == "" {
		name = "Local User"
	}
	return &Config{
		Provider:    "gemini",
		Temperature: 0.1,
		Store:       storage.DriverBolt,
		DataDir:     dataDir,
		S3:          S3{Region: "us-east-1", Prefix: "vaults"},
		Owner:       models.Owner{ID: "local", Name: name},
		Port:        "8888",
	}
}

// Load applies defaults, then the YAML file at path (if present), then the environment
func Load(path string) (*Config, error) {
	file, err := loadFile(path)
	if err != nil {
		return nil, err
	}
	env, err := FromEnv()
	if err != nil {
		return nil, err
	}
	cfg := Merge(Merge(Default(), file), env)
	if cfg.Model == "" {
		cfg.Model = providerModelEnv(cfg.Provider)
	}
	return cfg, nil
}

// DefaultPath is the config file inside the default data directory
func DefaultPath() string {
	return filepath.Join(Default().DataDir, FileName)
}

func loadFile(path string) (*Config, error) {
	if path == "" {
		return &Config{}, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv reads overrides from the environment. Unset variables stay zero.
func FromEnv() (*Config, error) {
	cfg := &Config{
		Provider:     firstEnv("LEKHAN_PROVIDER", "CATALOGING_PROVIDER"),
		GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		OpenAIAPIKey: os.Getenv("OPENAI_API_KEY"),
		OllamaURL:    firstEnv("OLLAMA_URL", "OLLAMA_HOST"),
		Store:        os.Getenv("LEKHAN_STORE"),
		DataDir:      os.Getenv("LEKHAN_DATA_DIR"),
		FontPath:     os.Getenv("LEKHAN_FONT"),
		Port:         os.Getenv("LEKHAN_PORT"),
		Owner: models.Owner{
			ID:   os.Getenv("LEKHAN_OWNER_ID"),
			Name: os.Getenv("LEKHAN_OWNER_NAME"),
		},
		S3: S3{
			Bucket:    os.Getenv("LEKHAN_S3_BUCKET"),
			Region:    os.Getenv("LEKHAN_S3_REGION"),
			Endpoint:  os.Getenv("LEKHAN_S3_ENDPOINT"),
			AccessKey: os.Getenv("LEKHAN_S3_ACCESS_KEY"),
			SecretKey: os.Getenv("LEKHAN_S3_SECRET_KEY"),
			Prefix:    os.Getenv("LEKHAN_S3_PREFIX"),
		},
	}

	cfg.Model = os.Getenv("LEKHAN_MODEL")

	if v := os.Getenv("LEKHAN_TEMPERATURE"); v != "" {
		t, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid LEKHAN_TEMPERATURE %q: %w", v, err)
		}
		cfg.Temperature = t
	}
	return cfg, nil
}

// Merge combines base and overlay. Non-zero overlay values win.
func Merge(base, overlay *Config) *Config {
	result := *base

	result.Provider = pick(overlay.Provider, base.Provider)
	result.Model = pick(overlay.Model, base.Model)
	if overlay.Temperature != 0 {
		result.Temperature = overlay.Temperature
	}
	result.GeminiAPIKey = pick(overlay.GeminiAPIKey, base.GeminiAPIKey)
	result.OpenAIAPIKey = pick(overlay.OpenAIAPIKey, base.OpenAIAPIKey)
	result.OllamaURL = pick(overlay.OllamaURL, base.OllamaURL)
	result.Store = pick(overlay.Store, base.Store)
	result.DataDir = pick(overlay.DataDir, base.DataDir)
	result.FontPath = pick(overlay.FontPath, base.FontPath)
	result.Port = pick(overlay.Port, base.Port)

	result.Owner.ID = pick(overlay.Owner.ID, base.Owner.ID)
	result.Owner.Name = pick(overlay.Owner.Name, base.Owner.Name)

	result.S3.Bucket = pick(overlay.S3.Bucket, base.S3.Bucket)
	result.S3.Region = pick(overlay.S3.Region, base.S3.Region)
	result.S3.Endpoint = pick(overlay.S3.Endpoint, base.S3.Endpoint)
	result.S3.AccessKey = pick(overlay.S3.AccessKey, base.S3.AccessKey)
	result.S3.SecretKey = pick(overlay.S3.SecretKey, base.S3.SecretKey)
	result.S3.Prefix = pick(overlay.S3.Prefix, base.S3.Prefix)

	return &result
}

// ProviderSettings maps the config onto the analysis service settings.
// A model left unset falls back to the provider's default.
func (c *Config) ProviderSettings() analysis.ProviderSettings {
	return analysis.ProviderSettings{
		Name:         c.Provider,
		Model:        c.Model,
		Temperature:  c.Temperature,
		GeminiAPIKey: c.GeminiAPIKey,
		OpenAIAPIKey: c.OpenAIAPIKey,
		OllamaURL:    c.OllamaURL,
	}
}

// StorageOptions maps the config onto storage.Open options
func (c *Config) StorageOptions() storage.Options {
	return storage.Options{
		Driver:  c.Store,
		DataDir: c.DataDir,
		S3: storage.S3Config{
			Bucket:    c.S3.Bucket,
			Region:    c.S3.Region,
			Endpoint:  c.S3.Endpoint,
			AccessKey: c.S3.AccessKey,
			SecretKey: c.S3.SecretKey,
			Prefix:    c.S3.Prefix,
		},
	}
}

// providerModelEnv reads the per-provider model variable
func providerModelEnv(provider string) string {
	switch provider {
	case "gemini":
		return os.Getenv("GEMINI_MODEL")
	case "openai":
		return os.Getenv("OPENAI_MODEL")
	case "ollama":
		return os.Getenv("OLLAMA_MODEL")
	default:
		return ""
	}
}

func pick(overlay, base string) string {
	if overlay != "" {
		return overlay
	}
	return base
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}
