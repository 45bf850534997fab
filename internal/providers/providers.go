package providers

import (
	"context"
	"encoding/base64"
)

// Config represents the configuration for a single vision-language request
type Config struct {
	Model       string
	Temperature float64
	Prompt      string
	// Image is the raw document image sent alongside the prompt
	Image    []byte
	MIMEType string
	// JSON asks the backend to emit a JSON object when it supports a response format hint
	JSON bool
}

// Provider defines the interface for an inference backend
type Provider interface {
	ExtractText(ctx context.Context, config Config) (string, error)
}

// ProviderFunc adapts a function to the Provider interface
type ProviderFunc func(ctx context.Context, config Config) (string, error)

func (f ProviderFunc) ExtractText(ctx context.Context, config Config) (string, error) {
	return f(ctx, config)
}

// EncodedImage returns the image as standard base64
func (c Config) EncodedImage() string {
	return base64.StdEncoding.EncodeToString(c.Image)
}

// DataURL returns the image as a data URL for APIs that accept inline images
func (c Config) DataURL() string {
	mime := c.MIMEType
	if mime == "" {
		mime = "image/jpeg"
	}
	return "data:" + mime + ";base64," + c.EncodedImage()
}
