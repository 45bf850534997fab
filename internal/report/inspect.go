package report

import (
	"bytes"
	"fmt"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// Info summarizes a rendered document
type Info struct {
	Pages int
	Bytes int
}

// Inspect validates a PDF and counts its pages
func Inspect(data []byte) (Info, error) {
	cfg := model.NewDefaultConfiguration()
	cfg.ValidationMode = model.ValidationRelaxed

	if err := api.Validate(bytes.NewReader(data), cfg); err != nil {
		return Info{}, fmt.Errorf("failed to validate pdf: %w", err)
	}

	pages, err := api.PageCount(bytes.NewReader(data), cfg)
	if err != nil {
		return Info{}, fmt.Errorf("failed to count pages: %w", err)
	}

	return Info{Pages: pages, Bytes: len(data)}, nil
}
