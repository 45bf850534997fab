package models

import "fmt"

// AnalysisMode selects the instruction sent with a document image
type AnalysisMode string

const (
	ModeBase        AnalysisMode = "base"
	ModeHandwritten AnalysisMode = "handwritten"
	ModeTranslation AnalysisMode = "translation"
	ModeEntity      AnalysisMode = "entity"
	ModeMaster      AnalysisMode = "master"
	// ModeLayout is reserved and produces no instruction
	ModeLayout AnalysisMode = "layout"
)

// ModeInfo describes a user selectable mode
type ModeInfo struct {
	ID          AnalysisMode `json:"id" yaml:"id"`
	Label       string       `json:"label" yaml:"label"`
	Description string       `json:"description" yaml:"description"`
}

var modeCatalog = []ModeInfo{
	{ID: ModeBase, Label: "Standard OCR", Description: "Accurate text extraction from documents."},
	{ID: ModeHandwritten, Label: "Handwriting Analysis", Description: "Specialized for scripts and cursive notes."},
	{ID: ModeTranslation, Label: "OCR + Translation", Description: "Instant translation of extracted text."},
	{ID: ModeEntity, Label: "Intelligence Extraction", Description: "Detect names, dates, and identifiers."},
	{ID: ModeMaster, Label: "Master Analysis", Description: "Full processing, cleaning, and translation."},
}

// Modes returns the selectable modes. The reserved layout mode is not listed.
func Modes() []ModeInfo {
	out := make([]ModeInfo, len(modeCatalog))
	copy(out, modeCatalog)
	return out
}

// Known reports whether m is one of the six declared modes
func (m AnalysisMode) Known() bool {
	switch m {
	case ModeBase, ModeHandwritten, ModeTranslation, ModeEntity, ModeMaster, ModeLayout:
		return true
	}
	return false
}

// WantsJSON reports whether the instruction for m asks for a JSON object
func (m AnalysisMode) WantsJSON() bool {
	switch m {
	case ModeTranslation, ModeEntity, ModeMaster:
		return true
	}
	return false
}

// ParseMode validates user input. Layout parses but callers should treat it as reserved.
func ParseMode(s string) (AnalysisMode, error) {
	if s == "" {
		return ModeMaster, nil
	}
	m := AnalysisMode(s)
	if !m.Known() {
		return "", fmt.Errorf("%w: %q", ErrUnknownMode, s)
	}
	return m, nil
}
