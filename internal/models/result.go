package models

// Entities groups named entities by category
type Entities struct {
	Persons       []string `json:"persons,omitempty" yaml:"persons,omitempty"`
	Locations     []string `json:"locations,omitempty" yaml:"locations,omitempty"`
	Dates         []string `json:"dates,omitempty" yaml:"dates,omitempty"`
	Organizations []string `json:"organizations,omitempty" yaml:"organizations,omitempty"`
	Identifiers   []string `json:"identifiers,omitempty" yaml:"identifiers,omitempty"`
}

// Empty reports whether no category holds an entity
func (e *Entities) Empty() bool {
	if e == nil {
		return true
	}
	return len(e.Persons)+len(e.Locations)+len(e.Dates)+len(e.Organizations)+len(e.Identifiers) == 0
}

// Section is a headed block of reconstructed text
type Section struct {
	Heading string `json:"heading" yaml:"heading"`
	Content string `json:"content" yaml:"content"`
}

// StructuredResult is the normalized output of one analysis.
// RawFallbackText is set only when the inference response could not be parsed.
type StructuredResult struct {
	Title           string    `json:"title,omitempty" yaml:"title,omitempty"`
	SourceText      string    `json:"clean_source_text,omitempty" yaml:"clean_source_text,omitempty"`
	RawSourceText   string    `json:"source_text,omitempty" yaml:"source_text,omitempty"`
	TranslatedText  string    `json:"translated_text,omitempty" yaml:"translated_text,omitempty"`
	Entities        *Entities `json:"entities,omitempty" yaml:"entities,omitempty"`
	Sections        []Section `json:"sections,omitempty" yaml:"sections,omitempty"`
	RawFallbackText string    `json:"raw_text,omitempty" yaml:"raw_text,omitempty"`
}

// HasStructure reports whether any structured field is populated
func (r StructuredResult) HasStructure() bool {
	return r.Title != "" ||
		r.SourceText != "" ||
		r.RawSourceText != "" ||
		r.TranslatedText != "" ||
		r.Entities != nil ||
		len(r.Sections) > 0
}

// Compact drops empty slices so a result reads back from JSON or YAML
// exactly as it was written
func (r StructuredResult) Compact() StructuredResult {
	if r.Entities != nil {
		e := *r.Entities
		e.Persons = nilIfEmpty(e.Persons)
		e.Locations = nilIfEmpty(e.Locations)
		e.Dates = nilIfEmpty(e.Dates)
		e.Organizations = nilIfEmpty(e.Organizations)
		e.Identifiers = nilIfEmpty(e.Identifiers)
		r.Entities = &e
	}
	if len(r.Sections) == 0 {
		r.Sections = nil
	}
	return r
}

func nilIfEmpty(s []string) []string {
	if len(s) == 0 {
		return nil
	}
	return s
}

// DisplayText picks the best available body text: cleaned, then verbatim, then the raw fallback
func (r StructuredResult) DisplayText() string {
	switch {
	case r.SourceText != "":
		return r.SourceText
	case r.RawSourceText != "":
		return r.RawSourceText
	default:
		return r.RawFallbackText
	}
}
