package models

import (
	"errors"
	"fmt"
)

// MaxArchiveItems bounds the number of items kept in a single owner's vault
const MaxArchiveItems = 50

var (
	ErrUnknownMode   = errors.New("unknown analysis mode")
	ErrUnknownStatus = errors.New("unknown status")
)

// Status is the triage state of an archived item
type Status string

const (
	StatusNotVisited Status = "not-visited"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in board order
func Statuses() []Status {
	return []Status{StatusNotVisited, StatusInProgress, StatusCompleted}
}

// Normalize maps the zero value to StatusNotVisited
func (s Status) Normalize() Status {
	if s == "" {
		return StatusNotVisited
	}
	return s
}

func (s Status) Valid() bool {
	switch s {
	case StatusNotVisited, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// Label is the human readable column name
func (s Status) Label() string {
	switch s.Normalize() {
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return "Not Visited"
	}
}

// ParseStatus accepts only the three known statuses
func ParseStatus(s string) (Status, error) {
	status := Status(s)
	if !status.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
	return status, nil
}

// Owner identifies the person a vault belongs to
type Owner struct {
	ID   string `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
}

// SourceImage holds the captured document image
type SourceImage struct {
	EncodedBytes string `json:"encoded_bytes" yaml:"encoded_bytes"`
	MIMEType     string `json:"mime_type" yaml:"mime_type"`
}

// VaultItem is one archived analysis
type VaultItem struct {
	ID             string           `json:"id" yaml:"id"`
	OwnerID        string           `json:"owner_id" yaml:"owner_id"`
	CreatedAt      int64            `json:"created_at" yaml:"created_at"`
	Title          string           `json:"title" yaml:"title"`
	SourceImage    SourceImage      `json:"source_image" yaml:"source_image"`
	Result         StructuredResult `json:"result" yaml:"result"`
	SourceLanguage string           `json:"source_language" yaml:"source_language"`
	TargetLanguage string           `json:"target_language" yaml:"target_language"`
	Status         Status           `json:"status" yaml:"status"`
}
