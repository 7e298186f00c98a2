package types

import (
	"time"

	"github.com/google/uuid"
)

// Severity represents the severity level of a finding.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
	SeverityInfo     Severity = "INFO"
)

// SeverityRank returns a numeric rank for sorting (lower = more severe).
func SeverityRank(s Severity) int {
	switch s {
	case SeverityCritical:
		return 0
	case SeverityHigh:
		return 1
	case SeverityMedium:
		return 2
	case SeverityLow:
		return 3
	case SeverityInfo:
		return 4
	default:
		return 5
	}
}

// Finding is a confirmed detection recorded for later reporting.
type Finding struct {
	ID          string            `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Severity    Severity          `json:"severity"`
	ResourceURL string            `json:"resource_url"`
	SourceID    string            `json:"source_id,omitempty"`
	Reporter    string            `json:"reporter"`
	CreatedAt   time.Time         `json:"created_at"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// NewFinding creates a Finding with a fresh ID and timestamp.
func NewFinding(title, description, resourceURL, sourceID, reporter string) Finding {
	return Finding{
		ID:          uuid.NewString(),
		Title:       title,
		Description: description,
		Severity:    SeverityHigh,
		ResourceURL: resourceURL,
		SourceID:    sourceID,
		Reporter:    reporter,
		CreatedAt:   time.Now(),
	}
}
