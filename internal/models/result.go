package models

import "time"

// Metadata describes an extraction result.
type Metadata struct {
	WordCount        int    `json:"word_count"`
	PageCount        int    `json:"page_count"`
	ExtractionMethod string `json:"extraction_method"`
	Filename         string `json:"filename"`
	HasTables        bool   `json:"has_tables"`
	HasImages        bool   `json:"has_images"`
}

// ExtractionResult is the output of the first strategy that succeeded.
type ExtractionResult struct {
	Method     string
	Title      string
	Content    string // sanitized, trimmed
	RawText    string // sanitized, before the final trim
	Metadata   Metadata
	Confidence float64
}

// AttemptOutcome is the result of trying one strategy.
type AttemptOutcome string

const (
	OutcomeSuccess AttemptOutcome = "success"
	OutcomeFailure AttemptOutcome = "failure"
	OutcomeSkipped AttemptOutcome = "skipped"
)

// ExtractionAttempt records one step of the strategy chain. It only lives for
// the duration of a request.
type ExtractionAttempt struct {
	Method   string
	Outcome  AttemptOutcome
	Err      error
	Duration time.Duration
}

// CapabilitySet maps a backend name to its availability.
type CapabilitySet map[string]bool
