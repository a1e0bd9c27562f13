package extract

import (
	"context"
	"fmt"
)

// Provider is a text-completion backend used for structured extraction.
// Implementations own all transport details; callers treat Complete as an
// opaque, possibly-slow, possibly-failing call.
type Provider interface {
	// Complete sends a system and user prompt and returns the raw model text.
	Complete(ctx context.Context, system, user string) (string, error)
	// Model returns the configured model name, for logging and stats.
	Model() string
	// Close releases resources.
	Close()
}

// RetryableError indicates a transient provider failure that can be retried.
type RetryableError struct {
	StatusCode int
	Message    string
}

func (e *RetryableError) Error() string {
	return fmt.Sprintf("retryable error (status %d): %s", e.StatusCode, truncate(e.Message, 200))
}
