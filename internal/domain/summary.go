package domain

import (
	"context"
	"time"
)

// Summarizer turns free-text meeting notes into a short summary. Failures are
// returned as errors wrapping ErrExternalService, never as summary text.
type Summarizer interface {
	Summarize(ctx context.Context, text string) (string, error)
}

// SummaryCache stores summaries keyed by a digest of the input.
type SummaryCache interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, summary string, ttl time.Duration) error
}
