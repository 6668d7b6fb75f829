package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/internal/featureflags"
	"github.com/aryan0dhankhar/meetlog/internal/observability/metrics"
	"github.com/aryan0dhankhar/meetlog/internal/observability/tracing"
)

// SummaryService validates input and delegates to the external summarizer.
// It does not persist anything; callers decide where the summary goes.
type SummaryService struct {
	summarizer domain.Summarizer
	cache      domain.SummaryCache
	cacheTTL   time.Duration
	maxChars   int
	logger     *slog.Logger
}

// NewSummaryService creates a new summary service. cache may be nil.
func NewSummaryService(summarizer domain.Summarizer, cache domain.SummaryCache, cacheTTL time.Duration, maxChars int, logger *slog.Logger) *SummaryService {
	if logger == nil {
		logger = slog.Default()
	}
	if maxChars <= 0 {
		maxChars = 10000
	}
	return &SummaryService{
		summarizer: summarizer,
		cache:      cache,
		cacheTTL:   cacheTTL,
		maxChars:   maxChars,
		logger:     logger,
	}
}

// Summarize rejects empty or oversized input before any external call.
func (s *SummaryService) Summarize(ctx context.Context, text string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%w: text is empty", domain.ErrValidation)
	}
	if n := utf8.RuneCountInString(text); n > s.maxChars {
		return "", fmt.Errorf("%w: text is %d characters, limit is %d", domain.ErrValidation, n, s.maxChars)
	}

	useCache := s.cache != nil && featureflags.Enabled(featureflags.SummaryCache)
	key := cacheKey(text)
	if useCache {
		cached, ok, err := s.cache.Get(ctx, key)
		switch {
		case err != nil:
			metrics.ObserveSummaryCache("error")
			s.logger.Warn("summary cache read failed", slog.String("error", err.Error()))
		case ok:
			metrics.ObserveSummaryCache("hit")
			return cached, nil
		default:
			metrics.ObserveSummaryCache("miss")
		}
	}

	ctx, span := tracing.Tracer().Start(ctx, "summary.summarize")
	defer span.End()
	span.SetAttributes(attribute.Int("input.chars", utf8.RuneCountInString(text)))

	start := time.Now()
	summary, err := s.summarizer.Summarize(ctx, text)
	if err != nil {
		metrics.ObserveSummarize("error", time.Since(start))
		span.RecordError(err)
		span.SetStatus(codes.Error, "summarize failed")
		s.logger.Error("summarization failed", slog.String("error", err.Error()))
		if !errors.Is(err, domain.ErrExternalService) {
			err = fmt.Errorf("%w: %v", domain.ErrExternalService, err)
		}
		return "", err
	}
	metrics.ObserveSummarize("success", time.Since(start))

	if useCache {
		if err := s.cache.Set(ctx, key, summary, s.cacheTTL); err != nil {
			s.logger.Warn("summary cache write failed", slog.String("error", err.Error()))
		}
	}
	return summary, nil
}

func cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return hex.EncodeToString(sum[:])
}
