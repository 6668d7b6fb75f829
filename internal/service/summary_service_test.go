package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/aryan0dhankhar/meetlog/internal/domain"
	"github.com/aryan0dhankhar/meetlog/internal/featureflags"
)

func TestSummarize_RejectsBeforeCalling(t *testing.T) {
	stub := &stubSummarizer{summary: "- ok"}
	svc := NewSummaryService(stub, nil, time.Minute, 10000, nil)

	for name, text := range map[string]string{
		"empty":      "",
		"whitespace": " \n\t ",
		"too long":   strings.Repeat("あ", 10001),
	} {
		if _, err := svc.Summarize(context.Background(), text); !errors.Is(err, domain.ErrValidation) {
			t.Errorf("%s: expected validation error, got %v", name, err)
		}
	}
	if stub.calls != 0 {
		t.Fatalf("summarizer must not be called for rejected input, got %d calls", stub.calls)
	}

	got, err := svc.Summarize(context.Background(), strings.Repeat("a", 10000))
	if err != nil || got != "- ok" {
		t.Fatalf("input at the limit should pass, got %q err=%v", got, err)
	}
}

func TestSummarize_FailureIsExternal(t *testing.T) {
	stub := &stubSummarizer{err: errBoom}
	svc := NewSummaryService(stub, nil, time.Minute, 0, nil)

	_, err := svc.Summarize(context.Background(), "notes")
	if !errors.Is(err, domain.ErrExternalService) {
		t.Fatalf("expected external service error, got %v", err)
	}
	if stub.calls != 1 {
		t.Fatalf("expected exactly one attempt, got %d", stub.calls)
	}
}

func TestSummarize_CacheBehindFlag(t *testing.T) {
	stub := &stubSummarizer{summary: "- cached"}
	cache := &memSummaryCache{items: map[string]string{}}
	svc := NewSummaryService(stub, cache, time.Minute, 0, nil)
	ctx := context.Background()

	t.Setenv(featureflags.EnvName(featureflags.SummaryCache), "")
	_, _ = svc.Summarize(ctx, "notes")
	_, _ = svc.Summarize(ctx, "notes")
	if stub.calls != 2 || len(cache.items) != 0 {
		t.Fatalf("cache must stay unused without the flag: calls=%d items=%d", stub.calls, len(cache.items))
	}

	t.Setenv(featureflags.EnvName(featureflags.SummaryCache), "true")
	_, _ = svc.Summarize(ctx, "notes")
	got, err := svc.Summarize(ctx, "notes")
	if err != nil || got != "- cached" {
		t.Fatalf("unexpected cached result %q err=%v", got, err)
	}
	if stub.calls != 3 {
		t.Fatalf("second flagged call should hit the cache, calls=%d", stub.calls)
	}

	cache.err = errBoom
	if _, err := svc.Summarize(ctx, "other notes"); err != nil {
		t.Fatalf("cache failures must not fail summarization: %v", err)
	}
}
