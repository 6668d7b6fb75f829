package audit

import (
	"context"
	"log/slog"
	"time"
)

type requestIDKey struct{}

// WithRequestID stores the request ID for audit records.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestID returns the request ID stored in ctx, if any.
func RequestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok {
		return id
	}
	return ""
}

type Logger struct {
	logger *slog.Logger
	now    func() time.Time
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger, now: time.Now}
}

func (al *Logger) LogAction(ctx context.Context, memberID int64, action, resource string, resourceID int64, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.Int64("resource_id", resourceID),
		slog.Int64("member_id", memberID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", RequestID(ctx)),
		slog.Time("timestamp", al.now()),
	)
}

// LogLogin records a login attempt. The password is never passed here.
func (al *Logger) LogLogin(ctx context.Context, memberID int64, status string) {
	al.LogAction(ctx, memberID, "login", "session", 0, status, "")
}

// LogRecord records a meeting record mutation.
func (al *Logger) LogRecord(ctx context.Context, memberID int64, action string, recordID int64, status string) {
	al.LogAction(ctx, memberID, action, "meeting_record", recordID, status, "")
}

func (al *Logger) LogDenied(ctx context.Context, memberID int64, reason string) {
	al.LogAction(ctx, memberID, "access_denied", "api", 0, "denied", reason)
}
