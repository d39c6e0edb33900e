package audit

import (
	"context"
	"log/slog"
	"time"
)

type ctxKey struct{}

// WithRequestID stores the request id for later audit records
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

// RequestID returns the request id stored in ctx, if any
func RequestID(ctx context.Context) string {
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

type Logger struct {
	logger *slog.Logger
}

func NewLogger(logger *slog.Logger) *Logger {
	if logger == nil {
		logger = slog.Default()
	}
	return &Logger{logger: logger}
}

func (al *Logger) LogAction(ctx context.Context, organization, userID, action, resource, resourceID, status, details string) {
	al.logger.Info("audit",
		slog.String("action", action),
		slog.String("resource", resource),
		slog.String("resource_id", resourceID),
		slog.String("organization", organization),
		slog.String("user_id", userID),
		slog.String("status", status),
		slog.String("details", details),
		slog.String("request_id", RequestID(ctx)),
		slog.Time("timestamp", time.Now()),
	)
}

func (al *Logger) LogMemberChange(ctx context.Context, organization, userID, action, memberID, status, details string) {
	al.LogAction(ctx, organization, userID, action, "member", memberID, status, details)
}

func (al *Logger) LogPlanChange(ctx context.Context, organization, userID, plan, status string) {
	al.LogAction(ctx, organization, userID, "change_plan", "user", userID, status, plan)
}

func (al *Logger) LogDenied(ctx context.Context, organization, userID, reason string) {
	al.LogAction(ctx, organization, userID, "access_denied", "api", "", "denied", reason)
}
