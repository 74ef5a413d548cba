package logging

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is the key type used to store the logger in a context.
// Using a custom type prevents collisions.
type contextKey string

const loggerKey = contextKey("logger")

// WithRequestLogger returns a context carrying a logger enriched with a fresh
// request ID and the identifying fields of the operation. The orchestration
// layer calls this once per request so every downstream log line is correlated.
func WithRequestLogger(ctx context.Context, base *slog.Logger, operation, tenantID, principalID string) context.Context {
	requestLogger := base.With(
		slog.String("request_id", uuid.NewString()),
		slog.String("operation", operation),
		slog.String("tenant_id", tenantID),
		slog.String("principal_id", principalID),
	)
	return context.WithValue(ctx, loggerKey, requestLogger)
}

// FromContext retrieves the request-scoped logger from the context.
// It returns the default logger if none is found.
func FromContext(ctx context.Context) *slog.Logger {
	logger, ok := ctx.Value(loggerKey).(*slog.Logger)
	if !ok {
		return slog.Default()
	}
	return logger
}
