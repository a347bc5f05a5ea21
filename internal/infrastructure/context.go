package infrastructure

import (
	"context"
	"log/slog"

	"github.com/google/uuid"
)

// contextKey is a type for context keys
type contextKey string

// RequestIDContextKey is the key for storing the request id in context
const RequestIDContextKey contextKey = "request_id"

// GenerateRequestID creates a new unique request id using UUID v4
func GenerateRequestID() string {
	return uuid.New().String()
}

// WithRequestID adds a request id to the context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, RequestIDContextKey, requestID)
}

// GetRequestID retrieves the request id from context
func GetRequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if id, ok := ctx.Value(RequestIDContextKey).(string); ok {
		return id
	}
	return ""
}

// EnsureRequestID ensures the context has a request id, generating one if needed
func EnsureRequestID(ctx context.Context) context.Context {
	if GetRequestID(ctx) == "" {
		return WithRequestID(ctx, GenerateRequestID())
	}
	return ctx
}

// WithComponent creates a logger with a component field
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	if logger == nil {
		logger = GetLogger()
	}
	return logger.With(slog.String("component", component))
}

// WithError creates a logger with an error field
func WithError(logger *slog.Logger, err error) *slog.Logger {
	if err == nil {
		return logger
	}
	return logger.With(slog.String("error", err.Error()))
}
