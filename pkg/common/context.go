// Package common carries request-scoped values shared by the HTTP layer, the
// buses and the lambda entrypoints.
package common

import (
	"context"

	"go.uber.org/zap"
)

// ContextKey represents a context key type
type ContextKey string

// Context keys
const (
	ContextKeyUserID    ContextKey = "user_id"
	ContextKeyRequestID ContextKey = "request_id"
)

// WithUserID adds user ID to context
func WithUserID(ctx context.Context, userID string) context.Context {
	return context.WithValue(ctx, ContextKeyUserID, userID)
}

// GetUserID extracts user ID from context
func GetUserID(ctx context.Context) (string, bool) {
	userID, ok := ctx.Value(ContextKeyUserID).(string)
	return userID, ok && userID != ""
}

// WithRequestID adds request ID to context
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, ContextKeyRequestID, requestID)
}

// GetRequestID extracts request ID from context
func GetRequestID(ctx context.Context) (string, bool) {
	requestID, ok := ctx.Value(ContextKeyRequestID).(string)
	return requestID, ok && requestID != ""
}

// LogFields returns the zap fields for whatever request metadata ctx holds
func LogFields(ctx context.Context) []zap.Field {
	var fields []zap.Field
	if userID, ok := GetUserID(ctx); ok {
		fields = append(fields, zap.String("userID", userID))
	}
	if requestID, ok := GetRequestID(ctx); ok {
		fields = append(fields, zap.String("requestID", requestID))
	}
	return fields
}
