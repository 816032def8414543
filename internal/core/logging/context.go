package logging

import "context"

type contextKey string

const (
	batchIDKey contextKey = "batch_id"
	intentKey  contextKey = "intent"
)

// WithBatchID adds an intent batch ID to the context.
func WithBatchID(ctx context.Context, batchID string) context.Context {
	return context.WithValue(ctx, batchIDKey, batchID)
}

// WithIntent adds the intent kind currently being processed to the context.
func WithIntent(ctx context.Context, kind string) context.Context {
	return context.WithValue(ctx, intentKey, kind)
}

// GetBatchID retrieves the intent batch ID from the context.
// Returns empty string if not present.
func GetBatchID(ctx context.Context) string {
	if id, ok := ctx.Value(batchIDKey).(string); ok {
		return id
	}
	return ""
}

// GetIntent retrieves the intent kind from the context.
// Returns empty string if not present.
func GetIntent(ctx context.Context) string {
	if kind, ok := ctx.Value(intentKey).(string); ok {
		return kind
	}
	return ""
}
