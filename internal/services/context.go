package services

import "context"

type contextKey string

const (
	sessionIDKey contextKey = "session_id"
	envelopeKey  contextKey = "envelope"
	categoryKey  contextKey = "category"
)

// WithSessionID annotates context with the open-envelope transaction identifier.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext extracts the transaction identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithEnvelope annotates context with the envelope slot being opened.
func WithEnvelope(ctx context.Context, slot string) context.Context {
	if slot == "" {
		return ctx
	}
	return context.WithValue(ctx, envelopeKey, slot)
}

// EnvelopeFromContext returns the envelope slot if present.
func EnvelopeFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(envelopeKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}

// WithCategory annotates context with the card category being processed.
func WithCategory(ctx context.Context, category string) context.Context {
	if category == "" {
		return ctx
	}
	return context.WithValue(ctx, categoryKey, category)
}

// CategoryFromContext returns the card category if present.
func CategoryFromContext(ctx context.Context) (string, bool) {
	v := ctx.Value(categoryKey)
	if str, ok := v.(string); ok && str != "" {
		return str, true
	}
	return "", false
}
