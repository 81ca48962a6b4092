package services

import "context"

type contextKey string

const (
	runIDKey     contextKey = "run_id"
	entryKey     contextKey = "entry"
	operationKey contextKey = "operation"
)

// WithRunID annotates context with the batch or upload run identifier.
func WithRunID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, runIDKey, id)
}

// RunIDFromContext extracts the run identifier if present.
func RunIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(runIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithEntry annotates context with the 1-based entry sequence number.
func WithEntry(ctx context.Context, sequence int) context.Context {
	return context.WithValue(ctx, entryKey, sequence)
}

// EntryFromContext extracts the entry sequence number if present.
func EntryFromContext(ctx context.Context) (int, bool) {
	v := ctx.Value(entryKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int:
		return val, true
	case int64:
		return int(val), true
	default:
		return 0, false
	}
}

// WithOperation annotates context with the operation name (inject, extract, upload).
func WithOperation(ctx context.Context, operation string) context.Context {
	if operation == "" {
		return ctx
	}
	return context.WithValue(ctx, operationKey, operation)
}

// OperationFromContext returns the operation name if present.
func OperationFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(operationKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
