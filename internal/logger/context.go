package logger

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

type (
	ctxKey   struct{}
	eventKey struct{}
)

// event collects attributes for the canonical request log line.
type event struct {
	mu     sync.Mutex
	fields []zap.Field
}

// ContextWithLogger stores a logger in the context.
func ContextWithLogger(ctx context.Context, logger *zap.Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, logger)
}

// FromContext extracts a logger from the context.
// Returns zap.NewNop() if no logger is found.
func FromContext(ctx context.Context) *zap.Logger {
	if l, ok := ctx.Value(ctxKey{}).(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// WithEvent starts collecting wide-event attributes for a request.
func WithEvent(ctx context.Context) context.Context {
	return context.WithValue(ctx, eventKey{}, &event{})
}

// AddFields attaches attributes to the request's canonical log line.
// Without an event in ctx it does nothing.
func AddFields(ctx context.Context, fields ...zap.Field) {
	ev, ok := ctx.Value(eventKey{}).(*event)
	if !ok {
		return
	}
	ev.mu.Lock()
	ev.fields = append(ev.fields, fields...)
	ev.mu.Unlock()
}

// EventFields returns the attributes collected so far.
func EventFields(ctx context.Context) []zap.Field {
	ev, ok := ctx.Value(eventKey{}).(*event)
	if !ok {
		return nil
	}
	ev.mu.Lock()
	defer ev.mu.Unlock()
	return append([]zap.Field(nil), ev.fields...)
}
