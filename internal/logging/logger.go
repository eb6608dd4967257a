// Package logging defines the structured-logging interface the rest of the
// code depends on, so the concrete backend stays swappable.
package logging

import "context"

// Logger is a leveled, context-aware logger. The trailing args are
// alternating key-value pairs:
//
//	log.Info(ctx, "server started", "addr", addr)
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger carrying the given key-value pairs
	// on every record.
	With(args ...any) Logger
}
