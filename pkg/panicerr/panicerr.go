// Package panicerr converts panics in long-running goroutines into
// ordinary errors so a crashing background loop never takes the daemon
// down with it.
package panicerr

import (
	"context"
	"log/slog"

	"github.com/sourcegraph/conc/panics"
)

// Safe returns fn wrapped so that a panic inside it comes back as an
// error instead of unwinding the stack.
func Safe(fn func() error) func() error {
	return func() error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn()
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}

// SafeContext is Safe for context-taking functions.
func SafeContext(fn func(context.Context) error) func(context.Context) error {
	return func(ctx context.Context) error {
		var (
			catcher panics.Catcher
			err     error
		)
		catcher.Try(func() {
			err = fn(ctx)
		})
		if err != nil {
			return err
		}
		return catcher.Recovered().AsError()
	}
}

// LogRun executes fn with ctx, recovering panics and logging any failure
// under the given loop name. Context cancellation is a normal exit, not
// a failure.
func LogRun(ctx context.Context, name string, fn func(context.Context) error) {
	if err := SafeContext(fn)(ctx); err != nil && ctx.Err() == nil {
		slog.Error("background loop failed", "loop", name, "error", err)
	}
}
