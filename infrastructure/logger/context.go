package logger

import (
	"context"
	"fmt"
	"os"
	"sync"
)

type ctxKey struct{}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, ctxKey{}, l)
}

// FromContext returns the request-scoped logger stored by WithContext. When
// none is stored it returns a shared warn-level logger writing to stderr, so
// entries are never silently dropped.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(ctxKey{}).(Logger); ok {
		return l
	}
	return stderrLogger()
}

var (
	stderrOnce sync.Once
	stderrLog  Logger
)

func stderrLogger() Logger {
	stderrOnce.Do(func() {
		l, err := New(Config{Level: "warn", OutputPaths: []string{"stderr"}})
		if err != nil {
			fmt.Fprintf(os.Stderr, "logger: stderr fallback unavailable: %v\n", err)
			l = NewNop()
		}
		stderrLog = l
	})
	return stderrLog
}
