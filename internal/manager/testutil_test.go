package manager

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"summaryd/internal/backend"
)

// fakeHandle is an in-memory model handle.
type fakeHandle struct{ closed atomic.Bool }

func (h *fakeHandle) Summarize(ctx context.Context, text string, p backend.Params) ([]backend.Generation, error) {
	return []backend.Generation{{SummaryText: "ok"}}, nil
}

func (h *fakeHandle) Close() error { h.closed.Store(true); return nil }

// countingLoader counts Load calls and delegates to fn (success when nil).
type countingLoader struct {
	calls atomic.Int32
	fn    func(ctx context.Context, call int32) (backend.Handle, error)
}

func (l *countingLoader) Load(ctx context.Context) (backend.Handle, error) {
	n := l.calls.Add(1)
	if l.fn == nil {
		return &fakeHandle{}, nil
	}
	return l.fn(ctx, n)
}

// waitFor polls cond until it holds or the deadline passes.
func waitFor(t *testing.T, d time.Duration, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(d)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met within %s", d)
		}
		time.Sleep(2 * time.Millisecond)
	}
}
