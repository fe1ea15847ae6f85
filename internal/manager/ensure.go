package manager

import (
	"context"
	"time"

	"github.com/google/uuid"

	"summaryd/internal/backend"
)

const loadKey = "load"

// EnsureLoaded loads the model unless it is already ready. Concurrent callers
// share one in-flight attempt and return once it has finished. A failed load
// is logged and leaves the resource in load_failed; it is not returned.
//
// The attempt runs detached from ctx's cancellation so a caller going away
// cannot abort a load other callers are waiting on.
func (m *Manager) EnsureLoaded(ctx context.Context) {
	if m.Ready() {
		return
	}
	_, _, _ = m.group.Do(loadKey, func() (any, error) {
		m.load(context.WithoutCancel(ctx))
		return nil, nil
	})
}

// GetHandle ensures the model is loaded and returns it, or nil when the model
// is not ready.
func (m *Manager) GetHandle(ctx context.Context) backend.Handle {
	m.EnsureLoaded(ctx)
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.state != StateReady {
		return nil
	}
	return m.handle
}

// Warmup starts a background load and returns immediately.
func (m *Manager) Warmup() {
	go m.EnsureLoaded(context.Background())
}

// load runs one attempt of the state machine. Callers are serialised by the
// singleflight group, so at most one load runs at a time.
func (m *Manager) load(ctx context.Context) {
	m.mu.Lock()
	if m.state == StateReady || m.closed {
		m.mu.Unlock()
		return
	}
	// The limiter is consulted on every attempt so the first one spends the
	// token and a retry has to wait a full interval.
	allowed := m.retry == nil || m.retry.Allow()
	if m.state == StateLoadFailed && !allowed {
		lastErr := m.lastErr
		m.mu.Unlock()
		loadAttemptsTotal.WithLabelValues("throttled").Inc()
		m.log.Debug().Str("last_error", lastErr).Msg("load retry throttled")
		m.publish(Event{Name: "load_throttled", Fields: map[string]any{"last_error": lastErr}})
		return
	}
	attempt := uuid.NewString()
	m.state = StateLoading
	m.attempts++
	m.mu.Unlock()
	setStateGauge(StateLoading)

	m.log.Info().Str("attempt", attempt).Msg("model load started")
	m.publish(Event{Name: "load_start", AttemptID: attempt})

	start := time.Now()
	h, err := m.callLoader(ctx)
	dur := time.Since(start)
	loadDuration.Observe(dur.Seconds())
	if err == nil && h == nil {
		err = errNoHandle
	}

	m.mu.Lock()
	if m.closed {
		m.state = StateUnloaded
		m.mu.Unlock()
		setStateGauge(StateUnloaded)
		if err == nil {
			if cerr := h.Close(); cerr != nil {
				m.log.Error().Err(cerr).Msg("release model loaded after close")
			}
		}
		m.log.Info().Str("attempt", attempt).Msg("load finished after close; model released")
		return
	}
	if err != nil {
		m.state = StateLoadFailed
		m.handle = nil
		m.lastErr = err.Error()
	} else {
		m.state = StateReady
		m.handle = h
		m.lastErr = ""
		m.loadedAt = time.Now()
	}
	m.mu.Unlock()

	if err != nil {
		setStateGauge(StateLoadFailed)
		loadAttemptsTotal.WithLabelValues("failure").Inc()
		m.log.Error().Str("severity", "critical").Str("attempt", attempt).Dur("dur", dur).Bool("panic", IsLoadPanic(err)).Err(err).Msg("model failed to load")
		m.publish(Event{Name: "load_failed", AttemptID: attempt, Fields: map[string]any{"error": err.Error()}})
		return
	}
	setStateGauge(StateReady)
	loadAttemptsTotal.WithLabelValues("success").Inc()
	m.log.Info().Str("attempt", attempt).Dur("dur", dur).Msg("model loaded")
	m.publish(Event{Name: "load_ready", AttemptID: attempt, Fields: map[string]any{"dur_ms": int(dur / time.Millisecond)}})
}

// callLoader invokes the loader, converting a panic into an error.
func (m *Manager) callLoader(ctx context.Context) (h backend.Handle, err error) {
	defer func() {
		if r := recover(); r != nil {
			h, err = nil, loadPanicError{v: r}
		}
	}()
	if m.loader == nil {
		return nil, backend.ErrDependencyUnavailable("no model loader configured")
	}
	return m.loader.Load(ctx)
}
