package manager

import (
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
	"golang.org/x/time/rate"

	"summaryd/internal/backend"
)

// Manager is the process-wide model resource. Construct one with New and pass
// it to whatever needs the model.
type Manager struct {
	mu       sync.RWMutex
	name     string
	state    State
	handle   backend.Handle
	lastErr  string
	attempts uint64
	loadedAt time.Time
	// closed is set by Close; no load starts or completes into ready after it.
	closed bool

	loader    backend.Loader
	group     singleflight.Group
	retry     *rate.Limiter
	log       zerolog.Logger
	publisher EventPublisher
}

// New constructs a Manager in the unloaded state. Nothing is loaded until
// EnsureLoaded, GetHandle or Warmup is called.
func New(cfg Config) *Manager {
	m := &Manager{
		name:      cfg.Name,
		state:     StateUnloaded,
		loader:    cfg.Loader,
		publisher: cfg.Publisher,
	}
	if m.name == "" {
		m.name = defaultName
	}
	if m.publisher == nil {
		m.publisher = noopPublisher{}
	}
	if cfg.Logger != nil {
		m.log = cfg.Logger.With().Str("component", "manager").Str("model", m.name).Logger()
	} else {
		m.log = zerolog.Nop()
	}
	if cfg.RetryInterval > 0 {
		m.retry = rate.NewLimiter(rate.Every(cfg.RetryInterval), 1)
	}
	setStateGauge(StateUnloaded)
	return m
}

// Name returns the model identifier.
func (m *Manager) Name() string { return m.name }

// Ready reports whether the model is loaded. It never triggers a load.
func (m *Manager) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state == StateReady && m.handle != nil
}

func (m *Manager) publish(e Event) {
	e.Model = m.name
	m.publisher.Publish(e)
}

// Close releases the model handle at shutdown and returns the resource to
// unloaded. A load still in flight releases its handle when it finishes.
func (m *Manager) Close() error {
	m.mu.Lock()
	m.closed = true
	h := m.handle
	m.handle = nil
	if m.state == StateReady {
		m.state = StateUnloaded
	}
	m.mu.Unlock()
	if h == nil {
		return nil
	}
	setStateGauge(StateUnloaded)
	m.log.Info().Msg("model released")
	return h.Close()
}
