package manager

// Snapshot returns a read-only view of the resource. It never blocks on a
// load and never triggers one.
func (m *Manager) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return Snapshot{
		Name:         m.name,
		State:        m.state,
		LastError:    m.lastErr,
		LoadAttempts: m.attempts,
		LoadedAt:     m.loadedAt,
	}
}
