package manager

import "time"

// State represents the lifecycle state of the model resource.
type State string

const (
	StateUnloaded   State = "unloaded"
	StateLoading    State = "loading"
	StateReady      State = "ready"
	StateLoadFailed State = "load_failed"
)

var allStates = []State{StateUnloaded, StateLoading, StateReady, StateLoadFailed}

// Label is the human-readable status shown by the status endpoint.
func (s State) Label() string {
	switch s {
	case StateUnloaded:
		return "Awaiting first request"
	case StateLoading:
		return "Loading"
	case StateReady:
		return "Loaded"
	case StateLoadFailed:
		return "Load failed"
	default:
		return string(s)
	}
}

// Snapshot is a read-only projection of the manager state.
type Snapshot struct {
	Name         string
	State        State
	LastError    string
	LoadAttempts uint64
	LoadedAt     time.Time
}

// Ready reports whether inference may proceed.
func (s Snapshot) Ready() bool { return s.State == StateReady }
