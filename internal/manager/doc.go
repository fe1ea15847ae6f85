// Package manager owns the lifecycle of the process's single model resource.
// It is structured into small files by concern:
//
//   - manager.go: core Manager type, constructor, simple getters.
//   - config.go: Config and package defaults; New applies defaults.
//   - types.go: lifecycle State and the read-only Snapshot.
//   - ensure.go: EnsureLoaded/GetHandle/Warmup and the load state machine.
//   - status_report.go: Snapshot reporting.
//   - events.go, eventpub_memory.go: lifecycle events and an in-memory publisher for tests.
//   - metrics.go: Prometheus collectors for state and load attempts.
//
// State machine:
//
//	unloaded    --EnsureLoaded, load ok-->    ready
//	unloaded    --EnsureLoaded, load fails--> load_failed
//	load_failed --EnsureLoaded, retried-->    ready | load_failed
//	ready       --EnsureLoaded-->             ready (no-op)
//
// Loads are lazy: nothing is loaded until the first request needs the model
// (or Warmup is called), so the process answers liveness probes while the
// model is still on disk. The first request pays the load latency.
//
// At most one load attempt is in flight at any time. Concurrent callers of
// EnsureLoaded share the attempt in progress and observe its outcome. Load
// failures are absorbed: they are logged and recorded, and callers only see
// the resource staying unready.
package manager
