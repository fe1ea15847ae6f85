package manager

// Event represents a model lifecycle event.
// Minimal and stable: name, model and attempt id plus optional fields.
type Event struct {
	Name      string
	Model     string
	AttemptID string
	Fields    map[string]any
}

// EventPublisher receives events from the manager. Implementations should be
// lightweight and non-blocking; Publish must not panic.
type EventPublisher interface {
	Publish(Event)
}

// noopPublisher is the default; it drops events.
type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
