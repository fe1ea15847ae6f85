package manager

import (
	"time"

	"github.com/rs/zerolog"

	"summaryd/internal/backend"
)

// Defaults applied when corresponding Config fields are unset.
const (
	defaultName = "summarizer"
)

// Config encapsulates all tunables for Manager construction.
type Config struct {
	// Name is the immutable model identifier reported by Status.
	Name   string
	Loader backend.Loader
	// RetryInterval is the minimum time between load attempts after a failure.
	// Zero retries on every request.
	RetryInterval time.Duration
	Logger        *zerolog.Logger
	Publisher     EventPublisher
}
