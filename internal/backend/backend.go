// Package backend holds the model-loading collaborators the manager consumes.
// Each backend is a Loader that produces an opaque Handle mapping a document
// plus generation parameters to summary text. The manager never sees the
// backend's own error types, only the two outcomes of Load and Summarize.
//
// Backends:
//
//   - llama: in-process go-llama.cpp. Enabled with `-tags=llama`; without the
//     tag a stub fails every load with a dependency-unavailable error.
//   - llama-server: a running llama.cpp server spoken to over HTTP.
//   - openai: the OpenAI Responses API.
package backend

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Backend kinds accepted by New.
const (
	KindLlama       = "llama"
	KindLlamaServer = "llama-server"
	KindOpenAI      = "openai"
)

// Loader acquires the model. Load is expensive and is only ever called by the
// manager, one attempt at a time.
type Loader interface {
	Load(ctx context.Context) (Handle, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context) (Handle, error)

func (f LoaderFunc) Load(ctx context.Context) (Handle, error) { return f(ctx) }

// Handle is a loaded model.
type Handle interface {
	// Summarize generates summaries for text. An empty result with a nil error
	// means the model ran but produced nothing usable.
	Summarize(ctx context.Context, text string, p Params) ([]Generation, error)
	// Close releases the model.
	Close() error
}

// Params are the generation parameters passed to a Handle.
type Params struct {
	MinLength         int
	MaxLength         int
	NumBeams          int
	RepetitionPenalty float64
	// DoSample enables sampling. The service always sends false so decoding is
	// deterministic for identical inputs.
	DoSample bool
}

// Generation is one generated sequence.
type Generation struct {
	SummaryText  string
	FinishReason string
}

// Config selects and configures a backend.
type Config struct {
	Kind           string
	Name           string
	Path           string
	ContextSize    int
	Threads        int
	ServerURL      string
	APIKey         string
	RemoteModel    string
	RequestTimeout time.Duration
	PromptTemplate string
}

// New builds the Loader for cfg.Kind.
func New(cfg Config, log zerolog.Logger) (Loader, error) {
	prompt, err := NewPrompt(cfg.PromptTemplate)
	if err != nil {
		return nil, err
	}
	log = log.With().Str("backend", cfg.Kind).Logger()
	switch strings.ToLower(strings.TrimSpace(cfg.Kind)) {
	case KindLlama:
		return NewLlamaLoader(cfg, prompt, log), nil
	case KindLlamaServer:
		return NewLlamaServerLoader(cfg, prompt, log), nil
	case KindOpenAI:
		return NewOpenAILoader(cfg, prompt, log), nil
	default:
		return nil, fmt.Errorf("unknown backend %q (want %s, %s or %s)", cfg.Kind, KindLlama, KindLlamaServer, KindOpenAI)
	}
}
