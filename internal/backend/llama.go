package backend

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"summaryd/internal/registry"
)

// llamaLoader loads a GGUF model into the process with go-llama.cpp.
type llamaLoader struct {
	name    string
	path    string
	ctxSize int
	threads int
	prompt  *Prompt
	log     zerolog.Logger
}

// NewLlamaLoader builds the in-process llama.cpp loader. The model file is
// resolved on every Load so a file dropped in after startup is picked up by
// the next attempt.
func NewLlamaLoader(cfg Config, prompt *Prompt, log zerolog.Logger) Loader {
	return &llamaLoader{
		name:    cfg.Name,
		path:    cfg.Path,
		ctxSize: cfg.ContextSize,
		threads: cfg.Threads,
		prompt:  prompt,
		log:     log,
	}
}

func (l *llamaLoader) Load(ctx context.Context) (Handle, error) {
	modelPath, err := registry.Resolve(l.path, l.name)
	if err != nil {
		return nil, err
	}
	l.log.Info().Str("model_path", modelPath).Int("ctx_size", l.ctxSize).Msg("loading llama model")
	m, err := openLlama(modelPath, l.ctxSize)
	if err != nil {
		return nil, err
	}
	return &llamaHandle{model: m, threads: l.threads, prompt: l.prompt}, nil
}

// llamaModel is the subset of a loaded llama.cpp model the handle drives.
type llamaModel interface {
	predict(prompt string, p Params, threads int) (string, error)
	free()
}

// llamaHandle serialises predictions: a llama.cpp context is not safe for
// concurrent use.
type llamaHandle struct {
	mu      sync.Mutex
	model   llamaModel
	threads int
	prompt  *Prompt
}

func (h *llamaHandle) Summarize(ctx context.Context, text string, p Params) ([]Generation, error) {
	prompt, err := h.prompt.Render(text, p)
	if err != nil {
		return nil, err
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.model == nil {
		return nil, ErrDependencyUnavailable("llama model not initialized")
	}
	out, err := h.model.predict(prompt, p, h.threads)
	if err != nil {
		return nil, err
	}
	if out == "" {
		return nil, nil
	}
	return []Generation{{SummaryText: out, FinishReason: "stop"}}, nil
}

func (h *llamaHandle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.model != nil {
		h.model.free()
		h.model = nil
	}
	return nil
}

// LlamaBuilt reports whether this binary was compiled with in-process llama.cpp support.
func LlamaBuilt() bool { return llamaBuilt }
