//go:build !llama

package backend

// No-CGO stub, compiled when the 'llama' build tag is NOT set. Loads fail so the
// manager reports the model as not ready instead of serving mocked output.

const llamaBuilt = false

func openLlama(modelPath string, ctxSize int) (llamaModel, error) {
	return nil, ErrDependencyUnavailable("llama support not built (missing 'llama' build tag)")
}
