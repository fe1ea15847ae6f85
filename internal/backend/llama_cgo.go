//go:build llama

package backend

import (
	"strings"

	llama "github.com/go-skynet/go-llama.cpp"
)

// cgo link directives for the in-process llama adapter.
// - rpath of $ORIGIN so libllama.so and libggml*.so are found next to the binary (./bin).
// - -L${SRCDIR}/../../bin so the linker finds libllama.so when building with -tags=llama.
/*
#cgo LDFLAGS: -Wl,-rpath,'$ORIGIN' -L${SRCDIR}/../../bin -lllama
*/
import "C"

// llamaBuilt indicates this binary was compiled with real llama support.
const llamaBuilt = true

type cgoLlama struct {
	m *llama.LLama
}

func openLlama(modelPath string, ctxSize int) (llamaModel, error) {
	opts := []llama.ModelOption{}
	if ctxSize > 0 {
		opts = append(opts, llama.SetContext(ctxSize))
	}
	m, err := llama.New(modelPath, opts...)
	if err != nil {
		return nil, err
	}
	return &cgoLlama{m: m}, nil
}

func (c *cgoLlama) predict(prompt string, p Params, threads int) (string, error) {
	out, err := c.m.Predict(prompt, predictOptions(p, threads)...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func (c *cgoLlama) free() { c.m.Free() }

// predictOptions maps generation params onto go-llama.cpp options. llama.cpp has
// no beam search here; without sampling decoding is greedy (top-k 1, temperature 0).
func predictOptions(p Params, threads int) []llama.PredictOption {
	po := []llama.PredictOption{
		llama.SetTokens(max(1, p.MaxLength)),
		llama.SetThreads(max(1, threads)),
		llama.SetPenalty(float32(p.RepetitionPenalty)),
	}
	if p.DoSample {
		po = append(po,
			llama.SetTopK(llama.DefaultOptions.TopK),
			llama.SetTopP(llama.DefaultOptions.TopP),
			llama.SetTemperature(llama.DefaultOptions.Temperature),
		)
	} else {
		po = append(po, llama.SetTopK(1), llama.SetTemperature(0))
	}
	return po
}
