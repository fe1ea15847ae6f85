package backend

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_SelectsBackend(t *testing.T) {
	for _, kind := range []string{KindLlama, KindLlamaServer, KindOpenAI, " LLAMA "} {
		l, err := New(Config{Kind: kind}, zerolog.Nop())
		require.NoError(t, err, kind)
		assert.NotNil(t, l, kind)
	}
	_, err := New(Config{Kind: "bart"}, zerolog.Nop())
	assert.ErrorContains(t, err, "unknown backend")

	_, err = New(Config{Kind: KindLlama, PromptTemplate: "{{#unclosed}}"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestPrompt_RenderDefault(t *testing.T) {
	p, err := NewPrompt("")
	require.NoError(t, err)
	out, err := p.Render("Tom & Jerry <3", Params{MinLength: 10, MaxLength: 40})
	require.NoError(t, err)
	assert.Contains(t, out, "10 to 40 tokens")
	assert.Contains(t, out, "Tom & Jerry <3", "document text must not be HTML-escaped")
}

func TestPrompt_Custom(t *testing.T) {
	p, err := NewPrompt("beams={{num_beams}} {{{text}}}")
	require.NoError(t, err)
	out, err := p.Render("doc", Params{NumBeams: 4})
	require.NoError(t, err)
	assert.Equal(t, "beams=4 doc", out)
}

type fakeLlama struct {
	out    string
	err    error
	got    Params
	freed  bool
	prompt string
}

func (f *fakeLlama) predict(prompt string, p Params, threads int) (string, error) {
	f.prompt, f.got = prompt, p
	return f.out, f.err
}

func (f *fakeLlama) free() { f.freed = true }

func TestLlamaHandle_Summarize(t *testing.T) {
	prompt, _ := NewPrompt("")
	fm := &fakeLlama{out: "short summary"}
	h := &llamaHandle{model: fm, prompt: prompt}

	gens, err := h.Summarize(context.Background(), "a long document", Params{MaxLength: 20, RepetitionPenalty: 2.5})
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, "short summary", gens[0].SummaryText)
	assert.False(t, fm.got.DoSample)
	assert.Contains(t, fm.prompt, "a long document")

	fm.out = ""
	gens, err = h.Summarize(context.Background(), "x", Params{})
	require.NoError(t, err)
	assert.Empty(t, gens)

	fm.err = errors.New("ggml assert")
	_, err = h.Summarize(context.Background(), "x", Params{})
	assert.EqualError(t, err, "ggml assert")

	require.NoError(t, h.Close())
	assert.True(t, fm.freed)
	_, err = h.Summarize(context.Background(), "x", Params{})
	assert.True(t, IsDependencyUnavailable(err))
}

func TestLlamaLoader_MissingModelFile(t *testing.T) {
	l := NewLlamaLoader(Config{Path: filepath.Join(t.TempDir(), "none.gguf")}, nil, zerolog.Nop())
	_, err := l.Load(context.Background())
	assert.Error(t, err)
}

func TestLlamaLoader_StubWithoutTag(t *testing.T) {
	if LlamaBuilt() {
		t.Skip("built with llama support")
	}
	p := filepath.Join(t.TempDir(), "m.gguf")
	require.NoError(t, os.WriteFile(p, nil, 0o644))
	_, err := NewLlamaLoader(Config{Path: p}, nil, zerolog.Nop()).Load(context.Background())
	assert.True(t, IsDependencyUnavailable(err), "got %v", err)
}

func newFakeLlamaServer(t *testing.T, modelsStatus int, handle func(completionRequest) (int, any)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/v1/models":
			w.WriteHeader(modelsStatus)
			_, _ = w.Write([]byte(`{"data":[]}`))
		case "/v1/completions":
			var req completionRequest
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			code, body := handle(req)
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(code)
			_ = json.NewEncoder(w).Encode(body)
		default:
			http.NotFound(w, r)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestLlamaServer_LoadAndSummarize(t *testing.T) {
	var got completionRequest
	srv := newFakeLlamaServer(t, http.StatusOK, func(req completionRequest) (int, any) {
		got = req
		return http.StatusOK, map[string]any{"choices": []map[string]any{{"text": "  the gist  ", "finish_reason": "stop"}}}
	})
	prompt, _ := NewPrompt("")
	l := NewLlamaServerLoader(Config{ServerURL: srv.URL + "/", Name: "bart"}, prompt, zerolog.Nop())
	h, err := l.Load(context.Background())
	require.NoError(t, err)
	defer h.Close()

	gens, err := h.Summarize(context.Background(), strings.Repeat("a", 200), Params{MinLength: 5, MaxLength: 60, NumBeams: 4, RepetitionPenalty: 2.5})
	require.NoError(t, err)
	require.Len(t, gens, 1)
	assert.Equal(t, "the gist", gens[0].SummaryText)
	assert.Equal(t, "bart", got.Model)
	assert.Equal(t, 60, got.MaxTokens)
	assert.Equal(t, 0.0, got.Temperature)
	assert.Equal(t, 1, got.TopK)
	assert.Equal(t, 2.5, got.RepeatPenalty)
	assert.False(t, got.Stream)
}

func TestLlamaServer_LoadFailsWhenNotReady(t *testing.T) {
	srv := newFakeLlamaServer(t, http.StatusServiceUnavailable, nil)
	prompt, _ := NewPrompt("")
	_, err := NewLlamaServerLoader(Config{ServerURL: srv.URL}, prompt, zerolog.Nop()).Load(context.Background())
	assert.ErrorContains(t, err, "not ready")

	_, err = NewLlamaServerLoader(Config{}, prompt, zerolog.Nop()).Load(context.Background())
	assert.True(t, IsDependencyUnavailable(err))
}

func TestLlamaServer_SummarizeHTTPError(t *testing.T) {
	srv := newFakeLlamaServer(t, http.StatusOK, func(completionRequest) (int, any) {
		return http.StatusInternalServerError, map[string]string{"error": "kv cache full"}
	})
	prompt, _ := NewPrompt("")
	h, err := NewLlamaServerLoader(Config{ServerURL: srv.URL}, prompt, zerolog.Nop()).Load(context.Background())
	require.NoError(t, err)
	_, err = h.Summarize(context.Background(), "doc", Params{MaxLength: 10})
	assert.ErrorContains(t, err, "kv cache full")
}

func TestOpenAI_LoadWithoutKey(t *testing.T) {
	prompt, _ := NewPrompt("")
	_, err := NewOpenAILoader(Config{Name: "gpt-4o-mini"}, prompt, zerolog.Nop()).Load(context.Background())
	assert.True(t, IsDependencyUnavailable(err))
}
