package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// llamaServerLoader talks to a running llama.cpp server over its
// OpenAI-compatible HTTP endpoints. Loading means the server answers.
type llamaServerLoader struct {
	baseURL    string
	apiKey     string
	model      string
	reqTimeout time.Duration
	httpClient *http.Client
	prompt     *Prompt
	log        zerolog.Logger
}

// NewLlamaServerLoader constructs a server-backed loader.
func NewLlamaServerLoader(cfg Config, prompt *Prompt, log zerolog.Logger) Loader {
	tr := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		MaxIdleConns:          100,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
	}
	model := cfg.RemoteModel
	if model == "" {
		model = cfg.Name
	}
	return &llamaServerLoader{
		baseURL: strings.TrimRight(cfg.ServerURL, "/"),
		apiKey:  cfg.APIKey,
		model:   model,
		// Timeout=0 on the client: per-call deadlines come from reqTimeout via context.
		reqTimeout: cfg.RequestTimeout,
		httpClient: &http.Client{Transport: tr},
		prompt:     prompt,
		log:        log,
	}
}

func (l *llamaServerLoader) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if l.reqTimeout > 0 {
		return context.WithTimeout(ctx, l.reqTimeout)
	}
	return context.WithCancel(ctx)
}

func (l *llamaServerLoader) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, l.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if l.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+l.apiKey)
	}
	return req, nil
}

// Load checks that the server responds on /v1/models.
func (l *llamaServerLoader) Load(ctx context.Context) (Handle, error) {
	if l.baseURL == "" {
		return nil, ErrDependencyUnavailable("llama server url not configured")
	}
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	req, err := l.newRequest(ctx, http.MethodGet, "/v1/models", nil)
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("llama server unreachable: %w", err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, errors.New("llama server not ready: " + resp.Status)
	}
	l.log.Info().Str("url", l.baseURL).Str("model", l.model).Msg("llama server reachable")
	return &llamaServerHandle{loader: l}, nil
}

// completionRequest is the payload for /v1/completions.
type completionRequest struct {
	Model  string `json:"model,omitempty"`
	Prompt string `json:"prompt"`
	// MaxTokens bounds the summary length.
	MaxTokens int `json:"max_tokens,omitempty"`
	// Temperature is always sent; 0 selects greedy decoding.
	Temperature float64 `json:"temperature"`
	TopK        int     `json:"top_k,omitempty"`
	Stream      bool    `json:"stream"`
	// RepeatPenalty is a llama.cpp extension; servers that do not know it ignore it.
	RepeatPenalty float64 `json:"repeat_penalty,omitempty"`
}

type completionResponse struct {
	Choices []struct {
		Text         string `json:"text"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
}

type llamaServerHandle struct {
	loader *llamaServerLoader
}

func (h *llamaServerHandle) Summarize(ctx context.Context, text string, p Params) ([]Generation, error) {
	l := h.loader
	prompt, err := l.prompt.Render(text, p)
	if err != nil {
		return nil, err
	}
	payload := completionRequest{
		Model:         l.model,
		Prompt:        prompt,
		MaxTokens:     p.MaxLength,
		Stream:        false,
		RepeatPenalty: p.RepetitionPenalty,
	}
	if p.DoSample {
		payload.Temperature = 0.8
	} else {
		payload.TopK = 1
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	ctx, cancel := l.withTimeout(ctx)
	defer cancel()
	req, err := l.newRequest(ctx, http.MethodPost, "/v1/completions", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	resp, err := l.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, errors.New("llama server http error: " + resp.Status + ": " + strings.TrimSpace(string(b)))
	}
	var out completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode completion: %w", err)
	}
	gens := make([]Generation, 0, len(out.Choices))
	for _, c := range out.Choices {
		gens = append(gens, Generation{SummaryText: strings.TrimSpace(c.Text), FinishReason: c.FinishReason})
	}
	return gens, nil
}

func (h *llamaServerHandle) Close() error {
	h.loader.httpClient.CloseIdleConnections()
	return nil
}
