package backend

import (
	"context"
	"fmt"
	"strings"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"github.com/openai/openai-go/v3/responses"
	"github.com/openai/openai-go/v3/shared"
	"github.com/rs/zerolog"
)

// openAILoader summarizes through the OpenAI Responses API.
type openAILoader struct {
	cfg    Config
	model  string
	prompt *Prompt
	log    zerolog.Logger
}

// NewOpenAILoader builds a loader for the OpenAI backend. cfg.ServerURL, when
// set, points the client at an OpenAI-compatible endpoint.
func NewOpenAILoader(cfg Config, prompt *Prompt, log zerolog.Logger) Loader {
	model := cfg.RemoteModel
	if model == "" {
		model = cfg.Name
	}
	return &openAILoader{cfg: cfg, model: model, prompt: prompt, log: log}
}

// Load builds the client and checks the configured model exists.
func (l *openAILoader) Load(ctx context.Context) (Handle, error) {
	if strings.TrimSpace(l.cfg.APIKey) == "" {
		return nil, ErrDependencyUnavailable("openai api key not configured")
	}
	opts := []option.RequestOption{option.WithAPIKey(l.cfg.APIKey)}
	if l.cfg.ServerURL != "" {
		opts = append(opts, option.WithBaseURL(l.cfg.ServerURL))
	}
	if l.cfg.RequestTimeout > 0 {
		opts = append(opts, option.WithRequestTimeout(l.cfg.RequestTimeout))
	}
	client := openai.NewClient(opts...)
	if _, err := client.Models.Get(ctx, l.model); err != nil {
		return nil, fmt.Errorf("get model %s: %w", l.model, err)
	}
	l.log.Info().Str("model", l.model).Msg("openai model available")
	return &openAIHandle{client: client, model: l.model, prompt: l.prompt}, nil
}

type openAIHandle struct {
	client openai.Client
	model  string
	prompt *Prompt
}

func (h *openAIHandle) Summarize(ctx context.Context, text string, p Params) ([]Generation, error) {
	input, err := h.prompt.Render(text, p)
	if err != nil {
		return nil, err
	}
	params := responses.ResponseNewParams{
		Model:           shared.ResponsesModel(h.model),
		MaxOutputTokens: openai.Int(int64(p.MaxLength)),
		Input: responses.ResponseNewParamsInputUnion{
			OfString: openai.String(input),
		},
	}
	if !p.DoSample {
		params.Temperature = openai.Float(0)
	}
	resp, err := h.client.Responses.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("do request: %w", err)
	}
	if resp.Status == "incomplete" && resp.IncompleteDetails.Reason != "max_output_tokens" {
		return nil, fmt.Errorf("response is incomplete (reason = %s)", resp.IncompleteDetails.Reason)
	}
	summary := strings.TrimSpace(resp.OutputText())
	if summary == "" {
		return nil, nil
	}
	return []Generation{{SummaryText: summary, FinishReason: string(resp.Status)}}, nil
}

func (h *openAIHandle) Close() error { return nil }
