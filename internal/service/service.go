// Package service implements the summarization request path: the readiness
// gate in front of the model, the inference call and its error translation,
// and the status projection.
package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"summaryd/internal/backend"
	"summaryd/internal/manager"
	"summaryd/internal/tokens"
	"summaryd/pkg/types"
)

// GenerationFailed is returned as the summary when the model ran but produced
// no usable text.
const GenerationFailed = "Generation failed."

// Resource is the model resource the service gates on. *manager.Manager
// satisfies it.
type Resource interface {
	GetHandle(ctx context.Context) backend.Handle
	Snapshot() manager.Snapshot
}

// Config tunes the request path.
type Config struct {
	// MaxInputTokens truncates documents to the model's input window. Zero
	// disables truncation.
	MaxInputTokens int
	// Tokens measures input size; nil disables counting and truncation.
	Tokens *tokens.Counter
	Logger *zerolog.Logger
}

// Service serves summarization and status requests.
type Service struct {
	res            Resource
	tokens         *tokens.Counter
	maxInputTokens int
	log            zerolog.Logger
}

// New builds a Service on top of res.
func New(res Resource, cfg Config) *Service {
	s := &Service{res: res, tokens: cfg.Tokens, maxInputTokens: cfg.MaxInputTokens, log: zerolog.Nop()}
	if cfg.Logger != nil {
		s.log = cfg.Logger.With().Str("component", "service").Logger()
	}
	return s
}

// Summarize gates on model readiness and runs inference. It returns
// ErrNotReady when the model is not loaded (no inference is attempted) and an
// inference failure when the model call fails.
func (s *Service) Summarize(ctx context.Context, req types.SummarizeRequest) (types.SummarizeResponse, error) {
	h := s.res.GetHandle(ctx)
	if h == nil {
		inferenceTotal.WithLabelValues("not_ready").Inc()
		s.log.Warn().Msg("summarization request received, but model is not yet loaded")
		return types.SummarizeResponse{}, ErrNotReady
	}
	summary, err := s.execute(ctx, h, req)
	if err != nil {
		return types.SummarizeResponse{}, err
	}
	return types.SummarizeResponse{Summary: summary}, nil
}

// execute invokes the handle with deterministic decoding and converts every
// failure of the call into an inference error.
func (s *Service) execute(ctx context.Context, h backend.Handle, req types.SummarizeRequest) (string, error) {
	text := s.prepare(req.Text)
	params := backend.Params{
		MinLength:         req.MinLength,
		MaxLength:         req.MaxLength,
		NumBeams:          req.NumBeams,
		RepetitionPenalty: req.RepetitionPenalty,
		DoSample:          false,
	}
	s.log.Info().Int("max_length", params.MaxLength).Int("num_beams", params.NumBeams).Msg("generating summary")

	start := time.Now()
	gens, err := invoke(ctx, h, text, params)
	inferenceDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		inferenceTotal.WithLabelValues("failure").Inc()
		s.log.Error().Err(err).Msg("inference error during summarization")
		return "", inferenceError{cause: err}
	}
	if len(gens) == 0 || strings.TrimSpace(gens[0].SummaryText) == "" {
		inferenceTotal.WithLabelValues("empty").Inc()
		s.log.Warn().Msg("model returned no summary text")
		return GenerationFailed, nil
	}
	inferenceTotal.WithLabelValues("ok").Inc()
	s.log.Info().Dur("dur", time.Since(start)).Str("finish_reason", gens[0].FinishReason).Msg("summary generation successful")
	return gens[0].SummaryText, nil
}

// prepare measures the document and truncates it to the input window.
func (s *Service) prepare(text string) string {
	if s.tokens == nil {
		return text
	}
	out, n, err := s.tokens.Truncate(text, s.maxInputTokens)
	if err != nil {
		s.log.Warn().Err(err).Msg("tokenize input failed; sending text unchanged")
		return text
	}
	inputTokens.Observe(float64(n))
	if s.maxInputTokens > 0 && n > s.maxInputTokens {
		s.log.Info().Int("input_tokens", n).Int("max_input_tokens", s.maxInputTokens).Msg("input truncated")
	}
	return out
}

// invoke calls the handle, converting a panic into an error.
func invoke(ctx context.Context, h backend.Handle, text string, p backend.Params) (gens []backend.Generation, err error) {
	defer func() {
		if r := recover(); r != nil {
			gens, err = nil, fmt.Errorf("model panic: %v", r)
		}
	}()
	return h.Summarize(ctx, text, p)
}

// Status projects the resource snapshot into the status payload.
func (s *Service) Status() types.ModelStatus {
	snap := s.res.Snapshot()
	return types.ModelStatus{
		ModelName:    snap.Name,
		Status:       snap.State.Label(),
		IsReady:      snap.Ready(),
		State:        string(snap.State),
		LastError:    snap.LastError,
		LoadAttempts: snap.LoadAttempts,
	}
}

// Ready reports readiness without triggering a load.
func (s *Service) Ready() bool { return s.res.Snapshot().Ready() }
