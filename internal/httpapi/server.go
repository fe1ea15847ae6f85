package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"summaryd/pkg/types"
)

// HealthModelStatus is the fixed model_status reported by /health. Liveness
// never consults the model.
const HealthModelStatus = "Loading (Awaiting first request)"

// Service defines the methods required by the HTTP API layer.
type Service interface {
	Summarize(ctx context.Context, req types.SummarizeRequest) (types.SummarizeResponse, error)
	Status() types.ModelStatus
	Ready() bool
}

func NewMux(svc Service) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(MetricsMiddleware)
	r.Use(middleware.Compress(5))
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			next.ServeHTTP(w, r)
		})
	})
	if corsEnabled {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins: corsAllowedOrigins,
			AllowedMethods: corsAllowedMethods,
			AllowedHeaders: corsAllowedHeaders,
			MaxAge:         300,
		}))
	}

	h := &handlers{svc: svc}
	r.Get("/health", h.health)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/status", h.status)
		r.Post("/summarize", h.summarize)
	})
	r.Get("/readyz", h.readyz)
	r.Get("/metrics", promhttp.Handler().ServeHTTP)
	MountSwagger(r)

	return r
}

type handlers struct {
	svc Service
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zlog.Error().Err(err).Msg("encode response")
	}
}

func requestID(r *http.Request) string { return middleware.GetReqID(r.Context()) }

// health godoc
// @Summary      Liveness probe
// @Description  Always succeeds while the process is up. Never loads the model.
// @Tags         ops
// @Produce      json
// @Success      200  {object}  types.HealthResponse
// @Router       /health [get]
func (h *handlers) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, types.HealthResponse{Status: "ok", ModelStatus: HealthModelStatus})
}

// status godoc
// @Summary      Model status
// @Description  Reports the model lifecycle state without triggering a load.
// @Tags         model
// @Produce      json
// @Success      200  {object}  types.ModelStatus
// @Router       /api/v1/status [get]
func (h *handlers) status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, h.svc.Status())
}

// summarize godoc
// @Summary      Summarize a document
// @Description  Generates an abstractive summary. The first request loads the model.
// @Tags         model
// @Accept       json
// @Produce      json
// @Param        request  body      types.SummarizeRequest  true  "Document and generation parameters"
// @Success      200      {object}  types.SummarizeResponse
// @Failure      413      {object}  types.ErrorResponse
// @Failure      415      {object}  types.ErrorResponse
// @Failure      422      {object}  types.ErrorResponse
// @Failure      500      {object}  types.ErrorResponse
// @Failure      503      {object}  types.ErrorResponse
// @Router       /api/v1/summarize [post]
func (h *handlers) summarize(w http.ResponseWriter, r *http.Request) {
	if ct := r.Header.Get("Content-Type"); ct != "" {
		if mt, _, err := mime.ParseMediaType(ct); err != nil || mt != "application/json" {
			writeJSONError(w, http.StatusUnsupportedMediaType, "Content-Type must be application/json")
			return
		}
	}
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	req := types.NewSummarizeRequest()
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		switch {
		case errors.As(err, &tooLarge):
			writeJSONError(w, http.StatusRequestEntityTooLarge, "request body too large")
		case errors.Is(err, io.EOF):
			writeJSONError(w, http.StatusUnprocessableEntity, "request body is required")
		default:
			writeJSONError(w, http.StatusUnprocessableEntity, "invalid JSON body: "+err.Error())
		}
		return
	}
	if detail := validationDetail(req); detail != "" {
		writeJSONError(w, http.StatusUnprocessableEntity, detail)
		return
	}

	lvl := requestLogLevel(r)
	start := time.Now()
	requestEvent(r, lvl, LevelInfo).Int("bytes", len(req.Text)).Msg("summarize start")
	requestEvent(r, lvl, LevelDebug).
		Int("min_length", req.MinLength).Int("max_length", req.MaxLength).
		Int("num_beams", req.NumBeams).Float64("repetition_penalty", req.RepetitionPenalty).
		Msg("summarize params")

	// Inference is not bound to the client connection.
	resp, err := h.svc.Summarize(context.WithoutCancel(r.Context()), req)
	if err != nil {
		code := statusFor(err)
		at := LevelInfo
		if code >= http.StatusInternalServerError && code != http.StatusServiceUnavailable {
			at = LevelError
		}
		requestEvent(r, lvl, at).Int("status", code).Dur("dur", time.Since(start)).Err(err).Msg("summarize end")
		writeJSONError(w, code, err.Error())
		return
	}
	requestEvent(r, lvl, LevelInfo).Int("status", http.StatusOK).Dur("dur", time.Since(start)).Msg("summarize end")
	writeJSON(w, resp)
}

// readyz godoc
// @Summary      Readiness probe
// @Tags         ops
// @Produce      plain
// @Success      200  {string}  string  "ready"
// @Failure      503  {string}  string  "loading"
// @Router       /readyz [get]
func (h *handlers) readyz(w http.ResponseWriter, r *http.Request) {
	if h.svc.Ready() {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ready"))
		return
	}
	w.WriteHeader(http.StatusServiceUnavailable)
	_, _ = w.Write([]byte("loading"))
}
