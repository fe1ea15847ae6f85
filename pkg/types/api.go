package types

// Defaults applied to SummarizeRequest fields omitted from the JSON body.
const (
	DefaultMinLength         = 50
	DefaultMaxLength         = 150
	DefaultNumBeams          = 4
	DefaultRepetitionPenalty = 2.5
)

// SummarizeRequest is the payload accepted by POST /api/v1/summarize.
type SummarizeRequest struct {
	// Document text to summarize. Must be at least the configured minimum
	// number of characters (150 by default).
	// example: The latest quarterly report shows significant growth in the AI sector...
	Text string `json:"text" validate:"mintext" example:"The latest quarterly report shows significant growth in the AI sector driven by new large language model deployments."`
	// Minimum number of tokens in the generated summary.
	// example: 50
	MinLength int `json:"min_length" validate:"gte=0" example:"50"`
	// Maximum number of tokens in the generated summary.
	// example: 150
	MaxLength int `json:"max_length" validate:"gte=1,gtefield=MinLength" example:"150"`
	// Beam-search width.
	// example: 4
	NumBeams int `json:"num_beams" validate:"gte=1" example:"4"`
	// Penalty discouraging repeated tokens (>= 1).
	// example: 2.5
	RepetitionPenalty float64 `json:"repetition_penalty" validate:"gte=1" example:"2.5"`
}

// NewSummarizeRequest returns a request with the documented defaults set.
// Decoding JSON into it keeps the defaults for fields the client omitted.
func NewSummarizeRequest() SummarizeRequest {
	return SummarizeRequest{
		MinLength:         DefaultMinLength,
		MaxLength:         DefaultMaxLength,
		NumBeams:          DefaultNumBeams,
		RepetitionPenalty: DefaultRepetitionPenalty,
	}
}

// SummarizeResponse is returned by POST /api/v1/summarize on success.
type SummarizeResponse struct {
	// Generated summary.
	// example: The AI sector grew strongly on the back of LLM deployments.
	Summary string `json:"summary" example:"The AI sector grew strongly on the back of LLM deployments."`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	// example: ok
	Status string `json:"status" example:"ok"`
	// example: Loading (Awaiting first request)
	ModelStatus string `json:"model_status" example:"Loading (Awaiting first request)"`
}

// ModelStatus is returned by GET /api/v1/status.
type ModelStatus struct {
	// Identifier of the served model.
	// example: facebook/bart-large-cnn
	ModelName string `json:"model_name" example:"facebook/bart-large-cnn"`
	// Human-readable status label.
	// example: Loaded
	Status string `json:"status" example:"Loaded"`
	// True only when inference can be served without triggering a load.
	// example: true
	IsReady bool `json:"is_ready" example:"true"`
	// Lifecycle state (unloaded, loading, ready, load_failed).
	// example: ready
	State string `json:"state" example:"ready"`
	// Last load error, if the most recent attempt failed.
	LastError string `json:"last_error,omitempty"`
	// Number of load attempts made so far.
	// example: 1
	LoadAttempts uint64 `json:"load_attempts" example:"1"`
}

// ErrorResponse is a consistent JSON error payload.
type ErrorResponse struct {
	// Error message.
	// example: Model is not yet ready. Please check the /status endpoint.
	Detail string `json:"detail" example:"Model is not yet ready. Please check the /status endpoint."`
	// HTTP status code.
	// example: 503
	Code int `json:"code" example:"503"`
}
