package httpapi

import "sync/atomic"

// maxBodyBytes controls the maximum allowed request body size for JSON endpoints.
var maxBodyBytes int64 = 1 << 20

// SetMaxBodyBytes sets the maximum request body size. Non-positive values
// restore the 1 MiB default.
func SetMaxBodyBytes(n int64) {
	if n <= 0 {
		maxBodyBytes = 1 << 20
		return
	}
	maxBodyBytes = n
}

// DefaultMinTextChars is the shortest document accepted for summarization.
const DefaultMinTextChars = 150

// minTextChars is read by the mintext validation rule on every request.
var minTextChars atomic.Int64

func init() { minTextChars.Store(DefaultMinTextChars) }

// SetMinTextChars sets the minimum document length in characters. Non-positive
// values restore the default.
func SetMinTextChars(n int) {
	if n <= 0 {
		n = DefaultMinTextChars
	}
	minTextChars.Store(int64(n))
}

// CORS configuration (opt-in). If disabled, no CORS middleware is added.
var (
	corsEnabled        bool
	corsAllowedOrigins []string
	corsAllowedMethods []string
	corsAllowedHeaders []string
)

// SetCORSOptions configures CORS behavior for muxes built afterwards.
func SetCORSOptions(enabled bool, origins, methods, headers []string) {
	corsEnabled = enabled
	corsAllowedOrigins = append([]string(nil), origins...)
	corsAllowedMethods = append([]string(nil), methods...)
	corsAllowedHeaders = append([]string(nil), headers...)
}
