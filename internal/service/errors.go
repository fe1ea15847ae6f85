package service

import (
	"errors"
	"net/http"
)

// NotReadyMessage is the detail returned while the model cannot serve requests.
const NotReadyMessage = "Model is not yet ready. Please check the /status endpoint."

// notReadyError signals the model is not loaded (503).
type notReadyError struct{}

func (notReadyError) Error() string   { return NotReadyMessage }
func (notReadyError) StatusCode() int { return http.StatusServiceUnavailable }

// ErrNotReady is returned by Summarize when the model is not ready.
var ErrNotReady error = notReadyError{}

// IsNotReady reports whether err indicates the model is not ready.
func IsNotReady(err error) bool {
	var e notReadyError
	return errors.As(err, &e)
}

// inferenceError wraps a failure of the model call (500). The model stays loaded.
type inferenceError struct{ cause error }

func (e inferenceError) Error() string {
	return "Error processing text for summarization: " + e.cause.Error()
}
func (e inferenceError) StatusCode() int { return http.StatusInternalServerError }
func (e inferenceError) Unwrap() error   { return e.cause }

// IsInferenceFailure reports whether err is a failed model call.
func IsInferenceFailure(err error) bool {
	var e inferenceError
	return errors.As(err, &e)
}
