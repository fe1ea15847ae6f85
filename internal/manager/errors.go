package manager

import (
	"errors"
	"fmt"
)

// errNoHandle is recorded when a loader returns neither a handle nor an error.
var errNoHandle = errors.New("loader returned no model handle")

// loadPanicError wraps a panic raised inside a loader so it is absorbed like
// any other load failure.
type loadPanicError struct{ v any }

func (e loadPanicError) Error() string { return fmt.Sprintf("loader panic: %v", e.v) }

// IsLoadPanic reports whether err came from a recovered loader panic.
func IsLoadPanic(err error) bool {
	var e loadPanicError
	return errors.As(err, &e)
}
