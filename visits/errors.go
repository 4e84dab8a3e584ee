package visits

import (
	"errors"
	"fmt"
	"strings"
)

// NetworkError reports a counting call that could not complete or that
// returned a non-success status.
type NetworkError struct {
	Endpoint string
	Status   int
	Cause    error
}

func (e *NetworkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("counting endpoint %s unreachable: %v", e.Endpoint, e.Cause)
	}
	return fmt.Sprintf("counting endpoint %s returned status %d", e.Endpoint, e.Status)
}

func (e *NetworkError) Unwrap() error {
	return e.Cause
}

// ResponseShapeError reports a counting response that parsed but did not
// carry a usable count at the expected key path.
type ResponseShapeError struct {
	Path   []string
	Reason string
}

func (e *ResponseShapeError) Error() string {
	return fmt.Sprintf("unexpected response shape at %q: %s", strings.Join(e.Path, "."), e.Reason)
}

func ResponseShape(path []string, reason string) error {
	return &ResponseShapeError{Path: path, Reason: reason}
}

func IsNetworkError(err error) bool {
	var target *NetworkError
	return errors.As(err, &target)
}

func IsResponseShapeError(err error) bool {
	var target *ResponseShapeError
	return errors.As(err, &target)
}
