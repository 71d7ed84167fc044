package backend

import (
	"fmt"

	"github.com/pkg/errors"
)

// TransportError is any failed call to the remote services: network error,
// timeout, non-2xx status or an undecodable body.
type TransportError struct {
	Op         string
	StatusCode int
	Err        error
}

// Error implements the error interface
func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("backend %s (status %d): %v", e.Op, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("backend %s: %v", e.Op, e.Err)
}

// Unwrap returns the underlying error
func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError reports whether err came from a failed backend call.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
