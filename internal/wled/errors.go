package wled

import (
	"errors"
	"fmt"
)

// TransportError is returned when a request to the controller fails or
// answers with a non-2xx status.
type TransportError struct {
	URL        string
	StatusCode int
	Body       string
	Err        error
}

func (e *TransportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.URL, e.Err)
	}
	return fmt.Sprintf("%s: unexpected status code: %d, body: %s", e.URL, e.StatusCode, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// IsTransportError checks if an error is a transport error.
func IsTransportError(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
