package remote

import (
	"errors"
	"fmt"
)

var (
	ErrUnavailable     = errors.New("upstream service unavailable")
	ErrInvalidResponse = errors.New("invalid response from upstream")
)

// StatusError is a non-2xx answer from an upstream service
type StatusError struct {
	Service    string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned status %d: %s", e.Service, e.StatusCode, e.Body)
}

// isClientError reports whether err is a 4xx answer, which is never retried
func isClientError(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode >= 400 && se.StatusCode < 500
}
