package rest

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	// ErrNotFound is returned when the backend answers 404.
	ErrNotFound = errors.New("scan report not found")
	// ErrSessionExpired is returned when the backend rejects the caller's
	// session (401/403, or a redirect to the login page).
	ErrSessionExpired = errors.New("session expired")
)

// Outcome classifies a backend response.
type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeEmpty
	OutcomeNotFound
	OutcomeRedirect
	OutcomeSessionExpired
	OutcomeUnclassified
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeEmpty:
		return "empty"
	case OutcomeNotFound:
		return "not_found"
	case OutcomeRedirect:
		return "redirect"
	case OutcomeSessionExpired:
		return "session_expired"
	default:
		return "unclassified"
	}
}

// Classify maps an HTTP status code onto an Outcome.
func Classify(status int) Outcome {
	switch {
	case status == http.StatusNoContent:
		return OutcomeEmpty
	case status >= 200 && status < 300:
		return OutcomeOK
	case status == http.StatusFound:
		return OutcomeRedirect
	case status == http.StatusNotFound:
		return OutcomeNotFound
	case status == http.StatusUnauthorized, status == http.StatusForbidden:
		return OutcomeSessionExpired
	default:
		return OutcomeUnclassified
	}
}

// StatusError reports a non-success backend status.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body != "" {
		return fmt.Sprintf("%s: backend returned %d: %s", e.Op, e.StatusCode, e.Body)
	}
	return fmt.Sprintf("%s: backend returned %d", e.Op, e.StatusCode)
}

// Unwrap lets errors.Is match ErrNotFound and ErrSessionExpired.
func (e *StatusError) Unwrap() error {
	switch Classify(e.StatusCode) {
	case OutcomeNotFound:
		return ErrNotFound
	case OutcomeSessionExpired:
		return ErrSessionExpired
	}
	return nil
}

// OutcomeOf classifies an error returned by the client.
func OutcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return OutcomeOK
	case errors.Is(err, ErrNotFound):
		return OutcomeNotFound
	case errors.Is(err, ErrSessionExpired):
		return OutcomeSessionExpired
	default:
		return OutcomeUnclassified
	}
}
