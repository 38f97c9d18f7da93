package remote

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Distinguished error codes the client reacts to specifically.
const (
	CodeAccountRestricted = "ACCOUNT_RESTRICTED"
	CodeNotFound          = "NOT_FOUND"
)

// APIError is a non-success response from the remote store.
type APIError struct {
	Status     int
	Code       string
	Message    string
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Code != "" {
		return fmt.Sprintf("remote: status %d code=%s: %s", e.Status, e.Code, e.Message)
	}
	return fmt.Sprintf("remote: status %d: %s", e.Status, e.Message)
}

// IsAccountRestricted reports whether err is the distinguished policy
// failure that requires its own user-facing message.
func IsAccountRestricted(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Code == CodeAccountRestricted
}

// IsRateLimited reports whether err is a rate-limit response.
func IsRateLimited(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusTooManyRequests || apiErr.RetryAfter > 0
}

// IsNotFound reports whether the mutation target no longer exists remotely,
// e.g. it was deleted concurrently by another session. Treated as a
// non-fatal rollback; the entity disappears locally on the next re-fetch.
func IsNotFound(err error) bool {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return false
	}
	return apiErr.Status == http.StatusNotFound || apiErr.Code == CodeNotFound
}

// IsTransient reports whether a retry without edits could plausibly succeed:
// server errors and anything that is not an APIError (network failures,
// cancellations).
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		return true
	}
	return apiErr.Status >= http.StatusInternalServerError
}

// RetryAfter extracts the server-suggested wait, or zero.
func RetryAfter(err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	return 0
}
