package threads

import (
	"errors"
	"fmt"
)

// ErrSignInRequired is returned before any optimistic change when the
// controller has no session; the caller should surface a sign-in prompt.
var ErrSignInRequired = errors.New("threads: sign-in required")

// ErrMutationInFlight is returned when a second mutation targets an entity
// whose previous mutation has not resolved yet. Rollback semantics are only
// defined for non-interleaved mutations, so the controller refuses the second
// call instead of guessing.
var ErrMutationInFlight = errors.New("threads: mutation already in flight for target")

// ErrNotAuthor is returned when a session other than the post author attempts
// to adopt an answer.
var ErrNotAuthor = errors.New("threads: only the post author may adopt an answer")

// ErrUnknownEntity is returned when a mutation targets an id that is not
// present in the collection.
var ErrUnknownEntity = errors.New("threads: unknown entity")

var errMutationIncomplete = errors.New("threads: mutation requires Apply and Remote")

var errNotProvisional = errors.New("threads: placeholder id must come from NewTempID")

// MutationError carries the verb and target of a failed, rolled-back mutation
// alongside the originating error.
type MutationError struct {
	Verb   string
	Target string
	Err    error
}

func (e *MutationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	return fmt.Sprintf("threads: %s mutation target=%s: %v", e.Verb, describeTarget(e.Target), e.Err)
}

func (e *MutationError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

func describeTarget(target string) string {
	if target == "" {
		return "<collection>"
	}
	return target
}

func wrapMutationError(verb, target string, err error) error {
	if err == nil {
		return nil
	}

	var mutErr *MutationError
	if errors.As(err, &mutErr) {
		return err
	}
	return &MutationError{Verb: verb, Target: target, Err: err}
}
