package threads

import (
	"time"

	"github.com/goliatone/go-threads/pkg/remote"
)

// NoticeKind buckets user-facing notices by the failure taxonomy: local
// sign-in gates, policy failures with a specific message, rate limiting, and
// the generic retry prompt for everything transient.
type NoticeKind string

const (
	NoticeSignIn     NoticeKind = "sign_in_required"
	NoticeRestricted NoticeKind = "account_restricted"
	NoticeRateLimit  NoticeKind = "rate_limited"
	NoticeRetry      NoticeKind = "retry"
)

// Notice is the single user-visible notification produced by a failed (or
// gated) mutation. Exactly one notice is emitted per failure.
type Notice struct {
	Kind       NoticeKind
	Message    string
	RetryAfter time.Duration
	Err        error
}

// Notifier receives notices for display.
type Notifier interface {
	Notify(Notice)
}

// NotifierFunc adapts a function to Notifier.
type NotifierFunc func(Notice)

// Notify dispatches to the underlying function.
func (f NotifierFunc) Notify(notice Notice) {
	if f != nil {
		f(notice)
	}
}

type noopNotifier struct{}

func (noopNotifier) Notify(Notice) {}

// noticeFor classifies a remote failure. Specific policy messages take
// priority over the generic fallback.
func noticeFor(err error) Notice {
	switch {
	case remote.IsAccountRestricted(err):
		return Notice{
			Kind:    NoticeRestricted,
			Message: "Your account is currently restricted from performing this action.",
			Err:     err,
		}
	case remote.IsRateLimited(err):
		return Notice{
			Kind:       NoticeRateLimit,
			Message:    "You are doing that too often. Please wait a moment and try again.",
			RetryAfter: remote.RetryAfter(err),
			Err:        err,
		}
	default:
		return Notice{
			Kind:    NoticeRetry,
			Message: "Something went wrong and your change was not saved. Please try again.",
			Err:     err,
		}
	}
}

var signInNotice = Notice{
	Kind:    NoticeSignIn,
	Message: "Sign in to participate in the discussion.",
	Err:     ErrSignInRequired,
}
