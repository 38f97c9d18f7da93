package loader

import (
	"context"

	threads "github.com/goliatone/go-threads"
)

// Streams pairs the two loaders a post detail view owns. Exactly one is
// active: the answer stream for questions, the comment stream otherwise.
type Streams struct {
	answers    *Loader[threads.Answer]
	comments   *Loader[threads.Comment]
	isQuestion bool
}

// NewStreams wires the mutually exclusive loaders for post.
func NewStreams(post threads.Post, answers *Loader[threads.Answer], comments *Loader[threads.Comment]) *Streams {
	return &Streams{
		answers:    answers,
		comments:   comments,
		isQuestion: post.IsQuestion,
	}
}

// OnSentinel forwards the trigger to the active stream.
func (s *Streams) OnSentinel(ctx context.Context) error {
	if s.isQuestion {
		if s.answers == nil {
			return nil
		}
		return s.answers.OnSentinel(ctx)
	}
	if s.comments == nil {
		return nil
	}
	return s.comments.OnSentinel(ctx)
}

// HasMore reports exhaustion of the active stream.
func (s *Streams) HasMore() bool {
	if s.isQuestion {
		return s.answers != nil && s.answers.HasMore()
	}
	return s.comments != nil && s.comments.HasMore()
}
