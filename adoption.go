package threads

import (
	"context"
	"sort"

	"github.com/goliatone/go-threads/pkg/activity"
)

// Adopt marks an answer as the accepted solution to a question. The
// transition is one-way within a session: there is no client-side un-adopt.
//
// Precondition enforced before the remote call: only the post author may
// adopt, and the remote store remains the authority and can still reject.
// The optimistic patch flips exactly two flags, the target answer's and the
// post's, and never touches other answers; if a different answer was adopted
// before, the server demotes it and its local copy takes the demotion on the
// next re-fetched page, leaving exactly one adopted answer. On failure both
// flags revert through the snapshot rollback.
func Adopt(ctx context.Context, c *Controller, posts *Collection[Post], answers *Collection[Answer], postID, answerID string, remote RemoteCall) error {
	post, ok := posts.Get(postID)
	if !ok {
		return wrapMutationError(activity.VerbAdopt, answerID, ErrUnknownEntity)
	}
	if _, ok := answers.Get(answerID); !ok {
		return wrapMutationError(activity.VerbAdopt, answerID, ErrUnknownEntity)
	}
	if session := c.Session(); session != nil && session.ID != post.Author.ID {
		return wrapMutationError(activity.VerbAdopt, answerID, ErrNotAuthor)
	}

	return c.Apply(ctx, Mutation{
		Verb:       activity.VerbAdopt,
		Target:     answerID,
		ObjectType: KindAnswer,
		Stores:     []Snapshotter{posts, answers},
		Pins: []Pin{
			{Store: answers, ID: answerID},
			{Store: posts, ID: postID},
		},
		Apply: func() error {
			answers.Update(answerID, func(a Answer) Answer {
				a.IsAdopted = true
				return a
			})
			posts.Update(postID, func(p Post) Post {
				p.IsAdopted = true
				return p
			})
			return nil
		},
		Remote:   remote,
		Metadata: map[string]any{"post_id": postID},
	})
}

// AnswerLess is the display order for answers: adopted first, then
// expert-authored, then descending helpful count, then descending recency,
// with the entity id breaking any remaining tie. The order is total.
func AnswerLess(a, b Answer) bool {
	if a.IsAdopted != b.IsAdopted {
		return a.IsAdopted
	}
	if a.Author.Expert != b.Author.Expert {
		return a.Author.Expert
	}
	if a.Helpful.Count != b.Helpful.Count {
		return a.Helpful.Count > b.Helpful.Count
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.After(b.CreatedAt)
	}
	return a.ID > b.ID
}

// SortAnswers returns a copy of answers in display order. The input is not
// modified; the order is recomputed whenever the answer list changes, never
// stored.
func SortAnswers(answers []Answer) []Answer {
	sorted := append([]Answer(nil), answers...)
	sort.Slice(sorted, func(i, j int) bool { return AnswerLess(sorted[i], sorted[j]) })
	return sorted
}
