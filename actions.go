package threads

import (
	"context"

	"github.com/goliatone/go-threads/pkg/activity"
)

// Typed wrappers over Controller.Apply for the user-initiated writes. Each
// one applies the local patch synchronously and leaves confirmation to the
// supplied remote call; the controller handles snapshots and rollback.

// ToggleLike flips the like state of a post.
func ToggleLike(ctx context.Context, c *Controller, posts *Collection[Post], id string, remote RemoteCall) error {
	post, ok := posts.Get(id)
	if !ok {
		return wrapMutationError(activity.VerbLike, id, ErrUnknownEntity)
	}
	verb := activity.VerbLike
	if post.Like.Liked {
		verb = activity.VerbUnlike
	}
	return c.Apply(ctx, Mutation{
		Verb:       verb,
		Target:     id,
		ObjectType: KindPost,
		Stores:     []Snapshotter{posts},
		Pins:       []Pin{{Store: posts, ID: id}},
		Apply: func() error {
			posts.Update(id, Post.ToggleLike)
			return nil
		},
		Remote: remote,
	})
}

// ToggleBookmark flips the bookmark state of a post.
func ToggleBookmark(ctx context.Context, c *Controller, posts *Collection[Post], id string, remote RemoteCall) error {
	if _, ok := posts.Get(id); !ok {
		return wrapMutationError(activity.VerbBookmark, id, ErrUnknownEntity)
	}
	return c.Apply(ctx, Mutation{
		Verb:       activity.VerbBookmark,
		Target:     id,
		ObjectType: KindPost,
		Stores:     []Snapshotter{posts},
		Pins:       []Pin{{Store: posts, ID: id}},
		Apply: func() error {
			posts.Update(id, Post.ToggleBookmark)
			return nil
		},
		Remote: remote,
	})
}

// ToggleHelpful flips the helpful-vote on an answer.
func ToggleHelpful(ctx context.Context, c *Controller, answers *Collection[Answer], id string, remote RemoteCall) error {
	if _, ok := answers.Get(id); !ok {
		return wrapMutationError(activity.VerbHelpful, id, ErrUnknownEntity)
	}
	return c.Apply(ctx, Mutation{
		Verb:       activity.VerbHelpful,
		Target:     id,
		ObjectType: KindAnswer,
		Stores:     []Snapshotter{answers},
		Pins:       []Pin{{Store: answers, ID: id}},
		Apply: func() error {
			answers.Update(id, Answer.ToggleHelpful)
			return nil
		},
		Remote: remote,
	})
}

// Edit replaces an entity's local state with patch(old) and confirms the edit
// remotely.
func Edit[E Identifiable](ctx context.Context, c *Controller, col *Collection[E], kind Kind, id string, patch func(E) E, remote RemoteCall) error {
	if _, ok := col.Get(id); !ok {
		return wrapMutationError(activity.VerbEdit, id, ErrUnknownEntity)
	}
	return c.Apply(ctx, Mutation{
		Verb:       activity.VerbEdit,
		Target:     id,
		ObjectType: kind,
		Stores:     []Snapshotter{col},
		Pins:       []Pin{{Store: col, ID: id}},
		Apply: func() error {
			col.Update(id, patch)
			return nil
		},
		Remote: remote,
	})
}

// Delete removes an entity optimistically and decrements the parent post's
// child count. Both collections are snapshotted, so a failed delete restores
// the entity and the count together. posts may be nil when no count is
// affected.
func Delete[E Identifiable](ctx context.Context, c *Controller, col *Collection[E], kind Kind, id string, posts *Collection[Post], postID string, remote RemoteCall) error {
	if _, ok := col.Get(id); !ok {
		return wrapMutationError(activity.VerbDelete, id, ErrUnknownEntity)
	}
	stores := []Snapshotter{col}
	var pins []Pin
	if posts != nil {
		stores = append(stores, posts)
		if postID != "" {
			pins = append(pins, Pin{Store: posts, ID: postID})
		}
	}
	return c.Apply(ctx, Mutation{
		Verb:       activity.VerbDelete,
		Target:     id,
		ObjectType: kind,
		Stores:     stores,
		Pins:       pins,
		Apply: func() error {
			col.Remove(id)
			if posts != nil && postID != "" {
				posts.Update(postID, func(p Post) Post { return p.AddChildren(-1) })
			}
			return nil
		},
		Remote: remote,
	})
}
