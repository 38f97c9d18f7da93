package threads

import (
	"context"

	"github.com/goliatone/go-threads/pkg/activity"
)

// Position controls where a placeholder is inserted: answers are prepended so
// the author sees their answer on top, comments and replies are appended in
// arrival order.
type Position int

const (
	Prepended Position = iota
	Appended
)

// RemoteCreate performs the remote creation and returns the server-confirmed
// entity carrying its authoritative id.
type RemoteCreate[E Identifiable] func(ctx context.Context) (E, error)

// Create inserts a fully formed placeholder under a temporary id, confirms
// the creation remotely, and swaps the placeholder for the server entity in
// place. The placeholder must carry an id from NewTempID; after resolution
// exactly one entity with the final id exists.
//
// On failure the snapshot rollback removes the placeholder and restores the
// parent post's child count; the submitted text is never dropped, callers
// hand it back to the input field (see moderation.Composer.Restore).
//
// posts may be nil when no child count is affected.
func Create[E Identifiable](ctx context.Context, c *Controller, col *Collection[E], kind Kind, placeholder E, pos Position, posts *Collection[Post], postID string, remote RemoteCreate[E]) (E, error) {
	var confirmed E
	tempID := placeholder.EntityID()
	if !IsTempID(tempID) {
		return confirmed, wrapMutationError(activity.VerbCreate, tempID, errNotProvisional)
	}
	if remote == nil {
		return confirmed, wrapMutationError(activity.VerbCreate, tempID, errMutationIncomplete)
	}

	stores := []Snapshotter{col}
	var pins []Pin
	if posts != nil {
		stores = append(stores, posts)
		if postID != "" {
			pins = append(pins, Pin{Store: posts, ID: postID})
		}
	}
	err := c.Apply(ctx, Mutation{
		Verb:       activity.VerbCreate,
		ObjectType: kind,
		Stores:     stores,
		Pins:       pins,
		Apply: func() error {
			if pos == Prepended {
				col.Prepend(placeholder)
			} else {
				col.Append(placeholder)
			}
			if posts != nil && postID != "" {
				posts.Update(postID, func(p Post) Post { return p.AddChildren(1) })
			}
			return nil
		},
		Remote: func(ctx context.Context) (Reconcile, error) {
			entity, err := remote(ctx)
			if err != nil {
				return nil, err
			}
			confirmed = entity
			return func() {
				col.Replace(tempID, entity)
			}, nil
		},
		Metadata: map[string]any{"post_id": postID},
	})
	if err != nil {
		var zero E
		return zero, err
	}
	return confirmed, nil
}
