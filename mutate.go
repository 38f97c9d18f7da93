package threads

import (
	"context"
	"sync"
	"time"

	"github.com/goliatone/go-threads/pkg/activity"
)

// Snapshotter is any store the controller can capture and restore. Collection
// implements it; a mutation lists every store its patch touches.
type Snapshotter interface {
	Snapshot() Snapshot
}

// Reconcile folds server-returned authoritative fields (counts, timestamps)
// into the already-applied optimistic state. It runs only on success and must
// not revert the optimistic flags.
type Reconcile func()

// RemoteCall performs the remote side of a mutation. It may return a
// Reconcile to apply authoritative fields, or nil when the optimistic state
// already matches the server response.
type RemoteCall func(ctx context.Context) (Reconcile, error)

// Pinner pins entity ids against page merges while an edit is unconfirmed.
// Collection implements it.
type Pinner interface {
	MarkDirty(ids ...string)
	ClearDirty(ids ...string)
}

// Pin names one entity whose local copy a mutation edits. The controller
// marks it dirty in its store for the duration of the remote call.
type Pin struct {
	Store Pinner
	ID    string
}

// Mutation describes one optimistic write: which stores it touches, how to
// apply it locally, and how to confirm it remotely.
type Mutation struct {
	// Verb names the action for logging and activity fan-out (see the
	// activity package verb constants).
	Verb string

	// Target is the id of the mutated entity, or empty for collection-level
	// actions such as create. Non-empty targets are guarded against
	// concurrent same-target mutations.
	Target string

	// ObjectType is the entity kind for activity events.
	ObjectType Kind

	// Stores lists every collection the patch touches. Each one is
	// snapshotted before Apply runs and restored verbatim on failure.
	Stores []Snapshotter

	// Pins lists the entity ids the patch edits. Each one is marked dirty
	// in its store so a page fetched mid-flight cannot clobber the
	// unconfirmed edit, and unmarked once the remote store confirms; after
	// that, pages replace the local copy and the list converges to the
	// server. A rollback restores the marks with the store snapshot.
	Pins []Pin

	// Apply performs the local patch synchronously so the change is visible
	// with zero latency.
	Apply func() error

	// Remote confirms the mutation against the remote store.
	Remote RemoteCall

	// Metadata is attached to the activity event emitted on commit.
	Metadata map[string]any
}

// Controller applies optimistic mutations: snapshot, patch, remote call,
// commit-or-rollback. Either the full local patch is visible or, after a
// failure, none of it is: every touched store is restored bit-for-bit.
//
// Rollback semantics are defined only for non-interleaved mutations per
// target: a second mutation on the same target while one is in flight fails
// fast with ErrMutationInFlight rather than risking cross-mutation
// corruption. Mutations on distinct targets run concurrently.
type Controller struct {
	session  *Session
	notifier Notifier
	logger   MutationLogger
	emitter  *activity.Emitter

	mu       sync.Mutex
	inflight map[string]struct{}
}

// ControllerOption configures a Controller.
type ControllerOption func(*Controller)

// WithNotifier routes user-facing notices to n.
func WithNotifier(n Notifier) ControllerOption {
	return func(c *Controller) {
		if n == nil {
			c.notifier = noopNotifier{}
			return
		}
		c.notifier = n
	}
}

// WithMutationLogger records mutation attempts on logger.
func WithMutationLogger(logger MutationLogger) ControllerOption {
	return func(c *Controller) {
		if logger == nil {
			c.logger = noopMutationLogger{}
			return
		}
		c.logger = logger
	}
}

// WithActivityEmitter fans out committed mutations as activity events.
func WithActivityEmitter(emitter *activity.Emitter) ControllerOption {
	return func(c *Controller) {
		c.emitter = emitter
	}
}

// NewController builds a controller for the given session. A nil session is
// valid and turns every Apply into a sign-in prompt.
func NewController(session *Session, opts ...ControllerOption) *Controller {
	c := &Controller{
		session:  session,
		notifier: noopNotifier{},
		logger:   noopMutationLogger{},
		inflight: map[string]struct{}{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Session returns the caller identity, or nil when signed out.
func (c *Controller) Session() *Session {
	return c.session
}

// Apply runs one optimistic mutation end to end. On failure every snapshotted
// store is restored, exactly one notice is emitted, and the wrapped error is
// returned.
func (c *Controller) Apply(ctx context.Context, m Mutation) error {
	if c.session == nil {
		c.notifier.Notify(signInNotice)
		return wrapMutationError(m.Verb, m.Target, ErrSignInRequired)
	}
	if m.Apply == nil || m.Remote == nil {
		return wrapMutationError(m.Verb, m.Target, errMutationIncomplete)
	}

	if m.Target != "" {
		if !c.acquire(m.Target) {
			return wrapMutationError(m.Verb, m.Target, ErrMutationInFlight)
		}
		defer c.release(m.Target)
	}

	snapshots := make([]Snapshot, 0, len(m.Stores))
	for _, store := range m.Stores {
		if store == nil {
			continue
		}
		snapshots = append(snapshots, store.Snapshot())
	}
	// Marks land after the snapshots so rollback removes them again.
	for _, pin := range m.Pins {
		if pin.Store == nil || pin.ID == "" {
			continue
		}
		pin.Store.MarkDirty(pin.ID)
	}

	start := time.Now()
	if err := m.Apply(); err != nil {
		restoreAll(snapshots)
		c.logger.LogMutation(MutationLogEvent{
			Verb:       m.Verb,
			Target:     m.Target,
			Duration:   time.Since(start),
			RolledBack: true,
			Err:        err,
		})
		return wrapMutationError(m.Verb, m.Target, err)
	}

	reconcile, err := m.Remote(ctx)
	duration := time.Since(start)
	if err != nil {
		restoreAll(snapshots)
		c.notifier.Notify(noticeFor(err))
		c.logger.LogMutation(MutationLogEvent{
			Verb:       m.Verb,
			Target:     m.Target,
			Duration:   duration,
			RolledBack: true,
			Err:        err,
		})
		return wrapMutationError(m.Verb, m.Target, err)
	}

	if reconcile != nil {
		reconcile()
	}
	for _, pin := range m.Pins {
		if pin.Store == nil || pin.ID == "" {
			continue
		}
		pin.Store.ClearDirty(pin.ID)
	}
	c.logger.LogMutation(MutationLogEvent{
		Verb:     m.Verb,
		Target:   m.Target,
		Duration: duration,
	})
	c.emit(ctx, m)
	return nil
}

func (c *Controller) emit(ctx context.Context, m Mutation) {
	if !c.emitter.Enabled() {
		return
	}
	input := activity.MutationEventInput{
		ActorID:    c.session.ID,
		UserID:     c.session.ID,
		ObjectType: string(m.ObjectType),
		ObjectID:   m.Target,
		Metadata:   m.Metadata,
	}
	// Create mutations carry no target id; the event falls back to the
	// parent post rather than the bare object type.
	if postID, ok := m.Metadata["post_id"].(string); ok {
		input.PostID = postID
	}
	event := activity.BuildMutationEvent(m.Verb, input)
	// Hook failures never affect a committed mutation.
	if err := c.emitter.Emit(ctx, event); err != nil {
		c.logger.LogMutation(MutationLogEvent{Verb: m.Verb, Target: m.Target, Err: err})
	}
}

func (c *Controller) acquire(target string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, busy := c.inflight[target]; busy {
		return false
	}
	c.inflight[target] = struct{}{}
	return true
}

func (c *Controller) release(target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.inflight, target)
}

// restoreAll restores in reverse capture order so overlapping stores unwind
// like a stack.
func restoreAll(snapshots []Snapshot) {
	for i := len(snapshots) - 1; i >= 0; i-- {
		snapshots[i].Restore()
	}
}
