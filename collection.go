package threads

import (
	"sort"
	"sync"
)

// Collection owns the merged local list for one entity stream (a post feed,
// one post's answers, one post's comments). It is the single source of truth
// the rendered view reads from.
//
// Every mutator is copy-on-write: it installs a fresh backing slice instead of
// writing through the old one, so slices handed out by Items and snapshots
// taken before the mutation are never disturbed. The version counter advances
// only when the backing slice actually changes, which preserves the merge
// referential-stability guarantee across ApplyPage.
//
// Collection is safe for concurrent use.
type Collection[E Identifiable] struct {
	mu      sync.Mutex
	items   []E
	dirty   map[string]struct{}
	version uint64
}

// Snapshot restores a collection to a previously captured state.
type Snapshot interface {
	Restore()
}

// NewCollection builds a collection seeded with items.
func NewCollection[E Identifiable](items ...E) *Collection[E] {
	c := &Collection[E]{dirty: map[string]struct{}{}}
	if len(items) > 0 {
		c.items = dedupe(items)
	}
	return c
}

// MarkDirty pins the local copy of each id across ApplyPage merges, so an
// unconfirmed optimistic edit survives pages fetched while its remote call
// is in flight. The controller marks a mutation's pinned ids after the
// snapshot is taken and clears them once the remote store confirms; a
// rollback restores the marks with the snapshot.
func (c *Collection[E]) MarkDirty(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dirty == nil {
		c.dirty = map[string]struct{}{}
	}
	for _, id := range ids {
		c.dirty[id] = struct{}{}
	}
}

// ClearDirty unpins ids, letting subsequent pages replace their local copies.
func (c *Collection[E]) ClearDirty(ids ...string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.dirty, id)
	}
}

// Items returns the current backing slice. Callers must treat it as
// read-only; mutators never write through it.
func (c *Collection[E]) Items() []E {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.items
}

// Len reports the number of held entities.
func (c *Collection[E]) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.items)
}

// Version reports the mutation counter. It only advances when the backing
// slice changes.
func (c *Collection[E]) Version() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.version
}

// Get returns the entity with the given id.
func (c *Collection[E]) Get(id string) (E, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range c.items {
		if item.EntityID() == id {
			return item, true
		}
	}
	var zero E
	return zero, false
}

// ApplyPage merges a freshly fetched page into the collection. Entities
// pinned through MarkDirty keep their local copies; every other shared id
// takes the incoming copy, so the list converges to the server state once
// mutations confirm. It reports whether the merge produced a new list.
func (c *Collection[E]) ApplyPage(incoming []E) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	merged := mergeKeep(c.items, incoming, func(id string) bool {
		_, pinned := c.dirty[id]
		return pinned
	})
	if sameBacking(c.items, merged) {
		return false
	}
	// Never install the caller's slice as the backing array.
	if sameBacking(merged, incoming) {
		merged = append([]E(nil), merged...)
	}
	c.install(merged)
	return true
}

// Update replaces the entity with the given id by patch(old). It reports
// false without touching the collection when id is absent. The patch must not
// modify its argument; it returns the new value.
func (c *Collection[E]) Update(id string, patch func(E) E) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if item.EntityID() != id {
			continue
		}
		next := append([]E(nil), c.items...)
		next[i] = patch(item)
		c.install(next)
		return true
	}
	return false
}

// Prepend inserts e at the head of the list.
func (c *Collection[E]) Prepend(e E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]E, 0, len(c.items)+1)
	next = append(next, e)
	next = append(next, c.items...)
	c.install(next)
}

// Append inserts e at the tail of the list.
func (c *Collection[E]) Append(e E) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := make([]E, 0, len(c.items)+1)
	next = append(next, c.items...)
	next = append(next, e)
	c.install(next)
}

// Replace swaps the entity with the given id for e, preserving its position.
// Used to resolve a temporary placeholder into the server-confirmed entity.
func (c *Collection[E]) Replace(id string, e E) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if item.EntityID() != id {
			continue
		}
		next := append([]E(nil), c.items...)
		next[i] = e
		c.install(next)
		return true
	}
	return false
}

// Remove deletes the entity with the given id.
func (c *Collection[E]) Remove(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, item := range c.items {
		if item.EntityID() != id {
			continue
		}
		next := make([]E, 0, len(c.items)-1)
		next = append(next, c.items[:i]...)
		next = append(next, c.items[i+1:]...)
		c.install(next)
		return true
	}
	return false
}

// SortBy installs a re-sorted copy of the list using less. The sort is
// stable.
func (c *Collection[E]) SortBy(less func(a, b E) bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	next := append([]E(nil), c.items...)
	sort.SliceStable(next, func(i, j int) bool { return less(next[i], next[j]) })
	if sameOrder(c.items, next) {
		return
	}
	c.install(next)
}

// Snapshot captures a deep clone of the current state. Restoring puts the
// collection back bit-for-bit, regardless of mutations applied in between.
func (c *Collection[E]) Snapshot() Snapshot {
	c.mu.Lock()
	saved := cloneItems(c.items)
	marks := make(map[string]struct{}, len(c.dirty))
	for id := range c.dirty {
		marks[id] = struct{}{}
	}
	c.mu.Unlock()
	return snapshotFunc(func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		c.dirty = marks
		c.install(saved)
	})
}

func (c *Collection[E]) install(items []E) {
	c.items = items
	c.version++
}

type snapshotFunc func()

func (f snapshotFunc) Restore() { f() }

// sameBacking reports whether two slices share their first element address,
// i.e. Merge returned current unchanged.
func sameBacking[E any](a, b []E) bool {
	if len(a) == 0 || len(b) == 0 {
		return len(a) == len(b)
	}
	return &a[0] == &b[0]
}
