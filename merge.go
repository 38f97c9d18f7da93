package threads

import "reflect"

// Merge folds a freshly fetched page into the presently held list.
//
// For every incoming item that is already present locally the local copy wins,
// so optimistic edits on already-seen entities are not clobbered by a stale
// re-fetch. Result order is incoming order first, followed by local entities
// absent from the page ("extras", e.g. optimistically created entities the
// server has not surfaced yet) in their existing relative order.
//
// Merge is pure and idempotent: Merge(Merge(a, b), b) equals Merge(a, b). When
// the computed result is structurally identical to current (same ids, same
// order, no extras change) the identical current slice is returned so
// downstream consumers keyed on slice identity are not invalidated.
func Merge[E Identifiable](current, incoming []E) []E {
	return mergeKeep(current, incoming, func(string) bool { return true })
}

// mergeKeep is Merge with a pin predicate: the local copy of a shared id is
// kept only when keep(id) reports true, otherwise the incoming copy replaces
// it. Collection.ApplyPage pins the ids carrying unconfirmed optimistic
// edits, so confirmed entities converge to the server state. Without this an
// entity the server has since changed, such as a demoted previous adoptee,
// would hold its stale local copy forever.
func mergeKeep[E Identifiable](current, incoming []E, keep func(id string) bool) []E {
	if len(incoming) == 0 {
		return current
	}
	if len(current) == 0 {
		return dedupe(incoming)
	}

	local := make(map[string]int, len(current))
	for i, item := range current {
		local[item.EntityID()] = i
	}

	result := make([]E, 0, len(current)+len(incoming))
	seen := make(map[string]struct{}, len(incoming))
	changed := false
	for _, item := range incoming {
		id := item.EntityID()
		if _, dup := seen[id]; dup {
			continue
		}
		seen[id] = struct{}{}
		if at, ok := local[id]; ok {
			if keep(id) {
				result = append(result, current[at])
				continue
			}
			if !changed && !reflect.DeepEqual(item, current[at]) {
				changed = true
			}
		}
		result = append(result, item)
	}

	for _, item := range current {
		if _, ok := seen[item.EntityID()]; ok {
			continue
		}
		result = append(result, item)
	}

	if !changed && sameOrder(current, result) {
		return current
	}
	return result
}

// dedupe drops repeated ids within a single page, keeping the first
// occurrence. The input slice is returned untouched when it is already clean.
func dedupe[E Identifiable](items []E) []E {
	seen := make(map[string]struct{}, len(items))
	clean := true
	for _, item := range items {
		if _, dup := seen[item.EntityID()]; dup {
			clean = false
			break
		}
		seen[item.EntityID()] = struct{}{}
	}
	if clean {
		return items
	}

	result := make([]E, 0, len(items))
	kept := make(map[string]struct{}, len(items))
	for _, item := range items {
		if _, dup := kept[item.EntityID()]; dup {
			continue
		}
		kept[item.EntityID()] = struct{}{}
		result = append(result, item)
	}
	return result
}

func sameOrder[E Identifiable](current, result []E) bool {
	if len(current) != len(result) {
		return false
	}
	for i := range current {
		if current[i].EntityID() != result[i].EntityID() {
			return false
		}
	}
	return true
}
