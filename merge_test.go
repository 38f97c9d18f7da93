package threads

import (
	"fmt"
	"testing"
)

func post(id string, likes int) Post {
	return Post{ID: id, Like: LikeState{Count: likes}}
}

func ids(posts []Post) []string {
	out := make([]string, len(posts))
	for i, p := range posts {
		out[i] = p.ID
	}
	return out
}

func equalIDs(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestMergeLocalWins(t *testing.T) {
	local := []Post{post("p1", 5), post("p2", 0)}
	local[0].Like.Liked = true

	incoming := []Post{post("p1", 3), post("p2", 1)}

	merged := Merge(local, incoming)
	if len(merged) != 2 {
		t.Fatalf("expected 2 entities, got %d", len(merged))
	}
	if !merged[0].Like.Liked || merged[0].Like.Count != 5 {
		t.Fatalf("expected local p1 to win, got %+v", merged[0].Like)
	}
	if merged[1].Like.Count != 1 {
		t.Fatalf("expected incoming p2 for unseen id, got %+v", merged[1].Like)
	}
}

func TestMergeOrderIncomingFirstThenExtras(t *testing.T) {
	local := []Post{post("p2", 0), post("tmp-local", 0), post("p1", 0)}
	incoming := []Post{post("p1", 0), post("p3", 0)}

	merged := Merge(local, incoming)
	want := []string{"p1", "p3", "p2", "tmp-local"}
	if !equalIDs(ids(merged), want) {
		t.Fatalf("expected order %v, got %v", want, ids(merged))
	}
}

func TestMergeEmptyInputs(t *testing.T) {
	local := []Post{post("p1", 0)}

	if got := Merge(local, nil); &got[0] != &local[0] {
		t.Fatalf("expected current slice back for empty incoming")
	}
	incoming := []Post{post("p2", 0)}
	if got := Merge(nil, incoming); len(got) != 1 || got[0].ID != "p2" {
		t.Fatalf("expected incoming for empty current, got %v", ids(got))
	}
}

func TestMergeReferentialStability(t *testing.T) {
	local := []Post{post("p1", 0), post("p2", 0)}
	incoming := []Post{post("p1", 9), post("p2", 9)}

	merged := Merge(local, incoming)
	if &merged[0] != &local[0] {
		t.Fatalf("expected identical slice when ids and order are unchanged")
	}
}

func TestMergeIdempotent(t *testing.T) {
	local := []Post{post("p2", 4), post("p5", 0)}
	incoming := []Post{post("p1", 0), post("p2", 1), post("p3", 0)}

	once := Merge(local, incoming)
	twice := Merge(once, incoming)
	if !equalIDs(ids(once), ids(twice)) {
		t.Fatalf("expected idempotent merge, got %v then %v", ids(once), ids(twice))
	}
	for i := range once {
		if once[i].Like != twice[i].Like {
			t.Fatalf("expected identical entities at %d, got %+v and %+v", i, once[i].Like, twice[i].Like)
		}
	}
}

func TestMergeDropsDuplicateIncomingIDs(t *testing.T) {
	incoming := []Post{post("p1", 1), post("p2", 0), post("p1", 7)}

	merged := Merge(nil, incoming)
	if len(merged) != 2 {
		t.Fatalf("expected duplicates dropped, got %v", ids(merged))
	}
	if merged[0].Like.Count != 1 {
		t.Fatalf("expected first occurrence kept, got count %d", merged[0].Like.Count)
	}
}

func TestMergeManyPagesKeepsUniqueIDs(t *testing.T) {
	var current []Post
	for page := 0; page < 5; page++ {
		var incoming []Post
		// Overlapping windows: each page repeats the last two ids of the
		// previous one.
		for i := page * 3; i < page*3+5; i++ {
			incoming = append(incoming, post(fmt.Sprintf("p%02d", i), 0))
		}
		current = Merge(current, incoming)
	}

	seen := map[string]bool{}
	for _, p := range current {
		if seen[p.ID] {
			t.Fatalf("duplicate id %q after repeated merges", p.ID)
		}
		seen[p.ID] = true
	}
	if len(current) != 17 {
		t.Fatalf("expected 17 unique entities, got %d", len(current))
	}
}
