// Package threads keeps a local, render-ready view of paginated discussion
// content (questions/answers, posts/comments, likes, bookmarks, adoption)
// consistent with a remote store while the user performs rapid optimistic
// edits and new pages stream in.
//
// Responsibilities:
//   - Merge folds freshly fetched pages into the held collection without
//     duplicating entries or clobbering in-flight local edits.
//   - Collection[E] owns the merged list with copy-on-write mutators and
//     deep-clone snapshots for exact rollback.
//   - Controller applies a local patch immediately, runs the remote call, and
//     either reconciles authoritative fields or restores every touched
//     collection to its pre-mutation snapshot.
//   - Create inserts a placeholder under a temporary id and swaps it for the
//     server-confirmed entity in place.
//   - Adopt enforces the single-winner answer invariant per question.
//
// Data flow:
//
//	remote pages -> loader.Loader -> Collection.ApplyPage -> rendered view
//	user action  -> moderation.Validator -> Controller.Apply -> Collection
//
// Viewport-driven fetching lives in pkg/loader, text gating in pkg/moderation,
// and the remote request/response boundary in pkg/remote. The package is
// persistence-agnostic: the remote store stays behind plain function values
// supplied by consumers.
package threads
