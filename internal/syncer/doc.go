// Package syncer keeps one dataset's records consistent between the collaborator, the local
// store and memory.
//
// A [Collection] loads remote records first and falls back to the local store when the
// collaborator is unavailable, seeding a fixed set of sample records the first time an identity
// sees an empty dataset. Mutations are written through: the remote call is attempted first and
// its outcome decides what lands in the cache, which is then persisted locally. Remote failures
// never escape as errors; they switch the collection to [ModeOffline] and emit an [Event].
//
// Records created while offline keep their "local-" id and are never pushed later. The next
// successful load replaces the cache with whatever the collaborator holds.
package syncer
