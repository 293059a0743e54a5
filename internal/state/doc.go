// Package state keeps the memorial board's data in sync with the remote
// service.
//
// # Overview
//
// Store owns two independently refreshed collections (flowers and leaves)
// together with the transient state derived from them: which tributes are
// highlighted, which create operations are in flight, the last error of each
// collection, and the notifications shown after a create. The poller and the
// UI both talk to the same Store; the UI only ever reads Snapshot values.
//
//	Poller:                         UI:
//	┌─────────────────────┐        ┌──────────────────────┐
//	│ Refresh(flowers)    │        │ CreateFlower(text)   │
//	│ Refresh(leaves)     │        │ CreateLeaf()         │
//	│        ↓            │        │        ↓             │
//	│  Gateway.List*      │        │  Gateway.Create*     │
//	│        ↓            │        │        ↓             │
//	│  apply (mutex) ─────┼───────→│  Invalidate(variant) │
//	└─────────────────────┘        │        ↓             │
//	                               │  Snapshot() → render │
//	                               └──────────────────────┘
//
// # Refresh and Retry
//
// Refresh makes up to three attempts (DefaultAttempts) with exponential
// backoff starting at one second and capped at thirty:
//
//	attempt 1 → fail → wait 1s → attempt 2 → fail → wait 2s → attempt 3
//
// On success the collection is replaced, duplicates are dropped (the last
// occurrence of an id wins) and LastError is cleared. When every attempt
// fails the previous items stay visible, LastError holds a *FetchError with
// the gateway's message, and ConsecutiveFailures grows. The next poll starts
// a fresh set of attempts.
//
// # Ordering
//
// Each request, retries included, takes a per-collection sequence number
// before it goes out. When the final response of a refresh arrives it is
// applied only if no response with a higher number has been applied already,
// so a slow poll can never overwrite the result of a later invalidation while
// a retry sent after that invalidation still lands. Close cancels in-flight requests and
// every later apply is discarded.
//
// # Highlights
//
// The store remembers every id it has ever seen per collection. After a
// collection's first successful load, an id that was never seen before is
// highlighted for DefaultNewItemTTL (5s). Items created through the store are
// highlighted for DefaultCreatedTTL (10s). A deadline is only ever extended:
//
//	poll 1: {1,2,3}   → no highlights (initial load)
//	poll 2: {1,3,4}   → highlight 4
//	poll 3: {1,3,4}   → nothing new
//
// Expired entries are removed lazily on read and by StartSweeper.
//
// # Creating
//
// CreateFlower trims the message, rejects it with ErrEmptyContent when
// nothing is left and truncates it to memorial.MaxContentLength characters.
// On success the store highlights the new id, adds a success notification and
// re-fetches the collection; if that re-fetch fails the server-confirmed item
// is merged locally. On failure a failure notification carries the server's
// message and the collections are untouched. CreateLeaf behaves the same
// without input; the phrase always comes from the server.
//
// # Time
//
// Deadlines and the sweeper ticker come from a facebookgo/clock.Clock, so
// tests drive expiry with clock.NewMock. Waits between retry attempts are
// go-retry's own wall-clock timers and do not follow the injected clock;
// tests shrink them with WithRetry.
package state
