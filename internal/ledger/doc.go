// Package ledger provides SQLite-backed durable storage for handle
// lifecycle events emitted by wrappers.
//
// Each wrapper call that opens a resource writes two rows: one when the
// handle enters the open state and one when it is closed.
//
// # Invariants
//
//   - UNIQUE(call_id, state): a call is opened at most once and closed at
//     most once. A second close is rejected by the database, so a ledger
//     that accepted every event is itself evidence of exactly-once release.
//   - A closed row requires an earlier open row for the same call.
//   - Ordering uses seq INTEGER from a logical clock, never timestamps.
//     All queries ORDER BY seq ASC.
//
// # Database Configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
package ledger
