// Package games is the local cryptogram game store and its reconciliation adapter.
//
// # Store
//
// Store wraps gorm and keeps one row per game in game_records, keyed by the canonical UUID.
// The identifier variant is kept exactly as decoded (id_kind, id_prefix, daily_date) and
// re-encoded with core/gameid whenever a game leaves the process, so the server always sees
// the identifier it sent. The payload difficulty is display data and never changes it.
//
// # Snapshot
//
// BuildSummary and ComputeChanges are read-only and produce the LocalGamesSummary and the
// GameChange list sent with plan requests. Each summary entry carries a checksum over the
// fields that decide reconciliation (id, last update, outcome, score).
//
// # Adapter
//
// Adapter implements reconcile.Adapter. Downloaded payloads are decoded, validated against
// the game invariants and upserted, so applying the same payload twice leaves the store
// unchanged. Payloads breaking an invariant are rejected as syncerr.DecodeFailed.
//
// # Bookkeeping
//
// BookkeepingStore persists the sync timestamps and launch count as rows of sync_settings.
package games
