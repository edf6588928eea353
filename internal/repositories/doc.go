// Package repositories implements SQLite persistence for accounts and favorites.
//
// Key Implementations:
//   - [UserRepository] : Account persistence with email-based lookups and soft deletes
//   - [FavoriteRepository] : Per-user saved track ids in insertion order
//
// Sequence numbers provide stable, human-readable ordering (e.g., user #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
//
// Lookups that find nothing return errors matching [shared.ErrUserNotFound]; duplicate emails match [shared.ErrUserExists].
package repositories
