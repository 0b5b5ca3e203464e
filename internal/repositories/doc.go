// Package repositories implements SQLite persistence for the reference collaborator.
//
// Each repository handles CRUD operations over the embedded migrations in [shared.RunMigrations].
// Rows are soft deleted via deleted_at and excluded from queries by default.
//
// Key Implementations:
//   - [UserRepository] : account persistence with email-based lookups
//   - [RecordRepository] : per-user dataset records stored as JSON payloads
//
// Users carry a sequence number independent of their UUID. The [NextSequence] function
// atomically increments per-table sequence counters in dedicated sequence tables.
// Records use SQLite serials, which the collaborator exposes as numeric wire ids.
package repositories
