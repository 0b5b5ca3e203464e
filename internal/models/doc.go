// Package models defines the record types held by the sync layer and the accounts stored by
// the reference collaborator.
//
// The package contains two categories of types:
//
// 1. Dataset records: plain structs whose JSON tags are the local shape of a record
//   - [Memory] : people, photos and audio in the memory vault
//   - [Journal] : dated journal entries with a mood
//   - [Reminder] : due reminders with a repeat frequency
//   - [Location] : saved places with coordinates
//
// Every dataset record implements [Entity], the constraint used by the generic sync collection,
// and through it [Record], the non-generic view used by renderers.
//
// 2. Collaborator entities: database-backed models implementing [Model]
//   - [User] : accounts with a bcrypt password hash
//   - [StoredRecord] : a wire record owned by one user in one dataset
//
// Seeds are embedded as YAML and returned by [LoadSeeds].
package models
