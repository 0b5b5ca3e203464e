// Package localstore is the per-identity key/value cache used by the sync layer.
//
// A [Store] scopes every key to the current identity as "prefix:identity:name", so two
// people sharing a device never read each other's data. Values are JSON encoded and written
// through a [Backend]: [MemoryBackend] for tests and [SQLiteBackend] for the CLI, whose file is
// shared by every carekeep process on the machine. [Watch] reports writes made to that file by
// other processes; it is a signal only and provides no locking.
package localstore
