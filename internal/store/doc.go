// Package store persists the canonical Session across process restarts.
//
// Two entries are kept under fixed keys: the bare bearer credential
// ("authToken"), so IsAuthenticated stays a cheap single-key read, and the
// full serialized Session ("userData") for display and profile data.
//
// Corrupted storage is recovered internally: a Session entry that fails to
// deserialize is treated as "no session" and both entries are cleared. That
// outcome never surfaces to callers as an error.
//
// SQLiteStore is the durable implementation; MemoryStore mirrors its
// semantics for tests and embedding.
package store
