// Package store owns the embedded relational engine that holds competitive
// programming progress, and the repository built on top of it.
//
// The engine is an in-memory SQLite database. It has no file of its own:
// durability comes from exporting the whole database image
// (sqlite3_serialize) and writing it, encoded, into a single key-value slot.
//
// # Lifecycle
//
// A Manager is created once by the composition root and passed to whoever
// needs it. EnsureReady bootstraps the engine on first use:
//   - slot empty: create the schema and save the image immediately, so a
//     reload before the first write still finds a valid schema
//   - slot present: decode the image, integrity-check it and restore it
//
// Concurrent first callers share one bootstrap, which runs detached from any
// single caller's cancellation; a caller that gives up waiting gets a
// CANCELED error. A corrupt or undecodable
// image is an INITIALIZATION error. The manager never falls back to an empty
// database on its own; Reset is the explicit way to discard stored progress.
//
// # Writes
//
// Each mutation is written through: the repository exports and saves the
// image before returning. Mutations and saves are serialized so images reach
// the slot in mutation order.
//
// (user_id, problem_id) is unique in the schema and completions use
// INSERT ... ON CONFLICT DO NOTHING, so a repeated completion is a no-op
// that reports false rather than an error.
//
// Queries hold the engine shared; Reset and Close wait for them before
// closing the engine they replace.
//
// # Limitations
//
// Two processes sharing the same slot are not coordinated. Each holds its
// own engine and the last save wins.
package store
