// Package checkpoint persists pipeline progress snapshots so long batch
// runs can resume after interruption.
//
// A Store is a small keyed blob store: the pipeline serializes its state
// and saves it under the target's key after each completed stage. Three
// backends are provided:
//
//   - MemoryStore: ephemeral, for tests and single-process runs
//   - FileStore: one JSON file per checkpoint under a directory
//   - RedisStore: shared checkpoints for distributed runs
//
// All backends implement the same Store interface and the same sentinel
// errors, so callers can switch backends from configuration.
package checkpoint
