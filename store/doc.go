// Package store opens the checkpoint backend a workflow journals its steps to.
//
// The backends live in subpackages and all implement graph.CheckpointStore:
//
//   - redis: keys with optional TTL, one sorted set per run
//   - postgres: a JSONB table through pgx
//   - sqlite: a local file through go-sqlite3
//
// graph.MemoryCheckpointStore covers the in-process case.
//
//	cp, closeFn, err := store.Open(ctx, store.Options{Backend: "sqlite", SqlitePath: "selfrag.db"})
//	defer closeFn()
//
// A checkpoint is written after every completed step. Runs that are cancelled
// have their checkpoints cleared, so a store only holds finished or failed runs.
package store
