// Package sqlite stores workflow checkpoints in a local SQLite file.
//
// It suits single-process deployments and development: the schema is created
// on open and each run's checkpoints are indexed by run ID.
//
//	store, err := sqlite.NewSqliteCheckpointStore(sqlite.SqliteOptions{Path: "selfrag.db"})
//	defer store.Close()
package sqlite
