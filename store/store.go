package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/redrussianarmy/self-rag/graph"
	"github.com/redrussianarmy/self-rag/store/postgres"
	"github.com/redrussianarmy/self-rag/store/redis"
	"github.com/redrussianarmy/self-rag/store/sqlite"
)

// Checkpoint backends accepted by Open.
const (
	BackendNone     = "none"
	BackendMemory   = "memory"
	BackendRedis    = "redis"
	BackendPostgres = "postgres"
	BackendSqlite   = "sqlite"
)

// Options selects and configures a checkpoint backend.
type Options struct {
	Backend     string
	RedisAddr   string
	DatabaseURL string
	SqlitePath  string
}

// Open returns the configured checkpoint store and a function releasing it.
// BackendNone, or an empty backend, returns a nil store.
func Open(ctx context.Context, opts Options) (graph.CheckpointStore, func(), error) {
	noop := func() {}

	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendNone:
		return nil, noop, nil

	case BackendMemory:
		return graph.NewMemoryCheckpointStore(), noop, nil

	case BackendRedis:
		s := redis.NewRedisCheckpointStore(redis.RedisOptions{Addr: opts.RedisAddr})
		if err := s.Ping(ctx); err != nil {
			s.Close()
			return nil, noop, fmt.Errorf("redis checkpoint store at %s: %w", opts.RedisAddr, err)
		}
		return s, func() { s.Close() }, nil

	case BackendPostgres:
		if opts.DatabaseURL == "" {
			return nil, noop, fmt.Errorf("postgres checkpoint store requires a database URL")
		}
		s, err := postgres.NewPostgresCheckpointStore(ctx, postgres.PostgresOptions{ConnString: opts.DatabaseURL})
		if err != nil {
			return nil, noop, err
		}
		if err := s.InitSchema(ctx); err != nil {
			s.Close()
			return nil, noop, err
		}
		return s, s.Close, nil

	case BackendSqlite:
		s, err := sqlite.NewSqliteCheckpointStore(sqlite.SqliteOptions{Path: opts.SqlitePath})
		if err != nil {
			return nil, noop, err
		}
		return s, func() { s.Close() }, nil
	}

	return nil, noop, fmt.Errorf("unknown checkpoint backend %q", opts.Backend)
}
