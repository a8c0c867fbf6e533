// Package redis stores workflow checkpoints in Redis.
//
// Checkpoints are JSON values under "<prefix>checkpoint:<id>". Each run has a
// sorted set "<prefix>run:<run_id>:checkpoints" scored by step, so List
// returns a run in execution order. An optional TTL expires both.
//
//	store := redis.NewRedisCheckpointStore(redis.RedisOptions{
//		Addr: "localhost:6379",
//		TTL:  24 * time.Hour,
//	})
//	wf, err := selfrag.New(collaborators, selfrag.Options{Checkpointer: store})
//
// Loaded checkpoints carry their state as generic JSON; use
// graph.DecodeState to recover the typed value.
package redis
