// Package kvtest wires a kv.RedisStore to an in-process miniredis for tests.
package kvtest

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
)

type Env struct {
	Store  *kv.RedisStore
	Redis  *redis.Client
	Server *miniredis.Miniredis
}

// New starts a miniredis that is torn down with the test.
func New(t testing.TB) *Env {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	// warm one pooled connection so later SetError calls hit commands, not the handshake
	_ = rdb.Ping(context.Background()).Err()
	return &Env{
		Store:  kv.NewRedisStore(rdb, "test:"),
		Redis:  rdb,
		Server: mr,
	}
}
