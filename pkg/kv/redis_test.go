package kv_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/mindcare_backend/pkg/kv"
	"github.com/Alijeyrad/mindcare_backend/pkg/kv/kvtest"
)

type doc struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestRedisStore_GetSet(t *testing.T) {
	env := kvtest.New(t)
	ctx := context.Background()

	require.NoError(t, env.Store.Set(ctx, "doc:1", doc{ID: "1", Name: "Ana"}))

	got, err := kv.GetJSON[doc](ctx, env.Store, "doc:1")
	require.NoError(t, err)
	assert.Equal(t, "Ana", got.Name)

	// prefix is applied on the wire
	assert.True(t, env.Server.Exists("test:doc:1"))

	_, err = kv.GetJSON[doc](ctx, env.Store, "doc:missing")
	assert.ErrorIs(t, err, kv.ErrNotFound)
}

func TestRedisStore_SetNX(t *testing.T) {
	env := kvtest.New(t)
	ctx := context.Background()

	ok, err := env.Store.SetNX(ctx, "invite:ABC123", doc{ID: "first"})
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = env.Store.SetNX(ctx, "invite:ABC123", doc{ID: "second"})
	require.NoError(t, err)
	assert.False(t, ok)

	got, err := kv.GetJSON[doc](ctx, env.Store, "invite:ABC123")
	require.NoError(t, err)
	assert.Equal(t, "first", got.ID)
}

func TestRedisStore_MGetKeepsPositions(t *testing.T) {
	env := kvtest.New(t)
	ctx := context.Background()

	require.NoError(t, env.Store.Set(ctx, "doc:a", doc{ID: "a"}))
	require.NoError(t, env.Store.Set(ctx, "doc:c", doc{ID: "c"}))

	got, err := kv.MGetJSON[doc](ctx, env.Store, []string{"doc:a", "doc:b", "doc:c"})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a", got[0].ID)
	assert.Nil(t, got[1])
	assert.Equal(t, "c", got[2].ID)

	empty, err := env.Store.MGet(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestRedisStore_AppendSequence(t *testing.T) {
	env := kvtest.New(t)
	ctx := context.Background()

	for i, id := range []string{"m1", "m2", "m3"} {
		seq, err := env.Store.Append(ctx, "conversation:a:b", id)
		require.NoError(t, err)
		assert.Equal(t, int64(i+1), seq)
	}

	ids, err := env.Store.Range(ctx, "conversation:a:b")
	require.NoError(t, err)
	assert.Equal(t, []string{"m1", "m2", "m3"}, ids)

	none, err := env.Store.Range(ctx, "conversation:x:y")
	require.NoError(t, err)
	assert.Empty(t, none)
}

// Concurrent writers to one log must all land; each gets a distinct sequence.
func TestRedisStore_ConcurrentAppendLosesNothing(t *testing.T) {
	env := kvtest.New(t)
	ctx := context.Background()

	const n = 50
	var wg sync.WaitGroup
	seqs := make(chan int64, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			seq, err := env.Store.Append(ctx, "log", fmt.Sprintf("id-%d", i))
			assert.NoError(t, err)
			seqs <- seq
		}(i)
	}
	wg.Wait()
	close(seqs)

	seen := make(map[int64]bool, n)
	for s := range seqs {
		assert.False(t, seen[s], "duplicate sequence %d", s)
		seen[s] = true
	}
	for i := int64(1); i <= n; i++ {
		assert.True(t, seen[i], "missing sequence %d", i)
	}

	ids, err := env.Store.Range(ctx, "log")
	require.NoError(t, err)
	assert.Len(t, ids, n)
}

func TestResolveLog_SkipsDangling(t *testing.T) {
	env := kvtest.New(t)
	ctx := context.Background()

	require.NoError(t, env.Store.Set(ctx, "doc:1", doc{ID: "1"}))
	_, _ = env.Store.Append(ctx, "owner:docs", "1")
	_, _ = env.Store.Append(ctx, "owner:docs", "2") // never written

	got, err := kv.ResolveLog[doc](ctx, env.Store, "owner:docs", func(id string) string { return "doc:" + id })
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.NotNil(t, got[0])
	assert.Nil(t, got[1])
}

func TestRedisStore_BackendFailure(t *testing.T) {
	env := kvtest.New(t)
	ctx := context.Background()
	// open the pooled connection before the server starts failing
	require.NoError(t, env.Store.Ping(ctx))
	env.Server.SetError("ERR injected failure")

	err := env.Store.Set(ctx, "doc:1", doc{ID: "1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, kv.ErrStoreFailure)

	var se *kv.StoreError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, "set", se.Op)

	_, err = env.Store.Append(ctx, "log", "x")
	assert.ErrorIs(t, err, kv.ErrStoreFailure)
}
