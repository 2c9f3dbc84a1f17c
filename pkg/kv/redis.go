package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps documents as strings and logs as lists. RPUSH is atomic, so
// the list length it returns doubles as the entry's sequence number.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

func (s *RedisStore) Get(ctx context.Context, key string, dst any) error {
	b, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return ErrNotFound
		}
		return &StoreError{Op: "get", Key: key, Err: err}
	}
	if err := json.Unmarshal(b, dst); err != nil {
		return &StoreError{Op: "decode", Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value any) error {
	b, err := json.Marshal(value)
	if err != nil {
		return &StoreError{Op: "encode", Key: key, Err: err}
	}
	if err := s.rdb.Set(ctx, s.key(key), b, 0).Err(); err != nil {
		return &StoreError{Op: "set", Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) SetNX(ctx context.Context, key string, value any) (bool, error) {
	b, err := json.Marshal(value)
	if err != nil {
		return false, &StoreError{Op: "encode", Key: key, Err: err}
	}
	ok, err := s.rdb.SetNX(ctx, s.key(key), b, 0).Result()
	if err != nil {
		return false, &StoreError{Op: "setnx", Key: key, Err: err}
	}
	return ok, nil
}

func (s *RedisStore) MGet(ctx context.Context, keys []string) ([][]byte, error) {
	if len(keys) == 0 {
		return nil, nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	vals, err := s.rdb.MGet(ctx, full...).Result()
	if err != nil {
		return nil, &StoreError{Op: "mget", Key: keys[0], Err: err}
	}
	out := make([][]byte, len(vals))
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[i] = []byte(str)
		}
	}
	return out, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return &StoreError{Op: "del", Key: key, Err: err}
	}
	return nil
}

func (s *RedisStore) Append(ctx context.Context, log string, id string) (int64, error) {
	seq, err := s.rdb.RPush(ctx, s.key(log), id).Result()
	if err != nil {
		return 0, &StoreError{Op: "append", Key: log, Err: err}
	}
	return seq, nil
}

func (s *RedisStore) Range(ctx context.Context, log string) ([]string, error) {
	ids, err := s.rdb.LRange(ctx, s.key(log), 0, -1).Result()
	if err != nil {
		return nil, &StoreError{Op: "range", Key: log, Err: err}
	}
	return ids, nil
}

// Ping reports whether the backing Redis answers.
func (s *RedisStore) Ping(ctx context.Context) error {
	return s.rdb.Ping(ctx).Err()
}
