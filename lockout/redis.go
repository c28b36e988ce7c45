package lockout

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "filepower:lockout:"

// RedisStore shares attempt state between backend instances. Each key is a
// hash of failures and locked_until that expires with the lock.
type RedisStore struct{ rdb *redis.Client }

func NewRedisStore(rdb *redis.Client) *RedisStore { return &RedisStore{rdb: rdb} }

func (s *RedisStore) Load(ctx context.Context, key string) (State, error) {
	vals, err := s.rdb.HGetAll(ctx, keyPrefix+key).Result()
	if err != nil {
		return State{}, err
	}
	var st State
	if v, ok := vals["failures"]; ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return State{}, fmt.Errorf("parse failures: %w", err)
		}
		st.Failures = n
	}
	if v, ok := vals["locked_until"]; ok && v != "0" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return State{}, fmt.Errorf("parse locked_until: %w", err)
		}
		st.LockedUntil = time.Unix(0, n)
	}
	return st, nil
}

func (s *RedisStore) Incr(ctx context.Context, key string, ttl time.Duration) (int, error) {
	k := keyPrefix + key
	var incr *redis.IntCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		incr = p.HIncrBy(ctx, k, "failures", 1)
		if ttl > 0 {
			p.Expire(ctx, k, ttl)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return int(incr.Val()), nil
}

// Lock keeps the first lock end written: HSETNX inside the transaction
// makes concurrent lockers agree on one value.
func (s *RedisStore) Lock(ctx context.Context, key string, until time.Time, ttl time.Duration) (time.Time, error) {
	k := keyPrefix + key
	var current *redis.StringCmd
	_, err := s.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.HSetNX(ctx, k, "locked_until", until.UnixNano())
		current = p.HGet(ctx, k, "locked_until")
		if ttl > 0 {
			p.Expire(ctx, k, ttl)
		}
		return nil
	})
	if err != nil {
		return time.Time{}, err
	}
	n, err := strconv.ParseInt(current.Val(), 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse locked_until: %w", err)
	}
	return time.Unix(0, n), nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.rdb.Del(ctx, keyPrefix+key).Err()
}
