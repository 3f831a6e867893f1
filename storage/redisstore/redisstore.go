// Package redisstore implements storage.KV on Redis, for deployments where several
// processes share one client identity store.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrsteele09/go-campus-session/storage"
	"github.com/redis/go-redis/v9"
)

var _ storage.KV = (*Store)(nil)

const defaultTimeout = 2 * time.Second

// ErrRedisUnavailable wraps connectivity failures.
var ErrRedisUnavailable = errors.New("redis unavailable")

type Store struct {
	rdb     redis.UniversalClient
	prefix  string
	timeout time.Duration
}

// New wraps rdb. Every key is stored under prefix. A non-positive timeout uses the default.
func New(rdb redis.UniversalClient, prefix string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{rdb: rdb, prefix: prefix, timeout: timeout}
}

// Ping checks connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if err := s.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	return nil
}

func (s *Store) Get(key string) (string, error) {
	ctx, cancel := s.context()
	defer cancel()

	v, err := s.rdb.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("%w: get %s: %v", ErrRedisUnavailable, key, err)
	}
	return v, nil
}

func (s *Store) Set(key, value string) error {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("%w: set %s: %v", ErrRedisUnavailable, key, err)
	}
	return nil
}

func (s *Store) Remove(key string) error {
	ctx, cancel := s.context()
	defer cancel()

	if err := s.rdb.Del(ctx, s.key(key)).Err(); err != nil {
		return fmt.Errorf("%w: del %s: %v", ErrRedisUnavailable, key, err)
	}
	return nil
}

func (s *Store) key(k string) string {
	return s.prefix + k
}

func (s *Store) context() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), s.timeout)
}
