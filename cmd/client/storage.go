package main

import (
	"context"
	"fmt"

	"github.com/jrsteele09/go-campus-session/internal/config"
	"github.com/jrsteele09/go-campus-session/storage"
	"github.com/jrsteele09/go-campus-session/storage/filestore"
	"github.com/jrsteele09/go-campus-session/storage/memory"
	"github.com/jrsteele09/go-campus-session/storage/redisstore"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// openStorage selects the durable key-value backend for the persistence bridge.
func openStorage(c config.StorageConfig) (storage.KV, func(), error) {
	noop := func() {}

	switch c.GetStorageBackend() {
	case config.StorageMemory:
		log.Warn().Msg("Using in-memory session storage, sessions will not survive a restart")
		return memory.New(), noop, nil

	case config.StorageFile:
		fs, err := filestore.Open(c.GetStoragePath())
		if err != nil {
			return nil, noop, fmt.Errorf("[openStorage] %w", err)
		}
		log.Info().Str("path", c.GetStoragePath()).Msg("Using file session storage")
		return fs, noop, nil

	case config.StorageRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     c.GetRedisAddr(),
			Password: c.GetRedisPassword(),
			DB:       c.GetRedisDB(),
		})
		rs := redisstore.New(rdb, c.GetStorageKeyPrefix(), c.GetRedisTimeout())

		ctx, cancel := context.WithTimeout(context.Background(), c.GetRedisTimeout())
		defer cancel()
		if err := rs.Ping(ctx); err != nil {
			_ = rdb.Close()
			return nil, noop, fmt.Errorf("[openStorage] %w", err)
		}
		log.Info().Str("addr", c.GetRedisAddr()).Msg("Using redis session storage")
		return rs, func() { _ = rdb.Close() }, nil
	}
	return nil, noop, fmt.Errorf("[openStorage] unknown storage backend %q", c.GetStorageBackend())
}
