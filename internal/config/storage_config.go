package config

import "time"

const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
)

type StorageConfig interface {
	GetStorageBackend() string
	GetStoragePath() string
	GetStorageKeyPrefix() string
	GetRedisAddr() string
	GetRedisPassword() string
	GetRedisDB() int
	GetRedisTimeout() time.Duration
}

type Storage struct {
	Backend       string        `env:"STORAGE_BACKEND" envDefault:"file"`
	Path          string        `env:"STORAGE_PATH" envDefault:"./data/session.json"`
	KeyPrefix     string        `env:"STORAGE_KEY_PREFIX" envDefault:"campus:session:"`
	RedisAddr     string        `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string        `env:"REDIS_PASSWORD"`
	RedisDB       int           `env:"REDIS_DB" envDefault:"0"`
	RedisTimeout  time.Duration `env:"REDIS_TIMEOUT" envDefault:"2s"`
}

var _ StorageConfig = Storage{}

func (s Storage) GetStorageBackend() string {
	return s.Backend
}

func (s Storage) GetStoragePath() string {
	return s.Path
}

func (s Storage) GetStorageKeyPrefix() string {
	return s.KeyPrefix
}

func (s Storage) GetRedisAddr() string {
	return s.RedisAddr
}

func (s Storage) GetRedisPassword() string {
	return s.RedisPassword
}

func (s Storage) GetRedisDB() int {
	return s.RedisDB
}

func (s Storage) GetRedisTimeout() time.Duration {
	return s.RedisTimeout
}
