// Package redisstore is an optional Redis-backed [aliasstore.Store]
// implementation for deployments that run more than one resolver instance
// against the same learned-alias state — the default [jsonstore.Store]'s
// single-file model does not fan out across processes.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	areaKeyPrefix   = "assist:alias:area:"
	entityKeyPrefix = "assist:alias:entity:"
)

// Store is an [aliasstore.Store] backed by a Redis hash-free key/value
// scheme: one string key per alias, namespaced by kind.
type Store struct {
	client redis.UniversalClient
}

// Config names the Redis connection parameters.
type Config struct {
	Addr     string
	Password string
	DB       int
}

// Open connects to Redis and verifies reachability with a Ping.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("aliasstore/redisstore: ping: %w", err)
	}
	return &Store{client: client}, nil
}

func (s *Store) AreaAlias(ctx context.Context, key string) (string, bool, error) {
	return s.get(ctx, areaKeyPrefix+key)
}

func (s *Store) SetAreaAlias(ctx context.Context, key, area string) error {
	return s.set(ctx, areaKeyPrefix+key, area)
}

func (s *Store) EntityAlias(ctx context.Context, key string) (string, bool, error) {
	return s.get(ctx, entityKeyPrefix+key)
}

func (s *Store) SetEntityAlias(ctx context.Context, key, entityID string) error {
	return s.set(ctx, entityKeyPrefix+key, entityID)
}

func (s *Store) get(ctx context.Context, key string) (string, bool, error) {
	val, err := s.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("aliasstore/redisstore: get %s: %w", key, err)
	}
	return val, true, nil
}

func (s *Store) set(ctx context.Context, key, value string) error {
	// Aliases are learned once and read indefinitely; no expiry.
	if err := s.client.Set(ctx, key, value, 0*time.Second).Err(); err != nil {
		return fmt.Errorf("aliasstore/redisstore: set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
