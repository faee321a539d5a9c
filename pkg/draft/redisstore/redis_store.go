// Package redisstore keeps the cached draft identity in Redis, one key per
// workstation, so intake terminals sharing a Redis instance each resume their
// own draft.
package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-intake/pkg/draft"
	"github.com/redis/go-redis/v9"
)

const keyPrefix = "intake:draft:"

// Store implements draft.IdentityStore using Redis.
type Store struct {
	client *redis.Client
	key    string
}

var _ draft.IdentityStore = (*Store)(nil)

// New connects to redisURL and checks the connection.
func New(redisURL, workstation string) (*Store, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("redisstore: parse redis url: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("redisstore: connect to redis: %w", err)
	}
	return NewWithClient(client, workstation), nil
}

// NewWithClient creates a store from an existing client.
func NewWithClient(client *redis.Client, workstation string) *Store {
	workstation = strings.TrimSpace(workstation)
	if workstation == "" {
		workstation = "default"
	}
	return &Store{client: client, key: keyPrefix + workstation}
}

// Key returns the Redis key holding the identity.
func (s *Store) Key() string { return s.key }

func (s *Store) Load(ctx context.Context) (draft.Identity, error) {
	value, err := s.client.Get(ctx, s.key).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("redisstore: load identity: %w", err)
	}
	return draft.Identity(value), nil
}

// Save stores id without expiry; the identity is retained until cleared.
func (s *Store) Save(ctx context.Context, id draft.Identity) error {
	if err := s.client.Set(ctx, s.key, string(id), 0).Err(); err != nil {
		return fmt.Errorf("redisstore: save identity: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if err := s.client.Del(ctx, s.key).Err(); err != nil {
		return fmt.Errorf("redisstore: clear identity: %w", err)
	}
	return nil
}

// Ping checks that Redis is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (s *Store) Close() error {
	return s.client.Close()
}
