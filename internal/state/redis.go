package state

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisTimeout = 5 * time.Second

// RedisOptions configures a RedisState backend.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
	// Key names the Redis string holding the serialized state object.
	Key string
}

// RedisState stores the state map as a single JSON object under one Redis
// key, preserving the same persistence shape as FileState.
type RedisState struct {
	client *redis.Client
	key    string
	data   map[string]any
}

// NewRedisState connects to Redis and loads any existing state object.
func NewRedisState(opts RedisOptions) (*RedisState, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	s := &RedisState{client: client, key: opts.Key, data: make(map[string]any)}

	raw, err := client.Get(ctx, opts.Key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return s, nil
		}
		return nil, err
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		// Treat an unparsable value like a missing one; the next Save
		// overwrites it.
		s.data = make(map[string]any)
	}
	return s, nil
}

// Get returns the stored value for key.
func (s *RedisState) Get(key string) (any, bool) {
	v, ok := s.data[key]
	return v, ok
}

// Set stores value under key.
func (s *RedisState) Set(key string, value any) {
	s.data[key] = value
}

// Save serializes the map and writes it back under the configured key.
func (s *RedisState) Save() error {
	raw, err := json.Marshal(s.data)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), redisTimeout)
	defer cancel()

	return s.client.Set(ctx, s.key, raw, 0).Err()
}

// Close releases the underlying Redis connection.
func (s *RedisState) Close() error {
	return s.client.Close()
}

var _ State = (*RedisState)(nil)
